package realtime

import (
	"errors"
	"io"
	"net/http"
	"time"

	"eventbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	hub       *Hub
	heartbeat time.Duration
	validator *validator.Validate
}

func NewController(hub *Hub, heartbeat time.Duration) *Controller {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &Controller{hub: hub, heartbeat: heartbeat, validator: validator.New()}
}

// Stream handles GET /realtime/stream
func (ctrl *Controller) Stream(c *gin.Context) {
	ctrl.serve(c, "")
}

// EventStream handles GET /events/:id/live, a stream already joined to one event
func (ctrl *Controller) EventStream(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}
	ctrl.serve(c, eventID.String())
}

func (ctrl *Controller) serve(c *gin.Context, eventID string) {
	client := ctrl.hub.Connect()
	defer ctrl.hub.Disconnect(client)

	if eventID != "" {
		_ = ctrl.hub.Join(client.ID, eventID)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(MessageConnected, gin.H{"client_id": client.ID.String()})
	c.Writer.Flush()

	ticker := time.NewTicker(ctrl.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client.Messages():
			if !ok {
				return false
			}
			c.SSEvent(msg.Event, msg.Data)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": heartbeat\n\n")
			return err == nil
		}
	})
}

// Join handles POST /realtime/clients/:clientId/join
func (ctrl *Controller) Join(c *gin.Context) {
	ctrl.membership(c, ctrl.hub.Join, "Joined event channel")
}

// Leave handles POST /realtime/clients/:clientId/leave
func (ctrl *Controller) Leave(c *gin.Context) {
	ctrl.membership(c, ctrl.hub.Leave, "Left event channel")
}

func (ctrl *Controller) membership(c *gin.Context, op func(uuid.UUID, string) error, message string) {
	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid client ID", nil, err.Error())
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	if err := op(clientID, eventID.String()); err != nil {
		if errors.Is(err, ErrClientNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Client not connected", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update channel membership", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, message, gin.H{
		"client_id": clientID.String(),
		"event_id":  eventID.String(),
	}, nil)
}
