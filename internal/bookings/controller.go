package bookings

import (
	"errors"
	"net/http"

	"eventbook/internal/shared/middleware"
	"eventbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{service: service, validator: validator.New()}
}

// CreateBooking handles POST /api/v1/bookings
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	requester, ok := currentRequester(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validator.Struct(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := ctrl.service.CreateBooking(c.Request.Context(), requester, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetUserBookings handles GET /api/v1/bookings
func (ctrl *Controller) GetUserBookings(c *gin.Context) {
	requester, ok := currentRequester(c)
	if !ok {
		return
	}

	bookings, err := ctrl.service.ListUserBookings(c.Request.Context(), requester.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (ctrl *Controller) GetBooking(c *gin.Context) {
	requester, ok := currentRequester(c)
	if !ok {
		return
	}
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), requester, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetAllBookings handles GET /api/v1/bookings/admin/all
func (ctrl *Controller) GetAllBookings(c *gin.Context) {
	bookings, err := ctrl.service.ListAllBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// CancelBooking handles PUT /api/v1/bookings/:id/cancel
func (ctrl *Controller) CancelBooking(c *gin.Context) {
	requester, ok := currentRequester(c)
	if !ok {
		return
	}
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), requester, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

func currentRequester(c *gin.Context) (Requester, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return Requester{}, false
	}
	return Requester{UserID: user.ID, Role: user.Role}, true
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, ErrEventNotFound.Error(), nil, nil)
	case errors.Is(err, ErrBookingNotFound):
		response.RespondJSON(c, "error", http.StatusNotFound, ErrBookingNotFound.Error(), nil, nil)
	case errors.Is(err, ErrInsufficientSeats):
		response.RespondJSON(c, "error", http.StatusBadRequest, ErrInsufficientSeats.Error(), nil, nil)
	case errors.Is(err, ErrAccessDenied):
		response.RespondJSON(c, "error", http.StatusForbidden, ErrAccessDenied.Error(), nil, nil)
	case errors.Is(err, ErrBookingAlreadyCancelled):
		response.RespondJSON(c, "error", http.StatusConflict, ErrBookingAlreadyCancelled.Error(), nil, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, ErrInternal.Error(), nil, nil)
	}
}
