package events

import (
	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	// Public routes - anyone can browse events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents) // GET /api/v1/events?location=&date=&search=
		publicEvents.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}

	adminEvents := router.Group("/admin/events")
	adminEvents.Use(auth, middleware.RequireAdmin())
	{
		adminEvents.GET("", controller.GetAdminEvents)     // GET /api/v1/admin/events - events created by caller
		adminEvents.POST("", controller.CreateEvent)       // POST /api/v1/admin/events
		adminEvents.PUT("/:id", controller.UpdateEvent)    // PUT /api/v1/admin/events/:id
		adminEvents.DELETE("/:id", controller.DeleteEvent) // DELETE /api/v1/admin/events/:id
	}
}
