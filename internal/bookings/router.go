package bookings

import (
	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.POST("", controller.CreateBooking)           // POST /api/v1/bookings
		bookings.GET("", controller.GetUserBookings)          // GET /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)           // GET /api/v1/bookings/:id
		bookings.PUT("/:id/cancel", controller.CancelBooking) // PUT /api/v1/bookings/:id/cancel
		bookings.GET("/admin/all", middleware.RequireAdmin(), controller.GetAllBookings)
	}
}
