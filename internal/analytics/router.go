package analytics

import (
	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	admin := rg.Group("/admin/analytics")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("", controller.GetOverview)                  // GET /api/v1/admin/analytics
		admin.GET("/events/:id", controller.GetEventAnalytics) // GET /api/v1/admin/analytics/events/:id
	}
}
