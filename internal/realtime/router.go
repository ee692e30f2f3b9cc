package realtime

import "github.com/gin-gonic/gin"

// SetupRealtimeRoutes registers the seat-update stream endpoints. Channel
// membership is public: the payload carries seat counts only.
func SetupRealtimeRoutes(rg *gin.RouterGroup, controller *Controller) {
	rt := rg.Group("/realtime")
	{
		rt.GET("/stream", controller.Stream)
		rt.POST("/clients/:clientId/join", controller.Join)
		rt.POST("/clients/:clientId/leave", controller.Leave)
	}

	rg.GET("/events/:id/live", controller.EventStream)
}
