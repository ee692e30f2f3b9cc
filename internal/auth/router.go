package auth

import (
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all auth routes. auth is the JWT middleware
// guarding the authenticated endpoints.
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	group := rg.Group("/auth")
	{
		group.POST("/register", controller.Register)
		group.POST("/login", controller.Login)
		group.POST("/refresh", controller.RefreshToken)

		protected := group.Group("")
		protected.Use(auth)
		{
			protected.GET("/profile", controller.Profile)
			protected.PUT("/change-password", controller.ChangePassword)
			protected.POST("/logout", controller.Logout)
		}
	}
}
