package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the authentication routes
func RegisterRoutes(r *gin.Engine, handler *Handler, service *Service) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.GET("/me", RequireAuth(service), handler.Me)
	}
}
