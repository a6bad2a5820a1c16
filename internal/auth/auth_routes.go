package auth

import (
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard gin.HandlerFunc, logger *zap.Logger) {
	auth := r.Group("/auth")
	auth.Use(middleware.ContextLogger(logger))
	{
		auth.POST("/register", middleware.RateLimitByIP(0.1, 5), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(0.2, 10), handler.Login)
		auth.POST("/google", middleware.RateLimitByIP(0.2, 10), handler.GoogleLogin)
		auth.POST("/forgot-password", middleware.RateLimitByIP(0.05, 3), handler.ForgotPassword)
		auth.PATCH("/reset-password/:token", middleware.RateLimitByIP(0.1, 5), handler.ResetPassword)

		auth.GET("/me", guard, middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/invite",
			guard,
			middleware.RateLimitByUser(0.5, 3),
			middleware.RestrictTo(domain.RoleCompanyAdmin),
			handler.Invite,
		)
	}
}
