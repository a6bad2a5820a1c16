package company

import (
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, guard gin.HandlerFunc, logger *zap.Logger) {
	company := r.Group("/company")
	company.Use(guard)
	company.Use(middleware.ContextLogger(logger))
	{
		company.GET("/me",
			middleware.RateLimitByUser(2, 10),
			handler.GetMe,
		)

		// Platform level operation, never tenant admins.
		company.DELETE("/:tenantId",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RestrictTo(domain.RoleSuperAdmin),
			handler.Delete,
		)
	}
}
