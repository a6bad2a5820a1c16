package employee

import (
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	guard gin.HandlerFunc,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	writers := middleware.RestrictTo(domain.RoleSuperAdmin, domain.RoleCompanyAdmin)

	employees := r.Group("/employees")
	employees.Use(guard)
	employees.Use(middleware.ContextLogger(logger))
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			handler.GetAll,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			handler.GetById,
		)

		employees.POST("",
			middleware.RateLimitByUser(0.5, 3),
			writers,
			middleware.Idempotency(rdb),
			handler.Create,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			writers,
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 1),
			writers,
			handler.Delete,
		)
	}
}
