package user

import (
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	guard gin.HandlerFunc,
	logger *zap.Logger,
) {
	users := r.Group("/users")
	users.Use(guard)
	users.Use(middleware.ContextLogger(logger))
	{
		users.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RestrictTo(domain.RoleSuperAdmin, domain.RoleCompanyAdmin, domain.RoleManager),
			handler.GetAll,
		)

		users.PATCH("/:id/status",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RestrictTo(domain.RoleSuperAdmin, domain.RoleCompanyAdmin),
			handler.ToggleStatus,
		)
	}

	account := r.Group("/account")
	account.Use(guard)
	account.Use(middleware.ContextLogger(logger))
	{
		account.PATCH("/password",
			middleware.RateLimitByUser(0.2, 2),
			handler.ChangePassword,
		)
	}
}
