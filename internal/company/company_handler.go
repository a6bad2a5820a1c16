package company

import (
	"net/http"

	"go-hris-iam/internal/middleware"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("company.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) GetMe(c *gin.Context) {
	companyID := c.GetString(middleware.KeyCompanyID)
	if companyID == "" {
		response.FromError(c, apperror.ErrUnauthorized)
		return
	}

	comp, err := h.service.GetByID(c.Request.Context(), companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, comp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.FromError(c, apperror.ErrUnauthorized)
		return
	}

	tenantID := c.Param("tenantId")
	resp, err := h.service.Delete(c.Request.Context(), actor, tenantID)
	if err != nil {
		if apperror.ToHTTP(err).Status >= http.StatusInternalServerError {
			h.logger.Error("delete company failed", zap.String("company_id", tenantID), zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
