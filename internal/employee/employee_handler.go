package employee

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"go-hris-iam/internal/middleware"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/contextutil"
	"go-hris-iam/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

// fail logs client errors at warn and server errors at error before writing
// the envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	log := contextutil.GetLogger(c.Request.Context(), h.logger).With(
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	if httpErr.Status >= http.StatusInternalServerError {
		log.Error("employee request failed", zap.Error(err))
	} else {
		log.Warn("employee request rejected", zap.String("message", httpErr.Message))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.GetString(middleware.KeyCompanyID), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

// listQuery is the filter, order and window of GET /employees.
type listQuery struct {
	Q        string `form:"q"`
	SortBy   string `form:"sort_by"`
	SortDir  string `form:"sort_dir"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

func (q *listQuery) normalize() {
	q.Q = strings.ToLower(strings.TrimSpace(q.Q))
	q.SortBy = strings.ToLower(strings.TrimSpace(q.SortBy))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

func (q listQuery) matches(e EmployeeResponse) bool {
	if q.Q == "" {
		return true
	}
	for _, field := range []string{e.FullName, e.OfficialEmail, e.EmployeeCode} {
		if strings.Contains(strings.ToLower(field), q.Q) {
			return true
		}
	}
	return false
}

func (q listQuery) compare(a, b EmployeeResponse) int {
	var c int
	switch q.SortBy {
	case "email":
		c = cmp.Compare(strings.ToLower(a.OfficialEmail), strings.ToLower(b.OfficialEmail))
	case "code":
		c = cmp.Compare(a.EmployeeCode, b.EmployeeCode)
	case "id":
		c = cmp.Compare(a.ID, b.ID)
	default:
		c = cmp.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
	}
	if strings.EqualFold(q.SortDir, "desc") {
		return -c
	}
	return c
}

func (q listQuery) window(n int) (int, int) {
	start := min((q.Page-1)*q.PageSize, n)
	return start, min(start+q.PageSize, n)
}

func (h *Handler) GetAll(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, apperror.MapValidationError(err))
		return
	}
	q.normalize()

	all, err := h.service.GetAll(c.Request.Context(), c.GetString(middleware.KeyCompanyID))
	if err != nil {
		h.fail(c, err)
		return
	}

	items := slices.DeleteFunc(all, func(e EmployeeResponse) bool { return !q.matches(e) })
	slices.SortStableFunc(items, q.compare)

	start, end := q.window(len(items))
	meta := response.NewPaginationMeta(int64(len(items)), q.Page, q.PageSize)
	response.Success(c, http.StatusOK, items[start:end], &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.GetString(middleware.KeyCompanyID), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.GetString(middleware.KeyCompanyID), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentPrincipal(c)
	if !ok {
		h.fail(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.GetString(middleware.KeyCompanyID), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
