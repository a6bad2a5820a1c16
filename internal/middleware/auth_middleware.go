package middleware

import (
	"context"
	"errors"
	"strings"

	autherrors "go-hris-iam/internal/auth/errors"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/observability/metrics"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/contextutil"
	"go-hris-iam/internal/shared/response"
	"go-hris-iam/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gin context keys set by TenantGuard.
const (
	KeyUserID    = "user_id"
	KeyCompanyID = "company_id"
	KeyRole      = "role"
	KeyIdentity  = "identity"
)

type TokenVerifier interface {
	Verify(signed string) (token.Claims, error)
}

type PrincipalFinder interface {
	FindPrincipal(ctx context.Context, id uuid.UUID) (domain.Principal, error)
}

func reject(c *gin.Context, reason string, err *apperror.AppError) {
	metrics.RecordAuthRejection(reason)
	response.FromError(c, err)
}

// TenantGuard authenticates the bearer token and attaches the principal.
// Any failure aborts the request before anything is attached.
func TenantGuard(verifier TokenVerifier, finder PrincipalFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := contextutil.GetLogger(c.Request.Context(), zap.L().Named("middleware.tenant_guard"))

		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || tokenString == "" {
			reject(c, "missing_token", autherrors.ErrTokenNotFound)
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				reject(c, "token_expired", autherrors.ErrTokenExpired)
				return
			}
			reject(c, "invalid_token", autherrors.ErrInvalidToken)
			return
		}

		subject, err := uuid.Parse(claims.Subject)
		if err != nil {
			reject(c, "invalid_token", autherrors.ErrInvalidToken)
			return
		}

		principal, err := finder.FindPrincipal(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, domain.ErrPrincipalNotFound) {
				reject(c, "identity_gone", autherrors.ErrIdentityGone)
				return
			}
			log.Error("load principal failed", zap.String("user_id", subject.String()), zap.Error(err))
			response.FromError(c, apperror.ErrInternal)
			return
		}

		if principal.CompanyID == nil || *principal.CompanyID == uuid.Nil {
			log.Warn("identity without company", zap.String("user_id", subject.String()))
			reject(c, "no_company", autherrors.ErrNoCompany)
			return
		}

		companyID := principal.CompanyID.String()
		if claims.CompanyID != "" && claims.CompanyID != companyID {
			reject(c, "tenant_mismatch", autherrors.ErrTenantMismatch)
			return
		}

		c.Set(KeyUserID, principal.UserID.String())
		c.Set(KeyCompanyID, companyID)
		c.Set(KeyRole, principal.Role.String())
		c.Set(KeyIdentity, principal)

		ctx := c.Request.Context()
		ctx = contextutil.WithUserID(ctx, principal.UserID.String())
		ctx = contextutil.WithCompanyID(ctx, companyID)
		ctx = contextutil.WithRole(ctx, principal.Role.String())
		ctx = contextutil.WithLogger(ctx, log.With(
			zap.String("user_id", principal.UserID.String()),
			zap.String("company_id", companyID),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RestrictTo allows the request through only when the attached role is
// one of roles. It must run after TenantGuard.
func RestrictTo(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r.String()] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(KeyRole)]; !ok {
			reject(c, "role_forbidden", autherrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal attached by TenantGuard.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
