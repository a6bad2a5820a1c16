package autherrors

import (
	"go-hris-iam/internal/shared/apperror"
	"net/http"
)

var (
	// Tenant guard
	ErrTokenNotFound = apperror.New(
		apperror.CodeUnauthorized,
		"Token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeInvalidToken,
		"Invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeTokenExpired,
		"Token has expired",
		http.StatusUnauthorized,
	)
	ErrIdentityGone = apperror.New(
		apperror.CodeUnauthorized,
		"Identity no longer exists",
		http.StatusUnauthorized,
	)
	ErrNoCompany = apperror.New(
		apperror.CodeForbidden,
		"Account has no company",
		http.StatusForbidden,
	)
	ErrTenantMismatch = apperror.New(
		apperror.CodeUnauthorized,
		"Tenant mismatch, please re-authenticate",
		http.StatusUnauthorized,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	// Credentials
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid email or password",
		http.StatusUnauthorized,
	)
	ErrUserInactive = apperror.New(
		apperror.CodeForbidden,
		"User is inactive",
		http.StatusForbidden,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Email already registered",
		http.StatusBadRequest,
	)
	ErrSuperAdminSignup = apperror.New(
		apperror.CodeInvalidInput,
		"SUPER_ADMIN accounts cannot self-register",
		http.StatusBadRequest,
	)
	ErrElevatedJoin = apperror.New(
		apperror.CodeForbidden,
		"Only EMPLOYEE accounts can self-register into an existing company",
		http.StatusForbidden,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid role",
		http.StatusBadRequest,
	)
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Company not found",
		http.StatusNotFound,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"No user found with that email",
		http.StatusNotFound,
	)
	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate token",
		http.StatusInternalServerError,
	)

	// Federated login
	ErrAccountNotProvisioned = apperror.New(
		apperror.CodeNotFound,
		"No account for this email; it must be provisioned by an administrator first",
		http.StatusNotFound,
	)
	ErrProviderVerification = apperror.New(
		apperror.CodeUpstream,
		"Identity provider verification failed",
		http.StatusBadGateway,
	)

	// Reset and invite
	ErrInvalidResetToken = apperror.New(
		apperror.CodeInvalidInput,
		"Token is invalid or has expired",
		http.StatusBadRequest,
	)
	ErrEmailDelivery = apperror.New(
		apperror.CodeUpstream,
		"There was an error sending the email, try again later",
		http.StatusBadGateway,
	)
)
