package companyerrors

import (
	"net/http"

	"go-hris-iam/internal/shared/apperror"
)

var (
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Company not found",
		http.StatusNotFound,
	)

	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)

	ErrTenantCascadeFailed = apperror.New(
		apperror.CodeInternalError,
		"Company deletion failed and was rolled back",
		http.StatusInternalServerError,
	)
)
