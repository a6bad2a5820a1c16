package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the wire shape of an error inside the response envelope.
type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Detailer is implemented by errors that expose structured details to clients.
type Detailer interface {
	Details() any
}

// ToHTTP converts any error into its HTTP representation. Errors that are not
// an *AppError are reported as a generic 500 so internals never leak.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternalError,
			Message: "Internal server error",
		}
	}

	out := HTTPError{
		Status:  appErr.HTTPStatus,
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if out.Status == 0 {
		out.Status = http.StatusInternalServerError
	}

	var d Detailer
	if errors.As(err, &d) {
		out.Details = d.Details()
	}
	return out
}
