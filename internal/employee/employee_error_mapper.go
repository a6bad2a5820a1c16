package employee

import (
	"errors"
	"net/http"
	"strings"

	employeeerrors "go-hris-iam/internal/employee/errors"
	"go-hris-iam/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return mapConstraint(pgErr.ConstraintName)
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		for _, name := range []string{"uq_employee_code", "uq_employee_email", "uq_users_email"} {
			if strings.Contains(errMsg, name) {
				return mapConstraint(name)
			}
		}
	}

	return apperror.WithCause(apperror.ErrInternal, err)
}

func mapConstraint(name string) error {
	switch name {
	case "uq_employee_code":
		return employeeerrors.ErrEmployeeCodeAlreadyExists
	case "uq_employee_email":
		return employeeerrors.ErrEmployeeAlreadyExists
	case "uq_users_email":
		return employeeerrors.ErrEmailAlreadyRegistered
	default:
		return apperror.New(apperror.CodeConflict, "Duplicate value", http.StatusConflict)
	}
}
