package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleManager      Role = "MANAGER"
	RoleEmployee     Role = "EMPLOYEE"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// ParseRole normalizes casing and rejects roles outside the fixed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.New("unknown role")
	}
	return r, nil
}

// ErrPrincipalNotFound is returned when the token subject no longer exists.
var ErrPrincipalNotFound = errors.New("principal not found")

// Principal is what an authenticated request carries downstream.
type Principal struct {
	UserID    uuid.UUID
	CompanyID *uuid.UUID
	Role      Role
	Email     string
	Name      string
}

// CompanyIDString is empty when the account is not attached to a company.
func (p Principal) CompanyIDString() string {
	if p.CompanyID == nil {
		return ""
	}
	return p.CompanyID.String()
}
