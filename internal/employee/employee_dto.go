package employee

import "time"

// CreateEmployeeRequest leaves employee_code optional; a tenant sequence
// fills it in when omitted.
type CreateEmployeeRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	OfficialEmail string `json:"official_email" binding:"required,email"`
	EmployeeCode  string `json:"employee_code" binding:"omitempty,max=50"`
	Phone         string `json:"phone" binding:"omitempty,max=50"`
	Designation   string `json:"designation" binding:"omitempty,max=150"`
	Role          string `json:"role" binding:"omitempty,oneof=COMPANY_ADMIN MANAGER EMPLOYEE"`
}

// UpdateEmployeeRequest has no company_id, employee_code or user_id field, so
// those keys are dropped while binding.
type UpdateEmployeeRequest struct {
	FullName      *string `json:"full_name" binding:"omitempty,min=1"`
	OfficialEmail *string `json:"official_email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Designation   *string `json:"designation" binding:"omitempty,max=150"`
	Role          *string `json:"role" binding:"omitempty,oneof=COMPANY_ADMIN MANAGER EMPLOYEE"`
}

type EmployeeResponse struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	UserID        string    `json:"user_id"`
	EmployeeCode  string    `json:"employee_code"`
	OfficialEmail string    `json:"official_email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone,omitempty"`
	Designation   string    `json:"designation,omitempty"`
	Role          string    `json:"role"`
	DocumentKeys  []string  `json:"document_keys,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            e.ID.String(),
		CompanyID:     e.CompanyID.String(),
		UserID:        e.UserID.String(),
		EmployeeCode:  e.EmployeeCode,
		OfficialEmail: e.OfficialEmail,
		FullName:      e.FullName,
		Phone:         e.Phone,
		Designation:   e.Designation,
		Role:          e.Role.String(),
		DocumentKeys:  e.DocumentKeys,
		CreatedAt:     e.CreatedAt,
	}
}

func mapToListResponse(list []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(list))
	for i, e := range list {
		res[i] = mapToResponse(e)
	}
	return res
}
