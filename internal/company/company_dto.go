package company

import "time"

type CompanyResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	RegistrationNumber string    `json:"registration_number"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

type DeleteCompanyResponse struct {
	ID           string `json:"id"`
	DocumentKeys int    `json:"documents_scheduled"`
}

func ToResponse(c *Company) *CompanyResponse {
	return &CompanyResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Email:              c.Email,
		RegistrationNumber: c.RegistrationNumber,
		Status:             c.Status,
		CreatedAt:          c.CreatedAt,
	}
}
