package company

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

type Company struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string    `gorm:"type:varchar(150);not null"`
	RegistrationNumber string    `gorm:"type:varchar(100)"`
	Email              string    `gorm:"type:varchar(255);index"`
	Status             Status    `gorm:"type:varchar(20);not null;default:ACTIVE"`
	CreatedAt          time.Time `gorm:"not null;default:now()"`
	UpdatedAt          time.Time `gorm:"not null;default:now()"`
}

func (Company) TableName() string {
	return "companies"
}

// ScopedCollections are the tables whose rows belong to a tenant through a
// company_id column. Tables owned by other subsystems may be absent.
var ScopedCollections = []string{
	"users",
	"employees",
	"departments",
	"positions",
	"company_registrations",
	"leaves",
	"attendances",
	"payrolls",
	"employee_salaries",
	"company_counters",
}
