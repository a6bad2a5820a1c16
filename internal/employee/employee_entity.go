package employee

import (
	"time"

	"go-hris-iam/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Employee struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_employee_code,priority:1;uniqueIndex:uq_employee_email,priority:1"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_employee_user"`
	EmployeeCode  string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_employee_code,priority:2"`
	OfficialEmail string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email,priority:2"`
	FullName      string         `gorm:"type:varchar(255);not null"`
	Phone         string         `gorm:"type:varchar(50)"`
	Designation   string         `gorm:"type:varchar(150)"`
	Role          domain.Role    `gorm:"type:varchar(50);not null;default:EMPLOYEE"`
	DocumentKeys  pq.StringArray `gorm:"type:text[]"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Employee) TableName() string {
	return "employees"
}
