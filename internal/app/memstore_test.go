package app

import (
	"context"
	"sync"
	"time"

	"go-hris-iam/internal/company"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/employee"
	"go-hris-iam/internal/notification"
	"go-hris-iam/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// memStore backs the user, company, employee and counter repositories with
// maps so the whole HTTP surface can run without a database.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]user.User
	companies map[uuid.UUID]company.Company
	employees map[uuid.UUID]employee.Employee
	counters  map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uuid.UUID]user.User{},
		companies: map[uuid.UUID]company.Company{},
		employees: map[uuid.UUID]employee.Employee{},
		counters:  map[string]int64{},
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return uniqueViolation("uq_users_email")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) FindByResetTokenHash(_ context.Context, hash string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) FindAllByCompany(_ context.Context, companyID uuid.UUID) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []user.User
	for _, u := range r.s.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUsers) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.update(id, fields)
}

// update expects r.s.mu to be held.
func (r memUsers) update(id uuid.UUID, fields map[string]any) error {
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			email := v.(string)
			for otherID, other := range r.s.users {
				if otherID != id && other.Email == email {
					return uniqueViolation("uq_users_email")
				}
			}
			u.Email = email
		case "password_hash":
			u.PasswordHash = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "role":
			u.Role = v.(domain.Role)
		case "is_active":
			u.IsActive = v.(bool)
		case "reset_token_hash":
			u.ResetTokenHash = v.(*string)
		case "reset_token_expiry":
			u.ResetTokenExpiry = v.(*time.Time)
		}
	}
	r.s.users[id] = u
	return nil
}

func (r memUsers) ConsumeResetToken(_ context.Context, id uuid.UUID, hash string, now time.Time, fields map[string]any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.ResetTokenHash == nil || *u.ResetTokenHash != hash ||
		u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
		return user.ErrResetTokenConsumed
	}
	return r.update(id, fields)
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memCompanies struct{ s *memStore }

func (r memCompanies) Create(_ context.Context, c *company.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = company.StatusActive
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r memCompanies) GetByID(_ context.Context, id uuid.UUID) (*company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCompanies) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.companies, id)
	return nil
}

func (r memCompanies) DocumentKeys(_ context.Context, companyID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var keys []string
	for _, e := range r.s.employees {
		if e.CompanyID == companyID {
			keys = append(keys, e.DocumentKeys...)
		}
	}
	return keys, nil
}

func (r memCompanies) Cascade(_ context.Context, companyID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[companyID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, u := range r.s.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			delete(r.s.users, id)
		}
	}
	for id, e := range r.s.employees {
		if e.CompanyID == companyID {
			delete(r.s.employees, id)
		}
	}
	delete(r.s.companies, companyID)
	return nil
}

type memEmployees struct{ s *memStore }

func (r memEmployees) conflict(e *employee.Employee) error {
	for id, other := range r.s.employees {
		if id == e.ID || other.CompanyID != e.CompanyID {
			continue
		}
		if other.EmployeeCode == e.EmployeeCode {
			return uniqueViolation("uq_employee_code")
		}
		if other.OfficialEmail == e.OfficialEmail {
			return uniqueViolation("uq_employee_email")
		}
	}
	return nil
}

func (r memEmployees) Create(_ context.Context, e *employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := r.conflict(e); err != nil {
		return err
	}
	e.CreatedAt = time.Now()
	r.s.employees[e.ID] = *e
	return nil
}

func (r memEmployees) FindByID(_ context.Context, id uuid.UUID) (*employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memEmployees) FindByIDAndCompany(_ context.Context, companyID, id uuid.UUID) (*employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok || e.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r memEmployees) FindByCode(_ context.Context, companyID uuid.UUID, code string) (*employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.CompanyID == companyID && e.EmployeeCode == code {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memEmployees) FindAllByCompany(_ context.Context, companyID uuid.UUID) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEmployees) Update(_ context.Context, e *employee.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := r.conflict(e); err != nil {
		return err
	}
	r.s.employees[e.ID] = *e
	return nil
}

func (r memEmployees) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.employees, id)
	return nil
}

type memCounter struct{ s *memStore }

func (r memCounter) GetNextValue(_ context.Context, companyID uuid.UUID, counterType string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyID.String() + "/" + counterType
	r.s.counters[key]++
	return r.s.counters[key], nil
}

// mailbox records every message instead of delivering it.
type mailbox struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (o *mailbox) Send(_ context.Context, msg notification.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *mailbox) last() (notification.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return notification.Message{}, false
	}
	return o.sent[len(o.sent)-1], true
}
