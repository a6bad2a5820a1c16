package company

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=company_repo.go -destination=mock/company_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DocumentKeys(ctx context.Context, companyID uuid.UUID) ([]string, error)
	Cascade(ctx context.Context, companyID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, company *Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	if company.Status == "" {
		company.Status = StatusActive
	}
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Company{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DocumentKeys(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	var arrays []pq.StringArray
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("company_id = ?", companyID).
		Pluck("document_keys", &arrays).Error
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(arrays))
	for _, a := range arrays {
		keys = append(keys, a...)
	}
	return keys, nil
}

// Cascade removes every tenant scoped row and then the company itself in a
// single transaction.
func (r *repository) Cascade(ctx context.Context, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var present []string
		err := tx.Raw(
			"SELECT table_name FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name IN ?",
			ScopedCollections,
		).Scan(&present).Error
		if err != nil {
			return &CascadeError{CompanyID: companyID, Collection: "information_schema", Err: err}
		}

		exists := make(map[string]bool, len(present))
		for _, name := range present {
			exists[name] = true
		}

		for _, name := range ScopedCollections {
			if !exists[name] {
				continue
			}
			err := tx.Exec("DELETE FROM ? WHERE company_id = ?", clause.Table{Name: name}, companyID).Error
			if err != nil {
				return &CascadeError{CompanyID: companyID, Collection: name, Err: err}
			}
		}

		res := tx.Delete(&Company{}, "id = ?", companyID)
		if res.Error != nil {
			return &CascadeError{CompanyID: companyID, Collection: "companies", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
