package user

import (
	"context"
	"errors"
	"time"

	"go-hris-iam/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*User, error)
	FindAllByCompany(ctx context.Context, companyID uuid.UUID) ([]User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	ConsumeResetToken(ctx context.Context, id uuid.UUID, hash string, now time.Time, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByResetTokenHash(ctx context.Context, hash string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "reset_token_hash = ?", hash).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID uuid.UUID) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// UpdateFields applies a partial update. It never hashes; callers go
// through User.SetPassword first.
func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ErrResetTokenConsumed means the token was redeemed, replaced or expired
// between the read and the write.
var ErrResetTokenConsumed = errors.New("user: reset token no longer redeemable")

// ConsumeResetToken applies fields only while the row still holds hash and
// the token has not expired, so a token is redeemed by at most one writer.
func (r *repository) ConsumeResetToken(ctx context.Context, id uuid.UUID, hash string, now time.Time, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ? AND reset_token_hash = ? AND reset_token_expiry > ?", id, hash, now).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResetTokenConsumed
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
