package user

import (
	"errors"
	"time"

	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/domain"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID   `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        *uuid.UUID  `gorm:"column:company_id;type:uuid;index"`
	Name             string      `gorm:"column:name;type:varchar(255)"`
	Email            string      `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_users_email"`
	PasswordHash     string      `gorm:"column:password_hash;type:text;not null" json:"-"`
	AvatarURL        string      `gorm:"column:avatar_url;type:text"`
	Role             domain.Role `gorm:"column:role;type:varchar(50);not null;default:EMPLOYEE"`
	IsActive         bool        `gorm:"column:is_active;not null;default:true"`
	ResetTokenHash   *string     `gorm:"column:reset_token_hash;type:varchar(64);index" json:"-"`
	ResetTokenExpiry *time.Time  `gorm:"column:reset_token_expiry" json:"-"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword is the only way a password hash is produced.
func (u *User) SetPassword(hasher credential.Hasher, plaintext string) error {
	if plaintext == "" {
		return errors.New("password is empty")
	}
	hashed, err := hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hashed
	return nil
}

func (u *User) CheckPassword(hasher credential.Hasher, plaintext string) bool {
	return hasher.Verify(plaintext, u.PasswordHash)
}

// SetResetToken and ClearResetToken keep hash and expiry set or nil together.
func (u *User) SetResetToken(hash string, expiry time.Time) {
	u.ResetTokenHash = &hash
	u.ResetTokenExpiry = &expiry
}

func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
}

func (u *User) HasTenant() bool {
	return u.CompanyID != nil && *u.CompanyID != uuid.Nil
}

func (u *User) CompanyIDString() string {
	if !u.HasTenant() {
		return ""
	}
	return u.CompanyID.String()
}

func (u *User) Principal() domain.Principal {
	return domain.Principal{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Role:      u.Role,
		Email:     u.Email,
		Name:      u.Name,
	}
}

// ResetTokenFields is the partial update that persists the current reset
// token state, including clearing it.
func (u *User) ResetTokenFields() map[string]any {
	return map[string]any{
		"reset_token_hash":   u.ResetTokenHash,
		"reset_token_expiry": u.ResetTokenExpiry,
	}
}
