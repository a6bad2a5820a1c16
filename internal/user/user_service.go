package user

import (
	"context"
	"errors"

	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/shared/contextutil"
	usererrors "go-hris-iam/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]UserResponse, error)
	ToggleStatus(ctx context.Context, actor domain.Principal, id string, isActive bool) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type service struct {
	repo   Repository
	hasher credential.Hasher
	logger *zap.Logger
}

func NewService(repo Repository, hasher credential.Hasher, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, hasher: hasher, logger: l}
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]UserResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	users, err := s.repo.FindAllByCompany(ctx, cid)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = ToResponse(u)
	}
	return resp, nil
}

func (s *service) ToggleStatus(ctx context.Context, actor domain.Principal, id string, isActive bool) error {
	l := contextutil.GetLogger(ctx, s.logger)

	uid, err := uuid.Parse(id)
	if err != nil {
		return usererrors.ErrInvalidUserID
	}
	if uid == actor.UserID && !isActive {
		return usererrors.ErrCannotDeactivateSelf
	}

	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return mapRepositoryError(err)
	}
	if actor.Role != domain.RoleSuperAdmin && actor.CompanyIDString() != u.CompanyIDString() {
		return usererrors.ErrUserNotFound
	}

	if err := s.repo.UpdateFields(ctx, uid, map[string]any{"is_active": isActive}); err != nil {
		l.Error("failed to update user status", zap.String("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	l.Info("user status updated", zap.String("user_id", id), zap.Bool("is_active", isActive))
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return mapRepositoryError(err)
	}

	if !u.CheckPassword(s.hasher, currentPassword) {
		return usererrors.ErrWrongPassword
	}

	if err := u.SetPassword(s.hasher, newPassword); err != nil {
		l.Error("failed to hash new password", zap.Error(err))
		return err
	}

	return mapRepositoryError(s.repo.UpdateFields(ctx, uid, map[string]any{"password_hash": u.PasswordHash}))
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	return err
}

// PrincipalFinder resolves token subjects for the tenant guard.
type PrincipalFinder struct {
	repo Repository
}

func NewPrincipalFinder(repo Repository) *PrincipalFinder {
	return &PrincipalFinder{repo: repo}
}

func (f *PrincipalFinder) FindPrincipal(ctx context.Context, id uuid.UUID) (domain.Principal, error) {
	u, err := f.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Principal{}, domain.ErrPrincipalNotFound
		}
		return domain.Principal{}, err
	}
	if !u.IsActive {
		return domain.Principal{}, domain.ErrPrincipalNotFound
	}
	return u.Principal(), nil
}
