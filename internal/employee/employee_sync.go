package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/domain"
	employeeerrors "go-hris-iam/internal/employee/errors"
	"go-hris-iam/internal/events"
	"go-hris-iam/internal/messaging/kafka"
	"go-hris-iam/internal/notification"
	"go-hris-iam/internal/observability/metrics"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/contextutil"
	"go-hris-iam/internal/shared/counter"
	"go-hris-iam/internal/storage"
	"go-hris-iam/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncDeps are the collaborators of the Synchronizer. Outbox, Files and
// Notifier are optional.
type SyncDeps struct {
	Users      user.Repository
	Employees  Repository
	Counter    counter.Repository
	Hasher     credential.Hasher
	Notifier   notification.Sender
	Files      storage.FileDeleter
	Outbox     kafka.OutboxRepository
	AppBaseURL string
}

// Synchronizer keeps a login identity and its employee profile consistent.
// Identity writes happen first and are undone when the profile write fails.
type Synchronizer struct {
	deps   SyncDeps
	now    func() time.Time
	logger *zap.Logger
}

func NewSynchronizer(deps SyncDeps, logger ...*zap.Logger) *Synchronizer {
	l := zap.L().Named("employee.sync")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.sync")
	}
	if deps.Files == nil {
		deps.Files = storage.NoopDeleter{}
	}
	return &Synchronizer{deps: deps, now: time.Now, logger: l}
}

func (s *Synchronizer) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *Synchronizer) CreatePair(ctx context.Context, companyID uuid.UUID, req CreateEmployeeRequest) (*Employee, error) {
	log := s.log(ctx)

	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.OfficialEmail))
	code := strings.TrimSpace(req.EmployeeCode)
	if fullName == "" || email == "" {
		return nil, employeeerrors.ErrMissingRequiredFields
	}

	role, err := assignableRole(req.Role)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	if code == "" {
		next, err := s.deps.Counter.GetNextValue(ctx, companyID, counter.EmployeeCode)
		if err != nil {
			log.Error("generate employee code failed", zap.Error(err))
			return nil, apperror.WithCause(apperror.ErrInternal, err)
		}
		code = fmt.Sprintf("EMP-%06d", next)
	} else {
		_, err := s.deps.Employees.FindByCode(ctx, companyID, code)
		switch {
		case err == nil:
			return nil, employeeerrors.ErrEmployeeCodeAlreadyExists
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, mapRepositoryError(err)
		}
	}

	password, err := credential.RandomPassword()
	if err != nil {
		return nil, apperror.WithCause(apperror.ErrInternal, err)
	}

	identity := &user.User{
		ID:        uuid.New(),
		CompanyID: &companyID,
		Name:      fullName,
		Email:     email,
		Role:      role,
		IsActive:  true,
	}
	if err := identity.SetPassword(s.deps.Hasher, password); err != nil {
		return nil, apperror.WithCause(apperror.ErrInternal, err)
	}
	if err := s.deps.Users.Create(ctx, identity); err != nil {
		log.Warn("create identity failed", zap.String("email", email), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	profile := &Employee{
		ID:            uuid.New(),
		CompanyID:     companyID,
		UserID:        identity.ID,
		EmployeeCode:  code,
		OfficialEmail: email,
		FullName:      fullName,
		Phone:         strings.TrimSpace(req.Phone),
		Designation:   strings.TrimSpace(req.Designation),
		Role:          role,
	}
	if err := s.deps.Employees.Create(ctx, profile); err != nil {
		log.Warn("create profile failed, removing identity",
			zap.String("user_id", identity.ID.String()),
			zap.Error(err),
		)
		s.compensateIdentity(ctx, identity.ID)
		return nil, mapRepositoryError(err)
	}

	s.notify(ctx, "credentials", notification.CredentialsMessage(email, fullName, password, s.loginURL()))
	s.enqueue(ctx, profile.ID.String(), events.EventEmployeeCreated, events.EmployeeCreatedEvent{
		EventType:  events.EventEmployeeCreated,
		EmployeeID: profile.ID.String(),
		UserID:     identity.ID.String(),
		CompanyID:  companyID.String(),
		OccurredAt: s.now().UTC(),
	})

	log.Info("employee created",
		zap.String("employee_id", profile.ID.String()),
		zap.String("user_id", identity.ID.String()),
	)
	return profile, nil
}

func (s *Synchronizer) compensateIdentity(ctx context.Context, userID uuid.UUID) {
	if err := s.deps.Users.Delete(ctx, userID); err != nil {
		metrics.RecordOrphanIdentity()
		s.log(ctx).Error("compensating identity delete failed, orphan identity left behind",
			zap.String("orphan_user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func (s *Synchronizer) UpdatePair(ctx context.Context, companyID, id uuid.UUID, req UpdateEmployeeRequest) (*Employee, error) {
	log := s.log(ctx)

	profile, err := s.deps.Employees.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	identityFields := map[string]any{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, employeeerrors.ErrMissingRequiredFields
		}
		profile.FullName = name
		identityFields["name"] = name
	}
	if req.Role != nil {
		role, err := assignableRole(*req.Role)
		if err != nil {
			return nil, err
		}
		profile.Role = role
		identityFields["role"] = role
	}
	if req.Phone != nil {
		profile.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Designation != nil {
		profile.Designation = strings.TrimSpace(*req.Designation)
	}

	email := ""
	if req.OfficialEmail != nil {
		email = strings.ToLower(strings.TrimSpace(*req.OfficialEmail))
		if email == profile.OfficialEmail {
			email = ""
		}
	}
	if email != "" {
		if err := s.ensureEmailFree(ctx, email, profile.UserID); err != nil {
			return nil, err
		}
	}

	var (
		previous    *user.User
		newPassword string
	)
	if len(identityFields) > 0 || email != "" {
		identity, err := s.deps.Users.FindByID(ctx, profile.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Error("profile has no identity", zap.String("employee_id", profile.ID.String()))
			}
			return nil, mapRepositoryError(err)
		}
		snapshot := *identity
		previous = &snapshot

		if email != "" {
			newPassword, err = credential.RandomPassword()
			if err != nil {
				return nil, apperror.WithCause(apperror.ErrInternal, err)
			}
			if err := identity.SetPassword(s.deps.Hasher, newPassword); err != nil {
				return nil, apperror.WithCause(apperror.ErrInternal, err)
			}

			profile.OfficialEmail = email
			identityFields["email"] = email
			identityFields["password_hash"] = identity.PasswordHash
		}

		if err := s.deps.Users.UpdateFields(ctx, profile.UserID, identityFields); err != nil {
			return nil, mapRepositoryError(err)
		}
	}

	if err := s.deps.Employees.Update(ctx, profile); err != nil {
		if previous != nil {
			s.restoreIdentity(ctx, previous, identityFields)
		}
		return nil, mapRepositoryError(err)
	}

	if newPassword != "" {
		s.notify(ctx, "credentials", notification.CredentialsMessage(profile.OfficialEmail, profile.FullName, newPassword, s.loginURL()))
	}

	log.Info("employee updated",
		zap.String("employee_id", profile.ID.String()),
		zap.Bool("credentials_rotated", newPassword != ""),
	)
	return profile, nil
}

// restoreIdentity writes back the previous value of every key in changed.
func (s *Synchronizer) restoreIdentity(ctx context.Context, previous *user.User, changed map[string]any) {
	restore := make(map[string]any, len(changed))
	for key := range changed {
		switch key {
		case "name":
			restore[key] = previous.Name
		case "email":
			restore[key] = previous.Email
		case "password_hash":
			restore[key] = previous.PasswordHash
		case "role":
			restore[key] = previous.Role
		}
	}
	if err := s.deps.Users.UpdateFields(ctx, previous.ID, restore); err != nil {
		s.log(ctx).Error("restoring identity after failed profile update failed",
			zap.String("user_id", previous.ID.String()),
			zap.Int("fields", len(restore)),
			zap.Error(err),
		)
	}
}

func (s *Synchronizer) DeletePair(ctx context.Context, actor domain.Principal, companyID, id uuid.UUID) error {
	log := s.log(ctx)

	profile, err := s.deps.Employees.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if profile.UserID == actor.UserID {
		return employeeerrors.ErrCannotDeleteSelf
	}
	if actor.Role != domain.RoleSuperAdmin && profile.CompanyID != companyID {
		return employeeerrors.ErrEmployeeNotFound
	}

	if failed, err := storage.DeleteAll(ctx, s.deps.Files, profile.DocumentKeys); err != nil {
		log.Warn("some employee documents were not deleted",
			zap.String("employee_id", profile.ID.String()),
			zap.Strings("failed_keys", failed),
			zap.Error(err),
		)
	}

	if err := s.deps.Users.Delete(ctx, profile.UserID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return mapRepositoryError(err)
		}
		log.Warn("identity already gone", zap.String("user_id", profile.UserID.String()))
	}

	if err := s.deps.Employees.Delete(ctx, profile.ID); err != nil {
		log.Error("profile delete failed after identity delete",
			zap.String("employee_id", profile.ID.String()),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	s.enqueue(ctx, profile.ID.String(), events.EventEmployeeDeleted, events.EmployeeDeletedEvent{
		EventType:  events.EventEmployeeDeleted,
		EmployeeID: profile.ID.String(),
		UserID:     profile.UserID.String(),
		CompanyID:  profile.CompanyID.String(),
		DeletedBy:  actor.UserID.String(),
		OccurredAt: s.now().UTC(),
	})

	log.Info("employee deleted", zap.String("employee_id", profile.ID.String()))
	return nil
}

// ensureEmailFree fails when email belongs to an identity other than owner.
func (s *Synchronizer) ensureEmailFree(ctx context.Context, email string, owner uuid.UUID) error {
	existing, err := s.deps.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != owner {
			return employeeerrors.ErrEmailAlreadyRegistered
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return apperror.WithCause(apperror.ErrInternal, err)
	}
}

func (s *Synchronizer) notify(ctx context.Context, kind string, msg notification.Message) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.Send(ctx, msg); err != nil {
		metrics.RecordNotificationFailure(kind)
		s.log(ctx).Warn("notification failed", zap.String("kind", kind), zap.String("to", msg.To), zap.Error(err))
	}
}

func (s *Synchronizer) enqueue(ctx context.Context, aggregateID, eventType string, payload any) {
	if s.deps.Outbox == nil {
		return
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"employee",
		aggregateID,
		eventType,
		events.EmployeeLifecycleTopic,
		payload,
	)
	if err == nil {
		err = s.deps.Outbox.Create(ctx, event)
	}
	if err != nil {
		s.log(ctx).Error("enqueue employee event failed",
			zap.String("event_type", eventType),
			zap.String("employee_id", aggregateID),
			zap.Error(err),
		)
	}
}

func (s *Synchronizer) loginURL() string {
	return strings.TrimRight(s.deps.AppBaseURL, "/") + "/login"
}

func assignableRole(raw string) (domain.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.RoleEmployee, nil
	}
	role, err := domain.ParseRole(raw)
	if err != nil || role == domain.RoleSuperAdmin {
		return "", employeeerrors.ErrInvalidRole
	}
	return role, nil
}
