package auth

import (
	"context"
	"errors"
	"strings"

	autherrors "go-hris-iam/internal/auth/errors"
	"go-hris-iam/internal/company"
	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/employee"
	"go-hris-iam/internal/notification"
	"go-hris-iam/internal/oauth"
	"go-hris-iam/internal/observability/metrics"
	"go-hris-iam/internal/secrettoken"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/shared/contextutil"
	"go-hris-iam/internal/token"
	"go-hris-iam/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	GoogleLogin(ctx context.Context, providerToken string) (AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, plaintext, password string) (AuthResponse, error)
	Invite(ctx context.Context, companyID, employeeID string) error
	GetMe(ctx context.Context, userID string) (user.UserResponse, error)
}

// Deps are the collaborators of the auth service. Verifier and Notifier may
// be nil, which disables federated login and outgoing mail respectively.
type Deps struct {
	Users      user.Repository
	Companies  company.Repository
	Employees  employee.Repository
	Hasher     credential.Hasher
	Issuer     *token.Issuer
	Secrets    *secrettoken.Factory
	Verifier   oauth.Verifier
	Notifier   notification.Sender
	AppBaseURL string
}

type service struct {
	deps   Deps
	logger *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if deps.Secrets == nil {
		deps.Secrets = secrettoken.NewFactory()
	}
	return &service{deps: deps, logger: l}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	log := s.log(ctx)
	email := normalizeEmail(req.Email)

	role := domain.RoleEmployee
	if req.CompanyID == "" {
		role = domain.RoleCompanyAdmin
	}
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return AuthResponse{}, autherrors.ErrInvalidRole
		}
		role = parsed
	}
	if role == domain.RoleSuperAdmin {
		return AuthResponse{}, autherrors.ErrSuperAdminSignup
	}
	// Joining a tenant is unauthenticated; anything above EMPLOYEE has to be
	// granted by that tenant's admin afterwards.
	if req.CompanyID != "" && role != domain.RoleEmployee {
		return AuthResponse{}, autherrors.ErrElevatedJoin
	}

	if _, err := s.deps.Users.FindByEmail(ctx, email); err == nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}

	var (
		companyID      uuid.UUID
		createdCompany bool
	)
	if req.CompanyID != "" {
		id, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return AuthResponse{}, autherrors.ErrCompanyNotFound
		}
		if _, err := s.deps.Companies.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AuthResponse{}, autherrors.ErrCompanyNotFound
			}
			return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
		}
		companyID = id
	} else {
		name := strings.TrimSpace(req.CompanyName)
		if name == "" {
			name = strings.TrimSpace(req.Name)
		}
		comp := &company.Company{ID: uuid.New(), Name: name, Email: email, Status: company.StatusActive}
		if err := s.deps.Companies.Create(ctx, comp); err != nil {
			log.Error("create company on register failed", zap.Error(err))
			return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
		}
		companyID = comp.ID
		createdCompany = true
	}

	u := &user.User{
		ID:        uuid.New(),
		CompanyID: &companyID,
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Role:      role,
		IsActive:  true,
	}
	if err := u.SetPassword(s.deps.Hasher, req.Password); err != nil {
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		if createdCompany {
			if delErr := s.deps.Companies.Delete(ctx, companyID); delErr != nil {
				log.Error("removing company after failed register failed",
					zap.String("company_id", companyID.String()),
					zap.Error(delErr),
				)
			}
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}

	log.Info("identity registered",
		zap.String("user_id", u.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.String("role", role.String()),
	)
	return s.session(u)
}

func (s *service) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	u, err := s.deps.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
		}
		metrics.RecordAuthRejection("bad_credentials")
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !u.CheckPassword(s.deps.Hasher, password) {
		metrics.RecordAuthRejection("bad_credentials")
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		metrics.RecordAuthRejection("inactive")
		return AuthResponse{}, autherrors.ErrUserInactive
	}
	if !u.HasTenant() {
		metrics.RecordAuthRejection("no_company")
		return AuthResponse{}, autherrors.ErrNoCompany
	}

	s.log(ctx).Info("login succeeded", zap.String("user_id", u.ID.String()))
	return s.session(u)
}

func (s *service) GoogleLogin(ctx context.Context, providerToken string) (AuthResponse, error) {
	log := s.log(ctx)
	if s.deps.Verifier == nil {
		return AuthResponse{}, autherrors.ErrProviderVerification
	}

	profile, err := s.deps.Verifier.Verify(ctx, providerToken)
	if err != nil {
		log.Warn("provider token verification failed", zap.Error(err))
		return AuthResponse{}, apperror.WithCause(autherrors.ErrProviderVerification, err)
	}

	u, err := s.deps.Users.FindByEmail(ctx, normalizeEmail(profile.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordAuthRejection("not_provisioned")
			return AuthResponse{}, autherrors.ErrAccountNotProvisioned
		}
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}
	if !u.IsActive {
		metrics.RecordAuthRejection("inactive")
		return AuthResponse{}, autherrors.ErrUserInactive
	}
	if !u.HasTenant() {
		metrics.RecordAuthRejection("no_company")
		return AuthResponse{}, autherrors.ErrNoCompany
	}

	s.enrichAvatar(ctx, u, profile.AvatarURL)
	return s.session(u)
}

// enrichAvatar copies the provider avatar onto an identity that has none.
func (s *service) enrichAvatar(ctx context.Context, u *user.User, avatarURL string) {
	if u.AvatarURL != "" || avatarURL == "" {
		return
	}
	if err := s.deps.Users.UpdateFields(ctx, u.ID, map[string]any{"avatar_url": avatarURL}); err != nil {
		s.log(ctx).Warn("avatar enrichment failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return
	}
	u.AvatarURL = avatarURL
	s.log(ctx).Info("avatar enriched from identity provider", zap.String("user_id", u.ID.String()))
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.deps.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrUserNotFound
		}
		return apperror.WithCause(apperror.ErrInternal, err)
	}

	plaintext, err := s.storeSecret(ctx, u, secrettoken.PurposeReset)
	if err != nil {
		return err
	}
	return s.deliver(ctx, u, "reset", notification.ResetMessage(u.Email, s.resetLink(plaintext)))
}

func (s *service) Invite(ctx context.Context, companyID, employeeID string) error {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return autherrors.ErrCompanyNotFound
	}
	eid, err := uuid.Parse(employeeID)
	if err != nil {
		return apperror.ErrNotFound
	}

	profile, err := s.deps.Employees.FindByIDAndCompany(ctx, cid, eid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return apperror.WithCause(apperror.ErrInternal, err)
	}

	u, err := s.deps.Users.FindByID(ctx, profile.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrIdentityGone
		}
		return apperror.WithCause(apperror.ErrInternal, err)
	}

	plaintext, err := s.storeSecret(ctx, u, secrettoken.PurposeInvite)
	if err != nil {
		return err
	}
	return s.deliver(ctx, u, "invite", notification.InviteMessage(u.Email, profile.FullName, s.resetLink(plaintext)))
}

func (s *service) ResetPassword(ctx context.Context, plaintext, password string) (AuthResponse, error) {
	u, err := s.deps.Users.FindByResetTokenHash(ctx, secrettoken.HashOf(plaintext))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrInvalidResetToken
		}
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}
	now := s.deps.Secrets.Now()
	if u.ResetTokenHash == nil || u.ResetTokenExpiry == nil ||
		!secrettoken.Redeem(plaintext, *u.ResetTokenHash, *u.ResetTokenExpiry, now) {
		return AuthResponse{}, autherrors.ErrInvalidResetToken
	}
	storedHash := *u.ResetTokenHash
	if !u.IsActive {
		return AuthResponse{}, autherrors.ErrUserInactive
	}

	if err := u.SetPassword(s.deps.Hasher, password); err != nil {
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}
	u.ClearResetToken()

	fields := u.ResetTokenFields()
	fields["password_hash"] = u.PasswordHash
	if err := s.deps.Users.ConsumeResetToken(ctx, u.ID, storedHash, now, fields); err != nil {
		if errors.Is(err, user.ErrResetTokenConsumed) {
			return AuthResponse{}, autherrors.ErrInvalidResetToken
		}
		return AuthResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}

	s.log(ctx).Info("password reset", zap.String("user_id", u.ID.String()))
	return s.session(u)
}

func (s *service) GetMe(ctx context.Context, userID string) (user.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return user.UserResponse{}, autherrors.ErrIdentityGone
	}
	u, err := s.deps.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.UserResponse{}, autherrors.ErrIdentityGone
		}
		return user.UserResponse{}, apperror.WithCause(apperror.ErrInternal, err)
	}
	return user.ToResponse(*u), nil
}

func (s *service) storeSecret(ctx context.Context, u *user.User, purpose secrettoken.Purpose) (string, error) {
	tok, err := s.deps.Secrets.Generate(purpose)
	if err != nil {
		return "", apperror.WithCause(apperror.ErrInternal, err)
	}
	u.SetResetToken(tok.Hash, tok.Expiry)
	if err := s.deps.Users.UpdateFields(ctx, u.ID, u.ResetTokenFields()); err != nil {
		return "", apperror.WithCause(apperror.ErrInternal, err)
	}
	return tok.Plaintext, nil
}

// deliver sends msg and withdraws the stored secret when delivery fails so
// that no token is left redeemable without its owner knowing it.
func (s *service) deliver(ctx context.Context, u *user.User, kind string, msg notification.Message) error {
	if s.deps.Notifier == nil {
		return nil
	}
	err := s.deps.Notifier.Send(ctx, msg)
	if err == nil {
		return nil
	}

	metrics.RecordNotificationFailure(kind)
	s.log(ctx).Warn("secret token delivery failed", zap.String("kind", kind), zap.String("user_id", u.ID.String()), zap.Error(err))

	u.ClearResetToken()
	if clearErr := s.deps.Users.UpdateFields(ctx, u.ID, u.ResetTokenFields()); clearErr != nil {
		s.log(ctx).Error("clearing undelivered token failed", zap.String("user_id", u.ID.String()), zap.Error(clearErr))
	}
	return apperror.WithCause(autherrors.ErrEmailDelivery, err)
}

func (s *service) resetLink(plaintext string) string {
	return strings.TrimRight(s.deps.AppBaseURL, "/") + "/reset-password/" + plaintext
}

func (s *service) session(u *user.User) (AuthResponse, error) {
	signed, err := s.deps.Issuer.Issue(u.ID.String(), u.CompanyIDString(), u.Role.String(), 0)
	if err != nil {
		return AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return AuthResponse{Token: signed, User: user.ToResponse(*u)}, nil
}
