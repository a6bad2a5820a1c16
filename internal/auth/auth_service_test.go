package auth_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-hris-iam/internal/auth"
	autherrors "go-hris-iam/internal/auth/errors"
	"go-hris-iam/internal/company"
	companyMock "go-hris-iam/internal/company/mock"
	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/domain"
	"go-hris-iam/internal/employee"
	employeeMock "go-hris-iam/internal/employee/mock"
	"go-hris-iam/internal/notification"
	notificationMock "go-hris-iam/internal/notification/mock"
	"go-hris-iam/internal/oauth"
	oauthMock "go-hris-iam/internal/oauth/mock"
	"go-hris-iam/internal/secrettoken"
	"go-hris-iam/internal/shared/apperror"
	"go-hris-iam/internal/token"
	"go-hris-iam/internal/user"
	userMock "go-hris-iam/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type authFixture struct {
	users     *userMock.MockRepository
	companies *companyMock.MockRepository
	employees *employeeMock.MockRepository
	verifier  *oauthMock.MockVerifier
	notifier  *notificationMock.MockSender
	hasher    credential.Hasher
	issuer    *token.Issuer
	now       time.Time
	svc       auth.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &authFixture{
		users:     userMock.NewMockRepository(ctrl),
		companies: companyMock.NewMockRepository(ctrl),
		employees: employeeMock.NewMockRepository(ctrl),
		verifier:  oauthMock.NewMockVerifier(ctrl),
		notifier:  notificationMock.NewMockSender(ctrl),
		hasher:    credential.NewBcryptHasher(bcrypt.MinCost),
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.issuer = token.NewIssuer("test-secret", time.Hour, token.WithClock(clock))
	f.svc = auth.NewService(auth.Deps{
		Users:      f.users,
		Companies:  f.companies,
		Employees:  f.employees,
		Hasher:     f.hasher,
		Issuer:     f.issuer,
		Secrets:    secrettoken.NewFactory(secrettoken.WithClock(clock)),
		Verifier:   f.verifier,
		Notifier:   f.notifier,
		AppBaseURL: "https://hris.test/",
	})
	return f
}

func (f *authFixture) identity(t *testing.T, password string) *user.User {
	t.Helper()
	cid := uuid.New()
	u := &user.User{ID: uuid.New(), CompanyID: &cid, Email: "ana@acme.test", Name: "Ana", Role: domain.RoleManager, IsActive: true}
	require.NoError(t, u.SetPassword(f.hasher, password))
	return u
}

var resetLink = regexp.MustCompile(`reset-password/([0-9a-f]{64})`)

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "correct-horse")
		f.users.EXPECT().FindByEmail(ctx, "ana@acme.test").Return(u, nil)

		res, err := f.svc.Login(ctx, " Ana@Acme.test ", "correct-horse")

		require.NoError(t, err)
		claims, err := f.issuer.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.Subject)
		assert.Equal(t, u.CompanyID.String(), claims.CompanyID)
		assert.Equal(t, "MANAGER", claims.Role)
		assert.Equal(t, "ana@acme.test", res.User.Email)
	})

	t.Run("Wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(f.identity(t, "correct-horse"), nil)

		_, err := f.svc.Login(ctx, "ana@acme.test", "battery-staple")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Login(ctx, "ghost@acme.test", "whatever")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "correct-horse")
		u.IsActive = false
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(u, nil)

		_, err := f.svc.Login(ctx, "ana@acme.test", "correct-horse")

		assert.ErrorIs(t, err, autherrors.ErrUserInactive)
	})

	t.Run("No company", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "correct-horse")
		u.CompanyID = nil
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(u, nil)

		_, err := f.svc.Login(ctx, "ana@acme.test", "correct-horse")

		assert.ErrorIs(t, err, autherrors.ErrNoCompany)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a company for a new admin", func(t *testing.T) {
		f := newAuthFixture(t)
		var created *company.Company

		f.users.EXPECT().FindByEmail(ctx, "boss@acme.test").Return(nil, gorm.ErrRecordNotFound)
		f.companies.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *company.Company) error {
			created = c
			return nil
		})
		f.users.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, domain.RoleCompanyAdmin, u.Role)
			assert.True(t, f.hasher.Verify("long-enough", u.PasswordHash))
			return nil
		})

		res, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Boss", Email: "boss@acme.test", Password: "long-enough", CompanyName: "Acme",
		})

		require.NoError(t, err)
		require.NotNil(t, res.User.CompanyID)
		assert.Equal(t, created.ID.String(), *res.User.CompanyID)
		assert.Equal(t, "Acme", created.Name)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("Joins an existing company", func(t *testing.T) {
		f := newAuthFixture(t)
		cid := uuid.New()

		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		f.companies.EXPECT().GetByID(ctx, cid).Return(&company.Company{ID: cid}, nil)
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		res, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Eve", Email: "eve@acme.test", Password: "long-enough", CompanyID: cid.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, "EMPLOYEE", res.User.Role)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(&user.User{}, nil)

		_, err := f.svc.Register(ctx, auth.RegisterRequest{Name: "Eve", Email: "eve@acme.test", Password: "long-enough"})

		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})

	t.Run("Super admin cannot self register", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Root", Email: "root@acme.test", Password: "long-enough", Role: "SUPER_ADMIN",
		})

		assert.ErrorIs(t, err, autherrors.ErrSuperAdminSignup)
	})

	t.Run("Elevated role cannot join an existing company", func(t *testing.T) {
		for _, role := range []string{"COMPANY_ADMIN", "MANAGER"} {
			f := newAuthFixture(t)

			_, err := f.svc.Register(ctx, auth.RegisterRequest{
				Name: "Mallory", Email: "m@evil.test", Password: "long-enough", CompanyID: uuid.NewString(), Role: role,
			})

			assert.ErrorIs(t, err, autherrors.ErrElevatedJoin, role)
		}
	})

	t.Run("Explicit employee role joins an existing company", func(t *testing.T) {
		f := newAuthFixture(t)
		cid := uuid.New()

		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		f.companies.EXPECT().GetByID(ctx, cid).Return(&company.Company{ID: cid}, nil)
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		res, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Eve", Email: "eve@acme.test", Password: "long-enough", CompanyID: cid.String(), Role: "EMPLOYEE",
		})

		require.NoError(t, err)
		assert.Equal(t, "EMPLOYEE", res.User.Role)
	})

	t.Run("Unknown company", func(t *testing.T) {
		f := newAuthFixture(t)
		cid := uuid.New()
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		f.companies.EXPECT().GetByID(ctx, cid).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Eve", Email: "eve@acme.test", Password: "long-enough", CompanyID: cid.String(),
		})

		assert.ErrorIs(t, err, autherrors.ErrCompanyNotFound)
	})

	t.Run("Failed identity removes the new company", func(t *testing.T) {
		f := newAuthFixture(t)
		var created *company.Company

		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		f.companies.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, c *company.Company) error {
			created = c
			return nil
		})
		f.users.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("connection reset"))
		f.companies.EXPECT().Delete(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) error {
			assert.Equal(t, created.ID, id)
			return nil
		})

		_, err := f.svc.Register(ctx, auth.RegisterRequest{Name: "Eve", Email: "eve@acme.test", Password: "long-enough"})

		assert.Error(t, err)
	})
}

func TestService_GoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Provisioned identity gets its avatar filled", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "irrelevant")

		f.verifier.EXPECT().Verify(ctx, "provider-token").
			Return(oauth.Profile{Email: "ana@acme.test", AvatarURL: "https://img.test/a.png"}, nil)
		f.users.EXPECT().FindByEmail(ctx, "ana@acme.test").Return(u, nil)
		f.users.EXPECT().UpdateFields(ctx, u.ID, map[string]any{"avatar_url": "https://img.test/a.png"}).Return(nil)

		res, err := f.svc.GoogleLogin(ctx, "provider-token")

		require.NoError(t, err)
		assert.Equal(t, "https://img.test/a.png", res.User.AvatarURL)
	})

	t.Run("Existing avatar is kept", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "irrelevant")
		u.AvatarURL = "https://img.test/mine.png"

		f.verifier.EXPECT().Verify(ctx, gomock.Any()).
			Return(oauth.Profile{Email: "ana@acme.test", AvatarURL: "https://img.test/a.png"}, nil)
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(u, nil)

		res, err := f.svc.GoogleLogin(ctx, "provider-token")

		require.NoError(t, err)
		assert.Equal(t, "https://img.test/mine.png", res.User.AvatarURL)
	})

	t.Run("Unprovisioned email is never created", func(t *testing.T) {
		f := newAuthFixture(t)
		f.verifier.EXPECT().Verify(ctx, gomock.Any()).Return(oauth.Profile{Email: "new@acme.test"}, nil)
		f.users.EXPECT().FindByEmail(ctx, "new@acme.test").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.GoogleLogin(ctx, "provider-token")

		assert.ErrorIs(t, err, autherrors.ErrAccountNotProvisioned)
	})

	t.Run("Provider failure", func(t *testing.T) {
		f := newAuthFixture(t)
		f.verifier.EXPECT().Verify(ctx, gomock.Any()).Return(oauth.Profile{}, oauth.ErrVerification)

		_, err := f.svc.GoogleLogin(ctx, "provider-token")

		assert.ErrorIs(t, err, autherrors.ErrProviderVerification)
		assert.ErrorIs(t, err, oauth.ErrVerification)
	})
}

func TestService_ForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Token is single use and expires after ten minutes", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "old-password")
		var mailed notification.Message

		f.users.EXPECT().FindByEmail(ctx, "ana@acme.test").Return(u, nil)
		f.users.EXPECT().UpdateFields(ctx, u.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ uuid.UUID, fields map[string]any) error {
			hash := fields["reset_token_hash"].(*string)
			expiry := fields["reset_token_expiry"].(*time.Time)
			require.NotNil(t, hash)
			assert.Equal(t, f.now.Add(10*time.Minute), *expiry)
			return nil
		})
		f.notifier.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, m notification.Message) error {
			mailed = m
			return nil
		})

		require.NoError(t, f.svc.ForgotPassword(ctx, "ana@acme.test"))

		match := resetLink.FindStringSubmatch(mailed.TextBody)
		require.Len(t, match, 2)
		plaintext := match[1]
		assert.Equal(t, secrettoken.HashOf(plaintext), *u.ResetTokenHash)
		assert.Contains(t, mailed.TextBody, "https://hris.test/reset-password/")

		f.now = f.now.Add(9 * time.Minute)
		f.users.EXPECT().FindByResetTokenHash(ctx, secrettoken.HashOf(plaintext)).Return(u, nil)
		f.users.EXPECT().ConsumeResetToken(ctx, u.ID, secrettoken.HashOf(plaintext), f.now, gomock.Any()).DoAndReturn(func(_ context.Context, _ uuid.UUID, _ string, _ time.Time, fields map[string]any) error {
			assert.Nil(t, fields["reset_token_hash"])
			assert.Nil(t, fields["reset_token_expiry"])
			assert.True(t, f.hasher.Verify("new-password", fields["password_hash"].(string)))
			return nil
		})

		res, err := f.svc.ResetPassword(ctx, plaintext, "new-password")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)

		f.users.EXPECT().FindByResetTokenHash(ctx, secrettoken.HashOf(plaintext)).Return(nil, gorm.ErrRecordNotFound)
		_, err = f.svc.ResetPassword(ctx, plaintext, "another-password")
		assert.ErrorIs(t, err, autherrors.ErrInvalidResetToken)
	})

	t.Run("Expired token", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "old-password")
		plaintext := "ab12"
		u.SetResetToken(secrettoken.HashOf(plaintext), f.now.Add(-time.Second))

		f.users.EXPECT().FindByResetTokenHash(ctx, gomock.Any()).Return(u, nil)

		_, err := f.svc.ResetPassword(ctx, plaintext, "new-password")

		assert.ErrorIs(t, err, autherrors.ErrInvalidResetToken)
	})

	t.Run("Unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "ghost@acme.test"), autherrors.ErrUserNotFound)
	})

	t.Run("Two redemptions that read before either writes", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "old-password")
		plaintext := "c0ffee"
		hash := secrettoken.HashOf(plaintext)
		u.SetResetToken(hash, f.now.Add(5*time.Minute))

		// Both requests load the row while it still carries the token.
		first, second := *u, *u
		f.users.EXPECT().FindByResetTokenHash(ctx, hash).Return(&first, nil)
		f.users.EXPECT().FindByResetTokenHash(ctx, hash).Return(&second, nil)

		stored := hash
		var writes int
		f.users.EXPECT().ConsumeResetToken(ctx, u.ID, hash, f.now, gomock.Any()).Times(2).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, want string, _ time.Time, _ map[string]any) error {
				if stored != want {
					return user.ErrResetTokenConsumed
				}
				stored = ""
				writes++
				return nil
			})

		_, err1 := f.svc.ResetPassword(ctx, plaintext, "first-password")
		_, err2 := f.svc.ResetPassword(ctx, plaintext, "second-password")

		require.NoError(t, err1)
		assert.ErrorIs(t, err2, autherrors.ErrInvalidResetToken)
		assert.Equal(t, 1, writes)
	})

	t.Run("Store failure while consuming", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "old-password")
		u.SetResetToken(secrettoken.HashOf("beef"), f.now.Add(time.Minute))

		f.users.EXPECT().FindByResetTokenHash(ctx, gomock.Any()).Return(u, nil)
		f.users.EXPECT().ConsumeResetToken(ctx, u.ID, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("conn reset"))

		_, err := f.svc.ResetPassword(ctx, "beef", "new-password")

		assert.ErrorIs(t, err, apperror.ErrInternal)
	})

	t.Run("Delivery failure withdraws the token", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "old-password")

		f.users.EXPECT().FindByEmail(ctx, gomock.Any()).Return(u, nil)
		gomock.InOrder(
			f.users.EXPECT().UpdateFields(ctx, u.ID, gomock.Any()).Return(nil),
			f.notifier.EXPECT().Send(ctx, gomock.Any()).Return(notification.ErrSendFailed),
			f.users.EXPECT().UpdateFields(ctx, u.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ uuid.UUID, fields map[string]any) error {
				assert.Nil(t, fields["reset_token_hash"])
				return nil
			}),
		)

		err := f.svc.ForgotPassword(ctx, "ana@acme.test")

		assert.ErrorIs(t, err, autherrors.ErrEmailDelivery)
		assert.Nil(t, u.ResetTokenHash)
		assert.Nil(t, u.ResetTokenExpiry)
	})
}

func TestService_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends a 24 hour link", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.identity(t, "temporary")
		cid := *u.CompanyID
		profile := &employee.Employee{ID: uuid.New(), CompanyID: cid, UserID: u.ID, FullName: "Ana"}

		f.employees.EXPECT().FindByIDAndCompany(ctx, cid, profile.ID).Return(profile, nil)
		f.users.EXPECT().FindByID(ctx, u.ID).Return(u, nil)
		f.users.EXPECT().UpdateFields(ctx, u.ID, gomock.Any()).Return(nil)
		f.notifier.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, m notification.Message) error {
			assert.Equal(t, u.Email, m.To)
			assert.Regexp(t, resetLink, m.TextBody)
			return nil
		})

		require.NoError(t, f.svc.Invite(ctx, cid.String(), profile.ID.String()))
		assert.Equal(t, f.now.Add(24*time.Hour), *u.ResetTokenExpiry)
	})

	t.Run("Employee of another tenant", func(t *testing.T) {
		f := newAuthFixture(t)
		cid, eid := uuid.New(), uuid.New()
		f.employees.EXPECT().FindByIDAndCompany(ctx, cid, eid).Return(nil, gorm.ErrRecordNotFound)

		err := f.svc.Invite(ctx, cid.String(), eid.String())

		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestService_GetMe(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	u := f.identity(t, "irrelevant")

	f.users.EXPECT().FindByID(ctx, u.ID).Return(u, nil)
	res, err := f.svc.GetMe(ctx, u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.Email, res.Email)

	f.users.EXPECT().FindByID(ctx, gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
	_, err = f.svc.GetMe(ctx, uuid.NewString())
	assert.ErrorIs(t, err, autherrors.ErrIdentityGone)
}
