package user_test

import (
	"testing"
	"time"

	"go-hris-iam/internal/credential"
	"go-hris-iam/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingHasher struct {
	credential.Hasher
	calls int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.calls++
	return h.Hasher.Hash(plaintext)
}

func TestUser_SetPassword(t *testing.T) {
	hasher := &countingHasher{Hasher: credential.NewBcryptHasher(bcrypt.MinCost)}
	u := &user.User{}

	require.NoError(t, u.SetPassword(hasher, "first-pass"))

	assert.Equal(t, 1, hasher.calls)
	assert.NotEqual(t, "first-pass", u.PasswordHash)
	assert.True(t, u.CheckPassword(hasher, "first-pass"))
	assert.False(t, u.CheckPassword(hasher, "other"))
	assert.Error(t, u.SetPassword(hasher, ""))
}

func TestUser_ResetToken(t *testing.T) {
	u := &user.User{}
	expiry := time.Now().Add(10 * time.Minute)

	u.SetResetToken("abc", expiry)
	require.NotNil(t, u.ResetTokenHash)
	require.NotNil(t, u.ResetTokenExpiry)
	assert.Equal(t, "abc", *u.ResetTokenHash)

	u.ClearResetToken()
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiry)

	fields := u.ResetTokenFields()
	assert.Contains(t, fields, "reset_token_hash")
	assert.Contains(t, fields, "reset_token_expiry")
}

func TestUser_HasTenant(t *testing.T) {
	nilID := uuid.Nil
	cid := uuid.New()

	assert.False(t, (&user.User{}).HasTenant())
	assert.False(t, (&user.User{CompanyID: &nilID}).HasTenant())
	assert.True(t, (&user.User{CompanyID: &cid}).HasTenant())
}

func TestToResponse_HidesSecrets(t *testing.T) {
	hash := "secret-hash"
	u := user.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: "bcrypt", ResetTokenHash: &hash}

	resp := user.ToResponse(u)

	assert.Equal(t, "a@x.com", resp.Email)
	assert.Nil(t, resp.CompanyID)
}
