package secrettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

type Purpose string

const (
	PurposeReset  Purpose = "reset"
	PurposeInvite Purpose = "invite"
)

const (
	ResetTTL  = 10 * time.Minute
	InviteTTL = 24 * time.Hour
)

// TTL returns the redemption window of a purpose.
func (p Purpose) TTL() (time.Duration, error) {
	switch p {
	case PurposeReset:
		return ResetTTL, nil
	case PurposeInvite:
		return InviteTTL, nil
	default:
		return 0, fmt.Errorf("secrettoken: unknown purpose %q", p)
	}
}

// Token carries the plaintext for out-of-band delivery. Only Hash and
// Expiry are ever persisted.
type Token struct {
	Plaintext string
	Hash      string
	Expiry    time.Time
}

type Option func(*Factory)

func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

type Factory struct {
	now func() time.Time
}

func NewFactory(opts ...Option) *Factory {
	f := &Factory{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Generate(purpose Purpose) (Token, error) {
	ttl, err := purpose.TTL()
	if err != nil {
		return Token{}, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, err
	}
	plaintext := hex.EncodeToString(buf)

	return Token{
		Plaintext: plaintext,
		Hash:      HashOf(plaintext),
		Expiry:    f.now().Add(ttl),
	}, nil
}

func (f *Factory) Now() time.Time {
	return f.now()
}

// HashOf is the deterministic lookup hash of a plaintext token.
func HashOf(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Redeem succeeds only when candidate hashes to storedHash and now is
// strictly before expiry. Callers clear the stored fields on success.
func Redeem(candidate, storedHash string, expiry, now time.Time) bool {
	if candidate == "" || storedHash == "" {
		return false
	}
	match := subtle.ConstantTimeCompare([]byte(HashOf(candidate)), []byte(storedHash)) == 1
	return match && now.Before(expiry)
}
