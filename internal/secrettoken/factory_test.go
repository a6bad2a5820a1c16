package secrettoken_test

import (
	"testing"
	"time"

	"go-hris-iam/internal/secrettoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Generate(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f := secrettoken.NewFactory(secrettoken.WithClock(func() time.Time { return now }))

	t.Run("reset window", func(t *testing.T) {
		tok, err := f.Generate(secrettoken.PurposeReset)
		require.NoError(t, err)

		assert.Len(t, tok.Plaintext, 64)
		assert.Equal(t, secrettoken.HashOf(tok.Plaintext), tok.Hash)
		assert.NotEqual(t, tok.Plaintext, tok.Hash)
		assert.Equal(t, now.Add(10*time.Minute), tok.Expiry)
	})

	t.Run("invite window", func(t *testing.T) {
		tok, err := f.Generate(secrettoken.PurposeInvite)
		require.NoError(t, err)

		assert.Equal(t, now.Add(24*time.Hour), tok.Expiry)
	})

	t.Run("unknown purpose", func(t *testing.T) {
		_, err := f.Generate(secrettoken.Purpose("other"))
		assert.Error(t, err)
	})

	t.Run("unique plaintexts", func(t *testing.T) {
		a, _ := f.Generate(secrettoken.PurposeReset)
		b, _ := f.Generate(secrettoken.PurposeReset)
		assert.NotEqual(t, a.Plaintext, b.Plaintext)
	})
}

func TestRedeem(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f := secrettoken.NewFactory(secrettoken.WithClock(func() time.Time { return now }))
	tok, err := f.Generate(secrettoken.PurposeReset)
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		hash      string
		at        time.Time
		want      bool
	}{
		{"before expiry", tok.Plaintext, tok.Hash, now.Add(9 * time.Minute), true},
		{"at expiry instant", tok.Plaintext, tok.Hash, tok.Expiry, false},
		{"after expiry", tok.Plaintext, tok.Hash, now.Add(11 * time.Minute), false},
		{"wrong plaintext", "deadbeef", tok.Hash, now, false},
		{"cleared hash", tok.Plaintext, "", now, false},
		{"hash presented as plaintext", tok.Hash, tok.Hash, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secrettoken.Redeem(tt.candidate, tt.hash, tok.Expiry, tt.at))
		})
	}
}
