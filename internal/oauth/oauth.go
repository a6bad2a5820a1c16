package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

var (
	ErrEmptyToken   = errors.New("oauth: empty provider token")
	ErrVerification = errors.New("oauth: provider verification failed")
	ErrNoEmail      = errors.New("oauth: provider returned no email")
)

// Profile is the subset of the provider identity the service trusts.
type Profile struct {
	Email     string
	Name      string
	AvatarURL string
}

//go:generate mockgen -source=oauth.go -destination=mock/oauth_mock.go -package=mock
type Verifier interface {
	Verify(ctx context.Context, providerToken string) (Profile, error)
}

type userFetcher interface {
	FetchUser(session goth.Session) (goth.User, error)
}

// GoogleVerifier exchanges a Google access token for the user's profile.
type GoogleVerifier struct {
	provider userFetcher
}

type GoogleOption func(*google.Provider)

// WithHTTPClient replaces the client used for the userinfo call.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(p *google.Provider) { p.HTTPClient = c }
}

func NewGoogleVerifier(clientID, clientSecret, callbackURL string, opts ...GoogleOption) *GoogleVerifier {
	p := google.New(clientID, clientSecret, callbackURL, "email", "profile")
	p.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(p)
	}
	return &GoogleVerifier{provider: p}
}

func (v *GoogleVerifier) Verify(ctx context.Context, providerToken string) (Profile, error) {
	token := strings.TrimSpace(providerToken)
	if token == "" {
		return Profile{}, ErrEmptyToken
	}
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}

	u, err := v.provider.FetchUser(&google.Session{AccessToken: token})
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if u.Email == "" {
		return Profile{}, ErrNoEmail
	}

	name := u.Name
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return Profile{
		Email:     strings.ToLower(u.Email),
		Name:      name,
		AvatarURL: u.AvatarURL,
	}, nil
}
