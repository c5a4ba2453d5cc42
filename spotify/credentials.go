package spotify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// tokens this close to expiry are refreshed before use
	expiryBuffer = 120 * time.Second
)

// Credentials holds a client-credentials access token and refreshes it when
// it's about to expire or has been invalidated.
type Credentials struct {
	mu     sync.Mutex
	config clientcredentials.Config
	token  *oauth2.Token
}

// NewCredentials returns a credential provider for the given app. An empty
// tokenURL means Spotify's.
func NewCredentials(clientID, clientSecret, tokenURL string) *Credentials {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &Credentials{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
}

// Token returns a usable access token, fetching a new one if necessary.
// Failures wrap ErrCredentials.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.token.AccessToken, nil
	}
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing client id or secret", ErrCredentials)
	}

	token, err := c.config.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	c.token = token
	return token.AccessToken, nil
}

// ExpiresAt is when the current token expires, or the zero time if there
// is none.
func (c *Credentials) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return time.Time{}
	}
	return c.token.Expiry
}

// Invalidate drops the current token, so the next call to Token fetches a
// fresh one.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

func (c *Credentials) valid() bool {
	if c.token == nil || c.token.AccessToken == "" {
		return false
	}
	if c.token.Expiry.IsZero() {
		return true
	}
	return time.Until(c.token.Expiry) > expiryBuffer
}
