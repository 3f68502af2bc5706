// Package auth verifies Google ID tokens and drives the Google OAuth code
// flow. The service never issues identities of its own.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var (
	ErrNotConfigured = errors.New("google oauth not configured")
	ErrInvalidToken  = errors.New("invalid identity token")
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Identity is the verified subset of an ID token's claims.
type Identity struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type googleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 ID tokens against Google's published keys. The key
// set is loaded on first use and refreshed hourly by keyfunc. A token with
// an unknown kid triggers at most one refetch per five minutes; further
// unknown kids fail without a fetch.
type Verifier struct {
	clientID string
	jwksURL  string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	keys     keyfunc.Keyfunc
	loadErr  error
	loadedAt time.Time
}

const (
	// verifyTimeout also bounds the wait on keyfunc's refresh limiter, so a
	// rate-limited refetch fails immediately instead of blocking.
	verifyTimeout = 5 * time.Second
	// loadRetry spaces out attempts to fetch the key set after a failure.
	loadRetry = 30 * time.Second
)

func NewVerifier(clientID, jwksURL string) *Verifier {
	if jwksURL == "" {
		jwksURL = GoogleJWKSURL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Verifier{clientID: clientID, jwksURL: jwksURL, ctx: ctx, cancel: cancel}
}

// Close stops the background key refresh.
func (v *Verifier) Close() { v.cancel() }

// Verify validates signature, audience, issuer and expiry, and returns the
// token's identity. Every failure wraps ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}
	keys, err := v.keySet()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()
	claims := &googleClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, keys.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !googleIssuers[claims.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email, Name: claims.Name, Picture: claims.Picture}, nil
}

// keySet loads the remote key set once. After a failed load it returns
// the same error until loadRetry has passed.
func (v *Verifier) keySet() (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil {
		return v.keys, nil
	}
	if v.loadErr != nil && time.Since(v.loadedAt) < loadRetry {
		return nil, v.loadErr
	}
	v.loadedAt = time.Now()
	keys, err := keyfunc.NewDefaultCtx(v.ctx, []string{v.jwksURL})
	if err != nil {
		v.loadErr = fmt.Errorf("load jwks: %w", err)
		return nil, v.loadErr
	}
	v.keys, v.loadErr = keys, nil
	return keys, nil
}
