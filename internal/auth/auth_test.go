package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testClientID = "client-123.apps.googleusercontent.com"

func jwksServer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	srv, _ := countingJWKSServer(t, kid, pub)
	return srv
}

// countingJWKSServer serves one key and counts key set downloads.
func countingJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) (*httptest.Server, *int32) {
	t.Helper()
	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": kid,
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &fetches
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, mutate func(*googleClaims)) string {
	t.Helper()
	now := time.Now()
	c := &googleClaims{
		Email:   "ada@example.com",
		Name:    "Ada",
		Picture: "https://example.com/ada.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "1090001",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(c)
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := jwksServer(t, "k1", &key.PublicKey)
	v := NewVerifier(testClientID, srv.URL)
	t.Cleanup(v.Close)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		id, err := v.Verify(ctx, sign(t, key, "k1", nil))
		require.NoError(t, err)
		assert.Equal(t, "1090001", id.UserID)
		assert.Equal(t, "ada@example.com", id.Email)
		assert.Equal(t, "Ada", id.Name)
	})

	t.Run("bare issuer accepted", func(t *testing.T) {
		_, err := v.Verify(ctx, sign(t, key, "k1", func(c *googleClaims) { c.Issuer = "accounts.google.com" }))
		assert.NoError(t, err)
	})

	cases := map[string]func(*googleClaims){
		"wrong audience": func(c *googleClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} },
		"wrong issuer":   func(c *googleClaims) { c.Issuer = "https://evil.example" },
		"expired":        func(c *googleClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) },
		"no subject":     func(c *googleClaims) { c.Subject = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, sign(t, key, "k1", mutate))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("unknown kid", func(t *testing.T) {
		_, err := v.Verify(ctx, sign(t, key, "k2", nil))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		_, err = v.Verify(ctx, sign(t, other, "k1", nil))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyUnknownKeyIDsDoNotRefetch(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv, fetches := countingJWKSServer(t, "k1", &key.PublicKey)
	v := NewVerifier(testClientID, srv.URL)
	t.Cleanup(v.Close)
	ctx := context.Background()

	_, err = v.Verify(ctx, sign(t, key, "k1", nil))
	require.NoError(t, err)

	forger, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	began := time.Now()
	for i := 0; i < 50; i++ {
		_, err := v.Verify(ctx, sign(t, forger, fmt.Sprintf("forged-%d", i), nil))
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Less(t, time.Since(began), verifyTimeout, "unknown kids must fail without waiting on a refresh")
	// initial load plus at most one refresh for the first unknown kid
	assert.LessOrEqual(t, atomic.LoadInt32(fetches), int32(2))

	_, err = v.Verify(ctx, sign(t, key, "k1", nil))
	assert.NoError(t, err)
}

func TestVerifyKeySetUnavailable(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := NewVerifier(testClientID, srv.URL)
	t.Cleanup(v.Close)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := v.Verify(context.Background(), sign(t, key, "k1", nil))
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(2))
}

func TestVerifyNotConfigured(t *testing.T) {
	_, err := NewVerifier("", "").Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthURL(t *testing.T) {
	o := NewOAuth("cid", "secret", "http://localhost:8000/auth/google/callback")
	require.True(t, o.Configured())

	u, err := url.Parse(o.AuthURL("st8"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "st8", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestExchange(t *testing.T) {
	var idToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"access_token": "at", "token_type": "Bearer", "expires_in": 3600}
		if idToken != "" {
			body["id_token"] = idToken
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	o := NewOAuth("cid", "secret", "http://localhost/cb")
	o.Config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	ctx := context.Background()

	idToken = "header.payload.sig"
	got, err := o.Exchange(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, idToken, got)

	idToken = ""
	_, err = o.Exchange(ctx, "good")
	assert.ErrorIs(t, err, ErrNoIDToken)

	_, err = o.Exchange(ctx, "bad")
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "id_token"))
}
