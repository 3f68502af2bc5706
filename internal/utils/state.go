package utils // package utils provides helper functions for signed OAuth state tokens

import (
    "crypto/rand"   // secure random nonce generation
    "encoding/hex"  // hex encoding of the nonce
    "errors"        // sentinel errors
    "time"          // expiry handling

    "github.com/golang-jwt/jwt/v5" // JWT library for signing and parsing state tokens
)

// ErrBadState is returned when an OAuth state parameter fails verification.
var ErrBadState = errors.New("invalid oauth state")

// StateToken represents a signed, short‑lived state value handed to Google
// during the OAuth redirect.  The callback must present the same value
// back.  Because the token is self‑verifying, the server keeps no per‑login
// session storage.
type StateToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewStateToken signs an HS256 JWT carrying a random nonce and an expiry
// ttl from now.
func NewStateToken(secret string, ttl time.Duration) (StateToken, error) {
    nonce, err := randomHex(16)
    if err != nil {
        return StateToken{}, err
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "nonce": nonce,
        "exp":   exp.Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return StateToken{}, err
    }
    return StateToken{Token: signed, Exp: exp}, nil
}

// VerifyStateToken checks the signature and expiry of a state value
// produced by NewStateToken.
func VerifyStateToken(secret, raw string) error {
    if raw == "" {
        return ErrBadState
    }
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return ErrBadState
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return ErrBadState
    }
    if n, _ := claims["nonce"].(string); n == "" {
        return ErrBadState
    }
    return nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
