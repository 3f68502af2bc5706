package middleware

// identity.go holds the context keys set by BearerAuth and the helpers
// that read them back.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/auth"
)

const (
    userIDKey   = "user_id"
    identityKey = "identity"
)

// UserID returns the verified user id, or "" when the request did not pass
// through BearerAuth.
func UserID(c echo.Context) string {
    if s, ok := c.Get(userIDKey).(string); ok {
        return s
    }
    return ""
}

// Identity returns the verified identity, or nil.
func Identity(c echo.Context) *auth.Identity {
    id, _ := c.Get(identityKey).(*auth.Identity)
    return id
}

// userID is the key component used by the cache and rate limiter; anonymous
// callers share the "guest" bucket.
func userID(c echo.Context) string {
    if s := UserID(c); s != "" {
        return s
    }
    return "guest"
}
