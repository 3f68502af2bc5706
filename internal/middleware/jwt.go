package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"  // context bounds the verifier call
    "errors"   // errors distinguishes misconfiguration from bad tokens
    "log"      // log records verifier misconfiguration
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming
    "time"     // time bounds key fetches

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/ai-travel-planner/internal/auth" // Google ID token verification
)

// TokenVerifier turns a raw bearer token into a verified identity.
type TokenVerifier interface {
    Verify(ctx context.Context, raw string) (*auth.Identity, error)
}

// BearerAuth returns an Echo middleware that validates a Google ID token
// sent as a Bearer token and injects the verified subject into the request
// context.  Handlers read it with UserID(c).  A token that cannot be
// verified is rejected with 401; it is never used as a user id itself.
func BearerAuth(v TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
            defer cancel()
            id, err := v.Verify(ctx, raw)
            if err != nil {
                if errors.Is(err, auth.ErrNotConfigured) {
                    log.Printf("auth: bearer rejected: %v", err)
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
            }

            c.Set(userIDKey, id.UserID)
            c.Set(identityKey, id)
            return next(c)
        }
    }
}
