package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/auth"
    "github.com/iliyamo/ai-travel-planner/internal/middleware"
    "github.com/iliyamo/ai-travel-planner/internal/utils"
)

// CodeExchanger runs the OAuth authorization-code flow.
type CodeExchanger interface {
    Configured() bool
    AuthURL(state string) string
    Exchange(ctx context.Context, code string) (string, error)
}

// AuthHandler bundles dependencies for the Google login endpoints.  The
// service issues no tokens of its own: the client keeps Google's ID token
// and presents it as a Bearer token.
type AuthHandler struct {
    OAuth       CodeExchanger
    Verifier    middleware.TokenVerifier
    StateSecret string
    FrontendURL string
}

func NewAuthHandler(o CodeExchanger, v middleware.TokenVerifier, stateSecret, frontendURL string) *AuthHandler {
    return &AuthHandler{OAuth: o, Verifier: v, StateSecret: stateSecret, FrontendURL: frontendURL}
}

const stateTTL = 10 * time.Minute

// Google redirects the browser to Google's consent screen.
func (h *AuthHandler) Google(c echo.Context) error {
    if !h.OAuth.Configured() {
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Google OAuth not configured"})
    }
    st, err := utils.NewStateToken(h.StateSecret, stateTTL)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "failed to create state"})
    }
    return c.Redirect(http.StatusTemporaryRedirect, h.OAuth.AuthURL(st.Token))
}

// Callback exchanges the code and hands the ID token and profile to the
// front end through query parameters.  Failures redirect with ?error=.
func (h *AuthHandler) Callback(c echo.Context) error {
    if e := c.QueryParam("error"); e != "" {
        return h.fail(c, e)
    }
    code := c.QueryParam("code")
    if code == "" {
        return h.fail(c, "missing_code")
    }
    if err := utils.VerifyStateToken(h.StateSecret, c.QueryParam("state")); err != nil {
        return h.fail(c, "invalid_state")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    idToken, err := h.OAuth.Exchange(ctx, code)
    if err != nil {
        log.Printf("auth: code exchange failed: %v", err)
        return h.fail(c, "token_exchange_failed")
    }
    id, err := h.Verifier.Verify(ctx, idToken)
    if err != nil {
        log.Printf("auth: id token rejected: %v", err)
        return h.fail(c, "invalid_token")
    }

    q := url.Values{}
    q.Set("token", idToken)
    q.Set("email", id.Email)
    q.Set("name", id.Name)
    q.Set("picture", id.Picture)
    q.Set("user_id", id.UserID)
    return c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/auth/callback?"+q.Encode())
}

func (h *AuthHandler) fail(c echo.Context, reason string) error {
    return c.Redirect(http.StatusTemporaryRedirect, h.FrontendURL+"/auth/callback?error="+url.QueryEscape(reason))
}

// Verify checks ?token= and reports the identity it carries.
func (h *AuthHandler) Verify(c echo.Context) error {
    token := c.QueryParam("token")
    if token == "" {
        return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": "missing token"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    id, err := h.Verifier.Verify(ctx, token)
    if err != nil {
        msg := "invalid token"
        if errors.Is(err, auth.ErrNotConfigured) {
            msg = "Google OAuth not configured"
        }
        return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{"valid": true, "user": id})
}

// Logout has nothing to revoke server-side; the client drops its token.
func (h *AuthHandler) Logout(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out successfully"})
}
