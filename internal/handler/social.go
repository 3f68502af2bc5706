package handler

import (
    "context"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/ai-travel-planner/internal/model"
    "github.com/iliyamo/ai-travel-planner/internal/provider/social"
)

// ContentSource gathers social posts for a destination.
type ContentSource interface {
    Content(ctx context.Context, req model.SocialMediaRequest) social.Content
}

type SocialHandler struct {
    Source ContentSource
}

func NewSocialHandler(s ContentSource) *SocialHandler { return &SocialHandler{Source: s} }

// Content always answers 200; provider shortfalls are backfilled with
// generated posts.
func (h *SocialHandler) Content(c echo.Context) error {
    var req model.SocialMediaRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
    }
    if strings.TrimSpace(req.Destination) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"detail": "destination is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()
    content := h.Source.Content(ctx, req)
    if content.Degraded() {
        log.Printf("social: %s served with generated posts (%d of %d items)", req.Destination, len(content.Items), content.Total)
    }
    return c.JSON(http.StatusOK, content.Response())
}
