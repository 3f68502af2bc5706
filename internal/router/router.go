package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/ai-travel-planner/internal/config"
    "github.com/iliyamo/ai-travel-planner/internal/handler"
    "github.com/iliyamo/ai-travel-planner/internal/middleware"
)

// Handlers groups everything the router mounts.  Redis may be nil; the
// cache then passes through and rate limiting keeps local buckets.
type Handlers struct {
    Chat     *handler.ChatHandler
    Progress *handler.ProgressHandler
    Social   *handler.SocialHandler
    Plans    *handler.PlansHandler
    Auth     *handler.AuthHandler
    Verifier middleware.TokenVerifier
    Redis    *redis.Client
}

// RegisterRoutes registers routes that need no identity: health checks,
// itinerary generation, its progress stream and the export helpers.
func RegisterRoutes(e *echo.Echo, h Handlers) {
    e.GET("/", handler.Root)
    e.GET("/healthz", handler.Health)

    api := e.Group("/api")
    api.POST("/chat", h.Chat.Chat, middleware.NewTokenBucket(config.LoadChatRateLimitConfig(), h.Redis))
    // The stream stays open until the client leaves; no cache or limiter.
    api.GET("/progress/:request_id", h.Progress.Stream)
    api.POST("/download-calendar", handler.DownloadCalendar)
    api.POST("/social-media-content", h.Social.Content, middleware.NewRedisCache(config.LoadSocialCacheConfig(), h.Redis))
}

// RegisterAuth registers the Google login flow under /api/auth.  None of
// these routes require a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/api/auth")
    g.GET("/google", a.Google)
    g.GET("/callback", a.Callback)
    g.GET("/verify", a.Verify)
    g.POST("/logout", a.Logout)
}

// RegisterPlans registers the saved-plan routes.  Every route requires a
// verified bearer token; the limiter and the read cache then key on the
// verified user.
func RegisterPlans(e *echo.Echo, p *handler.PlansHandler, v middleware.TokenVerifier, rdb *redis.Client) {
    g := e.Group("/api/plans")
    g.Use(middleware.BearerAuth(v))
    g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

    g.POST("/save", p.Save)
    g.GET("", p.List)
    g.GET("/:id", p.Get)
    g.PUT("/:id", p.Update)
    g.DELETE("/:id", p.Delete)
}

// Register mounts every route group.
func Register(e *echo.Echo, h Handlers) {
    RegisterRoutes(e, h)
    RegisterAuth(e, h.Auth)
    RegisterPlans(e, h.Plans, h.Verifier, h.Redis)
}
