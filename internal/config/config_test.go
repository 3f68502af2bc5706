package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("APP_ENV", "test")
    t.Setenv("DB_USER", "root")
    t.Setenv("DB_HOST", "localhost")
    t.Setenv("DB_NAME", "planner")
    t.Setenv("STATE_SECRET", "s")

    cfg := Load()
    assert.Equal(t, "8000", cfg.Port)
    assert.Equal(t, "3306", cfg.DBPort)
    assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLMBaseURL)
    assert.Equal(t, "openai/gpt-4o", cfg.LLMModel)
    assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
    assert.Empty(t, cfg.MCPServers)
    assert.Equal(t, 100*time.Second, cfg.MCPTimeout)
    assert.Equal(t, time.Second, cfg.ProgressPacing)
}

func TestLoadOverrides(t *testing.T) {
    t.Setenv("APP_ENV", "prod")
    t.Setenv("DB_USER", "root")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_NAME", "planner")
    t.Setenv("FRONTEND_URL", "https://app.example/")
    t.Setenv("MCP_SERVERS", "npx a ; npx b --flag")
    t.Setenv("PROGRESS_PACING", "0s")
    t.Setenv("STATE_SECRET", "")
    t.Setenv("GOOGLE_CLIENT_SECRET", "gsecret")

    cfg := Load()
    assert.Equal(t, "https://app.example", cfg.FrontendURL)
    assert.Equal(t, []string{"npx a", "npx b --flag"}, cfg.MCPServers)
    assert.Equal(t, time.Duration(0), cfg.ProgressPacing)
    assert.Equal(t, "gsecret", cfg.StateSecret)
}

func TestRateLimitLoaders(t *testing.T) {
    t.Setenv("CHAT_RATE_LIMIT_CAPACITY", "0")
    t.Setenv("CHAT_RATE_LIMIT_REFILL_INTERVAL", "1m")

    chat := LoadChatRateLimitConfig()
    assert.True(t, chat.Enabled)
    assert.Equal(t, 1, chat.Capacity)
    assert.Equal(t, time.Minute, chat.RefillInterval)
    assert.Equal(t, 10*time.Minute, chat.TTL)
    assert.Equal(t, "ip", chat.KeyStrategy)

    plans := LoadRateLimitConfig()
    assert.Equal(t, 60, plans.Capacity)
    assert.Equal(t, "ip_user_route", plans.KeyStrategy)
    assert.Equal(t, "planner:rl", plans.Prefix)
}

func TestSocialCacheConfig(t *testing.T) {
    t.Setenv("CACHE_PREFIX", "pc")
    cfg := LoadSocialCacheConfig()
    assert.True(t, cfg.Methods["POST"])
    assert.False(t, cfg.Methods["GET"])
    assert.Equal(t, "method_route_body", cfg.KeyStrategy)
    assert.Equal(t, "pc:social", cfg.Prefix)
    assert.Equal(t, 10*time.Minute, cfg.TTL)
}

func TestPlanCacheConfig(t *testing.T) {
    t.Setenv("CACHE_PREFIX", "")
    t.Setenv("CACHE_TTL", "")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.False(t, cfg.Methods["POST"])
    assert.Equal(t, "user_route_query", cfg.KeyStrategy)
    assert.Equal(t, "planner:cache", cfg.Prefix)
    assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestRedisOptions(t *testing.T) {
    t.Setenv("REDIS_URL", "")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_DB", "2")
    opts, err := redisOptions()
    assert.NoError(t, err)
    assert.Equal(t, "cache:6380", opts.Addr)
    assert.Equal(t, 2, opts.DB)
    assert.Nil(t, opts.TLSConfig)

    t.Setenv("REDIS_URL", "redis://:pw@example:6379/3")
    opts, err = redisOptions()
    assert.NoError(t, err)
    assert.Equal(t, "example:6379", opts.Addr)
    assert.Equal(t, "pw", opts.Password)
    assert.Equal(t, 3, opts.DB)
}
