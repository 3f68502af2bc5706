package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig configures one token bucket.  Capacity is the burst size;
// RefillTokens are added every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig returns the limiter applied to the plan routes.
func LoadRateLimitConfig() RateLimitConfig {
    return loadRateLimit("RATE_LIMIT", RateLimitConfig{
        Capacity:       60,
        RefillTokens:   1,
        RefillInterval: time.Second,
        KeyStrategy:    "ip_user_route",
        Prefix:         "planner:rl",
    })
}

// LoadChatRateLimitConfig returns the limiter for itinerary generation.
// Each chat request runs an agent session with many tool calls, so the
// bucket is much smaller than the plan routes'.
func LoadChatRateLimitConfig() RateLimitConfig {
    return loadRateLimit("CHAT_RATE_LIMIT", RateLimitConfig{
        Capacity:       5,
        RefillTokens:   1,
        RefillInterval: 30 * time.Second,
        KeyStrategy:    "ip",
        Prefix:         "planner:rl:chat",
    })
}

func loadRateLimit(prefix string, def RateLimitConfig) RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool(prefix+"_ENABLED", true),
        Capacity:       envInt(prefix+"_CAPACITY", def.Capacity),
        RefillTokens:   envInt(prefix+"_REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(prefix+"_REFILL_INTERVAL", def.RefillInterval),
        TTL:            envDur(prefix+"_TTL", 10*time.Minute),
        KeyStrategy:    envStr(prefix+"_KEY_STRATEGY", def.KeyStrategy),
        Prefix:         envStr(prefix+"_PREFIX", def.Prefix),
        Debug:          envBool(prefix+"_DEBUG", false),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON": return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
