package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// Caching is off when Enabled is false or no Redis client is available.
// KeyStrategy is "user_route_query" (per-user entries) or
// "method_route_body" (shared entries keyed by request body).
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig builds the config for the caller's plan reads.  Entries
// are per user and dropped by that user's writes; TTL only bounds how long
// an unused entry lingers.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      map[string]bool{"GET": true},
        TTL:          parseDur(getenv("CACHE_TTL", "5m")),
        KeyStrategy:  "user_route_query",
        Prefix:       getenv("CACHE_PREFIX", "planner:cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

// LoadSocialCacheConfig builds the config for the social content route.
// That route is a POST, so entries are keyed by a digest of the JSON body.
// Responses include randomized fallback posts; a short TTL keeps them from
// sticking around when a provider recovers.
func LoadSocialCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("SOCIAL_CACHE_ENABLED", getenv("CACHE_ENABLED", "true")) == "true",
        Methods:      map[string]bool{"POST": true},
        TTL:          parseDur(getenv("SOCIAL_CACHE_TTL", "10m")),
        KeyStrategy:  "method_route_body",
        Prefix:       getenv("CACHE_PREFIX", "planner:cache") + ":social",
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

// Helpers shared with redis.go and config.go.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
