package middleware

import (
    "fmt"
    "log"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/ai-travel-planner/internal/config"
)

// tokenBucketScript refills in whole intervals and takes one token per
// request.  It returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

// decision is the outcome of one rate-limit check.
type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

// NewTokenBucket limits requests per key.  With a Redis client the bucket
// is shared across instances; without one each process keeps its own
// buckets in memory.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    var take func(c echo.Context, key string) (decision, bool)
    if rdb != nil {
        take = func(c echo.Context, key string) (decision, bool) { return takeRedis(c, rdb, cfg, key) }
    } else {
        local := newLocalBuckets(cfg)
        take = func(_ echo.Context, key string) (decision, bool) { return local.take(key), true }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, ok := take(c, key)
            if !ok {
                return next(c)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            if d.allowed {
                return next(c)
            }

            secs := int(math.Ceil(d.retry.Seconds()))
            if secs < 0 {
                secs = 0
            }
            c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                log.Printf("ratelimit: block key=%s retry=%s", key, d.retry)
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "detail":      "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// takeRedis runs the bucket script.  Redis errors let the request through.
func takeRedis(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (decision, bool) {
    args := []interface{}{
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        if cfg.Debug {
            log.Printf("ratelimit: redis error for key=%s: %v", key, err)
        }
        return decision{}, false
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        log.Printf("ratelimit: unexpected script result for key=%s: %#v", key, vals)
        return decision{}, false
    }
    return decision{
        allowed:   fmt.Sprint(arr[0]) == "1",
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, true
}

// localBuckets keeps one x/time/rate limiter per key.  Idle limiters are
// swept once they have been unused for the configured TTL.
type localBuckets struct {
    mu        sync.Mutex
    limit     rate.Limit
    burst     int
    ttl       time.Duration
    buckets   map[string]*localBucket
    lastSweep time.Time
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    every := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
    return &localBuckets{
        limit:     rate.Every(every),
        burst:     cfg.Capacity,
        ttl:       cfg.TTL,
        buckets:   map[string]*localBucket{},
        lastSweep: time.Now(),
    }
}

func (l *localBuckets) take(key string) decision {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    if now.Sub(l.lastSweep) > l.ttl {
        for k, b := range l.buckets {
            if now.Sub(b.seen) > l.ttl {
                delete(l.buckets, k)
            }
        }
        l.lastSweep = now
    }

    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
        l.buckets[key] = b
    }
    b.seen = now

    r := b.lim.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{allowed: false, remaining: 0, retry: delay}
    }
    return decision{allowed: true, remaining: int64(b.lim.TokensAt(now))}
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    uid := userID(c)
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
