package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "io"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/ai-travel-planner/internal/config"
)

// captureWriter tees the response body into buf (up to limit bytes) while
// forwarding everything to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size+int64(len(b)) <= cw.limit {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// cachedResponse is the value stored in Redis for one cache entry.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// cacheKeyFrom builds a stable key honoring prefix and strategy.
//   method_route_body – method, path and a digest of the request body, so
//                       POST lookups with the same JSON share an entry
//   user_route_query  – the caller's user id, path and query (default)
// User keys keep the id in clear text so a write can drop every entry of
// that user; see userKeyPattern.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    path := r.URL.Path

    switch strings.ToLower(cfg.KeyStrategy) {
    case "method_route_body":
        sum := sha1.Sum([]byte(strings.Join([]string{"method", r.Method, "route", path, "body", bodyDigest(c)}, ":")))
        return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
    default:
        sum := sha1.Sum([]byte(strings.Join([]string{"route", path, "q", r.URL.RawQuery}, ":")))
        return fmt.Sprintf("%s:u:%s:%x", cfg.Prefix, userID(c), sum[:])
    }
}

// userScoped reports whether entries are keyed per user.
func userScoped(cfg config.CacheConfig) bool {
    return !strings.EqualFold(cfg.KeyStrategy, "method_route_body")
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// userKeyPattern matches every cached entry of one user.
func userKeyPattern(cfg config.CacheConfig, uid string) string {
    return fmt.Sprintf("%s:u:%s:*", cfg.Prefix, globEscaper.Replace(uid))
}

// invalidateUser removes the cached responses of uid.
func invalidateUser(ctx context.Context, rdb *redis.Client, cfg config.CacheConfig, uid string) {
    var keys []string
    iter := rdb.Scan(ctx, 0, userKeyPattern(cfg, uid), 100).Iterator()
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        log.Printf("cache: scan for %s: %v", uid, err)
        return
    }
    if len(keys) == 0 {
        return
    }
    if err := rdb.Del(ctx, keys...).Err(); err != nil {
        log.Printf("cache: invalidate %s: %v", uid, err)
    }
}

func bodyDigest(c echo.Context) string {
    r := c.Request()
    if r.Body == nil {
        return ""
    }
    b, err := io.ReadAll(r.Body)
    _ = r.Body.Close()
    r.Body = io.NopCloser(bytes.NewReader(b))
    if err != nil {
        return ""
    }
    sum := sha1.Sum(b)
    return fmt.Sprintf("%x", sum[:])
}

// NewRedisCache replays stored 200 responses, headers included, for the
// configured methods.  With a user-scoped strategy any other successful
// request through the same middleware drops the caller's entries, so a
// save, update or delete is visible on the next read.  With caching
// disabled or no Redis client it is a pass-through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                err := next(c)
                if err == nil && userScoped(cfg) && c.Response().Status < http.StatusBadRequest {
                    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
                    invalidateUser(ctx, rdb, cfg, userID(c))
                    cancel()
                }
                return err
            }
            key := cacheKeyFrom(cfg, c)

            if hit, ok := lookup(c.Request().Context(), rdb, key); ok {
                return replay(c, hit)
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() {
                return nil
            }
            entry := cachedResponse{Status: cw.status, Header: c.Response().Header().Clone(), Body: cw.buf.Bytes()}
            entry.Header.Del("X-Cache")
            if payload, err := json.Marshal(entry); err == nil {
                if err := rdb.SetEx(context.Background(), key, payload, ttl).Err(); err != nil {
                    log.Printf("cache: store %s: %v", key, err)
                }
            }
            return nil
        }
    }
}

func lookup(ctx context.Context, rdb *redis.Client, key string) (cachedResponse, bool) {
    var entry cachedResponse
    bs, err := rdb.Get(ctx, key).Bytes()
    if err != nil {
        return entry, false
    }
    if err := json.Unmarshal(bs, &entry); err != nil || entry.Status == 0 {
        return entry, false
    }
    return entry, true
}

func replay(c echo.Context, entry cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range entry.Header {
        if strings.EqualFold(k, "Content-Length") {
            continue
        }
        for _, v := range vals {
            h.Add(k, v)
        }
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(entry.Status)
    _, err := c.Response().Write(entry.Body)
    return err
}
