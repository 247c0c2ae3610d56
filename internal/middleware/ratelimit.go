package middleware

import (
    "fmt"
    "log/slog"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/Kenneson972/allinclusive/internal/config"
)

// NewTokenBucket limits requests per key with a token bucket of
// cfg.Capacity tokens refilled by cfg.RefillTokens every
// cfg.RefillInterval.  With Redis the bucket is shared by every instance
// through an atomic Lua script; without Redis, or when a script call
// fails, an in-process bucket with the same parameters is used instead.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    if logger == nil {
        logger = slog.Default()
    }
    local := newLocalBuckets(cfg)

    limiterScript := redis.NewScript(`
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
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
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
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)

            allowed, remaining, retryMs, ok := false, int64(0), int64(0), false
            if rdb != nil {
                allowed, remaining, retryMs, ok = runScript(c, limiterScript, rdb, cfg, key, logger)
            }
            if !ok {
                allowed, remaining, retryMs = local.take(key, time.Now())
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if !allowed {
                secs := int(math.Ceil(float64(retryMs) / 1000.0))
                if secs < 1 {
                    secs = 1
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    logger.Info("ratelimit: block", slog.String("key", key), slog.Int64("remaining", remaining), slog.Int64("retry_ms", retryMs))
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "rate limit exceeded",
                    "retry_after": secs,
                })
            }

            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

// runScript evaluates the Redis bucket.  ok is false when Redis could not
// answer and the caller should fall back to the local bucket.
func runScript(c echo.Context, script *redis.Script, rdb *redis.Client, cfg config.RateLimitConfig, key string, logger *slog.Logger) (allowed bool, remaining, retryMs int64, ok bool) {
    args := []interface{}{
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := script.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        if cfg.Debug {
            logger.Warn("ratelimit: redis error", slog.String("key", key), slog.Any("err", err))
        }
        return false, 0, 0, false
    }
    arr, isArr := vals.([]interface{})
    if !isArr || len(arr) != 3 {
        if cfg.Debug {
            logger.Warn("ratelimit: unexpected script result", slog.String("key", key), slog.String("result", fmt.Sprintf("%#v", vals)))
        }
        return false, 0, 0, false
    }
    if i, isInt := arr[0].(int64); isInt {
        allowed = i == 1
    } else {
        allowed = fmt.Sprint(arr[0]) == "1"
    }
    return allowed, asInt64(arr[1]), asInt64(arr[2]), true
}

// localBuckets is the in-process fallback: one rate.Limiter per key.
// Idle limiters are swept after cfg.TTL.
type localBuckets struct {
    mu        sync.Mutex
    limit     rate.Limit
    burst     int
    ttl       time.Duration
    entries   map[string]*localEntry
    lastSweep time.Time
}

type localEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
    per := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
    if per <= 0 {
        per = time.Second
    }
    return &localBuckets{
        limit:   rate.Every(per),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
        entries: make(map[string]*localEntry),
    }
}

func (b *localBuckets) take(key string, now time.Time) (allowed bool, remaining, retryMs int64) {
    b.mu.Lock()
    defer b.mu.Unlock()

    if now.Sub(b.lastSweep) > b.ttl {
        for k, e := range b.entries {
            if now.Sub(e.seen) > b.ttl {
                delete(b.entries, k)
            }
        }
        b.lastSweep = now
    }
    e, ok := b.entries[key]
    if !ok {
        e = &localEntry{lim: rate.NewLimiter(b.limit, b.burst)}
        b.entries[key] = e
    }
    e.seen = now

    r := e.lim.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return false, 0, delay.Milliseconds()
    }
    return true, int64(e.lim.TokensAt(now)), 0
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int32: return int64(t)
    case int: return int64(t)
    case float64: return int64(t)
    case float32: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    strategy := strings.ToLower(cfg.KeyStrategy)
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }
    uid := currentUser(c)
    route := c.Request().Method + " " + c.Path()

    switch strategy {
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
