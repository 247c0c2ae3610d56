package repository

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

const idemNS = "allinclusive:v1:idem"

// KeyIdemReservation namespaces a client-supplied Idempotency-Key for
// reservation creation.
func KeyIdemReservation(idemKey string) string {
    return fmt.Sprintf("%s:reservations:%s", idemNS, idemKey)
}

// IdempotencyStore remembers the response of a completed request under a
// client key.  While the first request is in flight the key holds a lock
// marker; afterwards it holds "RES:" followed by the JSON response.
type IdempotencyStore struct {
    rdb *redis.Client
    ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
    return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// AcquireLock claims key for lockTTL.  It returns false when another
// request already holds the key or has stored a result under it.
func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
    return s.rdb.SetNX(ctx, key, "LOCK", lockTTL).Result()
}

// SaveResult replaces the lock with the final response.
func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
    return s.rdb.Set(ctx, key, "RES:"+jsonPayload, s.ttl).Err()
}

// GetResult returns a stored response, if any.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
    v, err := s.rdb.Get(ctx, key).Result()
    if errors.Is(err, redis.Nil) {
        return "", false, nil
    }
    if err != nil {
        return "", false, err
    }
    if payload, ok := strings.CutPrefix(v, "RES:"); ok {
        return payload, true, nil
    }
    return "", false, nil
}

// Release drops the key so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
    return s.rdb.Del(ctx, key).Err()
}
