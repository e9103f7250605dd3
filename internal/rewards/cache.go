package rewards

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/growthreport/internal/logger"
)

// Cache is the subset of *redis.Client the snapshot cache needs.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSource serves recent successful snapshots from redis and falls
// through to the wrapped Source otherwise. Failed fetches are never cached.
type CachedSource struct {
	next Source
	rdb  Cache
	ttl  time.Duration
	log  *logger.Logger
}

func NewCachedSource(next Source, rdb Cache, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSource{next: next, rdb: rdb, ttl: ttl, log: logger.OrNop(log)}
}

// NewRedis opens a client from a redis:// URL.
func NewRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}

func (c *CachedSource) Fetch(ctx context.Context, studentCode, apiKey string) Result {
	key := cacheKey(studentCode, apiKey)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return OK(snap)
		}
		c.log.Warn("snapshot cache entry unreadable", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("snapshot cache read failed", "error", err)
	}

	res := c.next.Fetch(ctx, studentCode, apiKey)
	if res.Snapshot == nil {
		return res
	}
	raw, err := json.Marshal(res.Snapshot)
	if err == nil {
		err = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	if err != nil {
		c.log.Warn("snapshot cache write failed", "error", err)
	}
	return res
}

func cacheKey(studentCode, apiKey string) string {
	return "growthreport:snapshot:" + Fingerprint(apiKey) + ":" + studentCode
}

// Fingerprint is a short, stable, non-reversible id for an API key. It is
// used wherever a key has to appear in storage paths, cache keys or tokens.
func Fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}
