package flickr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL applies when CachingCaller is given a non-positive TTL.
const DefaultCacheTTL = 10 * time.Minute

// Ensure CachingCaller implements Caller at compile time.
var _ Caller = (*CachingCaller)(nil)

// CachingCaller serves repeated calls from Redis. Only successful (stat "ok")
// responses are stored. Redis failures are logged and bypassed.
type CachingCaller struct {
	next   Caller
	redis  redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

// NewCachingCaller wraps next with a Redis cache.
func NewCachingCaller(next Caller, rdb redis.Cmdable, ttl time.Duration, logger *log.Logger) *CachingCaller {
	if next == nil {
		panic("next caller cannot be nil")
	}
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachingCaller{next: next, redis: rdb, ttl: ttl, logger: logger}
}

// Call returns a cached body when present, otherwise delegates and stores the
// result.
func (c *CachingCaller) Call(ctx context.Context, method string, params url.Values) ([]byte, error) {
	key := CacheKey(method, params)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		CacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug("cache hit", "key", key)
		return data, nil
	case errors.Is(err, redis.Nil):
		CacheLookups.WithLabelValues("miss").Inc()
	default:
		CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}

	body, err := c.next.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if stat(body) != "ok" {
		return body, nil
	}
	if err := c.redis.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
	return body, nil
}

// CacheKey builds a deterministic key from the method and sorted params.
// The API key is left out so rotating it does not invalidate the cache.
//
// Format: skylight:<method>:k1=v1:k2=v2
func CacheKey(method string, params url.Values) string {
	parts := []string{"skylight", method}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "api_key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(params[k], ",")))
	}
	return strings.Join(parts, ":")
}
