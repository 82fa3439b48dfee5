package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/five82/skylight/internal/config"
	"github.com/five82/skylight/internal/flickr"
	"github.com/five82/skylight/internal/logging"
)

const redisPingTimeout = 2 * time.Second

// Services holds the remote-facing components shared by every command.
type Services struct {
	// Client serves searches, through the response cache when configured.
	Client *flickr.Client
	// Probe bypasses the cache so connectivity checks reach the network.
	Probe *flickr.Client

	redis *redis.Client
}

// NewServices builds the HTTP caller, the optional Redis cache, and the
// search clients from cfg.
func NewServices(ctx context.Context, cfg config.Config, logger *log.Logger) (*Services, error) {
	caller, err := flickr.NewHTTPCaller(flickr.HTTPCallerOptions{
		Endpoint: cfg.API.Endpoint,
		APIKey:   cfg.API.APIKey,
		Timeout:  cfg.API.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init search client: %w", err)
	}

	svc := &Services{Probe: flickr.NewClient(caller)}

	var search flickr.Caller = caller
	if cfg.Cache.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, response cache disabled", "addr", cfg.Cache.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			logger.Debug("response cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
			search = flickr.NewCachingCaller(caller, rdb, cfg.Cache.TTL, logger)
			svc.redis = rdb
		}
	}
	svc.Client = flickr.NewClient(search)
	return svc, nil
}

// Close releases the Redis connection, if any.
func (s *Services) Close() error {
	if s == nil || s.redis == nil {
		return nil
	}
	return s.redis.Close()
}

// NewLogger builds the application logger. Interactive runs write to the
// configured log file; headless runs write to stderr. verbose forces debug.
// The returned func closes the log file.
func NewLogger(cfg config.Log, verbose, interactive bool) (*log.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = log.DebugLevel
	}

	if !interactive {
		return logging.New(os.Stderr, level), func() {}, nil
	}
	if cfg.File == "" {
		return logging.New(io.Discard, level), func() {}, nil
	}
	f, err := logging.OpenFile(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(f, level), func() { _ = f.Close() }, nil
}
