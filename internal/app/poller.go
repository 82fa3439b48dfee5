package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/skylight/internal/flickr"
	"github.com/five82/skylight/internal/state"
)

const (
	defaultProbeInterval = 15 * time.Second
	maxBackoff           = 30 * time.Second
	probeTimeout         = 5 * time.Second
)

// Pinger checks whether the remote API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OnlineSetter receives connectivity changes. *fetch.Controller satisfies it.
type OnlineSetter interface {
	SetOnline(online bool)
}

// StartProber launches a background goroutine that probes connectivity,
// backing off exponentially while probes fail. It returns immediately.
func StartProber(ctx context.Context, store *state.Store, pinger Pinger, target OnlineSetter, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("probe")

	go func() {
		for {
			failures := probe(ctx, store, pinger, target, logger)
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// probe runs one check and returns the consecutive failure count.
func probe(ctx context.Context, store *state.Store, pinger Pinger, target OnlineSetter, logger *log.Logger) int {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := pinger.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return store.Snapshot().ConsecutiveFailures
	}

	// A remote error means the service answered.
	if err != nil && flickr.IsRemote(err) {
		logger.Warn("probe answered with error", "error", err)
		err = nil
	}
	if err != nil {
		logger.Warn("connectivity probe failed", "error", err)
	}

	offline := store.RecordProbe(err)
	target.SetOnline(!offline)
	return store.Snapshot().ConsecutiveFailures
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	wait := base
	for i := 0; i < failures && wait < maxBackoff; i++ {
		wait *= 2
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}
