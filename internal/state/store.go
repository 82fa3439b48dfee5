package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/skylight/internal/fetch"
	"github.com/five82/skylight/internal/photo"
)

// offlineAfter is the number of consecutive failed probes that marks the
// remote API as unreachable.
const offlineAfter = 2

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Seq         uint64
	Query       string
	Items       []photo.Item
	Loading     bool
	Exhausted   bool
	Online      bool
	Phase       fetch.State
	LastError   error
	LastUpdated time.Time

	ConsecutiveFailures int // Number of consecutive failed connectivity probes
	LastProbe           time.Time
}

// IsOffline returns true when the API has been unreachable for multiple probes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineAfter
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	once     sync.Once
	changed  chan struct{}
}

// Apply records a controller view. Views older than the stored one are
// ignored, since controller callbacks may arrive out of order.
func (s *Store) Apply(v fetch.View) {
	s.mu.Lock()
	if v.Seq != 0 && v.Seq < s.snapshot.Seq {
		s.mu.Unlock()
		return
	}
	s.snapshot.Seq = v.Seq
	s.snapshot.Query = v.Query
	s.snapshot.Items = cloneItems(v.Items)
	s.snapshot.Loading = v.Loading
	s.snapshot.Exhausted = v.Exhausted
	s.snapshot.Online = v.Online
	s.snapshot.Phase = v.State
	s.snapshot.LastError = v.Err
	s.snapshot.LastUpdated = time.Now()
	s.mu.Unlock()

	s.notify()
}

// RecordProbe counts a connectivity probe result and reports whether the
// store now considers the API offline.
func (s *Store) RecordProbe(err error) bool {
	s.mu.Lock()
	s.snapshot.LastProbe = time.Now()
	if err != nil {
		s.snapshot.ConsecutiveFailures++
	} else {
		s.snapshot.ConsecutiveFailures = 0
	}
	offline := s.snapshot.IsOffline()
	s.mu.Unlock()

	s.notify()
	return offline
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Changed returns a channel that receives after every update. Notifications
// coalesce: a slow reader sees one signal for many updates.
func (s *Store) Changed() <-chan struct{} {
	s.init()
	return s.changed
}

func (s *Store) init() {
	s.once.Do(func() { s.changed = make(chan struct{}, 1) })
}

func (s *Store) notify() {
	s.init()
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func cloneItems(items []photo.Item) []photo.Item {
	if len(items) == 0 {
		return nil
	}
	return slices.Clone(items)
}
