package fetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/five82/skylight/internal/debounce"
	"github.com/five82/skylight/internal/photo"
	"github.com/five82/skylight/internal/stream"
)

// DefaultDebounce is the quiescence window applied by SetQuery.
const DefaultDebounce = 500 * time.Millisecond

// State is the controller's position in its fetch cycle.
type State int

const (
	// Idle means there is no active query.
	Idle State = iota
	// Streaming means a stream is open and no request is in flight.
	Streaming
	// Fetching means exactly one request is in flight.
	Fetching
	// Exhausted means the stream reported done, or the query is empty.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Fetching:
		return "fetching"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pager yields successive pages for one query. *stream.Stream satisfies it.
type Pager interface {
	Next(ctx context.Context) (stream.Result, error)
}

// PagerFactory opens a pager for query.
type PagerFactory func(query string) Pager

// View is what the presentation layer renders. Seq increases with every
// published view so consumers can drop out-of-order deliveries.
type View struct {
	Seq       uint64
	Query     string
	Items     []photo.Item
	Loading   bool
	Exhausted bool
	Online    bool
	Err       error
	State     State
}

// Options configures New.
type Options struct {
	// Fetcher backs the default pager factory.
	Fetcher  stream.PageFetcher
	PageSize int
	// NewPager overrides how pagers are opened. Fetcher is ignored when set.
	NewPager PagerFactory
	// Debounce is the SetQuery quiescence window. Zero means DefaultDebounce.
	Debounce time.Duration
	// AfterFunc schedules debounced work. Nil uses the real clock.
	AfterFunc debounce.AfterFunc
	// OnChange receives every published view. It must not block for long.
	OnChange func(View)
	Logger   *log.Logger
}

// session is the state owned by one active query: its pager and the token of
// the request currently in flight, if any.
type session struct {
	id     string
	query  string
	pager  Pager
	token  *Token
	logger *log.Logger
}

// Controller drives pagination for a changing query. At most one request is
// in flight at any time; results for a superseded query are discarded.
type Controller struct {
	newPager  PagerFactory
	debouncer *debounce.Debouncer
	onChange  func(View)
	logger    *log.Logger

	// ctx outlives individual fetches; cancellation of a fetch only makes the
	// controller ignore its result.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	query   string
	sess    *session
	state   State
	items   []photo.Item
	online  bool
	blocked bool
	err     error
	seq     uint64
	closed  bool
}

// New builds a Controller. Either Fetcher or NewPager must be provided.
func New(opts Options) (*Controller, error) {
	newPager := opts.NewPager
	if newPager == nil {
		if opts.Fetcher == nil {
			return nil, errors.New("fetch: fetcher or pager factory required")
		}
		fetcher, size := opts.Fetcher, opts.PageSize
		newPager = func(query string) Pager {
			return stream.New(fetcher, query, size)
		}
	}
	window := opts.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		newPager:  newPager,
		debouncer: debounce.NewWithClock(window, opts.AfterFunc),
		onChange:  opts.OnChange,
		logger:    logger.WithPrefix("fetch"),
		ctx:       ctx,
		cancel:    cancel,
		state:     Idle,
		online:    true,
	}, nil
}

// SetQuery schedules QueryChanged(q) after the debounce window. Each call
// restarts the window, so a burst of edits yields one query change.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.debouncer.Trigger(func() { c.queryChanged(q) })
}

// QueryChanged applies q immediately and drops any pending debounced query.
func (c *Controller) QueryChanged(q string) {
	c.debouncer.Cancel()
	c.queryChanged(q)
}

func (c *Controller) queryChanged(q string) {
	c.update(func() bool {
		if c.closed {
			return false
		}

		if q == "" {
			c.dropSession()
			c.query = ""
			c.items = nil
			c.err = nil
			c.blocked = false
			c.state = Exhausted
			return true
		}

		// Re-issuing an exhausted query restarts it from page one: the stream
		// was discarded on done, so trigger opens a fresh one.
		if q == c.query {
			if c.state == Fetching {
				c.logger.Debug("query unchanged, request already in flight", "query", q)
				return false
			}
		} else {
			c.dropSession()
			c.query = q
			c.state = Idle
		}
		c.trigger()
		return true
	})
}

// LoadMore asks for the next page of the active query. It does nothing while
// a request is in flight, after the stream is exhausted, without a query, or
// while offline.
func (c *Controller) LoadMore() {
	c.update(func() bool {
		if c.closed || c.query == "" {
			return false
		}
		switch c.state {
		case Fetching, Exhausted, Idle:
			return false
		}
		if !c.online {
			return false
		}
		c.trigger()
		return true
	})
}

// SetOnline records connectivity. While offline no requests are issued; a
// fetch that was held back runs once connectivity returns.
func (c *Controller) SetOnline(online bool) {
	c.update(func() bool {
		if c.closed || c.online == online {
			return false
		}
		c.online = online
		c.logger.Info("connectivity changed", "online", online)
		if online && c.blocked && c.state == Streaming {
			c.trigger()
		}
		return true
	})
}

// View returns the current presentation state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels the in-flight request and the pending debounced query. Later
// calls on the controller are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.sess != nil {
		c.sess.token.Cancel()
	}
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
}

// trigger opens a session when needed and issues the next request.
// Callers hold c.mu.
func (c *Controller) trigger() {
	if c.sess == nil {
		id := uuid.NewString()
		c.sess = &session{
			id:     id,
			query:  c.query,
			pager:  c.newPager(c.query),
			logger: c.logger.With("session", id, "query", c.query),
		}
		c.items = nil
		c.err = nil
		c.state = Streaming
		c.sess.logger.Debug("session opened")
	}

	if !c.online {
		c.blocked = true
		c.sess.logger.Debug("offline, holding fetch")
		return
	}
	c.blocked = false

	sess := c.sess
	token := NewToken()
	sess.token = token
	c.state = Fetching

	FetchesStarted.Inc()
	FetchesInFlight.Inc()
	go c.run(sess, token)
}

func (c *Controller) run(sess *session, token *Token) {
	res, err := Await(token, func() (stream.Result, error) {
		return sess.pager.Next(c.ctx)
	})
	FetchesInFlight.Dec()
	c.settle(sess, token, res, err)
}

func (c *Controller) settle(sess *session, token *Token, res stream.Result, err error) {
	c.update(func() bool {
		if c.closed || c.sess != sess || token.Err() != nil || errors.Is(err, ErrCanceled) {
			FetchesSettled.WithLabelValues("canceled").Inc()
			sess.logger.Debug("discarding superseded result")
			return false
		}
		sess.token = nil

		switch {
		case err != nil:
			FetchesSettled.WithLabelValues("error").Inc()
			sess.logger.Warn("fetch failed", "error", err)
			c.err = err
			c.state = Streaming
		case res.Done:
			FetchesSettled.WithLabelValues("done").Inc()
			sess.logger.Debug("stream exhausted", "items", len(c.items))
			c.sess = nil
			c.err = nil
			c.state = Exhausted
		default:
			FetchesSettled.WithLabelValues("items").Inc()
			c.items = append(c.items, res.Items...)
			c.err = nil
			c.state = Streaming
			sess.logger.Debug("page received", "new", len(res.Items), "total", len(c.items))
		}
		return true
	})
}

// dropSession cancels the in-flight request and forgets the stream.
// Callers hold c.mu.
func (c *Controller) dropSession() {
	if c.sess == nil {
		return
	}
	if c.sess.token != nil {
		c.sess.token.Cancel()
		c.sess.logger.Debug("request canceled")
	}
	c.sess = nil
	c.blocked = false
}

// update runs fn under the lock and publishes the resulting view when fn
// reports a change. OnChange is invoked without holding the lock.
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	changed := fn()
	var v View
	if changed {
		c.seq++
		v = c.viewLocked()
	}
	c.mu.Unlock()

	if changed && c.onChange != nil {
		c.onChange(v)
	}
}

func (c *Controller) viewLocked() View {
	exhausted := c.state == Exhausted || c.state == Idle
	loading := c.state == Fetching
	return View{
		Seq:       c.seq,
		Query:     c.query,
		Items:     slices.Clone(c.items),
		Loading:   loading || (!exhausted && !c.online),
		Exhausted: exhausted,
		Online:    c.online,
		Err:       c.err,
		State:     c.state,
	}
}
