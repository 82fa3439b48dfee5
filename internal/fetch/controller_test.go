package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skylight/internal/debounce"
	"github.com/five82/skylight/internal/layout"
	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/photo"
	"github.com/five82/skylight/internal/stream"
)

const waitFor = 2 * time.Second

type reply struct {
	res stream.Result
	err error
}

type pendingCall struct {
	query string
	page  int
	reply chan reply
}

func (p *pendingCall) items(ids ...string) {
	items := make([]photo.Item, len(ids))
	for i, id := range ids {
		items[i] = photo.Item{ID: id, Sizes: []photo.Candidate{{Source: id, Width: 400 + 50*i, Height: 300}}}
	}
	p.reply <- reply{res: stream.Result{Items: items}}
}

func (p *pendingCall) done()          { p.reply <- reply{res: stream.Result{Done: true}} }
func (p *pendingCall) fail(err error) { p.reply <- reply{err: err} }

// fakePagers hands every Next call to the test, which decides how it settles.
type fakePagers struct {
	calls chan *pendingCall
}

func newFakePagers() *fakePagers {
	return &fakePagers{calls: make(chan *pendingCall, 16)}
}

func (f *fakePagers) open(query string) Pager {
	return &fakePager{f: f, query: query}
}

type fakePager struct {
	f     *fakePagers
	query string
	page  int
}

func (p *fakePager) Next(ctx context.Context) (stream.Result, error) {
	pc := &pendingCall{query: p.query, page: p.page + 1, reply: make(chan reply, 1)}
	p.f.calls <- pc
	r := <-pc.reply
	if r.err == nil && !r.res.Done {
		p.page++
	}
	return r.res, r.err
}

func (f *fakePagers) expectCall(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case pc := <-f.calls:
		return pc
	case <-time.After(waitFor):
		t.Fatal("expected a fetch, none was issued")
		return nil
	}
}

func (f *fakePagers) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case pc := <-f.calls:
		t.Fatalf("unexpected fetch for %q page %d", pc.query, pc.page)
	case <-time.After(50 * time.Millisecond):
	}
}

type viewRecorder struct {
	mu    sync.Mutex
	views []View
}

func (r *viewRecorder) record(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func newController(t *testing.T, f *fakePagers, clock *debounce.FakeClock, rec *viewRecorder) *Controller {
	t.Helper()
	opts := Options{
		NewPager: f.open,
		Logger:   logging.Discard(),
	}
	if clock != nil {
		opts.AfterFunc = clock.AfterFunc
	}
	if rec != nil {
		opts.OnChange = rec.record
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, waitFor, 5*time.Millisecond,
		"state never became %s (is %s)", want, c.State())
}

func ids(items []photo.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestController_InitialView(t *testing.T) {
	c := newController(t, newFakePagers(), nil, nil)
	v := c.View()
	assert.Equal(t, Idle, v.State)
	assert.True(t, v.Exhausted)
	assert.False(t, v.Loading)
	assert.True(t, v.Online)
}

func TestController_SameQueryInFlightIsCoalesced(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	assert.Equal(t, "cat", pc.query)
	assert.Equal(t, Fetching, c.State())

	c.QueryChanged("cat")
	f.expectNoCall(t)

	pc.items("a", "b")
	waitState(t, c, Streaming)
	assert.Equal(t, []string{"a", "b"}, ids(c.View().Items))
	f.expectNoCall(t)
}

func TestController_SameQueryIdleFetchesNextPage(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	assert.Equal(t, 2, pc.page)
	pc.items("b")
	waitState(t, c, Streaming)
	assert.Equal(t, []string{"a", "b"}, ids(c.View().Items))
}

func TestController_QueryChangeDiscardsStaleResult(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	stale := f.expectCall(t)

	c.QueryChanged("dog")
	fresh := f.expectCall(t)
	assert.Equal(t, "dog", fresh.query)
	assert.Equal(t, 1, fresh.page)

	fresh.items("dog-1")
	waitState(t, c, Streaming)

	stale.items("cat-1")
	time.Sleep(30 * time.Millisecond)

	v := c.View()
	assert.Equal(t, "dog", v.Query)
	assert.Equal(t, []string{"dog-1"}, ids(v.Items))
	assert.NoError(t, v.Err)
}

func TestController_StaleErrorIsNotSurfaced(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	stale := f.expectCall(t)
	c.QueryChanged("dog")
	fresh := f.expectCall(t)

	stale.fail(errors.New("connection reset"))
	fresh.items("dog-1")
	waitState(t, c, Streaming)
	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, c.View().Err)
}

func TestController_EmptyQueryResets(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a", "b")
	waitState(t, c, Streaming)

	c.QueryChanged("")
	v := c.View()
	assert.Empty(t, v.Items)
	assert.True(t, v.Exhausted)
	assert.False(t, v.Loading)
	assert.Equal(t, Exhausted, v.State)
	f.expectNoCall(t)
}

func TestController_EmptyQueryCancelsInFlight(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	c.QueryChanged("")
	pc.items("late")
	time.Sleep(30 * time.Millisecond)

	assert.Empty(t, c.View().Items)
	assert.Equal(t, Exhausted, c.State())
}

func TestController_DoneExhaustsAndStopsLoadMore(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	c.LoadMore()
	f.expectCall(t).done()
	waitState(t, c, Exhausted)

	v := c.View()
	assert.True(t, v.Exhausted)
	assert.Equal(t, []string{"a"}, ids(v.Items))

	c.LoadMore()
	f.expectNoCall(t)

	c.QueryChanged("dog")
	assert.Equal(t, "dog", f.expectCall(t).query)
}

func TestController_SameQueryAfterExhaustedRestarts(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	c.LoadMore()
	f.expectCall(t).done()
	waitState(t, c, Exhausted)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	assert.Equal(t, "cat", pc.query)
	assert.Equal(t, 1, pc.page)
	assert.Empty(t, c.View().Items, "restart clears the previous results")

	pc.items("b")
	waitState(t, c, Streaming)
	assert.Equal(t, []string{"b"}, ids(c.View().Items))
}

func TestController_LoadMoreWhileFetchingIsNoop(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.LoadMore()
	f.expectNoCall(t)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	c.LoadMore()
	c.LoadMore()
	f.expectNoCall(t)
	pc.items("a")
	waitState(t, c, Streaming)
}

func TestController_FailureRetriesSamePage(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	c.LoadMore()
	first := f.expectCall(t)
	assert.Equal(t, 2, first.page)
	first.fail(errors.New("timeout"))
	require.Eventually(t, func() bool { return c.View().Err != nil }, waitFor, 5*time.Millisecond)
	assert.Equal(t, Streaming, c.State())

	c.LoadMore()
	retry := f.expectCall(t)
	assert.Equal(t, 2, retry.page)
	retry.items("b")
	require.Eventually(t, func() bool { return len(c.View().Items) == 2 }, waitFor, 5*time.Millisecond)
	assert.NoError(t, c.View().Err)
}

func TestController_OfflineHoldsFetchUntilOnline(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.SetOnline(false)
	c.QueryChanged("cat")
	f.expectNoCall(t)

	v := c.View()
	assert.True(t, v.Loading, "offline and not exhausted presents as loading")
	assert.False(t, v.Exhausted)
	assert.False(t, v.Online)

	c.LoadMore()
	f.expectNoCall(t)

	c.SetOnline(true)
	pc := f.expectCall(t)
	assert.Equal(t, "cat", pc.query)
	pc.items("a")
	waitState(t, c, Streaming)
	assert.False(t, c.View().Loading)
}

func TestController_OnlineWithoutHeldFetchDoesNothing(t *testing.T) {
	f := newFakePagers()
	c := newController(t, f, nil, nil)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	c.SetOnline(false)
	c.SetOnline(true)
	f.expectNoCall(t)
}

func TestController_CloseDropsInFlight(t *testing.T) {
	f := newFakePagers()
	rec := &viewRecorder{}
	c := newController(t, f, nil, rec)

	c.QueryChanged("cat")
	pc := f.expectCall(t)
	before := rec.count()

	c.Close()
	pc.items("late")
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, before, rec.count(), "no views after close")
	assert.Empty(t, c.View().Items)

	c.QueryChanged("dog")
	c.SetQuery("dog")
	c.LoadMore()
	f.expectNoCall(t)
	c.Close()
}

func TestController_DebouncedTypingIssuesOneFetch(t *testing.T) {
	f := newFakePagers()
	clock := &debounce.FakeClock{}
	c := newController(t, f, clock, nil)

	for _, q := range []string{"c", "ca", "cat"} {
		c.SetQuery(q)
		clock.Advance(100 * time.Millisecond)
	}
	f.expectNoCall(t)

	clock.Advance(DefaultDebounce)
	pc := f.expectCall(t)
	assert.Equal(t, "cat", pc.query)
	f.expectNoCall(t)
	pc.items("a")
	waitState(t, c, Streaming)
}

func TestController_QueryChangedDropsPendingDebounce(t *testing.T) {
	f := newFakePagers()
	clock := &debounce.FakeClock{}
	c := newController(t, f, clock, nil)

	c.SetQuery("ca")
	c.QueryChanged("cat")
	assert.Equal(t, "cat", f.expectCall(t).query)

	clock.Advance(time.Second)
	f.expectNoCall(t)
	assert.Equal(t, "cat", c.View().Query)
}

func TestController_ViewsAreSequenced(t *testing.T) {
	f := newFakePagers()
	rec := &viewRecorder{}
	c := newController(t, f, nil, rec)

	c.QueryChanged("cat")
	f.expectCall(t).items("a")
	waitState(t, c, Streaming)

	require.Eventually(t, func() bool { return rec.count() >= 2 }, waitFor, 5*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	seen := map[uint64]bool{}
	for _, v := range rec.views {
		assert.False(t, seen[v.Seq], "duplicate seq %d", v.Seq)
		seen[v.Seq] = true
	}
	last := rec.views[len(rec.views)-1]
	assert.Equal(t, []string{"a"}, ids(last.Items))
}

func TestController_EndToEndLayout(t *testing.T) {
	f := newFakePagers()
	clock := &debounce.FakeClock{}
	c := newController(t, f, clock, nil)

	c.SetQuery("cat")
	clock.Advance(DefaultDebounce)

	pc := f.expectCall(t)
	require.Equal(t, 1, pc.page)
	page := make([]string, 12)
	for i := range page {
		page[i] = fmt.Sprintf("cat-%d", i)
	}
	pc.items(page...)
	waitState(t, c, Streaming)

	rows, tiles, err := layout.Arrange(c.View().Items, layout.ArrangeOptions{RowWidth: 960, RowHeight: 180, Scale: 1})
	require.NoError(t, err)
	require.Len(t, tiles, 12)
	require.NotEmpty(t, rows)

	for i, row := range rows[:len(rows)-1] {
		sum := 0.0
		for _, tile := range tiles[row.Start:row.End] {
			sum += tile.Width
		}
		assert.InDelta(t, 960.0, sum, 1e-6, "row %d", i)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "fetching", Fetching.String())
	assert.Equal(t, "state(9)", State(9).String())
}
