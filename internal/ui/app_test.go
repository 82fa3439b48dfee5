package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skylight/internal/config"
	"github.com/five82/skylight/internal/fetch"
	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/prefs"
	"github.com/five82/skylight/internal/state"
)

type fakeController struct {
	mu       sync.Mutex
	set      []string
	changed  []string
	loadMore int
}

func (f *fakeController) SetQuery(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = append(f.set, q)
}

func (f *fakeController) QueryChanged(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, q)
}

func (f *fakeController) LoadMore() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadMore++
}

func newTestModel(t *testing.T, ctrl Controller) (Model, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{
		Controller: ctrl,
		Gallery:    config.Default().Gallery,
		PrefsPath:  path,
		Logger:     logging.Discard(),
	})
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40}), path
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func streaming(query string, n int) snapshotMsg {
	return snapshotMsg(state.Snapshot{
		Seq:    1,
		Query:  query,
		Items:  galleryItems(n),
		Online: true,
		Phase:  fetch.Streaming,
	})
}

func TestTypingDebouncesThroughController(t *testing.T) {
	ctrl := &fakeController{}
	m, _ := newTestModel(t, ctrl)

	for _, r := range "cat" {
		m = update(t, m, runes(string(r)))
	}
	assert.Equal(t, []string{"c", "ca", "cat"}, ctrl.set)
	assert.Empty(t, ctrl.changed)
}

func TestEnterAppliesQueryAndRemembersIt(t *testing.T) {
	ctrl := &fakeController{}
	m, path := newTestModel(t, ctrl)

	m = update(t, m, runes("cat"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"cat"}, ctrl.changed)
	assert.Equal(t, focusGallery, m.focus)

	p, err := prefs.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cat", p.LastQuery)
}

func TestSnapshotLaysOutAndLoadsMoreWhenShort(t *testing.T) {
	ctrl := &fakeController{}
	m, _ := newTestModel(t, ctrl)

	m = update(t, m, streaming("cat", 6))
	assert.Len(t, m.tiles, 6)
	assert.NotEmpty(t, m.grid.rows)
	assert.Less(t, m.grid.lines, m.viewport.Height)
	assert.Positive(t, ctrl.loadMore)
}

func TestNoLoadMoreWhenExhaustedOrLoading(t *testing.T) {
	ctrl := &fakeController{}
	m, _ := newTestModel(t, ctrl)

	snap := state.Snapshot(streaming("cat", 3))
	snap.Exhausted = true
	m = update(t, m, snapshotMsg(snap))

	snap.Exhausted = false
	snap.Loading = true
	m = update(t, m, snapshotMsg(snap))

	assert.Len(t, m.tiles, 3)
	assert.Zero(t, ctrl.loadMore)
}

func TestNoLoadMoreWhenContentBelowThreshold(t *testing.T) {
	ctrl := &fakeController{}
	m, _ := newTestModel(t, ctrl)

	m = update(t, m, streaming("cat", 120))
	require.Greater(t, m.grid.lines, m.viewport.Height+40)
	assert.Zero(t, ctrl.loadMore)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, runes("G"))
	assert.Equal(t, len(m.tiles)-1, m.selected)
	assert.Positive(t, ctrl.loadMore)
}

func TestResizeIsDebounced(t *testing.T) {
	m, _ := newTestModel(t, &fakeController{})

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 2, m.resizeSeq)

	m = update(t, m, resizeMsg{seq: 1, width: 80, height: 30})
	assert.Equal(t, 120, m.width)

	m = update(t, m, resizeMsg{seq: 2, width: 100, height: 30})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 30-chromeLines, m.viewport.Height)
}

func TestThemeCyclePersists(t *testing.T) {
	m, path := newTestModel(t, &fakeController{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, runes("T"))

	assert.Equal(t, "Kanagawa", m.theme.Name)
	p, err := prefs.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", p.Theme)
}

func TestNavigationAndLightbox(t *testing.T) {
	m, _ := newTestModel(t, &fakeController{})
	m = update(t, m, streaming("cat", 10))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m = update(t, m, runes("l"))
	m = update(t, m, runes("l"))
	assert.Equal(t, 2, m.selected)
	m = update(t, m, runes("h"))
	assert.Equal(t, 1, m.selected)

	m = update(t, m, runes("j"))
	ri, _, ok := m.grid.locate(m.selected)
	require.True(t, ok)
	assert.Equal(t, 1, ri)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.lightbox)
	view := m.View()
	assert.Contains(t, view, "Full size")
	assert.Contains(t, view, m.tiles[m.selected].Full.Source)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.lightbox)
}

func TestHeaderShowsOfflineAndError(t *testing.T) {
	m, _ := newTestModel(t, &fakeController{})
	snap := state.Snapshot(streaming("cat", 2))
	snap.Online = false
	snap.LastError = errors.New("fetch page 2: boom")
	m = update(t, m, snapshotMsg(snap))

	header := m.renderHeader()
	assert.Contains(t, header, "OFFLINE")
	assert.Contains(t, header, "boom")
	assert.True(t, strings.Contains(m.View(), "skylight"))
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m, _ := newTestModel(t, &fakeController{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, runes("?"))
	require.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = update(t, m, runes("x"))
	assert.False(t, m.showHelp)
}
