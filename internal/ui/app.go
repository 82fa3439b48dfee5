package ui

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/skylight/internal/config"
	"github.com/five82/skylight/internal/layout"
	"github.com/five82/skylight/internal/photo"
	"github.com/five82/skylight/internal/prefs"
	"github.com/five82/skylight/internal/state"
)

// chromeLines is the number of lines used by the header, search box and
// footer.
const chromeLines = 3

// Controller is the part of the fetch controller the UI drives.
type Controller interface {
	SetQuery(q string)
	QueryChanged(q string)
	LoadMore()
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Controller   Controller
	Store        *state.Store
	Gallery      config.Gallery
	ThemeName    string
	PrefsPath    string
	InitialQuery string
	Logger       *log.Logger
}

type focus int

const (
	focusSearch focus = iota
	focusGallery
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	ctrl      Controller
	store     *state.Store
	gallery   config.Gallery
	prefsPath string
	logger    *log.Logger
	keys      keyMap

	// UI state
	theme     Theme
	focus     focus
	width     int
	height    int
	ready     bool
	showHelp  bool
	lightbox  bool
	resizeSeq int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Data state
	snapshot  state.Snapshot
	tiles     []layout.Tile
	grid      grid
	selected  int
	layoutErr error
	initial   string
}

// New creates the gallery model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	gallery := opts.Gallery
	if gallery.CellWidth <= 0 || gallery.CellHeight <= 0 || gallery.RowHeight <= 0 {
		gallery = config.Default().Gallery
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search photos"
	input.CharLimit = 200
	input.SetValue(opts.InitialQuery)

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		store:     opts.Store,
		gallery:   gallery,
		prefsPath: orDefault(opts.PrefsPath, prefs.DefaultPath()),
		logger:    logger.WithPrefix("ui"),
		keys:      defaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		input:     input,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		initial:   strings.TrimSpace(opts.InitialQuery),
	}
	if m.initial == "" {
		m.focus = focusSearch
		m.input.Focus()
	} else {
		m.focus = focusGallery
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if m.store != nil {
		cmds = append(cmds, waitForChangeCmd(m.ctx, m.store))
	}
	if m.initial != "" && m.ctrl != nil {
		ctrl, q := m.ctrl, m.initial
		cmds = append(cmds, func() tea.Msg {
			ctrl.QueryChanged(q)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		if !m.ready {
			m.applySize(msg.Width, msg.Height)
			m.ready = true
			return m, nil
		}
		m.resizeSeq++
		return m, resizeCmd(m.gallery.ResizeDebounce, m.resizeSeq, msg.Width, msg.Height)

	case resizeMsg:
		if msg.seq != m.resizeSeq {
			return m, nil
		}
		m.applySize(msg.width, msg.height)
		return m, nil

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.relayout()
		return m, waitForChangeCmd(m.ctx, m.store)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.maybeLoadMore()
		return m, cmd

	case doneMsg:
		return m, tea.Quit
	}

	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.lightbox {
		return m.renderLightbox()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSearch())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.lightbox {
		if key.Matches(msg, m.keys.Close) {
			m.lightbox = false
		}
		return m, nil
	}
	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}
	return m.handleGalleryKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		q := strings.TrimSpace(m.input.Value())
		if m.ctrl != nil {
			m.ctrl.QueryChanged(q)
		}
		m.saveLastQuery(q)
		m.blurSearch()
		return m, nil

	case key.Matches(msg, m.keys.Blur):
		m.blurSearch()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before && m.ctrl != nil {
		m.ctrl.SetQuery(strings.TrimSpace(after))
	}
	return m, cmd
}

func (m Model) handleGalleryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			m.logger.Warn("save theme failed", "error", err)
		}
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Open):
		if len(m.tiles) > 0 {
			m.lightbox = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.selectTile(m.selected - 1)
	case key.Matches(msg, m.keys.Right):
		m.selectTile(m.selected + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Top):
		m.selectTile(0)
	case key.Matches(msg, m.keys.Bottom):
		m.selectTile(len(m.tiles) - 1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfPageDown()
	default:
		return m, nil
	}
	m.maybeLoadMore()
	return m, nil
}

func (m *Model) blurSearch() {
	m.input.Blur()
	m.focus = focusGallery
}

func (m *Model) saveLastQuery(q string) {
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.LastQuery = q }); err != nil {
		m.logger.Warn("save last query failed", "error", err)
	}
}

// applySize records the terminal size and recomputes the layout.
func (m *Model) applySize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeLines)
	m.input.Width = max(1, width-len(m.input.Prompt)-2)
	m.relayout()
}

// relayout packs the current snapshot for the current width.
func (m *Model) relayout() {
	if m.width <= 0 {
		return
	}
	cw, ch := m.gallery.CellWidth, m.gallery.CellHeight
	rowWidth := float64(m.width * cw)

	rows, tiles, err := layout.Arrange(m.snapshot.Items, layout.ArrangeOptions{
		RowWidth:  rowWidth,
		RowHeight: m.gallery.RowHeight,
		Viewport: photo.Size{
			Width:  rowWidth,
			Height: float64(m.viewport.Height * ch),
		},
		Scale: m.gallery.DeviceScale,
	})
	m.layoutErr = err
	if err != nil {
		m.logger.Warn("layout failed", "error", err)
		rows, tiles = nil, nil
	}
	m.tiles = tiles
	m.grid = buildGrid(rows, tiles, m.width, cw, ch)
	if m.selected >= len(m.tiles) {
		m.selected = max(0, len(m.tiles)-1)
	}
	if len(m.tiles) == 0 {
		m.lightbox = false
	}
	m.refreshContent()
	m.maybeLoadMore()
}

func (m *Model) refreshContent() {
	m.viewport.SetContent(m.renderGallery())
}

func (m *Model) selectTile(index int) {
	if len(m.tiles) == 0 {
		return
	}
	m.selected = min(max(index, 0), len(m.tiles)-1)
	m.refreshContent()
	m.scrollToSelected()
}

func (m *Model) moveRow(delta int) {
	ri, pos, ok := m.grid.locate(m.selected)
	if !ok {
		return
	}
	target := ri + delta
	if target < 0 || target >= len(m.grid.rows) {
		return
	}
	t := m.grid.rows[ri].tiles[pos]
	m.selectTile(m.grid.nearest(target, t.x+t.width/2))
}

func (m *Model) scrollToSelected() {
	ri, _, ok := m.grid.locate(m.selected)
	if !ok {
		return
	}
	r := m.grid.rows[ri]
	switch {
	case r.y < m.viewport.YOffset:
		m.viewport.SetYOffset(r.y)
	case r.y+r.height > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(r.y + r.height - m.viewport.Height)
	}
}

// maybeLoadMore asks for another page when fewer than the load threshold's
// worth of lines remain below the visible area.
func (m *Model) maybeLoadMore() {
	if m.ctrl == nil || m.width == 0 {
		return
	}
	s := m.snapshot
	if s.Query == "" || s.Loading || s.Exhausted || s.IsOffline() {
		return
	}
	threshold := int(math.Ceil(m.gallery.LoadThreshold / float64(m.gallery.CellHeight)))
	remaining := m.grid.lines - (m.viewport.YOffset + m.viewport.Height)
	if remaining < threshold {
		m.ctrl.LoadMore()
	}
}

// Messages

type snapshotMsg state.Snapshot

type resizeMsg struct {
	seq           int
	width, height int
}

type doneMsg struct{}

// Commands

func waitForChangeCmd(ctx context.Context, store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-store.Changed():
			return snapshotMsg(store.Snapshot())
		case <-ctx.Done():
			return doneMsg{}
		}
	}
}

func resizeCmd(d time.Duration, seq, width, height int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return resizeMsg{seq: seq, width: width, height: height}
	})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
