package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/skylight/internal/layout"
	"github.com/five82/skylight/internal/photo"
)

// renderGallery renders every packed row as blocks of cells.
func (m Model) renderGallery() string {
	if len(m.tiles) == 0 || len(m.grid.rows) == 0 {
		return m.renderEmpty()
	}

	styles := m.theme.Styles()
	var b strings.Builder
	for ri, r := range m.grid.rows {
		blocks := make([][]string, 0, len(r.tiles))
		used := 0
		for _, ct := range r.tiles {
			if ct.width <= 0 {
				continue
			}
			blocks = append(blocks, m.renderTile(styles, m.tiles[ct.index], ct.width, r.height))
			used += ct.width
		}
		fill := ""
		if used < m.width {
			fill = styles.Background.Render(strings.Repeat(" ", m.width-used))
		}
		for line := 0; line < r.height; line++ {
			for _, block := range blocks {
				b.WriteString(block[line])
			}
			b.WriteString(fill)
			if line < r.height-1 || ri < len(m.grid.rows)-1 {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// renderTile returns height lines of exactly width cells.
func (m Model) renderTile(styles Styles, t layout.Tile, width, height int) []string {
	style := styles.TileStyle(t.Index)
	if t.Index == m.selected {
		style = styles.Selected
	}
	inner := width
	if width >= 3 {
		style = style.Padding(0, 1)
		inner = width - 2
	}
	style = style.Width(width).MaxHeight(1)

	text := []string{
		truncate(orDefault(t.Item.Title, "untitled"), inner),
		truncate(dims(t.Thumb.Size()), inner),
		truncate(t.Item.Owner, inner),
	}
	lines := make([]string, height)
	for i := range lines {
		s := ""
		if i < len(text) {
			s = text[i]
		}
		if i == 0 {
			lines[i] = style.Bold(true).Render(s)
			continue
		}
		lines[i] = style.Render(s)
	}
	return lines
}

func (m Model) renderEmpty() string {
	styles := m.theme.Styles()
	s := m.snapshot

	var msg string
	switch {
	case m.layoutErr != nil:
		msg = styles.DangerText.Render("Cannot lay out results: " + m.layoutErr.Error())
	case s.Query == "":
		msg = styles.MutedText.Render("Type to search photos")
	case m.isOffline():
		msg = styles.WarningText.Render("Offline, waiting for connectivity")
	case s.Loading || !s.Exhausted:
		msg = styles.WarningText.Render("Searching for " + s.Query + "...")
	default:
		msg = styles.MutedText.Render("No photos found for " + s.Query)
	}
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, msg)
}

// renderLightbox shows the full-size rendition of the selected tile.
func (m Model) renderLightbox() string {
	if m.selected < 0 || m.selected >= len(m.tiles) {
		return ""
	}
	styles := m.theme.Styles()
	t := m.tiles[m.selected]
	width := min(max(40, m.width*2/3), max(20, m.width-4))
	inner := width - 6

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(truncate(orDefault(t.Item.Title, "untitled"), inner)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncate("by "+orDefault(t.Item.Owner, "unknown")+"  id "+t.Item.ID, inner)))
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Full size"))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render(dims(t.Full.Size())))
	b.WriteString("\n")
	b.WriteString(styles.WarningText.Render(truncate(t.Full.Source, inner)))
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Renditions"))
	b.WriteString("\n")
	for _, c := range t.Item.Sizes {
		line := fmt.Sprintf("%-11s %s", dims(c.Size()), c.Source)
		style := styles.FaintText
		if c == t.Thumb || c == t.Full {
			style = styles.Text
		}
		b.WriteString(style.Render(truncate(line, inner)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("esc to close"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(width).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func dims(s photo.Size) string {
	return fmt.Sprintf("%.0f×%.0f", s.Width, s.Height)
}
