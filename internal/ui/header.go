package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	s := m.snapshot

	parts := []string{bg.Render("skylight", styles.Logo)}
	if m.isOffline() {
		parts = append(parts, styles.PhaseStyle("").
			Background(lipgloss.Color(m.theme.Danger)).
			Bold(true).
			Render("OFFLINE"))
	} else if s.Seq > 0 {
		parts = append(parts, styles.PhaseStyle(s.Phase.String()).Render(s.Phase.String()))
	}

	if s.Query != "" {
		parts = append(parts,
			bg.Render("Query:", styles.MutedText)+bg.Space()+
				bg.Render(truncate(s.Query, 40), styles.Text))
		parts = append(parts, bg.Render(plural(len(s.Items), "photo"), styles.AccentText))
	}

	switch {
	case s.Loading && !m.isOffline():
		parts = append(parts, bg.Render(m.spinner.View()+" loading", styles.WarningText))
	case s.Exhausted && s.Query != "" && len(s.Items) > 0:
		parts = append(parts, bg.Render("end of results", styles.FaintText))
	}

	if s.LastError != nil {
		limit := max(10, m.width/3)
		parts = append(parts, bg.Render(truncate(s.LastError.Error(), limit), styles.DangerText))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(bg.Join(parts, 2))
}

// renderSearch renders the search box line.
func (m Model) renderSearch() string {
	styles := m.theme.Styles()
	style := styles.Search.Width(m.width)
	if m.focus == focusSearch {
		style = style.Foreground(lipgloss.Color(m.theme.Accent))
	}
	return style.MaxHeight(1).Render(m.input.View())
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var hints [][2]string
	if m.focus == focusSearch {
		hints = [][2]string{{"enter", "search"}, {"esc", "gallery"}, {"ctrl+c", "quit"}}
	} else {
		hints = [][2]string{
			{"/", "search"}, {"hjkl", "move"}, {"enter", "open"},
			{"T", "theme"}, {"?", "help"}, {"q", "quit"},
		}
	}
	parts := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		parts = append(parts, bg.Render(h[0], styles.AccentText)+bg.Space()+bg.Render(h[1], styles.MutedText))
	}
	if len(m.tiles) > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d/%d", m.selected+1, len(m.tiles)), styles.FaintText))
	}
	return styles.Footer.Width(m.width).MaxHeight(1).Render(bg.Join(parts, 2))
}

func (m Model) isOffline() bool {
	return m.snapshot.IsOffline() || (m.snapshot.Seq > 0 && !m.snapshot.Online)
}
