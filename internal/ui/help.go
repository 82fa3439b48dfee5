package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpGroup struct {
	title    string
	bindings []key.Binding
}

func (m Model) helpGroups() []helpGroup {
	k := m.keys
	return []helpGroup{
		{"Search", []key.Binding{k.Search, k.Submit, k.Blur}},
		{"Gallery", []key.Binding{k.Left, k.Up, k.Top, k.PageUp, k.Open}},
		{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit, k.ForceQuit}},
	}
}

// renderHelp renders the help overlay centered over the screen.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyCol := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	lines := []string{
		styles.Text.Bold(true).Render("Keyboard Shortcuts"),
		styles.FaintText.Render(strings.Repeat("─", 30)),
	}
	for _, g := range m.helpGroups() {
		lines = append(lines, "", styles.AccentText.Bold(true).Render(g.title))
		for _, b := range g.bindings {
			h := b.Help()
			if h.Key == "" {
				continue
			}
			lines = append(lines, keyCol.Render(h.Key)+styles.Text.Render(h.Desc))
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(40).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)))
}
