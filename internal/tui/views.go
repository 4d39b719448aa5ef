package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/donortrail/donortrail/internal/cli"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PrimaryColor)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(cli.PrimaryColor)

	excludedStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(cli.SubtleColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(cli.SubtleColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(cli.ErrorColor)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateQuery:
		return m.renderQuery()
	case StateSearching:
		return m.renderSearching()
	case StateHelp:
		return m.renderHelp()
	default:
		return m.renderResults()
	}
}

func (m Model) renderQuery() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Political Donations Search"))
	b.WriteString("\n\n")
	b.WriteString("Search donors across all jurisdictions. Combine terms with OR,\n")
	b.WriteString("exclude with a leading NOT.\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.lastError != nil {
		b.WriteString(errorStyle.Render(m.lastError.Error()))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("Enter to search, Esc to quit"))
	return b.String()
}

func (m Model) renderSearching() string {
	return fmt.Sprintf("\n %s %s\n", m.spin.View(), m.status)
}

func (m Model) renderResults() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Results for %q", m.session.RawQuery())))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("No matching donations found.\n\n")
		b.WriteString(statusStyle.Render("/ new query · q quit"))
		return b.String()
	}

	header := fmt.Sprintf("  %-30s %-24s %12s %12s  %s", "Donor", "Party", "Amount", "Period", "Source")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		r := m.rows[i]
		line := fmt.Sprintf("%-30s %-24s %12s %12s  %s",
			clip(r.donor, 30), clip(r.party, 24),
			fmt.Sprintf("%s %.2f", r.currency, r.amount), r.period, r.source)

		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line))
		case m.session.Excluded(r.donor):
			b.WriteString(excludedStyle.Render("  " + line))
		default:
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"%d/%d · %d excluded · x exclude · e export · / new query · ? help · q quit",
		m.cursor+1, len(m.rows), m.session.ExclusionCount())))
	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, group := range m.keymap.FullHelp() {
		for _, binding := range group {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %-14s %s\n", help.Key, help.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("any key to go back"))
	return b.String()
}

// visibleRange keeps the cursor inside the rendered window.
func (m Model) visibleRange() (int, int) {
	size := m.pageSize()
	start := 0
	if m.cursor >= size {
		start = m.cursor - size + 1
	}
	end := start + size
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return start, end
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
