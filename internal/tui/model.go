// Package tui implements the interactive search session: a query prompt, a
// navigable result list where individual donors can be excluded as false
// positives, and export of whatever currently survives the exclusion set.
// All mutable state lives in the injected session, not in package globals.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/query"
	"github.com/donortrail/donortrail/internal/report"
	"github.com/donortrail/donortrail/internal/session"
)

// State represents the current state of the TUI.
type State int

const (
	StateQuery State = iota
	StateSearching
	StateResults
	StateHelp
)

// SearchFunc runs a parsed query against every jurisdiction and returns the
// filtered result sets.
type SearchFunc func(ctx context.Context, q query.Query, lookbackYears int) []model.ResultSet

// Config wires the model's collaborators.
type Config struct {
	Session   *session.Session
	Search    SearchFunc
	ExportDir string
	Width     int
	Height    int
}

// row is one selectable line of the flattened result list.
type row struct {
	donor    string
	party    string
	amount   float64
	currency string
	period   string
	source   string
}

// Model holds the interactive session state.
type Model struct {
	ctx     context.Context
	config  Config
	session *session.Session
	keymap  KeyMap
	input   textinput.Model
	spin    spinner.Model

	results []model.ResultSet
	rows    []row
	cursor  int

	state      State
	prevState  State
	status     string
	lastError  error
	width      int
	height     int
	quitting   bool
}

// newModel creates a model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = `donor name, "a OR b", or "NOT x"`
	input.CharLimit = 200
	input.Focus()

	return Model{
		ctx:     ctx,
		config:  cfg,
		session: cfg.Session,
		keymap:  DefaultKeyMap(),
		input:   input,
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		state:   StateQuery,
		width:   cfg.Width,
		height:  cfg.Height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, textinput.Blink)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchStartedMsg:
		m.state = StateSearching
		m.status = fmt.Sprintf("searching for %q ...", msg.raw)
		return m, tea.Batch(m.spin.Tick, m.runSearch())

	case searchDoneMsg:
		m.results = msg.results
		m.rebuildRows()
		m.cursor = 0
		m.state = StateResults
		m.status = fmt.Sprintf("%d records across %d jurisdictions", len(m.rows), len(m.results))
		return m, nil

	case searchFailedMsg:
		m.lastError = msg.err
		m.state = StateQuery
		m.status = msg.err.Error()
		m.input.Focus()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("exported to %s", msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSearching {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == StateQuery {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case StateQuery:
		switch msg.String() {
		case "enter":
			return m.submitQuery()
		case "esc":
			if len(m.rows) > 0 {
				m.state = StateResults
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case StateSearching:
		return m, nil

	case StateHelp:
		m.state = m.prevState
		return m, nil

	case StateResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.prevState = m.state
		m.state = StateHelp
		return m, nil

	case key.Matches(msg, m.keymap.NewQuery):
		m.state = StateQuery
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.PageUp):
		m.cursor -= m.pageSize()
		if m.cursor < 0 {
			m.cursor = 0
		}

	case key.Matches(msg, m.keymap.PageDown):
		m.cursor += m.pageSize()
		if m.cursor > len(m.rows)-1 {
			m.cursor = len(m.rows) - 1
		}

	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0

	case key.Matches(msg, m.keymap.End):
		m.cursor = len(m.rows) - 1

	case key.Matches(msg, m.keymap.Toggle):
		if m.cursor < len(m.rows) {
			donor := m.rows[m.cursor].donor
			m.session.Toggle(donor, m.session.Excluded(donor))
			m.status = fmt.Sprintf("%d donors excluded", m.session.ExclusionCount())
		}

	case key.Matches(msg, m.keymap.ResetMark):
		for _, r := range m.rows {
			m.session.Toggle(r.donor, true)
		}
		m.status = "exclusions cleared"

	case key.Matches(msg, m.keymap.Export):
		return m, m.runExport()
	}
	return m, nil
}

func (m *Model) submitQuery() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if _, err := m.session.SetQuery(raw); err != nil {
		m.lastError = err
		m.status = err.Error()
		return *m, nil
	}
	m.lastError = nil
	m.input.Blur()
	return *m, func() tea.Msg { return searchStartedMsg{raw: raw} }
}

func (m Model) runSearch() tea.Cmd {
	return func() tea.Msg {
		q := m.session.Query()
		if q == nil {
			return searchFailedMsg{err: fmt.Errorf("no query submitted")}
		}
		return searchDoneMsg{results: m.config.Search(m.ctx, q, m.session.LookbackYears())}
	}
}

func (m Model) runExport() tea.Cmd {
	subject := m.session.RawQuery()
	filtered := m.filteredResults()
	dir := m.config.ExportDir

	return func() tea.Msg {
		r := report.Build(subject, filtered)
		f, err := report.WriteXLSX(r)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer func() { _ = f.Close() }()

		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: err}
		}
		path := filepath.Join(dir, exportFilename(subject, time.Now()))
		if err := f.SaveAs(path); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

// filteredResults applies the session exclusion set to every jurisdiction.
func (m Model) filteredResults() []model.ResultSet {
	out := make([]model.ResultSet, 0, len(m.results))
	for _, rs := range m.results {
		filtered := rs
		filtered.Records = m.session.Apply(rs.Records)
		out = append(out, filtered)
	}
	return out
}

// rebuildRows flattens the result sets into the navigable list, in
// jurisdiction order.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	for _, rs := range m.results {
		for _, rec := range rs.Records {
			m.rows = append(m.rows, row{
				donor:    rec.Donor,
				party:    rec.Party,
				amount:   rec.Amount,
				currency: rec.Currency,
				period:   rec.Period,
				source:   rs.Source.Name,
			})
		}
	}
}

func (m Model) pageSize() int {
	size := m.height - 8
	if size < 1 {
		return 10
	}
	return size
}

func exportFilename(subject string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(subject))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-"), "-")
	if slug == "" {
		slug = "donations"
	}
	return fmt.Sprintf("donations-%s-%s.xlsx", slug, now.Format("20060102-150405"))
}

