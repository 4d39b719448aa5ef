package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/query"
	"github.com/donortrail/donortrail/internal/session"
)

func fixedSearch(results []model.ResultSet) SearchFunc {
	return func(_ context.Context, _ query.Query, _ int) []model.ResultSet {
		return results
	}
}

func sampleResults() []model.ResultSet {
	return []model.ResultSet{
		{
			Source: model.SourceInfo{ID: "uk", Name: "UK Electoral Commission", Currency: "GBP"},
			Records: []model.Donation{
				{Donor: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP", Period: "2024-03-01"},
				{Donor: "Beta Ltd", Party: "Conservative Party", Amount: 2500, Currency: "GBP", Period: "2023-06-15"},
			},
		},
	}
}

func searchedModel(t *testing.T) Model {
	t.Helper()
	s := session.New(5)
	m := newModel(context.Background(), Config{
		Session: s,
		Search:  fixedSearch(sampleResults()),
		Width:   120,
		Height:  40,
	})

	m.input.SetValue("Acme OR Beta")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// enter → searchStartedMsg → runSearch cmd → searchDoneMsg
	next, cmd = next.(Model).Update(cmd())
	require.NotNil(t, cmd)
	batched := collectMsgs(t, cmd)
	var done tea.Msg
	for _, msg := range batched {
		if _, ok := msg.(searchDoneMsg); ok {
			done = msg
		}
	}
	require.NotNil(t, done, "search command must produce a searchDoneMsg")

	next, _ = next.(Model).Update(done)
	return next.(Model)
}

// collectMsgs resolves a command, flattening one level of tea.Batch.
func collectMsgs(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			if sub != nil {
				out = append(out, sub())
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSubmitQueryRunsSearch(t *testing.T) {
	m := searchedModel(t)

	assert.Equal(t, StateResults, m.state)
	require.Len(t, m.rows, 2)
	assert.Equal(t, "Acme Corp", m.rows[0].donor)
	assert.Equal(t, "Acme OR Beta", m.session.RawQuery())
}

func TestInvalidQueryStaysOnPrompt(t *testing.T) {
	s := session.New(5)
	m := newModel(context.Background(), Config{Session: s, Search: fixedSearch(nil)})

	m.input.SetValue("NOT Acme OR Beta")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd, "unsupported queries never reach the adapters")
	assert.Equal(t, StateQuery, next.(Model).state)
	assert.Error(t, next.(Model).lastError)
}

func TestToggleKeyFlipsExclusion(t *testing.T) {
	m := searchedModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = next.(Model)
	assert.True(t, m.session.Excluded("Acme Corp"))
	assert.Equal(t, 1, m.session.ExclusionCount())

	// Toggling again restores the donor.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = next.(Model)
	assert.False(t, m.session.Excluded("Acme Corp"))
}

func TestFilteredResultsHonorExclusions(t *testing.T) {
	m := searchedModel(t)
	m.session.Toggle("Acme Corp", false)

	filtered := m.filteredResults()
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Records, 1)
	assert.Equal(t, "Beta Ltd", filtered[0].Records[0].Donor)
}

func TestNewQueryResetsExclusions(t *testing.T) {
	m := searchedModel(t)
	m.session.Toggle("Acme Corp", false)
	require.Equal(t, 1, m.session.ExclusionCount())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = next.(Model)
	assert.Equal(t, StateQuery, m.state)

	m.input.SetValue("Gamma")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 0, m.session.ExclusionCount(),
		"a new query atomically clears the exclusion set")
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "donations-acme-or-beta-20260823-143000.xlsx", exportFilename("Acme OR Beta", now))
	assert.Equal(t, "donations-donations-20260823-143000.xlsx", exportFilename("???", now))
}

func TestResultsViewMarksExcludedDonors(t *testing.T) {
	m := searchedModel(t)
	m.session.Toggle("Beta Ltd", false)

	out := m.View()
	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "1 excluded")
}
