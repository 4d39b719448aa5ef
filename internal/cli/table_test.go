package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/report"
)

func sampleReport() *report.Report {
	return report.Build("Acme", []model.ResultSet{
		{
			Source: model.SourceInfo{ID: "uk", Name: "UK Electoral Commission", Currency: "GBP"},
			Records: []model.Donation{
				{Donor: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP", Period: "2024-03-01", Year: 2024},
			},
		},
		{Source: model.SourceInfo{ID: "eu", Name: "EU Authority for Political Parties (APPF)", Currency: "EUR"}, Degraded: true},
	})
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleReport())

	assert.Contains(t, out, "UK Electoral Commission")
	assert.Contains(t, out, "Parties")
	assert.Contains(t, out, "£1,000.00")
	assert.Contains(t, out, "snapshot", "degraded jurisdictions are marked")
}

func TestRenderSummaryCountsDistinctParties(t *testing.T) {
	r := report.Build("Acme", []model.ResultSet{
		{
			Source: model.SourceInfo{ID: "uk", Name: "UK Electoral Commission", Currency: "GBP"},
			Records: []model.Donation{
				{Donor: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP", Period: "2024-03-01", Year: 2024},
				{Donor: "Acme Corp", Party: "Conservative Party", Amount: 500, Currency: "GBP", Period: "2024-05-01", Year: 2024},
				{Donor: "Beta Ltd", Party: "Labour Party", Amount: 250, Currency: "GBP", Period: "2024-06-01", Year: 2024},
			},
		},
	})

	require.Len(t, r.Summary, 1)
	assert.Equal(t, 2, r.Summary[0].Parties)

	out := RenderSummary(r)
	assert.Contains(t, out, fmt.Sprintf("%8d %8d", 3, 2))
}

func TestRenderSectionCapsRows(t *testing.T) {
	section := report.Section{
		Source: model.SourceInfo{Name: "UK Electoral Commission"},
	}
	for i := 0; i < maxDetailRows+5; i++ {
		section.Records = append(section.Records, model.Donation{
			Donor: fmt.Sprintf("Donor %d", i), Party: "Labour Party",
			Amount: 100, Currency: "GBP", Period: "2024-01-01",
		})
	}

	out := RenderSection(&section)

	assert.Contains(t, out, "Donor 0")
	assert.NotContains(t, out, fmt.Sprintf("Donor %d", maxDetailRows))
	assert.Contains(t, out, "and 5 more")
}

func TestRenderWarnings(t *testing.T) {
	results := []model.ResultSet{
		{Warnings: []string{"KNAB page 3 failed"}},
		{},
	}

	out := RenderWarnings(results)
	assert.Contains(t, out, "KNAB page 3 failed")

	assert.Empty(t, RenderWarnings([]model.ResultSet{{}}), "clean runs print nothing")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 50)
	got := truncate(long, 10)
	require.Len(t, []rune(got), 10)
	assert.True(t, strings.HasSuffix(got, "…"))
}
