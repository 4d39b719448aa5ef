package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/session"
)

func ukSource() model.SourceInfo {
	return model.SourceInfo{
		ID: "uk", Name: "UK Electoral Commission",
		URL: "https://search.electoralcommission.org.uk", Currency: "GBP",
		Coverage: "2001-present", Threshold: "£11,180",
	}
}

func euSource() model.SourceInfo {
	return model.SourceInfo{
		ID: "eu", Name: "EU Authority for Political Parties (APPF)",
		URL: "https://www.appf.europa.eu", Currency: "EUR",
		Coverage: "2018-present", Threshold: "€12,000",
	}
}

func TestBuildSummaryAndSections(t *testing.T) {
	results := []model.ResultSet{
		{
			Source: ukSource(),
			Records: []model.Donation{
				{Donor: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP", Period: "2024-03-01", Year: 2024},
				{Donor: "Beta Ltd", Party: "Conservative Party", Amount: 2500, Currency: "GBP", Period: "2023-06-15", Year: 2023},
			},
		},
		{Source: euSource(), Degraded: true},
	}

	r := Build("Acme", results)

	require.Len(t, r.Summary, 2)
	require.Len(t, r.Sections, 1, "empty jurisdiction must not produce a detail section")
	require.Len(t, r.Sources, 2, "methodology covers every jurisdiction, empty or not")

	uk := r.Summary[0]
	assert.Equal(t, 2, uk.RecordCount)
	assert.Equal(t, 2, uk.Parties)
	assert.InDelta(t, 3500.0, uk.Total, 0.001)
	assert.Equal(t, "£3,500.00", uk.FormatTotal())
	assert.Equal(t, "2023-06-15 to 2024-03-01", uk.PeriodRange)

	eu := r.Summary[1]
	assert.Equal(t, 0, eu.RecordCount)
	assert.Equal(t, 0, eu.Parties)
	assert.Equal(t, "-", eu.FormatTotal())
	assert.Equal(t, "-", eu.PeriodRange)
	assert.True(t, eu.Degraded)
}

func TestBuildNeverSumsAcrossCurrencies(t *testing.T) {
	results := []model.ResultSet{
		{Source: ukSource(), Records: []model.Donation{{Donor: "A", Amount: 100, Currency: "GBP"}}},
		{Source: euSource(), Records: []model.Donation{{Donor: "B", Amount: 200, Currency: "EUR"}}},
	}

	r := Build("test", results)
	require.Len(t, r.Summary, 2)
	assert.Equal(t, "£100.00", r.Summary[0].FormatTotal())
	assert.Equal(t, "€200.00", r.Summary[1].FormatTotal())
}

func TestExclusionReducesExportTotal(t *testing.T) {
	records := []model.Donation{
		{Donor: "Acme Corp", DonorFull: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP"},
		{Donor: "Beta Ltd", DonorFull: "Beta Ltd", Party: "Labour Party", Amount: 2500, Currency: "GBP"},
	}

	s := session.New(5)
	_, err := s.SetQuery("Acme OR Beta")
	require.NoError(t, err)

	before := Build("Acme OR Beta", []model.ResultSet{{Source: ukSource(), Records: s.Apply(records)}})
	s.Toggle("Acme Corp", false)
	after := Build("Acme OR Beta", []model.ResultSet{{Source: ukSource(), Records: s.Apply(records)}})

	assert.InDelta(t, 1000.0, before.Summary[0].Total-after.Summary[0].Total, 0.001)
	require.Len(t, after.Sections, 1)
	for _, rec := range after.Sections[0].Records {
		assert.NotEqual(t, "Acme Corp", rec.Donor)
	}
}

func TestWriteXLSX(t *testing.T) {
	results := []model.ResultSet{
		{
			Source: ukSource(),
			Records: []model.Donation{
				{Donor: "Acme Corp", DonorFull: "Acme Corp", Party: "Labour Party", Amount: 1000, Currency: "GBP", Period: "2024-03-01", Year: 2024, Source: "UK Electoral Commission"},
			},
		},
		{Source: euSource()},
	}

	f, err := WriteXLSX(Build("Acme", results))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "UK Electoral Commission")
	assert.Contains(t, sheets, "Data Sources")
	assert.NotContains(t, sheets, sheetTitle(euSource().Name), "empty jurisdiction gets no detail sheet")

	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Political Donations Report: Acme", title)

	donor, err := f.GetCellValue("UK Electoral Commission", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", donor)
}

func TestSheetTitle(t *testing.T) {
	assert.Equal(t, "UK Electoral Commission", sheetTitle("UK Electoral Commission"))
	assert.LessOrEqual(t, len([]rune(sheetTitle("Austrian Court of Audit (Rechnungshof) extended"))), 31)
	assert.NotContains(t, sheetTitle("A/B:C"), "/")
}

func TestTabValues(t *testing.T) {
	r := Build("Acme", []model.ResultSet{
		{Source: ukSource(), Records: []model.Donation{{Donor: "Acme Corp", Amount: 1000, Currency: "GBP"}}},
	})

	tabs := tabValues(r)
	require.Contains(t, tabs, "Summary")
	require.Contains(t, tabs, "UK Electoral Commission")
	require.Contains(t, tabs, "Data Sources")

	detail := tabs["UK Electoral Commission"]
	require.Len(t, detail, 2)
	assert.Equal(t, "Donor", detail[0][0])
	assert.Equal(t, "Acme Corp", detail[1][0])
}
