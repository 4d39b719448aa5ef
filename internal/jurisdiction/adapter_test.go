package jurisdiction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

// stubAdapter returns a fixed record set, standing in for one disclosure
// regime's fetch-and-parse pipeline.
type stubAdapter struct {
	info    model.SourceInfo
	records []model.Donation
	warning string
}

func (s *stubAdapter) Info() model.SourceInfo { return s.info }

func (s *stubAdapter) Search(_ context.Context, _ query.Query, _ int) model.ResultSet {
	rs := model.ResultSet{Source: s.info, Records: s.records}
	if s.warning != "" {
		rs.Warnings = append(rs.Warnings, s.warning)
	}
	return rs
}

func mustAmount(t *testing.T, parse func(string) (float64, error), raw string) float64 {
	t.Helper()
	v, err := parse(raw)
	require.NoError(t, err)
	return v
}

func TestRunFiltersEachResultSet(t *testing.T) {
	// One continental-format source and one UK-format source, with a donor
	// the query must not match.
	continental := &stubAdapter{
		info: model.SourceInfo{ID: "de", Name: "German Bundestag", Currency: "EUR"},
		records: []model.Donation{
			{Donor: "Acme Corp", DonorFull: "Acme CorpHauptstr. 5, Berlin", Party: "CDU",
				Amount: mustAmount(t, money.ParseContinental, "1.000,00"), Currency: "EUR"},
			{Donor: "Gamma Inc", DonorFull: "Gamma IncRingstr. 9, Wien", Party: "SPD",
				Amount: mustAmount(t, money.ParseContinental, "7.500,00"), Currency: "EUR"},
		},
	}
	sterling := &stubAdapter{
		info: model.SourceInfo{ID: "uk", Name: "UK Electoral Commission", Currency: "GBP"},
		records: []model.Donation{
			{Donor: "Beta Ltd", DonorFull: "Beta Ltd", Party: "Labour Party",
				Amount: mustAmount(t, money.ParseUK, "£2,500.00"), Currency: "GBP"},
		},
		warning: "1 row dropped",
	}

	q, err := query.Parse("Acme OR Beta")
	require.NoError(t, err)

	var visited []string
	results := Run(context.Background(), []Adapter{continental, sterling}, q, 5,
		func(info model.SourceInfo) { visited = append(visited, info.ID) })

	assert.Equal(t, []string{"de", "uk"}, visited)
	require.Len(t, results, 2)

	require.Len(t, results[0].Records, 1, "non-matching donors are filtered out")
	assert.Equal(t, "Acme Corp", results[0].Records[0].Donor)
	assert.InDelta(t, 1000.00, results[0].Records[0].Amount, 0.001)

	require.Len(t, results[1].Records, 1)
	assert.Equal(t, "Beta Ltd", results[1].Records[0].Donor)
	assert.InDelta(t, 2500.00, results[1].Records[0].Amount, 0.001)
	assert.Equal(t, []string{"1 row dropped"}, results[1].Warnings,
		"adapter warnings survive the filter pass")
}

func TestRunNotQueryExcludes(t *testing.T) {
	a := &stubAdapter{
		info: model.SourceInfo{ID: "de", Name: "German Bundestag"},
		records: []model.Donation{
			{Donor: "Acme Corp", DonorFull: "Acme Corp"},
			{Donor: "Gamma Inc", DonorFull: "Gamma Inc"},
			{Donor: "Anonymous", DonorFull: ""},
		},
	}

	q, err := query.Parse("NOT Gamma")
	require.NoError(t, err)

	results := Run(context.Background(), []Adapter{a}, q, 5, nil)
	require.Len(t, results, 1)
	require.Len(t, results[0].Records, 2)
	for _, rec := range results[0].Records {
		assert.NotEqual(t, "Gamma Inc", rec.Donor)
	}
}

func TestRunMatchesAgainstRawDonorText(t *testing.T) {
	// The display name was split before the address, but the search field is
	// the raw cell text, so an address-only match still counts.
	a := &stubAdapter{
		info: model.SourceInfo{ID: "de", Name: "German Bundestag"},
		records: []model.Donation{
			{Donor: "Verein für Aufbruch", DonorFull: "Verein für AufbruchMaximilianstr. 2, München"},
		},
	}

	q, err := query.Parse("Maximilianstr")
	require.NoError(t, err)

	results := Run(context.Background(), []Adapter{a}, q, 5, nil)
	require.Len(t, results[0].Records, 1)
}

func TestAllRegistryOrder(t *testing.T) {
	adapters := All(fetch.NewHTTP(0))

	ids := make([]string, 0, len(adapters))
	for _, a := range adapters {
		ids = append(ids, a.Info().ID)
	}
	assert.Equal(t, []string{"uk", "germany", "austria", "italy", "netherlands", "latvia", "estonia", "lithuania", "eu"}, ids)
}
