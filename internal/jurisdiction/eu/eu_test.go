package eu

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/donortrail/donortrail/internal/common"
)

type fakeFetcher struct {
	pages map[string][]byte
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, common.ErrSourceUnavailable
	}
	return body, nil
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestParseWorkbookGroupsByPartyHeader(t *testing.T) {
	body := workbookBytes(t, [][]any{
		{"Donations received by European political parties"},
		{"Ø European People's Party"},
		{"Donor", "Country", "Amount"},
		{"Acme Industrie GmbH", "Germany", "18,000.00"},
		{"Nordic Holdings AB", "Sweden", "12,500.00"},
		{"Party of European Socialists"},
		{"Donor", "Country", "Amount"},
		{"Atelier Dupont SARL", "France", "15,000.00"},
		{"Pending confirmation", "Italy", "tbc"},
	})

	records, warnings := parseWorkbook(body, 2024)

	assert.Empty(t, warnings)
	require.Len(t, records, 3, "rows without a parseable amount are dropped, never zeroed")

	assert.Equal(t, "European People's Party", records[0].Party)
	assert.Equal(t, "European People's Party", records[1].Party)
	assert.Equal(t, "Party of European Socialists", records[2].Party)

	first := records[0]
	assert.Equal(t, "Acme Industrie GmbH", first.Donor)
	assert.Equal(t, "Germany", first.Country)
	assert.InDelta(t, 18000.00, first.Amount, 0.001)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, sourceLabel, first.Source)
}

func TestSearchFallsBackToSnapshotWhenLiveUnavailable(t *testing.T) {
	a := New(&fakeFetcher{pages: map[string][]byte{}})

	rs := a.Search(context.Background(), nil, 5)

	assert.True(t, rs.Degraded)
	require.NotEmpty(t, rs.Records, "embedded snapshot must produce records")
	for _, rec := range rs.Records {
		assert.Equal(t, sourceLabel, rec.Source)
		assert.Equal(t, "EUR", rec.Currency)
	}

	found := false
	for _, w := range rs.Warnings {
		if strings.Contains(w, "embedded snapshot") {
			found = true
		}
	}
	assert.True(t, found, "degraded results must carry an explicit notice")
}

func TestSearchLiveDataIsNotDegraded(t *testing.T) {
	body := workbookBytes(t, [][]any{
		{"Ø European People's Party"},
		{"Acme Industrie GmbH", "Germany", "18,000.00"},
	})
	pages := make(map[string][]byte)
	for _, url := range yearURLs {
		pages[url] = body
	}
	a := New(&fakeFetcher{pages: pages})

	rs := a.Search(context.Background(), nil, 5)

	assert.False(t, rs.Degraded)
	assert.NotEmpty(t, rs.Records)
}

func TestSearchReturnsNewestYearFirst(t *testing.T) {
	newer := workbookBytes(t, [][]any{
		{"Ø European People's Party"},
		{"Acme Industrie GmbH", "Germany", "18,000.00"},
	})
	older := workbookBytes(t, [][]any{
		{"Ø European People's Party"},
		{"Nordic Holdings AB", "Sweden", "12,500.00"},
	})
	a := New(&fakeFetcher{pages: map[string][]byte{
		yearURLs[2025]: newer,
		yearURLs[2024]: older,
	}})

	for i := 0; i < 5; i++ {
		rs := a.Search(context.Background(), nil, 5)

		require.Len(t, rs.Records, 2)
		assert.Equal(t, 2025, rs.Records[0].Year)
		assert.Equal(t, "Acme Industrie GmbH", rs.Records[0].Donor)
		assert.Equal(t, 2024, rs.Records[1].Year)
		assert.Equal(t, "Nordic Holdings AB", rs.Records[1].Donor)
	}
}

func TestPartyHeader(t *testing.T) {
	tests := []struct {
		name  string
		val0  string
		val1  string
		val2  string
		party string
		ok    bool
	}{
		{name: "marker prefix", val0: "Ø European People's Party", party: "European People's Party", ok: true},
		{name: "standalone hinted name", val0: "European Free Alliance", party: "European Free Alliance", ok: true},
		{name: "data row", val0: "Acme Industrie GmbH", val1: "Germany", val2: "18,000.00", ok: false},
		{name: "short label", val0: "Total", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			party, ok := partyHeader(tt.val0, tt.val1, tt.val2)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.party, party)
		})
	}
}
