// Package estonia fetches quarterly donation reports from the Estonian
// party-financing supervision committee (ERJK), which publishes one CSV per
// quarter. Amounts use the continental convention; the native period
// granularity is year plus quarter and is preserved as such.
package estonia

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultBaseURL = "https://www.erjk.ee/et/avalik-teave/annetused"

// Adapter implements jurisdiction.Adapter for Estonia.
type Adapter struct {
	Fetcher fetch.Fetcher
	BaseURL string
}

// New creates the Estonia adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, BaseURL: defaultBaseURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "estonia",
		Name:      "Estonian Party Financing Committee (ERJK)",
		URL:       "https://www.erjk.ee",
		Coverage:  "2011-present (quarterly reports)",
		Threshold: "all donations (full disclosure)",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	now := time.Now()
	currentQuarter := int(now.Month()-1)/3 + 1

	for year := now.Year(); year >= now.Year()-lookbackYears; year-- {
		lastQuarter := 4
		if year == now.Year() {
			lastQuarter = currentQuarter
		}
		for quarter := 1; quarter <= lastQuarter; quarter++ {
			exportURL := fmt.Sprintf("%s/export.csv?aasta=%d&kvartal=%d", a.BaseURL, year, quarter)
			body, err := a.Fetcher.Get(ctx, exportURL)
			if err != nil {
				rs.Warnings = append(rs.Warnings, fmt.Sprintf("ERJK %d Q%d unavailable: %v", year, quarter, err))
				continue
			}
			records, warnings := parseQuarterCSV(body, year, quarter)
			rs.Records = append(rs.Records, records...)
			rs.Warnings = append(rs.Warnings, warnings...)
		}
	}
	return rs
}

func parseQuarterCSV(body []byte, year, quarter int) ([]model.Donation, []string) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("ERJK %d Q%d export has no header row: %v", year, quarter, err)}
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.Donation
	var warnings []string
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}

		donor := cell(row, "annetaja")
		if donor == "" {
			continue
		}
		amount, err := money.ParseContinental(cell(row, "summa"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ERJK %d Q%d row for %q dropped: %v", year, quarter, donor, err))
			continue
		}

		records = append(records, model.Donation{
			Donor:     donor,
			DonorFull: donor,
			Party:     cell(row, "erakond"),
			Amount:    amount,
			Currency:  "EUR",
			Year:      year,
			Period:    fmt.Sprintf("%d Q%d", year, quarter),
			Source:    "Estonian Party Financing Committee",
		})
	}
	return records, warnings
}
