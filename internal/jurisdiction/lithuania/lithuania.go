// Package lithuania fetches donation records from the Lithuanian central
// electoral commission (VRK), which publishes a CSV per calendar year. The
// yearly files overlap at campaign boundaries: the same donation can appear
// in two adjacent files, so the merged set is deduplicated on
// donor+party+amount+year (the source exposes no stable record ID).
package lithuania

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultBaseURL = "https://www.vrk.lt/statiniai/puslapiai/rinkimai/aukos"

// Adapter implements jurisdiction.Adapter for Lithuania.
type Adapter struct {
	Fetcher fetch.Fetcher
	BaseURL string
}

// New creates the Lithuania adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, BaseURL: defaultBaseURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "lithuania",
		Name:      "Lithuanian Central Electoral Commission (VRK)",
		URL:       "https://www.vrk.lt",
		Coverage:  "2012-present",
		Threshold: "all donations (full disclosure)",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	currentYear := time.Now().Year()
	var merged []model.Donation
	for year := currentYear; year >= currentYear-lookbackYears; year-- {
		exportURL := fmt.Sprintf("%s/%d.csv", a.BaseURL, year)
		body, err := a.Fetcher.Get(ctx, exportURL)
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("VRK %d export unavailable: %v", year, err))
			continue
		}
		records, warnings := parseYearCSV(body, year)
		merged = append(merged, records...)
		rs.Warnings = append(rs.Warnings, warnings...)
	}

	// Adjacent yearly files overlap; no source key, so dedupe on
	// donor+party+amount+year.
	rs.Records = model.Dedupe(merged)
	return rs
}

func parseYearCSV(body []byte, fallbackYear int) ([]model.Donation, []string) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("VRK %d export has no header row: %v", fallbackYear, err)}
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

		donor := cell(row, "aukotojas")
		if donor == "" {
			continue
		}
		amount, err := money.ParseContinental(cell(row, "suma"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("VRK row for %q dropped: %v", donor, err))
			continue
		}

		rec := model.Donation{
			Donor:     donor,
			DonorFull: donor,
			Party:     cell(row, "gavejas"),
			Amount:    amount,
			Currency:  "EUR",
			Year:      fallbackYear,
			Period:    strconv.Itoa(fallbackYear),
			Source:    "Lithuanian Central Electoral Commission",
		}
		if year, err := strconv.Atoi(cell(row, "metai")); err == nil && year > 0 {
			rec.Year = year
			rec.Period = strconv.Itoa(year)
		}
		records = append(records, rec)
	}
	return records, warnings
}
