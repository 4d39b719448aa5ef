// Package eu parses donation disclosures of the EU Authority for Political
// Parties and Foundations (APPF), published as xlsx workbooks, one per year.
// The sheet has no regular header: party group rows (marked by a leading "Ø"
// or recognizable as a standalone party name) apply to the donor rows that
// follow, and stray "Donor" label rows are skipped. APPF amounts use comma
// thousands with dot decimals, unlike the continental sources.
//
// When the live workbooks cannot be downloaded or read, the adapter falls
// back to an embedded snapshot of the published data and flags the result
// set as degraded so the report never passes reduced data off as complete.
package eu

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

// sourceLabel is the provenance string on every EU record.
const sourceLabel = "EU APPF"

// Published workbook URLs; the path embeds the publication date, so each
// year is listed explicitly.
var yearURLs = map[int]string{
	2025: "https://www.appf.europa.eu/cmsdata/299571/2025%20PARTIES%20Donations%20table%20as%20of%202025-11-03.xlsx",
	2024: "https://www.appf.europa.eu/cmsdata/291887/2024%20PARTIES%20Donations%20table%20as%20of%202024-12-04.xlsx",
}

// partyNameHints mark standalone party-name rows that lack the Ø marker.
var partyNameHints = []string{"Party", "Movement", "Alliance", "Democrats", "Conservatives"}

// Adapter implements jurisdiction.Adapter for the EU level.
type Adapter struct {
	Fetcher  fetch.Fetcher
	YearURLs map[int]string
}

// New creates the EU adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, YearURLs: yearURLs}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "eu",
		Name:      "EU Authority for Political Parties (APPF)",
		URL:       "https://www.appf.europa.eu",
		Coverage:  "2018-present",
		Threshold: "€12,000",
		Currency:  "EUR",
		Notes:     "Covers pan-European parties (EPP, PES, ALDE, ECR, ...), distinct from national parties",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	cutoffYear := time.Now().Year() - lookbackYears
	years := make([]int, 0, len(a.YearURLs))
	for year := range a.YearURLs {
		if year >= cutoffYear {
			years = append(years, year)
		}
	}
	// Newest year first, and a stable record order across runs.
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	attempted := 0
	for _, year := range years {
		attempted++

		body, err := a.Fetcher.Get(ctx, a.YearURLs[year])
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("APPF %d workbook unavailable: %v", year, err))
			continue
		}
		records, warnings := parseWorkbook(body, year)
		rs.Records = append(rs.Records, records...)
		rs.Warnings = append(rs.Warnings, warnings...)
	}

	// Nothing live could be loaded: serve the embedded snapshot and say so.
	if len(rs.Records) == 0 && attempted > 0 {
		snapshot, err := loadSnapshot(cutoffYear)
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("embedded APPF snapshot unreadable: %v", err))
			return rs
		}
		rs.Records = snapshot
		rs.Degraded = true
		rs.Warnings = append(rs.Warnings,
			"live APPF data unavailable; results come from the embedded snapshot and may be incomplete")
	}
	return rs
}

func parseWorkbook(body []byte, year int) ([]model.Donation, []string) {
	workbook, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, []string{fmt.Sprintf("APPF %d file is not a readable workbook: %v", year, err)}
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, []string{fmt.Sprintf("APPF %d workbook has no sheets", year)}
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, []string{fmt.Sprintf("APPF %d sheet unreadable: %v", year, err)}
	}

	var records []model.Donation
	currentParty := ""

	for _, row := range rows {
		val0 := rowCell(row, 0)
		val1 := rowCell(row, 1)
		val2 := rowCell(row, 2)

		if party, ok := partyHeader(val0, val1, val2); ok {
			currentParty = party
			continue
		}
		if strings.EqualFold(strings.TrimSpace(val0), "donor") {
			continue
		}
		if currentParty == "" || val0 == "" || val1 == "" || val2 == "" {
			continue
		}

		amount, err := money.ParseUK(val2)
		if err != nil {
			// Unparseable amount rows are dropped, never zeroed.
			continue
		}

		records = append(records, model.Donation{
			Donor:     val0,
			DonorFull: val0,
			Party:     currentParty,
			Amount:    amount,
			Currency:  "EUR",
			Country:   val1,
			Year:      year,
			Period:    fmt.Sprintf("%d", year),
			Source:    sourceLabel,
		})
	}
	return records, nil
}

func rowCell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(row[i], "\u00a0", " "))
}

// partyHeader reports whether the row is a party group header applying to
// the donor rows below it.
func partyHeader(val0, val1, val2 string) (string, bool) {
	if strings.HasPrefix(val0, "Ø") {
		return strings.TrimSpace(strings.TrimPrefix(val0, "Ø")), true
	}
	if val0 != "" && val1 == "" && val2 == "" && len(val0) > 10 {
		for _, hint := range partyNameHints {
			if strings.Contains(val0, hint) {
				return val0, true
			}
		}
	}
	return "", false
}
