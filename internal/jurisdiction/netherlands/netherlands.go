// Package netherlands parses the Dutch interior ministry's annual overview
// of gifts to political parties, published as an xlsx workbook. The header
// row is not at a fixed index: introductory rows precede it and shift
// between editions, so the adapter scans for the row containing the marker
// column "Gever" (donor) before treating anything as data.
package netherlands

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultWorkbookURL = "https://www.rijksoverheid.nl/documenten/publicaties/overzicht-giften-politieke-partijen.xlsx"

// headerMarker is the column name that identifies the real header row.
const headerMarker = "Gever"

// Adapter implements jurisdiction.Adapter for the Netherlands.
type Adapter struct {
	Fetcher     fetch.Fetcher
	WorkbookURL string
}

// New creates the Netherlands adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, WorkbookURL: defaultWorkbookURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "netherlands",
		Name:      "Dutch Ministry of the Interior (Wfpp)",
		URL:       "https://www.rijksoverheid.nl/onderwerpen/financien-politieke-partijen",
		Coverage:  "2013-present (annual overviews)",
		Threshold: "€4,500 per donor per year",
		Currency:  "EUR",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, _ query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	body, err := a.Fetcher.Get(ctx, a.WorkbookURL)
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Dutch overview workbook unavailable: %v", err))
		return rs
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Dutch overview is not a readable workbook: %v", err))
		return rs
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		rs.Warnings = append(rs.Warnings, "Dutch overview workbook has no sheets")
		return rs
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Dutch overview sheet unreadable: %v", err))
		return rs
	}

	header, start := findHeader(rows)
	if header == nil {
		rs.Warnings = append(rs.Warnings, fmt.Sprintf("Dutch overview has no header row containing %q", headerMarker))
		return rs
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

	cutoffYear := time.Now().Year() - lookbackYears
	for _, row := range rows[start:] {
		donor := cell(row, "gever")
		if donor == "" {
			continue
		}

		amount, err := money.ParseContinental(cell(row, "bedrag"))
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("Dutch row for %q dropped: %v", donor, err))
			continue
		}

		rec := model.Donation{
			Donor:     donor,
			DonorFull: donor,
			Party:     cell(row, "partij"),
			Amount:    amount,
			Currency:  "EUR",
			Source:    "Dutch Ministry of the Interior",
		}
		if year, err := strconv.Atoi(cell(row, "jaar")); err == nil {
			if year < cutoffYear {
				continue
			}
			rec.Year = year
			rec.Period = strconv.Itoa(year)
		}
		rs.Records = append(rs.Records, rec)
	}

	return rs
}

// findHeader scans for the first row containing the marker column and
// returns it plus the index of the first data row.
func findHeader(rows [][]string) ([]string, int) {
	for i, row := range rows {
		for _, cellValue := range row {
			if strings.EqualFold(strings.TrimSpace(cellValue), headerMarker) {
				return row, i + 1
			}
		}
	}
	return nil, 0
}
