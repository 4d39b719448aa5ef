// Package uk searches the UK Electoral Commission donations database. The
// Commission exposes a CSV export endpoint that accepts a single free-text
// query, so boolean expressions are decomposed into their literal terms, one
// request is issued per term, and the merged results are deduplicated by the
// Commission's ECRef reference.
package uk

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/money"
	"github.com/donortrail/donortrail/internal/query"
)

const defaultBaseURL = "https://search.electoralcommission.org.uk"

// maxRows caps a single CSV export request.
const maxRows = 500

// Adapter implements jurisdiction.Adapter for the UK.
type Adapter struct {
	Fetcher fetch.Fetcher
	BaseURL string
}

// New creates the UK adapter.
func New(f fetch.Fetcher) *Adapter {
	return &Adapter{Fetcher: f, BaseURL: defaultBaseURL}
}

// Info implements jurisdiction.Adapter.
func (a *Adapter) Info() model.SourceInfo {
	return model.SourceInfo{
		ID:        "uk",
		Name:      "UK Electoral Commission",
		URL:       "https://search.electoralcommission.org.uk",
		Coverage:  "2001-present",
		Threshold: "£11,180 (central parties), £2,230 (accounting units)",
		Currency:  "GBP",
	}
}

// Search implements jurisdiction.Adapter.
func (a *Adapter) Search(ctx context.Context, q query.Query, lookbackYears int) model.ResultSet {
	rs := model.ResultSet{Source: a.Info()}

	terms := positiveTerms(q)
	if len(terms) == 0 {
		rs.Warnings = append(rs.Warnings,
			"NOT-only queries cannot be sent to the Electoral Commission query API")
		return rs
	}

	end := time.Now()
	start := end.AddDate(-lookbackYears, 0, 0)

	var records []model.Donation
	for _, term := range terms {
		body, err := a.Fetcher.Get(ctx, a.exportURL(term, start, end))
		if err != nil {
			rs.Warnings = append(rs.Warnings, fmt.Sprintf("UK search for %q failed: %v", term, err))
			continue
		}
		parsed, warnings := parseCSV(body)
		records = append(records, parsed...)
		rs.Warnings = append(rs.Warnings, warnings...)
	}

	// Terms of an OR query can return overlapping record sets.
	rs.Records = model.Dedupe(records)
	return rs
}

// positiveTerms returns the literal terms worth sending to the remote query
// API. A NOT term describes records to remove, not records to fetch.
func positiveTerms(q query.Query) []string {
	switch v := q.(type) {
	case query.Term:
		return []string{v.Text}
	case query.Or:
		var out []string
		for _, sub := range v.Queries {
			out = append(out, positiveTerms(sub)...)
		}
		return out
	default:
		return nil
	}
}

func (a *Adapter) exportURL(term string, start, end time.Time) string {
	params := url.Values{}
	params.Set("start", "0")
	params.Set("rows", fmt.Sprintf("%d", maxRows))
	params.Set("query", term)
	params.Set("sort", "AcceptedDate")
	params.Set("order", "desc")
	params.Set("et", "pp") // political parties
	params.Set("date", "Accepted")
	params.Set("from", start.Format("2006-01-02"))
	params.Set("to", end.Format("2006-01-02"))
	params.Set("prePoll", "false")
	params.Set("postPoll", "true")
	return a.BaseURL + "/api/csv/Donations?" + params.Encode()
}

func parseCSV(body []byte) ([]model.Donation, []string) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("UK CSV response has no header row: %v", err)}
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["DonorName"]; !ok {
		return nil, []string{"UK CSV response is missing the DonorName column"}
	}

	field := func(row []string, name string) string {
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

		donor := field(row, "DonorName")
		if donor == "" {
			continue
		}

		amount, err := money.ParseUK(field(row, "Value"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("UK row for %q dropped: %v", donor, err))
			continue
		}

		rec := model.Donation{
			Donor:        donor,
			DonorFull:    donor,
			Party:        field(row, "RegulatedEntityName"),
			Amount:       amount,
			Currency:     "GBP",
			Source:       "UK Electoral Commission",
			DonorType:    field(row, "DonorStatus"),
			DonationType: field(row, "DonationType"),
			Nature:       field(row, "NatureOfDonation"),
			Location:     field(row, "AccountingUnitName"),
			Reference:    field(row, "ECRef"),
		}

		if accepted, err := time.Parse("02/01/2006", field(row, "AcceptedDate")); err == nil {
			rec.Period = accepted.Format("2006-01-02")
			rec.Year = accepted.Year()
		}

		records = append(records, rec)
	}
	return records, warnings
}
