// Package report consolidates filtered per-jurisdiction result sets into a
// single exportable document: summary statistics, one detail section per
// jurisdiction with results, and a static methodology section. The caller
// applies search and exclusion filtering first; this package never filters.
package report

import (
	"fmt"
	"time"

	"github.com/donortrail/donortrail/internal/model"
)

// SummaryRow is one jurisdiction's line in the summary section. A
// jurisdiction with zero surviving records still gets a row with zero and
// placeholder values.
type SummaryRow struct {
	Jurisdiction string
	RecordCount  int
	Parties      int
	Total        float64
	Currency     string
	PeriodRange  string
	Degraded     bool
}

// Section is one jurisdiction's detail listing. Only jurisdictions with at
// least one record produce a section.
type Section struct {
	Source   model.SourceInfo
	Records  []model.Donation
	Degraded bool
}

// Report is the complete in-memory export document.
type Report struct {
	Subject     string
	GeneratedAt time.Time
	Summary     []SummaryRow
	Sections    []Section
	Sources     []model.SourceInfo
}

// Build assembles the report from already-filtered result sets. Totals are
// per jurisdiction and never summed across currencies.
func Build(subject string, results []model.ResultSet) *Report {
	r := &Report{
		Subject:     subject,
		GeneratedAt: time.Now(),
	}

	for _, rs := range results {
		row := SummaryRow{
			Jurisdiction: rs.Source.Name,
			RecordCount:  len(rs.Records),
			Parties:      rs.PartyCount(),
			Currency:     rs.Source.Currency,
			PeriodRange:  "-",
			Degraded:     rs.Degraded,
		}
		if len(rs.Records) > 0 {
			row.Total = rs.Total()
			if minPeriod, maxPeriod := rs.PeriodRange(); minPeriod != "" {
				if minPeriod == maxPeriod {
					row.PeriodRange = minPeriod
				} else {
					row.PeriodRange = fmt.Sprintf("%s to %s", minPeriod, maxPeriod)
				}
			}
			r.Sections = append(r.Sections, Section{
				Source:   rs.Source,
				Records:  rs.Records,
				Degraded: rs.Degraded,
			})
		}
		r.Summary = append(r.Summary, row)
		r.Sources = append(r.Sources, rs.Source)
	}
	return r
}

// FormatTotal renders a summary total with its currency symbol, or a
// placeholder for an empty jurisdiction.
func (row *SummaryRow) FormatTotal() string {
	if row.RecordCount == 0 {
		return "-"
	}
	symbol := "€"
	if row.Currency == "GBP" {
		symbol = "£"
	}
	return fmt.Sprintf("%s%s", symbol, formatThousands(row.Total))
}

func formatThousands(v float64) string {
	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	if frac >= 100 {
		whole++
		frac -= 100
	}

	digits := fmt.Sprintf("%d", whole)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}
	return fmt.Sprintf("%s.%02d", grouped, frac)
}
