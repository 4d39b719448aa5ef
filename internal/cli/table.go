package cli

import (
	"fmt"
	"strings"

	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/report"
)

// maxDetailRows caps how many records one jurisdiction prints to the
// terminal; the full set always goes to the export.
const maxDetailRows = 25

// RenderSummary renders the per-jurisdiction summary table.
func RenderSummary(r *report.Report) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Donations matching %q", r.Subject)))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-40s %8s %8s %16s %25s", "Jurisdiction", "Records", "Parties", "Total", "Period")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, row := range r.Summary {
		line := fmt.Sprintf("%-40s %8d %8d %16s %25s", truncate(row.Jurisdiction, 40), row.RecordCount, row.Parties, row.FormatTotal(), row.PeriodRange)
		if row.RecordCount == 0 {
			line = SubtleStyle.Render(line)
		}
		b.WriteString(line)
		if row.Degraded {
			b.WriteString(" " + WarningStyle.Render("(snapshot)"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSection renders one jurisdiction's detail listing, capped at
// maxDetailRows rows.
func RenderSection(section *report.Section) string {
	var b strings.Builder

	title := fmt.Sprintf("%s (%d records)", section.Source.Name, len(section.Records))
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	header := fmt.Sprintf("%-34s %-28s %14s %12s", "Donor", "Party", "Amount", "Period")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i := range section.Records {
		if i == maxDetailRows {
			remaining := len(section.Records) - maxDetailRows
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("... and %d more (see export)", remaining)))
			b.WriteString("\n")
			break
		}
		rec := &section.Records[i]
		b.WriteString(fmt.Sprintf("%-34s %-28s %14s %12s\n",
			truncate(rec.Donor, 34), truncate(rec.Party, 28),
			formatAmount(rec.Amount, rec.Currency), rec.Period))
	}
	return b.String()
}

// RenderWarnings renders collected adapter warnings, or nothing when the
// run was clean.
func RenderWarnings(results []model.ResultSet) string {
	var b strings.Builder
	for _, rs := range results {
		for _, w := range rs.Warnings {
			b.WriteString(FormatWarning(w))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatAmount(amount float64, currency string) string {
	symbol := currency + " "
	switch currency {
	case "GBP":
		symbol = "£"
	case "EUR":
		symbol = "€"
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
