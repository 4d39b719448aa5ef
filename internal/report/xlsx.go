package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// detailHeader lists every canonical field written to a detail sheet.
var detailHeader = []any{
	"Donor", "Full Donor", "Party", "Amount", "Currency", "Period", "Year",
	"Month", "Donor Type", "Donation Type", "Nature", "Country", "Location",
	"Reg Number", "Reference", "Source",
}

// WriteXLSX renders the report as an in-memory xlsx workbook: a Summary
// sheet, one detail sheet per non-empty jurisdiction, and a Data Sources
// sheet. The caller is responsible for saving or streaming the file.
func WriteXLSX(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E4057"}},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("creating title style: %w", err)
	}

	if err := writeSummarySheet(f, r, headerStyle, titleStyle); err != nil {
		return nil, err
	}
	for _, section := range r.Sections {
		if err := writeDetailSheet(f, &section, headerStyle); err != nil {
			return nil, err
		}
	}
	if err := writeSourcesSheet(f, r, titleStyle); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, r *Report, headerStyle, titleStyle int) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Political Donations Report: %s", r.Subject))
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.MergeCell(sheet, "A1", "F1")
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04")))
	_ = f.SetCellValue(sheet, "A4", "Summary by Jurisdiction")

	headers := []any{"Jurisdiction", "Records Found", "Distinct Parties", "Total Value", "Date Range", "Data Status"}
	if err := f.SetSheetRow(sheet, "A5", &headers); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	_ = f.SetCellStyle(sheet, "A5", "F5", headerStyle)

	for i, row := range r.Summary {
		status := "complete"
		if row.Degraded {
			status = "degraded (embedded snapshot)"
		}
		values := []any{row.Jurisdiction, row.RecordCount, row.Parties, row.FormatTotal(), row.PeriodRange, status}
		cell := fmt.Sprintf("A%d", 6+i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "C", 15)
	_ = f.SetColWidth(sheet, "D", "D", 18)
	_ = f.SetColWidth(sheet, "E", "F", 28)
	return nil
}

func writeDetailSheet(f *excelize.File, section *Section, headerStyle int) error {
	sheet := sheetTitle(section.Source.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &detailHeader); err != nil {
		return fmt.Errorf("writing header on %q: %w", sheet, err)
	}
	end, _ := excelize.CoordinatesToCellName(len(detailHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", end, headerStyle)

	for i := range section.Records {
		rec := &section.Records[i]
		values := []any{
			rec.Donor, rec.DonorFull, rec.Party, rec.Amount, rec.Currency,
			rec.Period, rec.Year, rec.Month, rec.DonorType, rec.DonationType,
			rec.Nature, rec.Country, rec.Location, rec.RegNumber,
			rec.Reference, rec.Source,
		}
		cell := fmt.Sprintf("A%d", 2+i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d on %q: %w", i, sheet, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 32)
	_ = f.SetColWidth(sheet, "D", "P", 16)
	return nil
}

func writeSourcesSheet(f *excelize.File, r *Report, titleStyle int) error {
	const sheet = "Data Sources"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sources sheet: %w", err)
	}

	_ = f.SetCellValue(sheet, "A1", "Data Sources & Methodology")
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	row := 3
	write := func(text string) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), text)
		row++
	}

	for _, src := range r.Sources {
		write(src.Name)
		write(fmt.Sprintf("  URL: %s", src.URL))
		write(fmt.Sprintf("  Coverage: %s", src.Coverage))
		write(fmt.Sprintf("  Threshold: %s", src.Threshold))
		if src.Notes != "" {
			write(fmt.Sprintf("  Note: %s", src.Notes))
		}
		write("")
	}

	write("Disclaimer:")
	write("This report aggregates publicly available data from official sources.")
	write("Different jurisdictions have different disclosure thresholds and requirements.")
	write("Results may not represent all donations made by the searched entity.")

	_ = f.SetColWidth(sheet, "A", "A", 90)
	return nil
}

// sheetTitle makes a source name safe as an xlsx sheet name: the format
// forbids a handful of characters and caps names at 31 runes.
func sheetTitle(name string) string {
	replacer := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")
	cleaned := replacer.Replace(name)
	runes := []rune(cleaned)
	if len(runes) > 31 {
		cleaned = strings.TrimSpace(string(runes[:31]))
	}
	return cleaned
}
