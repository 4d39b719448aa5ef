package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/donortrail/donortrail/internal/common"
)

// SheetsConfig holds the configuration for the Google Sheets writer.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultSheetsConfig returns a SheetsConfig with sensible defaults.
func DefaultSheetsConfig() SheetsConfig {
	return SheetsConfig{
		SpreadsheetName: "Political Donations Report",
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}
}

// LoadFromEnv loads credentials from environment variables.
func (c *SheetsConfig) LoadFromEnv() error {
	c.ClientID = os.Getenv("DONORTRAIL_SHEETS_CLIENT_ID")
	c.ClientSecret = os.Getenv("DONORTRAIL_SHEETS_CLIENT_SECRET")
	c.RefreshToken = os.Getenv("DONORTRAIL_SHEETS_REFRESH_TOKEN")
	c.ServiceAccountPath = os.Getenv("DONORTRAIL_SHEETS_SERVICE_ACCOUNT_PATH")
	c.SpreadsheetID = os.Getenv("DONORTRAIL_SHEETS_SPREADSHEET_ID")

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return common.NewUserError(
			"missing Google Sheets authentication: provide either a service account path or OAuth2 credentials",
			common.ErrMissingConfig)
	}
	return nil
}

// SheetsWriter pushes a report to a Google Sheets spreadsheet.
type SheetsWriter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  SheetsConfig
}

// NewSheetsWriter creates a Google Sheets report writer.
func NewSheetsWriter(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsWriter, error) {
	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsWriter{service: service, logger: logger, config: config}, nil
}

func createSheetsService(ctx context.Context, config SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// Write pushes the report: one Summary tab, one tab per detail section, and
// a Data Sources tab. Existing tab contents are replaced.
func (w *SheetsWriter) Write(ctx context.Context, r *Report) error {
	w.logger.Info("starting Sheets export",
		"subject", r.Subject,
		"jurisdictions", len(r.Summary),
		"sections", len(r.Sections))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx, r.Subject)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for tab, values := range tabValues(r) {
		tab, values := tab, values
		err := common.WithRetry(ctx, func() error {
			return w.writeTab(ctx, spreadsheetID, tab, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write tab %q: %w", tab, err)
		}
	}

	w.logger.Info("Sheets export completed", "spreadsheet_id", spreadsheetID)
	return nil
}

func (w *SheetsWriter) getOrCreateSpreadsheet(ctx context.Context, subject string) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: fmt.Sprintf("%s: %s", w.config.SpreadsheetName, subject),
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	return created.SpreadsheetId, nil
}

func (w *SheetsWriter) writeTab(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	// AddSheet fails if the tab already exists; that case is fine.
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("adding tab: %w", err)
	}

	if _, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clearing tab: %w", err)
	}

	_, err = w.service.Spreadsheets.Values.Update(spreadsheetID, tab+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing values: %w", err)
	}
	return nil
}

// tabValues flattens the report into per-tab cell grids.
func tabValues(r *Report) map[string][][]any {
	tabs := make(map[string][][]any)

	summary := [][]any{
		{fmt.Sprintf("Political Donations Report: %s", r.Subject)},
		{fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04"))},
		{},
		{"Jurisdiction", "Records Found", "Distinct Parties", "Total Value", "Date Range", "Data Status"},
	}
	for _, row := range r.Summary {
		status := "complete"
		if row.Degraded {
			status = "degraded (embedded snapshot)"
		}
		summary = append(summary, []any{row.Jurisdiction, row.RecordCount, row.Parties, row.FormatTotal(), row.PeriodRange, status})
	}
	tabs["Summary"] = summary

	for _, section := range r.Sections {
		grid := [][]any{append([]any{}, detailHeader...)}
		for i := range section.Records {
			rec := &section.Records[i]
			grid = append(grid, []any{
				rec.Donor, rec.DonorFull, rec.Party, rec.Amount, rec.Currency,
				rec.Period, rec.Year, rec.Month, rec.DonorType, rec.DonationType,
				rec.Nature, rec.Country, rec.Location, rec.RegNumber,
				rec.Reference, rec.Source,
			})
		}
		tabs[sheetTitle(section.Source.Name)] = grid
	}

	sources := [][]any{{"Data Sources & Methodology"}, {}}
	for _, src := range r.Sources {
		sources = append(sources,
			[]any{src.Name},
			[]any{fmt.Sprintf("  URL: %s", src.URL)},
			[]any{fmt.Sprintf("  Coverage: %s", src.Coverage)},
			[]any{fmt.Sprintf("  Threshold: %s", src.Threshold)},
			[]any{})
	}
	tabs["Data Sources"] = sources

	return tabs
}
