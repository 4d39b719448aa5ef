package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donortrail/donortrail/internal/cli"
	"github.com/donortrail/donortrail/internal/common"
	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/jurisdiction"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/report"
	"github.com/donortrail/donortrail/internal/session"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search donors across all jurisdictions",
		Long: `Search political-donation registers for a donor. The query is a boolean
expression: terms combined with OR, or a single leading NOT.

Examples:
  donortrail search "Acme Corp"
  donortrail search "Acme OR Beta Holdings"
  donortrail search "NOT Northern Trust" --years 3`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().String("export", "", "write an xlsx report to the given path")
	cmd.Flags().Bool("sheets", false, "push the report to Google Sheets")
	cmd.Flags().StringSlice("exclude", nil, "donor names to exclude from results and exports")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	raw := args[0]

	years := viper.GetInt("search.years")
	sess := session.New(years)
	q, err := sess.SetQuery(raw)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("invalid query %q", raw), err)
	}

	excludes, _ := cmd.Flags().GetStringSlice("exclude")
	for _, donor := range excludes {
		sess.Toggle(strings.TrimSpace(donor), false)
	}

	fetcher, cleanup, err := buildFetcher()
	if err != nil {
		return err
	}
	defer cleanup()

	adapters := jurisdiction.All(fetcher)
	bar := searchProgressBar(len(adapters))

	start := time.Now()
	results := jurisdiction.Run(ctx, adapters, q, years, func(info model.SourceInfo) {
		bar.Describe(fmt.Sprintf("[cyan]%s[reset]", info.Name))
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	for i := range results {
		results[i].Records = sess.Apply(results[i].Records)
	}

	slog.Info("search completed",
		"query", raw,
		"jurisdictions", len(results),
		"duration", time.Since(start).Round(time.Millisecond))

	r := report.Build(raw, results)
	fmt.Println()
	fmt.Println(cli.RenderSummary(r))
	for i := range r.Sections {
		fmt.Println(cli.RenderSection(&r.Sections[i]))
	}
	if warnings := cli.RenderWarnings(results); warnings != "" {
		fmt.Print(warnings)
	}

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		if err := exportXLSX(r, exportPath); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report written to %s", exportPath)))
	}

	if push, _ := cmd.Flags().GetBool("sheets"); push {
		if err := exportSheets(ctx, r); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess("Report pushed to Google Sheets"))
	}
	return nil
}

// buildFetcher assembles the shared HTTP fetcher, wrapped in the sqlite
// document cache unless disabled.
func buildFetcher() (fetch.Fetcher, func(), error) {
	base := fetch.NewHTTP(viper.GetDuration("fetch.timeout"))
	if viper.GetBool("cache.disabled") {
		return base, func() {}, nil
	}

	cachePath := viper.GetString("cache.path")
	if cachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cachePath = filepath.Join(home, ".cache", "donortrail", "documents.db")
	}

	cache, err := fetch.NewCache(cachePath, base, viper.GetDuration("cache.ttl"))
	if err != nil {
		// A broken cache should not block a search.
		slog.Warn("document cache unavailable, fetching directly", "error", err)
		return base, func() {}, nil
	}
	return cache, func() { _ = cache.Close() }, nil
}

func searchProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Searching registers...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func exportXLSX(r *report.Report, path string) error {
	f, err := report.WriteXLSX(r)
	if err != nil {
		return fmt.Errorf("failed to build xlsx report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write xlsx report: %w", err)
	}
	return nil
}

func exportSheets(ctx context.Context, r *report.Report) error {
	config := report.DefaultSheetsConfig()
	if err := config.LoadFromEnv(); err != nil {
		return err
	}

	writer, err := report.NewSheetsWriter(ctx, config, slog.Default())
	if err != nil {
		return common.NewUserError("could not connect to Google Sheets", err)
	}
	return writer.Write(ctx, r)
}
