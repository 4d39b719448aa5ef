package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donortrail/donortrail/internal/jurisdiction"
	"github.com/donortrail/donortrail/internal/model"
	"github.com/donortrail/donortrail/internal/query"
	"github.com/donortrail/donortrail/internal/session"
	"github.com/donortrail/donortrail/internal/tui"
)

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"tui"},
		Short:   "Interactive search session with exclusion marking",
		Long: `Open an interactive session: type a query, browse the merged results, and
mark individual donors as false positives. Exclusions apply to the display
and every export, and are cleared when a new query is submitted.`,
		RunE: runInteractive,
	}

	cmd.Flags().String("export-dir", "", "directory for exported reports (default: current directory)")
	return cmd
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	fetcher, cleanup, err := buildFetcher()
	if err != nil {
		return err
	}
	defer cleanup()

	adapters := jurisdiction.All(fetcher)
	exportDir, _ := cmd.Flags().GetString("export-dir")

	search := func(ctx context.Context, q query.Query, years int) []model.ResultSet {
		return jurisdiction.Run(ctx, adapters, q, years, nil)
	}

	return tui.Run(cmd.Context(), tui.Config{
		Session:   session.New(viper.GetInt("search.years")),
		Search:    search,
		ExportDir: exportDir,
	})
}
