package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donortrail/donortrail/internal/cli"
	"github.com/donortrail/donortrail/internal/fetch"
	"github.com/donortrail/donortrail/internal/jurisdiction"
)

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the covered jurisdictions and their disclosure rules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cli.FormatTitle("Data Sources"))
			fmt.Println()

			for _, a := range jurisdiction.All(fetch.NewHTTP(0)) {
				info := a.Info()
				fmt.Println(cli.BoldStyle.Render(info.Name))
				fmt.Printf("  URL:       %s\n", info.URL)
				fmt.Printf("  Coverage:  %s\n", info.Coverage)
				fmt.Printf("  Threshold: %s\n", info.Threshold)
				fmt.Printf("  Currency:  %s\n", info.Currency)
				if info.Notes != "" {
					fmt.Println(cli.SubtleStyle.Render("  " + info.Notes))
				}
				fmt.Println()
			}
		},
	}
}
