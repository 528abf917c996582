// Command bbref scrapes basketball-reference season tables.
//
// Usage:
//
//	bbref scrape totals advanced --seasons 1996-1998
//	bbref scrape shooting --seasons 2010-2024 --sink sqlite
//	bbref categories
//	bbref show totals 1998
//	bbref series totals "Michael Jordan" PTS
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "bbref",
		Short:         "Scrape basketball-reference season stat tables",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(scrapeCmd())
	root.AddCommand(categoriesCmd())
	root.AddCommand(showCmd())
	root.AddCommand(seriesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
