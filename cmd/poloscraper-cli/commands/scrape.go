package commands

import (
	"context"
	"poloscraper/services/collector"

	"github.com/spf13/cobra"
)

var (
	scrapeSystem  *string
	scrapeDb      *string
	scrapeLogFile *string
)

func init() {
	scrapeSystem = scrapeCmd.Flags().String("system", "", "Override the system selected in config.json5.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "Also archive the run to this sqlite database.")
	scrapeLogFile = scrapeCmd.Flags().String("log-file", "", "Tee diagnostics into this append-only file.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--system <name>] [--db <path/to/archive.db>]",
	Short: "Runs the complete collection: ficha acadêmica, histórico and ficha financeira per student.",
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd.Context(), collector.MethodComplete, *scrapeSystem, *scrapeDb, *scrapeLogFile,
			func(ctx context.Context, r *collector.Runner, cpfs []string) ([]collector.Record, error) {
				return r.RunFull(ctx, cpfs)
			})
	},
}
