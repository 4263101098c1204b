package commands

import (
	"context"
	"poloscraper/services/collector"

	"github.com/spf13/cobra"
)

var (
	financeiroSystem  *string
	financeiroDb      *string
	financeiroLogFile *string
)

func init() {
	financeiroSystem = financeiroCmd.Flags().String("system", "", "Override the system selected in config.json5.")
	financeiroDb = financeiroCmd.Flags().String("db", "", "Also archive the run to this sqlite database.")
	financeiroLogFile = financeiroCmd.Flags().String("log-file", "", "Tee diagnostics into this append-only file.")
	rootCmd.AddCommand(financeiroCmd)
}

var financeiroCmd = &cobra.Command{
	Use:   "financeiro [--system <name>] [--db <path/to/archive.db>]",
	Short: "Runs the financial-only collection: one ficha financeira visit per student.",
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd.Context(), collector.MethodFinancial, *financeiroSystem, *financeiroDb, *financeiroLogFile,
			func(ctx context.Context, r *collector.Runner, cpfs []string) ([]collector.Record, error) {
				return r.RunFinancial(ctx, cpfs)
			})
	},
}
