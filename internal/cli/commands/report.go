package commands

import (
	"github.com/spf13/cobra"

	"github.com/greenstack-labs/ghgmart/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Render a summary report of the mart tables",
		Long: `Render the emissions and agriculture summary: percent change per
country and gas, index trend slopes, top commodities per five-year
period, and sector shares with their gas-scope qualifier.

Use -o markdown for Markdown output.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			logger := getLogger(cmd)
			ctx := cmd.Context()

			db, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return report.New(db.SQL(), logger).Write(ctx, cmd.OutOrStdout(), cfg.Output)
		},
	}
}
