package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Load source data into the staging tables only",
		Long: `Load and validate every configured source into its staging table
without building any mart. Useful for inspecting inputs with
'ghgmart query' before a full run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			logger := getLogger(cmd)
			ctx := cmd.Context()

			p, closer, err := createPipeline(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			if err := p.Ingest(ctx); err != nil {
				return fmt.Errorf("ingest failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Staging tables loaded")
			return nil
		},
	}
}
