package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL query against the mart database",
		Example: `  # Percent change per country and gas
  ghgmart query "SELECT * FROM mart_percent_change ORDER BY country"

  # CSV export
  ghgmart query -o csv "SELECT * FROM mart_sector_shares"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			rows, err := db.Query(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			defer func() { _ = rows.Close() }()

			return renderRows(cmd.OutOrStdout(), rows, cfg.Output)
		},
	}
}
