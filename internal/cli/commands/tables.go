package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List database tables with row counts",
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

			counts, err := db.RowCounts(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(counts) == 0 {
				_, _ = fmt.Fprintln(w, "No tables found; run `ghgmart run` first")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Rows"})
			for _, tc := range counts {
				t.AppendRow(table.Row{tc.Table, tc.Rows})
			}
			if cfg.Output == "markdown" || cfg.Output == "md" {
				t.RenderMarkdown()
			} else {
				t.Render()
			}
			return nil
		},
	}
}
