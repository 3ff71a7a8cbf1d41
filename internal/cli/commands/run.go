package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Only     []string
	Parallel bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full staging and mart pipeline",
		Long: `Execute the pipeline steps: stage the source data, apply the
transforms, and replace the mart tables.

By default all steps run. Use --only to run a subset. One step failing
does not stop the others; the command exits nonzero if any step failed.`,
		Example: `  # Run everything
  ghgmart run

  # Rebuild only the sector shares
  ghgmart run --only sectors

  # Run the independent steps concurrently
  ghgmart run --parallel`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "Comma-separated list of steps to run (ag, emissions, sectors)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "Run steps concurrently")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
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

	startTime := time.Now()
	result, err := p.Run(ctx, opts.Only, opts.Parallel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, step := range result.Steps {
		status := "ok"
		if step.Err != nil {
			status = fmt.Sprintf("failed: %v", step.Err)
		}
		fmt.Fprintf(out, "  %-10s %-8s %s\n", step.Step, step.Duration.Round(time.Millisecond), status)
		for _, gerr := range step.GroupErrors {
			fmt.Fprintf(out, "    skipped group: %v\n", gerr)
		}
	}
	fmt.Fprintf(out, "Run %s completed in %s\n", result.RunID, time.Since(startTime).Round(time.Millisecond))

	return result.Err()
}
