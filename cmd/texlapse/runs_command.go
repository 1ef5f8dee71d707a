package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"texlapse/internal/clierr"
	"texlapse/internal/ledger"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return clierr.Wrap(clierr.CodePrecondition, "load configuration", err)
			}

			store, err := ledger.Open(cfg.Paths.LedgerPath)
			if err != nil {
				return clierr.Wrap(clierr.CodePrecondition, "open run ledger", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.TexPath,
					strconv.Itoa(run.CommitCount),
					strconv.Itoa(run.FramesSaved),
					runResult(run),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"RUN", "STARTED", "DOCUMENT", "COMMITS", "FRAMES", "RESULT"}, rows, 4, 5))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runResult(run ledger.Run) string {
	switch {
	case run.FinishedAt == nil:
		return "in progress"
	case run.Error != "":
		return run.Error
	default:
		return "ok"
	}
}
