package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"texlapse/internal/clierr"
	"texlapse/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of required external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return clierr.Wrap(clierr.CodePrecondition, "load configuration", err)
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "missing"
				if status.Available {
					state = "ok"
				} else if status.Optional {
					state = "missing (optional)"
				}
				detail := status.Description
				if status.Detail != "" {
					detail = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"TOOL", "COMMAND", "STATUS", "DETAIL"}, rows))

			if err := deps.Verify(cfg); err != nil {
				return clierr.Wrap(clierr.CodePrecondition, "dependency check", err)
			}
			return nil
		},
	}
}
