package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dumpcheck/internal/tools"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report availability of the external tools dumpcheck invokes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensureSetup()
			if err != nil {
				return err
			}

			statuses := tools.Check([]tools.Requirement{
				{Name: "chdman", Command: cfg.Tools.Chdman, Description: "Extracts CHD dumps"},
				{Name: "binmerge", Command: cfg.Tools.Binmerge, Description: "Splits combined track binaries"},
				{Name: "DolphinTool", Command: cfg.Tools.DolphinTool, Description: "Hashes RVZ payloads", Optional: true},
			})

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = status.Detail
					if !status.Optional {
						missingRequired = true
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state})
			}
			fmt.Println(renderTable([]string{"Tool", "Command", "Status"}, rows))

			if missingRequired {
				return fmt.Errorf("required external tools are missing")
			}
			return nil
		},
	}
}
