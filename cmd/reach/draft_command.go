package main

import (
	"github.com/spf13/cobra"

	"reach/internal/console"
)

func newDraftCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "draft",
		Short: "Print the stored campaign draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(cmd.Context(), func(con *console.Console) error {
				doc, err := con.Draft(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd, doc)
			})
		},
	}
}
