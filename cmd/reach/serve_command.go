package main

import (
	"github.com/spf13/cobra"

	"reach/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var development bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console API and own the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{Development: development})
		},
	}
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in logs")
	return cmd
}
