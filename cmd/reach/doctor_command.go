package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reach/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check paths, taxonomy, writer lock, and the console server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			r := newReport(cmd.OutOrStdout())

			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results, preflight.CheckWriterLock(cfg.WriterLockPath()))
			server := preflight.CheckServer(cmd.Context(), cfg.API.Bind)

			r.section("Checks")
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				r.status(result.Name, kind, result.Detail)
			}
			serverKind := statusOK
			if !server.Passed {
				serverKind = statusWarn
			}
			r.status(server.Name, serverKind, server.Detail)

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}
