package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reach/internal/api"
	"reach/internal/console"
	"reach/internal/persist"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the selection whenever any process changes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(cmd.Context(), func(con *console.Console) error {
				threshold := con.Config().Selection.LowCapacityThreshold
				changes := make(chan persist.Snapshot, 16)
				unsubscribe := con.Store().Subscribe(func(snap persist.Snapshot) {
					select {
					case changes <- snap:
					default:
					}
				})
				defer unsubscribe()

				emit := func(snap persist.Snapshot) error {
					sel := api.FromSnapshot(snap, threshold, "")
					if jsonOut {
						return writeJSONLine(cmd, sel)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s category=%s leaves=%d capacity=%s low=%s\n",
						orDash(sel.LastUpdated), orDash(sel.Level1), len(sel.Level3s), formatCount(sel.Count), yesNo(sel.CapacityTooLow))
					return nil
				}

				if err := emit(con.Store().Current()); err != nil {
					return err
				}
				for {
					select {
					case <-cmd.Context().Done():
						return nil
					case snap := <-changes:
						if err := emit(snap); err != nil {
							return err
						}
					}
				}
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit one JSON document per change")
	return cmd
}
