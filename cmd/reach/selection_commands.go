package main

import (
	"strings"

	"github.com/spf13/cobra"

	"reach/internal/api"
	"reach/internal/console"
	"reach/internal/persist"
	"reach/internal/selection"
)

// mutationCommand runs op against the controller under the writer lock and
// prints the resulting selection.
func mutationCommand(ctx *commandContext, use, short string, args cobra.PositionalArgs, op func(*selection.Controller, []string)) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withController(cmd.Context(), func(con *console.Console, ctrl *selection.Controller) error {
				op(ctrl, args)
				sel := controllerView(con, ctrl)
				if jsonOut {
					return writeJSON(cmd, sel)
				}
				renderSelection(newReport(cmd.OutOrStdout()), sel)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

func controllerView(con *console.Console, ctrl *selection.Controller) api.Selection {
	out := ctrl.Outcome()
	snap := persist.Snapshot{
		State:         out.State,
		HasSelections: out.State.HasSelections(),
		IsEmpty:       out.State.IsEmpty(),
	}
	return api.FromSnapshot(snap, con.Config().Selection.LowCapacityThreshold, ctrl.Phase().String())
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return mutationCommand(ctx, "select <category>", "Choose the active category (clears lower levels)", cobra.MaximumNArgs(1),
		func(ctrl *selection.Controller, args []string) {
			value := ""
			if len(args) == 1 {
				value = args[0]
			}
			ctrl.SetCategory(value)
		})
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Add or remove a sub-category or leaf",
	}
	cmd.AddCommand(mutationCommand(ctx, "sub <sub-category>", "Toggle a sub-category of the active category", cobra.ExactArgs(1),
		func(ctrl *selection.Controller, args []string) { ctrl.ToggleSubCategory(args[0]) }))
	cmd.AddCommand(mutationCommand(ctx, "leaf <leaf>", "Toggle a leaf segment", cobra.ExactArgs(1),
		func(ctrl *selection.Controller, args []string) { ctrl.ToggleLeaf(args[0]) }))
	return cmd
}

func newTitleCommand(ctx *commandContext) *cobra.Command {
	return mutationCommand(ctx, "title <campaign title>", "Set the campaign title", cobra.MinimumNArgs(1),
		func(ctrl *selection.Controller, args []string) { ctrl.SetCampaignTitle(strings.Join(args, " ")) })
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return mutationCommand(ctx, "clear", "Abandon the current selection", cobra.NoArgs,
		func(ctrl *selection.Controller, _ []string) { ctrl.Reset() })
}
