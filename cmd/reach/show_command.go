package main

import (
	"strings"

	"github.com/spf13/cobra"

	"reach/internal/api"
	"reach/internal/console"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the persisted selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(cmd.Context(), func(con *console.Console) error {
				sel := api.FromSnapshot(con.Store().Current(), con.Config().Selection.LowCapacityThreshold, "")
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

func renderSelection(r *report, sel api.Selection) {
	r.section("Selection")
	r.field("Campaign", orDash(sel.CampaignTitle))
	r.field("Category", orDash(sel.Level1))
	r.field("Sub-categories", orDash(strings.Join(sel.Level2s, ", ")))
	r.field("Leaves", orDash(strings.Join(sel.Level3s, ", ")))
	r.field("Tags", orDash(strings.Join(sel.Tags, ", ")))
	if sel.Phase != "" {
		r.field("Phase", sel.Phase)
	}
	if sel.LastUpdated != "" {
		r.field("Last updated", sel.LastUpdated)
	}

	switch {
	case sel.Count == 0:
		r.status("Capacity", statusInfo, "nothing counted yet")
	case sel.CapacityTooLow:
		r.status("Capacity", statusWarn, formatCount(sel.Count)+" (below threshold)")
	default:
		r.status("Capacity", statusOK, formatCount(sel.Count))
	}
	r.field("Ready to submit", yesNo(sel.HasSelections))
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
