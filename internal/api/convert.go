package api

import (
	"slices"

	"reach/internal/persist"
	"reach/internal/selection"
	"reach/internal/taxonomy"
)

// FromSnapshot converts a store snapshot. threshold is the low-capacity
// boundary in effect; phase may be empty for observers without a controller.
func FromSnapshot(snap persist.Snapshot, threshold int64, phase string) Selection {
	state := snap.State.Clone()
	out := Selection{
		CampaignTitle:  state.CampaignTitle,
		Level1:         state.Category(),
		Level2s:        state.Level2s,
		Level3s:        state.Level3s,
		Tags:           state.Tags,
		Count:          state.Count,
		Metadata:       state.Metadata,
		HasSelections:  snap.HasSelections,
		IsEmpty:        snap.IsEmpty,
		CapacityTooLow: selection.CapacityTooLow(state.Count, threshold),
		Phase:          phase,
	}
	if !state.LastUpdated.IsZero() {
		out.LastUpdated = state.LastUpdated.UTC().Format(dateTimeFormat)
	}
	return out
}

// FromOptions converts taxonomy options.
func FromOptions(level string, parent []string, options []taxonomy.Option) OptionList {
	out := OptionList{Level: level, Parent: slices.Clone(parent), Options: make([]Option, 0, len(options))}
	for _, opt := range options {
		out.Options = append(out.Options, Option{Value: opt.Value, Label: opt.Label})
	}
	return out
}
