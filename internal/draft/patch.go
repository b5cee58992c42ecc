package draft

import (
	"slices"

	"reach/internal/selection"
)

// Field names written into the draft document.
const (
	FieldCampaignTitle  = "campaignTitle"
	FieldLevel1         = "level1"
	FieldLevel2s        = "level2s"
	FieldLevel3s        = "level3s"
	FieldTags           = "tags"
	FieldCapacity       = "capacity"
	FieldCapacityTooLow = "capacityTooLow"
)

// Patch is the normalized projection of a selection outcome.
type Patch struct {
	CampaignTitle  string   `json:"campaignTitle"`
	Level1         string   `json:"level1"`
	Level2s        []string `json:"level2s"`
	Level3s        []string `json:"level3s"`
	Tags           []string `json:"tags"`
	Capacity       int64    `json:"capacity"`
	CapacityTooLow bool     `json:"capacityTooLow"`
}

// FromOutcome projects out onto the draft fields.
func FromOutcome(out selection.Outcome) Patch {
	return Patch{
		CampaignTitle:  out.State.CampaignTitle,
		Level1:         out.State.Category(),
		Level2s:        cloneOrEmpty(out.State.Level2s),
		Level3s:        cloneOrEmpty(out.State.Level3s),
		Tags:           cloneOrEmpty(out.State.Tags),
		Capacity:       out.Capacity,
		CapacityTooLow: out.CapacityTooLow,
	}
}

func cloneOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}

// Document is an external draft. Only the Field* keys belong to the bridge.
type Document map[string]any

// Apply writes p into d, creating d if needed, and returns it.
func (d Document) Apply(p Patch) Document {
	if d == nil {
		d = Document{}
	}
	d[FieldCampaignTitle] = p.CampaignTitle
	d[FieldLevel1] = p.Level1
	d[FieldLevel2s] = cloneOrEmpty(p.Level2s)
	d[FieldLevel3s] = cloneOrEmpty(p.Level3s)
	d[FieldTags] = cloneOrEmpty(p.Tags)
	d[FieldCapacity] = p.Capacity
	d[FieldCapacityTooLow] = p.CapacityTooLow
	return d
}
