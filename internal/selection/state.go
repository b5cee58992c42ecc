package selection

import (
	"encoding/json"
	"slices"
	"time"
)

// Metadata holds display snapshots keyed by "<sub-category>" and
// "<sub-category>.<leaf>". Values are kept as raw JSON so they round-trip
// through the store unchanged.
type Metadata map[string]json.RawMessage

// LeafSnapshot is the metadata entry captured for each counted leaf.
type LeafSnapshot struct {
	Tags              []string `json:"tags"`
	AvailableAudience int64    `json:"available_audience"`
}

// LeafKey builds the metadata key for a leaf under a sub-category.
func LeafKey(subCategory, leaf string) string {
	return subCategory + "." + leaf
}

// Leaf decodes the snapshot stored for subCategory.leaf.
func (m Metadata) Leaf(subCategory, leaf string) (LeafSnapshot, bool) {
	raw, ok := m[LeafKey(subCategory, leaf)]
	if !ok {
		return LeafSnapshot{}, false
	}
	var snap LeafSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return LeafSnapshot{}, false
	}
	return snap, true
}

// State is the operator's current selection plus derived aggregates.
type State struct {
	CampaignTitle string    `json:"campaignTitle"`
	Level1s       []string  `json:"level1s"`
	Level2s       []string  `json:"level2s"`
	Level3s       []string  `json:"level3s"`
	Metadata      Metadata  `json:"metadata"`
	Tags          []string  `json:"tags"`
	Count         int64     `json:"count"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Empty returns a state with nothing selected.
func Empty() State {
	return State{
		Level1s:  []string{},
		Level2s:  []string{},
		Level3s:  []string{},
		Metadata: Metadata{},
		Tags:     []string{},
	}
}

// Category is the active level-1 key, or "" when none is set.
func (s State) Category() string {
	if len(s.Level1s) == 0 {
		return ""
	}
	return s.Level1s[0]
}

// HasSelections reports whether a category and at least one leaf are set.
func (s State) HasSelections() bool {
	return len(s.Level1s) > 0 && len(s.Level3s) > 0
}

// IsEmpty reports whether nothing is selected at any level.
func (s State) IsEmpty() bool {
	return len(s.Level1s) == 0 && len(s.Level2s) == 0 && len(s.Level3s) == 0
}

// Clone deep-copies s, replacing nil collections with empty ones.
func (s State) Clone() State {
	out := s
	out.Level1s = cloneStrings(s.Level1s)
	out.Level2s = cloneStrings(s.Level2s)
	out.Level3s = cloneStrings(s.Level3s)
	out.Tags = cloneStrings(s.Tags)
	out.Metadata = make(Metadata, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = slices.Clone(v)
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return slices.Clone(values)
}

func contains(values []string, v string) bool {
	return slices.Contains(values, v)
}

func without(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, item := range values {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}
