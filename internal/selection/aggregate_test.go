package selection_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"reach/internal/selection"
	"reach/internal/testsupport"
)

func TestAggregateCountsReachablePairsOnly(t *testing.T) {
	tree := testsupport.RetailTree(t)
	cases := []struct {
		name     string
		level2s  []string
		level3s  []string
		capacity int64
		tags     []string
	}{
		{name: "nothing", capacity: 0, tags: []string{}},
		{name: "leaf outside selected parents", level2s: []string{"grocery"}, level3s: []string{"dairy", "hats"}, capacity: 10000, tags: []string{"perishable"}},
		{name: "duplicate sub-category", level2s: []string{"apparel", "apparel"}, level3s: []string{"shoes"}, capacity: 300, tags: []string{"seasonal"}},
		{name: "shared leaf", level2s: []string{"outlet", "apparel"}, level3s: []string{"shoes"}, capacity: 340, tags: []string{"clearance", "seasonal"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := selection.Aggregate(tree, "retail", tc.level2s, tc.level3s)
			if res.Capacity != tc.capacity {
				t.Fatalf("capacity = %d, want %d", res.Capacity, tc.capacity)
			}
			if diff := cmp.Diff(tc.tags, res.Tags); diff != "" {
				t.Fatalf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateNilTree(t *testing.T) {
	res := selection.Aggregate(nil, "retail", []string{"apparel"}, []string{"shoes"})
	if res.Capacity != 0 || len(res.Tags) != 0 || len(res.Metadata) != 0 {
		t.Fatalf("expected empty result, got %#v", res)
	}
}

func TestCapacityTooLow(t *testing.T) {
	cases := []struct {
		capacity int64
		want     bool
	}{
		{0, false},
		{1, true},
		{499, true},
		{500, false},
		{10000, false},
	}
	for _, tc := range cases {
		if got := selection.CapacityTooLow(tc.capacity, selection.DefaultLowCapacityThreshold); got != tc.want {
			t.Fatalf("CapacityTooLow(%d) = %v, want %v", tc.capacity, got, tc.want)
		}
	}
}
