package selection

import (
	"encoding/json"
	"math"

	"reach/internal/taxonomy"
)

// DefaultLowCapacityThreshold is the audience size below which a non-empty
// selection is flagged as too small.
const DefaultLowCapacityThreshold int64 = 500

// Result is the aggregate over the counted leaves of a selection.
type Result struct {
	Capacity int64
	Tags     []string
	Metadata Metadata
}

// Aggregate counts every (sub-category, leaf) pair where the sub-category is
// in level2s and the leaf is both in level3s and a child of that
// sub-category. Leaves not reachable from a selected sub-category contribute
// nothing.
func Aggregate(tree *taxonomy.Tree, category string, level2s, level3s []string) Result {
	res := Result{Tags: []string{}, Metadata: Metadata{}}
	seenSubs := make(map[string]struct{}, len(level2s))
	var tags []string
	for _, sub := range level2s {
		if _, ok := seenSubs[sub]; ok {
			continue
		}
		seenSubs[sub] = struct{}{}

		if bag := taxonomy.SubCategoryMetadata(tree, category, sub); bag != nil {
			if raw, err := json.Marshal(bag); err == nil {
				res.Metadata[sub] = raw
			}
		}
		for _, leaf := range taxonomy.ListLeaves(tree, category, sub) {
			if !contains(level3s, leaf) {
				continue
			}
			leafTags := taxonomy.LeafTags(tree, category, sub, leaf)
			audience := taxonomy.AvailableAudience(tree, category, sub, leaf)
			res.Capacity = addCapacity(res.Capacity, audience)
			tags = append(tags, leafTags...)
			if raw, err := json.Marshal(LeafSnapshot{Tags: leafTags, AvailableAudience: audience}); err == nil {
				res.Metadata[LeafKey(sub, leaf)] = raw
			}
		}
	}
	res.Tags = taxonomy.Dedup(tags)
	return res
}

// addCapacity sums non-negative audiences, saturating at math.MaxInt64.
func addCapacity(total, audience int64) int64 {
	if audience <= 0 {
		return total
	}
	if total > math.MaxInt64-audience {
		return math.MaxInt64
	}
	return total + audience
}

// CapacityTooLow reports a selection that reaches someone but fewer than
// threshold people. Zero capacity means nothing is counted, which is a
// different condition.
func CapacityTooLow(capacity, threshold int64) bool {
	return capacity > 0 && capacity < threshold
}
