package selection

import (
	"slices"

	"reach/internal/taxonomy"
)

// Resolve adds the sole leaf of every selected sub-category that has exactly
// one leaf. The rule is applied until level3s stops changing; each pass adds
// its whole batch at once. Resolve never removes a leaf. The returned bool is
// false when level3s was already settled, in which case level3s is returned
// as given.
func Resolve(tree *taxonomy.Tree, category string, level2s, level3s []string) ([]string, bool) {
	current := level3s
	changed := false
	for {
		next := soleLeafPass(tree, category, level2s, current)
		if sameSet(next, current) {
			return current, changed
		}
		current = next
		changed = true
	}
}

func soleLeafPass(tree *taxonomy.Tree, category string, level2s, level3s []string) []string {
	var additions []string
	for _, sub := range level2s {
		leaves := taxonomy.ListLeaves(tree, category, sub)
		if len(leaves) != 1 {
			continue
		}
		leaf := leaves[0]
		if contains(level3s, leaf) || contains(additions, leaf) {
			continue
		}
		additions = append(additions, leaf)
	}
	if len(additions) == 0 {
		return level3s
	}
	next := make([]string, 0, len(level3s)+len(additions))
	next = append(next, level3s...)
	return append(next, additions...)
}

// PruneOrphans drops every leaf of removed that is no longer a leaf of any
// sub-category in remaining. Leaves of other parents are left alone.
func PruneOrphans(tree *taxonomy.Tree, category, removed string, remaining, level3s []string) []string {
	out := make([]string, 0, len(level3s))
	for _, leaf := range level3s {
		if taxonomy.HasLeaf(tree, category, removed, leaf) && !reachable(tree, category, remaining, leaf) {
			continue
		}
		out = append(out, leaf)
	}
	return out
}

func reachable(tree *taxonomy.Tree, category string, level2s []string, leaf string) bool {
	for _, sub := range level2s {
		if taxonomy.HasLeaf(tree, category, sub, leaf) {
			return true
		}
	}
	return false
}

// Reconcile fits a restored state to tree. It keeps only the first category,
// and drops it when tree does not know it. It drops sub-categories outside
// that category, leaves no kept sub-category reaches, and repeated entries.
// Aggregates are left for the caller to recompute. The bool reports whether
// anything was dropped.
func Reconcile(tree *taxonomy.Tree, state State) (State, bool) {
	out := state.Clone()

	level1s := []string{}
	category := out.Category()
	if category != "" && taxonomy.HasCategory(tree, category) {
		level1s = append(level1s, category)
	} else {
		category = ""
	}

	level2s := make([]string, 0, len(out.Level2s))
	if category != "" {
		for _, sub := range out.Level2s {
			if !contains(level2s, sub) && taxonomy.HasSubCategory(tree, category, sub) {
				level2s = append(level2s, sub)
			}
		}
	}

	level3s := make([]string, 0, len(out.Level3s))
	for _, leaf := range out.Level3s {
		if !contains(level3s, leaf) && reachable(tree, category, level2s, leaf) {
			level3s = append(level3s, leaf)
		}
	}

	changed := !slices.Equal(out.Level1s, level1s) ||
		!slices.Equal(out.Level2s, level2s) ||
		!slices.Equal(out.Level3s, level3s)
	out.Level1s, out.Level2s, out.Level3s = level1s, level2s, level3s
	return out, changed
}
