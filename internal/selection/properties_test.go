package selection_test

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"reach/internal/selection"
	"reach/internal/taxonomy"
)

var (
	leafPool = []string{"a", "b", "c", "d", "e", "f"}
	tagPool  = []string{"red", "green", "blue", "cyan"}
)

// randomTree builds one category with a few sub-categories drawing leaf names
// from a small shared pool, so leaves often live under several parents.
func randomTree(rng *rand.Rand) *taxonomy.Tree {
	cat := taxonomy.Category{Name: "root"}
	for i := range 2 + rng.IntN(4) {
		sub := taxonomy.SubCategory{Name: fmt.Sprintf("sub%d", i)}
		for _, idx := range rng.Perm(len(leafPool))[:1+rng.IntN(3)] {
			var tags []string
			for _, t := range rng.Perm(len(tagPool))[:rng.IntN(3)] {
				tags = append(tags, tagPool[t])
			}
			sub.Items = append(sub.Items, taxonomy.Leaf{
				Name:              leafPool[idx],
				Tags:              tags,
				AvailableAudience: rng.Int64N(1000),
			})
		}
		cat.SubCategories = append(cat.SubCategories, sub)
	}
	return &taxonomy.Tree{Categories: []taxonomy.Category{cat}}
}

func pick(rng *rand.Rand, from []string) []string {
	var out []string
	for _, v := range from {
		if rng.IntN(2) == 0 {
			out = append(out, v)
		}
	}
	return out
}

func reversedCopy(values []string) []string {
	out := slices.Clone(values)
	slices.Reverse(out)
	return out
}

func subNames(tree *taxonomy.Tree) []string {
	var out []string
	for _, sub := range tree.Categories[0].SubCategories {
		out = append(out, sub.Name)
	}
	return out
}

func TestAggregateMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 300 {
		tree := randomTree(rng)
		level2s := pick(rng, subNames(tree))
		level3s := pick(rng, leafPool)

		var want int64
		wantTags := map[string]struct{}{}
		for _, sub := range tree.Categories[0].SubCategories {
			if !slices.Contains(level2s, sub.Name) {
				continue
			}
			for _, leaf := range sub.Items {
				if slices.Contains(level3s, leaf.Name) {
					want += leaf.AvailableAudience
					for _, tag := range leaf.Tags {
						wantTags[tag] = struct{}{}
					}
				}
			}
		}

		res := selection.Aggregate(tree, "root", level2s, level3s)
		if res.Capacity != want {
			t.Fatalf("case %d: capacity = %d, want %d (level2s=%v level3s=%v)", i, res.Capacity, want, level2s, level3s)
		}
		gotTags := map[string]struct{}{}
		for _, tag := range res.Tags {
			if _, dup := gotTags[tag]; dup {
				t.Fatalf("case %d: tag %q repeated in %v", i, tag, res.Tags)
			}
			gotTags[tag] = struct{}{}
		}
		if diff := cmp.Diff(wantTags, gotTags, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("case %d: tag union mismatch (-want +got):\n%s", i, diff)
		}

		// Order of the inputs does not change the tag set or the count.
		reversed := selection.Aggregate(tree, "root", reversedCopy(level2s), reversedCopy(level3s))
		if reversed.Capacity != res.Capacity {
			t.Fatalf("case %d: capacity depends on order", i)
		}
	}
}

func TestPruneOrphansKeepsOnlyReachableLeaves(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := range 300 {
		tree := randomTree(rng)
		subs := subNames(tree)
		level2s := pick(rng, subs)
		if len(level2s) == 0 {
			continue
		}
		removed := level2s[rng.IntN(len(level2s))]
		remaining := slices.DeleteFunc(slices.Clone(level2s), func(s string) bool { return s == removed })
		level3s := pick(rng, leafPool)

		got := selection.PruneOrphans(tree, "root", removed, remaining, level3s)
		for _, leaf := range level3s {
			underRemoved := taxonomy.HasLeaf(tree, "root", removed, leaf)
			stillReached := false
			for _, sub := range remaining {
				if taxonomy.HasLeaf(tree, "root", sub, leaf) {
					stillReached = true
				}
			}
			kept := slices.Contains(got, leaf)
			if underRemoved && !stillReached && kept {
				t.Fatalf("case %d: orphan %q survived removal of %s", i, leaf, removed)
			}
			if (!underRemoved || stillReached) && !kept {
				t.Fatalf("case %d: leaf %q dropped though it was not orphaned", i, leaf)
			}
		}
	}
}

func TestAggregateSaturatesCapacity(t *testing.T) {
	tree := &taxonomy.Tree{Categories: []taxonomy.Category{{
		Name: "root",
		SubCategories: []taxonomy.SubCategory{{
			Name: "huge",
			Items: []taxonomy.Leaf{
				{Name: "all", AvailableAudience: math.MaxInt64},
				{Name: "few", AvailableAudience: 10},
			},
		}},
	}}}

	res := selection.Aggregate(tree, "root", []string{"huge"}, []string{"all", "few"})
	if res.Capacity != math.MaxInt64 {
		t.Fatalf("capacity = %d, want saturation at MaxInt64", res.Capacity)
	}
	if selection.CapacityTooLow(res.Capacity, selection.DefaultLowCapacityThreshold) {
		t.Fatal("saturated capacity must not be flagged as too low")
	}
}
