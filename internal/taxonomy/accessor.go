package taxonomy

import "strings"

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Label derives the display label for a taxonomy key.
func Label(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

// Value reverses Label.
func Value(label string) string {
	return strings.ReplaceAll(label, " ", "_")
}

// ListCategories returns every level-1 key in source order.
func ListCategories(tree *Tree) []Option {
	if tree == nil {
		return []Option{}
	}
	out := make([]Option, 0, len(tree.Categories))
	for _, c := range tree.Categories {
		out = append(out, Option{Value: c.Name, Label: Label(c.Name)})
	}
	return out
}

// ListSubCategories returns the level-2 keys under category.
func ListSubCategories(tree *Tree, category string) []string {
	c := tree.category(category)
	if c == nil {
		return []string{}
	}
	out := make([]string, 0, len(c.SubCategories))
	for _, s := range c.SubCategories {
		out = append(out, s.Name)
	}
	return out
}

// ListLeaves returns the level-3 keys under the category/sub-category pair.
func ListLeaves(tree *Tree, category, subCategory string) []string {
	s := tree.subCategory(category, subCategory)
	if s == nil {
		return []string{}
	}
	out := make([]string, 0, len(s.Items))
	for _, leaf := range s.Items {
		out = append(out, leaf.Name)
	}
	return out
}

// SubCategoryOptions is ListSubCategories with labels attached.
func SubCategoryOptions(tree *Tree, category string) []Option {
	return options(ListSubCategories(tree, category))
}

// LeafOptions is ListLeaves with labels attached.
func LeafOptions(tree *Tree, category, subCategory string) []Option {
	return options(ListLeaves(tree, category, subCategory))
}

// SubCategoryMetadata returns the sub-category's metadata bag, or nil.
func SubCategoryMetadata(tree *Tree, category, subCategory string) map[string]any {
	s := tree.subCategory(category, subCategory)
	if s == nil || len(s.Metadata) == 0 {
		return nil
	}
	return s.Metadata
}

// LeafTags returns the leaf's tags without duplicates, first occurrence first.
func LeafTags(tree *Tree, category, subCategory, leaf string) []string {
	l := tree.leaf(category, subCategory, leaf)
	if l == nil {
		return []string{}
	}
	return Dedup(l.Tags)
}

// AvailableAudience returns the leaf's reachable-audience count; absent leaves count 0.
func AvailableAudience(tree *Tree, category, subCategory, leaf string) int64 {
	l := tree.leaf(category, subCategory, leaf)
	if l == nil || l.AvailableAudience < 0 {
		return 0
	}
	return l.AvailableAudience
}

// HasCategory reports whether category is a level-1 key.
func HasCategory(tree *Tree, category string) bool {
	return tree.category(category) != nil
}

// HasSubCategory reports whether sub is a level-2 key under category.
func HasSubCategory(tree *Tree, category, sub string) bool {
	return tree.subCategory(category, sub) != nil
}

// HasLeaf reports whether leaf sits under the category/sub-category pair.
func HasLeaf(tree *Tree, category, sub, leaf string) bool {
	return tree.leaf(category, sub, leaf) != nil
}

// Dedup drops repeated values, keeping first occurrences in order.
func Dedup(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func options(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: Label(v)})
	}
	return out
}
