package taxonomy

// Leaf is a terminal selectable audience segment.
type Leaf struct {
	Name              string
	Tags              []string
	AvailableAudience int64
}

// SubCategory groups leaves beneath a category.
type SubCategory struct {
	Name     string
	Metadata map[string]any
	Items    []Leaf
}

// Category is a top-level audience grouping.
type Category struct {
	Name          string
	SubCategories []SubCategory
}

// Tree is the full three-level taxonomy in source order.
type Tree struct {
	Categories []Category
}

func (t *Tree) category(name string) *Category {
	if t == nil {
		return nil
	}
	for i := range t.Categories {
		if t.Categories[i].Name == name {
			return &t.Categories[i]
		}
	}
	return nil
}

func (t *Tree) subCategory(category, sub string) *SubCategory {
	c := t.category(category)
	if c == nil {
		return nil
	}
	for i := range c.SubCategories {
		if c.SubCategories[i].Name == sub {
			return &c.SubCategories[i]
		}
	}
	return nil
}

func (t *Tree) leaf(category, sub, leaf string) *Leaf {
	s := t.subCategory(category, sub)
	if s == nil {
		return nil
	}
	for i := range s.Items {
		if s.Items[i].Name == leaf {
			return &s.Items[i]
		}
	}
	return nil
}
