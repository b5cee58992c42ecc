package api

import (
	"encoding/json"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"reach/internal/taxonomy"
)

// Option list levels.
const (
	LevelCategories    = "categories"
	LevelSubCategories = "subcategories"
	LevelLeaves        = "leaves"
)

const defaultCatalogSize = 512

// Catalog serves encoded option lists for one taxonomy tree. Encodings are
// cached; the tree is immutable once loaded, so entries never go stale.
type Catalog struct {
	tree  *taxonomy.Tree
	cache *lru.Cache[string, []byte]
}

// NewCatalog returns a catalog over tree. size <= 0 uses the default.
func NewCatalog(tree *taxonomy.Tree, size int) (*Catalog, error) {
	if size <= 0 {
		size = defaultCatalogSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create option cache: %w", err)
	}
	return &Catalog{tree: tree, cache: cache}, nil
}

// Tree returns the tree the catalog serves.
func (c *Catalog) Tree() *taxonomy.Tree { return c.tree }

// Categories returns the encoded level-1 option list.
func (c *Catalog) Categories() ([]byte, error) {
	return c.encoded(LevelCategories, nil, func() []taxonomy.Option {
		return taxonomy.ListCategories(c.tree)
	})
}

// SubCategories returns the encoded level-2 options under category.
func (c *Catalog) SubCategories(category string) ([]byte, error) {
	return c.encoded(LevelSubCategories, []string{category}, func() []taxonomy.Option {
		return taxonomy.SubCategoryOptions(c.tree, category)
	})
}

// Leaves returns the encoded level-3 options under category/sub.
func (c *Catalog) Leaves(category, sub string) ([]byte, error) {
	return c.encoded(LevelLeaves, []string{category, sub}, func() []taxonomy.Option {
		return taxonomy.LeafOptions(c.tree, category, sub)
	})
}

// Len reports how many encodings are cached.
func (c *Catalog) Len() int { return c.cache.Len() }

func (c *Catalog) encoded(level string, parent []string, list func() []taxonomy.Option) ([]byte, error) {
	key := level + "\x00" + strings.Join(parent, "\x00")
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}
	data, err := json.Marshal(FromOptions(level, parent, list()))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", level, err)
	}
	c.cache.Add(key, data)
	return data, nil
}
