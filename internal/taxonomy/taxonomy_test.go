package taxonomy_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reach/internal/taxonomy"
)

func loadFixture(t *testing.T, name string) *taxonomy.Tree {
	t.Helper()
	tree, err := taxonomy.Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Load(%s): %v", name, err)
	}
	return tree
}

func TestAccessorsPreserveSourceOrder(t *testing.T) {
	tree := loadFixture(t, "retail.json")

	wantCategories := []taxonomy.Option{
		{Value: "retail", Label: "retail"},
		{Value: "travel", Label: "travel"},
	}
	if diff := cmp.Diff(wantCategories, taxonomy.ListCategories(tree)); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"apparel", "grocery"}, taxonomy.ListSubCategories(tree, "retail")); diff != "" {
		t.Fatalf("sub-categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"shoes", "hats"}, taxonomy.ListLeaves(tree, "retail", "apparel")); diff != "" {
		t.Fatalf("leaves mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"seasonal", "accessory"}, taxonomy.LeafTags(tree, "retail", "apparel", "hats")); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if got := taxonomy.AvailableAudience(tree, "travel", "air_travel", "economy"); got != 0 {
		t.Fatalf("expected missing available_audience to read as 0, got %d", got)
	}
	meta := taxonomy.SubCategoryMetadata(tree, "retail", "apparel")
	if diff := cmp.Diff(map[string]any{"icon": "shirt", "priority": int64(2)}, meta); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if taxonomy.SubCategoryMetadata(tree, "retail", "grocery") != nil {
		t.Fatal("expected nil metadata for sub-category without a bag")
	}
}

func TestYAMLMatchesJSON(t *testing.T) {
	fromJSON := loadFixture(t, "retail.json")
	fromYAML := loadFixture(t, "retail.yaml")
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("yaml and json trees differ (-json +yaml):\n%s", diff)
	}
}

func TestAccessorsDegradeOnAbsentInput(t *testing.T) {
	tree := loadFixture(t, "retail.json")
	cases := []struct {
		name string
		got  int
	}{
		{"nil categories", len(taxonomy.ListCategories(nil))},
		{"nil sub-categories", len(taxonomy.ListSubCategories(nil, "retail"))},
		{"unknown category", len(taxonomy.ListSubCategories(tree, "finance"))},
		{"unknown sub-category", len(taxonomy.ListLeaves(tree, "retail", "toys"))},
		{"unknown leaf tags", len(taxonomy.LeafTags(tree, "retail", "apparel", "socks"))},
		{"leaf under wrong category", len(taxonomy.LeafTags(tree, "travel", "apparel", "shoes"))},
	}
	for _, tc := range cases {
		if tc.got != 0 {
			t.Fatalf("%s: expected empty result, got %d entries", tc.name, tc.got)
		}
	}
	if taxonomy.ListCategories(nil) == nil {
		t.Fatal("expected empty, non-nil category list")
	}
	if taxonomy.SubCategoryMetadata(nil, "retail", "apparel") != nil {
		t.Fatal("expected nil metadata for nil tree")
	}
}

func TestMalformedNodesBecomeEmpty(t *testing.T) {
	doc := []byte(`{
		"retail": {
			"apparel": "not-an-object",
			"grocery": {"items": {"dairy": {"tags": ["perishable", 7], "available_audience": -40}}},
			"grocery": {"items": {}}
		},
		"broken": 12
	}`)
	tree, err := taxonomy.Parse(doc, taxonomy.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"apparel", "grocery"}, taxonomy.ListSubCategories(tree, "retail")); diff != "" {
		t.Fatalf("sub-categories mismatch (-want +got):\n%s", diff)
	}
	if leaves := taxonomy.ListLeaves(tree, "retail", "apparel"); len(leaves) != 0 {
		t.Fatalf("expected malformed sub-category to have no leaves, got %v", leaves)
	}
	if got := taxonomy.AvailableAudience(tree, "retail", "grocery", "dairy"); got != 0 {
		t.Fatalf("expected negative audience to clamp to 0, got %d", got)
	}
	if diff := cmp.Diff([]string{"perishable"}, taxonomy.LeafTags(tree, "retail", "grocery", "dairy")); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if len(taxonomy.ListSubCategories(tree, "broken")) != 0 {
		t.Fatal("expected scalar category to be empty")
	}
}

func TestParseRejectsBrokenDocuments(t *testing.T) {
	if _, err := taxonomy.Parse([]byte(`{"retail": `), taxonomy.FormatJSON); err == nil {
		t.Fatal("expected truncated json to fail")
	}
	if _, err := taxonomy.Parse([]byte(`{} {}`), taxonomy.FormatJSON); err == nil {
		t.Fatal("expected trailing data to fail")
	}
	if _, err := taxonomy.Parse([]byte(`{}`), "toml"); !errors.Is(err, taxonomy.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := taxonomy.Load("segments.csv"); !errors.Is(err, taxonomy.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for csv, got %v", err)
	}
}

func TestLabelIsReversible(t *testing.T) {
	for _, value := range []string{"air_travel", "business_class", "retail", "a__b"} {
		label := taxonomy.Label(value)
		if got := taxonomy.Value(label); got != value {
			t.Fatalf("Value(Label(%q)) = %q", value, got)
		}
	}
	if got := taxonomy.Label("air_travel"); got != "air travel" {
		t.Fatalf("unexpected label: %q", got)
	}
}

func TestSourceReportsReadyAndFailed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ready := taxonomy.NewFileSource(filepath.Join("testdata", "retail.json"))
	if status, _ := ready.Status(); status != taxonomy.StatusPending {
		t.Fatalf("expected pending before start, got %s", status)
	}
	notified := make(chan *taxonomy.Tree, 1)
	ready.OnReady(func(tree *taxonomy.Tree) { notified <- tree })
	ready.Start(ctx)
	ready.Start(ctx)

	tree, err := ready.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status, _ := ready.Status(); status != taxonomy.StatusReady {
		t.Fatalf("expected ready, got %s", status)
	}
	select {
	case got := <-notified:
		if got != tree {
			t.Fatal("OnReady received a different tree")
		}
	case <-ctx.Done():
		t.Fatal("OnReady listener never ran")
	}

	failed := taxonomy.NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	failed.Start(ctx)
	if _, err := failed.Wait(ctx); err == nil {
		t.Fatal("expected missing file to fail")
	}
	status, err := failed.Status()
	if status != taxonomy.StatusFailed || err == nil {
		t.Fatalf("expected failed status with error, got %s (%v)", status, err)
	}
	if failed.Tree() != nil {
		t.Fatal("expected nil tree after failure")
	}
}

func TestStaticSourceRunsListenersImmediately(t *testing.T) {
	src := taxonomy.Static(nil)
	called := false
	src.OnReady(func(tree *taxonomy.Tree) {
		called = tree != nil
	})
	if !called {
		t.Fatal("expected OnReady to run synchronously with an empty tree")
	}
}
