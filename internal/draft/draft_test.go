package draft_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reach/internal/draft"
	"reach/internal/persist"
	"reach/internal/selection"
	"reach/internal/testsupport"
)

func TestBridgeForwardsOwnedFields(t *testing.T) {
	var patches []draft.Patch
	bridge := draft.NewBridge(func(p draft.Patch) { patches = append(patches, p) })
	ctrl := selection.NewController(testsupport.NewRecordingStore(), testsupport.RetailTree(t),
		selection.WithListener(bridge.Listener()),
	)

	ctrl.SetCategory("retail")
	ctrl.ToggleSubCategory("gift_cards")
	ctrl.SetCampaignTitle("Holiday cards")

	if len(patches) != 3 {
		t.Fatalf("patches = %d, want 3", len(patches))
	}
	want := draft.Patch{
		CampaignTitle:  "Holiday cards",
		Level1:         "retail",
		Level2s:        []string{"gift_cards"},
		Level3s:        []string{"voucher"},
		Tags:           []string{"digital"},
		Capacity:       5,
		CapacityTooLow: true,
	}
	if diff := cmp.Diff(want, patches[2]); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}

	first := patches[0]
	if first.Capacity != 0 || first.CapacityTooLow || first.Level2s == nil {
		t.Fatalf("unexpected category patch: %#v", first)
	}
}

func TestApplyPreservesForeignFields(t *testing.T) {
	doc := draft.Document{"budget": 1200.0, "level1": "stale", "schedule": map[string]any{"start": "2026-05-01"}}
	doc.Apply(draft.Patch{Level1: "travel", Level2s: []string{"rail"}, Capacity: 2000})

	if doc["budget"] != 1200.0 {
		t.Fatalf("budget changed: %#v", doc["budget"])
	}
	if _, ok := doc["schedule"]; !ok {
		t.Fatal("schedule removed")
	}
	if doc[draft.FieldLevel1] != "travel" || doc[draft.FieldCapacity] != int64(2000) {
		t.Fatalf("owned fields not written: %#v", doc)
	}
	if len(doc) != 9 {
		t.Fatalf("expected 2 foreign + 7 owned keys, got %d", len(doc))
	}
}

func TestBackendSinkMergesIntoStoredDraft(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemorySpace().Context()
	if err := backend.Set(ctx, "campaign_draft", `{"budget":50,"tags":["old"]}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	sink := draft.BackendSink(backend, "campaign_draft", nil)
	sink(draft.Patch{Level1: "retail", Tags: []string{"perishable"}, Capacity: 10000})

	doc, err := draft.LoadDocument(ctx, backend, "campaign_draft")
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc["budget"] != 50.0 {
		t.Fatalf("budget = %#v", doc["budget"])
	}
	if diff := cmp.Diff([]any{"perishable"}, doc[draft.FieldTags]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if doc[draft.FieldCapacity] != 10000.0 {
		t.Fatalf("capacity = %#v", doc[draft.FieldCapacity])
	}
}

func TestLoadDocumentMissingOrCorrupt(t *testing.T) {
	ctx := context.Background()
	backend := persist.NewMemorySpace().Context()

	doc, err := draft.LoadDocument(ctx, backend, "campaign_draft")
	if err != nil || len(doc) != 0 {
		t.Fatalf("missing draft: doc=%#v err=%v", doc, err)
	}
	if err := backend.Set(ctx, "campaign_draft", "[1,2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	doc, err = draft.LoadDocument(ctx, backend, "campaign_draft")
	if err != nil || len(doc) != 0 {
		t.Fatalf("corrupt draft: doc=%#v err=%v", doc, err)
	}
}
