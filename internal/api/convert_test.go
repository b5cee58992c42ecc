package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reach/internal/api"
	"reach/internal/persist"
	"reach/internal/selection"
	"reach/internal/testsupport"
)

func TestFromSnapshotDerivesFlags(t *testing.T) {
	state := selection.Empty()
	state.Level1s = []string{"retail"}
	state.Level2s = []string{"gift_cards"}
	state.Level3s = []string{"voucher"}
	state.Count = 5
	state.LastUpdated = time.Date(2026, 4, 2, 9, 30, 0, 123456789, time.UTC)

	got := api.FromSnapshot(persist.Snapshot{State: state, HasSelections: true}, 500, "resolved")
	if got.Level1 != "retail" || !got.CapacityTooLow || !got.HasSelections || got.IsEmpty {
		t.Fatalf("unexpected selection: %#v", got)
	}
	if got.LastUpdated != "2026-04-02T09:30:00.123Z" {
		t.Fatalf("lastUpdated = %q", got.LastUpdated)
	}

	empty := api.FromSnapshot(persist.Snapshot{State: selection.Empty(), IsEmpty: true}, 500, "")
	if empty.CapacityTooLow || empty.LastUpdated != "" || empty.Level2s == nil {
		t.Fatalf("unexpected empty selection: %#v", empty)
	}
}

func TestCatalogCachesEncodings(t *testing.T) {
	catalog, err := api.NewCatalog(testsupport.RetailTree(t), 0)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	first, err := catalog.SubCategories("retail")
	if err != nil {
		t.Fatalf("SubCategories: %v", err)
	}
	second, err := catalog.SubCategories("retail")
	if err != nil {
		t.Fatalf("SubCategories: %v", err)
	}
	if string(first) != string(second) || catalog.Len() != 1 {
		t.Fatalf("expected one cached encoding, len=%d", catalog.Len())
	}

	var list api.OptionList
	if err := json.Unmarshal(first, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := api.OptionList{
		Level:  api.LevelSubCategories,
		Parent: []string{"retail"},
		Options: []api.Option{
			{Value: "apparel", Label: "apparel"},
			{Value: "grocery", Label: "grocery"},
			{Value: "outlet", Label: "outlet"},
			{Value: "gift_cards", Label: "gift cards"},
		},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("option list mismatch (-want +got):\n%s", diff)
	}

	leaves, err := catalog.Leaves("travel", "air_travel")
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}
	if err := json.Unmarshal(leaves, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Options) != 2 || list.Options[0].Label != "business class" {
		t.Fatalf("unexpected leaves: %#v", list.Options)
	}

	missing, err := catalog.Leaves("retail", "nope")
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}
	if err := json.Unmarshal(missing, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Options == nil || len(list.Options) != 0 {
		t.Fatalf("expected empty option list, got %#v", list.Options)
	}
}
