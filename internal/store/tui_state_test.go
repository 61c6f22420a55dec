package store

import (
	"context"
	"testing"
)

func TestTUIStateRoundTrip(t *testing.T) {
	db := StateDB{Dir: t.TempDir()}
	ctx := context.Background()

	in := &TUIState{
		View:          "review",
		ReviewTab:     "vocabulary",
		Sort:          "confidence:desc",
		OpenCoinID:    42,
		RecentCoinIDs: []int{42, 17},
	}
	if err := db.SaveTUIState(ctx, in); err != nil {
		t.Fatal(err)
	}

	out, err := db.LoadTUIState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Version != 1 {
		t.Fatalf("Version = %d, want 1", out.Version)
	}
	if out.View != "review" || out.ReviewTab != "vocabulary" || out.OpenCoinID != 42 {
		t.Fatalf("round trip lost fields: %+v", out)
	}
	if len(out.RecentCoinIDs) != 2 || out.RecentCoinIDs[0] != 42 {
		t.Fatalf("RecentCoinIDs = %v", out.RecentCoinIDs)
	}
}

func TestTUIStateMissingIsEmpty(t *testing.T) {
	db := StateDB{Dir: t.TempDir()}

	st, err := db.LoadTUIState(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Version != 1 || st.View != "" {
		t.Fatalf("expected fresh state, got %+v", st)
	}
}

func TestTUIStateOverwrite(t *testing.T) {
	db := StateDB{Dir: t.TempDir()}
	ctx := context.Background()

	if err := db.SaveTUIState(ctx, &TUIState{View: "coins"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveTUIState(ctx, &TUIState{View: "jobs"}); err != nil {
		t.Fatal(err)
	}

	st, err := db.LoadTUIState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.View != "jobs" {
		t.Fatalf("View = %q, want jobs", st.View)
	}
}
