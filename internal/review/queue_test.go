package review

import (
	"testing"

	"numis-cli/internal/model"
)

func TestSortItems(t *testing.T) {
	items := func() []model.ReviewItem {
		return []model.ReviewItem{
			{ID: 3, Field: "grade", Confidence: 0.5},
			{ID: 1, Field: "mint", Confidence: 0.9},
			{ID: 2, Field: "grade", Confidence: 0.9},
		}
	}

	cases := []struct {
		name string
		sort Sort
		want []int64
	}{
		{"confidence desc", Sort{Field: SortByConfidence, Desc: true}, []int64{2, 1, 3}},
		{"confidence asc", Sort{Field: SortByConfidence}, []int64{3, 1, 2}},
		{"field asc", Sort{Field: SortByField}, []int64{2, 3, 1}},
		{"id desc", Sort{Field: SortByID, Desc: true}, []int64{3, 2, 1}},
	}
	for _, tc := range cases {
		got := items()
		SortItems(got, tc.sort)
		for i, want := range tc.want {
			if got[i].ID != want {
				t.Fatalf("%s: expected order %v, got %+v", tc.name, tc.want, got)
			}
		}
	}
}

func TestSortCycleCoversAllStatesAndLoops(t *testing.T) {
	s := DefaultSort
	seen := map[string]bool{}
	for i := 0; i < 6; i++ {
		if seen[s.Label()] {
			t.Fatalf("cycle revisited %q before covering all states", s.Label())
		}
		seen[s.Label()] = true
		s = s.Cycle()
	}
	if s != DefaultSort {
		t.Fatalf("expected cycle to return to the default sort, got %+v", s)
	}
}

func TestSelection(t *testing.T) {
	sel := NewSelection()
	items := []model.ReviewItem{{ID: 1}, {ID: 2}, {ID: 3}}

	sel.Toggle(2)
	if !sel.Selected(2) || sel.Count() != 1 {
		t.Fatalf("expected only id 2 selected")
	}
	sel.Toggle(2)
	if sel.Selected(2) || sel.Count() != 0 {
		t.Fatalf("toggle must deselect")
	}

	sel.SelectAll(items)
	if sel.Count() != 3 {
		t.Fatalf("expected 3 selected, got %d", sel.Count())
	}
	got := sel.Items(items)
	if len(got) != 3 || got[0].ID != 1 || got[2].ID != 3 {
		t.Fatalf("Items must preserve order, got %+v", got)
	}

	sel.Clear()
	if sel.Count() != 0 {
		t.Fatalf("Clear must empty the selection")
	}
}

func TestCompileFilter(t *testing.T) {
	if f, err := CompileFilter("   "); err != nil || f != nil {
		t.Fatalf("blank filter must compile to nil, got %v %v", f, err)
	}
	if _, err := CompileFilter("confidence >"); err == nil {
		t.Fatalf("expected compile error for malformed filter")
	}
	if _, err := CompileFilter(`confidence + 1`); err == nil {
		t.Fatalf("expected compile error for non-boolean filter")
	}
}

func TestApplyFilter(t *testing.T) {
	items := []model.ReviewItem{
		{ID: 1, Field: "grade", Confidence: 0.95},
		{ID: 2, Field: "grade", Confidence: 0.40},
		{ID: 3, Field: "mint", Confidence: 0.99},
	}
	f, err := CompileFilter(`confidence > 0.8 && field == "grade"`)
	if err != nil {
		t.Fatalf("CompileFilter: %v", err)
	}
	got, err := ApplyFilter(items, f)
	if err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only item 1, got %+v", got)
	}

	all, err := ApplyFilter(items, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("nil filter must pass everything, got %v %v", all, err)
	}
}
