package review

import (
	"sort"

	"numis-cli/internal/model"
)

type SortField string

const (
	SortByConfidence SortField = "confidence"
	SortByField      SortField = "field"
	SortByID         SortField = "id"
)

type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort shows the most confident suggestions first.
var DefaultSort = Sort{Field: SortByConfidence, Desc: true}

// Cycle steps through the sort states in a fixed order so a single key can
// rotate them: confidence desc, confidence asc, field asc, field desc,
// id asc, id desc, then back around.
func (s Sort) Cycle() Sort {
	switch {
	case s.Field == SortByConfidence && s.Desc:
		return Sort{Field: SortByConfidence}
	case s.Field == SortByConfidence:
		return Sort{Field: SortByField}
	case s.Field == SortByField && !s.Desc:
		return Sort{Field: SortByField, Desc: true}
	case s.Field == SortByField:
		return Sort{Field: SortByID}
	case s.Field == SortByID && !s.Desc:
		return Sort{Field: SortByID, Desc: true}
	default:
		return Sort{Field: SortByConfidence, Desc: true}
	}
}

func (s Sort) Label() string {
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return string(s.Field) + " " + dir
}

// SortItems orders items in place, stably, by the given sort.
func SortItems(items []model.ReviewItem, s Sort) {
	less := func(a, b model.ReviewItem) bool {
		switch s.Field {
		case SortByConfidence:
			if a.Confidence != b.Confidence {
				return a.Confidence < b.Confidence
			}
		case SortByField:
			if a.Field != b.Field {
				return a.Field < b.Field
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(items, func(i, j int) bool {
		if s.Desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// Selection is the multi-select set for one review tab, keyed by item id.
type Selection struct {
	ids map[int64]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: map[int64]struct{}{}}
}

func (s *Selection) Toggle(id int64) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Selected(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) SelectAll(items []model.ReviewItem) {
	for _, it := range items {
		s.ids[it.ID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.ids = map[int64]struct{}{}
}

func (s *Selection) Count() int { return len(s.ids) }

// Items filters items down to the selected ones, preserving order.
func (s *Selection) Items(items []model.ReviewItem) []model.ReviewItem {
	var out []model.ReviewItem
	for _, it := range items {
		if s.Selected(it.ID) {
			out = append(out, it)
		}
	}
	return out
}
