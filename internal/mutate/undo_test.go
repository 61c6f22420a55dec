package mutate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"numis-cli/internal/model"
)

func TestPushBoundsStackAtThree(t *testing.T) {
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	for i := 1; i <= 4; i++ {
		s.Push(UndoAction{
			Kind:       KindApprove,
			ItemIDs:    []int64{int64(i)},
			Tab:        model.TabVocabulary,
			Summary:    fmt.Sprintf("Approved item %d", i),
			Compensate: func(context.Context) error { return nil },
		})
		if d := s.Depth(model.TabVocabulary); d > 3 {
			t.Fatalf("stack depth must never exceed 3, got %d", d)
		}
	}

	if d := s.Depth(model.TabVocabulary); d != 3 {
		t.Fatalf("expected depth 3 after 4 pushes, got %d", d)
	}
	// Newest first: item 4 on top; item 1 evicted for good.
	top, ok := s.Peek(model.TabVocabulary)
	if !ok || top.ItemIDs[0] != 4 {
		t.Fatalf("expected newest action on top, got %+v", top)
	}

	// Drain the stack: item 1 must never reappear.
	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		a, _ := s.Peek(model.TabVocabulary)
		seen[a.ItemIDs[0]] = true
		if err := s.UndoLast(context.Background(), model.TabVocabulary); err != nil {
			t.Fatalf("UndoLast: %v", err)
		}
	}
	if seen[1] {
		t.Fatalf("evicted action resurfaced")
	}
}

func TestStacksAreIndependentPerTab(t *testing.T) {
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	s.Push(UndoAction{Kind: KindApprove, Tab: model.TabVocabulary, ItemIDs: []int64{1},
		Compensate: func(context.Context) error { return nil }})
	s.Push(UndoAction{Kind: KindReject, Tab: model.TabAI, ItemIDs: []int64{2},
		Compensate: func(context.Context) error { return nil }})

	if s.Depth(model.TabVocabulary) != 1 || s.Depth(model.TabAI) != 1 {
		t.Fatalf("expected one action per tab")
	}
	s.Clear(model.TabAI)
	if s.Depth(model.TabAI) != 0 {
		t.Fatalf("Clear must empty the tab's stack")
	}
	if s.Depth(model.TabVocabulary) != 1 {
		t.Fatalf("Clear must not touch other tabs")
	}
}

func TestUndoApproveInvokesRejectOnce(t *testing.T) {
	// Approve vocabulary item 42, undo it: reject(42) runs exactly once and
	// the stack empties.
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	rejects := 0
	s.Push(UndoAction{
		Kind:    KindApprove,
		ItemIDs: []int64{42},
		Tab:     model.TabVocabulary,
		Summary: "Approved 1 vocabulary item",
		Compensate: func(context.Context) error {
			rejects++
			return nil
		},
	})

	if err := s.UndoLast(context.Background(), model.TabVocabulary); err != nil {
		t.Fatalf("UndoLast: %v", err)
	}
	if rejects != 1 {
		t.Fatalf("expected exactly one compensating reject call, got %d", rejects)
	}
	if s.Depth(model.TabVocabulary) != 0 {
		t.Fatalf("expected empty stack after undo, got depth %d", s.Depth(model.TabVocabulary))
	}
}

func TestUndoLastEmptyStack(t *testing.T) {
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	err := s.UndoLast(context.Background(), model.TabImages)
	if !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if len(nl.notices) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(nl.notices))
	}
	if nl.notices[0].Level != LevelError {
		t.Fatalf("expected an error-level notice, got %+v", nl.notices[0])
	}
}

func TestUndoIsOneShotEvenOnFailure(t *testing.T) {
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	s.Push(UndoAction{
		Kind:    KindReject,
		ItemIDs: []int64{7},
		Tab:     model.TabData,
		Summary: "Rejected 1 data item",
		Compensate: func(context.Context) error {
			return errors.New("network down")
		},
	})

	err := s.UndoLast(context.Background(), model.TabData)
	if err == nil {
		t.Fatalf("expected compensating failure surfaced")
	}
	// The popped entry is gone for good: a second undo finds nothing.
	if s.Depth(model.TabData) != 0 {
		t.Fatalf("failed undo must not restore the popped entry")
	}
	if err := s.UndoLast(context.Background(), model.TabData); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo after one-shot undo, got %v", err)
	}
}

func TestPushRaisesUndoableNotice(t *testing.T) {
	nl := &noticeLog{}
	s := NewUndoStacks(nl)

	s.Push(UndoAction{
		Kind:       KindApprove,
		ItemIDs:    []int64{42},
		Tab:        model.TabVocabulary,
		Summary:    "Approved 1 vocabulary item",
		Compensate: func(context.Context) error { return nil },
	})

	if len(nl.notices) != 1 {
		t.Fatalf("expected exactly one notice from push, got %d", len(nl.notices))
	}
	n := nl.notices[0]
	if !n.Undoable || n.Tab != model.TabVocabulary || n.Level != LevelInfo {
		t.Fatalf("expected undoable info notice for vocabulary, got %+v", n)
	}
}
