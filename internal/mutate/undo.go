package mutate

import (
	"context"
	"errors"
	"sync"
	"time"

	"numis-cli/internal/api"
	"numis-cli/internal/model"

	"github.com/google/uuid"
)

// maxUndoDepth bounds each tab's history. Pushing a 4th action silently
// drops the oldest, which then becomes permanently unrecoverable.
const maxUndoDepth = 3

var ErrNothingToUndo = errors.New("nothing to undo")

type ActionKind string

const (
	KindApprove ActionKind = "approve"
	KindReject  ActionKind = "reject"
)

// UndoAction records one completed (already applied server-side) action.
type UndoAction struct {
	ID      string
	Kind    ActionKind
	ItemIDs []int64
	Tab     model.ReviewTab
	At      time.Time

	// Summary is the human-readable description used in notices
	// ("Approved 3 vocabulary items").
	Summary string

	// Compensate reverses the action with a full remote call (reject to undo
	// an approve), not a local revert.
	Compensate func(ctx context.Context) error
}

// UndoStacks holds one bounded most-recent-first stack per review tab.
type UndoStacks struct {
	mu       sync.Mutex
	stacks   map[model.ReviewTab][]UndoAction
	notifier Notifier
}

func NewUndoStacks(n Notifier) *UndoStacks {
	return &UndoStacks{
		stacks:   map[model.ReviewTab][]UndoAction{},
		notifier: n,
	}
}

// Push prepends a completed action to its tab's stack, trims overflow from
// the tail, and raises the success notice with the undo affordance.
func (s *UndoStacks) Push(a UndoAction) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now()
	}

	s.mu.Lock()
	stack := append([]UndoAction{a}, s.stacks[a.Tab]...)
	if len(stack) > maxUndoDepth {
		stack = stack[:maxUndoDepth]
	}
	s.stacks[a.Tab] = stack
	s.mu.Unlock()

	s.notifier.Notify(Notice{Level: LevelInfo, Text: a.Summary, Undoable: true, Tab: a.Tab})
}

// UndoLast pops the newest action for tab and invokes its compensating call.
// An empty stack produces exactly one "nothing to undo" notice and no remote
// call. A failed compensating call is notified but the entry stays popped:
// undo is one-shot, never retried, never re-undoable.
func (s *UndoStacks) UndoLast(ctx context.Context, tab model.ReviewTab) error {
	s.mu.Lock()
	stack := s.stacks[tab]
	if len(stack) == 0 {
		s.mu.Unlock()
		s.notifier.Notify(Notice{Level: LevelError, Text: "Nothing to undo in " + tab.Label()})
		return ErrNothingToUndo
	}
	a := stack[0]
	s.stacks[tab] = stack[1:]
	s.mu.Unlock()

	if err := a.Compensate(ctx); err != nil {
		s.notifier.Notify(Notice{Level: LevelError, Text: "Undo failed: " + api.BestMessage(err)})
		return err
	}
	s.notifier.Notify(Notice{Level: LevelInfo, Text: "Undid: " + a.Summary})
	return nil
}

// Clear drops all recorded actions for one tab (tab unmount).
func (s *UndoStacks) Clear(tab model.ReviewTab) {
	s.mu.Lock()
	delete(s.stacks, tab)
	s.mu.Unlock()
}

// ClearAll drops every tab's history (application exit).
func (s *UndoStacks) ClearAll() {
	s.mu.Lock()
	s.stacks = map[model.ReviewTab][]UndoAction{}
	s.mu.Unlock()
}

// Depth reports how many actions are recorded for tab.
func (s *UndoStacks) Depth(tab model.ReviewTab) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stacks[tab])
}

// Peek returns the newest recorded action for tab without consuming it.
func (s *UndoStacks) Peek(tab model.ReviewTab) (UndoAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := s.stacks[tab]
	if len(stack) == 0 {
		return UndoAction{}, false
	}
	return stack[0], true
}
