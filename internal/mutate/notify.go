package mutate

import "numis-cli/internal/model"

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is one transient user-facing notification. Every mutation outcome
// (success or failure) produces exactly one Notice; failures never offer a
// retry affordance.
type Notice struct {
	Level Level
	Text  string

	// Undoable marks notices that should surface an "undo" control bound to
	// the named tab's stack.
	Undoable bool
	Tab      model.ReviewTab
}

// Notifier is the sink for notices. The TUI renders them on its flash line;
// the CLI prints them.
type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
