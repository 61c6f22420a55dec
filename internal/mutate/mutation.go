package mutate

import (
	"context"

	"numis-cli/internal/api"
	"numis-cli/internal/querycache"
)

// Mutation wraps one remote state-changing call with an optimistic local
// cache edit.
type Mutation struct {
	// Key addresses the cache entry the optimistic edit targets.
	Key querycache.Key

	// Optimistic returns the speculative replacement for the current cached
	// value. It must treat old as immutable and return a new value
	// (copy-on-write), so the pre-edit snapshot stays exact. It is skipped
	// when the key is not cached (nothing to edit; the refetch after
	// invalidation will pick up the server truth).
	Optimistic func(old any) any

	// Call performs the remote write.
	Call func(ctx context.Context) error

	// Invalidates lists additional keys marked stale on success. Key itself
	// and the registered dependents of every listed key are always included.
	Invalidates []querycache.Key

	// Success, when non-empty, is the success notification text. Leave it
	// empty when the caller raises its own success notice (e.g. an undo push).
	Success string

	// OnSuccess runs after invalidation, before control returns. Used to
	// record undo actions.
	OnSuccess func()
}

// Run executes m with the snapshot/rollback discipline, strictly ordered:
// snapshot, optimistic edit, remote call, then invalidate on success or
// restore on failure. Failures are converted into an error notice carrying
// the best available message and are returned only for exit codes and tests;
// callers must not propagate them into view code.
//
// Concurrent Runs against the same key are not coordinated. A second
// optimistic edit can land on top of an unconfirmed first; if the first then
// rolls back, the second edit's basis is gone. Known and accepted; see
// DESIGN.md.
func Run(ctx context.Context, cache *querycache.Cache, n Notifier, m Mutation) error {
	snap := cache.Snapshot(m.Key)
	if v, ok := snap.Value(); ok && m.Optimistic != nil {
		cache.Set(m.Key, m.Optimistic(v))
	}

	if err := m.Call(ctx); err != nil {
		snap.Restore()
		n.Notify(Notice{Level: LevelError, Text: api.BestMessage(err)})
		return err
	}

	cache.Invalidate(append([]querycache.Key{m.Key}, m.Invalidates...)...)
	if m.Success != "" {
		n.Notify(Notice{Level: LevelInfo, Text: m.Success})
	}
	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	return nil
}
