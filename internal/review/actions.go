package review

import (
	"context"
	"fmt"
	"sync"

	"numis-cli/internal/api"
	"numis-cli/internal/model"
	"numis-cli/internal/mutate"
	"numis-cli/internal/querycache"
)

// Service is the remote surface the review queues drive. *api.Client
// satisfies it; tests substitute a fake.
type Service interface {
	ListReview(ctx context.Context, tab model.ReviewTab) ([]model.ReviewItem, error)
	ApproveItem(ctx context.Context, tab model.ReviewTab, id int64) error
	RejectItem(ctx context.Context, tab model.ReviewTab, id int64) error
	BulkResolveDiscrepancies(ctx context.Context, coinID int64, ids []int64, resolution string) error
}

// Actions composes the optimistic mutation protocol and the undo stacks for
// the review queues. One instance is shared by the TUI and CLI paths.
type Actions struct {
	remote   Service
	cache    *querycache.Cache
	notifier mutate.Notifier
	undo     *mutate.UndoStacks
}

func NewActions(remote Service, cache *querycache.Cache, notifier mutate.Notifier, undo *mutate.UndoStacks) *Actions {
	return &Actions{remote: remote, cache: cache, notifier: notifier, undo: undo}
}

func (a *Actions) Undo() *mutate.UndoStacks { return a.undo }

// Load returns the pending queue for tab, from cache when fresh.
func (a *Actions) Load(ctx context.Context, tab model.ReviewTab) ([]model.ReviewItem, error) {
	v, err := a.cache.GetOr(ctx, querycache.ReviewKey(tab), func(ctx context.Context) (any, error) {
		return a.remote.ListReview(ctx, tab)
	})
	if err != nil {
		return nil, err
	}
	items, _ := v.([]model.ReviewItem)
	return items, nil
}

func (a *Actions) Approve(ctx context.Context, item model.ReviewItem) error {
	return a.act(ctx, mutate.KindApprove, item)
}

func (a *Actions) Reject(ctx context.Context, item model.ReviewItem) error {
	return a.act(ctx, mutate.KindReject, item)
}

func (a *Actions) act(ctx context.Context, kind mutate.ActionKind, item model.ReviewItem) error {
	tab := item.Tab
	call, compKind := a.remote.ApproveItem, mutate.KindReject
	if kind == mutate.KindReject {
		call, compKind = a.remote.RejectItem, mutate.KindApprove
	}

	return mutate.Run(ctx, a.cache, a.notifier, mutate.Mutation{
		Key: querycache.ReviewKey(tab),
		Optimistic: func(old any) any {
			return withoutIDs(old, item.ID)
		},
		Call: func(ctx context.Context) error {
			return call(ctx, tab, item.ID)
		},
		Invalidates: a.staleKeys(item.CoinID),
		OnSuccess: func() {
			a.undo.Push(mutate.UndoAction{
				Kind:       kind,
				ItemIDs:    []int64{item.ID},
				Tab:        tab,
				Summary:    summary(kind, tab, 1),
				Compensate: a.compensator(compKind, tab, []int64{item.ID}),
			})
		},
	})
}

// BulkApprove fans out one remote call per item (completion order
// unspecified) and joins the results. On full success it clears down to a
// single aggregate notice with an aggregate undo; failures roll the queue
// back and raise one aggregate error notice.
func (a *Actions) BulkApprove(ctx context.Context, tab model.ReviewTab, items []model.ReviewItem) error {
	return a.bulk(ctx, mutate.KindApprove, tab, items)
}

func (a *Actions) BulkReject(ctx context.Context, tab model.ReviewTab, items []model.ReviewItem) error {
	return a.bulk(ctx, mutate.KindReject, tab, items)
}

func (a *Actions) bulk(ctx context.Context, kind mutate.ActionKind, tab model.ReviewTab, items []model.ReviewItem) error {
	if len(items) == 0 {
		return nil
	}
	if tab == model.TabData {
		return a.bulkResolve(ctx, kind, items)
	}

	key := querycache.ReviewKey(tab)
	ids := itemIDs(items)

	snap := a.cache.Snapshot(key)
	if v, ok := snap.Value(); ok {
		a.cache.Set(key, withoutIDs(v, ids...))
	}

	call := a.remote.ApproveItem
	compKind := mutate.KindReject
	if kind == mutate.KindReject {
		call = a.remote.RejectItem
		compKind = mutate.KindApprove
	}

	errs := make([]error, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = call(ctx, tab, id)
		}(i, it.ID)
	}
	wg.Wait()

	var firstErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if failed > 0 {
		snap.Restore()
		if failed < len(items) {
			// Some calls landed server-side; drop the restored entry so the
			// next read refetches the reconciled truth.
			a.cache.Invalidate(key, querycache.CountsKey)
		}
		a.notifier.Notify(mutate.Notice{
			Level: mutate.LevelError,
			Text:  fmt.Sprintf("%d of %d failed: %s", failed, len(items), api.BestMessage(firstErr)),
		})
		return firstErr
	}

	a.cache.Invalidate(append([]querycache.Key{key}, a.staleKeys(coinIDs(items)...)...)...)
	a.undo.Push(mutate.UndoAction{
		Kind:       kind,
		ItemIDs:    ids,
		Tab:        tab,
		Summary:    summary(kind, tab, len(items)),
		Compensate: a.compensator(compKind, tab, ids),
	})
	return nil
}

// bulkResolve handles the data (discrepancy) tab, which has a dedicated
// bulk endpoint: one call per affected coin instead of one per item.
func (a *Actions) bulkResolve(ctx context.Context, kind mutate.ActionKind, items []model.ReviewItem) error {
	resolution, compResolution := api.ResolutionAccepted, api.ResolutionRejected
	if kind == mutate.KindReject {
		resolution, compResolution = api.ResolutionRejected, api.ResolutionAccepted
	}

	key := querycache.ReviewKey(model.TabData)
	ids := itemIDs(items)
	groups := groupByCoin(items)

	snap := a.cache.Snapshot(key)
	if v, ok := snap.Value(); ok {
		a.cache.Set(key, withoutIDs(v, ids...))
	}

	done := 0
	var firstErr error
	for coinID, groupIDs := range groups {
		if err := a.remote.BulkResolveDiscrepancies(ctx, coinID, groupIDs, resolution); err != nil {
			firstErr = err
			break
		}
		done += len(groupIDs)
	}

	if firstErr != nil {
		snap.Restore()
		if done > 0 {
			a.cache.Invalidate(key, querycache.CountsKey)
		}
		a.notifier.Notify(mutate.Notice{
			Level: mutate.LevelError,
			Text:  fmt.Sprintf("%d of %d failed: %s", len(ids)-done, len(ids), api.BestMessage(firstErr)),
		})
		return firstErr
	}

	a.cache.Invalidate(append([]querycache.Key{key}, a.staleKeys(coinIDs(items)...)...)...)
	a.undo.Push(mutate.UndoAction{
		Kind:    kind,
		ItemIDs: ids,
		Tab:     model.TabData,
		Summary: summary(kind, model.TabData, len(ids)),
		Compensate: func(ctx context.Context) error {
			for coinID, groupIDs := range groups {
				if err := a.remote.BulkResolveDiscrepancies(ctx, coinID, groupIDs, compResolution); err != nil {
					return err
				}
			}
			a.cache.Invalidate(key, querycache.CountsKey)
			return nil
		},
	})
	return nil
}

// compensator reverses earlier approvals/rejections with full remote calls,
// then drops the affected cache entries so the queue refetches.
func (a *Actions) compensator(kind mutate.ActionKind, tab model.ReviewTab, ids []int64) func(context.Context) error {
	call := a.remote.ApproveItem
	if kind == mutate.KindReject {
		call = a.remote.RejectItem
	}
	return func(ctx context.Context) error {
		for _, id := range ids {
			if err := call(ctx, tab, id); err != nil {
				return err
			}
		}
		a.cache.Invalidate(querycache.ReviewKey(tab), querycache.CountsKey)
		return nil
	}
}

func (a *Actions) staleKeys(coinIDs ...int64) []querycache.Key {
	keys := []querycache.Key{querycache.CountsKey}
	seen := map[int64]struct{}{}
	for _, id := range coinIDs {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, querycache.CoinKey(id))
	}
	return keys
}

func withoutIDs(old any, ids ...int64) any {
	items, ok := old.([]model.ReviewItem)
	if !ok {
		return old
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]model.ReviewItem, 0, len(items))
	for _, it := range items {
		if _, gone := drop[it.ID]; !gone {
			out = append(out, it)
		}
	}
	return out
}

func itemIDs(items []model.ReviewItem) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func coinIDs(items []model.ReviewItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.CoinID)
	}
	return ids
}

func groupByCoin(items []model.ReviewItem) map[int64][]int64 {
	groups := map[int64][]int64{}
	for _, it := range items {
		groups[it.CoinID] = append(groups[it.CoinID], it.ID)
	}
	return groups
}

func summary(kind mutate.ActionKind, tab model.ReviewTab, n int) string {
	verb := "Approved"
	if kind == mutate.KindReject {
		verb = "Rejected"
	}
	noun := "items"
	if n == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%s %d %s %s", verb, n, tab, noun)
}
