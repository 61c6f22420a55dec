package mutate

import (
	"context"
	"errors"
	"testing"
	"time"

	"numis-cli/internal/model"
	"numis-cli/internal/querycache"
)

type noticeLog struct {
	notices []Notice
}

func (l *noticeLog) Notify(n Notice) { l.notices = append(l.notices, n) }

func newTestCache() *querycache.Cache { return querycache.New(time.Minute) }

func TestRunSuccessInvalidatesAndNotifiesOnce(t *testing.T) {
	c := newTestCache()
	key := querycache.ReviewKey(model.TabVocabulary)
	c.Set(key, []model.ReviewItem{{ID: 1}, {ID: 2}})
	c.Set(querycache.CountsKey, model.ReviewCounts{Vocabulary: 2})

	nl := &noticeLog{}
	called := false
	err := Run(context.Background(), c, nl, Mutation{
		Key: key,
		Optimistic: func(old any) any {
			items := old.([]model.ReviewItem)
			out := make([]model.ReviewItem, 0, len(items))
			for _, it := range items {
				if it.ID != 1 {
					out = append(out, it)
				}
			}
			return out
		},
		Call:        func(context.Context) error { called = true; return nil },
		Invalidates: []querycache.Key{querycache.CountsKey},
		Success:     "Approved",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called {
		t.Fatalf("remote call not issued")
	}
	// Success invalidates both the primary key and the listed dependents.
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected primary key invalidated after success")
	}
	if _, ok := c.Get(querycache.CountsKey); ok {
		t.Fatalf("expected counts key invalidated after success")
	}
	if len(nl.notices) != 1 || nl.notices[0].Level != LevelInfo {
		t.Fatalf("expected exactly one info notice, got %+v", nl.notices)
	}
}

func TestRunFailureRollsBackExactly(t *testing.T) {
	c := newTestCache()
	key := querycache.ReviewKey(model.TabAI)
	before := []model.ReviewItem{{ID: 10, Confidence: 0.9}, {ID: 11, Confidence: 0.4}}
	c.Set(key, before)

	nl := &noticeLog{}
	boom := errors.New("no route to host")
	err := Run(context.Background(), c, nl, Mutation{
		Key: key,
		Optimistic: func(old any) any {
			return []model.ReviewItem{{ID: 11, Confidence: 0.4}}
		},
		Call: func(context.Context) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected remote error returned, got %v", err)
	}

	v, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected key restored after rollback")
	}
	got := v.([]model.ReviewItem)
	if len(got) != 2 || got[0].ID != 10 || got[1].ID != 11 {
		t.Fatalf("rollback must restore the exact pre-mutation value, got %+v", got)
	}
	if len(nl.notices) != 1 || nl.notices[0].Level != LevelError {
		t.Fatalf("expected exactly one error notice, got %+v", nl.notices)
	}
	if nl.notices[0].Text != "no route to host" {
		t.Fatalf("error notice should carry the transport message, got %q", nl.notices[0].Text)
	}
}

func TestRunOptimisticSkippedWhenKeyAbsent(t *testing.T) {
	c := newTestCache()
	nl := &noticeLog{}
	edited := false
	err := Run(context.Background(), c, nl, Mutation{
		Key:        querycache.CoinKey(3),
		Optimistic: func(old any) any { edited = true; return old },
		Call:       func(context.Context) error { return nil },
		Success:    "ok",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if edited {
		t.Fatalf("optimistic edit must be skipped for an uncached key")
	}
}

func TestRunFailureOnAbsentKeyLeavesNoResidue(t *testing.T) {
	c := newTestCache()
	key := querycache.ProvenanceKey(17)

	nl := &noticeLog{}
	_ = Run(context.Background(), c, nl, Mutation{
		Key:  key,
		Call: func(context.Context) error { return errors.New("500") },
	})
	if _, ok := c.Get(key); ok {
		t.Fatalf("failed mutation on an absent key must leave it absent")
	}
}

func TestRunSuccessWithoutTextPushesNoNotice(t *testing.T) {
	// Review actions raise their notice via the undo push instead; Run must
	// not double-notify.
	c := newTestCache()
	nl := &noticeLog{}
	ran := false
	err := Run(context.Background(), c, nl, Mutation{
		Key:       querycache.ReviewKey(model.TabData),
		Call:      func(context.Context) error { return nil },
		OnSuccess: func() { ran = true },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Fatalf("OnSuccess not invoked")
	}
	if len(nl.notices) != 0 {
		t.Fatalf("expected no notices from Run itself, got %+v", nl.notices)
	}
}
