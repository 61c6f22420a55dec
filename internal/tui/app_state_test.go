package tui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"numis-cli/internal/api"
	"numis-cli/internal/model"
	"numis-cli/internal/mutate"
	"numis-cli/internal/querycache"
	"numis-cli/internal/store"

	"github.com/bitmark-inc/logger"
	tea "github.com/charmbracelet/bubbletea"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "numis-tui-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	logConfig := logger.Configuration{
		Directory: dir,
		File:      "tui-test.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logConfig); err != nil {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}
	os.Exit(m.Run())
}

type fakeRemote struct {
	mu       sync.Mutex
	queues   map[model.ReviewTab][]model.ReviewItem
	approves []int64
	rejects  []int64
}

func (f *fakeRemote) ListReview(ctx context.Context, tab model.ReviewTab) ([]model.ReviewItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ReviewItem(nil), f.queues[tab]...), nil
}

func (f *fakeRemote) ApproveItem(ctx context.Context, tab model.ReviewTab, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approves = append(f.approves, id)
	return nil
}

func (f *fakeRemote) RejectItem(ctx context.Context, tab model.ReviewTab, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejects = append(f.rejects, id)
	return nil
}

func (f *fakeRemote) BulkResolveDiscrepancies(ctx context.Context, coinID int64, ids []int64, resolution string) error {
	return nil
}

type fakeImporter struct{}

func (fakeImporter) StartScrapeJob(ctx context.Context, url string) (model.ScrapeJob, error) {
	return model.ScrapeJob{ID: "job-1", URL: url}, nil
}
func (fakeImporter) ListScrapeJobs(ctx context.Context) ([]model.ScrapeJob, error) {
	return nil, nil
}
func (fakeImporter) GetScrapeJob(ctx context.Context, id string) (model.ScrapeJob, error) {
	return model.ScrapeJob{ID: id}, nil
}
func (fakeImporter) ListLots(ctx context.Context, jobID string) ([]model.AuctionLot, error) {
	return nil, nil
}
func (fakeImporter) GetLot(ctx context.Context, jobID, lotNumber string) (model.AuctionLot, error) {
	return model.AuctionLot{}, nil
}
func (fakeImporter) ImportLots(ctx context.Context, jobID string, lotNumbers []string) (api.ImportResult, error) {
	return api.ImportResult{Imported: len(lotNumbers)}, nil
}

func newTestModel(t *testing.T, remote *fakeRemote) appModel {
	t.Helper()
	client := api.New("http://localhost:1", "")
	m := newAppModel(client, remote, fakeImporter{}, &store.Config{}, store.StateDB{Dir: t.TempDir()})

	// Size the lists so SelectedItem works.
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return mm.(appModel)
}

func loadItems(t *testing.T, m appModel, items []model.ReviewItem) appModel {
	t.Helper()
	mm, _ := m.Update(reviewLoadedMsg{tab: m.tab, items: items})
	return mm.(appModel)
}

func vocabItems() []model.ReviewItem {
	return []model.ReviewItem{
		{ID: 42, Tab: model.TabVocabulary, Field: "mint", SuggestedValue: "Lugdunum", Confidence: 0.91},
		{ID: 43, Tab: model.TabVocabulary, Field: "ruler", SuggestedValue: "Hadrian", Confidence: 0.75},
	}
}

func TestApproveKeyCallsRemoteOnce(t *testing.T) {
	remote := &fakeRemote{queues: map[model.ReviewTab][]model.ReviewItem{
		model.TabVocabulary: vocabItems(),
	}}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	mm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = mm.(appModel)
	if cmd == nil {
		t.Fatal("approve produced no command")
	}
	msg := cmd()
	if _, ok := msg.(actionDoneMsg); !ok {
		t.Fatalf("got %T, want actionDoneMsg", msg)
	}
	// Sorted confidence-desc, so the cursor starts on item 42.
	if len(remote.approves) != 1 || remote.approves[0] != 42 {
		t.Fatalf("approves = %v", remote.approves)
	}
	if got := m.undo.Depth(model.TabVocabulary); got != 1 {
		t.Fatalf("undo depth = %d, want 1", got)
	}
}

func TestUndoKeyCompensatesWithReject(t *testing.T) {
	remote := &fakeRemote{queues: map[model.ReviewTab][]model.ReviewItem{
		model.TabVocabulary: vocabItems(),
	}}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	cmd()

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	if cmd == nil {
		t.Fatal("undo produced no command")
	}
	cmd()
	if len(remote.rejects) != 1 || remote.rejects[0] != 42 {
		t.Fatalf("rejects = %v", remote.rejects)
	}
	if got := m.undo.Depth(model.TabVocabulary); got != 0 {
		t.Fatalf("undo depth = %d, want 0", got)
	}
}

func TestSwitchingTabsDropsTheirUndoHistory(t *testing.T) {
	remote := &fakeRemote{queues: map[model.ReviewTab][]model.ReviewItem{
		model.TabVocabulary: vocabItems(),
	}}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	cmd()
	if m.undo.Depth(model.TabVocabulary) != 1 {
		t.Fatal("expected one undoable action")
	}

	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	m = mm.(appModel)
	if m.tab != model.TabAI {
		t.Fatalf("tab = %s, want ai", m.tab)
	}
	if got := m.undo.Depth(model.TabVocabulary); got != 0 {
		t.Fatalf("vocabulary undo depth after leaving = %d, want 0", got)
	}
}

func TestLeavingReviewViewDropsUndoHistory(t *testing.T) {
	remote := &fakeRemote{queues: map[model.ReviewTab][]model.ReviewItem{
		model.TabVocabulary: vocabItems(),
	}}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	cmd()
	if m.undo.Depth(model.TabVocabulary) != 1 {
		t.Fatal("expected one undoable action")
	}

	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	m = mm.(appModel)
	if m.view != viewCoins {
		t.Fatalf("view = %v, want coins", m.view)
	}
	if got := m.undo.Depth(model.TabVocabulary); got != 0 {
		t.Fatalf("undo depth after leaving the review view = %d, want 0", got)
	}
}

func TestPollTickDropsCachedCounts(t *testing.T) {
	m := newTestModel(t, &fakeRemote{})
	m.cache.Set(querycache.CountsKey, model.ReviewCounts{Vocabulary: 2})

	mm, cmd := m.Update(pollTickMsg{})
	m = mm.(appModel)
	if cmd == nil {
		t.Fatal("poll tick produced no command")
	}
	// A still-fresh entry would turn the reload into a cache hit and the
	// badges would miss counts changing server side.
	if _, ok := m.cache.Get(querycache.CountsKey); ok {
		t.Fatal("counts entry still cached after a poll tick")
	}
}

func TestBulkWithoutSelectionFlashesError(t *testing.T) {
	remote := &fakeRemote{}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}})
	m = mm.(appModel)
	if m.flashText != "Nothing selected" || m.flashLevel != mutate.LevelError {
		t.Fatalf("flash = %q level %v", m.flashText, m.flashLevel)
	}
}

func TestSelectionToggleMarksRow(t *testing.T) {
	remote := &fakeRemote{}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = mm.(appModel)
	if !m.selection[model.TabVocabulary].Selected(42) {
		t.Fatal("cursor item not selected after space")
	}
	row, ok := m.reviewList.SelectedItem().(reviewRowItem)
	if !ok || !row.selected {
		t.Fatalf("row not marked selected: %+v", row)
	}
}

func TestSortSpecRoundTrip(t *testing.T) {
	for _, spec := range []string{"confidence", "confidence:desc", "field", "id:desc"} {
		s, err := parseSortSpec(spec)
		if err != nil {
			t.Fatalf("parseSortSpec(%q): %v", spec, err)
		}
		if got := sortSpec(s); got != spec {
			t.Fatalf("round trip %q -> %q", spec, got)
		}
	}
	if _, err := parseSortSpec("bogus"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestCollectionTermsDeduplicates(t *testing.T) {
	coins := []model.Coin{
		{Mint: "Rome", Ruler: "Hadrian", Denomination: "Denarius"},
		{Mint: "rome", Country: "Roman Empire"},
	}
	terms := collectionTerms(coins)
	want := []string{"Rome", "Hadrian", "Denarius", "Roman Empire"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v", terms)
	}
	for i, w := range want {
		if terms[i] != w {
			t.Fatalf("terms[%d] = %q, want %q", i, terms[i], w)
		}
	}
}

func TestAddProvenanceShowsPendingEntryUntilConfirmed(t *testing.T) {
	var pending []model.ProvenanceEntry
	var m appModel
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Snapshot the cached chain while the create call is in flight.
		if v, ok := m.cache.Get(querycache.CoinKey(7)); ok {
			pending = append([]model.ProvenanceEntry(nil), v.(model.Coin).Provenance...)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":9,"coin_id":7,"owner":"CNG 529","sort_order":2}`))
	}))
	defer srv.Close()

	m = newAppModel(api.New(srv.URL, ""), &fakeRemote{}, fakeImporter{}, &store.Config{}, store.StateDB{Dir: t.TempDir()})
	coin := model.Coin{
		ID:         7,
		Provenance: []model.ProvenanceEntry{{ID: 1, CoinID: 7, Owner: "BCD Collection", SortOrder: 1}},
	}
	m.cache.Set(querycache.CoinKey(coin.ID), coin)

	if msg := m.addProvenanceCmd(coin, "CNG 529", "lot 101")(); msg == nil {
		t.Fatal("add command produced no message")
	}

	if len(pending) != 2 {
		t.Fatalf("in-flight chain = %+v, want 2 entries", pending)
	}
	last := pending[1]
	if !last.Pending() || last.Owner != "CNG 529" || last.SortOrder != 2 {
		t.Fatalf("in-flight entry = %+v, want a pending CNG 529 at the chain tail", last)
	}
	// Confirmation drops the optimistic coin entry so the reload picks up
	// the server-assigned id.
	if _, ok := m.cache.Get(querycache.CoinKey(coin.ID)); ok {
		t.Fatal("coin entry still cached after the server confirmed")
	}
	select {
	case n := <-m.notices:
		if n.Level != mutate.LevelInfo {
			t.Fatalf("notice = %+v, want info level", n)
		}
	default:
		t.Fatal("no notice after a confirmed add")
	}
}

func TestAddProvenanceRevertsChainWhenServerUnreachable(t *testing.T) {
	m := newTestModel(t, &fakeRemote{})
	coin := model.Coin{
		ID:         7,
		Provenance: []model.ProvenanceEntry{{ID: 1, CoinID: 7, Owner: "BCD Collection", SortOrder: 1}},
	}
	m.cache.Set(querycache.CoinKey(coin.ID), coin)

	if msg := m.addProvenanceCmd(coin, "CNG 529", "lot 101")(); msg == nil {
		t.Fatal("add command produced no message")
	}

	v, ok := m.cache.Get(querycache.CoinKey(coin.ID))
	if !ok {
		t.Fatal("coin entry missing after rollback")
	}
	got := v.(model.Coin)
	if len(got.Provenance) != 1 || got.Provenance[0].ID != 1 {
		t.Fatalf("provenance after rollback = %+v", got.Provenance)
	}
	select {
	case n := <-m.notices:
		if n.Level != mutate.LevelError {
			t.Fatalf("notice = %+v, want error level", n)
		}
	default:
		t.Fatal("no error notice after failed add")
	}
}

func TestRestoreStateReopensLastCoin(t *testing.T) {
	dir := t.TempDir()
	client := api.New("http://localhost:1", "")
	m := newAppModel(client, &fakeRemote{}, fakeImporter{}, &store.Config{}, store.StateDB{Dir: dir})
	m.view = viewCoin
	m.openCoin = model.Coin{ID: 7}
	m.saveState()

	m2 := newAppModel(client, &fakeRemote{}, fakeImporter{}, &store.Config{}, store.StateDB{Dir: dir})
	if m2.view != viewCoins {
		t.Fatalf("restored view = %v, want coins", m2.view)
	}
	if m2.reopenCoinID != 7 {
		t.Fatalf("reopenCoinID = %d, want 7", m2.reopenCoinID)
	}
}

func TestDeleteProvenanceRollsBackWhenServerUnreachable(t *testing.T) {
	// The test model's client points at a closed port, so the delete call
	// fails and the optimistic removal must be undone exactly.
	m := newTestModel(t, &fakeRemote{})
	coin := model.Coin{
		ID:    7,
		Title: "Athens tetradrachm",
		Provenance: []model.ProvenanceEntry{
			{ID: 1, CoinID: 7, Owner: "BCD Collection", SortOrder: 1},
			{ID: 2, CoinID: 7, Owner: "CNG 529", SortOrder: 2},
		},
	}
	m.cache.Set(querycache.CoinKey(coin.ID), coin)
	m.view = viewCoin
	m.openCoin = coin

	mm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = mm.(appModel)
	if cmd == nil {
		t.Fatal("delete produced no command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("delete command produced no message")
	}

	v, ok := m.cache.Get(querycache.CoinKey(coin.ID))
	if !ok {
		t.Fatal("coin entry missing after rollback")
	}
	got := v.(model.Coin)
	if len(got.Provenance) != 2 {
		t.Fatalf("provenance after rollback = %+v", got.Provenance)
	}
	select {
	case n := <-m.notices:
		if n.Level != mutate.LevelError {
			t.Fatalf("notice = %+v, want error level", n)
		}
	default:
		t.Fatal("no error notice after failed delete")
	}
}

func TestStaleReviewLoadIgnored(t *testing.T) {
	remote := &fakeRemote{}
	m := newTestModel(t, remote)
	m = loadItems(t, m, vocabItems())

	mm, _ := m.Update(reviewLoadedMsg{tab: model.TabImages, items: nil})
	m = mm.(appModel)
	if len(m.items) != 2 {
		t.Fatalf("stale load replaced items: %v", m.items)
	}
}
