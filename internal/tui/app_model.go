package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"numis-cli/internal/api"
	"numis-cli/internal/model"
	"numis-cli/internal/mutate"
	"numis-cli/internal/querycache"
	"numis-cli/internal/review"
	"numis-cli/internal/scrape"
	"numis-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	client   *api.Client
	cache    *querycache.Cache
	actions  *review.Actions
	undo     *mutate.UndoStacks
	importer *scrape.Importer
	state    store.StateDB
	cfg      *store.Config

	// notices is fed by the actions layer; a long-lived tea.Cmd pumps it
	// back into Update as noticeMsg.
	notices chan mutate.Notice

	width  int
	height int

	// We treat the very first WindowSizeMsg as "initial sizing" rather than
	// a user-driven resize, so the resize overlay stays hidden on startup.
	seenWindowSize bool
	resizing       bool
	resizeSeq      int

	view       view
	returnView view

	tab    model.ReviewTab
	counts model.ReviewCounts
	sort   review.Sort
	filter *review.Filter

	reviewList list.Model
	coinsList  list.Model
	jobsList   list.Model
	lotsList   list.Model

	// items mirrors the review list's backing slice, post filter+sort.
	items     []model.ReviewItem
	selection map[model.ReviewTab]*review.Selection

	openCoin model.Coin
	provIdx  int
	// reopenCoinID is the coin detail restored from the previous session;
	// Init fetches it once.
	reopenCoinID  int64
	recentCoinIDs []int
	stats         model.CollectionStats
	openJobID     string
	lots          []model.AuctionLot

	// matcher spots collection vocabulary (mints, rulers, denominations)
	// in scraped lot text; rebuilt whenever a coins page loads.
	matcher *scrape.TermMatcher

	modal       modalKind
	input       textinput.Model
	secondInput textinput.Model
	inputFocus  int
	// editEntry is the provenance entry an open edit modal refers to.
	editEntry model.ProvenanceEntry

	flashText  string
	flashLevel mutate.Level
	flashUndo  bool
	flashSeq   int

	loading bool
}

const (
	maxContentW   = 96
	flashDuration = 4 * time.Second
	// fetchTimeout bounds every remote call issued from the update loop.
	fetchTimeout = 30 * time.Second
)

func newAppModel(client *api.Client, remote review.Service, importer scrape.Service, cfg *store.Config, state store.StateDB) appModel {
	cache := querycache.New(0)
	notices := make(chan mutate.Notice, 16)
	notifier := mutate.NotifierFunc(func(n mutate.Notice) {
		select {
		case notices <- n:
		default:
			// A stuck UI must not deadlock the mutation path.
		}
	})
	undo := mutate.NewUndoStacks(notifier)

	m := appModel{
		client:    client,
		cache:     cache,
		actions:   review.NewActions(remote, cache, notifier, undo),
		undo:      undo,
		importer:  scrape.NewImporter(importer, cache),
		state:     state,
		cfg:       cfg,
		notices:   notices,
		view:      viewReview,
		tab:       model.TabVocabulary,
		sort:      review.DefaultSort,
		selection: map[model.ReviewTab]*review.Selection{},
	}
	for _, t := range model.ReviewTabs {
		m.selection[t] = review.NewSelection()
	}

	m.reviewList = newList("Review")
	m.coinsList = newList("Coins")
	m.jobsList = newList("Jobs")
	m.lotsList = newList("Lots")

	m.input = textinput.New()
	m.secondInput = textinput.New()

	m.restoreState()
	return m
}

// restoreState reapplies the last session's screen, best effort.
func (m *appModel) restoreState() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := m.state.LoadTUIState(ctx)
	if err != nil {
		return
	}
	if tab, err := model.ParseReviewTab(st.ReviewTab); err == nil {
		m.tab = tab
	}
	if s, err := parseSortSpec(st.Sort); err == nil {
		m.sort = s
	}
	switch st.View {
	case "coins":
		m.view = viewCoins
		if st.OpenCoinID > 0 {
			m.reopenCoinID = int64(st.OpenCoinID)
		}
	case "jobs":
		m.view = viewJobs
	case "stats":
		m.view = viewStats
	}
	m.recentCoinIDs = st.RecentCoinIDs
}

func (m *appModel) saveState() {
	st := &store.TUIState{
		ReviewTab:     string(m.tab),
		Sort:          sortSpec(m.sort),
		RecentCoinIDs: m.recentCoinIDs,
	}
	switch m.view {
	case viewCoins, viewCoin:
		st.View = "coins"
		if m.view == viewCoin {
			st.OpenCoinID = int(m.openCoin.ID)
		}
	case viewJobs, viewLots:
		st.View = "jobs"
	case viewStats:
		st.View = "stats"
	default:
		st.View = "review"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = m.state.SaveTUIState(ctx, st)
}

func sortSpec(s review.Sort) string {
	if s.Desc {
		return string(s.Field) + ":desc"
	}
	return string(s.Field)
}

var errBadSortSpec = errors.New("sort spec must be confidence|field|id, optionally with :desc")

func parseSortSpec(spec string) (review.Sort, error) {
	field, dir, _ := strings.Cut(spec, ":")
	switch review.SortField(field) {
	case review.SortByConfidence, review.SortByField, review.SortByID:
		return review.Sort{Field: review.SortField(field), Desc: dir == "desc"}, nil
	}
	return review.Sort{}, errBadSortSpec
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadReview(m.tab),
		m.loadCounts(),
		m.tickPoll(),
		m.waitForNotice(),
	}
	if m.reopenCoinID > 0 {
		cmds = append(cmds, m.loadCoin(m.reopenCoinID))
	}
	return tea.Batch(cmds...)
}

func (m appModel) pollInterval() time.Duration {
	return time.Duration(m.cfg.PollInterval()) * time.Second
}

func (m appModel) tickPoll() tea.Cmd {
	return tea.Tick(m.pollInterval(), func(time.Time) tea.Msg { return pollTickMsg{} })
}

// waitForNotice blocks on the notice channel; Update re-arms it after each
// delivery.
func (m appModel) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{notice: <-m.notices}
	}
}

func (m appModel) fetchCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), fetchTimeout)
}

func (m appModel) loadReview(tab model.ReviewTab) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		items, err := m.actions.Load(ctx, tab)
		return reviewLoadedMsg{tab: tab, items: items, err: err}
	}
}

func (m appModel) loadCounts() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		v, err := m.cache.GetOr(ctx, querycache.CountsKey, func(ctx context.Context) (any, error) {
			return m.client.ReviewCounts(ctx)
		})
		if err != nil {
			return countsMsg{err: err}
		}
		counts, _ := v.(model.ReviewCounts)
		return countsMsg{counts: counts}
	}
}

func (m appModel) loadCoins(page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		v, err := m.cache.GetOr(ctx, querycache.CoinPageKey(page), func(ctx context.Context) (any, error) {
			return m.client.ListCoins(ctx, page, 50)
		})
		if err != nil {
			return coinsLoadedMsg{err: err}
		}
		pageData, _ := v.(api.CoinPage)
		return coinsLoadedMsg{page: pageData}
	}
}

func (m appModel) loadCoin(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		v, err := m.cache.GetOr(ctx, querycache.CoinKey(id), func(ctx context.Context) (any, error) {
			return m.client.GetCoin(ctx, id)
		})
		if err != nil {
			return coinLoadedMsg{err: err}
		}
		coin, _ := v.(model.Coin)
		return coinLoadedMsg{coin: coin}
	}
}

func (m appModel) loadJobs() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		jobs, err := m.importer.Jobs(ctx)
		return jobsLoadedMsg{jobs: jobs, err: err}
	}
}

func (m appModel) loadLots(jobID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		lots, err := m.importer.Lots(ctx, jobID)
		return lotsLoadedMsg{jobID: jobID, lots: lots, err: err}
	}
}

func (m appModel) loadStats() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		v, err := m.cache.GetOr(ctx, querycache.StatsKey, func(ctx context.Context) (any, error) {
			return m.client.CollectionStats(ctx)
		})
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		stats, _ := v.(model.CollectionStats)
		return statsLoadedMsg{stats: stats}
	}
}

// visibleItems applies the active filter and sort to the raw queue.
func (m *appModel) visibleItems(raw []model.ReviewItem) []model.ReviewItem {
	items, err := review.ApplyFilter(raw, m.filter)
	if err != nil {
		// A filter that errors at runtime is dropped rather than wedging the tab.
		m.filter = nil
		items = raw
	}
	items = append([]model.ReviewItem(nil), items...)
	review.SortItems(items, m.sort)
	return items
}

// collectionTerms gathers the vocabulary the term matcher is built from.
func collectionTerms(coins []model.Coin) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	for _, c := range coins {
		add(c.Mint)
		add(c.Ruler)
		add(c.Denomination)
		add(c.Country)
	}
	return out
}

func (m *appModel) rememberCoin(id int) {
	out := []int{id}
	for _, prev := range m.recentCoinIDs {
		if prev != id && len(out) < 10 {
			out = append(out, prev)
		}
	}
	m.recentCoinIDs = out
}
