package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"numis-cli/internal/model"
	"numis-cli/internal/mutate"
	"numis-cli/internal/querycache"
	"numis-cli/internal/review"
	"numis-cli/internal/scrape"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		// Don't show the resize overlay on startup; only after we've seen an
		// initial size.
		if !m.seenWindowSize {
			m.seenWindowSize = true
			m.resizing = false
			return m, nil
		}
		m.resizing = true
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return resizeDoneMsg{seq: seq} })

	case resizeDoneMsg:
		// Debounce: only clear if this corresponds to the latest resize seq.
		if msg.seq == m.resizeSeq {
			m.resizing = false
		}
		return m, nil

	case pollTickMsg:
		// Each tick drops the cached counts first so the reload always hits
		// the server; otherwise the entry stays fresh for the full TTL and
		// the badges miss suggestions arriving remotely.
		m.cache.Invalidate(querycache.CountsKey)
		return m, tea.Batch(m.loadCounts(), m.tickPoll())

	case countsMsg:
		// Polling failures stay silent; the next tick retries.
		if msg.err == nil {
			m.counts = msg.counts
		}
		return m, nil

	case reviewLoadedMsg:
		if msg.tab != m.tab {
			// Stale load from before a tab switch.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.items = m.visibleItems(msg.items)
		m.reviewList.SetItems(reviewRows(m.items, m.selection[m.tab]))
		return m, nil

	case coinsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.coinsList.SetItems(coinRows(msg.page.Items))
		m.matcher = scrape.NewTermMatcher(collectionTerms(msg.page.Items))
		return m, nil

	case coinLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.openCoin = msg.coin
		if m.provIdx >= len(msg.coin.Provenance) {
			m.provIdx = 0
		}
		m.rememberCoin(int(msg.coin.ID))
		if m.view != viewCoin {
			m.returnView = m.view
			m.view = viewCoin
		}
		return m, nil

	case jobsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.jobsList.SetItems(jobRows(msg.jobs))
		return m, nil

	case lotsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.openJobID = msg.jobID
		m.lots = msg.lots
		m.lotsList.SetItems(lotRows(msg.lots, m.matcher))
		m.view = viewLots
		return m, nil

	case statsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showFlash(errText(msg.err), mutate.LevelError)
		}
		m.stats = msg.stats
		return m, nil

	case noticeMsg:
		// One notice per mutation boundary; re-arm the channel pump.
		cmd := m.showFlash(msg.notice.Text, msg.notice.Level)
		m.flashUndo = msg.notice.Undoable
		return m, tea.Batch(cmd, m.waitForNotice())

	case actionDoneMsg:
		// The mutation already adjusted or invalidated the cache; reload the
		// affected views from it.
		cmds := []tea.Cmd{m.loadCounts()}
		if m.view == viewReview {
			cmds = append(cmds, m.loadReview(msg.tab))
		}
		if m.view == viewCoin {
			cmds = append(cmds, m.loadCoin(m.openCoin.ID))
		}
		return m, tea.Batch(cmds...)

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashText = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *appModel) showFlash(text string, level mutate.Level) tea.Cmd {
	m.flashText = text
	m.flashLevel = level
	m.flashUndo = false
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.saveState()
		m.undo.ClearAll()
		return m, tea.Quit

	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		return m.switchTab(model.ReviewTabs[idx])

	case "r":
		m.view = viewReview
		m.loading = true
		return m, m.loadReview(m.tab)

	case "c":
		if m.view == viewReview || m.view == viewJobs || m.view == viewStats {
			m.leaveReview()
			m.view = viewCoins
			m.loading = true
			return m, m.loadCoins(1)
		}

	case "j":
		m.leaveReview()
		m.view = viewJobs
		m.loading = true
		return m, m.loadJobs()

	case "t":
		m.leaveReview()
		m.view = viewStats
		m.loading = true
		return m, m.loadStats()

	case "esc":
		switch m.view {
		case viewCoin:
			m.view = m.returnView
			return m, nil
		case viewLots:
			m.view = viewJobs
			return m, nil
		}
	}

	switch m.view {
	case viewReview:
		return m.handleReviewKey(msg)
	case viewCoins:
		return m.handleCoinsKey(msg)
	case viewCoin:
		return m.handleCoinKey(msg)
	case viewJobs:
		return m.handleJobsKey(msg)
	case viewLots:
		return m.handleLotsKey(msg)
	}
	return m, nil
}

// leaveReview drops the active tab's undo history. Any exit from the review
// view counts as leaving the tab, same as switching to another one.
func (m *appModel) leaveReview() {
	if m.view == viewReview {
		m.undo.Clear(m.tab)
	}
}

// switchTab moves to another review tab. The undo stack is per tab and does
// not survive leaving it.
func (m appModel) switchTab(tab model.ReviewTab) (tea.Model, tea.Cmd) {
	if m.view == viewReview && tab == m.tab {
		return m, nil
	}
	m.leaveReview()
	m.view = viewReview
	m.tab = tab
	m.loading = true
	return m, m.loadReview(tab)
}

func (m appModel) cursorReviewItem() (model.ReviewItem, bool) {
	it, ok := m.reviewList.SelectedItem().(reviewRowItem)
	if !ok {
		return model.ReviewItem{}, false
	}
	return it.item, true
}

func (m appModel) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if it, ok := m.cursorReviewItem(); ok {
			m.selection[m.tab].Toggle(it.ID)
			idx := m.reviewList.Index()
			m.reviewList.SetItems(reviewRows(m.items, m.selection[m.tab]))
			m.reviewList.Select(idx)
		}
		return m, nil

	case "*":
		m.selection[m.tab].SelectAll(m.items)
		m.reviewList.SetItems(reviewRows(m.items, m.selection[m.tab]))
		return m, nil

	case "a", "x":
		it, ok := m.cursorReviewItem()
		if !ok {
			return m, nil
		}
		approve := msg.String() == "a"
		return m, m.actCmd(approve, it)

	case "A", "X":
		sel := m.selection[m.tab]
		targets := sel.Items(m.items)
		if len(targets) == 0 {
			return m, m.showFlash("Nothing selected", mutate.LevelError)
		}
		sel.Clear()
		approve := msg.String() == "A"
		return m, m.bulkCmd(approve, m.tab, targets)

	case "u":
		tab := m.tab
		return m, func() tea.Msg {
			ctx, cancel := m.fetchCtx()
			defer cancel()
			_ = m.undo.UndoLast(ctx, tab)
			return actionDoneMsg{tab: tab}
		}

	case "s":
		m.sort = m.sort.Cycle()
		review.SortItems(m.items, m.sort)
		m.reviewList.SetItems(reviewRows(m.items, m.selection[m.tab]))
		return m, m.showFlash("Sort: "+m.sort.Label(), mutate.LevelInfo)

	case "/":
		m.modal = modalFilter
		m.input.SetValue(m.filter.String())
		m.input.Placeholder = `confidence > 0.8 && field == "mint"`
		m.input.Focus()
		return m, nil

	case "enter":
		if it, ok := m.cursorReviewItem(); ok && it.CoinID != 0 {
			m.loading = true
			return m, m.loadCoin(it.CoinID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.reviewList, cmd = m.reviewList.Update(msg)
	return m, cmd
}

// actCmd runs one approve/reject. The outcome notice arrives via the notice
// channel; the returned actionDoneMsg only schedules reloads.
func (m appModel) actCmd(approve bool, it model.ReviewItem) tea.Cmd {
	tab := m.tab
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		if approve {
			_ = m.actions.Approve(ctx, it)
		} else {
			_ = m.actions.Reject(ctx, it)
		}
		return actionDoneMsg{tab: tab}
	}
}

func (m appModel) bulkCmd(approve bool, tab model.ReviewTab, targets []model.ReviewItem) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		if approve {
			_ = m.actions.BulkApprove(ctx, tab, targets)
		} else {
			_ = m.actions.BulkReject(ctx, tab, targets)
		}
		return actionDoneMsg{tab: tab}
	}
}

func (m appModel) handleCoinsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if it, ok := m.coinsList.SelectedItem().(coinRowItem); ok {
			m.loading = true
			return m, m.loadCoin(it.coin.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.coinsList, cmd = m.coinsList.Update(msg)
	return m, cmd
}

func (m appModel) handleCoinKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chain := sortedProvenance(m.openCoin.Provenance)

	switch msg.String() {
	case "down", "ctrl+n":
		if m.provIdx < len(chain)-1 {
			m.provIdx++
		}
		return m, nil

	case "up", "ctrl+p":
		if m.provIdx > 0 {
			m.provIdx--
		}
		return m, nil

	case "p":
		m.modal = modalAddProvenance
		m.input.SetValue("")
		m.input.Placeholder = "Owner"
		m.input.Focus()
		m.secondInput.SetValue("")
		m.secondInput.Placeholder = "Note (optional)"
		m.secondInput.Blur()
		m.inputFocus = 0
		return m, nil

	case "e":
		if m.provIdx >= len(chain) || chain[m.provIdx].Pending() {
			return m, nil
		}
		m.editEntry = chain[m.provIdx]
		m.modal = modalEditProvenance
		m.input.SetValue(m.editEntry.Owner)
		m.input.Placeholder = "Owner"
		m.input.Focus()
		m.secondInput.SetValue(m.editEntry.Note)
		m.secondInput.Placeholder = "Note (optional)"
		m.secondInput.Blur()
		m.inputFocus = 0
		return m, nil

	case "d":
		if m.provIdx >= len(chain) || chain[m.provIdx].Pending() {
			return m, nil
		}
		return m, m.deleteProvenanceCmd(m.openCoin, chain[m.provIdx])
	}
	return m, nil
}

func (m appModel) handleJobsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.modal = modalScrapeURL
		m.input.SetValue("")
		m.input.Placeholder = "https://auction-house.example/sale/123"
		m.input.Focus()
		return m, nil

	case "R":
		if it, ok := m.jobsList.SelectedItem().(jobRowItem); ok {
			id := it.job.ID
			return m, func() tea.Msg {
				ctx, cancel := m.fetchCtx()
				defer cancel()
				if _, err := m.importer.Refresh(ctx, id); err != nil {
					return jobsLoadedMsg{err: err}
				}
				jobs, err := m.importer.Jobs(ctx)
				return jobsLoadedMsg{jobs: jobs, err: err}
			}
		}
		return m, nil

	case "enter":
		if it, ok := m.jobsList.SelectedItem().(jobRowItem); ok && it.job.Status == model.JobDone {
			m.loading = true
			return m, m.loadLots(it.job.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.jobsList, cmd = m.jobsList.Update(msg)
	return m, cmd
}

func (m appModel) handleLotsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "i":
		if it, ok := m.lotsList.SelectedItem().(lotRowItem); ok {
			jobID := m.openJobID
			lot := it.lot.LotNumber
			return m, func() tea.Msg {
				ctx, cancel := m.fetchCtx()
				defer cancel()
				res, err := m.importer.Import(ctx, jobID, []string{lot})
				if err != nil {
					m.notify(mutate.Notice{Level: mutate.LevelError, Text: errText(err)})
				} else {
					m.notify(mutate.Notice{Level: mutate.LevelInfo, Text: "Imported " + strconv.Itoa(res.Imported) + " lot(s)"})
				}
				return actionDoneMsg{tab: m.tab}
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.lotsList, cmd = m.lotsList.Update(msg)
	return m, cmd
}

// notify feeds the same channel the mutation layer uses, so ad-hoc outcomes
// render identically.
func (m appModel) notify(n mutate.Notice) {
	select {
	case m.notices <- n:
	default:
	}
}

func (m appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.input.Blur()
		m.secondInput.Blur()
		return m, nil

	case "tab", "shift+tab":
		if m.modal == modalAddProvenance || m.modal == modalEditProvenance {
			if m.inputFocus == 0 {
				m.inputFocus = 1
				m.input.Blur()
				m.secondInput.Focus()
			} else {
				m.inputFocus = 0
				m.secondInput.Blur()
				m.input.Focus()
			}
			return m, nil
		}

	case "enter":
		return m.submitModal()
	}

	var cmd tea.Cmd
	if (m.modal == modalAddProvenance || m.modal == modalEditProvenance) && m.inputFocus == 1 {
		m.secondInput, cmd = m.secondInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m appModel) submitModal() (tea.Model, tea.Cmd) {
	kind := m.modal
	m.modal = modalNone
	m.input.Blur()
	m.secondInput.Blur()

	switch kind {
	case modalFilter:
		src := strings.TrimSpace(m.input.Value())
		filter, err := review.CompileFilter(src)
		if err != nil {
			return m, m.showFlash(errText(err), mutate.LevelError)
		}
		m.filter = filter
		m.loading = true
		return m, m.loadReview(m.tab)

	case modalAddProvenance:
		owner := strings.TrimSpace(m.input.Value())
		note := strings.TrimSpace(m.secondInput.Value())
		if owner == "" {
			return m, m.showFlash("Owner is required", mutate.LevelError)
		}
		return m, m.addProvenanceCmd(m.openCoin, owner, note)

	case modalEditProvenance:
		owner := strings.TrimSpace(m.input.Value())
		if owner == "" {
			return m, m.showFlash("Owner is required", mutate.LevelError)
		}
		entry := m.editEntry
		entry.Owner = owner
		entry.Note = strings.TrimSpace(m.secondInput.Value())
		return m, m.updateProvenanceCmd(m.openCoin, entry)

	case modalScrapeURL:
		url := strings.TrimSpace(m.input.Value())
		return m, func() tea.Msg {
			ctx, cancel := m.fetchCtx()
			defer cancel()
			if _, err := m.importer.Start(ctx, url); err != nil {
				return jobsLoadedMsg{err: err}
			}
			jobs, err := m.importer.Jobs(ctx)
			return jobsLoadedMsg{jobs: jobs, err: err}
		}
	}
	return m, nil
}

// addProvenanceCmd appends an entry optimistically: the chain shows a pending
// entry with a client-local negative id until the server confirms.
func (m appModel) addProvenanceCmd(coin model.Coin, owner, note string) tea.Cmd {
	entry := model.ProvenanceEntry{
		ID:        model.NextTempID(),
		CoinID:    coin.ID,
		Owner:     owner,
		Note:      note,
		SortOrder: nextSortOrder(coin.Provenance),
	}
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		_ = mutate.Run(ctx, m.cache, mutate.NotifierFunc(func(n mutate.Notice) { m.notify(n) }), mutate.Mutation{
			Key: querycache.CoinKey(coin.ID),
			Optimistic: func(old any) any {
				c, ok := old.(model.Coin)
				if !ok {
					return old
				}
				chain := append(append([]model.ProvenanceEntry(nil), c.Provenance...), entry)
				model.SortProvenance(chain)
				c.Provenance = chain
				return c
			},
			Call: func(ctx context.Context) error {
				_, err := m.client.AddProvenance(ctx, coin.ID, entry)
				return err
			},
			Invalidates: []querycache.Key{querycache.ProvenanceKey(coin.ID)},
			Success:     "Added provenance: " + owner,
		})
		return actionDoneMsg{tab: m.tab}
	}
}

// updateProvenanceCmd replaces the edited entry in the cached chain first;
// rollback puts the original back.
func (m appModel) updateProvenanceCmd(coin model.Coin, entry model.ProvenanceEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		_ = mutate.Run(ctx, m.cache, mutate.NotifierFunc(func(n mutate.Notice) { m.notify(n) }), mutate.Mutation{
			Key: querycache.CoinKey(coin.ID),
			Optimistic: func(old any) any {
				c, ok := old.(model.Coin)
				if !ok {
					return old
				}
				chain := append([]model.ProvenanceEntry(nil), c.Provenance...)
				for i := range chain {
					if chain[i].ID == entry.ID {
						chain[i] = entry
					}
				}
				model.SortProvenance(chain)
				c.Provenance = chain
				return c
			},
			Call: func(ctx context.Context) error {
				_, err := m.client.UpdateProvenance(ctx, entry)
				return err
			},
			Invalidates: []querycache.Key{querycache.ProvenanceKey(coin.ID)},
			Success:     "Updated provenance: " + entry.Owner,
		})
		return actionDoneMsg{tab: m.tab}
	}
}

func (m appModel) deleteProvenanceCmd(coin model.Coin, entry model.ProvenanceEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.fetchCtx()
		defer cancel()
		_ = mutate.Run(ctx, m.cache, mutate.NotifierFunc(func(n mutate.Notice) { m.notify(n) }), mutate.Mutation{
			Key: querycache.CoinKey(coin.ID),
			Optimistic: func(old any) any {
				c, ok := old.(model.Coin)
				if !ok {
					return old
				}
				chain := make([]model.ProvenanceEntry, 0, len(c.Provenance))
				for _, e := range c.Provenance {
					if e.ID != entry.ID {
						chain = append(chain, e)
					}
				}
				c.Provenance = chain
				return c
			},
			Call: func(ctx context.Context) error {
				return m.client.DeleteProvenance(ctx, entry.ID)
			},
			Invalidates: []querycache.Key{querycache.ProvenanceKey(coin.ID)},
			Success:     "Removed provenance: " + entry.Owner,
		})
		return actionDoneMsg{tab: m.tab}
	}
}

func nextSortOrder(chain []model.ProvenanceEntry) int {
	max := 0
	for _, e := range chain {
		if e.SortOrder > max {
			max = e.SortOrder
		}
	}
	return max + 1
}

func (m *appModel) resizeLists() {
	w := m.width
	if w > maxContentW {
		w = maxContentW
	}
	h := m.height - chromeLines
	if h < 3 {
		h = 3
	}
	m.reviewList.SetSize(w, h)
	m.coinsList.SetSize(w, h)
	m.jobsList.SetSize(w, h)
	m.lotsList.SetSize(w, h)
}
