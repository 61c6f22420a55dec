package tui

import (
	"fmt"
	"strings"

	"numis-cli/internal/model"
	"numis-cli/internal/scrape"

	"github.com/charmbracelet/bubbles/list"
)

type reviewRowItem struct {
	item     model.ReviewItem
	selected bool
}

func (i reviewRowItem) FilterValue() string {
	return i.item.Field + " " + i.item.SuggestedValue
}

func (i reviewRowItem) Title() string {
	marker := glyphUnchecked()
	if i.selected {
		marker = glyphChecked()
	}
	conf := fmt.Sprintf("%3.0f%%", i.item.Confidence*100)
	head := i.item.SuggestedValue
	if i.item.Field != "" {
		head = i.item.Field + ": " + head
	}
	return marker + " " + conf + "  " + head
}

func (i reviewRowItem) Description() string {
	parts := []string{}
	if i.item.CurrentValue != "" {
		parts = append(parts, "now: "+i.item.CurrentValue)
	}
	if i.item.CoinID != 0 {
		parts = append(parts, fmt.Sprintf("coin #%d", i.item.CoinID))
	}
	if i.item.Source != "" {
		parts = append(parts, i.item.Source)
	}
	if len(parts) == 0 {
		return " "
	}
	return strings.Join(parts, "  ")
}

func reviewRows(items []model.ReviewItem, sel interface{ Selected(int64) bool }) []list.Item {
	rows := make([]list.Item, len(items))
	for i, it := range items {
		rows[i] = reviewRowItem{item: it, selected: sel != nil && sel.Selected(it.ID)}
	}
	return rows
}

type coinRowItem struct {
	coin model.Coin
}

func (i coinRowItem) FilterValue() string {
	return i.coin.Title + " " + i.coin.Country + " " + i.coin.Ruler
}

func (i coinRowItem) Title() string { return i.coin.Title }

func (i coinRowItem) Description() string {
	parts := []string{}
	if i.coin.Country != "" {
		parts = append(parts, i.coin.Country)
	}
	if i.coin.Year != nil {
		parts = append(parts, fmt.Sprintf("%d", *i.coin.Year))
	}
	if i.coin.Grade != "" {
		parts = append(parts, i.coin.Grade)
	}
	if i.coin.CatalogRef != "" {
		parts = append(parts, i.coin.CatalogRef)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("#%d", i.coin.ID)
	}
	return strings.Join(parts, " · ")
}

func coinRows(coins []model.Coin) []list.Item {
	rows := make([]list.Item, len(coins))
	for i, c := range coins {
		rows[i] = coinRowItem{coin: c}
	}
	return rows
}

type jobRowItem struct {
	job model.ScrapeJob
}

func (i jobRowItem) FilterValue() string { return i.job.URL }

func (i jobRowItem) Title() string {
	return statusGlyph(i.job.Status) + " " + i.job.URL
}

func (i jobRowItem) Description() string {
	if i.job.Status == model.JobFailed && i.job.Error != "" {
		return i.job.Error
	}
	if i.job.LotsFound > 0 {
		return fmt.Sprintf("%d lots", i.job.LotsFound)
	}
	return string(i.job.Status)
}

func jobRows(jobs []model.ScrapeJob) []list.Item {
	rows := make([]list.Item, len(jobs))
	for i, j := range jobs {
		rows[i] = jobRowItem{job: j}
	}
	return rows
}

type lotRowItem struct {
	lot model.AuctionLot
	// terms are vocabulary hits in the title, shown as import hints.
	terms []string
}

func (i lotRowItem) FilterValue() string { return i.lot.Title }

func (i lotRowItem) Title() string {
	return "lot " + i.lot.LotNumber + "  " + i.lot.Title
}

func (i lotRowItem) Description() string {
	parts := []string{}
	if i.lot.HammerPrice > 0 {
		parts = append(parts, fmt.Sprintf("%.0f %s", i.lot.HammerPrice, i.lot.Currency))
	}
	if len(i.terms) > 0 {
		parts = append(parts, "terms: "+strings.Join(i.terms, ", "))
	}
	if len(parts) == 0 {
		return " "
	}
	return strings.Join(parts, "  ")
}

func lotRows(lots []model.AuctionLot, matcher *scrape.TermMatcher) []list.Item {
	rows := make([]list.Item, len(lots))
	for i, l := range lots {
		var terms []string
		if matcher != nil {
			terms = matcher.Terms(l.Title + " " + l.Description)
		}
		rows[i] = lotRowItem{lot: l, terms: terms}
	}
	return rows
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own header and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}
