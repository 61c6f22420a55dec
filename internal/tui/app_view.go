package tui

import (
	"fmt"
	"strings"

	"numis-cli/internal/model"
	"numis-cli/internal/mutate"

	"github.com/charmbracelet/lipgloss"
)

// chromeLines is the fixed vertical space around the body: tab bar, rule,
// flash line, and the key help footer.
const chromeLines = 5

func (m appModel) View() string {
	if m.resizing {
		return mutedStyle.Render("Resizing...")
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderFlash())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.modal != modalNone {
		return m.renderModal()
	}
	return b.String()
}

func (m appModel) renderTabBar() string {
	if m.view != viewReview {
		title := map[view]string{
			viewCoins: "Coins",
			viewCoin:  "Coin",
			viewJobs:  "Auction jobs",
			viewLots:  "Lots",
			viewStats: "Stats",
		}[m.view]
		return headerStyle.Render(title)
	}

	parts := make([]string, 0, len(model.ReviewTabs))
	for i, tab := range model.ReviewTabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Label())
		if n := m.counts.ForTab(tab); n > 0 {
			label += badgeStyle.Render(fmt.Sprintf(" (%d)", n))
		}
		if tab == m.tab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func (m appModel) renderBody() string {
	if m.loading {
		return mutedStyle.Render("Loading...")
	}
	switch m.view {
	case viewReview:
		if len(m.items) == 0 {
			if m.filter != nil {
				return mutedStyle.Render("No items match " + m.filter.String())
			}
			return mutedStyle.Render("Nothing pending in " + m.tab.Label())
		}
		return m.reviewList.View()
	case viewCoins:
		return m.coinsList.View()
	case viewCoin:
		return renderCoinDetail(m.openCoin, m.width, m.provIdx)
	case viewJobs:
		return m.jobsList.View()
	case viewLots:
		return m.lotsList.View()
	case viewStats:
		return renderStats(m.stats, m.width)
	}
	return ""
}

func (m appModel) renderFlash() string {
	if m.flashText == "" {
		return " "
	}
	if m.flashLevel == mutate.LevelError {
		return flashErrStyle.Render(m.flashText)
	}
	out := flashInfoStyle.Render(m.flashText)
	if m.flashUndo {
		out += mutedStyle.Render("  (u: undo)")
	}
	return out
}

func (m appModel) renderFooter() string {
	var keys string
	switch m.view {
	case viewReview:
		keys = "a approve · x reject · space select · A/X bulk · u undo · s sort · / filter · enter coin · q quit"
		if m.undo.Depth(m.tab) > 0 {
			keys = fmt.Sprintf("u undo (%d) · ", m.undo.Depth(m.tab)) + "a approve · x reject · space select · A/X bulk · s sort · / filter · q quit"
		}
	case viewCoins:
		keys = "enter open · r review · j jobs · t stats · q quit"
	case viewCoin:
		keys = "p add provenance · e edit · d delete · esc back · q quit"
	case viewJobs:
		keys = "n new scrape · R refresh · enter lots · esc back · q quit"
	case viewLots:
		keys = "i import lot · esc back · q quit"
	case viewStats:
		keys = "r review · c coins · q quit"
	}
	return mutedStyle.Render(keys)
}

func (m appModel) renderModal() string {
	var title, body string
	switch m.modal {
	case modalFilter:
		title = "Filter " + m.tab.Label()
		body = m.input.View()
	case modalAddProvenance:
		title = "Add provenance to " + m.openCoin.Title
		body = m.input.View() + "\n" + m.secondInput.View()
	case modalEditProvenance:
		title = "Edit provenance of " + m.openCoin.Title
		body = m.input.View() + "\n" + m.secondInput.View()
	case modalScrapeURL:
		title = "Scrape auction catalog"
		body = m.input.View()
	}

	content := headerStyle.Render(title) + "\n\n" + body + "\n\n" +
		mutedStyle.Render("enter apply · esc cancel")
	box := modalStyle.Render(content)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
