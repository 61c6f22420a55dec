package tui

import (
	"fmt"
	"sort"
	"strings"

	"numis-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func sortedProvenance(chain []model.ProvenanceEntry) []model.ProvenanceEntry {
	out := append([]model.ProvenanceEntry(nil), chain...)
	model.SortProvenance(out)
	return out
}

// renderCoinDetail draws the full-screen coin view: header facts, markdown
// notes, then the provenance chain, oldest first. selected marks the cursor
// row of the chain.
func renderCoinDetail(coin model.Coin, width, selected int) string {
	if width > maxContentW {
		width = maxContentW
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(coin.Title))
	b.WriteString("\n")

	facts := []string{}
	addFact := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			facts = append(facts, mutedStyle.Render(label+": ")+value)
		}
	}
	addFact("Country", coin.Country)
	addFact("Denomination", coin.Denomination)
	if coin.Year != nil {
		addFact("Year", fmt.Sprintf("%d", *coin.Year))
	}
	addFact("Mint", coin.Mint)
	addFact("Ruler", coin.Ruler)
	addFact("Composition", coin.Composition)
	if coin.WeightGrams > 0 {
		addFact("Weight", fmt.Sprintf("%.2f g", coin.WeightGrams))
	}
	if coin.DiameterMM > 0 {
		addFact("Diameter", fmt.Sprintf("%.1f mm", coin.DiameterMM))
	}
	addFact("Grade", coin.Grade)
	addFact("Catalog", coin.CatalogRef)
	if coin.PricePaid > 0 {
		addFact("Paid", fmt.Sprintf("%.2f %s", coin.PricePaid, coin.Currency))
	}
	b.WriteString(strings.Join(facts, "\n"))
	b.WriteString("\n")

	if notes := renderMarkdown(coin.Notes, width); notes != "" {
		b.WriteString("\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	if len(coin.Provenance) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Provenance"))
		b.WriteString("\n")
		for i, e := range sortedProvenance(coin.Provenance) {
			b.WriteString(renderProvenanceLine(e, i == selected))
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func renderProvenanceLine(e model.ProvenanceEntry, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	line := marker + e.Owner
	if e.BeginYear != nil {
		span := fmt.Sprintf("%d", *e.BeginYear)
		if e.EndYear != nil {
			span += fmt.Sprintf("-%d", *e.EndYear)
		}
		line += mutedStyle.Render(" (" + span + ")")
	}
	if e.AuctionRef != "" {
		line += mutedStyle.Render("  " + e.AuctionRef)
	}
	if e.PricePaid > 0 {
		line += mutedStyle.Render(fmt.Sprintf("  %.2f %s", e.PricePaid, e.Currency))
	}
	if e.Pending() {
		line += badgeStyle.Render("  (saving...)")
	}
	return line
}

func renderStats(stats model.CollectionStats, width int) string {
	if width > maxContentW {
		width = maxContentW
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Collection"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d coins", stats.TotalCoins))
	if stats.TotalValue > 0 {
		b.WriteString(fmt.Sprintf(", %.2f %s", stats.TotalValue, stats.Currency))
	}
	if stats.PendingReview > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d pending review)", stats.PendingReview)))
	}
	b.WriteString("\n")

	b.WriteString(renderBreakdown("By country", stats.ByCountry))
	b.WriteString(renderBreakdown("By grade", stats.ByGrade))
	b.WriteString(renderBreakdown("By composition", stats.ByComposition))
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func renderBreakdown(title string, counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for _, k := range sortedKeys(counts) {
		b.WriteString(fmt.Sprintf("  %-20s %d\n", k, counts[k]))
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
