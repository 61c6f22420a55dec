package model

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

type ReviewTab string

const (
	TabVocabulary ReviewTab = "vocabulary"
	TabAI         ReviewTab = "ai"
	TabImages     ReviewTab = "images"
	TabData       ReviewTab = "data"
)

// ReviewTabs lists tabs in display order.
var ReviewTabs = []ReviewTab{TabVocabulary, TabAI, TabImages, TabData}

func ParseReviewTab(s string) (ReviewTab, error) {
	t := ReviewTab(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ReviewTabs {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown review tab: %q (expected vocabulary|ai|images|data)", s)
}

func (t ReviewTab) Label() string {
	switch t {
	case TabVocabulary:
		return "Vocabulary"
	case TabAI:
		return "AI Suggestions"
	case TabImages:
		return "Images"
	case TabData:
		return "Data"
	}
	return string(t)
}

type Coin struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Country      string  `json:"country,omitempty"`
	Denomination string  `json:"denomination,omitempty"`
	Year         *int    `json:"year,omitempty"`
	Mint         string  `json:"mint,omitempty"`
	Ruler        string  `json:"ruler,omitempty"`
	Composition  string  `json:"composition,omitempty"`
	WeightGrams  float64 `json:"weight_grams,omitempty"`
	DiameterMM   float64 `json:"diameter_mm,omitempty"`
	Grade        string  `json:"grade,omitempty"`
	CatalogRef   string  `json:"catalog_ref,omitempty"`

	// Notes is free-form markdown shown in the detail pane.
	Notes string `json:"notes,omitempty"`

	Images []CoinImage `json:"images,omitempty"`

	// Provenance is the embedded ownership chain. The server returns it sorted;
	// clients must keep it sorted by SortOrder when editing locally.
	Provenance []ProvenanceEntry `json:"provenance,omitempty"`

	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
	PricePaid  float64    `json:"price_paid,omitempty"`
	Currency   string     `json:"currency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CoinImage struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Side    string `json:"side,omitempty"` // obverse|reverse|edge
	Primary bool   `json:"primary,omitempty"`
}

// ProvenanceEntry is one link in a coin's ownership chain.
//
// Negative IDs are client-local placeholders for optimistic inserts; the
// server only ever assigns positive IDs.
type ProvenanceEntry struct {
	ID          int64   `json:"id"`
	CoinID      int64   `json:"coin_id"`
	Owner       string  `json:"owner"`
	AcquiredVia string  `json:"acquired_via,omitempty"` // auction|dealer|private|inheritance
	AuctionRef  string  `json:"auction_ref,omitempty"`
	PricePaid   float64 `json:"price_paid,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	BeginYear   *int    `json:"begin_year,omitempty"`
	EndYear     *int    `json:"end_year,omitempty"`
	Note        string  `json:"note,omitempty"`

	// SortOrder positions the entry in the chain (ascending = oldest first).
	SortOrder int `json:"sort_order"`
}

func (e ProvenanceEntry) Pending() bool { return e.ID < 0 }

// SortProvenance orders a chain by SortOrder ascending. The sort is stable and
// ties break on ID so optimistic temp entries keep a deterministic position.
func SortProvenance(entries []ProvenanceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SortOrder != entries[j].SortOrder {
			return entries[i].SortOrder < entries[j].SortOrder
		}
		return entries[i].ID < entries[j].ID
	})
}

var tempIDCounter atomic.Int64

// NextTempID returns the next client-local placeholder ID (-1, -2, ...).
func NextTempID() int64 {
	return -tempIDCounter.Add(1)
}

// ReviewItem is one pending suggestion in a review queue.
type ReviewItem struct {
	ID             int64     `json:"id"`
	Tab            ReviewTab `json:"tab"`
	CoinID         int64     `json:"coin_id,omitempty"`
	Field          string    `json:"field,omitempty"`
	CurrentValue   string    `json:"current_value,omitempty"`
	SuggestedValue string    `json:"suggested_value"`
	Confidence     float64   `json:"confidence"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReviewCounts carries per-tab pending totals for tab badges.
type ReviewCounts struct {
	Vocabulary int `json:"vocabulary"`
	AI         int `json:"ai"`
	Images     int `json:"images"`
	Data       int `json:"data"`
}

func (c ReviewCounts) ForTab(t ReviewTab) int {
	switch t {
	case TabVocabulary:
		return c.Vocabulary
	case TabAI:
		return c.AI
	case TabImages:
		return c.Images
	case TabData:
		return c.Data
	}
	return 0
}

func (c ReviewCounts) Total() int {
	return c.Vocabulary + c.AI + c.Images + c.Data
}

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

func (s JobStatus) Terminal() bool { return s == JobDone || s == JobFailed }

// ScrapeJob tracks one server-side auction-catalog scrape.
type ScrapeJob struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    JobStatus `json:"status"`
	LotsFound int       `json:"lots_found"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuctionLot struct {
	LotNumber   string     `json:"lot_number"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	HammerPrice float64    `json:"hammer_price,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	SaleName    string     `json:"sale_name,omitempty"`
	SaleDate    *time.Time `json:"sale_date,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
}

type CollectionStats struct {
	TotalCoins    int            `json:"total_coins"`
	TotalValue    float64        `json:"total_value"`
	Currency      string         `json:"currency,omitempty"`
	ByCountry     map[string]int `json:"by_country,omitempty"`
	ByGrade       map[string]int `json:"by_grade,omitempty"`
	ByComposition map[string]int `json:"by_composition,omitempty"`
	PendingReview int            `json:"pending_review"`
}

type WishlistItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Country      string  `json:"country,omitempty"`
	Denomination string  `json:"denomination,omitempty"`
	Year         *int    `json:"year,omitempty"`
	MaxPrice     float64 `json:"max_price,omitempty"`
	Note         string  `json:"note,omitempty"`
}
