package tui

import (
	"numis-cli/internal/api"
	"numis-cli/internal/model"
	"numis-cli/internal/mutate"
)

type view int

const (
	viewReview view = iota
	viewCoins
	viewCoin
	viewJobs
	viewLots
	viewStats
)

type modalKind int

const (
	modalNone modalKind = iota
	modalFilter
	modalAddProvenance
	modalEditProvenance
	modalScrapeURL
)

// pollTickMsg drives the periodic review-counts refresh.
type pollTickMsg struct{}

// flashDoneMsg clears the notice line; seq guards against a newer flash.
type flashDoneMsg struct{ seq int }

type resizeDoneMsg struct{ seq int }

// noticeMsg carries one mutation notice out of the actions layer.
type noticeMsg struct{ notice mutate.Notice }

type countsMsg struct {
	counts model.ReviewCounts
	err    error
}

type reviewLoadedMsg struct {
	tab   model.ReviewTab
	items []model.ReviewItem
	err   error
}

type coinsLoadedMsg struct {
	page api.CoinPage
	err  error
}

type coinLoadedMsg struct {
	coin model.Coin
	err  error
}

type jobsLoadedMsg struct {
	jobs []model.ScrapeJob
	err  error
}

type lotsLoadedMsg struct {
	jobID string
	lots  []model.AuctionLot
	err   error
}

type statsLoadedMsg struct {
	stats model.CollectionStats
	err   error
}

// actionDoneMsg follows any approve/reject/undo/provenance mutation; the
// outcome itself arrives separately as a noticeMsg.
type actionDoneMsg struct{ tab model.ReviewTab }
