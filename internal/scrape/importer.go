package scrape

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"numis-cli/internal/api"
	"numis-cli/internal/model"
	"numis-cli/internal/querycache"

	"golang.org/x/time/rate"
)

var ErrBadURL = errors.New("auction URL must be http(s)")

// Lot-detail fetches proxy through the server to the upstream auction sites,
// so keep them polite.
const (
	lotDetailRate  = rate.Limit(2)
	lotDetailBurst = 4
)

// Service is the remote surface auction import drives. *api.Client satisfies
// it.
type Service interface {
	StartScrapeJob(ctx context.Context, url string) (model.ScrapeJob, error)
	ListScrapeJobs(ctx context.Context) ([]model.ScrapeJob, error)
	GetScrapeJob(ctx context.Context, id string) (model.ScrapeJob, error)
	ListLots(ctx context.Context, jobID string) ([]model.AuctionLot, error)
	GetLot(ctx context.Context, jobID, lotNumber string) (model.AuctionLot, error)
	ImportLots(ctx context.Context, jobID string, lotNumbers []string) (api.ImportResult, error)
}

// Importer mediates auction-lot scraping and import through the shared cache.
type Importer struct {
	remote  Service
	cache   *querycache.Cache
	limiter *rate.Limiter
}

func NewImporter(remote Service, cache *querycache.Cache) *Importer {
	return &Importer{
		remote:  remote,
		cache:   cache,
		limiter: rate.NewLimiter(lotDetailRate, lotDetailBurst),
	}
}

// Start submits a catalog URL for server-side scraping.
func (im *Importer) Start(ctx context.Context, rawURL string) (model.ScrapeJob, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.ScrapeJob{}, ErrBadURL
	}

	job, err := im.remote.StartScrapeJob(ctx, u.String())
	if err != nil {
		return model.ScrapeJob{}, err
	}
	im.cache.Set(querycache.JobKey(job.ID), job)
	im.cache.Invalidate(querycache.JobsKey)
	return job, nil
}

func (im *Importer) Jobs(ctx context.Context) ([]model.ScrapeJob, error) {
	v, err := im.cache.GetOr(ctx, querycache.JobsKey, func(ctx context.Context) (any, error) {
		return im.remote.ListScrapeJobs(ctx)
	})
	if err != nil {
		return nil, err
	}
	jobs, _ := v.([]model.ScrapeJob)
	return jobs, nil
}

// Refresh re-reads one job from the server (status polling while a scrape
// runs) and updates the cached copies.
func (im *Importer) Refresh(ctx context.Context, id string) (model.ScrapeJob, error) {
	job, err := im.remote.GetScrapeJob(ctx, id)
	if err != nil {
		return model.ScrapeJob{}, err
	}
	im.cache.Set(querycache.JobKey(job.ID), job)
	im.cache.Invalidate(querycache.JobsKey)
	return job, nil
}

func (im *Importer) Lots(ctx context.Context, jobID string) ([]model.AuctionLot, error) {
	v, err := im.cache.GetOr(ctx, querycache.LotsKey(jobID), func(ctx context.Context) (any, error) {
		return im.remote.ListLots(ctx, jobID)
	})
	if err != nil {
		return nil, err
	}
	lots, _ := v.([]model.AuctionLot)
	return lots, nil
}

// LotDetail fetches the full record for one lot, throttled.
func (im *Importer) LotDetail(ctx context.Context, jobID, lotNumber string) (model.AuctionLot, error) {
	if err := im.limiter.Wait(ctx); err != nil {
		return model.AuctionLot{}, err
	}
	return im.remote.GetLot(ctx, jobID, lotNumber)
}

// Import turns the selected lots into coins; the new coins land on the
// server, so the listings and stats go stale.
func (im *Importer) Import(ctx context.Context, jobID string, lotNumbers []string) (api.ImportResult, error) {
	if len(lotNumbers) == 0 {
		return api.ImportResult{}, errors.New("no lots selected")
	}
	res, err := im.remote.ImportLots(ctx, jobID, lotNumbers)
	if err != nil {
		return api.ImportResult{}, err
	}
	im.cache.Invalidate(querycache.CoinPageKey(1), querycache.StatsKey, querycache.JobsKey)
	return res, nil
}
