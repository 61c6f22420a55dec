package api

import (
	"context"
	"fmt"

	"numis-cli/internal/model"

	"github.com/google/uuid"
)

// StartScrapeJob asks the server to scrape an auction catalog URL. A client
// request id makes retries idempotent (resubmitting the same URL twice in a
// row is common when a scrape seems stuck).
func (c *Client) StartScrapeJob(ctx context.Context, url string) (model.ScrapeJob, error) {
	body := struct {
		URL       string `json:"url"`
		RequestID string `json:"request_id"`
	}{URL: url, RequestID: uuid.NewString()}
	var out model.ScrapeJob
	err := c.post(ctx, "/api/v2/auction/jobs", body, &out)
	return out, err
}

func (c *Client) ListScrapeJobs(ctx context.Context) ([]model.ScrapeJob, error) {
	var out []model.ScrapeJob
	err := c.get(ctx, "/api/v2/auction/jobs", &out)
	return out, err
}

func (c *Client) GetScrapeJob(ctx context.Context, id string) (model.ScrapeJob, error) {
	var out model.ScrapeJob
	err := c.get(ctx, "/api/v2/auction/jobs/"+id, &out)
	return out, err
}

func (c *Client) ListLots(ctx context.Context, jobID string) ([]model.AuctionLot, error) {
	var out []model.AuctionLot
	err := c.get(ctx, fmt.Sprintf("/api/v2/auction/jobs/%s/lots", jobID), &out)
	return out, err
}

// GetLot fetches full detail (description, image) for one lot of a job.
func (c *Client) GetLot(ctx context.Context, jobID, lotNumber string) (model.AuctionLot, error) {
	var out model.AuctionLot
	err := c.get(ctx, fmt.Sprintf("/api/v2/auction/jobs/%s/lots/%s", jobID, lotNumber), &out)
	return out, err
}

type ImportResult struct {
	Imported int     `json:"imported"`
	CoinIDs  []int64 `json:"coin_ids,omitempty"`
}

func (c *Client) ImportLots(ctx context.Context, jobID string, lotNumbers []string) (ImportResult, error) {
	body := struct {
		LotNumbers []string `json:"lot_numbers"`
	}{LotNumbers: lotNumbers}
	var out ImportResult
	err := c.post(ctx, fmt.Sprintf("/api/v2/auction/jobs/%s/import", jobID), body, &out)
	return out, err
}
