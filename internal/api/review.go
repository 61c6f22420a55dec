package api

import (
	"context"
	"fmt"

	"numis-cli/internal/model"
)

// ListReview fetches the pending queue for one tab. Vocabulary has its own
// endpoint (it predates the generic review queue); the other tabs share one.
func (c *Client) ListReview(ctx context.Context, tab model.ReviewTab) ([]model.ReviewItem, error) {
	path := fmt.Sprintf("/api/v2/review/%s", tab)
	if tab == model.TabVocabulary {
		path = "/api/v2/vocab/review"
	}
	var out []model.ReviewItem
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	// The server omits the tab on the vocabulary endpoint.
	for i := range out {
		if out[i].Tab == "" {
			out[i].Tab = tab
		}
	}
	return out, nil
}

// ApproveItem accepts a pending suggestion. RejectItem is its compensating
// action, and vice versa.
func (c *Client) ApproveItem(ctx context.Context, tab model.ReviewTab, id int64) error {
	return c.post(ctx, reviewActionPath(tab, id, "approve"), nil, nil)
}

func (c *Client) RejectItem(ctx context.Context, tab model.ReviewTab, id int64) error {
	return c.post(ctx, reviewActionPath(tab, id, "reject"), nil, nil)
}

func reviewActionPath(tab model.ReviewTab, id int64, action string) string {
	if tab == model.TabVocabulary {
		return fmt.Sprintf("/api/v2/vocab/review/%d/%s", id, action)
	}
	return fmt.Sprintf("/api/v2/review/%d/%s", id, action)
}

func (c *Client) ReviewCounts(ctx context.Context) (model.ReviewCounts, error) {
	var out model.ReviewCounts
	err := c.get(ctx, "/api/v2/review/counts", &out)
	return out, err
}

const (
	ResolutionAccepted = "accepted"
	ResolutionRejected = "rejected"
)

// BulkResolveDiscrepancies resolves several audit discrepancies for one coin
// in a single call (the "data" tab's bulk path).
func (c *Client) BulkResolveDiscrepancies(ctx context.Context, coinID int64, ids []int64, resolution string) error {
	body := struct {
		IDs        []int64 `json:"ids"`
		Resolution string  `json:"resolution"`
	}{IDs: ids, Resolution: resolution}
	return c.post(ctx, fmt.Sprintf("/api/v2/audit/%d/discrepancies/bulk-resolve", coinID), body, nil)
}
