package api

import (
	"context"
	"fmt"

	"numis-cli/internal/model"
)

func (c *Client) ListProvenance(ctx context.Context, coinID int64) ([]model.ProvenanceEntry, error) {
	var out []model.ProvenanceEntry
	err := c.get(ctx, fmt.Sprintf("/api/v2/coins/%d/provenance", coinID), &out)
	return out, err
}

func (c *Client) GetProvenance(ctx context.Context, id int64) (model.ProvenanceEntry, error) {
	var out model.ProvenanceEntry
	err := c.get(ctx, fmt.Sprintf("/api/v2/provenance/%d", id), &out)
	return out, err
}

// AddProvenance creates an entry; the response carries the server-assigned ID
// replacing any client-local temp ID.
func (c *Client) AddProvenance(ctx context.Context, coinID int64, entry model.ProvenanceEntry) (model.ProvenanceEntry, error) {
	var out model.ProvenanceEntry
	err := c.post(ctx, fmt.Sprintf("/api/v2/coins/%d/provenance", coinID), entry, &out)
	return out, err
}

func (c *Client) UpdateProvenance(ctx context.Context, entry model.ProvenanceEntry) (model.ProvenanceEntry, error) {
	var out model.ProvenanceEntry
	err := c.put(ctx, fmt.Sprintf("/api/v2/provenance/%d", entry.ID), entry, &out)
	return out, err
}

func (c *Client) DeleteProvenance(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/provenance/%d", id))
}
