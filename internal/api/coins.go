package api

import (
	"context"
	"fmt"

	"numis-cli/internal/model"
)

// CoinPage is one page of the coin listing.
type CoinPage struct {
	Items    []model.Coin `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Total    int          `json:"total"`
}

func (c *Client) ListCoins(ctx context.Context, page, pageSize int) (CoinPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	var out CoinPage
	err := c.get(ctx, fmt.Sprintf("/api/v2/coins?page=%d&page_size=%d", page, pageSize), &out)
	return out, err
}

func (c *Client) GetCoin(ctx context.Context, id int64) (model.Coin, error) {
	var out model.Coin
	err := c.get(ctx, fmt.Sprintf("/api/v2/coins/%d", id), &out)
	return out, err
}

func (c *Client) CreateCoin(ctx context.Context, coin model.Coin) (model.Coin, error) {
	var out model.Coin
	err := c.post(ctx, "/api/v2/coins", coin, &out)
	return out, err
}

func (c *Client) UpdateCoin(ctx context.Context, coin model.Coin) (model.Coin, error) {
	var out model.Coin
	err := c.put(ctx, fmt.Sprintf("/api/v2/coins/%d", coin.ID), coin, &out)
	return out, err
}

func (c *Client) DeleteCoin(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/coins/%d", id))
}
