package api

import (
	"context"
	"fmt"

	"numis-cli/internal/model"
)

func (c *Client) CollectionStats(ctx context.Context) (model.CollectionStats, error) {
	var out model.CollectionStats
	err := c.get(ctx, "/api/v2/stats", &out)
	return out, err
}

func (c *Client) ListWishlist(ctx context.Context) ([]model.WishlistItem, error) {
	var out []model.WishlistItem
	err := c.get(ctx, "/api/v2/wishlist", &out)
	return out, err
}

func (c *Client) AddWishlist(ctx context.Context, item model.WishlistItem) (model.WishlistItem, error) {
	var out model.WishlistItem
	err := c.post(ctx, "/api/v2/wishlist", item, &out)
	return out, err
}

func (c *Client) RemoveWishlist(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v2/wishlist/%d", id))
}
