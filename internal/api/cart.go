package api

import (
	"context"
	"fmt"
	"net/http"

	"autoparts-storefront/internal/model"
)

// === Server Cart Operations ===
//
// All cart endpoints require a token. Quantity adjustments are separate
// increase/decrease endpoints on the backend, each moving one unit.

// FetchCart retrieves the authenticated user's server cart.
func (c *Client) FetchCart(ctx context.Context, token string) ([]model.CartLine, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathCart, nil, token)
	if err != nil {
		return nil, fmt.Errorf("creating cart request: %w", err)
	}

	var resp cartResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	lines := make([]model.CartLine, 0, len(resp.Items))
	for _, item := range resp.Items {
		lines = append(lines, lineFromPayload(item))
	}
	return lines, nil
}

// AddItem adds quantity units of a product to the server cart.
func (c *Client) AddItem(ctx context.Context, token string, productID int64, quantity int) error {
	if quantity <= 0 {
		return model.NewValidationError("quantity", "must be positive")
	}

	path := fmt.Sprintf(pathCartAdd, productID)
	req, err := c.newRequest(ctx, http.MethodPost, path, &addItemRequest{Quantity: quantity}, token)
	if err != nil {
		return fmt.Errorf("creating add-item request: %w", err)
	}
	return c.do(req, nil)
}

// IncreaseItem raises a cart line's quantity by one.
func (c *Client) IncreaseItem(ctx context.Context, token string, productID int64) error {
	path := fmt.Sprintf(pathCartIncrease, productID)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, token)
	if err != nil {
		return fmt.Errorf("creating increase request: %w", err)
	}
	return c.do(req, nil)
}

// DecreaseItem lowers a cart line's quantity by one.
// The backend removes the line when quantity reaches zero.
func (c *Client) DecreaseItem(ctx context.Context, token string, productID int64) error {
	path := fmt.Sprintf(pathCartDecrease, productID)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, token)
	if err != nil {
		return fmt.Errorf("creating decrease request: %w", err)
	}
	return c.do(req, nil)
}

// RemoveItem deletes a cart line regardless of quantity.
func (c *Client) RemoveItem(ctx context.Context, token string, productID int64) error {
	path := fmt.Sprintf(pathCartRemove, productID)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, token)
	if err != nil {
		return fmt.Errorf("creating remove request: %w", err)
	}
	return c.do(req, nil)
}

// ClearCart empties the server cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, pathCartClear, nil, token)
	if err != nil {
		return fmt.Errorf("creating clear request: %w", err)
	}
	return c.do(req, nil)
}
