// Package guestcart manages the anonymous cart: a product→quantity map kept
// in the credential store until the user logs in and it migrates server-side.
package guestcart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"autoparts-storefront/internal/credstore"
	"autoparts-storefront/internal/model"
)

// ProductFetcher looks up catalog records for materializing guest lines.
type ProductFetcher interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}

// Store is the guest cart. All state lives in the credential store; this
// type only holds behavior.
type Store struct {
	creds  credstore.Store
	logger *slog.Logger
}

// New creates a guest cart over the given credential store.
func New(creds credstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{creds: creds, logger: logger}
}

// Add increments a product's quantity by qty.
func (s *Store) Add(productID int64, qty int) error {
	if qty <= 0 {
		return model.NewValidationError("quantity", "must be positive")
	}

	items, err := s.creds.GuestCart()
	if err != nil {
		return fmt.Errorf("reading guest cart: %w", err)
	}
	items[productID] += qty
	return s.creds.SetGuestCart(items)
}

// SetQuantity pins a product's quantity. Zero or negative removes the entry.
func (s *Store) SetQuantity(productID int64, qty int) error {
	items, err := s.creds.GuestCart()
	if err != nil {
		return fmt.Errorf("reading guest cart: %w", err)
	}
	if qty <= 0 {
		delete(items, productID)
	} else {
		items[productID] = qty
	}
	return s.creds.SetGuestCart(items)
}

// Remove deletes a product from the cart.
func (s *Store) Remove(productID int64) error {
	return s.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (s *Store) Clear() error {
	return s.creds.SetGuestCart(nil)
}

// Replace swaps the whole cart in one write. Migration uses this to commit
// the post-migration state atomically.
func (s *Store) Replace(items map[int64]int) error {
	return s.creds.SetGuestCart(items)
}

// Items returns the cart as product ID → quantity.
func (s *Store) Items() (map[int64]int, error) {
	return s.creds.GuestCart()
}

// TotalItems returns the summed quantity across all entries.
func (s *Store) TotalItems() (int, error) {
	items, err := s.creds.GuestCart()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, qty := range items {
		total += qty
	}
	return total, nil
}

// Materialize resolves guest entries into priced cart lines using the public
// catalog. Products that no longer exist are dropped with a warning; any
// other lookup failure aborts so a network blip can't render an empty cart.
// Lines come back ordered by product ID so output is deterministic.
func (s *Store) Materialize(ctx context.Context, products ProductFetcher) ([]model.CartLine, error) {
	items, err := s.creds.GuestCart()
	if err != nil {
		return nil, fmt.Errorf("reading guest cart: %w", err)
	}

	lines := make([]model.CartLine, 0, len(items))
	for _, productID := range sortedIDs(items) {
		product, err := products.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				s.logger.Warn("guest cart references missing product, dropping",
					slog.Int64("product_id", productID))
				continue
			}
			return nil, err
		}
		lines = append(lines, lineFromProduct(product, items[productID]))
	}
	return lines, nil
}

// lineFromProduct builds the unified cart line for a guest entry.
func lineFromProduct(p *model.Product, qty int) model.CartLine {
	return model.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
		ImageURL:  p.ImageURL,
		WeightKG:  p.WeightKG,
		LengthCM:  p.LengthCM,
		WidthCM:   p.WidthCM,
		HeightCM:  p.HeightCM,
	}
}

// sortedIDs returns map keys in ascending order.
func sortedIDs(items map[int64]int) []int64 {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
