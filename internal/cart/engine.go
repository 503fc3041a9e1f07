// Package cart merges the guest and server carts behind one interface and
// migrates guest lines server-side after login.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"autoparts-storefront/internal/guestcart"
	"autoparts-storefront/internal/model"
)

// TokenSource is the session surface the engine needs.
type TokenSource interface {
	EnsureToken(ctx context.Context) (string, error)
	TokenIfAvailable(ctx context.Context) (string, bool)
}

// ServerCart is the backend cart surface the engine drives.
type ServerCart interface {
	FetchCart(ctx context.Context, token string) ([]model.CartLine, error)
	AddItem(ctx context.Context, token string, productID int64, quantity int) error
	IncreaseItem(ctx context.Context, token string, productID int64) error
	DecreaseItem(ctx context.Context, token string, productID int64) error
	RemoveItem(ctx context.Context, token string, productID int64) error
	ClearCart(ctx context.Context, token string) error
}

// Engine routes cart operations to the server cart when a session exists and
// to the local guest cart otherwise.
type Engine struct {
	session TokenSource
	server  ServerCart
	guest   *guestcart.Store
	catalog guestcart.ProductFetcher
	logger  *slog.Logger

	mu        sync.Mutex
	migrated  bool // a full migration pass completed with no failures
	migrating bool // a pass is in flight; concurrent callers no-op
}

// Config holds the engine's dependencies.
type Config struct {
	Session TokenSource
	Server  ServerCart
	Guest   *guestcart.Store
	Catalog guestcart.ProductFetcher
	Logger  *slog.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		session: cfg.Session,
		server:  cfg.Server,
		guest:   cfg.Guest,
		catalog: cfg.Catalog,
		logger:  logger,
	}
}

// CurrentLines returns the active cart: the server cart when a token exists,
// the materialized guest cart otherwise. An auth failure while a token is
// stored falls back to the guest view rather than erroring the whole cart.
func (e *Engine) CurrentLines(ctx context.Context) ([]model.CartLine, error) {
	if _, ok := e.session.TokenIfAvailable(ctx); !ok {
		return e.guest.Materialize(ctx, e.catalog)
	}

	token, err := e.session.EnsureToken(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoSession) || errors.Is(err, model.ErrInvalidToken) {
			return e.guest.Materialize(ctx, e.catalog)
		}
		return nil, err
	}

	return e.server.FetchCart(ctx, token)
}

// Add puts qty units of a product into whichever cart is active.
func (e *Engine) Add(ctx context.Context, productID int64, qty int) error {
	token, ok := e.activeToken(ctx)
	if !ok {
		return e.guest.Add(productID, qty)
	}
	return e.server.AddItem(ctx, token, productID, qty)
}

// Increase raises a line's quantity by one.
func (e *Engine) Increase(ctx context.Context, productID int64) error {
	token, ok := e.activeToken(ctx)
	if !ok {
		return e.guest.Add(productID, 1)
	}
	return e.server.IncreaseItem(ctx, token, productID)
}

// Decrease lowers a line's quantity by one; the line disappears at zero.
func (e *Engine) Decrease(ctx context.Context, productID int64) error {
	token, ok := e.activeToken(ctx)
	if !ok {
		items, err := e.guest.Items()
		if err != nil {
			return err
		}
		return e.guest.SetQuantity(productID, items[productID]-1)
	}
	return e.server.DecreaseItem(ctx, token, productID)
}

// Remove deletes a line entirely.
func (e *Engine) Remove(ctx context.Context, productID int64) error {
	token, ok := e.activeToken(ctx)
	if !ok {
		return e.guest.Remove(productID)
	}
	return e.server.RemoveItem(ctx, token, productID)
}

// Clear empties the active cart.
func (e *Engine) Clear(ctx context.Context) error {
	token, ok := e.activeToken(ctx)
	if !ok {
		return e.guest.Clear()
	}
	return e.server.ClearCart(ctx, token)
}

// TotalItems counts units across both carts. Residual guest entries (failed
// migrations) still show up in the badge until they land server-side.
func (e *Engine) TotalItems(ctx context.Context) (int, error) {
	guestTotal, err := e.guest.TotalItems()
	if err != nil {
		return 0, err
	}

	if _, ok := e.session.TokenIfAvailable(ctx); !ok {
		return guestTotal, nil
	}

	token, err := e.session.EnsureToken(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoSession) || errors.Is(err, model.ErrInvalidToken) {
			return guestTotal, nil
		}
		return 0, err
	}

	lines, err := e.server.FetchCart(ctx, token)
	if err != nil {
		return 0, err
	}
	serverTotal := 0
	for _, line := range lines {
		serverTotal += line.Quantity
	}
	return guestTotal + serverTotal, nil
}

// MigrateGuestCart pushes guest lines into the server cart, in product ID
// order, one add per line. The guest cart is rewritten once at the end:
// migrated lines leave, failed lines stay for a later retry. A fully clean
// pass latches so subsequent calls are free.
func (e *Engine) MigrateGuestCart(ctx context.Context) error {
	e.mu.Lock()
	if e.migrated || e.migrating {
		e.mu.Unlock()
		return nil
	}
	e.migrating = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.migrating = false
		e.mu.Unlock()
	}()

	items, err := e.guest.Items()
	if err != nil {
		return fmt.Errorf("reading guest cart: %w", err)
	}
	if len(items) == 0 {
		e.mu.Lock()
		e.migrated = true
		e.mu.Unlock()
		return nil
	}

	token, err := e.session.EnsureToken(ctx)
	if err != nil {
		return err
	}

	failed := map[int64]int{}
	var firstErr error
	for _, productID := range sortedIDs(items) {
		if err := e.server.AddItem(ctx, token, productID, items[productID]); err != nil {
			e.logger.Warn("guest line migration failed",
				slog.Int64("product_id", productID),
				slog.String("error", err.Error()))
			failed[productID] = items[productID]
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	// One write after the whole pass, even when some lines failed.
	if err := e.guest.Replace(failed); err != nil {
		return fmt.Errorf("rewriting guest cart after migration: %w", err)
	}

	if firstErr != nil {
		return fmt.Errorf("%d of %d guest lines failed to migrate: %w",
			len(failed), len(items), firstErr)
	}

	e.mu.Lock()
	e.migrated = true
	e.mu.Unlock()
	e.logger.Info("guest cart migrated", slog.Int("lines", len(items)))
	return nil
}

// activeToken reports whether server-side operations should be used,
// resolving the stored token to a validated one.
func (e *Engine) activeToken(ctx context.Context) (string, bool) {
	if _, ok := e.session.TokenIfAvailable(ctx); !ok {
		return "", false
	}
	token, err := e.session.EnsureToken(ctx)
	if err != nil {
		return "", false
	}
	return token, true
}

func sortedIDs(items map[int64]int) []int64 {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
