// Package handler exposes the storefront client over HTTP for agent use.
// The MCP endpoint carries all store operations; health endpoints support
// deployment probes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"autoparts-storefront/internal/checkout"
	"autoparts-storefront/internal/model"
)

// SessionService is the session surface the handler needs.
type SessionService interface {
	IsAuthenticated(ctx context.Context) bool
	Logout(ctx context.Context) error
}

// CartService merges the guest and server carts behind one surface.
type CartService interface {
	CurrentLines(ctx context.Context) ([]model.CartLine, error)
	Add(ctx context.Context, productID int64, qty int) error
	Increase(ctx context.Context, productID int64) error
	Decrease(ctx context.Context, productID int64) error
	Remove(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error
	TotalItems(ctx context.Context) (int, error)
	MigrateGuestCart(ctx context.Context) error
}

// QuoteService negotiates and tracks shipping quotes.
type QuoteService interface {
	RequestQuotes(ctx context.Context, dest model.Destination, lines []model.CartLine) ([]model.Quote, error)
	Select(index int) (model.Quote, error)
	Selected() (model.Quote, bool)
	Invalidate()
}

// GeoService serves the carrier's region and coverage catalog.
type GeoService interface {
	Regions(ctx context.Context) ([]model.Region, error)
	Coverage(ctx context.Context, regionID string) ([]model.CoverageArea, error)
}

// CheckoutService validates and submits orders.
type CheckoutService interface {
	Submit(ctx context.Context, req checkout.Request) (*model.Order, error)
	State() checkout.State
	Reset()
}

// Handler holds dependencies for the agent-facing endpoints.
type Handler struct {
	session  SessionService
	cart     CartService
	shipping QuoteService
	geo      GeoService
	checkout CheckoutService
	logger   *slog.Logger
}

// Config holds the handler's dependencies.
type Config struct {
	Session  SessionService
	Cart     CartService
	Shipping QuoteService
	Geo      GeoService
	Checkout CheckoutService
	Logger   *slog.Logger
}

// New creates a Handler.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		session:  cfg.Session,
		cart:     cfg.Cart,
		shipping: cfg.Shipping,
		geo:      cfg.Geo,
		checkout: cfg.Checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
