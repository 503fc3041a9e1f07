// Package checkout validates and submits orders. One submission attempt at a
// time; success hands off to the hosted payment page.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"autoparts-storefront/internal/cart"
	"autoparts-storefront/internal/model"
)

// State is the submitter's position in the checkout flow.
type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateSubmitting  State = "submitting"
	StateRedirecting State = "redirecting"
	StateFailed      State = "failed"
)

// TokenSource supplies a validated token for submission.
type TokenSource interface {
	EnsureToken(ctx context.Context) (string, error)
}

// CartSource provides the lines to order and residual guest migration.
type CartSource interface {
	CurrentLines(ctx context.Context) ([]model.CartLine, error)
	MigrateGuestCart(ctx context.Context) error
}

// QuoteSource resolves the selected shipping quote, refusing stale state.
type QuoteSource interface {
	SelectedFor(dest model.Destination, lines []model.CartLine) (model.Quote, bool)
}

// OrderAPI is the backend surface for placing orders.
type OrderAPI interface {
	FetchProfile(ctx context.Context, token string) (*model.Profile, error)
	SubmitOrder(ctx context.Context, token string, draft *model.OrderDraft, idempotencyKey string) (*model.Order, error)
}

// Request is one checkout attempt.
type Request struct {
	Delivery      model.DeliveryType
	Destination   *model.Destination // required for ship
	PaymentMethod string
	Notes         string
}

// Config holds the submitter's dependencies.
type Config struct {
	Session TokenSource
	Cart    CartSource
	Quotes  QuoteSource
	API     OrderAPI
	Logger  *slog.Logger
}

// Submitter drives checkout. Safe for concurrent use; only one submission
// runs at a time.
type Submitter struct {
	session TokenSource
	cart    CartSource
	quotes  QuoteSource
	api     OrderAPI
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a Submitter in the idle state.
func New(cfg Config) *Submitter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		session: cfg.Session,
		cart:    cfg.Cart,
		quotes:  cfg.Quotes,
		api:     cfg.API,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the current flow state.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the submitter to idle after a completed or failed attempt.
func (s *Submitter) Reset() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Submit validates the request and places the order. Exactly one POST per
// call; no retries. The server cart is left intact on success so the backend
// stays the source of truth until payment confirms.
//
// Flow: idle/failed → validating → submitting → redirecting on success,
// failed on any error. A submission already in flight (or an unacknowledged
// success) is rejected.
func (s *Submitter) Submit(ctx context.Context, req Request) (*model.Order, error) {
	s.mu.Lock()
	switch s.state {
	case StateValidating, StateSubmitting:
		s.mu.Unlock()
		return nil, model.NewValidationError("checkout", "submission already in progress")
	case StateRedirecting:
		s.mu.Unlock()
		return nil, model.NewValidationError("checkout", "order already placed, reset before submitting again")
	}
	s.state = StateValidating
	s.mu.Unlock()

	order, err := s.submit(ctx, req)
	if err != nil {
		s.setState(StateFailed)
		return nil, err
	}
	s.setState(StateRedirecting)
	return order, nil
}

func (s *Submitter) submit(ctx context.Context, req Request) (*model.Order, error) {
	if !req.Delivery.Valid() {
		return nil, model.NewValidationError("delivery", "must be ship or pickup")
	}
	if req.PaymentMethod == "" {
		return nil, model.NewValidationError("payment_method", "select a payment method")
	}

	token, err := s.session.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}

	// Any guest lines left behind (failed earlier migration, or items added
	// while logged out) must land server-side before the order is cut.
	if err := s.cart.MigrateGuestCart(ctx); err != nil {
		return nil, fmt.Errorf("migrating guest cart: %w", err)
	}

	lines, err := s.cart.CurrentLines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.NewValidationError("cart", "cannot check out an empty cart")
	}

	var shippingCost int64
	var dest *model.Destination
	if req.Delivery == model.DeliveryShip {
		if err := validateDestination(req.Destination); err != nil {
			return nil, err
		}
		quote, ok := s.quotes.SelectedFor(*req.Destination, lines)
		if !ok {
			return nil, model.NewValidationError("quote",
				"calculate shipping for the current cart and destination first")
		}
		if quote.Cost <= 0 {
			return nil, model.NewValidationError("quote", "selected shipping option has no cost")
		}
		shippingCost = quote.Cost
		dest = req.Destination
	}

	profile, err := s.api.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	totals := cart.ComputeTotals(lines, req.Delivery, shippingCost)
	draft := &model.OrderDraft{
		Delivery:      req.Delivery,
		Destination:   dest,
		ShippingCost:  shippingCost,
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   totals.Grand,
		Email:         profile.Email,
		Notes:         req.Notes,
	}

	s.setState(StateSubmitting)

	order, err := s.api.SubmitOrder(ctx, token, draft, uuid.NewString())
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.String("delivery", string(req.Delivery)),
		slog.Int64("shipping_cost", shippingCost))
	return order, nil
}

func (s *Submitter) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// validateDestination checks the fields shipping requires.
func validateDestination(dest *model.Destination) error {
	if dest == nil {
		return model.NewValidationError("destination", "required for shipping")
	}
	if dest.Address == "" {
		return model.NewValidationError("address", "required for shipping")
	}
	if dest.CountyCode == "" {
		return model.NewValidationError("county_code", "required for shipping")
	}
	if dest.RegionID == "" {
		return model.NewValidationError("region_id", "required for shipping")
	}
	return nil
}
