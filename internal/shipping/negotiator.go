// Package shipping negotiates courier quotes for the cart and tracks which
// quote the buyer selected. Quote state is tied to the exact cart and
// destination it was computed for; any change invalidates it.
package shipping

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"autoparts-storefront/internal/model"
)

// Per-line fallbacks for products without physical attributes on record.
const (
	defaultWeightKG    = 1.0
	defaultDimensionCM = 10.0
)

// QuoteAPI is the backend surface that reaches the carrier.
type QuoteAPI interface {
	RequestQuotes(ctx context.Context, token string, dest model.Destination, pkg model.Package) ([]model.Quote, error)
}

// TokenSource supplies a validated token for quote requests.
type TokenSource interface {
	EnsureToken(ctx context.Context) (string, error)
}

// Negotiator requests quotes and holds the selection. Safe for concurrent use.
type Negotiator struct {
	api     QuoteAPI
	session TokenSource
	logger  *slog.Logger

	mu          sync.Mutex
	quotes      []model.Quote
	selected    int
	fingerprint string // cart+destination the quotes were computed for
	valid       bool
}

// New creates a Negotiator.
func New(api QuoteAPI, session TokenSource, logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Negotiator{api: api, session: session, logger: logger}
}

// BuildManifest consolidates cart lines into the single package quoted to
// the carrier. Lines missing weight or dimensions get the defaults. Weight
// and length accumulate across units; width and height take the largest
// line; declared worth is the cart gross.
func BuildManifest(lines []model.CartLine) model.Package {
	var pkg model.Package
	for _, line := range lines {
		weight := line.WeightKG
		if weight <= 0 {
			weight = defaultWeightKG
		}
		length, width, height := line.LengthCM, line.WidthCM, line.HeightCM
		if length <= 0 {
			length = defaultDimensionCM
		}
		if width <= 0 {
			width = defaultDimensionCM
		}
		if height <= 0 {
			height = defaultDimensionCM
		}

		qty := float64(line.Quantity)
		pkg.WeightKG += weight * qty
		pkg.LengthCM += length * qty
		if width > pkg.WidthCM {
			pkg.WidthCM = width
		}
		if height > pkg.HeightCM {
			pkg.HeightCM = height
		}
		pkg.DeclaredWorth += line.Subtotal()
	}
	return pkg
}

// RequestQuotes fetches fresh quotes for the given destination and cart.
// On success the first quote becomes the selection. Any failure wipes the
// held quote state so a stale set can't leak into checkout.
func (n *Negotiator) RequestQuotes(ctx context.Context, dest model.Destination, lines []model.CartLine) ([]model.Quote, error) {
	if dest.CountyCode == "" {
		return nil, model.NewValidationError("county_code", "select a destination comuna first")
	}
	if len(lines) == 0 {
		return nil, model.NewValidationError("cart", "cannot quote an empty cart")
	}

	token, err := n.session.EnsureToken(ctx)
	if err != nil {
		n.Invalidate()
		return nil, err
	}

	pkg := BuildManifest(lines)
	quotes, err := n.api.RequestQuotes(ctx, token, dest, pkg)
	if err != nil {
		n.Invalidate()
		return nil, err
	}

	n.mu.Lock()
	n.quotes = quotes
	n.selected = 0
	n.fingerprint = fingerprint(dest, lines)
	n.valid = true
	n.mu.Unlock()

	n.logger.Info("shipping quotes received",
		slog.String("county", dest.CountyCode),
		slog.Int("options", len(quotes)))
	return quotes, nil
}

// Select picks a quote by index and returns it.
func (n *Negotiator) Select(index int) (model.Quote, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.valid || len(n.quotes) == 0 {
		return model.Quote{}, model.NewValidationError("quote", "no quotes calculated")
	}
	if index < 0 || index >= len(n.quotes) {
		return model.Quote{}, model.NewValidationError("quote",
			fmt.Sprintf("index %d out of range (have %d options)", index, len(n.quotes)))
	}

	n.selected = index
	return n.quotes[index], nil
}

// Selected returns the currently selected quote, if quote state is valid.
func (n *Negotiator) Selected() (model.Quote, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.valid || len(n.quotes) == 0 {
		return model.Quote{}, false
	}
	return n.quotes[n.selected], true
}

// SelectedFor returns the selected quote only if it was computed for exactly
// this destination and cart. Checkout uses this to refuse stale quotes.
func (n *Negotiator) SelectedFor(dest model.Destination, lines []model.CartLine) (model.Quote, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.valid || len(n.quotes) == 0 {
		return model.Quote{}, false
	}
	if n.fingerprint != fingerprint(dest, lines) {
		return model.Quote{}, false
	}
	return n.quotes[n.selected], true
}

// Invalidate discards held quote state. Called whenever the cart or
// destination changes, and on pickup selection.
func (n *Negotiator) Invalidate() {
	n.mu.Lock()
	n.quotes = nil
	n.selected = 0
	n.fingerprint = ""
	n.valid = false
	n.mu.Unlock()
}

// fingerprint identifies one (destination, cart) combination.
func fingerprint(dest model.Destination, lines []model.CartLine) string {
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, fmt.Sprintf("%d:%d", line.ProductID, line.Quantity))
	}
	sort.Strings(entries)
	return dest.RegionID + "|" + dest.CountyCode + "|" + dest.Address + "|" + strings.Join(entries, ",")
}
