// MCP transport handler for the storefront client using the official MCP Go SDK.
// Exposes session, cart, shipping, and checkout operations as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"autoparts-storefront/internal/cart"
	"autoparts-storefront/internal/checkout"
	"autoparts-storefront/internal/model"
)

// === MCP Tool Input/Output Types ===

// EmptyInput is the input schema for tools that take no arguments.
type EmptyInput struct{}

// SessionStatusOutput reports whether a backend-accepted session exists.
type SessionStatusOutput struct {
	Authenticated bool `json:"authenticated"`
}

// CartItemInput identifies a product line.
type CartItemInput struct {
	ProductID int64 `json:"product_id" jsonschema:"product ID,required"`
}

// CartAddInput is the input schema for the cart_add tool.
type CartAddInput struct {
	ProductID int64 `json:"product_id" jsonschema:"product ID,required"`
	Quantity  int   `json:"quantity" jsonschema:"units to add,required"`
}

// CartViewOutput is the active cart with tax-inclusive totals. A selected
// shipping quote folds into the grand total.
type CartViewOutput struct {
	Lines      []model.CartLine `json:"lines"`
	Totals     model.Totals     `json:"totals"`
	TotalItems int              `json:"total_items"`
}

// CartMutationOutput is returned by every cart-changing tool so the agent
// sees the resulting cart without a second call.
type CartMutationOutput struct {
	Lines      []model.CartLine `json:"lines"`
	TotalItems int              `json:"total_items"`
}

// RegionsOutput lists the carrier's serviced regions.
type RegionsOutput struct {
	Regions []model.Region `json:"regions"`
}

// CoverageInput is the input schema for the shipping_coverage tool.
type CoverageInput struct {
	RegionID string `json:"region_id" jsonschema:"region ID from shipping_regions,required"`
}

// CoverageOutput lists the serviced comunas of one region.
type CoverageOutput struct {
	Areas []model.CoverageArea `json:"areas"`
}

// QuoteInput is the input schema for the shipping_quote tool.
// Quotes are computed for the cart as it stands; changing the cart or the
// destination afterwards invalidates them.
type QuoteInput struct {
	RegionID   string `json:"region_id" jsonschema:"destination region ID,required"`
	CountyCode string `json:"county_code" jsonschema:"destination comuna code,required"`
	Address    string `json:"address" jsonschema:"street address,required"`
}

// QuoteOutput is the quote set with the default selection.
type QuoteOutput struct {
	Quotes   []model.Quote `json:"quotes"`
	Selected int           `json:"selected"`
}

// SelectQuoteInput is the input schema for the shipping_select tool.
type SelectQuoteInput struct {
	Index int `json:"index" jsonschema:"zero-based index into the quote list,required"`
}

// CheckoutInput is the input schema for the checkout_submit tool.
type CheckoutInput struct {
	Delivery      string `json:"delivery" jsonschema:"delivery type: ship or pickup,required"`
	PaymentMethod string `json:"payment_method" jsonschema:"payment method, e.g. webpay,required"`
	RegionID      string `json:"region_id,omitempty" jsonschema:"destination region ID (ship only)"`
	CountyCode    string `json:"county_code,omitempty" jsonschema:"destination comuna code (ship only)"`
	Address       string `json:"address,omitempty" jsonschema:"street address (ship only)"`
	Notes         string `json:"notes,omitempty" jsonschema:"order notes"`
}

// CheckoutStateOutput reports the checkout flow position.
type CheckoutStateOutput struct {
	State string `json:"state"`
}

// NewMCPServer creates an MCP server with all storefront tools registered.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "autoparts-storefront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Auto parts storefront client. Use these tools to manage the " +
				"cart, calculate shipping to a Chilean comuna, and place orders. " +
				"Prices are in CLP and include 19% IVA.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_status",
		Description: "Check whether the store session is authenticated.",
	}, h.mcpSessionStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_logout",
		Description: "Log out of the store and discard the local token.",
	}, h.mcpSessionLogout)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_view",
		Description: "View the active cart with tax-inclusive CLP totals.",
	}, h.mcpCartView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_add",
		Description: "Add units of a product to the cart. Invalidates any shipping quotes.",
	}, h.mcpCartAdd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_increase",
		Description: "Raise a cart line's quantity by one. Invalidates any shipping quotes.",
	}, h.mcpCartIncrease)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_decrease",
		Description: "Lower a cart line's quantity by one; the line disappears at zero. Invalidates any shipping quotes.",
	}, h.mcpCartDecrease)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_remove",
		Description: "Remove a cart line entirely. Invalidates any shipping quotes.",
	}, h.mcpCartRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_clear",
		Description: "Empty the cart. Invalidates any shipping quotes.",
	}, h.mcpCartClear)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_migrate",
		Description: "Push guest cart lines into the server cart after login. Lines that fail stay local for retry.",
	}, h.mcpCartMigrate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shipping_regions",
		Description: "List the regions the carrier services.",
	}, h.mcpShippingRegions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shipping_coverage",
		Description: "List the comunas serviced within one region.",
	}, h.mcpShippingCoverage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shipping_quote",
		Description: "Request courier quotes for the current cart to a destination. The first quote is preselected.",
	}, h.mcpShippingQuote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "shipping_select",
		Description: "Select a shipping quote by index from the last shipping_quote result.",
	}, h.mcpShippingSelect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "checkout_submit",
		Description: "Place the order. Ship delivery requires a fresh shipping quote for the exact cart and destination.",
	}, h.mcpCheckoutSubmit)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "checkout_reset",
		Description: "Return the checkout flow to idle after a placed or failed order.",
	}, h.mcpCheckoutReset)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpSessionStatus(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *SessionStatusOutput, error) {
	return nil, &SessionStatusOutput{Authenticated: h.session.IsAuthenticated(ctx)}, nil
}

func (h *Handler) mcpSessionLogout(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *SessionStatusOutput, error) {
	if err := h.session.Logout(ctx); err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &SessionStatusOutput{Authenticated: false}, nil
}

func (h *Handler) mcpCartView(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *CartViewOutput, error) {
	lines, err := h.cart.CurrentLines(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	if lines == nil {
		// A nil slice marshals as JSON null, which the declared output
		// schema rejects; an empty cart must serialize as [].
		lines = []model.CartLine{}
	}
	total, err := h.cart.TotalItems(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	totals := cart.ComputeTotals(lines, model.DeliveryPickup, 0)
	if quote, ok := h.shipping.Selected(); ok {
		totals = cart.ComputeTotals(lines, model.DeliveryShip, quote.Cost)
	}

	return nil, &CartViewOutput{Lines: lines, Totals: totals, TotalItems: total}, nil
}

func (h *Handler) mcpCartAdd(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartAddInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.Add(ctx, input.ProductID, input.Quantity)
	})
}

func (h *Handler) mcpCartIncrease(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartItemInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.Increase(ctx, input.ProductID)
	})
}

func (h *Handler) mcpCartDecrease(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartItemInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.Decrease(ctx, input.ProductID)
	})
}

func (h *Handler) mcpCartRemove(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartItemInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.Remove(ctx, input.ProductID)
	})
}

func (h *Handler) mcpCartClear(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.Clear(ctx)
	})
}

func (h *Handler) mcpCartMigrate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *CartMutationOutput, error) {
	return h.mutateCart(ctx, func() error {
		return h.cart.MigrateGuestCart(ctx)
	})
}

// mutateCart runs a cart mutation, invalidates held shipping quotes, and
// returns the resulting cart.
func (h *Handler) mutateCart(ctx context.Context, mutate func() error) (*mcp.CallToolResult, *CartMutationOutput, error) {
	if err := mutate(); err != nil {
		return nil, nil, h.mcpError(err)
	}
	h.shipping.Invalidate()

	lines, err := h.cart.CurrentLines(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	if lines == nil {
		// A nil slice marshals as JSON null, which the declared output
		// schema rejects; an empty cart must serialize as [].
		lines = []model.CartLine{}
	}
	total, err := h.cart.TotalItems(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &CartMutationOutput{Lines: lines, TotalItems: total}, nil
}

func (h *Handler) mcpShippingRegions(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *RegionsOutput, error) {
	regions, err := h.geo.Regions(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &RegionsOutput{Regions: regions}, nil
}

func (h *Handler) mcpShippingCoverage(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CoverageInput,
) (*mcp.CallToolResult, *CoverageOutput, error) {
	areas, err := h.geo.Coverage(ctx, input.RegionID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &CoverageOutput{Areas: areas}, nil
}

func (h *Handler) mcpShippingQuote(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input QuoteInput,
) (*mcp.CallToolResult, *QuoteOutput, error) {
	lines, err := h.cart.CurrentLines(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}

	dest := model.Destination{
		RegionID:   input.RegionID,
		CountyCode: input.CountyCode,
		Address:    input.Address,
	}
	quotes, err := h.shipping.RequestQuotes(ctx, dest, lines)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &QuoteOutput{Quotes: quotes, Selected: 0}, nil
}

func (h *Handler) mcpShippingSelect(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SelectQuoteInput,
) (*mcp.CallToolResult, *model.Quote, error) {
	quote, err := h.shipping.Select(input.Index)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &quote, nil
}

func (h *Handler) mcpCheckoutSubmit(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CheckoutInput,
) (*mcp.CallToolResult, *model.Order, error) {
	checkoutReq := checkout.Request{
		Delivery:      model.DeliveryType(input.Delivery),
		PaymentMethod: input.PaymentMethod,
		Notes:         input.Notes,
	}
	if checkoutReq.Delivery == model.DeliveryShip {
		checkoutReq.Destination = &model.Destination{
			RegionID:   input.RegionID,
			CountyCode: input.CountyCode,
			Address:    input.Address,
		}
	}

	order, err := h.checkout.Submit(ctx, checkoutReq)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, order, nil
}

func (h *Handler) mcpCheckoutReset(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input EmptyInput,
) (*mcp.CallToolResult, *CheckoutStateOutput, error) {
	h.checkout.Reset()
	return nil, &CheckoutStateOutput{State: string(h.checkout.State())}, nil
}

// mcpError converts internal errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
