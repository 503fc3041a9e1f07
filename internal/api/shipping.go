package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"autoparts-storefront/internal/model"
)

// === Shipping Quotes ===

// RequestQuotes asks the carrier (via the store backend) for shipping
// options to a destination comuna for one consolidated package.
// Returns NO_COVERAGE when the carrier serves no option for the destination.
func (c *Client) RequestQuotes(ctx context.Context, token string, dest model.Destination, pkg model.Package) ([]model.Quote, error) {
	if dest.CountyCode == "" {
		return nil, model.NewValidationError("county_code", "required")
	}

	body := &quoteRequest{
		DestinationCounty: dest.CountyCode,
		Package:           packageToPayload(pkg),
	}

	req, err := c.newRequest(ctx, http.MethodPost, pathQuote, body, token)
	if err != nil {
		return nil, fmt.Errorf("creating quote request: %w", err)
	}

	var resp quoteResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		if isCoverageError(resp.Error) {
			return nil, model.NewNoCoverageError(dest.CountyCode)
		}
		return nil, model.NewServerRejectedError(http.StatusBadGateway, resp.Error)
	}
	if len(resp.Options) == 0 {
		return nil, model.NewNoCoverageError(dest.CountyCode)
	}

	quotes := make([]model.Quote, 0, len(resp.Options))
	for _, opt := range resp.Options {
		quotes = append(quotes, quoteFromPayload(opt))
	}
	return quotes, nil
}

// isCoverageError detects the backend's coverage refusals, which arrive as
// success=false with a message rather than a dedicated status.
func isCoverageError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "coverage") || strings.Contains(lower, "cobertura")
}
