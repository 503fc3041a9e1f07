package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autoparts-storefront/internal/model"
	"autoparts-storefront/internal/transport"
)

// =============================================================================
// STORE API CLIENT
// =============================================================================
//
// HTTP client for the store backend. Authentication is a Django REST token:
//
//   1. Exchange an authenticated browser session cookie for a token
//      (GET /api/login/from-session/ with the session cookie attached)
//   2. Send "Authorization: Token <t>" on protected endpoints
//   3. A 401/403 means the token is stale; the session coordinator decides
//      whether to re-exchange. This client never retries auth itself.
//
// Catalog and shipping-georeference endpoints are public.
// =============================================================================

const (
	pathSessionExchange = "/api/login/from-session/"
	pathProfile         = "/api/profile/"
	pathLogout          = "/api/logout/"
	pathCart            = "/api/cart/"
	pathCartAdd         = "/api/cart/add/%d/"
	pathCartIncrease    = "/api/cart/increase/%d/"
	pathCartDecrease    = "/api/cart/decrease/%d/"
	pathCartRemove      = "/api/cart/remove/%d/"
	pathCartClear       = "/api/cart/clear/"
	pathProduct         = "/api/products/%d/"
	pathRegions         = "/api/shipping/regions/"
	pathCoverage        = "/api/shipping/coverage/%s/"
	pathQuote           = "/api/shipping/quote/"
	pathOrders          = "/api/orders/"
	pathPayment         = "/pay/%d/"

	sessionCookieName = "sessionid"
	userAgent         = "autoparts-storefront/1.0"
)

// Client is the store backend HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client for the store at baseURL.
// Uses the Chrome-fingerprint transport since the store's CDN throttles
// non-browser TLS clients.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewChromeTransport(30 * time.Second),
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client.
// Used by tests against httptest servers where the TLS transport can't apply.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// === Session & Account ===

// ExchangeSession trades an authenticated browser session cookie for an API
// token. A 401/403 here means the cookie itself carries no valid session.
func (c *Client) ExchangeSession(ctx context.Context, sessionCookie string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathSessionExchange, nil, "")
	if err != nil {
		return "", fmt.Errorf("creating exchange request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionCookie})

	var resp tokenResponse
	if err := c.do(req, &resp); err != nil {
		// The exchange endpoint's 401/403 is "not logged in", not a stale token.
		if errors.Is(err, model.ErrInvalidToken) {
			return "", model.NewNoSessionError("no active store session")
		}
		return "", err
	}

	if resp.Token == "" {
		return "", model.NewNoSessionError("exchange returned empty token")
	}
	return resp.Token, nil
}

// FetchProfile returns the account behind token.
// Doubles as token validation: an invalid token yields INVALID_TOKEN.
func (c *Client) FetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathProfile, nil, token)
	if err != nil {
		return nil, fmt.Errorf("creating profile request: %w", err)
	}

	var resp profileResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &model.Profile{Username: resp.Username, Email: resp.Email}, nil
}

// Logout invalidates the token server-side. Best effort; local credential
// cleanup happens regardless of the result.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, pathLogout, nil, token)
	if err != nil {
		return fmt.Errorf("creating logout request: %w", err)
	}
	return c.do(req, nil)
}

// === HTTP Helpers ===

// newRequest creates a request with JSON headers and optional token auth.
func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}, token string) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	return req, nil
}

// do executes the request and decodes the response.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewNetworkError("store", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewNetworkError("store", err)
	}

	if resp.StatusCode >= 400 {
		return c.parseError(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// parseError converts store API errors to model.APIError.
func (c *Client) parseError(statusCode int, body []byte) error {
	var storeErr errorResponse
	json.Unmarshal(body, &storeErr) // Best effort parse

	msg := storeErr.Error
	if msg == "" {
		msg = storeErr.Detail
	}

	switch statusCode {
	case 401, 403:
		reason := msg
		if reason == "" {
			reason = "store rejected the token"
		}
		return model.NewInvalidTokenError(reason)
	case 404:
		return model.NewNotFoundError("resource")
	case 400:
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	default:
		return model.NewServerRejectedError(statusCode, msg)
	}
}
