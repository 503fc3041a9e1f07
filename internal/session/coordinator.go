// Package session coordinates the client's API token lifecycle: reading it
// from the credential store, validating it against the backend, and
// re-exchanging the browser session cookie when the token is missing or stale.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"autoparts-storefront/internal/credstore"
	"autoparts-storefront/internal/model"
)

// API is the backend surface the coordinator needs.
type API interface {
	ExchangeSession(ctx context.Context, sessionCookie string) (string, error)
	FetchProfile(ctx context.Context, token string) (*model.Profile, error)
	Logout(ctx context.Context, token string) error
}

// Redirector is notified when the user must log in again.
// The coordinator fires it at most once per process lifetime so a broken
// session can't bounce the user in a loop.
type Redirector interface {
	RedirectToLogin()
}

// Config holds the coordinator's dependencies.
type Config struct {
	API           API
	Credentials   credstore.Store
	SessionCookie string     // browser session cookie value for token exchange
	Redirector    Redirector // optional
	Logger        *slog.Logger
}

// Coordinator manages one token. Safe for concurrent use.
type Coordinator struct {
	api           API
	creds         credstore.Store
	sessionCookie string
	redirector    Redirector
	logger        *slog.Logger

	mu         sync.Mutex
	exchanging bool // exchange in flight; concurrent callers fail fast
	redirected bool // login redirect already fired; never reset
}

// New creates a Coordinator.
func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		api:           cfg.API,
		creds:         cfg.Credentials,
		sessionCookie: cfg.SessionCookie,
		redirector:    cfg.Redirector,
		logger:        logger,
	}
}

// tokenPresent reports whether a stored value is a usable token.
// Browsers historically persisted the literal strings "undefined" and "null";
// those count as absent, as does anything blank.
func tokenPresent(token string) bool {
	trimmed := strings.TrimSpace(token)
	return trimmed != "" && trimmed != "undefined" && trimmed != "null"
}

// EnsureToken returns a token the backend has accepted.
// A stored token is validated with one profile call; a rejected token is
// cleared and re-exchanged exactly once. Network failures during validation
// keep the stored token and surface NETWORK_ERROR.
func (c *Coordinator) EnsureToken(ctx context.Context) (string, error) {
	stored, err := c.creds.Token()
	if err != nil {
		return "", fmt.Errorf("reading stored token: %w", err)
	}

	if !tokenPresent(stored) {
		return c.exchange(ctx)
	}

	if _, err := c.api.FetchProfile(ctx, stored); err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			c.logger.Warn("stored token rejected, re-exchanging session")
			if clearErr := c.creds.ClearToken(); clearErr != nil {
				return "", fmt.Errorf("clearing rejected token: %w", clearErr)
			}
			return c.exchange(ctx)
		}
		return "", err
	}

	return stored, nil
}

// exchange trades the session cookie for a fresh token.
// Single flight: a second caller while one exchange is in flight gets
// NO_SESSION immediately instead of piling on the backend. Any exchange
// failure clears the stored token and fires the login redirect guard; the
// error taxonomy still tells callers what went wrong.
func (c *Coordinator) exchange(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.exchanging {
		c.mu.Unlock()
		return "", model.NewNoSessionError("session exchange already in progress")
	}
	c.exchanging = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.exchanging = false
		c.mu.Unlock()
	}()

	token, err := c.api.ExchangeSession(ctx, c.sessionCookie)
	if err != nil {
		if clearErr := c.creds.ClearToken(); clearErr != nil {
			c.logger.Warn("clearing token after failed exchange",
				slog.String("error", clearErr.Error()))
		}
		c.redirectOnce()
		return "", err
	}

	if err := c.creds.SetToken(token); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}

	c.logger.Info("session exchanged for new token")
	return token, nil
}

// redirectOnce fires the login redirect the first time only.
func (c *Coordinator) redirectOnce() {
	c.mu.Lock()
	already := c.redirected
	c.redirected = true
	c.mu.Unlock()

	if already || c.redirector == nil {
		return
	}
	c.logger.Info("no session available, redirecting to login")
	c.redirector.RedirectToLogin()
}

// IsAuthenticated reports whether the backend accepts the stored token.
// Non-intrusive: no token means false, never an exchange or a redirect, so
// pages that tolerate anonymous visitors can call this freely.
func (c *Coordinator) IsAuthenticated(ctx context.Context) bool {
	_, ok := c.TokenIfAvailable(ctx)
	return ok
}

// TokenIfAvailable returns the stored token once the backend has accepted
// it. Like IsAuthenticated it never exchanges or redirects; a rejected or
// unreachable validation just reports no token.
func (c *Coordinator) TokenIfAvailable(ctx context.Context) (string, bool) {
	stored, err := c.creds.Token()
	if err != nil || !tokenPresent(stored) {
		return "", false
	}
	if _, err := c.api.FetchProfile(ctx, stored); err != nil {
		return "", false
	}
	return stored, true
}

// Logout invalidates the token server-side (best effort) and wipes it
// locally. The local wipe happens even when the server call fails.
func (c *Coordinator) Logout(ctx context.Context) error {
	stored, err := c.creds.Token()
	if err != nil {
		return fmt.Errorf("reading stored token: %w", err)
	}

	if tokenPresent(stored) {
		if err := c.api.Logout(ctx, stored); err != nil {
			c.logger.Warn("server logout failed", slog.String("error", err.Error()))
		}
	}

	return c.creds.ClearToken()
}
