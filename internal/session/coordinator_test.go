package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"autoparts-storefront/internal/credstore"
	"autoparts-storefront/internal/model"
)

// fakeAPI implements API with overridable behavior per test.
type fakeAPI struct {
	exchangeFn func(ctx context.Context, cookie string) (string, error)
	profileFn  func(ctx context.Context, token string) (*model.Profile, error)
	logoutFn   func(ctx context.Context, token string) error

	exchangeCalls atomic.Int32
	profileCalls  atomic.Int32
	logoutCalls   atomic.Int32
}

func (f *fakeAPI) ExchangeSession(ctx context.Context, cookie string) (string, error) {
	f.exchangeCalls.Add(1)
	if f.exchangeFn != nil {
		return f.exchangeFn(ctx, cookie)
	}
	return "fresh-token", nil
}

func (f *fakeAPI) FetchProfile(ctx context.Context, token string) (*model.Profile, error) {
	f.profileCalls.Add(1)
	if f.profileFn != nil {
		return f.profileFn(ctx, token)
	}
	return &model.Profile{Username: "maria", Email: "maria@example.cl"}, nil
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.logoutCalls.Add(1)
	if f.logoutFn != nil {
		return f.logoutFn(ctx, token)
	}
	return nil
}

type fakeRedirector struct {
	calls atomic.Int32
}

func (r *fakeRedirector) RedirectToLogin() { r.calls.Add(1) }

func newTestCoordinator(api *fakeAPI, creds credstore.Store, redirector Redirector) *Coordinator {
	return New(Config{
		API:           api,
		Credentials:   creds,
		SessionCookie: "sess-cookie",
		Redirector:    redirector,
	})
}

func TestEnsureTokenValidStored(t *testing.T) {
	api := &fakeAPI{}
	creds := credstore.NewMemStore()
	creds.SetToken("stored-token")

	coord := newTestCoordinator(api, creds, nil)

	token, err := coord.EnsureToken(context.Background())
	if err != nil {
		t.Fatalf("EnsureToken: %v", err)
	}
	if token != "stored-token" {
		t.Errorf("token = %q, want stored-token", token)
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("exchange called %d times, want 0", got)
	}
	if got := api.profileCalls.Load(); got != 1 {
		t.Errorf("profile called %d times, want 1", got)
	}
}

func TestEnsureTokenAbsentVariants(t *testing.T) {
	// Values browsers historically left behind must count as absent.
	for _, stored := range []string{"", "undefined", "null", "   ", "\t\n"} {
		t.Run("stored="+stored, func(t *testing.T) {
			api := &fakeAPI{}
			creds := credstore.NewMemStore()
			creds.SetToken(stored)

			coord := newTestCoordinator(api, creds, nil)

			token, err := coord.EnsureToken(context.Background())
			if err != nil {
				t.Fatalf("EnsureToken: %v", err)
			}
			if token != "fresh-token" {
				t.Errorf("token = %q, want fresh-token", token)
			}
			if got := api.exchangeCalls.Load(); got != 1 {
				t.Errorf("exchange called %d times, want 1", got)
			}
			if got := api.profileCalls.Load(); got != 0 {
				t.Errorf("profile called %d times for absent token, want 0", got)
			}

			persisted, _ := creds.Token()
			if persisted != "fresh-token" {
				t.Errorf("persisted token = %q, want fresh-token", persisted)
			}
		})
	}
}

func TestEnsureTokenRejectedReExchangesOnce(t *testing.T) {
	api := &fakeAPI{
		profileFn: func(ctx context.Context, token string) (*model.Profile, error) {
			return nil, model.NewInvalidTokenError("expired")
		},
	}
	creds := credstore.NewMemStore()
	creds.SetToken("stale-token")

	coord := newTestCoordinator(api, creds, nil)

	token, err := coord.EnsureToken(context.Background())
	if err != nil {
		t.Fatalf("EnsureToken: %v", err)
	}
	if token != "fresh-token" {
		t.Errorf("token = %q, want fresh-token", token)
	}
	if got := api.exchangeCalls.Load(); got != 1 {
		t.Errorf("exchange called %d times, want exactly 1", got)
	}
}

func TestEnsureTokenNetworkErrorKeepsToken(t *testing.T) {
	api := &fakeAPI{
		profileFn: func(ctx context.Context, token string) (*model.Profile, error) {
			return nil, model.NewNetworkError("store", errors.New("timeout"))
		},
	}
	creds := credstore.NewMemStore()
	creds.SetToken("stored-token")

	coord := newTestCoordinator(api, creds, nil)

	_, err := coord.EnsureToken(context.Background())
	if !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("exchange called %d times on network failure, want 0", got)
	}

	persisted, _ := creds.Token()
	if persisted != "stored-token" {
		t.Errorf("token was dropped on network failure: %q", persisted)
	}
}

func TestEnsureTokenSingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{
		exchangeFn: func(ctx context.Context, cookie string) (string, error) {
			close(started)
			<-release
			return "fresh-token", nil
		},
	}
	creds := credstore.NewMemStore()
	coord := newTestCoordinator(api, creds, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstToken string
	var firstErr error
	go func() {
		defer wg.Done()
		firstToken, firstErr = coord.EnsureToken(context.Background())
	}()

	<-started

	// Second caller while exchange is in flight must fail fast.
	_, err := coord.EnsureToken(context.Background())
	if !errors.Is(err, model.ErrNoSession) {
		t.Errorf("concurrent caller err = %v, want ErrNoSession", err)
	}

	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first caller: %v", firstErr)
	}
	if firstToken != "fresh-token" {
		t.Errorf("first caller token = %q", firstToken)
	}
	if got := api.exchangeCalls.Load(); got != 1 {
		t.Errorf("exchange called %d times, want 1", got)
	}
}

func TestExchangeLatchReleasedAfterFailure(t *testing.T) {
	fail := true
	api := &fakeAPI{
		exchangeFn: func(ctx context.Context, cookie string) (string, error) {
			if fail {
				return "", model.NewNetworkError("store", errors.New("down"))
			}
			return "fresh-token", nil
		},
	}
	creds := credstore.NewMemStore()
	coord := newTestCoordinator(api, creds, nil)

	if _, err := coord.EnsureToken(context.Background()); err == nil {
		t.Fatal("first exchange should fail")
	}

	fail = false
	token, err := coord.EnsureToken(context.Background())
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if token != "fresh-token" {
		t.Errorf("token = %q", token)
	}
}

func TestRedirectFiresExactlyOnce(t *testing.T) {
	api := &fakeAPI{
		exchangeFn: func(ctx context.Context, cookie string) (string, error) {
			return "", model.NewNoSessionError("not logged in")
		},
	}
	creds := credstore.NewMemStore()
	redirector := &fakeRedirector{}
	coord := newTestCoordinator(api, creds, redirector)

	for i := 0; i < 3; i++ {
		if _, err := coord.EnsureToken(context.Background()); !errors.Is(err, model.ErrNoSession) {
			t.Fatalf("attempt %d: err = %v, want ErrNoSession", i, err)
		}
	}

	if got := redirector.calls.Load(); got != 1 {
		t.Errorf("redirect fired %d times, want exactly 1", got)
	}
}

func TestRedirectOnAnyExchangeFailure(t *testing.T) {
	// Network failures and missing sessions both end the same way: the
	// token is gone and the user is sent to log in again.
	tests := []struct {
		name string
		err  error
	}{
		{"network failure", model.NewNetworkError("store", errors.New("down"))},
		{"no session", model.NewNoSessionError("not logged in")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				profileFn: func(ctx context.Context, token string) (*model.Profile, error) {
					return nil, model.NewInvalidTokenError("expired")
				},
				exchangeFn: func(ctx context.Context, cookie string) (string, error) {
					return "", tt.err
				},
			}
			creds := credstore.NewMemStore()
			creds.SetToken("rejected-token")
			redirector := &fakeRedirector{}
			coord := newTestCoordinator(api, creds, redirector)

			if _, err := coord.EnsureToken(context.Background()); err == nil {
				t.Fatal("EnsureToken should fail when the exchange fails")
			}
			if got := redirector.calls.Load(); got != 1 {
				t.Errorf("redirect fired %d times, want 1", got)
			}
			token, _ := creds.Token()
			if token != "" {
				t.Errorf("token after failed exchange = %q, want cleared", token)
			}
		})
	}
}

func TestTokenIfAvailable(t *testing.T) {
	api := &fakeAPI{}
	creds := credstore.NewMemStore()
	coord := newTestCoordinator(api, creds, nil)

	if _, ok := coord.TokenIfAvailable(context.Background()); ok {
		t.Error("TokenIfAvailable = true with empty store")
	}
	if got := api.profileCalls.Load(); got != 0 {
		t.Errorf("empty store triggered %d profile calls, want 0", got)
	}

	creds.SetToken("stored")
	token, ok := coord.TokenIfAvailable(context.Background())
	if !ok || token != "stored" {
		t.Errorf("TokenIfAvailable = %q, %v", token, ok)
	}
	if got := api.profileCalls.Load(); got != 1 {
		t.Errorf("stored token validated with %d profile calls, want 1", got)
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("TokenIfAvailable issued %d exchange requests, want 0", got)
	}
}

func TestTokenIfAvailableRejectedToken(t *testing.T) {
	api := &fakeAPI{
		profileFn: func(ctx context.Context, token string) (*model.Profile, error) {
			return nil, model.NewInvalidTokenError("expired")
		},
	}
	creds := credstore.NewMemStore()
	creds.SetToken("stale-token")
	redirector := &fakeRedirector{}
	coord := newTestCoordinator(api, creds, redirector)

	if token, ok := coord.TokenIfAvailable(context.Background()); ok {
		t.Errorf("rejected token %q reported as available", token)
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("rejection triggered %d exchanges, want 0", got)
	}
	if got := redirector.calls.Load(); got != 0 {
		t.Errorf("rejection fired %d redirects, want 0", got)
	}
}

func TestIsAuthenticatedDoesNotExchange(t *testing.T) {
	api := &fakeAPI{}
	creds := credstore.NewMemStore()
	redirector := &fakeRedirector{}
	coord := newTestCoordinator(api, creds, redirector)

	if coord.IsAuthenticated(context.Background()) {
		t.Error("IsAuthenticated = true with empty store")
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("anonymous check issued %d exchange requests, want 0", got)
	}
	if got := redirector.calls.Load(); got != 0 {
		t.Errorf("anonymous check fired %d login redirects, want 0", got)
	}

	creds.SetToken("stored")
	if !coord.IsAuthenticated(context.Background()) {
		t.Error("IsAuthenticated = false with a backend-accepted token")
	}
	if got := api.exchangeCalls.Load(); got != 0 {
		t.Errorf("authenticated check issued %d exchange requests, want 0", got)
	}
}

func TestLogout(t *testing.T) {
	api := &fakeAPI{}
	creds := credstore.NewMemStore()
	creds.SetToken("stored")
	coord := newTestCoordinator(api, creds, nil)

	if err := coord.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := api.logoutCalls.Load(); got != 1 {
		t.Errorf("server logout called %d times, want 1", got)
	}
	token, _ := creds.Token()
	if token != "" {
		t.Errorf("token after logout = %q, want empty", token)
	}
}

func TestLogoutClearsLocallyWhenServerFails(t *testing.T) {
	api := &fakeAPI{
		logoutFn: func(ctx context.Context, token string) error {
			return model.NewNetworkError("store", errors.New("down"))
		},
	}
	creds := credstore.NewMemStore()
	creds.SetToken("stored")
	coord := newTestCoordinator(api, creds, nil)

	if err := coord.Logout(context.Background()); err != nil {
		t.Fatalf("Logout should not propagate server failure: %v", err)
	}
	token, _ := creds.Token()
	if token != "" {
		t.Errorf("token after logout = %q, want empty", token)
	}
}

func TestTokenPresent(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{" abc ", true},
		{"", false},
		{"undefined", false},
		{"null", false},
		{"  ", false},
	}
	for _, tt := range tests {
		if got := tokenPresent(tt.input); got != tt.want {
			t.Errorf("tokenPresent(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
