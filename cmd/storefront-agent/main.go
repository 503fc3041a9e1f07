// storefront-agent exposes the auto parts storefront client over MCP.
// Designed for Cloud Run deployment; one process drives one store session.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoparts-storefront/internal/api"
	"autoparts-storefront/internal/cart"
	"autoparts-storefront/internal/checkout"
	"autoparts-storefront/internal/config"
	"autoparts-storefront/internal/credstore"
	"autoparts-storefront/internal/guestcart"
	"autoparts-storefront/internal/handler"
	"autoparts-storefront/internal/middleware"
	"autoparts-storefront/internal/session"
	"autoparts-storefront/internal/shipping"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("store_url", cfg.Store.StoreURL),
		slog.String("credentials_file", cfg.Store.CredentialsFile),
	)

	// Wire the core: one API client, one credential store, and the
	// session/cart/shipping/checkout services on top.
	client := api.New(cfg.Store.StoreURL)
	creds := credstore.NewFileStore(cfg.Store.CredentialsFile)

	sess := session.New(session.Config{
		API:           client,
		Credentials:   creds,
		SessionCookie: cfg.Store.SessionCookie,
		Logger:        logger,
	})

	guest := guestcart.New(creds, logger)

	engine := cart.New(cart.Config{
		Session: sess,
		Server:  client,
		Guest:   guest,
		Catalog: client,
		Logger:  logger,
	})

	negotiator := shipping.New(client, sess, logger)
	geo := shipping.NewCatalog(client)

	submitter := checkout.New(checkout.Config{
		Session: sess,
		Cart:    engine,
		Quotes:  negotiator,
		API:     client,
		Logger:  logger,
	})

	h := handler.New(handler.Config{
		Session:  sess,
		Cart:     engine,
		Shipping: negotiator,
		Geo:      geo,
		Checkout: submitter,
		Logger:   logger,
	})

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → logging → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
