// Package app provides lifecycle management for the forward-slots API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/service"
)

// ForwardingApp encapsulates the components needed to run the API server
type ForwardingApp struct {
	config          *config.Config
	manifestManager config.ManifestManager
	service         service.ForwardingService
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts the
// server down gracefully
func (app *ForwardingApp) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The default manifest is watched for
// changes while serving when a manifest manager is configured.
func (app *ForwardingApp) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server listening", "address", ln.Addr().String())
		if err := app.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return app.Stop(app.shutdownTimeout)
	})

	if app.manifestManager != nil {
		g.Go(func() error {
			defer func() {
				if err := app.manifestManager.Close(); err != nil {
					slog.Error("Failed to close manifest watcher", "error", err)
				}
			}()
			return app.manifestManager.WatchManifest(gctx)
		})
	}

	return g.Wait()
}

// Stop gracefully shuts down the HTTP server with the given timeout
func (app *ForwardingApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *ForwardingApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *ForwardingApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetService returns the forwarding service behind the API
func (app *ForwardingApp) GetService() service.ForwardingService {
	return app.service
}
