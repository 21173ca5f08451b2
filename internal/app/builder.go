package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/forward-slots/internal/api"
	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/service"
	"github.com/stacklok/forward-slots/internal/telemetry"
)

const (
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// ForwardingAppOption configures the app builder
type ForwardingAppOption func(*forwardingAppConfig) error

type forwardingAppConfig struct {
	config   *config.Config
	manifest *config.Manifest
	manager  config.ManifestManager

	// Optional override, primarily for testing
	service service.ForwardingService

	address         string
	middlewares     []func(http.Handler) http.Handler
	requestTimeout  time.Duration
	shutdownTimeout time.Duration

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...ForwardingAppOption) (*forwardingAppConfig, error) {
	cfg := &forwardingAppConfig{
		address:         config.DefaultAddress,
		requestTimeout:  defaultRequestTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewForwardingApp builds the service, router and HTTP server
func NewForwardingApp(ctx context.Context, opts ...ForwardingAppOption) (*ForwardingApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build forwarding service: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	return &ForwardingApp{
		config:          cfg.config,
		manifestManager: cfg.manager,
		service:         svc,
		httpServer:      httpServer,
		shutdownTimeout: cfg.shutdownTimeout,
	}, nil
}

// WithConfig sets the server configuration. Its address applies unless
// WithAddress is given afterwards.
func WithConfig(c *config.Config) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.config = c
		if c != nil && c.Address != "" {
			cfg.address = c.Address
		}
		return nil
	}
}

// WithManifest sets the manifest served by GET /api/v1/forward
func WithManifest(m *config.Manifest) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.manifest = m
		return nil
	}
}

// WithManifestManager serves the manifest held by mgr and watches its file
// while the app runs. It takes precedence over WithManifest.
func WithManifestManager(mgr config.ManifestManager) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.manager = mgr
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("address is not valid: %w", err)
		}
		if port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		switch host {
		case "localhost":
			host = "127.0.0.1"
		case "":
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(net.JoinHostPort(host, port)); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithService injects a forwarding service (for testing)
func WithService(svc service.ForwardingService) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.service = svc
		return nil
	}
}

// WithShutdownTimeout sets how long Stop waits for in-flight requests
func WithShutdownTimeout(timeout time.Duration) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		cfg.shutdownTimeout = timeout
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and
// forwarding metrics
func WithMeterProvider(mp metric.MeterProvider) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for HTTP and
// forwarding spans
func WithTracerProvider(tp trace.TracerProvider) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves a Prometheus scrape handler at /metrics
func WithMetricsHandler(h http.Handler) ForwardingAppOption {
	return func(cfg *forwardingAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func buildService(b *forwardingAppConfig) (service.ForwardingService, error) {
	if b.service != nil {
		return b.service, nil
	}

	opts := []service.Option{
		service.WithManifest(b.manifest),
		service.WithTracerProvider(b.tracerProvider),
	}
	if b.manager != nil {
		opts = append(opts, service.WithManifestSource(b.manager))
	}

	if b.meterProvider != nil {
		metrics, err := telemetry.NewForwardingMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create forwarding metrics: %w", err)
		}
		opts = append(opts, service.WithMetrics(metrics))
		slog.Info("Forwarding metrics enabled")
	}

	return service.New(opts...), nil
}

//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *forwardingAppConfig,
	svc service.ForwardingService,
) (*http.Server, error) {
	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry goes first so rejected and timed out requests are observed too
	if b.tracerProvider != nil {
		middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, middlewares...)
	}
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, middlewares...)
		slog.Info("HTTP metrics middleware enabled")
	}

	router := api.NewServer(svc,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
	)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
