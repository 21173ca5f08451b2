package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	forwardingapp "github.com/stacklok/forward-slots/internal/app"
	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/telemetry"
	"github.com/stacklok/forward-slots/internal/versions"
)

const telemetryShutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the forwarding API server",
		Long: `Start the forwarding API server.

The optional configuration file (--config) sets the listen address, the
default manifest served by GET /api/v1/forward and OpenTelemetry settings.
--address and --manifest override the values of the file.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "Address to listen on (default \":8080\")")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	cmd.Flags().String("manifest", "", "Path or http(s) URL of the default manifest (YAML format)")
	cmd.Flags().Bool("watch", false, "Reload a local default manifest when its file changes")

	for _, name := range []string{"address", "config", "manifest", "watch"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
		}
	}

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadServerConfig(viper.GetString("config"))
	if err != nil {
		return err
	}

	manifestOpt, err := manifestOption(ctx, cfg)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithVersion(versions.Version),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	opts := []forwardingapp.ForwardingAppOption{
		forwardingapp.WithConfig(cfg),
		manifestOpt,
		forwardingapp.WithMeterProvider(tel.MeterProvider()),
		forwardingapp.WithTracerProvider(tel.TracerProvider()),
		forwardingapp.WithMetricsHandler(tel.MetricsHandler()),
	}
	if address := viper.GetString("address"); address != "" {
		opts = append(opts, forwardingapp.WithAddress(address))
	}

	fa, err := forwardingapp.NewForwardingApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	slog.Info("Starting forwarding API server", "address", fa.GetHTTPServer().Addr)
	return fa.Run(ctx)
}

// manifestOption loads the default manifest named by --manifest or the
// configuration file. Local manifests are watched when requested.
func manifestOption(ctx context.Context, cfg *config.Config) (forwardingapp.ForwardingAppOption, error) {
	location := viper.GetString("manifest")
	if location == "" {
		location = cfg.Manifest
	}
	if location == "" {
		return forwardingapp.WithManifest(nil), nil
	}

	watch := viper.GetBool("watch") || cfg.WatchManifest
	if watch && !config.IsRemote(location) {
		manager, err := config.NewManifestManager(location)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		slog.Info("Loaded default manifest", "location", location, "watch", true)
		return forwardingapp.WithManifestManager(manager), nil
	}
	if watch {
		slog.Warn("Remote manifests are not watched", "location", location)
	}

	manifest, err := config.LoadManifestFrom(ctx, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	slog.Info("Loaded default manifest", "location", location, "targets", len(manifest.Targets))
	return forwardingapp.WithManifest(manifest), nil
}

// loadServerConfig loads the configuration file, or returns the defaults when
// no path is given
func loadServerConfig(path string) (*config.Config, error) {
	if path == "" {
		return &config.Config{}, nil
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", path, "address", cfg.GetAddress())
	return cfg, nil
}
