package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xregistry-dev/xregistry-server/internal/api"
	"github.com/xregistry-dev/xregistry-server/internal/config"
	"github.com/xregistry-dev/xregistry-server/internal/filter"
	"github.com/xregistry-dev/xregistry-server/internal/service"
	"github.com/xregistry-dev/xregistry-server/internal/service/inmemory"
	"github.com/xregistry-dev/xregistry-server/internal/sources"
	"github.com/xregistry-dev/xregistry-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the query API server",
	Long: `Start the query API server to serve registry entity data.

The server requires a configuration file (--config) that specifies:
- The registries to expose and their data sources (file or API)
- Filter engine settings (metadata fetch caps, indexed attributes, cache)
- Telemetry settings`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	serverRequestTimeout   = 10 * time.Second
	serverReadTimeout      = 10 * time.Second
	serverWriteTimeout     = 15 * time.Second // Must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout      = 60 * time.Second
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}

	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

// engineOptions maps the engine configuration onto filter engine options
// for one registry. Each registry gets its own cache directory so
// persisted entries do not collide.
func engineOptions(cfg *config.Config, registryName string, logger *slog.Logger) filter.Options {
	opts := filter.Options{
		MaxMetadataFetches: cfg.Engine.MaxMetadataFetches,
		FetchConcurrency:   cfg.Engine.FetchConcurrency,
		IndexedAttributes:  cfg.Engine.IndexedAttributes,
		CacheCapacity:      cfg.Engine.Cache.Capacity,
		CacheMaxAge:        cfg.Engine.Cache.GetMaxAge(),
		Logger:             logger,
	}
	if cfg.Engine.Cache.Dir != "" {
		opts.CacheDir = filepath.Join(cfg.Engine.Cache.Dir, registryName)
	}
	return opts
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	address := viper.GetString("address")
	logger := slog.Default()

	logger.Info("Starting query API server", "address", address)

	configPath := viper.GetString("config")
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("Loaded configuration",
		"path", configPath,
		"registries", len(cfg.Registries),
	)

	// Initialize telemetry before anything that records spans or metrics
	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	// sweepCtx bounds the lifetime of the cache sweep goroutines
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()

	factory := sources.NewProviderFactory()
	services := make(map[string]service.RegistryService, len(cfg.Registries))
	for i := range cfg.Registries {
		regCfg := &cfg.Registries[i]

		provider, err := factory.CreateProvider(regCfg)
		if err != nil {
			return fmt.Errorf("failed to create provider for registry %s: %w", regCfg.Name, err)
		}
		logger.Info("Created entity provider",
			"registry", regCfg.Name,
			"source", provider.Source(),
		)

		svc, err := inmemory.New(ctx, provider,
			inmemory.WithLogger(logger.With("registry", regCfg.Name)),
			inmemory.WithEngineOptions(engineOptions(cfg, regCfg.Name, logger)),
		)
		if err != nil {
			return fmt.Errorf("failed to create service for registry %s: %w", regCfg.Name, err)
		}
		services[regCfg.Name] = svc

		if sweeper, ok := svc.(interface{ Engine() *filter.Engine }); ok {
			if interval := cfg.Engine.Cache.GetSweepInterval(); interval > 0 {
				sweeper.Engine().Cache().StartSweep(sweepCtx, interval)
			}
		}
	}

	metricsMiddleware, err := telemetry.MetricsMiddleware(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create metrics middleware: %w", err)
	}

	router := api.NewServer(services,
		api.WithLogger(logger),
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			metricsMiddleware,
			api.LoggingMiddleware(logger),
		),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		logger.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	sweepCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Server shutdown complete")
	return nil
}
