package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/asad/wellhaven/internal/catalog"
	"github.com/asad/wellhaven/internal/config"
	"github.com/asad/wellhaven/internal/core"
	"github.com/asad/wellhaven/internal/httpx"
	"github.com/asad/wellhaven/internal/kv"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/metrics"
	"github.com/asad/wellhaven/internal/services/storefront"
	"github.com/asad/wellhaven/internal/session"
	"github.com/asad/wellhaven/internal/state"
)

const shutdownTimeout = 10 * time.Second

// app is everything runStart wires together.
type app struct {
	handler http.Handler
	store   kv.Store
}

// Close releases the storage backend.
func (a *app) Close() error {
	if c, ok := a.store.(kv.Closer); ok {
		return c.Close()
	}
	return nil
}

// runStart initializes and starts the HTTP server.
func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting wellhaven",
		logging.String("version", Version),
		logging.Int("port", cfg.Port),
		logging.String("storage_backend", cfg.StorageBackend),
		logging.String("data_dir", cfg.DataDir),
		logging.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to close storage", logging.ErrorField(err))
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildApp opens storage and assembles the services and edge router for cfg.
func buildApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	store, err := kv.Open(ctx, kv.Options{
		Backend:       cfg.StorageBackend,
		DataDir:       cfg.DataDir,
		SQLitePath:    cfg.SQLitePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a := &app{store: store}

	passwords, err := session.SchemeByName(cfg.PasswordScheme)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		rec      metrics.Recorder = metrics.Nop{}
		gatherer prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rec = metrics.NewCollector(reg)
		gatherer = reg
	}

	cat := catalog.Default()
	profiles := state.NewManager(store, cat, state.Options{
		KeyPrefix:      cfg.KeyPrefix,
		Passwords:      passwords,
		AuthLatency:    cfg.AuthLatency,
		BookingLatency: cfg.BookingLatency,
	}, logger)

	registry := core.NewRegistry()
	registry.Register(
		storefront.NewCatalogService(cat, logger),
		storefront.NewAuthService(profiles, logger, rec),
		storefront.NewCartService(profiles, cat, logger, rec),
		storefront.NewBookingService(profiles, logger, rec),
	)
	logger.Info("registered services",
		logging.Int("count", len(registry.Services())),
		logging.Strings("enabled", cfg.EnabledServices),
	)

	a.handler = httpx.NewEdgeRouter(cfg, registry, logger, rec, gatherer)
	return a, nil
}
