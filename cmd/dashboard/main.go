package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/creekwatch/water-quality-service/internal/adapter/httpserver"
	"github.com/creekwatch/water-quality-service/internal/adapter/nominatim"
	"github.com/creekwatch/water-quality-service/internal/config"
	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/observability"
	"github.com/creekwatch/water-quality-service/internal/service"
	"github.com/creekwatch/water-quality-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := newStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	// Geocoder is feature-flagged; without it every resolution uses the
	// nearest-known-location fallback.
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		geocoder = nominatim.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderTimeout, metrics, logger)
		logger.Info("reverse geocoding enabled", "base_url", cfg.GeocoderBaseURL, "timeout", cfg.GeocoderTimeout)
	} else {
		logger.Info("reverse geocoding disabled, using nearest-known fallback only")
	}

	svc := service.New(st, geocoder, cfg.StrictValidation, logger, metrics)
	srv := httpserver.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.DataFile)
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.NewCSVStore(cfg.DataFile), nil
	}
}
