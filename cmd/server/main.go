// Command server runs the wildfire monitoring API: FIRMS hotspot queries,
// Earth Engine vegetation analyses, and citizen fire reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/alertafuego/wildfire-service/internal/adapter/firms"
	"github.com/alertafuego/wildfire-service/internal/adapter/gee"
	"github.com/alertafuego/wildfire-service/internal/adapter/httpapi"
	"github.com/alertafuego/wildfire-service/internal/alerts"
	"github.com/alertafuego/wildfire-service/internal/auth"
	"github.com/alertafuego/wildfire-service/internal/cache"
	"github.com/alertafuego/wildfire-service/internal/config"
	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/hotspot"
	"github.com/alertafuego/wildfire-service/internal/observability"
	"github.com/alertafuego/wildfire-service/internal/store"
	"github.com/alertafuego/wildfire-service/internal/vegetation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	firmsClient := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSTimeout, metrics, logger)
	firmsClient.SetBaseURL(cfg.FIRMSBaseURL)

	var hotspotCache cache.Cache
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		hotspotCache = cache.NewRedis(client, cfg.CacheTTL, logger)
		logger.Info("hotspot cache", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		hotspotCache = cache.NewMemory(cfg.CacheMaxEntries, cfg.CacheTTL, clockwork.NewRealClock())
		logger.Info("hotspot cache", "backend", "memory", "max_entries", cfg.CacheMaxEntries)
	}

	hotspots := hotspot.New(firmsClient, hotspotCache, cfg.FIRMSBBox, metrics, logger)

	// The analysis backend is optional: without credentials the vegetation
	// routes answer 503 instead of blocking startup.
	var engine httpapi.VegetationEngine
	if cfg.GEEEnabled() {
		archive, err := gee.New(ctx, gee.Config{
			BaseURL:         cfg.GEEBaseURL,
			Project:         cfg.GEEProject,
			CredentialsFile: cfg.GEECredentialsFile,
			Timeout:         cfg.GEETimeout,
		}, metrics, logger)
		if err != nil {
			logger.Error("analysis backend init failed, vegetation routes disabled", "error", err)
		} else {
			engine = vegetation.New(archive, domain.DefaultRegion(), logger)
			metrics.GEEEnabled.Set(1)
		}
	} else {
		logger.Info("analysis backend not configured, vegetation routes disabled")
	}

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	var publisher *alerts.Publisher
	if cfg.AlertsEnabled() {
		publisher = alerts.NewPublisher(cfg.KafkaBrokers, cfg.KafkaAlertsTopic, metrics, logger)
		defer publisher.Close()
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertsTopic)
	}

	deps := httpapi.Deps{
		Hotspots:   hotspots,
		Vegetation: engine,
		Store:      db,
		Auth:       authManager,
		Logger:     logger,
	}
	if publisher != nil {
		deps.Alerts = publisher
	}
	server := httpapi.NewServer(cfg.HTTPAddr, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
