// Package main provides the entrypoint for the snapshot warming
// worker. The worker pre-fetches location snapshots for the major
// growing regions on a fixed schedule so API requests hit a warm
// cache.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/config"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/market/agmarknet"
	rainmeteo "github.com/khusa71/agritech-chat-assistant/internal/rainfall/openmeteo"
	"github.com/khusa71/agritech-chat-assistant/internal/soil/soilgrids"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
	weathermeteo "github.com/khusa71/agritech-chat-assistant/internal/weather/openmeteo"
	"github.com/khusa71/agritech-chat-assistant/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "agritech-worker"

	cfg, err := config.Load()
	if err != nil {
		fatalLog := zerolog.New(os.Stderr)
		fatalLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("starting snapshot warming worker")

	registry := resilience.NewRegistry()
	places := location.DefaultPlaceIndex()

	soilHTTP := resilience.NewClient(resilience.ClientConfig{Name: "soilgrids"})
	weatherHTTP := resilience.NewClient(resilience.ClientConfig{Name: "openmeteo"})
	rainfallHTTP := resilience.NewClient(resilience.ClientConfig{Name: "openmeteo-archive"})
	marketHTTP := resilience.NewClient(resilience.ClientConfig{Name: "agmarknet"})
	registry.Register("soilgrids", soilHTTP)
	registry.Register("openmeteo", weatherHTTP)
	registry.Register("openmeteo-archive", rainfallHTTP)
	registry.Register("agmarknet", marketHTTP)

	locations := location.NewService(location.ServiceConfig{
		Soil: soilgrids.New(soilgrids.ClientConfig{
			BaseURL:    cfg.SoilGridsBaseURL,
			HTTPClient: soilHTTP,
			Logger:     log,
		}),
		Weather: weathermeteo.New(weathermeteo.ClientConfig{
			BaseURL:      cfg.OpenMeteoBaseURL,
			ForecastDays: cfg.WeatherForecastDays,
			HTTPClient:   weatherHTTP,
			Logger:       log,
		}),
		Rainfall: rainmeteo.New(rainmeteo.ClientConfig{
			BaseURL:    cfg.ArchiveBaseURL,
			PeriodDays: cfg.RainfallPeriodDays,
			HTTPClient: rainfallHTTP,
			Logger:     log,
		}),
		Market: agmarknet.New(agmarknet.ClientConfig{
			BaseURL: cfg.AgmarknetBaseURL,
			APIKey:  cfg.AgmarknetAPIKey,
			RegionOf: func(lat, lon float64) string {
				_, region := places.Locate(lat, lon)
				return region
			},
			HTTPClient: marketHTTP,
			Logger:     log,
		}),
		Cache: location.NewSnapshotCache(location.CacheConfig{
			TTL:      cfg.CacheTTL,
			Capacity: cfg.CacheCapacity,
		}),
		Places:       places,
		Registry:     registry,
		FetchTimeout: cfg.SourceFetchTimeout,
		Logger:       log,
	})

	job := worker.NewWarmJob(worker.WarmJobConfig{
		Locations: locations,
		Logger:    log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(cfg.RefreshInterval).Do(func() {
		job.Run(ctx)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule warming job")
	}
	scheduler.StartAsync()

	// First run immediately so the cache is warm before the interval
	// elapses.
	go job.Run(ctx)

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		metrics := job.Metrics()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":"%s","totalRuns":%d,"lastRunAt":"%s"}`,
			Version, metrics.TotalRuns, metrics.LastRunAt.Format(time.RFC3339))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
