// Package main provides the entrypoint for the crop recommendation
// API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/api"
	"github.com/khusa71/agritech-chat-assistant/internal/api/middleware"
	"github.com/khusa71/agritech-chat-assistant/internal/config"
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/market/agmarknet"
	rainmeteo "github.com/khusa71/agritech-chat-assistant/internal/rainfall/openmeteo"
	"github.com/khusa71/agritech-chat-assistant/internal/recommend"
	"github.com/khusa71/agritech-chat-assistant/internal/soil/soilgrids"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
	"github.com/khusa71/agritech-chat-assistant/internal/telemetry"
	weathermeteo "github.com/khusa71/agritech-chat-assistant/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "agritech-api"

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
		Str("env", cfg.Env).
		Msg("starting crop recommendation API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	catalog, err := crop.DefaultCatalog(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load crop catalog")
	}
	log.Info().Int("crops", catalog.Len()).Msg("crop catalog loaded")

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

	soilClient := soilgrids.New(soilgrids.ClientConfig{
		BaseURL:    cfg.SoilGridsBaseURL,
		HTTPClient: soilHTTP,
		Logger:     log,
	})
	weatherClient := weathermeteo.New(weathermeteo.ClientConfig{
		BaseURL:      cfg.OpenMeteoBaseURL,
		ForecastDays: cfg.WeatherForecastDays,
		HTTPClient:   weatherHTTP,
		Logger:       log,
	})
	rainfallClient := rainmeteo.New(rainmeteo.ClientConfig{
		BaseURL:    cfg.ArchiveBaseURL,
		PeriodDays: cfg.RainfallPeriodDays,
		HTTPClient: rainfallHTTP,
		Logger:     log,
	})
	marketClient := agmarknet.New(agmarknet.ClientConfig{
		BaseURL: cfg.AgmarknetBaseURL,
		APIKey:  cfg.AgmarknetAPIKey,
		RegionOf: func(lat, lon float64) string {
			_, region := places.Locate(lat, lon)
			return region
		},
		HTTPClient: marketHTTP,
		Logger:     log,
	})

	locations := location.NewService(location.ServiceConfig{
		Soil:     soilClient,
		Weather:  weatherClient,
		Rainfall: rainfallClient,
		Market:   marketClient,
		Cache: location.NewSnapshotCache(location.CacheConfig{
			TTL:      cfg.CacheTTL,
			Capacity: cfg.CacheCapacity,
		}),
		Places:       places,
		Registry:     registry,
		FetchTimeout: cfg.SourceFetchTimeout,
		Logger:       log,
	})
	log.Info().Msg("location snapshot service initialized")

	ranker := recommend.NewRanker(recommend.RankerConfig{
		Catalog:          catalog,
		MinScore:         cfg.MinScore,
		MaxResults:       cfg.MaxResults,
		ProfitCeilingINR: cfg.ProfitCeilingINR,
		Logger:           log,
	})
	log.Info().Msg("recommendation ranker initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   metrics,
		Catalog:   catalog,
		Locations: locations,
		Ranker:    ranker,
		Registry:  registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
