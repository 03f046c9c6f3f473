package location

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

// defaultFetchTimeout bounds each source branch of the fan-out.
const defaultFetchTimeout = 30 * time.Second

// ServiceConfig configures the snapshot aggregation service.
type ServiceConfig struct {
	Soil     SoilSource
	Weather  WeatherSource
	Rainfall RainfallSource
	Market   MarketSource

	// Cache is optional; a default cache is created when nil.
	Cache *SnapshotCache

	// Places is optional; the default reference table is used when nil.
	Places *PlaceIndex

	// Registry, when set, receives per-source success/failure marks.
	Registry *resilience.Registry

	// FetchTimeout bounds each source branch. Default: 30s.
	FetchTimeout time.Duration

	Logger zerolog.Logger
}

// Service builds location snapshots. Each snapshot fans out to the
// four sources concurrently; a failed branch leaves its field nil,
// so even a total upstream outage yields an empty snapshot rather
// than an error.
type Service struct {
	soil     SoilSource
	weather  WeatherSource
	rainfall RainfallSource
	market   MarketSource

	cache    *SnapshotCache
	places   *PlaceIndex
	registry *resilience.Registry
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewService creates the aggregation service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Cache == nil {
		cfg.Cache = NewSnapshotCache(CacheConfig{})
	}
	if cfg.Places == nil {
		cfg.Places = DefaultPlaceIndex()
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Service{
		soil:     cfg.Soil,
		weather:  cfg.Weather,
		rainfall: cfg.Rainfall,
		market:   cfg.Market,
		cache:    cfg.Cache,
		places:   cfg.Places,
		registry: cfg.Registry,
		timeout:  cfg.FetchTimeout,
		logger:   cfg.Logger.With().Str("component", "location").Logger(),
	}
}

// FetchSnapshot returns the environmental snapshot for the point,
// served from cache when fresh. Repeated calls inside the cache TTL
// return the identical snapshot.
func (s *Service) FetchSnapshot(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	coords, err := NewCoordinates(lat, lon)
	if err != nil {
		return nil, err
	}

	if snap, ok := s.cache.Get(lat, lon); ok {
		s.logger.Debug().Float64("lat", lat).Float64("lon", lon).Msg("snapshot cache hit")
		return snap, nil
	}

	snap := s.gather(ctx, coords)
	snap.City, snap.Region = s.places.Locate(lat, lon)

	// An all-nil snapshot is still a valid answer (consumers score it
	// neutrally), but caching it would pin an outage for a whole TTL.
	if snap.SourceCount() == 0 {
		s.logger.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("all sources failed, returning empty snapshot")
		return snap, nil
	}

	s.cache.Put(lat, lon, snap)

	s.logger.Info().
		Float64("lat", lat).
		Float64("lon", lon).
		Str("city", snap.City).
		Str("region", snap.Region).
		Int("sources", snap.SourceCount()).
		Msg("assembled location snapshot")

	return snap, nil
}

// CacheStats exposes the snapshot cache counters.
func (s *Service) CacheStats() CacheStats { return s.cache.Stats() }

// InvalidateCache drops all cached snapshots.
func (s *Service) InvalidateCache() { s.cache.Invalidate() }

func (s *Service) gather(ctx context.Context, coords Coordinates) *Snapshot {
	snap := &Snapshot{Coordinates: coords, CapturedAt: time.Now().UTC()}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		branch(s, ctx, coords, s.soil.Name(), s.soil.FetchSoil, &snap.Soil)
	}()
	go func() {
		defer wg.Done()
		branch(s, ctx, coords, s.weather.Name(), s.weather.FetchWeather, &snap.Weather)
	}()
	go func() {
		defer wg.Done()
		branch(s, ctx, coords, s.rainfall.Name(), s.rainfall.FetchRainfall, &snap.Rainfall)
	}()
	go func() {
		defer wg.Done()
		branch(s, ctx, coords, s.market.Name(), s.market.FetchMarket, &snap.Market)
	}()

	wg.Wait()
	return snap
}

// branch runs one source fetch under its own timeout and stores the
// result. Failures are logged and recorded but otherwise swallowed;
// partial snapshots are expected.
func branch[T any](s *Service, ctx context.Context, coords Coordinates, name string,
	fetch func(context.Context, float64, float64) (*T, error), out **T,
) {
	branchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := fetch(branchCtx, coords.Lat, coords.Lon)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("source", name).
			Float64("lat", coords.Lat).
			Float64("lon", coords.Lon).
			Msg("source fetch failed")
		if s.registry != nil {
			s.registry.RecordFailure(name, err)
		}
		return
	}

	*out = result
	if s.registry != nil {
		s.registry.RecordSuccess(name)
	}
}
