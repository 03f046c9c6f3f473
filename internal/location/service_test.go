package location_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/market"
	"github.com/khusa71/agritech-chat-assistant/internal/rainfall"
	"github.com/khusa71/agritech-chat-assistant/internal/soil"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
	"github.com/khusa71/agritech-chat-assistant/internal/weather"
)

type mockSources struct {
	mu        sync.Mutex
	calls     map[string]int
	fail      map[string]bool
	delay     map[string]time.Duration
}

func newMockSources() *mockSources {
	return &mockSources{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		delay: make(map[string]time.Duration),
	}
}

func (m *mockSources) record(ctx context.Context, name string) error {
	m.mu.Lock()
	m.calls[name]++
	fail := m.fail[name]
	delay := m.delay[name]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New(name + " unavailable")
	}
	return nil
}

func (m *mockSources) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

type mockSoil struct{ m *mockSources }

func (s mockSoil) Name() string { return "soil" }
func (s mockSoil) FetchSoil(ctx context.Context, lat, lon float64) (*soil.Profile, error) {
	if err := s.m.record(ctx, "soil"); err != nil {
		return nil, err
	}
	return soil.NewProfile(soil.Properties{PH: 6.5, OrganicCarbon: 1.5, BulkDensity: 1.3, ClayPct: 25, SandPct: 40, SiltPct: 35}, 5, time.Now()), nil
}

type mockWeather struct{ m *mockSources }

func (s mockWeather) Name() string { return "weather" }
func (s mockWeather) FetchWeather(ctx context.Context, lat, lon float64) (*weather.Summary, error) {
	if err := s.m.record(ctx, "weather"); err != nil {
		return nil, err
	}
	return &weather.Summary{Current: weather.Current{TemperatureC: 26}}, nil
}

type mockRainfall struct{ m *mockSources }

func (s mockRainfall) Name() string { return "rainfall" }
func (s mockRainfall) FetchRainfall(ctx context.Context, lat, lon float64) (*rainfall.Series, error) {
	if err := s.m.record(ctx, "rainfall"); err != nil {
		return nil, err
	}
	return &rainfall.Series{PeriodDays: 30}, nil
}

type mockMarket struct{ m *mockSources }

func (s mockMarket) Name() string { return "market" }
func (s mockMarket) FetchMarket(ctx context.Context, lat, lon float64) (*market.PriceSet, error) {
	if err := s.m.record(ctx, "market"); err != nil {
		return nil, err
	}
	return &market.PriceSet{Market: "test"}, nil
}

func newService(m *mockSources, cfg location.ServiceConfig) *location.Service {
	cfg.Soil = mockSoil{m}
	cfg.Weather = mockWeather{m}
	cfg.Rainfall = mockRainfall{m}
	cfg.Market = mockMarket{m}
	cfg.Logger = zerolog.Nop()
	return location.NewService(cfg)
}

func TestFetchSnapshotAssemblesAllSources(t *testing.T) {
	m := newMockSources()
	svc := newService(m, location.ServiceConfig{})

	snap, err := svc.FetchSnapshot(context.Background(), 18.5204, 73.8567)
	require.NoError(t, err)

	assert.True(t, snap.Complete())
	assert.Equal(t, 4, snap.SourceCount())
	assert.Equal(t, "Pune", snap.City)
	assert.Equal(t, "Maharashtra", snap.Region)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestFetchSnapshotRejectsInvalidCoordinates(t *testing.T) {
	m := newMockSources()
	svc := newService(m, location.ServiceConfig{})

	_, err := svc.FetchSnapshot(context.Background(), 91, 0)
	assert.ErrorIs(t, err, location.ErrInvalidCoordinates)

	_, err = svc.FetchSnapshot(context.Background(), 0, -181)
	assert.ErrorIs(t, err, location.ErrInvalidCoordinates)

	assert.Equal(t, 0, m.callCount("soil"), "no fetch should happen for invalid input")
}

func TestFetchSnapshotToleratesPartialFailure(t *testing.T) {
	m := newMockSources()
	m.fail["soil"] = true
	m.fail["market"] = true
	svc := newService(m, location.ServiceConfig{})

	snap, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	assert.Nil(t, snap.Soil)
	assert.Nil(t, snap.Market)
	assert.NotNil(t, snap.Weather)
	assert.NotNil(t, snap.Rainfall)
	assert.False(t, snap.Complete())
	assert.Equal(t, 2, snap.SourceCount())
}

func TestFetchSnapshotReturnsEmptySnapshotWhenAllSourcesFail(t *testing.T) {
	m := newMockSources()
	for _, name := range []string{"soil", "weather", "rainfall", "market"} {
		m.fail[name] = true
	}
	svc := newService(m, location.ServiceConfig{})

	snap, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Nil(t, snap.Soil)
	assert.Nil(t, snap.Weather)
	assert.Nil(t, snap.Rainfall)
	assert.Nil(t, snap.Market)
	assert.Equal(t, 0, snap.SourceCount())
	assert.InDelta(t, 18.52, snap.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 73.85, snap.Coordinates.Lon, 1e-9)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestFetchSnapshotDoesNotCacheEmptySnapshots(t *testing.T) {
	m := newMockSources()
	for _, name := range []string{"soil", "weather", "rainfall", "market"} {
		m.fail[name] = true
	}
	svc := newService(m, location.ServiceConfig{})

	_, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	_, err = svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	assert.Equal(t, 2, m.callCount("soil"), "an empty snapshot must not be cached")
}

func TestFetchSnapshotServesFromCache(t *testing.T) {
	m := newMockSources()
	svc := newService(m, location.ServiceConfig{})

	first, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	second, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	assert.Same(t, first, second, "repeat fetch within TTL must return the cached snapshot")
	assert.Equal(t, 1, m.callCount("soil"))
	assert.Equal(t, 1, m.callCount("weather"))

	stats := svc.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestFetchSnapshotRefetchesAfterInvalidate(t *testing.T) {
	m := newMockSources()
	svc := newService(m, location.ServiceConfig{})

	_, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	svc.InvalidateCache()

	_, err = svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	assert.Equal(t, 2, m.callCount("rainfall"))
}

func TestFetchSnapshotBranchTimeout(t *testing.T) {
	m := newMockSources()
	m.delay["market"] = 200 * time.Millisecond
	svc := newService(m, location.ServiceConfig{FetchTimeout: 30 * time.Millisecond})

	start := time.Now()
	snap, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	assert.Nil(t, snap.Market, "slow branch should time out")
	assert.NotNil(t, snap.Soil)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "fan-out must not wait for the slow branch's full delay")
}

func TestFetchSnapshotRecordsSourceHealth(t *testing.T) {
	m := newMockSources()
	m.fail["rainfall"] = true
	reg := resilience.NewRegistry()
	reg.Register("soil", resilience.NewClient(resilience.ClientConfig{Name: "soil"}))
	reg.Register("rainfall", resilience.NewClient(resilience.ClientConfig{Name: "rainfall"}))

	svc := newService(m, location.ServiceConfig{Registry: reg})

	_, err := svc.FetchSnapshot(context.Background(), 18.52, 73.85)
	require.NoError(t, err)

	soilHealth := reg.Health("soil")
	require.NotNil(t, soilHealth)
	assert.NotNil(t, soilHealth.LastSuccessAt)

	rainHealth := reg.Health("rainfall")
	require.NotNil(t, rainHealth)
	assert.NotNil(t, rainHealth.LastFailureAt)
	assert.Contains(t, rainHealth.LastError, "unavailable")
}
