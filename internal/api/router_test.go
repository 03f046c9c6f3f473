package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/api"
	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/market"
	"github.com/khusa71/agritech-chat-assistant/internal/rainfall"
	"github.com/khusa71/agritech-chat-assistant/internal/recommend"
	"github.com/khusa71/agritech-chat-assistant/internal/soil"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
	"github.com/khusa71/agritech-chat-assistant/internal/weather"
)

type stubSoil struct{ err error }

func (s stubSoil) FetchSoil(_ context.Context, _, _ float64) (*soil.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return soil.NewProfile(soil.Properties{
		PH: 6.5, OrganicCarbon: 1.5, BulkDensity: 1.3,
		ClayPct: 25, SandPct: 40, SiltPct: 35,
	}, 30, time.Now()), nil
}

func (stubSoil) Name() string { return "soilgrids" }

type stubWeather struct{ err error }

func (s stubWeather) FetchWeather(_ context.Context, _, _ float64) (*weather.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	summary := &weather.Summary{
		Current:   weather.Current{TemperatureC: 22, HumidityPct: 55, Description: "Clear sky"},
		FetchedAt: time.Now(),
	}
	for i := 0; i < 7; i++ {
		summary.Forecast = append(summary.Forecast, weather.ForecastDay{
			Date: time.Now().AddDate(0, 0, i), TempMinC: 18, TempMaxC: 26,
		})
	}
	return summary, nil
}

func (stubWeather) Name() string { return "openmeteo" }

type stubRainfall struct{ err error }

func (s stubRainfall) FetchRainfall(_ context.Context, _, _ float64) (*rainfall.Series, error) {
	if s.err != nil {
		return nil, s.err
	}
	series := &rainfall.Series{PeriodDays: 30, FetchedAt: time.Now()}
	for i := 0; i < 30; i++ {
		series.Records = append(series.Records, rainfall.Record{
			Date: time.Now().AddDate(0, 0, i-30), Millimeters: 2.5,
		})
	}
	return series, nil
}

func (stubRainfall) Name() string { return "openmeteo-archive" }

type stubMarket struct{ err error }

func (s stubMarket) FetchMarket(_ context.Context, _, _ float64) (*market.PriceSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &market.PriceSet{
		Market: "Pune",
		Prices: []market.Price{
			{Crop: "wheat", PerKgINR: 25, Market: "Pune", Date: time.Now()},
			{Crop: "rice", PerKgINR: 35, Market: "Pune", Date: time.Now()},
		},
		FetchedAt: time.Now(),
	}, nil
}

func (stubMarket) Name() string { return "agmarknet" }

type routerOptions struct {
	soilErr, weatherErr, rainfallErr, marketErr error
}

func newTestRouter(t *testing.T, opts routerOptions) http.Handler {
	t.Helper()
	logger := zerolog.New(io.Discard)

	catalog, err := crop.DefaultCatalog(logger)
	require.NoError(t, err)

	registry := resilience.NewRegistry()
	for _, name := range []string{"soilgrids", "openmeteo", "openmeteo-archive", "agmarknet"} {
		registry.Register(name, resilience.NewClient(resilience.ClientConfig{Name: name}))
	}
	locations := location.NewService(location.ServiceConfig{
		Soil:     stubSoil{err: opts.soilErr},
		Weather:  stubWeather{err: opts.weatherErr},
		Rainfall: stubRainfall{err: opts.rainfallErr},
		Market:   stubMarket{err: opts.marketErr},
		Registry: registry,
		Logger:   logger,
	})
	ranker := recommend.NewRanker(recommend.RankerConfig{Catalog: catalog, Logger: logger})

	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    logger,
		Catalog:   catalog,
		Locations: locations,
		Ranker:    ranker,
		Registry:  registry,
	})
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)

	var ready models.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, "ok", ready.Checks["catalog"])
}

func TestRouter_ListCrops(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crops", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)

	var list models.CropListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, len(list.Crops), list.Total)
	assert.Contains(t, list.Crops, "wheat")
	assert.Contains(t, list.Crops, "rice")
}

func TestRouter_GetCrop(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crops/wheat", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)

	var detail models.CropDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "wheat", detail.Name)
	assert.Greater(t, detail.TypicalYieldKgAcre, 0.0)
}

func TestRouter_GetCrop_NotFound(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crops/durian", http.NoBody))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "durian")
}

func TestRouter_CropsByMonth(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crops:by-month?month=12", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)

	var list models.CropListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 12, list.Month)
	assert.Contains(t, list.Crops, "wheat")
	assert.NotContains(t, list.Crops, "rice")
}

func TestRouter_CropsByMonth_Invalid(t *testing.T) {
	for _, month := range []string{"", "0", "13", "july"} {
		rec := httptest.NewRecorder()
		router := newTestRouter(t, routerOptions{})
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/crops:by-month?month="+month, http.NoBody))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "month=%q", month)
	}
}

func TestRouter_FetchSnapshot(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body, _ := json.Marshal(models.SnapshotRequest{Lat: 18.5204, Lon: 73.8567})
	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap models.SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.Complete)
	assert.Equal(t, 4, snap.Sources)
	assert.Equal(t, "Pune", snap.City)
	assert.Equal(t, "Maharashtra", snap.Region)
	require.NotNil(t, snap.Soil)
	assert.Equal(t, "clay_loam", snap.Soil.Texture)
}

func TestRouter_FetchSnapshot_InvalidCoordinates(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body := []byte(`{"lat": 95.0, "lon": 200.0}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Len(t, problem.Errors, 2)
}

func TestRouter_FetchSnapshot_AllSourcesFailed(t *testing.T) {
	down := errors.New("upstream down")
	router := newTestRouter(t, routerOptions{
		soilErr: down, weatherErr: down, rainfallErr: down, marketErr: down,
	})

	body, _ := json.Marshal(models.SnapshotRequest{Lat: 18.5204, Lon: 73.8567})
	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Sources)
	assert.False(t, resp.Complete)
	assert.Nil(t, resp.Soil)
	assert.Nil(t, resp.Weather)
	assert.Nil(t, resp.Rainfall)
	assert.Nil(t, resp.Market)
	assert.False(t, resp.CapturedAt.IsZero())
}

func TestRouter_ComputeRecommendations_AllSourcesFailed(t *testing.T) {
	down := errors.New("upstream down")
	router := newTestRouter(t, routerOptions{
		soilErr: down, weatherErr: down, rainfallErr: down, marketErr: down,
	})

	body, _ := json.Marshal(models.RecommendationRequest{Lat: 18.5204, Lon: 73.8567})
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.DataSources)
	assert.NotEmpty(t, resp.Recommendations, "neutral scoring still ranks the catalog")
}

func TestRouter_ComputeRecommendations(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body, _ := json.Marshal(models.RecommendationRequest{Lat: 18.5204, Lon: 73.8567})
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Pune", resp.City)
	assert.Equal(t, 4, resp.DataSources)
	require.NotEmpty(t, resp.Recommendations)
	assert.LessOrEqual(t, len(resp.Recommendations), 5)

	for i := 1; i < len(resp.Recommendations); i++ {
		assert.GreaterOrEqual(t, resp.Recommendations[i-1].Combined, resp.Recommendations[i].Combined)
	}
}

func TestRouter_ComputeRecommendations_BadWeights(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body := []byte(`{"lat": 18.52, "lon": 73.85, "weights": {"soilPh": 0.9, "temperature": 0.9, "rainfall": 0, "soilType": 0, "waterAvailability": 0}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations:compute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "weights")
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots:fetch", bytes.NewReader([]byte("lat=1")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
