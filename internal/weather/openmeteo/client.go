// Package openmeteo fetches current conditions and daily forecasts
// from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
	"github.com/khusa71/agritech-chat-assistant/internal/weather"
)

const (
	defaultBaseURL      = "https://api.open-meteo.com/v1"
	defaultForecastDays = 7
)

// ClientConfig configures the Open-Meteo forecast client.
type ClientConfig struct {
	BaseURL      string
	ForecastDays int
	HTTPClient   *resilience.Client
	Logger       zerolog.Logger
}

// Client queries Open-Meteo for weather summaries.
type Client struct {
	baseURL      string
	forecastDays int
	http         *resilience.Client
	logger       zerolog.Logger
}

// New creates an Open-Meteo forecast client.
func New(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = defaultForecastDays
	}
	if cfg.ForecastDays > weather.MaxForecastDays {
		cfg.ForecastDays = weather.MaxForecastDays
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.ClientConfig{Name: "openmeteo"})
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		forecastDays: cfg.ForecastDays,
		http:         cfg.HTTPClient,
		logger:       cfg.Logger.With().Str("source", "openmeteo").Logger(),
	}
}

// Name identifies this source.
func (c *Client) Name() string { return "openmeteo" }

type forecastResponse struct {
	Current struct {
		Time             string  `json:"time"`
		Temperature      float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		SurfacePressure  float64 `json:"surface_pressure"`
		WindSpeed        float64 `json:"wind_speed_10m"`
		WindDirection    float64 `json:"wind_direction_10m"`
		WeatherCode      int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WindSpeedMax     []float64 `json:"wind_speed_10m_max"`
		WeatherCode      []int     `json:"weather_code"`
	} `json:"daily"`
}

// FetchWeather retrieves current conditions plus a daily forecast in
// a single request.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (*weather.Summary, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("current", "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,wind_direction_10m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max,weather_code")
	q.Set("forecast_days", fmt.Sprintf("%d", c.forecastDays))
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "UTC")

	reqURL := fmt.Sprintf("%s/forecast?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openmeteo: unexpected status %d", resp.StatusCode)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openmeteo: decode response: %w", err)
	}

	summary := c.toSummary(payload)

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("forecast_days", len(summary.Forecast)).
		Float64("temperature_c", summary.Current.TemperatureC).
		Msg("fetched weather summary")

	return summary, nil
}

func (c *Client) toSummary(payload forecastResponse) *weather.Summary {
	now := time.Now().UTC()

	observedAt := now
	if t, err := time.Parse("2006-01-02T15:04", payload.Current.Time); err == nil {
		observedAt = t.UTC()
	}

	summary := &weather.Summary{
		Current: weather.Current{
			TemperatureC:     payload.Current.Temperature,
			HumidityPct:      payload.Current.RelativeHumidity,
			PressureHPa:      payload.Current.SurfacePressure,
			WindSpeedMS:      payload.Current.WindSpeed,
			WindDirectionDeg: payload.Current.WindDirection,
			Description:      describeWeatherCode(payload.Current.WeatherCode),
			ObservedAt:       observedAt,
		},
		FetchedAt: now,
	}

	days := len(payload.Daily.Time)
	if days > weather.MaxForecastDays {
		days = weather.MaxForecastDays
	}
	for i := 0; i < days; i++ {
		if i >= len(payload.Daily.TemperatureMin) || i >= len(payload.Daily.TemperatureMax) {
			break
		}
		date, err := time.Parse("2006-01-02", payload.Daily.Time[i])
		if err != nil {
			continue
		}
		day := weather.ForecastDay{
			Date:     date,
			TempMinC: payload.Daily.TemperatureMin[i],
			TempMaxC: payload.Daily.TemperatureMax[i],
		}
		if day.TempMinC > day.TempMaxC {
			day.TempMinC, day.TempMaxC = day.TempMaxC, day.TempMinC
		}
		if i < len(payload.Daily.PrecipitationSum) {
			day.PrecipitationMM = payload.Daily.PrecipitationSum[i]
		}
		if i < len(payload.Daily.WindSpeedMax) {
			day.WindSpeedMS = payload.Daily.WindSpeedMax[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			day.Description = describeWeatherCode(payload.Daily.WeatherCode[i])
		}
		summary.Forecast = append(summary.Forecast, day)
	}

	return summary
}

// describeWeatherCode maps WMO weather interpretation codes to text.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
