package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/khusa71/agritech-chat-assistant/internal/weather"
)

func day(offset int, min, max, precip float64) weather.ForecastDay {
	return weather.ForecastDay{
		Date:            time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset),
		TempMinC:        min,
		TempMaxC:        max,
		PrecipitationMM: precip,
	}
}

func TestAverageTemperature(t *testing.T) {
	s := &weather.Summary{
		Current:  weather.Current{TemperatureC: 31},
		Forecast: []weather.ForecastDay{day(0, 20, 30, 0), day(1, 22, 32, 0), day(2, 18, 28, 0)},
	}

	assert.InDelta(t, 25.5, s.AverageTemperature(2), 0.001)
	// n beyond the forecast length uses the whole window.
	assert.InDelta(t, 25.0, s.AverageTemperature(10), 0.001)
	assert.InDelta(t, 25.0, s.AverageTemperature(0), 0.001)
}

func TestAverageTemperatureWithoutForecast(t *testing.T) {
	s := &weather.Summary{Current: weather.Current{TemperatureC: 27.5}}
	assert.Equal(t, 27.5, s.AverageTemperature(7))
}

func TestTotalPrecipitation(t *testing.T) {
	s := &weather.Summary{
		Forecast: []weather.ForecastDay{day(0, 20, 30, 4.5), day(1, 20, 30, 0), day(2, 20, 30, 10)},
	}
	assert.InDelta(t, 4.5, s.TotalPrecipitation(2), 0.001)
	assert.InDelta(t, 14.5, s.TotalPrecipitation(0), 0.001)
}
