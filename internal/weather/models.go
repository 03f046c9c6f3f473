// Package weather defines current-conditions and daily-forecast
// models used by the location snapshot.
package weather

import "time"

// MaxForecastDays caps how many daily entries a summary may carry.
const MaxForecastDays = 14

// Current holds observed conditions at fetch time.
type Current struct {
	TemperatureC     float64
	HumidityPct      float64
	PressureHPa      float64
	WindSpeedMS      float64
	WindDirectionDeg float64
	Description      string
	ObservedAt       time.Time
}

// ForecastDay is one day of forecast. TempMinC is never above TempMaxC.
type ForecastDay struct {
	Date            time.Time
	TempMinC        float64
	TempMaxC        float64
	PrecipitationMM float64
	WindSpeedMS     float64
	Description     string
}

// MeanTemperature is the midpoint of the day's min and max.
func (d ForecastDay) MeanTemperature() float64 {
	return (d.TempMinC + d.TempMaxC) / 2
}

// Summary is the weather view for one location: current conditions
// plus a chronological daily forecast.
type Summary struct {
	Current   Current
	Forecast  []ForecastDay
	FetchedAt time.Time
}

// AverageTemperature averages the daily mean temperature over the
// first n forecast days. With no forecast it falls back to the
// current temperature.
func (s *Summary) AverageTemperature(n int) float64 {
	if len(s.Forecast) == 0 {
		return s.Current.TemperatureC
	}
	if n <= 0 || n > len(s.Forecast) {
		n = len(s.Forecast)
	}
	var sum float64
	for _, d := range s.Forecast[:n] {
		sum += d.MeanTemperature()
	}
	return sum / float64(n)
}

// TotalPrecipitation sums forecast precipitation over the first n days.
func (s *Summary) TotalPrecipitation(n int) float64 {
	if n <= 0 || n > len(s.Forecast) {
		n = len(s.Forecast)
	}
	var sum float64
	for _, d := range s.Forecast[:n] {
		sum += d.PrecipitationMM
	}
	return sum
}
