// Package location assembles per-location environmental snapshots by
// fanning out to the soil, weather, rainfall and market sources.
package location

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/khusa71/agritech-chat-assistant/internal/market"
	"github.com/khusa71/agritech-chat-assistant/internal/rainfall"
	"github.com/khusa71/agritech-chat-assistant/internal/soil"
	"github.com/khusa71/agritech-chat-assistant/internal/weather"
)

// ErrInvalidCoordinates is returned for out-of-range or NaN
// coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinates is a validated WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// NewCoordinates validates and returns a coordinate pair.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	c := Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Validate checks the point lies on the globe. NaN compares false
// against every bound, so it needs its own check.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return ErrInvalidCoordinates
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Snapshot is the aggregated environmental view of one location. Any
// branch that failed to fetch is nil; consumers must tolerate partial
// snapshots.
type Snapshot struct {
	Coordinates Coordinates
	City        string
	Region      string

	Soil     *soil.Profile
	Weather  *weather.Summary
	Rainfall *rainfall.Series
	Market   *market.PriceSet

	CapturedAt time.Time
}

// Complete reports whether every branch fetched successfully.
func (s *Snapshot) Complete() bool {
	return s.Soil != nil && s.Weather != nil && s.Rainfall != nil && s.Market != nil
}

// SourceCount returns how many branches are populated.
func (s *Snapshot) SourceCount() int {
	n := 0
	if s.Soil != nil {
		n++
	}
	if s.Weather != nil {
		n++
	}
	if s.Rainfall != nil {
		n++
	}
	if s.Market != nil {
		n++
	}
	return n
}

// SoilSource fetches soil profiles.
type SoilSource interface {
	FetchSoil(ctx context.Context, lat, lon float64) (*soil.Profile, error)
	Name() string
}

// WeatherSource fetches weather summaries.
type WeatherSource interface {
	FetchWeather(ctx context.Context, lat, lon float64) (*weather.Summary, error)
	Name() string
}

// RainfallSource fetches precipitation series.
type RainfallSource interface {
	FetchRainfall(ctx context.Context, lat, lon float64) (*rainfall.Series, error)
	Name() string
}

// MarketSource fetches commodity price sets.
type MarketSource interface {
	FetchMarket(ctx context.Context, lat, lon float64) (*market.PriceSet, error)
	Name() string
}
