package models

import (
	"time"

	"github.com/khusa71/agritech-chat-assistant/internal/location"
)

// SnapshotRequest asks for an environmental snapshot of a point.
type SnapshotRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SoilView is the wire form of a soil profile.
type SoilView struct {
	PH             float64 `json:"ph"`
	OrganicCarbon  float64 `json:"organicCarbonPct"`
	BulkDensity    float64 `json:"bulkDensityGcm3"`
	ClayPct        float64 `json:"clayPct"`
	SandPct        float64 `json:"sandPct"`
	SiltPct        float64 `json:"siltPct"`
	Texture        string  `json:"texture"`
	FertilityIndex float64 `json:"fertilityIndex"`
}

// WeatherView summarizes current conditions and the near-term forecast.
type WeatherView struct {
	TemperatureC     float64 `json:"temperatureC"`
	HumidityPct      float64 `json:"humidityPct"`
	Description      string  `json:"description"`
	ForecastDays     int     `json:"forecastDays"`
	AvgForecastTempC float64 `json:"avgForecastTempC"`
}

// RainfallView summarizes recent precipitation.
type RainfallView struct {
	PeriodDays            int     `json:"periodDays"`
	TotalMM               float64 `json:"totalMm"`
	AverageDailyMM        float64 `json:"averageDailyMm"`
	Trend                 string  `json:"trend"`
	WaterStressIndex      float64 `json:"waterStressIndex"`
	IrrigationRequirement string  `json:"irrigationRequirement"`
}

// MarketView summarizes current mandi prices.
type MarketView struct {
	Market      string            `json:"market"`
	PricesINRKg map[string]float64 `json:"pricesInrKg"`
}

// SnapshotResponse is the assembled snapshot payload. Sections whose
// source failed are omitted.
type SnapshotResponse struct {
	Location   LatLon        `json:"location"`
	City       string        `json:"city,omitempty"`
	Region     string        `json:"region,omitempty"`
	Soil       *SoilView     `json:"soil,omitempty"`
	Weather    *WeatherView  `json:"weather,omitempty"`
	Rainfall   *RainfallView `json:"rainfall,omitempty"`
	Market     *MarketView   `json:"market,omitempty"`
	Sources    int           `json:"sources"`
	Complete   bool          `json:"complete"`
	CapturedAt time.Time     `json:"capturedAt"`
}

// SnapshotResponseFrom converts a domain snapshot into the wire shape.
func SnapshotResponseFrom(snap *location.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Location:   LatLon{Lat: snap.Coordinates.Lat, Lon: snap.Coordinates.Lon},
		City:       snap.City,
		Region:     snap.Region,
		Sources:    snap.SourceCount(),
		Complete:   snap.Complete(),
		CapturedAt: snap.CapturedAt,
	}

	if s := snap.Soil; s != nil {
		resp.Soil = &SoilView{
			PH:             s.Properties.PH,
			OrganicCarbon:  s.Properties.OrganicCarbon,
			BulkDensity:    s.Properties.BulkDensity,
			ClayPct:        s.Properties.ClayPct,
			SandPct:        s.Properties.SandPct,
			SiltPct:        s.Properties.SiltPct,
			Texture:        string(s.Texture),
			FertilityIndex: s.FertilityIndex,
		}
	}
	if w := snap.Weather; w != nil {
		resp.Weather = &WeatherView{
			TemperatureC:     w.Current.TemperatureC,
			HumidityPct:      w.Current.HumidityPct,
			Description:      w.Current.Description,
			ForecastDays:     len(w.Forecast),
			AvgForecastTempC: w.AverageTemperature(7),
		}
	}
	if r := snap.Rainfall; r != nil {
		resp.Rainfall = &RainfallView{
			PeriodDays:            r.PeriodDays,
			TotalMM:               r.Total(0),
			AverageDailyMM:        r.AverageDaily(0),
			Trend:                 string(r.TrendOver(0)),
			WaterStressIndex:      r.WaterStressIndex(),
			IrrigationRequirement: string(r.IrrigationRequirement()),
		}
	}
	if m := snap.Market; m != nil {
		prices := make(map[string]float64, len(m.Prices))
		for _, p := range m.Prices {
			prices[p.Crop] = p.PerKgINR
		}
		resp.Market = &MarketView{Market: m.Market, PricesINRKg: prices}
	}

	return resp
}
