package recommend

import (
	"math"

	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/rainfall"
	"github.com/khusa71/agritech-chat-assistant/internal/soil"
)

// Scoring band widths and tier values. The graded tiers reward being
// near the optimum inside a tolerable range, and degrade smoothly
// just outside it.
const (
	phOptimalBand  = 0.5 // pH distance from optimum that still scores full marks
	phExtension    = 0.5 // pH beyond min/max that still scores partial marks
	tempOptimalC   = 3.0 // deg C around optimum scoring full marks
	tempExtensionC = 5.0 // deg C beyond min/max scoring partial marks

	rainfallWindowDays = 30
	tempForecastDays   = 7
)

// adjacentTextures maps each texture to the classes close enough to
// substitute for it at a discount.
var adjacentTextures = map[soil.Texture][]soil.Texture{
	soil.TextureLoam:      {soil.TextureClayLoam, soil.TextureSandyLoam, soil.TextureSiltyLoam},
	soil.TextureClayLoam:  {soil.TextureLoam, soil.TextureClay, soil.TextureSiltyClayLoam},
	soil.TextureSandyLoam: {soil.TextureLoam, soil.TextureSand, soil.TextureSandyClayLoam},
	soil.TextureClay:      {soil.TextureClayLoam, soil.TextureSiltyClay},
	soil.TextureSand:      {soil.TextureSandyLoam, soil.TextureSandyClayLoam},
	soil.TextureSilt:      {soil.TextureSiltyLoam, soil.TextureSiltyClayLoam},
}

// waterTolerance maps a crop's water demand tier to the highest
// stress index it comfortably tolerates.
var waterTolerance = map[crop.WaterRequirement]float64{
	crop.WaterLow:    0.8,
	crop.WaterMedium: 0.5,
	crop.WaterHigh:   0.2,
}

// Scorer computes crop suitability from a snapshot. It is pure: the
// same inputs always produce the same scores, and the snapshot is
// never mutated.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer. Zero weights fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	if weights.Sum() == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Score returns the weighted suitability (0..1, rounded to 3
// decimals) and its per-factor breakdown. Missing snapshot branches
// contribute the neutral score rather than failing.
func (s *Scorer) Score(req *crop.Requirements, snap *location.Snapshot) (float64, Breakdown) {
	b := Breakdown{
		SoilPH:            phScore(req, snap.Soil),
		Temperature:       temperatureScore(req, snap),
		Rainfall:          rainfallScore(req, snap.Rainfall),
		SoilType:          soilTypeScore(req, snap.Soil),
		WaterAvailability: waterScore(req, snap.Rainfall),
	}

	overall := b.SoilPH*s.weights.SoilPH +
		b.Temperature*s.weights.Temperature +
		b.Rainfall*s.weights.Rainfall +
		b.SoilType*s.weights.SoilType +
		b.WaterAvailability*s.weights.WaterAvailability

	return math.Round(overall*1000) / 1000, b
}

func phScore(req *crop.Requirements, profile *soil.Profile) float64 {
	if profile == nil {
		return NeutralScore
	}
	ph := profile.Properties.PH
	switch {
	case ph >= req.PHMin && ph <= req.PHMax:
		if math.Abs(ph-req.PHOptimal) <= phOptimalBand {
			return 1.0
		}
		return 0.8
	case ph >= req.PHMin-phExtension && ph <= req.PHMax+phExtension:
		return 0.6
	default:
		return 0.2
	}
}

// temperatureScore judges the 7-day mean forecast temperature, falling
// back to current conditions when no forecast is available.
func temperatureScore(req *crop.Requirements, snap *location.Snapshot) float64 {
	if snap.Weather == nil {
		return NeutralScore
	}
	temp := snap.Weather.AverageTemperature(tempForecastDays)
	switch {
	case temp >= req.TempMinC && temp <= req.TempMaxC:
		if math.Abs(temp-req.TempOptimalC) <= tempOptimalC {
			return 1.0
		}
		return 0.8
	case temp >= req.TempMinC-tempExtensionC && temp <= req.TempMaxC+tempExtensionC:
		return 0.6
	default:
		return 0.2
	}
}

// rainfallScore compares the trailing 30-day total against the crop's
// monthly water need.
func rainfallScore(req *crop.Requirements, series *rainfall.Series) float64 {
	if series == nil || len(series.Records) == 0 {
		return NeutralScore
	}
	total := series.Total(rainfallWindowDays)

	withinMax := req.RainfallMaxMM == 0 || total <= req.RainfallMaxMM
	switch {
	case total >= req.RainfallMinMM && withinMax:
		return 1.0
	case total >= req.RainfallMinMM*0.8:
		return 0.7
	case total >= req.RainfallMinMM*0.5:
		return 0.4
	default:
		return 0.1
	}
}

func soilTypeScore(req *crop.Requirements, profile *soil.Profile) float64 {
	if profile == nil {
		return NeutralScore
	}
	if req.ToleratesAnySoil() {
		return 1.0
	}
	for _, want := range req.SoilTypes {
		if want == profile.Texture {
			return 1.0
		}
	}
	for _, adj := range adjacentTextures[profile.Texture] {
		for _, want := range req.SoilTypes {
			if want == adj {
				return 0.7
			}
		}
	}
	return 0.3
}

// waterScore compares recent water stress against the crop's
// tolerance for it.
func waterScore(req *crop.Requirements, series *rainfall.Series) float64 {
	if series == nil || len(series.Records) == 0 {
		return NeutralScore
	}
	stress := series.WaterStressIndex()
	tolerance := waterTolerance[req.WaterRequirement]

	switch {
	case stress <= tolerance:
		return 1.0
	case stress <= tolerance+0.2:
		return 0.7
	case stress <= tolerance+0.4:
		return 0.4
	default:
		return 0.1
	}
}
