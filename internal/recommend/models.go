// Package recommend scores crops against location snapshots and ranks
// them into actionable recommendations.
package recommend

import (
	"errors"
	"math"
)

// NeutralScore is used for any sub-score whose input data is missing.
const NeutralScore = 0.5

// RiskLevel classifies a recommendation's overall risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Weights are the relative importance of each suitability factor.
// They must sum to 1 within a small tolerance.
type Weights struct {
	SoilPH            float64
	Temperature       float64
	Rainfall          float64
	SoilType          float64
	WaterAvailability float64
}

// DefaultWeights reflect that chemistry and climate dominate crop fit.
func DefaultWeights() Weights {
	return Weights{
		SoilPH:            0.30,
		Temperature:       0.25,
		Rainfall:          0.25,
		SoilType:          0.10,
		WaterAvailability: 0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.SoilPH + w.Temperature + w.Rainfall + w.SoilType + w.WaterAvailability
}

// Validate checks the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.SoilPH, w.Temperature, w.Rainfall, w.SoilType, w.WaterAvailability} {
		if v < 0 {
			return errors.New("weights must be non-negative")
		}
	}
	if math.Abs(w.Sum()-1) > 0.01 {
		return errors.New("weights must sum to 1")
	}
	return nil
}

// Breakdown carries the individual suitability sub-scores, each 0..1.
type Breakdown struct {
	SoilPH            float64 `json:"soil_ph"`
	Temperature       float64 `json:"temperature"`
	Rainfall          float64 `json:"rainfall"`
	SoilType          float64 `json:"soil_type"`
	WaterAvailability float64 `json:"water_availability"`
}

// Recommendation is one ranked crop suggestion.
type Recommendation struct {
	Crop                  string
	Suitability           float64
	Breakdown             Breakdown
	Profitability         float64
	Combined              float64
	ExpectedProfitPerAcre float64
	RiskLevel             RiskLevel
	RiskFactors           []string
	Summary               string
}
