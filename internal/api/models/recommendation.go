package models

import (
	"time"

	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/recommend"
)

// WeightsPayload overrides the suitability factor weights for one
// request. All five weights must be supplied and sum to 1.
type WeightsPayload struct {
	SoilPH            float64 `json:"soilPh"`
	Temperature       float64 `json:"temperature"`
	Rainfall          float64 `json:"rainfall"`
	SoilType          float64 `json:"soilType"`
	WaterAvailability float64 `json:"waterAvailability"`
}

// ToWeights converts the payload to domain weights.
func (w *WeightsPayload) ToWeights() recommend.Weights {
	return recommend.Weights{
		SoilPH:            w.SoilPH,
		Temperature:       w.Temperature,
		Rainfall:          w.Rainfall,
		SoilType:          w.SoilType,
		WaterAvailability: w.WaterAvailability,
	}
}

// RecommendationRequest asks for ranked crop suggestions at a point.
type RecommendationRequest struct {
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	MaxResults int             `json:"maxResults,omitempty"`
	MinScore   *float64        `json:"minScore,omitempty"`
	Weights    *WeightsPayload `json:"weights,omitempty"`
}

// BreakdownView carries the per-factor suitability sub-scores.
type BreakdownView struct {
	SoilPH            float64 `json:"soilPh"`
	Temperature       float64 `json:"temperature"`
	Rainfall          float64 `json:"rainfall"`
	SoilType          float64 `json:"soilType"`
	WaterAvailability float64 `json:"waterAvailability"`
}

// RecommendationView is one ranked crop suggestion on the wire.
type RecommendationView struct {
	Crop                  string        `json:"crop"`
	Suitability           float64       `json:"suitability"`
	Breakdown             BreakdownView `json:"breakdown"`
	Profitability         float64       `json:"profitability"`
	Combined              float64       `json:"combined"`
	ExpectedProfitPerAcre float64       `json:"expectedProfitPerAcreInr"`
	RiskLevel             string        `json:"riskLevel"`
	RiskFactors           []string      `json:"riskFactors,omitempty"`
	Summary               string        `json:"summary"`
}

// RecommendationResponse is the full recommendation payload.
type RecommendationResponse struct {
	Location        LatLon               `json:"location"`
	City            string               `json:"city,omitempty"`
	Region          string               `json:"region,omitempty"`
	Recommendations []RecommendationView `json:"recommendations"`
	DataSources     int                  `json:"dataSources"`
	GeneratedAt     time.Time            `json:"generatedAt"`
}

// RecommendationResponseFrom assembles the wire payload from domain
// results.
func RecommendationResponseFrom(snap *location.Snapshot, recs []recommend.Recommendation) RecommendationResponse {
	views := make([]RecommendationView, len(recs))
	for i, r := range recs {
		views[i] = RecommendationView{
			Crop:        r.Crop,
			Suitability: r.Suitability,
			Breakdown: BreakdownView{
				SoilPH:            r.Breakdown.SoilPH,
				Temperature:       r.Breakdown.Temperature,
				Rainfall:          r.Breakdown.Rainfall,
				SoilType:          r.Breakdown.SoilType,
				WaterAvailability: r.Breakdown.WaterAvailability,
			},
			Profitability:         r.Profitability,
			Combined:              r.Combined,
			ExpectedProfitPerAcre: r.ExpectedProfitPerAcre,
			RiskLevel:             string(r.RiskLevel),
			RiskFactors:           r.RiskFactors,
			Summary:               r.Summary,
		}
	}
	return RecommendationResponse{
		Location:        LatLon{Lat: snap.Coordinates.Lat, Lon: snap.Coordinates.Lon},
		City:            snap.City,
		Region:          snap.Region,
		Recommendations: views,
		DataSources:     snap.SourceCount(),
		GeneratedAt:     time.Now().UTC(),
	}
}
