package models

import (
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
)

// CropListResponse enumerates catalog crops.
type CropListResponse struct {
	Crops []string `json:"crops"`
	Total int      `json:"total"`
	Month int      `json:"month,omitempty"`
}

// CropDetail is the full growing profile of one crop.
type CropDetail struct {
	Name string `json:"name"`

	PHMin     float64 `json:"phMin"`
	PHOptimal float64 `json:"phOptimal"`
	PHMax     float64 `json:"phMax"`

	TempMinC     float64 `json:"tempMinC"`
	TempOptimalC float64 `json:"tempOptimalC"`
	TempMaxC     float64 `json:"tempMaxC"`

	RainfallMinMM float64 `json:"rainfallMinMm"`
	RainfallMaxMM float64 `json:"rainfallMaxMm,omitempty"`

	GrowingMonths    []int    `json:"growingMonths"`
	SoilTypes        []string `json:"soilTypes"`
	WaterRequirement string   `json:"waterRequirement"`

	GrowthDurationDays int     `json:"growthDurationDays"`
	TypicalYieldKgAcre float64 `json:"typicalYieldKgAcre"`
	BasePriceINRPerKg  float64 `json:"basePriceInrPerKg"`
}

// CropDetailFrom converts catalog requirements into the wire shape.
func CropDetailFrom(r *crop.Requirements) CropDetail {
	soilTypes := make([]string, len(r.SoilTypes))
	for i, t := range r.SoilTypes {
		soilTypes[i] = string(t)
	}
	return CropDetail{
		Name:               r.Name,
		PHMin:              r.PHMin,
		PHOptimal:          r.PHOptimal,
		PHMax:              r.PHMax,
		TempMinC:           r.TempMinC,
		TempOptimalC:       r.TempOptimalC,
		TempMaxC:           r.TempMaxC,
		RainfallMinMM:      r.RainfallMinMM,
		RainfallMaxMM:      r.RainfallMaxMM,
		GrowingMonths:      r.GrowingMonths,
		SoilTypes:          soilTypes,
		WaterRequirement:   string(r.WaterRequirement),
		GrowthDurationDays: r.GrowthDurationDays,
		TypicalYieldKgAcre: r.TypicalYieldKgAcre,
		BasePriceINRPerKg:  r.BasePriceINRPerKg,
	}
}
