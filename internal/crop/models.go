// Package crop holds the crop requirements catalog: the agronomic and
// economic profile of every crop the recommender can suggest.
package crop

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/khusa71/agritech-chat-assistant/internal/soil"
)

// WaterRequirement is a crop's irrigation demand tier.
type WaterRequirement string

const (
	WaterLow    WaterRequirement = "low"
	WaterMedium WaterRequirement = "medium"
	WaterHigh   WaterRequirement = "high"
)

// AnySoil marks a crop that tolerates all soil textures.
const AnySoil soil.Texture = "any"

var validate = validator.New()

// Requirements is the full growing profile for one crop. Ranges are
// ordered (min <= optimal <= max); growing months are 1-12.
type Requirements struct {
	Name string `yaml:"-" validate:"required"`

	PHMin     float64 `yaml:"ph_min" validate:"gte=3,lte=10"`
	PHOptimal float64 `yaml:"ph_optimal" validate:"gte=3,lte=10"`
	PHMax     float64 `yaml:"ph_max" validate:"gte=3,lte=10"`

	TempMinC     float64 `yaml:"temp_min_c" validate:"gte=-10,lte=50"`
	TempOptimalC float64 `yaml:"temp_optimal_c" validate:"gte=-10,lte=50"`
	TempMaxC     float64 `yaml:"temp_max_c" validate:"gte=-10,lte=50"`

	// RainfallMinMM is the minimum seasonal (30-day) water need.
	// RainfallMaxMM of 0 means no upper bound.
	RainfallMinMM float64 `yaml:"rainfall_min_mm" validate:"gte=0"`
	RainfallMaxMM float64 `yaml:"rainfall_max_mm" validate:"gte=0"`

	GrowingMonths []int `yaml:"growing_months" validate:"required,min=1,dive,gte=1,lte=12"`

	SoilTypes []soil.Texture `yaml:"soil_types" validate:"required,min=1"`

	WaterRequirement WaterRequirement `yaml:"water_requirement" validate:"required,oneof=low medium high"`

	GrowthDurationDays  int     `yaml:"growth_duration_days" validate:"gte=30,lte=400"`
	TypicalYieldKgAcre  float64 `yaml:"typical_yield_kg_acre" validate:"gt=0"`
	BasePriceINRPerKg   float64 `yaml:"base_price_inr_kg" validate:"gt=0"`
}

// Validate checks field constraints and range ordering.
func (r *Requirements) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("crop %q: %w", r.Name, err)
	}
	if r.PHMin > r.PHOptimal || r.PHOptimal > r.PHMax {
		return fmt.Errorf("crop %q: pH range out of order", r.Name)
	}
	if r.TempMinC > r.TempOptimalC || r.TempOptimalC > r.TempMaxC {
		return fmt.Errorf("crop %q: temperature range out of order", r.Name)
	}
	if r.RainfallMaxMM > 0 && r.RainfallMinMM > r.RainfallMaxMM {
		return fmt.Errorf("crop %q: rainfall range out of order", r.Name)
	}
	return nil
}

// normalizeMonths deduplicates and sorts the growing months.
func (r *Requirements) normalizeMonths() error {
	if len(r.GrowingMonths) == 0 {
		return errors.New("no growing months")
	}
	seen := make(map[int]bool, len(r.GrowingMonths))
	months := r.GrowingMonths[:0]
	for _, m := range r.GrowingMonths {
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Ints(months)
	r.GrowingMonths = months
	return nil
}

// GrowsIn reports whether the crop is sown or grown in the given month.
func (r *Requirements) GrowsIn(month time.Month) bool {
	for _, m := range r.GrowingMonths {
		if m == int(month) {
			return true
		}
	}
	return false
}

// ToleratesAnySoil reports whether the crop's soil list includes the
// wildcard entry.
func (r *Requirements) ToleratesAnySoil() bool {
	for _, t := range r.SoilTypes {
		if t == AnySoil {
			return true
		}
	}
	return false
}
