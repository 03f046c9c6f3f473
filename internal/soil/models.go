// Package soil defines soil profile models and the agronomic
// derivations (texture classification, fertility index) computed
// from raw soil property measurements.
package soil

import (
	"math"
	"time"
)

// Texture is a simplified USDA soil texture class.
type Texture string

const (
	TextureClay          Texture = "clay"
	TextureClayLoam      Texture = "clay_loam"
	TextureLoam          Texture = "loam"
	TextureSand          Texture = "sand"
	TextureSandyClayLoam Texture = "sandy_clay_loam"
	TextureSandyLoam     Texture = "sandy_loam"
	TextureSilt          Texture = "silt"
	TextureSiltyClay     Texture = "silty_clay"
	TextureSiltyClayLoam Texture = "silty_clay_loam"
	TextureSiltyLoam     Texture = "silty_loam"
)

// Default property values substituted when an upstream measurement is
// missing or out of plausible range. They describe an average loamy
// agricultural topsoil.
const (
	DefaultPH            = 6.5
	DefaultOrganicCarbon = 1.5
	DefaultBulkDensity   = 1.3
	DefaultClayPct       = 25.0
	DefaultSandPct       = 40.0
	DefaultSiltPct       = 35.0
)

// fractionTolerance is the allowed deviation of clay+sand+silt from 100%.
const fractionTolerance = 5.0

// Properties holds the raw measured properties of a topsoil layer.
type Properties struct {
	PH            float64 // pH in H2O
	OrganicCarbon float64 // % of dry mass
	BulkDensity   float64 // g/cm3
	ClayPct       float64
	SandPct       float64
	SiltPct       float64
}

// FractionsValid reports whether the particle-size fractions sum to
// approximately 100%.
func (p Properties) FractionsValid() bool {
	sum := p.ClayPct + p.SandPct + p.SiltPct
	return math.Abs(sum-100) <= fractionTolerance
}

// Normalize replaces missing or implausible measurements with the
// package defaults and rebalances fractions that do not sum to ~100%.
func (p Properties) Normalize() Properties {
	out := p
	if out.PH < 3 || out.PH > 10 {
		out.PH = DefaultPH
	}
	if out.OrganicCarbon <= 0 || out.OrganicCarbon > 60 {
		out.OrganicCarbon = DefaultOrganicCarbon
	}
	if out.BulkDensity < 0.5 || out.BulkDensity > 2.5 {
		out.BulkDensity = DefaultBulkDensity
	}
	if !out.FractionsValid() {
		out.ClayPct = DefaultClayPct
		out.SandPct = DefaultSandPct
		out.SiltPct = DefaultSiltPct
	}
	return out
}

// Profile is a fetched soil profile for a location, with derived
// agronomic indicators.
type Profile struct {
	Properties     Properties
	Texture        Texture
	FertilityIndex float64 // 0..1
	DepthCM        int
	FetchedAt      time.Time
}

// NewProfile normalizes the given properties and derives the texture
// class and fertility index.
func NewProfile(props Properties, depthCM int, fetchedAt time.Time) *Profile {
	norm := props.Normalize()
	return &Profile{
		Properties:     norm,
		Texture:        ClassifyTexture(norm.ClayPct, norm.SandPct, norm.SiltPct),
		FertilityIndex: FertilityIndex(norm),
		DepthCM:        depthCM,
		FetchedAt:      fetchedAt,
	}
}

// ClassifyTexture maps particle-size fractions onto a simplified USDA
// texture class.
func ClassifyTexture(clay, sand, silt float64) Texture {
	switch {
	case clay >= 40:
		return TextureClay
	case sand >= 70:
		return TextureSand
	case silt >= 80:
		return TextureSilt
	case clay >= 20 && clay <= 40 && sand <= 50:
		return TextureClayLoam
	case clay >= 20 && clay <= 40 && sand > 50:
		return TextureSandyClayLoam
	case clay < 20 && sand <= 50:
		return TextureLoam
	default:
		return TextureSandyLoam
	}
}

// FertilityIndex composes a 0..1 fertility indicator from pH, organic
// carbon, bulk density and texture, equally weighted.
func FertilityIndex(p Properties) float64 {
	scores := []float64{
		phFertility(p.PH),
		organicCarbonFertility(p.OrganicCarbon),
		bulkDensityFertility(p.BulkDensity),
		textureFertility(ClassifyTexture(p.ClayPct, p.SandPct, p.SiltPct)),
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return math.Round(sum/float64(len(scores))*1000) / 1000
}

func phFertility(ph float64) float64 {
	switch {
	case ph >= 6.0 && ph <= 7.5:
		return 1.0
	case (ph >= 5.5 && ph < 6.0) || (ph > 7.5 && ph <= 8.0):
		return 0.7
	case (ph >= 5.0 && ph < 5.5) || (ph > 8.0 && ph <= 8.5):
		return 0.4
	default:
		return 0.1
	}
}

func organicCarbonFertility(oc float64) float64 {
	switch {
	case oc >= 2.0:
		return 1.0
	case oc >= 1.0:
		return 0.7
	case oc >= 0.5:
		return 0.4
	default:
		return 0.1
	}
}

func bulkDensityFertility(bd float64) float64 {
	switch {
	case bd >= 1.0 && bd <= 1.4:
		return 1.0
	case (bd >= 0.8 && bd < 1.0) || (bd > 1.4 && bd <= 1.6):
		return 0.7
	default:
		return 0.4
	}
}

func textureFertility(t Texture) float64 {
	switch t {
	case TextureLoam, TextureClayLoam, TextureSiltyLoam:
		return 1.0
	case TextureSandyLoam, TextureSandyClayLoam, TextureSiltyClayLoam, TextureSilt:
		return 0.7
	default:
		return 0.4
	}
}
