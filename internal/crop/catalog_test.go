package crop_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/soil"
)

func TestDefaultCatalogLoads(t *testing.T) {
	cat, err := crop.DefaultCatalog(zerolog.Nop())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cat.Len(), 10)

	wheat, ok := cat.Lookup("wheat")
	require.True(t, ok)
	assert.Equal(t, "wheat", wheat.Name)
	assert.LessOrEqual(t, wheat.PHMin, wheat.PHOptimal)
	assert.LessOrEqual(t, wheat.PHOptimal, wheat.PHMax)
	assert.True(t, wheat.GrowsIn(time.December))
	assert.False(t, wheat.GrowsIn(time.July))
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	cat, err := crop.DefaultCatalog(zerolog.Nop())
	require.NoError(t, err)

	_, ok := cat.Lookup("  Rice ")
	assert.True(t, ok)
	_, ok = cat.Lookup("WHEAT")
	assert.True(t, ok)
	_, ok = cat.Lookup("quinoa")
	assert.False(t, ok)
}

func TestAllNamesStableAndCopied(t *testing.T) {
	cat, err := crop.DefaultCatalog(zerolog.Nop())
	require.NoError(t, err)

	names := cat.AllNames()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i], "names must be ascending")
	}

	names[0] = "mutated"
	assert.NotEqual(t, "mutated", cat.AllNames()[0])
}

func TestByMonth(t *testing.T) {
	cat, err := crop.DefaultCatalog(zerolog.Nop())
	require.NoError(t, err)

	july := cat.ByMonth(time.July)
	assert.Contains(t, july, "rice")
	assert.Contains(t, july, "maize")
	assert.NotContains(t, july, "wheat")

	december := cat.ByMonth(time.December)
	assert.Contains(t, december, "wheat")
	assert.NotContains(t, december, "rice")
}

const invalidEntryYAML = `
crops:
  wheat:
    ph_min: 6.0
    ph_optimal: 6.5
    ph_max: 7.5
    temp_min_c: 10
    temp_optimal_c: 20
    temp_max_c: 25
    rainfall_min_mm: 40
    rainfall_max_mm: 110
    growing_months: [11, 12, 1]
    soil_types: [loam]
    water_requirement: medium
    growth_duration_days: 140
    typical_yield_kg_acre: 1800
    base_price_inr_kg: 25
  broken:
    ph_min: 7.5
    ph_optimal: 6.0
    ph_max: 6.5
    temp_min_c: 10
    temp_optimal_c: 20
    temp_max_c: 25
    rainfall_min_mm: 40
    growing_months: [1]
    soil_types: [loam]
    water_requirement: medium
    growth_duration_days: 140
    typical_yield_kg_acre: 1800
    base_price_inr_kg: 25
`

func TestLoadCatalogSkipsInvalidEntries(t *testing.T) {
	cat, err := crop.LoadCatalog([]byte(invalidEntryYAML), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 1, cat.Len())
	_, ok := cat.Lookup("broken")
	assert.False(t, ok)
	_, ok = cat.Lookup("wheat")
	assert.True(t, ok)
}

func TestLoadCatalogRejectsEmpty(t *testing.T) {
	_, err := crop.LoadCatalog([]byte(`crops: {}`), zerolog.Nop())
	assert.Error(t, err)
}

func TestGrowingMonthsDeduplicatedAndSorted(t *testing.T) {
	data := `
crops:
  test:
    ph_min: 6.0
    ph_optimal: 6.5
    ph_max: 7.5
    temp_min_c: 10
    temp_optimal_c: 20
    temp_max_c: 25
    rainfall_min_mm: 40
    growing_months: [12, 1, 12, 3]
    soil_types: [loam]
    water_requirement: medium
    growth_duration_days: 140
    typical_yield_kg_acre: 1800
    base_price_inr_kg: 25
`
	cat, err := crop.LoadCatalog([]byte(data), zerolog.Nop())
	require.NoError(t, err)

	req, ok := cat.Lookup("test")
	require.True(t, ok)
	assert.Equal(t, []int{1, 3, 12}, req.GrowingMonths)
}

func TestToleratesAnySoil(t *testing.T) {
	r := &crop.Requirements{SoilTypes: []soil.Texture{crop.AnySoil}}
	assert.True(t, r.ToleratesAnySoil())

	r = &crop.Requirements{SoilTypes: []soil.Texture{soil.TextureLoam}}
	assert.False(t, r.ToleratesAnySoil())
}
