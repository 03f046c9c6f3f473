package location

import "math"

// Matching tolerances in degrees. City matches are tight; region
// matches cover the surrounding belt.
const (
	cityTolerance   = 0.5
	regionTolerance = 1.0
)

// Place is a reference point for inverse geocoding by proximity.
type Place struct {
	Lat    float64
	Lon    float64
	City   string
	Region string
}

// PlaceIndex resolves coordinates to the nearest known city and
// region by degree distance.
type PlaceIndex struct {
	places []Place
}

// DefaultPlaceIndex covers the major agricultural reference cities.
func DefaultPlaceIndex() *PlaceIndex {
	return &PlaceIndex{places: []Place{
		{18.5204, 73.8567, "Pune", "Maharashtra"},
		{19.0760, 72.8777, "Mumbai", "Maharashtra"},
		{12.9716, 77.5946, "Bangalore", "Karnataka"},
		{17.3850, 78.4867, "Hyderabad", "Telangana"},
		{28.7041, 77.1025, "Delhi", "Delhi"},
		{22.5726, 88.3639, "Kolkata", "West Bengal"},
		{26.2389, 73.0243, "Jodhpur", "Rajasthan"},
	}}
}

// NewPlaceIndex builds an index over a custom place table.
func NewPlaceIndex(places []Place) *PlaceIndex {
	return &PlaceIndex{places: places}
}

// Locate returns the city and region nearest to the point. The city
// is only set when the point is within the tight tolerance; the
// region within the wider one. Both are empty for unknown areas.
func (idx *PlaceIndex) Locate(lat, lon float64) (city, region string) {
	best := math.MaxFloat64
	var nearest *Place
	for i := range idx.places {
		p := &idx.places[i]
		d := math.Max(math.Abs(p.Lat-lat), math.Abs(p.Lon-lon))
		if d < best {
			best = d
			nearest = p
		}
	}
	if nearest == nil {
		return "", ""
	}
	if best <= cityTolerance {
		return nearest.City, nearest.Region
	}
	if best <= regionTolerance {
		return "", nearest.Region
	}
	return "", ""
}

// Places returns the indexed reference points.
func (idx *PlaceIndex) Places() []Place {
	out := make([]Place, len(idx.places))
	copy(out, idx.places)
	return out
}
