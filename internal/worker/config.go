// Package worker provides background cache warming for the snapshot
// service.
package worker

import (
	"time"
)

// WarmTarget is a farming region whose snapshots get pre-fetched.
type WarmTarget struct {
	// Name is the human-readable name of the region.
	Name string

	// Points are the lat/lon coordinates to warm. Typically district
	// centers of major growing belts.
	Points []Point

	// Priority determines warm order (lower = higher priority).
	Priority int
}

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// WarmConfig holds configuration for the snapshot warming job.
type WarmConfig struct {
	// Targets are the regions to warm. If empty, DefaultWarmTargets
	// is used.
	Targets []WarmTarget

	// Concurrency is the number of concurrent warm operations.
	// Default: 3
	Concurrency int

	// Timeout bounds each point's snapshot fetch. Default: 60 seconds.
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warming configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:     DefaultWarmTargets(),
		Concurrency: 3,
		Timeout:     60 * time.Second,
	}
}

// DefaultWarmTargets covers the major Indian agricultural belts
// around the reference cities.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{
			Name:     "Maharashtra",
			Priority: 1,
			Points: []Point{
				{Lat: 18.5204, Lon: 73.8567}, // Pune
				{Lat: 19.8762, Lon: 75.3433}, // Aurangabad
				{Lat: 21.1458, Lon: 79.0882}, // Nagpur
			},
		},
		{
			Name:     "Karnataka",
			Priority: 1,
			Points: []Point{
				{Lat: 12.9716, Lon: 77.5946}, // Bangalore
				{Lat: 15.3647, Lon: 75.1240}, // Hubli
			},
		},
		{
			Name:     "Telangana",
			Priority: 1,
			Points: []Point{
				{Lat: 17.3850, Lon: 78.4867}, // Hyderabad
				{Lat: 18.4386, Lon: 79.1288}, // Karimnagar
			},
		},
		{
			Name:     "Punjab-Haryana",
			Priority: 2,
			Points: []Point{
				{Lat: 30.9010, Lon: 75.8573}, // Ludhiana
				{Lat: 29.1492, Lon: 75.7217}, // Hisar
			},
		},
		{
			Name:     "West Bengal",
			Priority: 2,
			Points: []Point{
				{Lat: 22.5726, Lon: 88.3639}, // Kolkata
				{Lat: 23.2324, Lon: 87.8615}, // Bardhaman
			},
		},
		{
			Name:     "Rajasthan",
			Priority: 3,
			Points: []Point{
				{Lat: 26.2389, Lon: 73.0243}, // Jodhpur
			},
		},
	}
}

// AllPoints returns every point from every target.
func (c WarmConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the number of points to warm.
func (c WarmConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
