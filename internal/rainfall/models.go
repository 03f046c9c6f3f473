// Package rainfall defines historical precipitation series and the
// water-availability indicators derived from them.
package rainfall

import "time"

// Trend describes how precipitation is moving across the series window.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// IrrigationNeed is a coarse irrigation guidance tier.
type IrrigationNeed string

const (
	IrrigationMinimal  IrrigationNeed = "minimal"
	IrrigationModerate IrrigationNeed = "moderate"
	IrrigationHigh     IrrigationNeed = "high"
	IrrigationCritical IrrigationNeed = "critical"
)

// trendMinRecords is the minimum series length for a trend verdict.
const trendMinRecords = 7

// Record is one day of observed precipitation.
type Record struct {
	Date        time.Time
	Millimeters float64
}

// Series is a chronological daily precipitation history for one
// location. Records are ordered oldest first.
type Series struct {
	Records    []Record
	PeriodDays int
	FetchedAt  time.Time
}

// Total sums precipitation over the trailing n days. n outside the
// series length covers the whole series.
func (s *Series) Total(n int) float64 {
	recs := s.trailing(n)
	var sum float64
	for _, r := range recs {
		sum += r.Millimeters
	}
	return sum
}

// AverageDaily is the mean daily precipitation over the trailing n days.
func (s *Series) AverageDaily(n int) float64 {
	recs := s.trailing(n)
	if len(recs) == 0 {
		return 0
	}
	return s.Total(n) / float64(len(recs))
}

// TrendOver compares the two halves of the trailing n-day window. A
// second half more than 10% above the first reads as increasing, more
// than 10% below as decreasing. Short series read as stable.
func (s *Series) TrendOver(n int) Trend {
	recs := s.trailing(n)
	if len(recs) < trendMinRecords {
		return TrendStable
	}
	mid := len(recs) / 2
	var first, second float64
	for _, r := range recs[:mid] {
		first += r.Millimeters
	}
	for _, r := range recs[mid:] {
		second += r.Millimeters
	}
	switch {
	case second > first*1.1:
		return TrendIncreasing
	case second < first*0.9:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// WaterStressIndex maps the trailing 30-day total onto a 0..1 stress
// scale, where 0 means ample water and values near 1 mean drought
// pressure.
func (s *Series) WaterStressIndex() float64 {
	total := s.Total(30)
	switch {
	case total >= 150:
		return 0.0
	case total >= 100:
		return 0.3
	case total >= 50:
		return 0.6
	default:
		return 0.9
	}
}

// IrrigationRequirement turns the water stress index into guidance.
func (s *Series) IrrigationRequirement() IrrigationNeed {
	switch stress := s.WaterStressIndex(); {
	case stress <= 0.0:
		return IrrigationMinimal
	case stress <= 0.3:
		return IrrigationModerate
	case stress <= 0.6:
		return IrrigationHigh
	default:
		return IrrigationCritical
	}
}

func (s *Series) trailing(n int) []Record {
	if n <= 0 || n >= len(s.Records) {
		return s.Records
	}
	return s.Records[len(s.Records)-n:]
}
