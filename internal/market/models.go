// Package market defines mandi price models and trend analysis for
// agricultural commodities.
package market

import (
	"math"
	"strings"
	"time"
)

// Trend classifies recent price movement for a commodity.
type Trend string

const (
	TrendRising   Trend = "rising"
	TrendFalling  Trend = "falling"
	TrendStable   Trend = "stable"
	TrendVolatile Trend = "volatile"
)

// Thresholds for trend classification and volatility capping.
const (
	risingChangePct   = 5.0
	volatileThreshold = 0.5
)

// Price is one observed price point for a commodity.
type Price struct {
	Crop     string
	PerKgINR float64
	Market   string
	Date     time.Time
}

// Analysis summarizes price history for a single commodity.
type Analysis struct {
	Crop            string
	CurrentPriceINR float64
	Avg3MonthINR    float64
	Avg12MonthINR   float64
	ChangePct       float64 // current vs 3-month average
	Trend           Trend
	Volatility      float64 // coefficient of variation, capped at 1
}

// PriceSet is the market view for one location: latest prices and the
// derived per-commodity analyses.
type PriceSet struct {
	Market    string
	Prices    []Price
	Analyses  []Analysis
	FetchedAt time.Time
}

// CurrentPrice returns the latest known price per kg for the named
// crop. Lookup is case-insensitive.
func (ps *PriceSet) CurrentPrice(crop string) (float64, bool) {
	if a, ok := ps.AnalysisFor(crop); ok {
		return a.CurrentPriceINR, true
	}
	for _, p := range ps.Prices {
		if strings.EqualFold(p.Crop, crop) {
			return p.PerKgINR, true
		}
	}
	return 0, false
}

// AnalysisFor returns the analysis for the named crop, if present.
func (ps *PriceSet) AnalysisFor(crop string) (*Analysis, bool) {
	for i := range ps.Analyses {
		if strings.EqualFold(ps.Analyses[i].Crop, crop) {
			return &ps.Analyses[i], true
		}
	}
	return nil, false
}

// Analyze derives an Analysis from a chronological (oldest first)
// daily price history for one crop. It returns false when the history
// is empty.
func Analyze(crop string, history []float64) (Analysis, bool) {
	if len(history) == 0 {
		return Analysis{}, false
	}

	current := history[len(history)-1]
	avg3 := trailingMean(history, 90)
	avg12 := trailingMean(history, 365)

	changePct := 0.0
	if avg3 > 0 {
		changePct = (current - avg3) / avg3 * 100
	}

	vol := volatility(history)

	trend := TrendStable
	switch {
	case vol >= volatileThreshold:
		trend = TrendVolatile
	case changePct > risingChangePct:
		trend = TrendRising
	case changePct < -risingChangePct:
		trend = TrendFalling
	}

	return Analysis{
		Crop:            crop,
		CurrentPriceINR: round2(current),
		Avg3MonthINR:    round2(avg3),
		Avg12MonthINR:   round2(avg12),
		ChangePct:       round2(changePct),
		Trend:           trend,
		Volatility:      math.Round(vol*1000) / 1000,
	}, true
}

func trailingMean(history []float64, n int) float64 {
	if n > len(history) {
		n = len(history)
	}
	window := history[len(history)-n:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// volatility is the coefficient of variation of the series, capped at 1.
func volatility(history []float64) float64 {
	mean := trailingMean(history, len(history))
	if mean <= 0 || len(history) < 2 {
		return 0
	}
	var ss float64
	for _, v := range history {
		ss += (v - mean) * (v - mean)
	}
	cv := math.Sqrt(ss/float64(len(history))) / mean
	return math.Min(cv, 1.0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
