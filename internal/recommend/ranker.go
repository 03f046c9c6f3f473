package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/market"
)

// Ranking constants. Suitability dominates the combined score;
// profitability refines the order among agronomically viable crops.
const (
	suitabilityWeight   = 0.7
	profitabilityWeight = 0.3

	defaultMinScore   = 0.3
	defaultMaxResults = 5

	// defaultProfitCeilingINR normalizes per-acre revenue to 0..1.
	defaultProfitCeilingINR = 100000

	riskLowThreshold    = 0.8
	riskMediumThreshold = 0.6

	subScoreRiskFloor = 0.4
)

// Trend multipliers applied to expected revenue.
var trendMultiplier = map[market.Trend]float64{
	market.TrendRising:   1.2,
	market.TrendFalling:  0.8,
	market.TrendVolatile: 0.9,
	market.TrendStable:   1.0,
}

// RankerConfig configures the recommendation ranker. Zero values take
// defaults.
type RankerConfig struct {
	Catalog *crop.Catalog

	Weights Weights

	// MinScore drops crops whose suitability falls below it.
	MinScore float64

	// MaxResults caps the list length.
	MaxResults int

	// ProfitCeilingINR normalizes per-acre revenue when deriving the
	// profitability score.
	ProfitCeilingINR float64

	Logger zerolog.Logger
}

// Options are per-request overrides for a single ranking call.
type Options struct {
	Weights    *Weights
	MinScore   *float64
	MaxResults int
}

// Ranker turns snapshots into ranked crop recommendations.
type Ranker struct {
	catalog       *crop.Catalog
	scorer        *Scorer
	minScore      float64
	maxResults    int
	profitCeiling float64
	logger        zerolog.Logger
}

// NewRanker creates a ranker over the given catalog.
func NewRanker(cfg RankerConfig) *Ranker {
	if cfg.MinScore == 0 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.ProfitCeilingINR == 0 {
		cfg.ProfitCeilingINR = defaultProfitCeilingINR
	}
	return &Ranker{
		catalog:       cfg.Catalog,
		scorer:        NewScorer(cfg.Weights),
		minScore:      cfg.MinScore,
		maxResults:    cfg.MaxResults,
		profitCeiling: cfg.ProfitCeilingINR,
		logger:        cfg.Logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend scores every catalog crop against the snapshot and
// returns the top results ordered by combined score descending, crop
// name ascending on ties. opts may be nil.
func (r *Ranker) Recommend(snap *location.Snapshot, opts *Options) []Recommendation {
	scorer := r.scorer
	minScore := r.minScore
	maxResults := r.maxResults
	if opts != nil {
		if opts.Weights != nil {
			scorer = NewScorer(*opts.Weights)
		}
		if opts.MinScore != nil {
			minScore = *opts.MinScore
		}
		if opts.MaxResults > 0 {
			maxResults = opts.MaxResults
		}
	}

	var recs []Recommendation
	for _, name := range r.catalog.AllNames() {
		req, ok := r.catalog.Lookup(name)
		if !ok {
			continue
		}

		suitability, breakdown := scorer.Score(req, snap)
		if suitability < minScore {
			continue
		}

		profitability := r.profitability(req, snap.Market)
		combined := math.Round((suitability*suitabilityWeight+profitability*profitabilityWeight)*1000) / 1000

		recs = append(recs, Recommendation{
			Crop:                  name,
			Suitability:           suitability,
			Breakdown:             breakdown,
			Profitability:         profitability,
			Combined:              combined,
			ExpectedProfitPerAcre: math.Round(req.TypicalYieldKgAcre * req.BasePriceINRPerKg * profitability),
			RiskLevel:             riskLevel(combined),
			RiskFactors:           riskFactors(breakdown),
			Summary:               summarize(name, suitability),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Combined != recs[j].Combined {
			return recs[i].Combined > recs[j].Combined
		}
		return recs[i].Crop < recs[j].Crop
	})

	if len(recs) > maxResults {
		recs = recs[:maxResults]
	}

	r.logger.Debug().
		Int("candidates", r.catalog.Len()).
		Int("recommended", len(recs)).
		Msg("ranked crop recommendations")

	return recs
}

// profitability derives a 0..1 economics score from current market
// conditions. Without market data it is neutral.
func (r *Ranker) profitability(req *crop.Requirements, prices *market.PriceSet) float64 {
	if prices == nil {
		return NeutralScore
	}
	analysis, ok := prices.AnalysisFor(req.Name)
	if !ok {
		price, found := prices.CurrentPrice(req.Name)
		if !found {
			return NeutralScore
		}
		analysis = &market.Analysis{Crop: req.Name, CurrentPriceINR: price, Trend: market.TrendStable}
	}

	mult, ok := trendMultiplier[analysis.Trend]
	if !ok {
		mult = 1.0
	}

	revenue := analysis.CurrentPriceINR * req.TypicalYieldKgAcre * mult * (1 - analysis.Volatility*0.3)
	score := revenue / r.profitCeiling
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*1000) / 1000
}

func riskLevel(combined float64) RiskLevel {
	switch {
	case combined >= riskLowThreshold:
		return RiskLow
	case combined >= riskMediumThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func riskFactors(b Breakdown) []string {
	var factors []string
	if b.SoilPH < subScoreRiskFloor {
		factors = append(factors, "Poor soil pH match")
	}
	if b.Temperature < subScoreRiskFloor {
		factors = append(factors, "Temperature outside optimal range")
	}
	if b.Rainfall < subScoreRiskFloor {
		factors = append(factors, "Insufficient rainfall")
	}
	if b.SoilType < subScoreRiskFloor {
		factors = append(factors, "Unsuitable soil texture")
	}
	if b.WaterAvailability < subScoreRiskFloor {
		factors = append(factors, "High water stress")
	}
	return factors
}

func summarize(name string, suitability float64) string {
	switch {
	case suitability >= 0.8:
		return fmt.Sprintf("%s is highly suitable for current conditions", name)
	case suitability >= 0.6:
		return fmt.Sprintf("%s is suitable for current conditions", name)
	case suitability >= 0.4:
		return fmt.Sprintf("%s is moderately suitable for current conditions", name)
	default:
		return fmt.Sprintf("%s has limited suitability for current conditions", name)
	}
}
