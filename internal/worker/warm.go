package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/location"
)

// errNoData marks a warm point whose snapshot came back empty.
var errNoData = errors.New("no source returned data")

// WarmJob pre-fetches location snapshots for the configured targets
// so that interactive requests hit a warm cache.
type WarmJob struct {
	config    WarmConfig
	locations *location.Service
	logger    zerolog.Logger
	metrics   *WarmMetrics
}

// WarmMetrics tracks warming job statistics.
type WarmMetrics struct {
	mu sync.RWMutex

	TotalRuns        int64
	SuccessfulPoints int64
	FailedPoints     int64
	PartialPoints    int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmJobConfig holds the dependencies for a WarmJob.
type WarmJobConfig struct {
	Config    WarmConfig
	Locations *location.Service
	Logger    zerolog.Logger
}

// NewWarmJob creates a warming job.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultWarmConfig()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultWarmConfig().Concurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultWarmConfig().Timeout
	}

	return &WarmJob{
		config:    config,
		locations: cfg.Locations,
		logger:    cfg.Logger.With().Str("component", "warm-job").Logger(),
		metrics:   &WarmMetrics{},
	}
}

// WarmResult summarizes one warming run.
type WarmResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Partial     int
	Failed      int
	Errors      []WarmError
}

// WarmError is one failed point.
type WarmError struct {
	Point Point
	Error string
}

// Run warms every configured point through a bounded worker pool and
// reports the outcome.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	start := time.Now()
	result := &WarmResult{
		StartTime:   start,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting snapshot warming run")

	points := j.config.AllPoints()
	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		switch {
		case pr.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, WarmError{Point: pr.point, Error: pr.err.Error()})
		case pr.partial:
			result.Partial++
		default:
			result.Successful++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("partial", result.Partial).
		Int("failed", result.Failed).
		Msg("snapshot warming run completed")

	return result
}

type pointResult struct {
	point   Point
	partial bool
	err     error
}

func (j *WarmJob) warmWorker(ctx context.Context, points <-chan Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.warmPoint(ctx, point)
		}
	}
}

func (j *WarmJob) warmPoint(ctx context.Context, point Point) pointResult {
	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	snap, err := j.locations.FetchSnapshot(pointCtx, point.Lat, point.Lon)
	if err != nil {
		j.logger.Warn().
			Err(err).
			Float64("lat", point.Lat).
			Float64("lon", point.Lon).
			Msg("snapshot warm failed")
		return pointResult{point: point, err: err}
	}

	// An empty snapshot is never cached, so the point stayed cold.
	if snap.SourceCount() == 0 {
		j.logger.Warn().
			Float64("lat", point.Lat).
			Float64("lon", point.Lon).
			Msg("snapshot warm got no data")
		return pointResult{point: point, err: errNoData}
	}

	return pointResult{point: point, partial: !snap.Complete()}
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulPoints += int64(result.Successful)
	j.metrics.PartialPoints += int64(result.Partial)
	j.metrics.FailedPoints += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// Metrics returns a copy of the accumulated metrics.
func (j *WarmJob) Metrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:        j.metrics.TotalRuns,
		SuccessfulPoints: j.metrics.SuccessfulPoints,
		PartialPoints:    j.metrics.PartialPoints,
		FailedPoints:     j.metrics.FailedPoints,
		LastRunAt:        j.metrics.LastRunAt,
		LastRunDuration:  j.metrics.LastRunDuration,
		TotalDuration:    j.metrics.TotalDuration,
	}
}
