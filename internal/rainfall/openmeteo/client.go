// Package openmeteo fetches daily precipitation history from the
// Open-Meteo historical (archive) API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/rainfall"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

const (
	defaultBaseURL = "https://archive-api.open-meteo.com/v1"

	// Archive data trails real time by a few days.
	archiveLagDays = 3

	defaultPeriodDays = 30
)

// ClientConfig configures the archive client.
type ClientConfig struct {
	BaseURL string

	// PeriodDays is the history window to fetch. Default: 30.
	PeriodDays int

	HTTPClient *resilience.Client
	Logger     zerolog.Logger

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Client queries the Open-Meteo archive for precipitation series.
type Client struct {
	baseURL    string
	periodDays int
	http       *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates an archive client.
func New(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = defaultPeriodDays
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.ClientConfig{Name: "openmeteo-archive"})
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		periodDays: cfg.PeriodDays,
		http:       cfg.HTTPClient,
		logger:     cfg.Logger.With().Str("source", "openmeteo-archive").Logger(),
		now:        cfg.Now,
	}
}

// Name identifies this source.
func (c *Client) Name() string { return "openmeteo-archive" }

type archiveResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// FetchRainfall retrieves the trailing precipitation history for the
// given point. Days with a null upstream value are recorded as zero.
func (c *Client) FetchRainfall(ctx context.Context, lat, lon float64) (*rainfall.Series, error) {
	end := c.now().UTC().AddDate(0, 0, -archiveLagDays)
	start := end.AddDate(0, 0, -(c.periodDays - 1))

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	q.Set("daily", "precipitation_sum")
	q.Set("timezone", "UTC")

	reqURL := fmt.Sprintf("%s/archive?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("openmeteo archive: build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openmeteo archive: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openmeteo archive: unexpected status %d", resp.StatusCode)
	}

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openmeteo archive: decode response: %w", err)
	}

	series := &rainfall.Series{
		PeriodDays: c.periodDays,
		FetchedAt:  c.now().UTC(),
	}
	for i, ts := range payload.Daily.Time {
		date, err := time.Parse("2006-01-02", ts)
		if err != nil {
			continue
		}
		rec := rainfall.Record{Date: date}
		if i < len(payload.Daily.PrecipitationSum) && payload.Daily.PrecipitationSum[i] != nil {
			rec.Millimeters = *payload.Daily.PrecipitationSum[i]
		}
		series.Records = append(series.Records, rec)
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("records", len(series.Records)).
		Float64("total_mm", series.Total(0)).
		Msg("fetched rainfall series")

	return series, nil
}
