// Package soilgrids fetches topsoil properties from the ISRIC
// SoilGrids v2 REST API.
package soilgrids

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/soil"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

const (
	defaultBaseURL = "https://rest.isric.org/soilgrids/v2.0"

	// Topsoil layer queried for all properties.
	depthLabel = "0-5cm"
	depthCM    = 5
)

// ClientConfig configures the SoilGrids client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides the resilient transport. If nil a default
	// client named "soilgrids" is built.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client queries SoilGrids for point soil properties.
type Client struct {
	baseURL string
	http    *resilience.Client
	logger  zerolog.Logger
}

// New creates a SoilGrids client.
func New(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.ClientConfig{Name: "soilgrids"})
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger.With().Str("source", "soilgrids").Logger(),
	}
}

// Name identifies this source.
func (c *Client) Name() string { return "soilgrids" }

// propertiesResponse mirrors the SoilGrids point-query payload. Mean
// values come scaled by 10 (pH, soc, particle fractions) or 100
// (bulk density); missing layers carry a null mean.
type propertiesResponse struct {
	Properties struct {
		Layers []struct {
			Name   string `json:"name"`
			Depths []struct {
				Label  string `json:"label"`
				Values struct {
					Mean *float64 `json:"mean"`
				} `json:"values"`
			} `json:"depths"`
		} `json:"layers"`
	} `json:"properties"`
}

// FetchSoil queries the topsoil layer at the given point and derives
// a normalized soil profile. Missing upstream values fall back to
// package defaults rather than failing the fetch.
func (c *Client) FetchSoil(ctx context.Context, lat, lon float64) (*soil.Profile, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	for _, p := range []string{"phh2o", "soc", "bdod", "clay", "sand", "silt"} {
		q.Add("property", p)
	}
	q.Set("depth", depthLabel)
	q.Set("value", "mean")

	reqURL := fmt.Sprintf("%s/properties/query?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("soilgrids: build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("soilgrids: query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("soilgrids: unexpected status %d", resp.StatusCode)
	}

	var payload propertiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("soilgrids: decode response: %w", err)
	}

	props := c.extractProperties(payload)
	profile := soil.NewProfile(props, depthCM, time.Now().UTC())

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Float64("ph", profile.Properties.PH).
		Str("texture", string(profile.Texture)).
		Msg("fetched soil profile")

	return profile, nil
}

func (c *Client) extractProperties(payload propertiesResponse) soil.Properties {
	means := make(map[string]float64)
	for _, layer := range payload.Properties.Layers {
		for _, d := range layer.Depths {
			if d.Label == depthLabel && d.Values.Mean != nil {
				means[layer.Name] = *d.Values.Mean
			}
		}
	}

	// Raw units: phh2o, soc and fractions are value*10, bdod is
	// cg/cm3 (value*100). Zero here means missing; Normalize fills
	// the defaults.
	props := soil.Properties{}
	if v, ok := means["phh2o"]; ok {
		props.PH = v / 10
	}
	if v, ok := means["soc"]; ok {
		props.OrganicCarbon = v / 10
	}
	if v, ok := means["bdod"]; ok {
		props.BulkDensity = v / 100
	}
	if v, ok := means["clay"]; ok {
		props.ClayPct = v / 10
	}
	if v, ok := means["sand"]; ok {
		props.SandPct = v / 10
	}
	if v, ok := means["silt"]; ok {
		props.SiltPct = v / 10
	}
	return props
}
