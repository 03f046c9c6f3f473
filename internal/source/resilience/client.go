// Package resilience wraps outbound HTTP calls to upstream data
// sources with retry, timeout and circuit-breaker protection.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned when a source's circuit breaker is open
	// and calls are being shed.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// UpstreamError represents an HTTP 5xx from an upstream source. It is
// surfaced as an error so the circuit breaker counts it as a failure.
type UpstreamError struct {
	Source     string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream error: %s", e.Source, http.StatusText(e.StatusCode))
}

// ClientConfig configures a resilient source client. Zero values are
// replaced with defaults in NewClient.
type ClientConfig struct {
	// Name identifies the upstream source in breaker state and logs.
	Name string

	// Timeout bounds each individual HTTP attempt. Default: 15s; soil
	// and archive queries are slow upstream.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff
	// between attempts. Defaults: 200ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// BreakerTimeout is how long the breaker stays open before probing
	// half-open. Default: 60s.
	BreakerTimeout time.Duration

	// ReadyToTrip overrides the trip condition. Default: at least 5
	// requests with a failure ratio of 50% or more.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is invoked on breaker transitions.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultReadyToTrip opens the breaker once at least 5 requests have
// been observed and half of them failed.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	return counts.Requests >= 5 &&
		float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

// Client is an HTTP client for a single upstream source. Requests are
// retried with exponential backoff on network errors and 5xx
// responses, and shed immediately while the breaker is open.
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	cfg     ClientConfig
}

// NewClient builds a resilient client for the named source.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = DefaultReadyToTrip
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: cfg.ReadyToTrip,
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &Client{
		name:    cfg.Name,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		cfg:     cfg,
	}
}

// Do executes the request with retry and breaker protection. The
// caller owns the response body. If retries are exhausted on a 5xx,
// the last 5xx response is returned so callers can inspect it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0 // attempts bounded by MaxRetries

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.http.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &UpstreamError{Source: c.name, StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx))
	if err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// Name returns the source name the client was built for.
func (c *Client) Name() string { return c.name }

// BreakerState exposes the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State { return c.breaker.State() }

// BreakerCounts exposes the circuit breaker counters.
func (c *Client) BreakerCounts() gobreaker.Counts { return c.breaker.Counts() }
