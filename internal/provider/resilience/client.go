// Package resilience wraps outbound HTTP to the transit information gateway
// with a circuit breaker and bounded transport-level retries. The query
// engine itself never retries a failed call; this transport only smooths
// over transient network faults beneath a single logical upstream call.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the upstream circuit breaker is open.
var ErrCircuitOpen = errors.New("upstream circuit breaker is open")

// ClientConfig holds configuration for the resilient transport.
type ClientConfig struct {
	// Name identifies the upstream for circuit breaker naming.
	Name string

	// Timeout bounds one HTTP attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of transport-level retries on transient
	// faults. Default 0: one attempt, failures surface immediately.
	MaxRetries uint64

	// InitialInterval / MaxInterval shape the retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker overrides the breaker settings; nil uses defaults.
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultClientConfig returns the transport defaults for an upstream.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      0,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Client is the circuit-broken HTTP transport for upstream calls.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient transport from cfg.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	cbCfg := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbCfg = *cfg.CircuitBreaker
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    NewCircuitBreaker[*http.Response](cbCfg), //nolint:bodyclose // type param, not response
		config:     cfg,
	}
}

// Do executes req through the circuit breaker. Transient faults (network
// errors, 5xx) are retried up to MaxRetries with exponential backoff; the
// caller still sees exactly one response or one error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes req with the given context governing retries.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by count, not wall clock

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			// 5xx counts as a breaker failure and is retryable.
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
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

	if err := backoff.Retry(attempt, policy); err != nil {
		// A 5xx that exhausted retries still yields the response so the
		// caller can classify it as an http_error.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// ServerError represents an upstream HTTP 5xx.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// State returns the breaker state, exposed for readiness reporting.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
