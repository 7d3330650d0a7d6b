// Package ns implements the provider.Client contract against the NS
// Reisinformatie API shape (gateway.apiportal.ns.nl).
package ns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/treinwijzer/treinwijzer/internal/provider"
	"github.com/treinwijzer/treinwijzer/internal/provider/resilience"
)

const (
	// ProviderName identifies this transit provider.
	ProviderName = "ns"

	// DefaultBaseURL is the NS API base URL.
	DefaultBaseURL = "https://gateway.apiportal.ns.nl/reisinformatie-api/api/v3"

	// DefaultAPIKeyEnv is the environment variable holding the
	// subscription key when none is configured.
	DefaultAPIKeyEnv = "NS_API_KEY"

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 4 << 20
)

// ClientConfig holds configuration for the NS client.
type ClientConfig struct {
	// BaseURLs are tried in order; a later URL is only attempted when an
	// earlier one is unreachable. Empty defaults to the public NS API.
	BaseURLs []string

	// APIKeyEnv names the environment variable holding the subscription
	// key. The key is resolved per call so rotation needs no restart.
	APIKeyEnv string

	// HTTPClient is the transport to use; nil uses a resilient default.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an NS Reisinformatie API client.
type Client struct {
	baseURLs   []string
	apiKeyEnv  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new NS client.
func NewClient(cfg ClientConfig) *Client {
	baseURLs := cfg.BaseURLs
	if len(baseURLs) == 0 {
		baseURLs = []string{DefaultBaseURL}
	}

	apiKeyEnv := cfg.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = DefaultAPIKeyEnv
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURLs:   baseURLs,
		apiKeyEnv:  apiKeyEnv,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// resourcePath maps a resource plus its query to an API path. Path-shaped
// parameters are consumed from the query.
func resourcePath(resource provider.Resource, query url.Values) (string, error) {
	switch resource {
	case provider.ResourceStationSearch:
		return "/stations", nil
	case provider.ResourceStationsNearest:
		return "/stations/nearest", nil
	case provider.ResourceDepartures:
		return "/departures", nil
	case provider.ResourceArrivals:
		return "/arrivals", nil
	case provider.ResourceTrips:
		return "/trips", nil
	case provider.ResourceTripDetail:
		return "/trips/trip", nil
	case provider.ResourceJourneyDetail:
		return "/journey", nil
	case provider.ResourceDisruptions:
		return "/disruptions", nil
	case provider.ResourceStationDisruptions:
		code := query.Get("stationCode")
		if code == "" {
			return "", fmt.Errorf("station_disruptions requires stationCode")
		}
		query.Del("stationCode")
		return "/disruptions/station/" + url.PathEscape(code), nil
	case provider.ResourceDisruptionDetail:
		id := query.Get("id")
		if id == "" {
			return "", fmt.Errorf("disruption_detail requires id")
		}
		query.Del("id")
		return "/disruptions/" + url.PathEscape(id), nil
	}
	return "", fmt.Errorf("unknown resource %q", resource)
}

// Call executes one resource query. Errors are always *provider.Error:
// network failures and timeouts classify as unreachable, non-2xx statuses
// as http_error, and unparseable bodies as invalid_response.
func (c *Client) Call(ctx context.Context, resource provider.Resource, query url.Values) (*provider.Response, error) {
	if query == nil {
		query = url.Values{}
	}

	path, err := resourcePath(resource, query)
	if err != nil {
		return nil, provider.NewError(provider.ErrInvalidResponse, err.Error())
	}

	var lastErr *provider.Error
	for _, base := range c.baseURLs {
		resp, callErr := c.callBase(ctx, base, path, query)
		if callErr == nil {
			return resp, nil
		}
		lastErr = callErr
		// Only dial-level failures justify trying the next base URL.
		if callErr.Code != provider.ErrUnreachable {
			return nil, callErr
		}
		c.logger.Warn().
			Str("base_url", base).
			Str("resource", string(resource)).
			Msg("upstream base unreachable, trying next")
	}
	return nil, lastErr
}

func (c *Client) callBase(ctx context.Context, base, path string, query url.Values) (*provider.Response, *provider.Error) {
	u := strings.TrimRight(base, "/") + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, provider.NewError(provider.ErrUnreachable, "creating request: "+err.Error())
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", os.Getenv(c.apiKeyEnv))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts, open breakers and dial failures all classify the same:
		// the base could not be reached.
		return nil, provider.NewError(provider.ErrUnreachable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, provider.NewError(provider.ErrUnreachable, "reading response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := provider.NewError(provider.ErrHTTP, fmt.Sprintf("unexpected status %d", resp.StatusCode))
		perr.Status = resp.StatusCode
		perr.Details = map[string]any{"body": truncate(string(body), 512)}
		return nil, perr
	}

	if !json.Valid(body) {
		return nil, provider.NewError(provider.ErrInvalidResponse, "upstream returned invalid JSON")
	}

	return &provider.Response{
		Body:          json.RawMessage(body),
		MaxAgeSeconds: parseMaxAge(resp.Header.Get("Cache-Control")),
	}, nil
}

// parseMaxAge extracts max-age from a Cache-Control header; 0 means no hint.
func parseMaxAge(header string) int {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		if rest, ok := strings.CutPrefix(directive, "max-age="); ok {
			if n, err := strconv.Atoi(rest); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
