package ns_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/provider"
	"github.com/treinwijzer/treinwijzer/internal/provider/ns"
)

type recordedRequest struct {
	path   string
	query  url.Values
	apiKey string
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ns.Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.apiKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := ns.NewClient(ns.ClientConfig{
		BaseURLs:  []string{srv.URL},
		APIKeyEnv: "TEST_NS_KEY",
		Logger:    zerolog.Nop(),
	})
	return client, rec
}

func okJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"payload":[]}`))
}

func TestCallSendsSubscriptionKeyFromEnv(t *testing.T) {
	t.Setenv("TEST_NS_KEY", "sleutel-123")
	client, rec := newTestClient(t, okJSON)

	_, err := client.Call(context.Background(), provider.ResourceStationSearch, url.Values{"q": {"amsterdam"}})
	require.NoError(t, err)
	assert.Equal(t, "sleutel-123", rec.apiKey)
	assert.Equal(t, "/stations", rec.path)
	assert.Equal(t, "amsterdam", rec.query.Get("q"))
}

func TestCallResourcePaths(t *testing.T) {
	cases := []struct {
		resource provider.Resource
		query    url.Values
		path     string
	}{
		{provider.ResourceStationsNearest, nil, "/stations/nearest"},
		{provider.ResourceDepartures, nil, "/departures"},
		{provider.ResourceArrivals, nil, "/arrivals"},
		{provider.ResourceTrips, nil, "/trips"},
		{provider.ResourceTripDetail, nil, "/trips/trip"},
		{provider.ResourceJourneyDetail, nil, "/journey"},
		{provider.ResourceDisruptions, nil, "/disruptions"},
		{provider.ResourceStationDisruptions, url.Values{"stationCode": {"ASD"}}, "/disruptions/station/ASD"},
		{provider.ResourceDisruptionDetail, url.Values{"id": {"d-42"}}, "/disruptions/d-42"},
	}

	for _, tc := range cases {
		t.Run(string(tc.resource), func(t *testing.T) {
			client, rec := newTestClient(t, okJSON)
			_, err := client.Call(context.Background(), tc.resource, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.path, rec.path)
		})
	}
}

func TestCallPathParamsConsumedFromQuery(t *testing.T) {
	client, rec := newTestClient(t, okJSON)

	_, err := client.Call(context.Background(), provider.ResourceStationDisruptions,
		url.Values{"stationCode": {"ASD"}})
	require.NoError(t, err)
	assert.Empty(t, rec.query.Get("stationCode"))
}

func TestCallMissingPathParam(t *testing.T) {
	client, _ := newTestClient(t, okJSON)

	_, err := client.Call(context.Background(), provider.ResourceDisruptionDetail, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrInvalidResponse, perr.Code)
}

func TestCallNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":["onbekend station"]}`))
	})

	_, err := client.Call(context.Background(), provider.ResourceDepartures, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrHTTP, perr.Code)
	assert.Equal(t, http.StatusNotFound, perr.Status)
	assert.Contains(t, perr.Details["body"], "onbekend station")
}

func TestCallInvalidJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>niet json</html>`))
	})

	_, err := client.Call(context.Background(), provider.ResourceTrips, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrInvalidResponse, perr.Code)
}

func TestCallMaxAgeHint(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=45")
		_, _ = w.Write([]byte(`{"payload":[]}`))
	})

	resp, err := client.Call(context.Background(), provider.ResourceStationSearch, nil)
	require.NoError(t, err)
	assert.Equal(t, 45, resp.MaxAgeSeconds)
}

func TestCallNoMaxAgeHint(t *testing.T) {
	client, _ := newTestClient(t, okJSON)

	resp, err := client.Call(context.Background(), provider.ResourceStationSearch, nil)
	require.NoError(t, err)
	assert.Zero(t, resp.MaxAgeSeconds)
}

func TestCallFailsOverOnUnreachableBase(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(okJSON))
	defer good.Close()

	// A server that is already closed gives a reliable dial failure.
	dead := httptest.NewServer(http.HandlerFunc(okJSON))
	deadURL := dead.URL
	dead.Close()

	client := ns.NewClient(ns.ClientConfig{
		BaseURLs: []string{deadURL, good.URL},
		Logger:   zerolog.Nop(),
	})

	resp, err := client.Call(context.Background(), provider.ResourceStationSearch, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Body)
}

func TestCallNoFailoverOnHTTPError(t *testing.T) {
	var secondHit bool
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHit = true
		okJSON(w, r)
	}))
	defer second.Close()

	client := ns.NewClient(ns.ClientConfig{
		BaseURLs: []string{first.URL, second.URL},
		Logger:   zerolog.Nop(),
	})

	_, err := client.Call(context.Background(), provider.ResourceStationSearch, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrHTTP, perr.Code)
	assert.False(t, secondHit)
}

func TestCallAllBasesUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(okJSON))
	deadURL := dead.URL
	dead.Close()

	client := ns.NewClient(ns.ClientConfig{
		BaseURLs: []string{deadURL},
		Logger:   zerolog.Nop(),
	})

	_, err := client.Call(context.Background(), provider.ResourceStationSearch, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, provider.ErrUnreachable, perr.Code)
}

func TestProviderName(t *testing.T) {
	client := ns.NewClient(ns.ClientConfig{Logger: zerolog.Nop()})
	assert.Equal(t, "ns", client.Name())
}
