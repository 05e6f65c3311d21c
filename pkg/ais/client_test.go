package ais

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/gNutty/vesselradar/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	err      error
	reserved int
	backoff  time.Duration
}

func (f *fakeLimiter) Reserve(_ context.Context) error {
	f.reserved++
	return f.err
}

func (f *fakeLimiter) Backoff(_ context.Context, d time.Duration) {
	f.backoff = d
}

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string, limiter Limiter) (*Client, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	client := NewClient(
		httpclient.NewClient(httpclient.DefaultConfig(), logger),
		Config{BaseURL: server.URL + "/", Host: "vesselfinder1.p.rapidapi.com", APIKey: apiKey, Timeout: time.Second},
		limiter,
		logger,
	)
	return client, &calls
}

func writeJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestLookupByID_PayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"upper-case object", `{"MMSI":"440176000","NAME":"HMM HOPE","LATITUDE":1.0,"LONGITUDE":2.0,"SPEED":"11.5"}`},
		{"array", `[{"mmsi":440176000,"name":"HMM HOPE","latitude":1.0,"longitude":2.0,"speed":11.5}]`},
		{"camelCase wrapper", `{"results":[{"trackingId":"440176000","vesselName":"HMM HOPE","lat":"1.0","lng":"2.0","speedKnots":11.5}]}`},
		{"nested AIS block", `{"AIS":{"MMSI":440176000,"NAME":"HMM HOPE","LATITUDE":1.0,"LONGITUDE":2.0,"SPEED":11.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, writeJSON(tt.body), "key", nil)

			candidate, err := client.LookupByID(context.Background(), "440176000")
			require.NoError(t, err)
			assert.Equal(t, "440176000", candidate.TrackingID)
			assert.Equal(t, "HMM HOPE", candidate.Name)
			assert.Equal(t, 1.0, *candidate.Latitude)
			assert.Equal(t, 2.0, *candidate.Longitude)
			require.NotNil(t, candidate.Speed)
			assert.Equal(t, 11.5, *candidate.Speed)
		})
	}
}

func TestLookupByID_PicksRequestedVessel(t *testing.T) {
	body := `[{"MMSI":"355906000","LATITUDE":5.2,"LONGITUDE":-4.0},{"MMSI":"440176000","LATITUDE":1.0,"LONGITUDE":2.0}]`
	client, _ := newTestClient(t, writeJSON(body), "key", nil)

	candidate, err := client.LookupByID(context.Background(), "440176000")
	require.NoError(t, err)
	assert.Equal(t, "440176000", candidate.TrackingID)
	assert.Equal(t, 1.0, *candidate.Latitude)
}

func TestLookupByID_UnlabelledRecordTakesRequestedID(t *testing.T) {
	client, _ := newTestClient(t, writeJSON(`{"LATITUDE":1.0,"LONGITUDE":2.0}`), "key", nil)

	candidate, err := client.LookupByID(context.Background(), "440176000")
	require.NoError(t, err)
	assert.Equal(t, "440176000", candidate.TrackingID)
}

func TestLookupByID_SendsProviderHeaders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "355906000", r.URL.Query().Get("mmsi"))
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "vesselfinder1.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		writeJSON(`{"MMSI":"355906000","LATITUDE":5.2,"LONGITUDE":-4.0}`)(w, r)
	}, "secret", nil)

	_, err := client.LookupByID(context.Background(), "355906000")
	require.NoError(t, err)
}

func TestLookupByID_Errors(t *testing.T) {
	t.Run("missing credentials makes no request", func(t *testing.T) {
		client, calls := newTestClient(t, writeJSON(`{}`), "", nil)
		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrMissingCredentials)
		assert.Zero(t, *calls)
	})

	t.Run("empty array", func(t *testing.T) {
		client, _ := newTestClient(t, writeJSON(`[]`), "key", nil)
		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("record without coordinates", func(t *testing.T) {
		client, _ := newTestClient(t, writeJSON(`{"MMSI":"1","NAME":"X"}`), "key", nil)
		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("only another vessel returned", func(t *testing.T) {
		client, _ := newTestClient(t, writeJSON(`[{"MMSI":"355906000","LATITUDE":5.2,"LONGITUDE":-4.0}]`), "key", nil)
		_, err := client.LookupByID(context.Background(), "440176000")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, "key", nil)
		_, err := client.LookupByID(context.Background(), "1")

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		client, _ := newTestClient(t, writeJSON(`<html>`), "key", nil)
		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("timeout", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, "key", nil)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.LookupByID(ctx, "1")
		assert.Error(t, err)
	})
}

func TestLookupByID_RateLimit(t *testing.T) {
	t.Run("local quota exhausted", func(t *testing.T) {
		limiter := &fakeLimiter{err: errors.New("exceeded")}
		client, calls := newTestClient(t, writeJSON(`{}`), "key", limiter)

		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Zero(t, *calls)
	})

	t.Run("provider 429 blocks the quota", func(t *testing.T) {
		limiter := &fakeLimiter{}
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "90")
			w.WriteHeader(http.StatusTooManyRequests)
		}, "key", limiter)

		_, err := client.LookupByID(context.Background(), "1")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 1, limiter.reserved)
		assert.Equal(t, 90*time.Second, limiter.backoff)
	})
}

func TestSearchByName_ReturnsCandidatesInOrder(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EVER WEB", r.URL.Query().Get("name"))
		writeJSON(`[
			{"MMSI":"1","NAME":"EVER WEB","TYPE":"Tug"},
			{"MMSI":"563237400","NAME":"EVER WEB","TYPE":"Container Ship","IMO":"9000001"}
		]`)(w, r)
	}, "key", nil)

	candidates, err := client.SearchByName(context.Background(), "EVER WEB")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "1", candidates[0].TrackingID)
	assert.Equal(t, "Container Ship", candidates[1].VesselType)
	assert.Equal(t, "9000001", candidates[1].IMO)
}
