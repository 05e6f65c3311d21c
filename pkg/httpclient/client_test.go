package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxSize int64) *Client {
	cfg := DefaultConfig()
	cfg.MaxResponseSize = maxSize
	return NewClient(cfg, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"MMSI":"440176000"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(0).Get(context.Background(), server.URL+"/search?mmsi=1", map[string]string{"x-api-key": "secret"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	body, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"MMSI": "440176000"}, body)
}

func TestClient_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	_, err := newTestClient(16).Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestResponse_JSONEmptyBody(t *testing.T) {
	body, err := (&Response{Body: []byte("  ")}).JSON()
	require.NoError(t, err)
	assert.Nil(t, body)

	_, err = (&Response{Body: []byte("<html>")}).JSON()
	assert.Error(t, err)
}
