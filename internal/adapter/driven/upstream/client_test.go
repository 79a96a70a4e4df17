package upstream_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/upstream"
)

func TestNewClient_CachesCacheableGET(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, upstream.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	client := upstream.NewClient(upstream.Options{BaseURL: server.URL + "/"})

	first, err := client.R().Get("/thing")
	require.NoError(t, err)
	assert.False(t, upstream.FromCache(first))

	second, err := client.R().Get("/thing")
	require.NoError(t, err)
	assert.True(t, upstream.FromCache(second))
	assert.Equal(t, `{"ok":true}`, second.String())

	assert.Equal(t, int32(1), hits.Load())
}

func TestNewClient_DoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := upstream.NewClient(upstream.Options{BaseURL: server.URL})

	resp, err := client.R().Post("/thing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	assert.Equal(t, int32(1), hits.Load())
}
