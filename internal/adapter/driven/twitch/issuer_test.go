package twitch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/twitch"
	"github.com/ericfisherdev/retrotracker/internal/adapter/driven/upstream"
)

func newTestIssuer(t *testing.T, handler http.HandlerFunc) *twitch.Issuer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return twitch.NewIssuer(upstream.NewClient(upstream.Options{}), server.URL+"/oauth2/token", "cid", "csecret")
}

func TestIssue_Success(t *testing.T) {
	issuer := newTestIssuer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.Equal(t, "cid", r.URL.Query().Get("client_id"))
		assert.Equal(t, "csecret", r.URL.Query().Get("client_secret"))
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"tok123","expires_in":5011271,"token_type":"bearer"}`))
	})

	tok, err := issuer.Issue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok123", tok.AccessToken)
	assert.Equal(t, 5011271*time.Second, tok.ExpiresIn)
}

func TestIssue_Non2xx(t *testing.T) {
	issuer := newTestIssuer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":403,"message":"invalid client secret"}`))
	})

	_, err := issuer.Issue(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestIssue_MissingAccessToken(t *testing.T) {
	issuer := newTestIssuer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":100}`))
	})

	_, err := issuer.Issue(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token")
}

func TestIssue_MalformedBody(t *testing.T) {
	issuer := newTestIssuer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := issuer.Issue(context.Background())

	assert.Error(t, err)
}
