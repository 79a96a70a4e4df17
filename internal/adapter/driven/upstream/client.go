// Package upstream builds the HTTP clients shared by the catalog adapters.
package upstream

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gregjones/httpcache"
)

// DefaultUserAgent identifies the bot to upstream APIs.
const DefaultUserAgent = "RetroTracker/1.0 (+https://github.com/ericfisherdev/retrotracker)"

// Options configures a client built by NewClient.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// Transport is the innermost round tripper; nil means http.DefaultTransport.
	// Tests inject httptest transports here.
	Transport http.RoundTripper
}

// NewClient creates a resty client with the following transport stack:
//  1. httpcache (in-memory, honours Cache-Control/ETag on GET responses)
//  2. Options.Transport or http.DefaultTransport
//
// Retries are left disabled; a failed request is reported to the caller as is.
func NewClient(opts Options) *resty.Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	if opts.Transport != nil {
		cacheTransport.Transport = opts.Transport
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.NewWithClient(cacheTransport.Client()).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return client
}

// FromCache reports whether resp was served by the httpcache layer.
func FromCache(resp *resty.Response) bool {
	return resp != nil && resp.Header().Get(httpcache.XFromCache) == "1"
}
