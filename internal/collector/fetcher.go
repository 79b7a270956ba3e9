package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"BreakoutLab/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
// Bars are returned for [start, end), ascending by date. An empty slice
// with a nil error means the provider has no data for the range.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
	Name() string
}

// newHTTPClient builds a client with an optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
