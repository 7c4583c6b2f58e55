package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SwingSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to limit of the most recent bars for asset in
	// chronological order.
	FetchBars(ctx context.Context, asset model.Asset, limit int) ([]model.OHLCV, error)
	Name() string
}

var (
	// ErrMalformed marks a payload or file that cannot be parsed.
	ErrMalformed = errors.New("malformed market data")
	// ErrRejected marks a request the source refused, such as an unknown symbol.
	ErrRejected = errors.New("request rejected by source")
)

// StatusError is a non-200 reply from a market data API.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Code, e.Body)
}

// isRetryable reports whether a fetch failure is transient. Rate limits,
// server errors and transport failures are; client errors, parse failures
// and missing files are not.
func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests || se.Code >= 500 {
			return true
		}
		// Binance DISCONNECTED, TOO_MANY_REQUESTS and SERVICE_SHUTTING_DOWN
		for _, code := range []string{"-1001", "-1003", "-1016"} {
			if strings.Contains(se.Body, code) {
				return true
			}
		}
		return false
	}
	return !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrRejected) && !errors.Is(err, fs.ErrNotExist)
}

// newHTTPClient builds a client with an optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func trimBars(bars []model.OHLCV, limit int) []model.OHLCV {
	if limit > 0 && len(bars) > limit {
		return bars[len(bars)-limit:]
	}
	return bars
}
