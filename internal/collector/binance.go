package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"SwingSentinel/internal/model"
)

const (
	defaultBinanceURL = "https://fapi.binance.com"
	binanceMaxLimit   = 1500
)

// BinanceFetcher implements Fetcher using the Binance USD-M futures klines endpoint.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	if baseURL == "" {
		baseURL = defaultBinanceURL
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *BinanceFetcher) Name() string { return "binance_futures" }

// FetchBars requests the latest limit klines for the asset timeframe.
func (f *BinanceFetcher) FetchBars(ctx context.Context, asset model.Asset, limit int) ([]model.OHLCV, error) {
	if limit <= 0 || limit > binanceMaxLimit {
		limit = binanceMaxLimit
	}
	q := url.Values{}
	q.Set("symbol", asset.Symbol)
	q.Set("interval", asset.Timeframe)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/fapi/v1/klines?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Source: "binance klines", Code: resp.StatusCode, Body: string(body)}
	}

	// Rows are [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
	var rows [][]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode klines: %w", ErrMalformed, err)
	}
	bars := make([]model.OHLCV, 0, len(rows))
	for _, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, asset.Symbol, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseKline(row []json.Number) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, fmt.Errorf("kline has %d fields", len(row))
	}
	ms, err := row[0].Int64()
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("kline open time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := row[i+1].Float64()
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.OHLCV{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
