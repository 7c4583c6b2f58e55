package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingSentinel/internal/model"
)

const yahooBody = `{"chart":{"result":[{"timestamp":[1700003600,1700000000,1700007200],
"indicators":{"quote":[{"open":[2,1,null],"high":[2.5,1.5,null],"low":[1.5,0.5,null],"close":[2.2,1.2,null],"volume":[20,10,null]}]}}],"error":null}}`

func TestYahooFetcher(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.EscapedPath(), r.URL.RawQuery
		fmt.Fprint(w, yahooBody)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL
	bars, err := f.FetchBars(context.Background(), model.Asset{Symbol: "CL=F", Timeframe: "1h"}, 300)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/CL=F", gotPath)
	assert.Equal(t, "interval=60m&range=60d", gotQuery)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.2, bars[0].Close)
	assert.Equal(t, 2.2, bars[1].Close)
	assert.Equal(t, 20.0, bars[1].Volume)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL
	_, err := f.FetchBars(context.Background(), model.Asset{Symbol: "NOPE"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooRange(t *testing.T) {
	tests := []struct {
		tf, interval, rng string
	}{
		{"1m", "1m", "7d"},
		{"15m", "15m", "60d"},
		{"1h", "60m", "60d"},
		{"1d", "1d", "2y"},
		{"1wk", "1wk", "5y"},
	}
	for _, tt := range tests {
		interval, rng := yahooRange(tt.tf)
		assert.Equal(t, tt.interval, interval, tt.tf)
		assert.Equal(t, tt.rng, rng, tt.tf)
	}
}

func TestBinanceFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[
[1700000900000,"101.0","103.0","100.0","102.5","12.5",1700001799999,"1281.25",10,"6","615","0"],
[1700000000000,"100.0","102.0","99.0","101.0","10.0",1700000899999,"1010.0",8,"5","505","0"]]`)
	}))
	defer srv.Close()

	f := NewBinanceFetcher(srv.URL, "", time.Second)
	bars, err := f.FetchBars(context.Background(), model.Asset{Symbol: "BTCUSDT", Timeframe: "15m"}, 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), bars[0].Time)
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 103.0, bars[1].High)
	assert.Equal(t, 12.5, bars[1].Volume)
}

func TestBinanceFetcher_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewBinanceFetcher(srv.URL, "", time.Second)
	_, err := f.FetchBars(context.Background(), model.Asset{Symbol: "NOPE", Timeframe: "15m"}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestCollect_BadSymbolIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewCollector(Options{Bars: 50, MaxRetries: 3, InitialBackoff: time.Millisecond})
	c.Register(model.MarketBinanceFutures, NewBinanceFetcher(srv.URL, "", time.Second))
	_, err := c.Collect(context.Background(), model.Asset{Name: "NOPE", Symbol: "NOPE", Timeframe: "15m", Market: model.MarketBinanceFutures})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCollect_ServerErrorIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[[1704067200000,"100","101","99","100.5","10",1704070799999]]`)
	}))
	defer srv.Close()

	c := NewCollector(Options{Bars: 50, MaxRetries: 3, InitialBackoff: time.Millisecond})
	c.Register(model.MarketBinanceFutures, NewBinanceFetcher(srv.URL, "", time.Second))
	s, err := c.Collect(context.Background(), model.Asset{Name: "BTC", Symbol: "BTCUSDT", Timeframe: "15m", Market: model.MarketBinanceFutures})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int32(2), hits.Load())
}

func TestCSVFetcher(t *testing.T) {
	dir := t.TempDir()
	content := "timestamp,open,high,low,close,volume\n" +
		"2024-01-02,2,3,1,2.5,200\n" +
		"2024-01-01,1,2,0.5,1.5,100\n" +
		"1704240000,3,4,2,3.5,300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OIL.csv"), []byte(content), 0o644))

	f := &CSVFetcher{Dir: dir}
	bars, err := f.FetchBars(context.Background(), model.Asset{Symbol: "OIL"}, 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2.5, bars[0].Close)
	assert.Equal(t, 3.5, bars[1].Close)
	assert.Equal(t, 300.0, bars[1].Volume)
}

func TestCSVFetcher_MissingFile(t *testing.T) {
	f := &CSVFetcher{Dir: t.TempDir()}
	_, err := f.FetchBars(context.Background(), model.Asset{Symbol: "NONE"}, 10)
	assert.Error(t, err)
}
