package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"SwingSentinel/internal/model"
)

// CSVFetcher reads bars from <Dir>/<symbol>.csv, or from Path when set.
type CSVFetcher struct {
	Dir  string
	Path string
}

func (f *CSVFetcher) Name() string { return "csv" }

type csvBar struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    float64 `csv:"volume"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp accepts the layouts above or unix seconds/milliseconds.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	if n > 1e12 {
		return time.UnixMilli(n).UTC(), nil
	}
	return time.Unix(n, 0).UTC(), nil
}

func (f *CSVFetcher) path(symbol string) string {
	if f.Path != "" {
		return f.Path
	}
	return filepath.Join(f.Dir, symbol+".csv")
}

// FetchBars loads the file, sorts it chronologically and keeps the last limit bars.
func (f *CSVFetcher) FetchBars(_ context.Context, asset model.Asset, limit int) ([]model.OHLCV, error) {
	file, err := os.Open(f.path(asset.Symbol))
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", ErrMalformed, err)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for i, r := range rows {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformed, i+1, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimBars(bars, limit), nil
}
