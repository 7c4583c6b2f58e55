package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/model"
)

var (
	ErrNoData        = errors.New("no market data")
	ErrUnknownMarket = errors.New("unknown market")
)

// Options control how much history is requested and how failures are retried.
type Options struct {
	Bars           int
	MaxRetries     int
	InitialBackoff time.Duration
}

// Collector routes each asset to the fetcher of its market and turns the
// result into a validated Series.
type Collector struct {
	fetchers map[model.Market]Fetcher
	opts     Options
}

// NewCollector creates a new Collector.
func NewCollector(opts Options) *Collector {
	if opts.Bars <= 0 {
		opts.Bars = 300
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	return &Collector{fetchers: make(map[model.Market]Fetcher), opts: opts}
}

// Register binds a fetcher to a market, replacing any previous one.
func (c *Collector) Register(market model.Market, f Fetcher) *Collector {
	c.fetchers[market] = f
	return c
}

// Collect fetches the most recent bars for asset with exponential backoff
// and builds a Series from them.
func (c *Collector) Collect(ctx context.Context, asset model.Asset) (*model.Series, error) {
	f, ok := c.fetchers[asset.Market]
	if !ok {
		return nil, fmt.Errorf("%s market %q: %w", asset.Name, asset.Market, ErrUnknownMarket)
	}

	var bars []model.OHLCV
	op := func() error {
		got, err := f.FetchBars(ctx, asset, c.opts.Bars)
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(got) == 0 {
			return fmt.Errorf("%s via %s: %w", asset.Symbol, f.Name(), ErrNoData)
		}
		bars = got
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.InitialBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.opts.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"asset":   asset.Name,
			"fetcher": f.Name(),
			"wait":    wait,
		}).WithError(err).Warn("fetch failed, retrying")
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, fmt.Errorf("collect %s: %w", asset.Name, err)
	}

	series, err := model.SeriesFromBars(trimBars(bars, c.opts.Bars))
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", asset.Name, err)
	}
	log.WithFields(log.Fields{"asset": asset.Name, "bars": series.Len()}).Debug("collected")
	return series, nil
}
