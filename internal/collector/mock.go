package collector

import (
	"context"
	"sync"
	"time"

	"SwingSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// The first Failures calls return Err.
type MockFetcher struct {
	Price    float64
	Bars     []model.OHLCV
	Err      error
	Failures int

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ model.Asset, limit int) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.calls++
	failing := m.calls <= m.Failures
	m.mu.Unlock()

	if failing && m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return trimBars(m.Bars, limit), nil
	}
	return generateMockBars(m.Price, limit), nil
}

// Calls reports how many times FetchBars ran.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	now := time.Now().Truncate(time.Hour)
	for i := 0; i < count; i++ {
		// slow drift with a ten bar zigzag so swings exist
		tri := i % 10
		if tri > 5 {
			tri = 10 - tri
		}
		p := basePrice * (1 + float64(i-count/2)*0.0005 + float64(tri)*0.002)
		bars[i] = model.OHLCV{
			Time:   now.Add(-time.Duration(count-i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.003,
			Low:    p * 0.997,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
