package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/recorder"
	"SwingSentinel/internal/strategy"
)

// Collector returns a validated series for an asset.
type Collector interface {
	Collect(ctx context.Context, asset model.Asset) (*model.Series, error)
}

// Notifier delivers alerts to the alert chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the periodic market scan.
type Scheduler struct {
	Cron      *cron.Cron
	Collector Collector
	Notifier  Notifier
	Recorder  recorder.Recorder
	Params    strategy.Params
	Assets    []model.Asset
	Ctx       context.Context

	mu        sync.Mutex
	lastAlert map[string]string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col Collector, n Notifier, rec recorder.Recorder, params strategy.Params, assets []model.Asset) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Params:    params,
		Assets:    assets,
		Ctx:       ctx,
		lastAlert: make(map[string]string),
	}
}

// Register adds the scan task on a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// ScanNow runs one scan immediately.
func (s *Scheduler) ScanNow() {
	s.scan()
}

func (s *Scheduler) scan() {
	log.WithField("assets", len(s.Assets)).Info("running market scan")
	for _, asset := range s.Assets {
		if s.Ctx.Err() != nil {
			return
		}
		s.scanAsset(asset)
	}
}

func (s *Scheduler) scanAsset(asset model.Asset) {
	logger := log.WithField("asset", asset.Name)

	series, err := s.Collector.Collect(s.Ctx, asset)
	if err != nil {
		logger.WithError(err).Error("scan collect")
		return
	}
	a := strategy.Analyze(asset, series, s.Params)
	if _, err := s.Recorder.RecordAnalysis(s.Ctx, recorder.SourceScan, a); err != nil {
		logger.WithError(err).Error("record scan")
	}
	if len(a.Signals) == 0 {
		return
	}

	top := a.Signals[0]
	key := alertKey(top)
	if !s.markAlerted(asset.Name, key) {
		logger.WithField("signal", key).Debug("signal already alerted")
		return
	}
	s.trySend("🔔 <b>Scan alert</b>\n\n" + notifier.FormatSignal(asset.Name, top))
}

// markAlerted records key for asset and reports whether it changed.
func (s *Scheduler) markAlerted(asset, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAlert[asset] == key {
		return false
	}
	s.lastAlert[asset] = key
	return true
}

func alertKey(sig model.Signal) string {
	return fmt.Sprintf("%s|%.2f|%.2f|%.2f", sig.Type, sig.Entry, sig.StopLoss, sig.Target)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.WithError(err).Error("send notification")
	}
}
