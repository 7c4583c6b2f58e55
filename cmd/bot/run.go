package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/bot"
	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/config"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/recorder"
	"SwingSentinel/internal/scheduler"
	"SwingSentinel/internal/session"
)

func newCollector(cfg *config.Config) *collector.Collector {
	col := collector.NewCollector(collector.Options{
		Bars:           cfg.Data.Bars,
		MaxRetries:     cfg.Data.MaxRetries,
		InitialBackoff: cfg.Data.InitialBackoff,
	})
	col.Register(model.MarketYahoo, collector.NewYahooFetcher(cfg.Proxy, cfg.Data.Timeout)).
		Register(model.MarketBinanceFutures, collector.NewBinanceFetcher(cfg.Data.BinanceBaseURL, cfg.Proxy, cfg.Data.Timeout)).
		Register(model.MarketCSV, &collector.CSVFetcher{Dir: cfg.Data.CSVDir})
	return col
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionFile:
		return session.NewFileStore(cfg.Session.FilePath)
	case config.SessionRedis:
		return session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
			TTL:      cfg.Session.TTL,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// Poller long-polls updates until its context is cancelled.
type Poller interface {
	StartPolling(ctx context.Context, handler notifier.UpdateHandler)
}

// startPolling runs p in the background. The returned wait blocks until the
// poller has stopped, including any handler it was running.
func startPolling(ctx context.Context, p Poller, handler notifier.UpdateHandler) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.StartPolling(ctx, handler)
	}()
	return func() { <-done }
}

func run(cfg *config.Config) error {
	log.Info("SwingSentinel starting...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	col := newCollector(cfg)

	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer sessions.Close()

	rec := newRecorder(cfg)
	defer rec.Close()

	// background work that must finish before the stores close
	var workers sync.WaitGroup

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AlertChatID, cfg.Proxy)

	router := &bot.Router{
		Messenger:    tn,
		Collector:    col,
		Sessions:     sessions,
		Recorder:     rec,
		Assets:       cfg.Assets,
		DefaultAsset: cfg.DefaultAsset,
		Params:       cfg.Engine,
	}

	if cfg.Scan.Cron != "" {
		sched := scheduler.NewScheduler(ctx, col, tn, rec, cfg.Engine, cfg.ScanAssets())
		if err := sched.Register(cfg.Scan.Cron); err != nil {
			return fmt.Errorf("register scan: %w", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info("RUN_ON_START enabled, scanning now")
			workers.Add(1)
			go func() {
				defer workers.Done()
				sched.ScanNow()
			}()
		}
	}

	waitPolling := startPolling(ctx, tn, router.HandleUpdate)
	log.WithFields(log.Fields{
		"assets":  len(cfg.Assets),
		"session": cfg.Session.Backend,
	}).Info("Telegram polling started. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	waitPolling()
	workers.Wait()
	return nil
}
