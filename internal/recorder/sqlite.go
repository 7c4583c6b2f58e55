package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"SwingSentinel/internal/model"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers query history while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			source         TEXT,
			asset          TEXT,
			symbol         TEXT,
			timeframe      TEXT,
			bars           INTEGER,
			price          REAL,
			atr            REAL,
			rsi            REAL,
			swing_highs    INTEGER,
			swing_lows     INTEGER,
			htf_support    INTEGER,
			htf_resistance INTEGER,
			ltf_support    INTEGER,
			ltf_resistance INTEGER,
			signal_count   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_asset_ts ON analysis_runs(asset, timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES analysis_runs(id),
			ordinal     INTEGER,
			type        TEXT,
			layer       TEXT,
			entry       REAL,
			stop_loss   REAL,
			target      REAL,
			risk_reward REAL,
			confidence  INTEGER,
			label       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_run ON signals(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis writes the run and its signals in one transaction.
func (r *SQLiteRecorder) RecordAnalysis(ctx context.Context, source string, a *model.Analysis) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO analysis_runs
		(id, timestamp, source, asset, symbol, timeframe, bars, price, atr, rsi,
		 swing_highs, swing_lows, htf_support, htf_resistance, ltf_support, ltf_resistance,
		 signal_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().Unix(), source, a.Asset.Name, a.Asset.Symbol, a.Asset.Timeframe,
		a.Bars, a.Price, a.ATR, a.RSI, a.SwingHighs, a.SwingLows,
		len(a.Levels.HTFSupport), len(a.Levels.HTFResistance),
		len(a.Levels.LTFSupport), len(a.Levels.LTFResistance),
		len(a.Signals),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, s := range a.Signals {
		_, err := tx.ExecContext(ctx, `INSERT INTO signals
			(run_id, ordinal, type, layer, entry, stop_loss, target, risk_reward, confidence, label)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, i+1, string(s.Type), string(s.Layer), s.Entry, s.StopLoss, s.Target,
			s.RiskReward, s.Confidence, s.Label,
		)
		if err != nil {
			return "", fmt.Errorf("insert signal %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
