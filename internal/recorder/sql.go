package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"BreakoutLab/internal/model"
)

// SQLRecorder persists runs to SQLite or Postgres.
type SQLRecorder struct {
	db       *sql.DB
	postgres bool
	mu       sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the web handlers read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

// NewPostgresRecorder connects to Postgres using a lib/pq DSN and runs migrations.
func NewPostgresRecorder(dsn string) (*SQLRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &SQLRecorder{db: db, postgres: true}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("postgres recorder opened")
	return r, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *SQLRecorder) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               TEXT PRIMARY KEY,
			created_at       BIGINT NOT NULL,
			trigger_type     TEXT,
			ticker           TEXT NOT NULL,
			start_date       TEXT,
			end_date         TEXT,
			volume_threshold DOUBLE PRECISION,
			price_threshold  DOUBLE PRECISION,
			holding_period   INTEGER,
			source           TEXT,
			bars_fetched     INTEGER,
			total_trades     INTEGER,
			win_rate         DOUBLE PRECISION,
			average_return   DOUBLE PRECISION,
			max_return       DOUBLE PRECISION,
			min_return       DOUBLE PRECISION,
			std_dev          DOUBLE PRECISION,
			warnings         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker)`,

		`CREATE TABLE IF NOT EXISTS trades (
			run_id       TEXT NOT NULL,
			seq          INTEGER NOT NULL,
			entry_date   TEXT,
			entry_price  DOUBLE PRECISION,
			exit_date    TEXT,
			exit_price   DOUBLE PRECISION,
			return_pct   DOUBLE PRECISION,
			volume_ratio DOUBLE PRECISION,
			holding_bars INTEGER,
			PRIMARY KEY (run_id, seq)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	p, s := run.Params, run.Summary

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(r.rebind(`INSERT INTO runs
		(id, created_at, trigger_type, ticker, start_date, end_date,
		 volume_threshold, price_threshold, holding_period, source, bars_fetched,
		 total_trades, win_rate, average_return, max_return, min_return, std_dev, warnings)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		run.ID, created.Unix(), string(run.Trigger), p.Ticker,
		p.Start.Format(model.DateLayout), p.End.Format(model.DateLayout),
		p.VolumeThreshold, p.PriceThreshold, p.HoldingPeriod, run.Source, run.BarsFetched,
		s.TotalTrades, s.WinRate, s.AverageReturn, s.MaxReturn, s.MinReturn, s.StdDev, run.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insertTrade := r.rebind(`INSERT INTO trades
		(run_id, seq, entry_date, entry_price, exit_date, exit_price, return_pct, volume_ratio, holding_bars)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	for i, t := range run.Trades {
		if _, err := tx.Exec(insertTrade,
			run.ID, i, t.EntryDate.Format(model.DateLayout), t.EntryPrice,
			t.ExitDate.Format(model.DateLayout), t.ExitPrice, t.ReturnPct, t.VolumeRatio, t.HoldingBars,
		); err != nil {
			return fmt.Errorf("insert trade %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, ticker, trigger_type, start_date, end_date,
		total_trades, win_rate, average_return, created_at`

func scanRun(row interface{ Scan(...any) error }) (RunSummary, error) {
	var (
		rs         RunSummary
		trigger    string
		start, end string
		created    int64
	)
	if err := row.Scan(&rs.ID, &rs.Ticker, &trigger, &start, &end,
		&rs.TotalTrades, &rs.WinRate, &rs.AverageReturn, &created); err != nil {
		return rs, err
	}
	rs.Trigger = model.TriggerType(trigger)
	rs.Start, _ = time.Parse(model.DateLayout, start)
	rs.End, _ = time.Parse(model.DateLayout, end)
	rs.CreatedAt = time.Unix(created, 0)
	return rs, nil
}

func (r *SQLRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(r.rebind(`SELECT `+runColumns+`
		FROM runs ORDER BY created_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		rs, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Run loads the summary of one run, or ErrRunNotFound.
func (r *SQLRecorder) Run(id string) (*RunSummary, error) {
	rs, err := scanRun(r.db.QueryRow(r.rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return &rs, nil
}

// Trades loads the persisted trades of one run in entry order.
func (r *SQLRecorder) Trades(runID string) ([]model.Trade, error) {
	rows, err := r.db.Query(r.rebind(`SELECT entry_date, entry_price, exit_date, exit_price,
		return_pct, volume_ratio, holding_bars FROM trades WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []model.Trade
	for rows.Next() {
		var (
			t           model.Trade
			entry, exit string
		)
		if err := rows.Scan(&entry, &t.EntryPrice, &exit, &t.ExitPrice,
			&t.ReturnPct, &t.VolumeRatio, &t.HoldingBars); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.EntryDate, _ = time.Parse(model.DateLayout, entry)
		t.ExitDate, _ = time.Parse(model.DateLayout, exit)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) Close() error {
	log.Info().Msg("closing recorder")
	return r.db.Close()
}
