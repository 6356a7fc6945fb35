package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultRetention keeps thirty days of history.
	DefaultRetention = 30 * 24 * time.Hour

	cleanupInterval = 1 * time.Hour

	// MaxLimit caps the rows returned by a single query.
	MaxLimit = 500
)

// Cycle is one recorded refresh cycle.
type Cycle struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	ServerCount int       `json:"server_count"`
}

// Sample is the state of one server in one successful cycle.
type Sample struct {
	CycleID    string    `json:"cycle_id"`
	ServerID   string    `json:"server_id"`
	At         time.Time `json:"at"`
	Online     bool      `json:"online"`
	PlayersNow int       `json:"players_now"`
	PlayersMax int       `json:"players_max"`
}

// Store is a SQLite-backed cycle history.
type Store struct {
	db        *sql.DB
	retention time.Duration
	logger    *slog.Logger

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the history database at path and starts
// the retention cleanup loop. A retention of zero uses [DefaultRetention].
func Open(path string, retention time.Duration, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if retention < 0 {
		return nil, errors.New("history retention cannot be negative")
	}
	if retention == 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// modernc.org/sqlite requires explicit PRAGMAs (not query-string params)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{
		db:        db,
		retention: retention,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}

	s.cleanup()

	s.wg.Add(1)
	go s.cleanupLoop()

	return s, nil
}

// Close stops the cleanup loop and closes the database. Safe to call more
// than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			server_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at)`,
		`CREATE TABLE IF NOT EXISTS samples (
			cycle_id TEXT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			server_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			online INTEGER NOT NULL,
			players_now INTEGER NOT NULL,
			players_max INTEGER NOT NULL,
			PRIMARY KEY (cycle_id, server_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_server_at ON samples(server_id, at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record writes a cycle and its samples in one transaction.
func (s *Store) Record(ctx context.Context, c Cycle, samples []Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (id, started_at, duration_ms, ok, error, server_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.StartedAt.UnixMilli(), c.DurationMs, boolToInt(c.OK), c.Error, c.ServerCount,
	); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, sm := range samples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO samples (cycle_id, server_id, at, online, players_now, players_max)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, sm.ServerID, sm.At.UnixMilli(), boolToInt(sm.Online), sm.PlayersNow, sm.PlayersMax,
		); err != nil {
			return fmt.Errorf("insert sample %q: %w", sm.ServerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, ok, error, server_count
		FROM cycles ORDER BY started_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cycles := []Cycle{}
	for rows.Next() {
		var (
			c         Cycle
			startedAt int64
			ok        int
		)
		if err := rows.Scan(&c.ID, &startedAt, &c.DurationMs, &ok, &c.Error, &c.ServerCount); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.StartedAt = time.UnixMilli(startedAt).UTC()
		c.OK = ok != 0
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

// ServerSamples returns up to limit samples for one server, newest first.
func (s *Store) ServerSamples(ctx context.Context, serverID string, limit int) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cycle_id, server_id, at, online, players_now, players_max
		FROM samples WHERE server_id = ? ORDER BY at DESC LIMIT ?`, serverID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	samples := []Sample{}
	for rows.Next() {
		var (
			sm     Sample
			at     int64
			online int
		)
		if err := rows.Scan(&sm.CycleID, &sm.ServerID, &at, &online, &sm.PlayersNow, &sm.PlayersMax); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sm.At = time.UnixMilli(at).UTC()
		sm.Online = online != 0
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

func (s *Store) cleanup() {
	cutoff := time.Now().Add(-s.retention).UnixMilli()

	// samples first; foreign keys are not enforced unless enabled per connection
	if _, err := s.db.Exec(`DELETE FROM samples WHERE at < ?`, cutoff); err != nil {
		s.logger.Warn("history cleanup (samples) failed", "error", err)
	}
	res, err := s.db.Exec(`DELETE FROM cycles WHERE started_at < ?`, cutoff)
	if err != nil {
		s.logger.Warn("history cleanup (cycles) failed", "error", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("history cleanup: removed expired cycles", "count", n)
	}
}

func (s *Store) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
