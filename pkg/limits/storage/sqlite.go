package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is
// suitable for single-instance deployments where daily counters must
// survive restarts.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent
// performance and periodic checkpointing to balance write performance
// with durability.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	clearStmt   *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		DBPath:             dbPath,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a new SQLite store with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareQueries(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.runCheckpoints()

	return store, nil
}

// ensureSchema creates the counts table on first open.
func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_counts (
		day TEXT NOT NULL,
		model TEXT NOT NULL,
		count INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (day, model)
	);

	CREATE INDEX IF NOT EXISTS idx_daily_counts_day ON daily_counts(day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareQueries compiles the hot-path statements once at open.
func (s *SQLiteStore) prepareQueries() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO daily_counts (day, model, count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (day, model) DO UPDATE SET
			count = excluded.count,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT model, count
		FROM daily_counts
		WHERE day = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.clearStmt, err = s.db.Prepare(`
		DELETE FROM daily_counts
		WHERE day = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare clear statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM daily_counts
		WHERE day < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Save replaces the stored counts for a day with the given snapshot.
func (s *SQLiteStore) Save(ctx context.Context, day string, counts map[string]int64) error {
	if day == "" {
		return fmt.Errorf("day cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear first so models absent from the snapshot do not linger
	if _, err := tx.StmtContext(ctx, s.clearStmt).ExecContext(ctx, day); err != nil {
		return fmt.Errorf("failed to clear day: %w", err)
	}

	now := time.Now().Unix()
	save := tx.StmtContext(ctx, s.saveStmt)
	for model, count := range counts {
		if _, err := save.ExecContext(ctx, day, model, count, now); err != nil {
			return fmt.Errorf("failed to save count for %s: %w", model, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Load returns the stored counts for a day.
func (s *SQLiteStore) Load(ctx context.Context, day string) (map[string]int64, error) {
	if day == "" {
		return nil, fmt.Errorf("day cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadStmt.QueryContext(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			model string
			count int64
		)
		if err := rows.Scan(&model, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[model] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// Cleanup removes counts for days before the cutoff day.
func (s *SQLiteStore) Cleanup(ctx context.Context, before string) (int64, error) {
	if before == "" {
		return 0, fmt.Errorf("cutoff day cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Close stops the checkpoint ticker, finalizes the prepared statements,
// and closes the database. Calling it twice is safe.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		if s.clearStmt != nil {
			s.clearStmt.Close()
		}
		if s.cleanupStmt != nil {
			s.cleanupStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// runCheckpoints folds the WAL back into the main database file on a
// timer so the sidecar file stays small between restarts.
func (s *SQLiteStore) runCheckpoints() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
