package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// SQLiteConfig configures the SQLite usage store. The zero value is usable
// and stores records under data/usage.db.
type SQLiteConfig struct {
	// Path locates the database file.
	Path string

	// PoolSize bounds open connections. Writes arrive from a single
	// background worker, so the pool stays small.
	PoolSize int

	// BusyTimeout is how long a statement waits on a locked database
	// before giving up.
	BusyTimeout time.Duration
}

func (c SQLiteConfig) withDefaults() SQLiteConfig {
	if c.Path == "" {
		c.Path = "data/usage.db"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	return c
}

// SQLiteStore persists usage records in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the usage database at cfg.Path and
// brings its schema up to date. WAL journaling is always enabled so reads
// and the background writer do not block each other.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	cfg = cfg.withDefaults()

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, usage.NewStorageError("open", err)
	}
	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger := slog.Default().With("component", "usage.storage")
	logger.Info("usage store opened", "path", cfg.Path, "pool_size", cfg.PoolSize)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// ensureSchema creates missing tables and verifies the version stamp.
func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(createSchemaSQL); err != nil {
		return usage.NewStorageError("migrate", err)
	}
	if _, err := db.Exec(upsertVersionSQL, schemaVersion); err != nil {
		return usage.NewStorageError("migrate", err)
	}

	var found int
	if err := db.QueryRow(readVersionSQL).Scan(&found); err != nil && err != sql.ErrNoRows {
		return usage.NewStorageError("migrate", err)
	}
	if found != schemaVersion {
		return usage.NewStorageError("migrate",
			fmt.Errorf("schema version %d on disk, this build expects %d", found, schemaVersion))
	}
	return nil
}

// Store persists a usage record.
func (s *SQLiteStore) Store(ctx context.Context, record *usage.Record) error {
	stmt := `INSERT INTO usage_records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Empty error types store as NULL so the status index stays selective.
	var errorType interface{}
	if record.ErrorType != "" {
		errorType = record.ErrorType
	}

	_, err := s.db.ExecContext(ctx, stmt,
		record.ID, record.RequestID,
		record.Model, record.RequestedModel,
		record.Messages, record.Stream,
		record.Status, errorType, record.Chunks,
		record.Latency.Milliseconds(), record.CreatedAt,
	)
	if err != nil {
		return usage.NewStorageError("store", err)
	}
	return nil
}

// Query retrieves usage records matching the query filters, newest first.
func (s *SQLiteStore) Query(ctx context.Context, query *usage.Query) ([]*usage.Record, error) {
	filter, args := filterSQL(query)
	stmt := "SELECT " + recordColumns + " FROM usage_records" + filter + " ORDER BY created_at DESC"

	// SQLite needs a LIMIT clause to accept OFFSET; -1 means unlimited.
	if query.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", query.Limit)
	} else if query.Offset > 0 {
		stmt += " LIMIT -1"
	}
	if query.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, usage.NewStorageError("query", err)
	}
	defer rows.Close()

	records := []*usage.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, usage.NewStorageError("scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("query", err)
	}
	return records, nil
}

// Count returns the number of usage records matching the query filters.
func (s *SQLiteStore) Count(ctx context.Context, query *usage.Query) (int64, error) {
	filter, args := filterSQL(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records"+filter, args...).Scan(&count)
	if err != nil {
		return 0, usage.NewStorageError("count", err)
	}
	return count, nil
}

// DeleteBefore removes records created before the cutoff and reports how
// many rows went away.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM usage_records WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, usage.NewStorageError("delete", err)
	}
	return result.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return usage.NewStorageError("close", err)
	}
	s.logger.Info("usage store closed")
	return nil
}

// filterSQL renders query filters as a WHERE clause, empty when the query
// has no filters. The clause includes the leading " WHERE".
func filterSQL(query *usage.Query) (string, []interface{}) {
	var where []string
	var args []interface{}

	if !query.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, query.Until)
	}
	if query.Model != "" {
		where = append(where, "model = ?")
		args = append(args, query.Model)
	}
	if query.Status != "" {
		where = append(where, "status = ?")
		args = append(args, query.Status)
	}

	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// scanRow reads one usage_records row into a usage.Record.
func scanRow(row *sql.Rows) (*usage.Record, error) {
	var record usage.Record
	var errorType sql.NullString
	var latencyMs int64

	err := row.Scan(
		&record.ID, &record.RequestID,
		&record.Model, &record.RequestedModel,
		&record.Messages, &record.Stream,
		&record.Status, &errorType, &record.Chunks,
		&latencyMs, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorType.Valid {
		record.ErrorType = errorType.String
	}
	record.Latency = time.Duration(latencyMs) * time.Millisecond
	return &record, nil
}
