package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/pkg/retry"
	"github.com/c360/seqmatch/pkg/timestamp"
)

// Record is one journaled match.
type Record struct {
	// ID is assigned at save time when empty.
	ID string `json:"id"`

	// Source identifies the stream or processor the match came from.
	Source string `json:"source"`

	// Pattern is the matched pattern's name.
	Pattern string `json:"pattern"`

	// Start and End bound the covered absolute positions, End exclusive.
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	// Items is the raw matched subsequence.
	Items []string `json:"items"`

	// Captures holds the named captures, if any.
	Captures map[string][]string `json:"captures,omitempty"`

	// Value carries an extractor substitution when Extracted is true.
	Value     string `json:"value,omitempty"`
	Extracted bool   `json:"extracted"`

	// CreatedAt is unix milliseconds, assigned at save time when zero.
	CreatedAt int64 `json:"created_at"`
}

// Store journals accepted matches in Postgres. Writes retry on
// transient-classified failures; everything else surfaces immediately.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	retryCfg retry.Config
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetry replaces the write retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(s *Store) {
		s.retryCfg = cfg
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Store", "Open", "parse connection string")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapTransient(
			fmt.Errorf("%v: %w", err, errors.ErrStorageUnavailable),
			"Store", "Open", "ping database")
	}
	return New(db, opts...), nil
}

// New wraps an existing database handle. The caller keeps ownership of
// connection pooling configuration.
func New(db *sql.DB, opts ...Option) *Store {
	cfg := retry.Quick()
	cfg.RetryIf = errors.IsTransient

	s := &Store{
		db:       db,
		logger:   slog.Default(),
		retryCfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the journal table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS matches (
		id         UUID PRIMARY KEY,
		source     TEXT NOT NULL,
		pattern    TEXT NOT NULL,
		start_pos  BIGINT NOT NULL,
		end_pos    BIGINT NOT NULL,
		items      JSONB NOT NULL,
		captures   JSONB,
		value      TEXT,
		extracted  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.WrapFatal(err, "Store", "Migrate", "create matches table")
	}
	return nil
}

// Save journals one match, assigning an ID and creation timestamp when
// absent. Transient failures are retried per the store's policy.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = timestamp.Now()
	}

	items, err := json.Marshal(rec.Items)
	if err != nil {
		return errors.WrapInvalid(err, "Store", "Save", "encode items")
	}
	var captures []byte
	if len(rec.Captures) > 0 {
		captures, err = json.Marshal(rec.Captures)
		if err != nil {
			return errors.WrapInvalid(err, "Store", "Save", "encode captures")
		}
	}

	err = retry.Do(ctx, s.retryCfg, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO matches(id, source, pattern, start_pos, end_pos, items, captures, value, extracted, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			rec.ID, rec.Source, rec.Pattern, rec.Start, rec.End,
			items, nullableJSON(captures), rec.Value, rec.Extracted, rec.CreatedAt)
		if execErr != nil {
			return errors.WrapTransient(
				fmt.Errorf("%v: %w", execErr, errors.ErrStorageUnavailable),
				"Store", "Save", "insert match")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("match journaled",
		"id", rec.ID, "pattern", rec.Pattern, "start", rec.Start, "end", rec.End)
	return nil
}

// Recent returns the most recently journaled matches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, source, pattern, start_pos, end_pos, items, captures, value, extracted, created_at
		 FROM matches ORDER BY created_at DESC, id LIMIT $1`, limit)
}

// ByPattern returns the most recent matches of one pattern, newest first.
func (s *Store) ByPattern(ctx context.Context, name string, limit int) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, source, pattern, start_pos, end_pos, items, captures, value, extracted, created_at
		 FROM matches WHERE pattern = $1 ORDER BY created_at DESC, id LIMIT $2`, name, limit)
}

// Since returns matches journaled at or after the given unix-millisecond
// timestamp, oldest first.
func (s *Store) Since(ctx context.Context, sinceMs int64) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, source, pattern, start_pos, end_pos, items, captures, value, extracted, created_at
		 FROM matches WHERE created_at >= $1 ORDER BY created_at, id`, sinceMs)
}

// PruneBefore deletes journal rows older than the given unix-millisecond
// timestamp and reports how many were removed.
func (s *Store) PruneBefore(ctx context.Context, beforeMs int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE created_at < $1`, beforeMs)
	if err != nil {
		return 0, errors.WrapTransient(err, "Store", "PruneBefore", "delete old matches")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WrapTransient(err, "Store", "PruneBefore", "count deleted rows")
	}
	if n > 0 {
		s.logger.Info("journal pruned", "removed", n, "before", timestamp.Format(beforeMs))
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapTransient(err, "Store", "query", "select matches")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var items []byte
		var captures sql.NullString
		var value sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Pattern, &rec.Start, &rec.End,
			&items, &captures, &value, &rec.Extracted, &rec.CreatedAt); err != nil {
			return nil, errors.WrapFatal(err, "Store", "query", "scan match row")
		}
		if err := json.Unmarshal(items, &rec.Items); err != nil {
			return nil, errors.WrapFatal(err, "Store", "query", "decode items")
		}
		if captures.Valid && captures.String != "" {
			if err := json.Unmarshal([]byte(captures.String), &rec.Captures); err != nil {
				return nil, errors.WrapFatal(err, "Store", "query", "decode captures")
			}
		}
		rec.Value = value.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapTransient(err, "Store", "query", "iterate match rows")
	}
	return out, nil
}

// nullableJSON maps empty JSON payloads to SQL NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// WaitReady pings the database until it responds or the context expires,
// for startup ordering against a database that may still be coming up.
func (s *Store) WaitReady(ctx context.Context, interval time.Duration) error {
	cfg := retry.Persistent()
	cfg.InitialDelay = interval
	cfg.MaxDelay = interval
	return retry.Do(ctx, cfg, func() error {
		if err := s.db.PingContext(ctx); err != nil {
			return errors.WrapTransient(
				fmt.Errorf("%v: %w", err, errors.ErrStorageUnavailable),
				"Store", "WaitReady", "ping database")
		}
		return nil
	})
}
