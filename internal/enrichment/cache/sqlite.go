package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultTTL is the expiration applied to new entries when none is
// configured.
const DefaultTTL = 30 * 24 * time.Hour

// Timestamps are stored in SQLite's canonical DATETIME text form, always
// UTC, so range comparisons work lexicographically.
const timeLayout = "2006-01-02 15:04:05"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithTTL sets the time-to-live for new entries.
func WithTTL(ttl time.Duration) Option {
	return func(s *SQLiteStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// NewSQLiteStore opens (creating if necessary) the cache database at path
// and runs schema migrations.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	connStr := path
	if !strings.Contains(connStr, "?") {
		connStr += "?_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLiteStore{
		db:  db,
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the cache table and upgrades older schemas that predate
// the expiration column.
func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating cache table: %w", err)
	}

	// Older stores lack expires_at; add it and backfill with now + ttl
	// rather than treating pre-existing rows as already expired.
	hasExpiry, err := s.hasColumn("expires_at")
	if err != nil {
		return err
	}
	if !hasExpiry {
		defaultExpiry := s.expiryFromNow()
		if _, err := s.db.Exec(
			fmt.Sprintf("ALTER TABLE cache ADD COLUMN expires_at DATETIME DEFAULT '%s'", defaultExpiry),
		); err != nil {
			return fmt.Errorf("adding expires_at column: %w", err)
		}
		if _, err := s.db.Exec(
			"UPDATE cache SET expires_at = ? WHERE expires_at IS NULL", defaultExpiry,
		); err != nil {
			return fmt.Errorf("backfilling expires_at: %w", err)
		}
	}

	if _, err := s.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at)",
	); err != nil {
		return fmt.Errorf("creating expiration index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) hasColumn(name string) (bool, error) {
	rows, err := s.db.Query("PRAGMA table_info(cache)")
	if err != nil {
		return false, fmt.Errorf("reading cache schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &primaryKey); err != nil {
			return false, fmt.Errorf("scanning cache schema: %w", err)
		}
		if colName == name {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *SQLiteStore) nowString() string {
	return s.now().UTC().Format(timeLayout)
}

func (s *SQLiteStore) expiryFromNow() string {
	return s.now().UTC().Add(s.ttl).Format(timeLayout)
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM cache WHERE key = ? AND expires_at > ?",
		key, s.nowString(),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &Error{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

// Set implements Store. The upsert is a single statement, so an aborted
// run can never leave a partial write behind.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache(key, value, created_at, expires_at) VALUES(?, ?, ?, ?)",
		key, value, s.nowString(), s.expiryFromNow(),
	)
	if err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// CleanupExpired implements Store.
func (s *SQLiteStore) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cache WHERE expires_at <= ?", s.nowString(),
	)
	if err != nil {
		return 0, &Error{Op: "cleanup", Key: "*", Err: err}
	}
	return res.RowsAffected()
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cache")
	if err != nil {
		return 0, &Error{Op: "clear", Key: "*", Err: err}
	}
	return res.RowsAffected()
}

// Stats implements Store.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{TTL: s.ttl}
	now := s.nowString()

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cache",
	).Scan(&stats.TotalEntries); err != nil {
		return nil, &Error{Op: "stats", Key: "*", Err: err}
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cache WHERE expires_at <= ?", now,
	).Scan(&stats.ExpiredEntries); err != nil {
		return nil, &Error{Op: "stats", Key: "*", Err: err}
	}
	stats.ValidEntries = stats.TotalEntries - stats.ExpiredEntries

	var oldest, newest sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT MIN(created_at), MAX(created_at) FROM cache WHERE expires_at > ?", now,
	).Scan(&oldest, &newest); err != nil {
		return nil, &Error{Op: "stats", Key: "*", Err: err}
	}
	if t, ok := parseStoredTime(oldest); ok {
		stats.OldestEntry = &t
	}
	if t, ok := parseStoredTime(newest); ok {
		stats.NewestEntry = &t
	}
	return stats, nil
}

func parseStoredTime(v sql.NullString) (time.Time, bool) {
	if !v.Valid || v.String == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(timeLayout, v.String, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
