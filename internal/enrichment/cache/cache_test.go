package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("button-name", "missing text", "critical", "#submit")
	b := Key("button-name", "missing text", "critical", "#submit")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKeyDistinguishesParts(t *testing.T) {
	base := Key("button-name", "missing text", "critical")
	assert.NotEqual(t, base, Key("button-name", "missing text", "serious"))
	assert.NotEqual(t, base, Key("button-name", "missing text", "critical", "react"))
	// Part boundaries matter: "ab"+"c" is not "a"+"bc".
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k1", `{"priority":"high"}`))

	value, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"priority":"high"}`, value)
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", "old"))
	require.NoError(t, store.Set(ctx, "k1", "new"))

	value, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", value)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
}

func TestSQLiteStoreExpiry(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", "value"))

	_, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Advance past the TTL; the row must become invisible to readers.
	current = current.Add(2 * time.Hour)
	_, ok, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreSetRefreshesExpiry(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", "v1"))
	current = current.Add(50 * time.Minute)
	require.NoError(t, store.Set(ctx, "k1", "v2"))

	// 70 minutes after the first write but within the refreshed TTL.
	current = current.Add(20 * time.Minute)
	value, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)
}

func TestSQLiteStoreCleanupExpired(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "old", "v"))
	current = current.Add(2 * time.Hour)
	require.NoError(t, store.Set(ctx, "fresh", "v"))

	removed, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStoreClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestSQLiteStoreStats(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t,
		WithTTL(time.Hour),
		WithClock(func() time.Time { return current }))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "expired", "v"))
	current = current.Add(90 * time.Minute)
	require.NoError(t, store.Set(ctx, "valid-1", "v"))
	current = current.Add(time.Minute)
	require.NoError(t, store.Set(ctx, "valid-2", "v"))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.ValidEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, time.Hour, stats.TTL)
	require.NotNil(t, stats.OldestEntry)
	require.NotNil(t, stats.NewestEntry)
	assert.True(t, stats.NewestEntry.After(*stats.OldestEntry))
}

func TestSQLiteStoreMigratesLegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Build a pre-expiration schema by hand.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO cache(key, value) VALUES('legacy-key', 'legacy-value')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store, err := NewSQLiteStore(path, WithTTL(time.Hour))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// The backfilled row is valid, not instantly expired.
	value, ok, err := store.Get(context.Background(), "legacy-key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "legacy-value", value)
}

func TestMockStoreFailureInjection(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	injected := errors.New("disk gone")
	store.GetFunc = func(context.Context, string) (string, bool, error) {
		return "", false, injected
	}
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, injected)
	assert.Equal(t, 1, store.GetCalls)
}

func TestMockStoreExpire(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	store.Expire("k")

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Op: "get", Key: "k", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "get")
	assert.Contains(t, err.Error(), "k")
}
