// Package cache provides the durable, TTL-expiring store for generative
// enrichment results. Entries are keyed by content fingerprint so identical
// issues across different scans reuse results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the durable key-value medium for enrichment payloads.
type Store interface {
	// Get returns the stored value for key. Absent or expired entries are
	// a miss (ok == false); expired rows are never visible to readers.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set upserts the value and recomputes the entry's expiration.
	Set(ctx context.Context, key, value string) error

	// CleanupExpired deletes all expired rows and returns the count removed.
	CleanupExpired(ctx context.Context) (int64, error)

	// Clear removes every entry and returns the count removed.
	Clear(ctx context.Context) (int64, error)

	// Stats reports entry counts and the age range of valid rows.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the underlying storage handle.
	Close() error
}

// Stats contains cache statistics.
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	ValidEntries   int           `json:"valid_entries"`
	ExpiredEntries int           `json:"expired_entries"`
	OldestEntry    *time.Time    `json:"oldest_entry,omitempty"`
	NewestEntry    *time.Time    `json:"newest_entry,omitempty"`
	TTL            time.Duration `json:"ttl"`
}

// Key builds a deterministic fingerprint from the given parts: the parts
// are serialized in order as a JSON array of strings and hashed with
// SHA-256 to a fixed-length hex string. Stable across process restarts.
func Key(parts ...string) string {
	payload, err := json.Marshal(parts)
	if err != nil {
		// A []string never fails to marshal; keep the signature simple.
		payload = []byte(fmt.Sprint(parts))
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Error represents a cache-specific failure.
type Error struct {
	Err error
	Op  string
	Key string
}

func (e *Error) Error() string {
	return "cache " + e.Op + " failed for key " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
