// Package cache persists normalized schedule snapshots keyed by locale.
//
// Each key holds at most one entry. An entry expires a fixed TTL after it
// was written; expiry is only observed on lookup, where an expired entry
// reads as a miss. Every backend satisfies Store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idacast/internal/locale"
	"idacast/models"
)

const (
	// DefaultTTL is how long a written snapshot stays valid.
	DefaultTTL = 4 * time.Hour
	// Namespace prefixes every backend's storage (bucket, table, key prefix).
	Namespace = "idacast_cache"
)

// ErrUnavailable wraps backend I/O failures. Readers treat it as a miss,
// writers surface it.
var ErrUnavailable = errors.New("cache unavailable")

// Store is a locale-keyed TTL cache of snapshots.
type Store interface {
	// Get returns the snapshot stored under key. ok is false for missing
	// and expired entries.
	Get(ctx context.Context, key string) (s models.Schedules, ok bool, err error)
	// Set replaces the entry for key and restarts its TTL.
	Set(ctx context.Context, key string, s models.Schedules) error
	// Clear drops every entry regardless of expiry.
	Clear(ctx context.Context) error
	Close() error
}

// Options are shared by every backend.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Key returns the cache key for a requested locale.
func Key(requested string) string {
	return locale.Key(requested)
}

// entry is the persisted envelope.
type entry struct {
	Key       string           `json:"key"`
	WrittenAt time.Time        `json:"writtenAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Schedules models.Schedules `json:"schedules"`
}

func newEntry(key string, s models.Schedules, opts Options) entry {
	now := opts.Now()
	return entry{Key: key, WrittenAt: now, ExpiresAt: now.Add(opts.TTL), Schedules: s}
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
