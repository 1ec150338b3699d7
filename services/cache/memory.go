package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"idacast/models"
)

const defaultMemoryEntries = 32

// MemoryStore is a process-local store for tests and for running without
// a writable disk. It does not survive restarts.
type MemoryStore struct {
	lru  *expirable.LRU[string, entry]
	opts Options
}

// NewMemoryStore keeps at most size locale entries.
func NewMemoryStore(size int, opts Options) *MemoryStore {
	if size <= 0 {
		size = defaultMemoryEntries
	}
	opts = opts.withDefaults()
	return &MemoryStore{lru: expirable.NewLRU[string, entry](size, nil, opts.TTL), opts: opts}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (models.Schedules, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Schedules{}, false, err
	}
	e, ok := m.lru.Get(key)
	if !ok || e.expired(m.opts.Now()) {
		return models.Schedules{}, false, nil
	}
	return e.Schedules, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, s models.Schedules) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.lru.Add(key, newEntry(key, s, m.opts))
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.lru.Purge()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
