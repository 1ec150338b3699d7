package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"idacast/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sampleSnapshot() models.Schedules {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return models.Schedules{
		Regular: []models.BattleSchedule{{
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
			Stages:    []models.NameID{{Name: "鳗鲶区", ID: "VnNTdGFnZS0y"}},
			Rule:      models.NameID{Name: "Turf War", ID: "VnNSdWxlLTA="},
		}},
		WorkBigRun: []models.CoopSchedule{{
			StartTime: start,
			EndTime:   start.Add(48 * time.Hour),
			Stage:     models.NameID{Name: "Wahoo World", ID: "Q29vcFN0YWdlLTEwMA=="},
			Weapons:   []models.NameID{},
			Kind:      models.CoopBigRun,
		}},
	}
}

type backend struct {
	name string
	open func(t *testing.T, opts Options) Store
	// advance moves time forward for the backend's expiry bookkeeping.
	advance func(d time.Duration)
}

func backends(t *testing.T) []backend {
	mr := miniredis.RunT(t)
	return []backend{
		{
			name: "file",
			open: func(t *testing.T, opts Options) Store {
				s, err := NewFileStore(afero.NewMemMapFs(), "/cache", opts)
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T, opts Options) Store {
				s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "cache.db"), opts)
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "bolt",
			open: func(t *testing.T, opts Options) Store {
				s, err := NewBoltStore(context.Background(), filepath.Join(t.TempDir(), "cache.bolt"), opts)
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "redis",
			open: func(t *testing.T, opts Options) Store {
				mr.FlushAll()
				s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), opts)
				require.NoError(t, err)
				return s
			},
			advance: mr.FastForward,
		},
		{
			name: "memory",
			open: func(t *testing.T, opts Options) Store {
				return NewMemoryStore(4, opts)
			},
		},
	}
}

func TestStores_RoundTripAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t, Options{TTL: time.Hour, Now: clock.Now})
			defer store.Close()

			_, ok, err := store.Get(ctx, "zh-CN")
			require.NoError(t, err)
			require.False(t, ok, "empty store should miss")

			want := sampleSnapshot()
			require.NoError(t, store.Set(ctx, "zh-CN", want))

			got, ok, err := store.Get(ctx, "zh-CN")
			require.NoError(t, err)
			require.True(t, ok)
			require.True(t, want.Equal(&got), "round trip changed the snapshot")

			_, ok, err = store.Get(ctx, Key(""))
			require.NoError(t, err)
			require.False(t, ok, "other keys must not see the entry")

			clock.Advance(59 * time.Minute)
			if b.advance != nil {
				b.advance(59 * time.Minute)
			}
			_, ok, err = store.Get(ctx, "zh-CN")
			require.NoError(t, err)
			require.True(t, ok, "entry should survive until its TTL")

			clock.Advance(2 * time.Minute)
			if b.advance != nil {
				b.advance(2 * time.Minute)
			}
			_, ok, err = store.Get(ctx, "zh-CN")
			require.NoError(t, err)
			require.False(t, ok, "expired entry should read as a miss")
		})
	}
}

func TestStores_OverwriteResetsTTLAndClear(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t, Options{TTL: time.Hour, Now: clock.Now})
			defer store.Close()

			first := sampleSnapshot()
			require.NoError(t, store.Set(ctx, Key("default"), first))

			clock.Advance(45 * time.Minute)
			if b.advance != nil {
				b.advance(45 * time.Minute)
			}
			second := sampleSnapshot()
			second.Regular[0].Rule.Name = "Splat Zones"
			require.NoError(t, store.Set(ctx, Key("default"), second))

			clock.Advance(45 * time.Minute)
			if b.advance != nil {
				b.advance(45 * time.Minute)
			}
			got, ok, err := store.Get(ctx, Key("default"))
			require.NoError(t, err)
			require.True(t, ok, "rewrite should restart the TTL")
			require.Equal(t, "Splat Zones", got.Regular[0].Rule.Name)

			require.NoError(t, store.Set(ctx, "ja-JP", first))
			require.NoError(t, store.Clear(ctx))
			for _, key := range []string{Key("default"), "ja-JP"} {
				_, ok, err := store.Get(ctx, key)
				require.NoError(t, err)
				require.False(t, ok, "Clear should drop %s", key)
			}
		})
	}
}

func TestFileStore_Unavailable(t *testing.T) {
	store, err := NewFileStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/cache", Options{})
	if err == nil {
		err = store.Set(context.Background(), "default", sampleSnapshot())
	}
	require.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got %v", err)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.bolt")

	store, err := NewBoltStore(ctx, path, Options{})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "default", sampleSnapshot()))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(ctx, path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	want := sampleSnapshot()
	require.True(t, want.Equal(&got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{BackendFile, BackendSQLite, BackendBolt, BackendMemory} {
		store, err := Open(ctx, Config{Backend: name, Directory: filepath.Join(dir, name)})
		require.NoError(t, err, name)
		require.NoError(t, store.Set(ctx, "default", sampleSnapshot()), name)
		require.NoError(t, store.Close(), name)
	}

	_, err := Open(ctx, Config{Backend: "etcd"})
	require.Error(t, err)
}
