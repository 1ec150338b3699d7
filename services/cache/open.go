package cache

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend    string
	Directory  string
	RedisURL   string
	MemorySize int
	Options    Options
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case BackendFile:
		store, err = asStore(NewFileStore(afero.NewOsFs(), cfg.Directory, cfg.Options))
	case BackendSQLite:
		store, err = asStore(NewSQLiteStore(ctx, filepath.Join(cfg.Directory, Namespace+".db"), cfg.Options))
	case BackendBolt, "":
		store, err = asStore(NewBoltStore(ctx, filepath.Join(cfg.Directory, Namespace+".bolt"), cfg.Options))
	case BackendRedis:
		store, err = asStore(NewRedisStore(ctx, cfg.RedisURL, cfg.Options))
	case BackendMemory:
		store = NewMemoryStore(cfg.MemorySize, cfg.Options)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func asStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
