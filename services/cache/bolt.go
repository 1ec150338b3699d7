package cache

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"go.etcd.io/bbolt"

	"idacast/models"
)

var boltBucket = []byte(Namespace)

// BoltStore keeps entries in a single bbolt bucket.
type BoltStore struct {
	db   *bbolt.DB
	opts Options
}

// NewBoltStore opens the database at path. bbolt takes an exclusive file
// lock, so a second dashboard instance retries for a short while before
// giving up.
func NewBoltStore(ctx context.Context, path string, opts Options) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, unavailable("create cache directory", err)
	}

	var db *bbolt.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(250*time.Millisecond),
		retry.RetryIf(func(err error) bool { return errors.Is(err, bbolt.ErrTimeout) }),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, unavailable("open bolt", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, unavailable("create bucket", err)
	}
	return &BoltStore{db: db, opts: opts.withDefaults()}, nil
}

func (b *BoltStore) Get(ctx context.Context, key string) (models.Schedules, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Schedules{}, false, err
	}
	var payload []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(key)); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return models.Schedules{}, false, unavailable("read entry", err)
	}
	if payload == nil {
		return models.Schedules{}, false, nil
	}

	e, err := decodeEntry(payload)
	if err != nil {
		log.Printf("[cache] discarding corrupt bolt entry %q: %v", key, err)
		return models.Schedules{}, false, nil
	}
	if e.expired(b.opts.Now()) {
		return models.Schedules{}, false, nil
	}
	return e.Schedules, true, nil
}

func (b *BoltStore) Set(ctx context.Context, key string, s models.Schedules) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := encodeEntry(newEntry(key, s, b.opts))
	if err != nil {
		return err
	}
	if err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), payload)
	}); err != nil {
		return unavailable("write entry", err)
	}
	return nil
}

func (b *BoltStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(boltBucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(boltBucket)
		return err
	})
	if err != nil {
		return unavailable("clear bucket", err)
	}
	return nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
