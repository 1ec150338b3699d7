package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"idacast/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// SQLiteStore keeps entries in a single sqlite table.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// embedded migrations.
func NewSQLiteStore(ctx context.Context, path string, opts Options) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, unavailable("create cache directory", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}
	db.SetMaxOpenConns(1)

	// Another process may briefly hold the file while it migrates.
	err = retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		_ = db.Close()
		return nil, unavailable("ping sqlite", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate sqlite", err)
	}
	return &SQLiteStore{db: db, opts: opts.withDefaults()}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (models.Schedules, bool, error) {
	var (
		payload   []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM cache_entries WHERE locale_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Schedules{}, false, nil
	}
	if err != nil {
		return models.Schedules{}, false, unavailable("select entry", err)
	}
	if !s.opts.Now().Before(time.UnixMilli(expiresAt)) {
		return models.Schedules{}, false, nil
	}

	e, err := decodeEntry(payload)
	if err != nil {
		log.Printf("[cache] discarding corrupt sqlite entry %q: %v", key, err)
		return models.Schedules{}, false, nil
	}
	return e.Schedules, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, snapshot models.Schedules) error {
	e := newEntry(key, snapshot, s.opts)
	payload, err := encodeEntry(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (locale_key, payload, written_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(locale_key) DO UPDATE SET
			payload = excluded.payload,
			written_at = excluded.written_at,
			expires_at = excluded.expires_at`,
		key, payload, e.WrittenAt.UnixMilli(), e.ExpiresAt.UnixMilli())
	if err != nil {
		return unavailable("upsert entry", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return unavailable("clear entries", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
