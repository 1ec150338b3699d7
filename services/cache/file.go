package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"idacast/models"
)

const filePrefix = "schedules-"

// FileStore keeps one JSON file per locale key in a directory.
type FileStore struct {
	fs   afero.Fs
	dir  string
	opts Options
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(fs afero.Fs, dir string, opts Options) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, unavailable("create cache directory", err)
	}
	return &FileStore{fs: fs, dir: dir, opts: opts.withDefaults()}, nil
}

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, filePrefix+keyReplacer.Replace(key)+".json")
}

func (f *FileStore) Get(ctx context.Context, key string) (models.Schedules, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Schedules{}, false, err
	}
	path := f.path(key)
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Schedules{}, false, nil
		}
		return models.Schedules{}, false, unavailable("read "+path, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		log.Printf("[cache] discarding corrupt entry %s: %v", path, err)
		_ = f.fs.Remove(path)
		return models.Schedules{}, false, nil
	}
	if e.expired(f.opts.Now()) {
		_ = f.fs.Remove(path)
		return models.Schedules{}, false, nil
	}
	return e.Schedules, true, nil
}

func (f *FileStore) Set(ctx context.Context, key string, s models.Schedules) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(newEntry(key, s, f.opts), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return unavailable("write "+tmp, err)
	}
	if err := f.fs.Rename(tmp, path); err != nil {
		_ = f.fs.Remove(tmp)
		return unavailable("rename "+tmp, err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	matches, err := afero.Glob(f.fs, filepath.Join(f.dir, filePrefix+"*"))
	if err != nil {
		return unavailable("list cache directory", err)
	}
	for _, m := range matches {
		if err := f.fs.Remove(m); err != nil && !os.IsNotExist(err) {
			return unavailable("remove "+m, err)
		}
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
