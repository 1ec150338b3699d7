package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. IDACAST_CACHE_BACKEND.
const EnvPrefix = "IDACAST_"

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Source  SourceSettings  `json:"source" yaml:"source" envPrefix:"SOURCE_"`
	Locale  string          `json:"locale" yaml:"locale" env:"LOCALE"`
	Refresh RefreshSettings `json:"refresh" yaml:"refresh" envPrefix:"REFRESH_"`
	Cache   CacheSettings   `json:"cache" yaml:"cache" envPrefix:"CACHE_"`
	Server  ServerSettings  `json:"server" yaml:"server" envPrefix:"SERVER_"`
	Display DisplaySettings `json:"display" yaml:"display" envPrefix:"DISPLAY_"`
	Log     LogConfig       `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// SourceSettings configures the upstream schedule endpoint.
type SourceSettings struct {
	BaseURL        string `json:"baseUrl" yaml:"baseUrl" env:"BASE_URL"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds" env:"TIMEOUT_SECONDS"`
	Proxy          string `json:"proxy,omitempty" yaml:"proxy,omitempty" env:"PROXY"`
	UserAgent      string `json:"userAgent" yaml:"userAgent" env:"USER_AGENT"`
}

type RefreshSettings struct {
	IntervalMinutes int  `json:"intervalMinutes" yaml:"intervalMinutes" env:"INTERVAL_MINUTES"`
	Coalesce        bool `json:"coalesce" yaml:"coalesce" env:"COALESCE"`
}

// CacheSettings selects the schedule cache backend. Backend is one of
// file, sqlite, bolt, redis or memory.
type CacheSettings struct {
	Backend    string `json:"backend" yaml:"backend" env:"BACKEND"`
	Directory  string `json:"directory" yaml:"directory" env:"DIRECTORY"`
	TTLHours   int    `json:"ttlHours" yaml:"ttlHours" env:"TTL_HOURS"`
	RedisURL   string `json:"redisUrl,omitempty" yaml:"redisUrl,omitempty" env:"REDIS_URL"`
	MemorySize int    `json:"memorySize" yaml:"memorySize" env:"MEMORY_SIZE"`
}

type ServerSettings struct {
	Host string `json:"host" yaml:"host" env:"HOST"`
	Port int    `json:"port" yaml:"port" env:"PORT"`
}

type DisplaySettings struct {
	Capacity int `json:"capacity" yaml:"capacity" env:"CAPACITY"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	File       string `json:"file" yaml:"file" env:"FILE"`
	Level      string `json:"level" yaml:"level" env:"LEVEL"`
	MaxSize    int    `json:"maxSize" yaml:"maxSize" env:"MAX_SIZE"`          // megabytes
	MaxAge     int    `json:"maxAge" yaml:"maxAge" env:"MAX_AGE"`             // days
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" env:"MAX_BACKUPS"` // files
	Compress   bool   `json:"compress" yaml:"compress" env:"COMPRESS"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			BaseURL:        "https://splatoon3.ink/data/",
			TimeoutSeconds: 30,
			UserAgent:      "idacast/1.0 (+https://github.com/idacast/idacast)",
		},
		Locale:  "default",
		Refresh: RefreshSettings{IntervalMinutes: 120},
		Cache:   CacheSettings{Backend: "bolt", Directory: "cache", TTLHours: 4, MemorySize: 16},
		Server:  ServerSettings{Host: "0.0.0.0", Port: 7780},
		Display: DisplaySettings{Capacity: 3},
		Log: LogConfig{
			File:       "cache/logs/idacast.log",
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// RefreshInterval returns the automatic refresh period.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.Refresh.IntervalMinutes) * time.Minute
}

// CacheTTL returns how long a cached snapshot stays valid.
func (s Settings) CacheTTL() time.Duration {
	return time.Duration(s.Cache.TTLHours) * time.Hour
}

// SourceTimeout returns the per-request upstream timeout.
func (s Settings) SourceTimeout() time.Duration {
	return time.Duration(s.Source.TimeoutSeconds) * time.Second
}

// Manager loads and persists settings to a JSON or YAML file.
type Manager struct {
	fs   afero.Fs
	path string
}

func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs is NewManager over an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string { return m.path }

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

func (m *Manager) isYAML() bool {
	switch strings.ToLower(filepath.Ext(m.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the settings file or creates it with defaults if missing.
// Environment overrides apply on top of the file but are never saved.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	var s Settings
	data, err := afero.ReadFile(m.fs, m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s = DefaultSettings()
		if err := m.Save(s); err != nil {
			return Settings{}, err
		}
	case err != nil:
		return Settings{}, err
	case m.isYAML():
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
		}
	}

	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}

	backfill(&s)
	return s, nil
}

// backfill fills settings missing from older or hand-written files.
func backfill(s *Settings) {
	d := DefaultSettings()

	if strings.TrimSpace(s.Source.BaseURL) == "" {
		s.Source.BaseURL = d.Source.BaseURL
	}
	if s.Source.TimeoutSeconds <= 0 {
		s.Source.TimeoutSeconds = d.Source.TimeoutSeconds
	}
	if strings.TrimSpace(s.Source.UserAgent) == "" {
		s.Source.UserAgent = d.Source.UserAgent
	}
	if strings.TrimSpace(s.Locale) == "" {
		s.Locale = d.Locale
	}
	if s.Refresh.IntervalMinutes <= 0 {
		s.Refresh.IntervalMinutes = d.Refresh.IntervalMinutes
	}
	if strings.TrimSpace(s.Cache.Backend) == "" {
		s.Cache.Backend = d.Cache.Backend
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}
	if s.Cache.TTLHours <= 0 {
		s.Cache.TTLHours = d.Cache.TTLHours
	}
	if s.Cache.MemorySize <= 0 {
		s.Cache.MemorySize = d.Cache.MemorySize
	}
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Display.Capacity <= 0 {
		s.Display.Capacity = d.Display.Capacity
	}
	if strings.TrimSpace(s.Log.Level) == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.MaxSize <= 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if m.isYAML() {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return err
		}
	}

	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}
