package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadCreatesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "/etc/idacast/settings.json")

	s, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)

	data, err := afero.ReadFile(fsys, "/etc/idacast/settings.json")
	require.NoError(t, err)
	require.Contains(t, string(data), `"intervalMinutes": 120`)

	exists, err := afero.Exists(fsys, "/etc/idacast/settings.json.tmp")
	require.NoError(t, err)
	require.False(t, exists, "temporary file left behind")
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	for _, path := range []string{"/cfg/settings.json", "/cfg/settings.yaml", "/cfg/settings.yml"} {
		t.Run(path, func(t *testing.T) {
			m := NewManagerWithFs(afero.NewMemMapFs(), path)

			want := DefaultSettings()
			want.Locale = "ja-JP"
			want.Cache.Backend = "sqlite"
			want.Refresh.Coalesce = true
			want.Display.Capacity = 5
			require.NoError(t, m.Save(want))

			got, err := m.Load()
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestManager_YAMLIsHumanReadable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "/cfg/settings.yaml")
	require.NoError(t, m.Save(DefaultSettings()))

	data, err := afero.ReadFile(fsys, "/cfg/settings.yaml")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "backend: bolt"), "unexpected yaml:\n%s", data)
}

func TestManager_BackfillsMissingFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg/settings.json", []byte(`{"locale":"fr-FR","cache":{"backend":"memory"}}`), 0o644))

	s, err := NewManagerWithFs(fsys, "/cfg/settings.json").Load()
	require.NoError(t, err)
	require.Equal(t, "fr-FR", s.Locale)
	require.Equal(t, "memory", s.Cache.Backend)
	require.Equal(t, 4*time.Hour, s.CacheTTL())
	require.Equal(t, 2*time.Hour, s.RefreshInterval())
	require.Equal(t, 30*time.Second, s.SourceTimeout())
	require.Equal(t, 3, s.Display.Capacity)
	require.Equal(t, DefaultSettings().Source.BaseURL, s.Source.BaseURL)
}

func TestManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("IDACAST_LOCALE", "de-DE")
	t.Setenv("IDACAST_CACHE_BACKEND", "redis")
	t.Setenv("IDACAST_CACHE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("IDACAST_REFRESH_INTERVAL_MINUTES", "15")
	t.Setenv("IDACAST_SERVER_PORT", "9000")

	fsys := afero.NewMemMapFs()
	m := NewManagerWithFs(fsys, "/cfg/settings.json")
	s, err := m.Load()
	require.NoError(t, err)

	require.Equal(t, "de-DE", s.Locale)
	require.Equal(t, "redis", s.Cache.Backend)
	require.Equal(t, "redis://localhost:6379/0", s.Cache.RedisURL)
	require.Equal(t, 15*time.Minute, s.RefreshInterval())
	require.Equal(t, 9000, s.Server.Port)

	// Overrides are not written back.
	data, err := afero.ReadFile(fsys, "/cfg/settings.json")
	require.NoError(t, err)
	require.NotContains(t, string(data), "de-DE")
}

func TestManager_Errors(t *testing.T) {
	_, err := NewManagerWithFs(afero.NewMemMapFs(), "").Load()
	require.Error(t, err)

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg/settings.json", []byte(`{not json`), 0o644))
	_, err = NewManagerWithFs(fsys, "/cfg/settings.json").Load()
	require.ErrorContains(t, err, "decode /cfg/settings.json")

	t.Setenv("IDACAST_SERVER_PORT", "not-a-port")
	_, err = NewManagerWithFs(afero.NewMemMapFs(), "/cfg/settings.json").Load()
	require.ErrorContains(t, err, "parse env")

	ro := afero.NewReadOnlyFs(afero.NewMemMapFs())
	require.Error(t, NewManagerWithFs(ro, "/cfg/settings.json").Save(DefaultSettings()))
}
