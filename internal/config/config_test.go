package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Engine.DirectParentsOnly)
	assert.Equal(t, 8, cfg.Engine.SuggestionCap)
	assert.Equal(t, 8, cfg.Scan.MaxConcurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDuration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Engine, cfg.Engine)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  direct_parents_only: false
  suggestion_cap: 3
scan:
  unit_paths: [out/units, extra.json]
  debounce: 250ms
logging:
  debug_mode: true
  level: debug
  categories:
    watch: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Engine.DirectParentsOnly)
	assert.Equal(t, 3, cfg.Engine.SuggestionCap)
	assert.Equal(t, []string{"out/units", "extra.json"}, cfg.Scan.UnitPaths)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceDuration())
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, map[string]bool{"watch": false}, cfg.Logging.Categories)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, 8, cfg.Scan.MaxConcurrency)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHADERSCOPE_DIRECT_PARENTS_ONLY", "false")
	t.Setenv("SHADERSCOPE_SUGGESTION_CAP", "5")
	t.Setenv("SHADERSCOPE_UNIT_PATHS", "a"+string(os.PathListSeparator)+"b")
	t.Setenv("SHADERSCOPE_DEBOUNCE", "1s")
	t.Setenv("SHADERSCOPE_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.False(t, cfg.Engine.DirectParentsOnly)
	assert.Equal(t, 5, cfg.Engine.SuggestionCap)
	assert.Equal(t, []string{"a", "b"}, cfg.Scan.UnitPaths)
	assert.Equal(t, time.Second, cfg.DebounceDuration())
	assert.True(t, cfg.Logging.DebugMode)
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("SHADERSCOPE_SUGGESTION_CAP", "many")
	t.Setenv("SHADERSCOPE_DIRECT_PARENTS_ONLY", "maybe")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.SuggestionCap)
	assert.True(t, cfg.Engine.DirectParentsOnly)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shaderscope.yaml")

	cfg := DefaultConfig()
	cfg.Engine.SuggestionCap = 4
	cfg.Scan.UnitPaths = []string{"out/units"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Engine, loaded.Engine)
	assert.Equal(t, cfg.Scan, loaded.Scan)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative cap", func(c *Config) { c.Engine.SuggestionCap = -1 }, false},
		{"negative concurrency", func(c *Config) { c.Scan.MaxConcurrency = -2 }, false},
		{"bad debounce", func(c *Config) { c.Scan.Debounce = "soon" }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, false},
		{"empty level", func(c *Config) { c.Logging.Level = "" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
