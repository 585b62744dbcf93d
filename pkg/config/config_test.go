package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50*time.Millisecond, cfg.FuseTimeout())
	assert.Equal(t, filepath.Join("data", "words.dict"), cfg.Dict.Path)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
max_limit = 8
enable_filter = false

[dict]
path = "/tmp/en.dict"
hot_cache_size = 10
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Server.MaxLimit)
	assert.False(t, cfg.Server.EnableFilter)
	assert.Equal(t, "/tmp/en.dict", cfg.Dict.Path)
	assert.Equal(t, 10, cfg.Dict.HotCacheSize)

	def := DefaultConfig()
	assert.Equal(t, def.Server.MinPrefix, cfg.Server.MinPrefix, "missing keys keep defaults")
	assert.Equal(t, def.CLI, cfg.CLI)
}

func TestLoadConfig_PartialRecovery(t *testing.T) {
	path := writeConfig(t, `
[server]
max_limit = "lots"
min_prefix = 2

[dict]
path = "words.dict"
min_frequency = 5
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.MaxLimit, cfg.Server.MaxLimit, "bad value falls back")
	assert.Equal(t, 2, cfg.Server.MinPrefix)
	assert.Equal(t, "words.dict", cfg.Dict.Path)
	assert.Equal(t, 5, cfg.Dict.MinFrequency)
}

func TestLoadConfig_Unparseable(t *testing.T) {
	path := writeConfig(t, "[server\nmax_limit = ")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfig(t, "[server]\nmin_prefix = 5\nmax_prefix = 2\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitConfig_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigWithPriority_CustomPath(t *testing.T) {
	path := writeConfig(t, "[cli]\ndefault_limit = 3\n")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, cfg.CLI.DefaultLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero limit", func(c *Config) { c.Server.MaxLimit = 0 }},
		{"zero min prefix", func(c *Config) { c.Server.MinPrefix = 0 }},
		{"max below min", func(c *Config) { c.Server.MaxPrefix = 0 }},
		{"negative timeout", func(c *Config) { c.Server.FuseTimeoutMs = -1 }},
		{"negative cache", func(c *Config) { c.Dict.HotCacheSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestUpdate(t *testing.T) {
	path := writeConfig(t, "")
	cfg := DefaultConfig()

	err := cfg.Update(path, ServerUpdate{
		MaxLimit:      intPtr(5),
		EnableFilter:  boolPtr(false),
		FuseTimeoutMs: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Server.MaxLimit)
	assert.False(t, cfg.Server.EnableFilter)
	assert.Equal(t, time.Duration(0), cfg.FuseTimeout())
	assert.Equal(t, DefaultConfig().Server.MinPrefix, cfg.Server.MinPrefix)

	saved, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, saved)
}

func TestUpdate_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Update("", ServerUpdate{MaxLimit: intPtr(7), MinPrefix: intPtr(100)})
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "nothing applied")
}

func TestGetActiveConfigPath(t *testing.T) {
	assert.Equal(t, "built-in defaults", GetActiveConfigPath(""))
	assert.True(t, filepath.IsAbs(GetActiveConfigPath("config.toml")))
}
