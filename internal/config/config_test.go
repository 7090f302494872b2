package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, DefaultFile)

	seed := uint64(42)
	cfg := Default()
	cfg.BaseDir = "schemas"
	cfg.Seed = &seed
	cfg.Count = 5
	cfg.RequestTimeout = 3 * time.Second
	cfg.Generators = map[string]string{"string": "uuid"}

	require.NoError(t, cfg.Save(cfgPath))

	loaded, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_LoadKeepsDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\ncount: 3\n"), 0o600))

	loaded, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Count)
	assert.Equal(t, FormatJSON, loaded.Format)
	assert.True(t, loaded.AllowHTTP)
	assert.True(t, loaded.MetaValidation)
}

func TestConfig_LoadRejectsUnknownKeys(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\nseeds: 3\n"), 0o600))

	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeds")
}

func TestConfig_LoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"SCHEMAGEN_SEED":            "7",
		"SCHEMAGEN_COUNT":           "12",
		"SCHEMAGEN_FORMAT":          "YAML",
		"SCHEMAGEN_ALLOW_HTTP":      "false",
		"SCHEMAGEN_REQUEST_TIMEOUT": "250ms",
		"SCHEMAGEN_GENERATORS":      "string=uuid, email=StdEmailRandom",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(key string) string { return env[key] }))

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, 12, cfg.Count)
	assert.Equal(t, FormatYAML, cfg.Format)
	assert.False(t, cfg.AllowHTTP)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, map[string]string{"string": "uuid", "email": "StdEmailRandom"}, cfg.Generators)
}

func TestConfig_ApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "seed", key: "SCHEMAGEN_SEED", value: "-1", wantErr: "SCHEMAGEN_SEED"},
		{name: "count", key: "SCHEMAGEN_COUNT", value: "many", wantErr: "SCHEMAGEN_COUNT"},
		{name: "timeout", key: "SCHEMAGEN_REQUEST_TIMEOUT", value: "soon", wantErr: "SCHEMAGEN_REQUEST_TIMEOUT"},
		{name: "mapping", key: "SCHEMAGEN_GENERATORS", value: "string", wantErr: "key=name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyEnv(func(key string) string {
				if key == tt.key {
					return tt.value
				}
				return ""
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_LoadDotEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SCHEMAGEN_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SCHEMAGEN_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(envPath, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("SCHEMAGEN_TEST_DOTENV"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "unsupported version", mutate: func(c *Config) { c.Version = 99 }, wantErr: "unsupported config version"},
		{name: "negative count", mutate: func(c *Config) { c.Count = -1 }, wantErr: "count"},
		{name: "format", mutate: func(c *Config) { c.Format = "xml" }, wantErr: "output format"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "chatty" }, wantErr: "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Level(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
