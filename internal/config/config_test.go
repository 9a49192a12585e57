package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "http://finance.internal:8080"
	cfg.API.Timeout = 5 * time.Second
	cfg.Log.Format = "json"

	path := filepath.Join(t.TempDir(), "adminfin.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.API.BaseURL, got.API.BaseURL)
	assert.Equal(t, cfg.API.Timeout, got.API.Timeout)
	assert.Equal(t, cfg.API.IndexTimeout, got.API.IndexTimeout)
	assert.Equal(t, cfg.Display.Timezone, got.Display.Timezone)
	assert.Equal(t, "json", got.Log.Format)
	assert.Equal(t, cfg.LaunchLog, got.LaunchLog)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.API.IndexTimeout)
	assert.Equal(t, "America/Sao_Paulo", cfg.Display.Timezone)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "logs/launches.csv", cfg.LaunchLog)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminfin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://x:1\n  timeout: 2s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://x:1", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.API.IndexTimeout)
	assert.Equal(t, "America/Sao_Paulo", cfg.Display.Timezone)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminfin.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "base_url: http://localhost:5000")
	assert.Contains(t, contents, "timeout: 30s")
	assert.Contains(t, contents, "timezone: America/Sao_Paulo")
}

func TestApplyEnv(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	t.Setenv(EnvAPIURL, "http://from-env:9000")
	t.Setenv(EnvAPITimeout, "1m")
	t.Setenv(EnvTimezone, "UTC")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "http://from-env:9000", cfg.API.BaseURL)
	assert.Equal(t, time.Minute, cfg.API.Timeout)
	assert.Equal(t, "UTC", cfg.Display.Timezone)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestApplyEnvDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMINFIN_API_URL=http://dotenv:1\n"), 0o644))
	t.Setenv(EnvAPIURL, "")
	require.NoError(t, os.Unsetenv(EnvAPIURL))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "http://dotenv:1", cfg.API.BaseURL)
}

func TestApplyEnvBadTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvAPITimeout, "soon")

	cfg := Default()
	require.Error(t, cfg.ApplyEnv())
}

func TestApplyEnvBadTimezone(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvTimezone, "Mars/Olympus")

	cfg := Default()
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `display timezone "Mars/Olympus"`)
}

func TestLoadBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminfin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  timezone: Not/AZone\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `display timezone "Not/AZone"`)

	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Display.Timezone = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Display.Timezone = "Not/AZone"
	assert.Error(t, cfg.Validate())
}

func TestLocationFallback(t *testing.T) {
	cfg := Default()
	cfg.Display.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
