package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STOCKFLOW_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "stockflow", "stockflow.db"), cfg.Database.Path)
	require.Equal(t, "internal/database/migrations", cfg.Database.Migrations)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, 4, cfg.Auth.MinPasswordLength)
	require.Equal(t, "$", cfg.UI.CurrencySymbol)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/from-file.db"

[auth]
min_password_length = 8

[ui]
currency_symbol = "€"
`), 0o600))
	t.Setenv("HOME", dir)
	t.Setenv("STOCKFLOW_CONFIG", path)
	t.Setenv("STOCKFLOW_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-file.db", cfg.Database.Path)
	require.Equal(t, 8, cfg.Auth.MinPasswordLength)
	require.Equal(t, "€", cfg.UI.CurrencySymbol)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv("HOME", dir)
	t.Setenv("STOCKFLOW_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.CurrencySymbol = "£"
	cfg.Auth.BcryptCost = 12
	require.NoError(t, Save(cfg))

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, "£", again.UI.CurrencySymbol)
	require.Equal(t, 12, again.Auth.BcryptCost)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database\npath = "), 0o600))
	t.Setenv("HOME", dir)
	t.Setenv("STOCKFLOW_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
