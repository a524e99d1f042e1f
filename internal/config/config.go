package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// LogConfig controls the JSON log file. The TUI owns the terminal, so logs never go to stdout.
type LogConfig struct {
	Path  string
	Level string
}

// AuthConfig holds password policy.
type AuthConfig struct {
	BcryptCost        int `mapstructure:"bcrypt_cost"`
	MinPasswordLength int `mapstructure:"min_password_length"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
}

// configPath is $STOCKFLOW_CONFIG, or config.toml under ~/.config/stockflow.
func configPath() string {
	if p := os.Getenv("STOCKFLOW_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "stockflow", "config.toml")
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "stockflow")
	for key, val := range map[string]any{
		"database.path":            filepath.Join(dataDir, "stockflow.db"),
		"database.migrations":      "internal/database/migrations",
		"log.path":                 filepath.Join(dataDir, "stockflow.log"),
		"log.level":                "info",
		"auth.bcrypt_cost":         10,
		"auth.min_password_length": 4,
		"ui.currency_symbol":       "$",
		"ui.timezone":              "Local",
	} {
		v.SetDefault(key, val)
	}
}

// Load merges defaults, the config file when there is one, and STOCKFLOW_*
// environment variables (dots become underscores: STOCKFLOW_LOG_LEVEL).
// A missing file is fine; an unreadable or malformed one is an error.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath())
	v.SetConfigType("toml")
	v.SetEnvPrefix("STOCKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to the config file Load reads from.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	for key, val := range map[string]any{
		"database.path":            cfg.Database.Path,
		"database.migrations":      cfg.Database.Migrations,
		"log.path":                 cfg.Log.Path,
		"log.level":                cfg.Log.Level,
		"auth.bcrypt_cost":         cfg.Auth.BcryptCost,
		"auth.min_password_length": cfg.Auth.MinPasswordLength,
		"ui.currency_symbol":       cfg.UI.CurrencySymbol,
		"ui.timezone":              cfg.UI.Timezone,
	} {
		v.Set(key, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
