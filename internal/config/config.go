// ABOUTME: Application configuration loaded with viper.
// ABOUTME: Reads an optional YAML file, expands ${VAR:-default} values and applies INOTE_* overrides.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendCharm    = "charm"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// EnvPrefix prefixes every environment override, e.g. INOTE_BACKEND or INOTE_CHARM_HOST.
const EnvPrefix = "INOTE"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all inote settings.
type Config struct {
	Backend     string `mapstructure:"backend"`
	StorageKey  string `mapstructure:"storage_key"`
	DataDir     string `mapstructure:"data_dir"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	LogLevel    string `mapstructure:"log_level"`
	FontSizeMin int    `mapstructure:"font_size_min"`
	FontSizeMax int    `mapstructure:"font_size_max"`

	Charm CharmConfig `mapstructure:"charm"`
}

// CharmConfig holds charm sync settings.
type CharmConfig struct {
	// Host is the charm server (default: charm.2389.dev)
	Host string `mapstructure:"host"`

	// AutoSync pushes to the server after every write.
	AutoSync bool `mapstructure:"auto_sync"`

	// StaleThreshold triggers a pull before reads when the last sync is older. Zero disables it.
	StaleThreshold time.Duration `mapstructure:"stale_threshold"`

	DBName string `mapstructure:"db_name"`
}

// Dir returns the configuration directory path.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "inote")
}

// DefaultPath returns the path to the config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DataDir returns the default directory for local databases.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "inote")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendCharm)
	v.SetDefault("storage_key", "notes")
	v.SetDefault("data_dir", DataDir())
	v.SetDefault("sqlite_path", "")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("font_size_min", 12)
	v.SetDefault("font_size_max", 32)
	v.SetDefault("charm.host", "charm.2389.dev")
	v.SetDefault("charm.auto_sync", true)
	v.SetDefault("charm.stale_threshold", "0s")
	v.SetDefault("charm.db_name", "inote")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (DefaultPath when empty). A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	for _, k := range v.AllKeys() {
		if s, ok := v.Get(k).(string); ok && strings.Contains(s, "${") {
			v.Set(k, expandEnvWithDefaults(s))
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path (DefaultPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	v := viper.New()
	v.Set("backend", cfg.Backend)
	v.Set("storage_key", cfg.StorageKey)
	v.Set("data_dir", cfg.DataDir)
	v.Set("sqlite_path", cfg.SQLitePath)
	v.Set("postgres_dsn", cfg.PostgresDSN)
	v.Set("log_level", cfg.LogLevel)
	v.Set("font_size_min", cfg.FontSizeMin)
	v.Set("font_size_max", cfg.FontSizeMax)
	v.Set("charm.host", cfg.Charm.Host)
	v.Set("charm.auto_sync", cfg.Charm.AutoSync)
	v.Set("charm.stale_threshold", cfg.Charm.StaleThreshold.String())
	v.Set("charm.db_name", cfg.Charm.DBName)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("v.WriteConfigAs: %w", err)
	}
	return os.Chmod(path, 0600)
}

// Exists returns true if a config file exists at path (DefaultPath when empty).
func Exists(path string) bool {
	if path == "" {
		path = DefaultPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks field combinations that would otherwise fail later.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCharm, BackendBadger, BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres backend needs postgres_dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.FontSizeMin <= 0 || c.FontSizeMax < c.FontSizeMin {
		return fmt.Errorf("%w: font size range %d..%d", ErrInvalidConfig, c.FontSizeMin, c.FontSizeMax)
	}
	return nil
}

// ResolvedSQLitePath returns the sqlite file, defaulting into DataDir.
func (c *Config) ResolvedSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "inote.db")
}

// BadgerDir returns the directory of the local badger backend.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.DataDir, "badger")
}

func configType(path string) string {
	ext := strings.TrimLeft(filepath.Ext(path), ".")
	if ext == "" || ext == "yml" {
		return "yaml"
	}
	return ext
}

var envDefaultPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvWithDefaults(s string) string {
	return envDefaultPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envDefaultPattern.FindStringSubmatch(match)
		if len(m) < 2 {
			return match
		}
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		if len(m) > 2 {
			return m[2]
		}
		return ""
	})
}
