// Package system provides infrastructure for system-level configuration.
// This covers the user's config.yaml (cache location, repositories, database
// credentials, tool binaries) and the directories rodoo keeps its files in.
package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/spf13/viper"
)

// AppName names rodoo's directories under the XDG base directories.
const AppName = "rodoo"

// EnvPrefix prefixes environment overrides, e.g. RODOO_CACHE_ROOT.
const EnvPrefix = "RODOO"

// Config represents the global configuration file (config.yaml).
// This is infrastructure-level configuration separate from profile files.
type Config struct {
	Repositories RepositoriesConfig `mapstructure:"repositories"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Defaults     DefaultsConfig     `mapstructure:"defaults"`
	CacheRoot    string             `mapstructure:"cache_root"`
	UVBinary     string             `mapstructure:"uv_binary"`
	GitBinary    string             `mapstructure:"git_binary"`
	LockTimeout  time.Duration      `mapstructure:"lock_timeout"`
}

// RepositoriesConfig holds the remote of each edition.
type RepositoriesConfig struct {
	Community  string `mapstructure:"community"`
	Enterprise string `mapstructure:"enterprise"`
}

// DatabaseConfig holds the default connection parameters passed to the product.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DefaultsConfig holds the built-in profile defaults.
type DefaultsConfig struct {
	Version       string `mapstructure:"version"`
	PythonVersion string `mapstructure:"python_version"`
}

// UserConfigDir is where config.yaml and user-level profile files live.
func UserConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultConfigPath is the config.yaml location used when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// DefaultCacheRoot is the cache root used when cache_root is not configured.
func DefaultCacheRoot() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		CacheRoot:   DefaultCacheRoot(),
		LockTimeout: 10 * time.Minute,
		Defaults: DefaultsConfig{
			Version:       "18.0",
			PythonVersion: "3.12",
		},
		Repositories: RepositoriesConfig{
			Community:  "https://github.com/odoo/odoo.git",
			Enterprise: "git@github.com:odoo/enterprise.git",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			User:     "odoo",
			Password: "odoo",
		},
		UVBinary:  "uv",
		GitBinary: "git",
	}
}

// ConfigLoader loads system configuration from disk and the environment.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// Load reads the configuration at path (DefaultConfigPath when empty) and
// applies RODOO_* environment overrides. A missing file at the default
// location yields DefaultConfig(); an explicitly given path must exist.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if !missing || explicit {
			return nil, fmt.Errorf("failed to read system config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("cache_root", d.CacheRoot)
	v.SetDefault("lock_timeout", d.LockTimeout)
	v.SetDefault("defaults.version", d.Defaults.Version)
	v.SetDefault("defaults.python_version", d.Defaults.PythonVersion)
	v.SetDefault("repositories.community", d.Repositories.Community)
	v.SetDefault("repositories.enterprise", d.Repositories.Enterprise)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("uv_binary", d.UVBinary)
	v.SetDefault("git_binary", d.GitBinary)
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if c.CacheRoot == "" {
		return fmt.Errorf("system config: cache_root cannot be empty")
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("system config: lock_timeout must be positive")
	}
	if _, err := values.NewProductVersion(c.Defaults.Version); err != nil {
		return fmt.Errorf("system config: defaults.version: %w", err)
	}
	if _, err := values.NewPythonVersion(c.Defaults.PythonVersion); err != nil {
		return fmt.Errorf("system config: defaults.python_version: %w", err)
	}
	return nil
}

// Default server limits applied to every profile.
const (
	DefaultLimitTime     = 3600
	DefaultHTTPInterface = "localhost"
)

// ProfileDefaults returns the built-in defaults layer for profile merging.
func (c *Config) ProfileDefaults() (entities.ProfileSpec, error) {
	version, err := values.NewProductVersion(c.Defaults.Version)
	if err != nil {
		return entities.ProfileSpec{}, fmt.Errorf("system config: defaults.version: %w", err)
	}
	python, err := values.NewPythonVersion(c.Defaults.PythonVersion)
	if err != nil {
		return entities.ProfileSpec{}, fmt.Errorf("system config: defaults.python_version: %w", err)
	}

	return entities.ProfileSpec{
		Version:       version,
		PythonVersion: python,
		Modules:       []string{},
		Paths:         []string{},
		Launch: entities.LaunchOptions{
			DBHost:        c.Database.Host,
			DBUser:        c.Database.User,
			DBPassword:    c.Database.Password,
			HTTPInterface: DefaultHTTPInterface,
			LimitTimeCPU:  DefaultLimitTime,
			LimitTimeReal: DefaultLimitTime,
		},
	}, nil
}
