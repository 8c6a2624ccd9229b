// Package config loads runtime settings from defaults, an optional
// talagalog.yaml, TALAGALOG_* environment variables and command-line flags,
// in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendCSV      = "csv"
	BackendParquet  = "parquet"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Render modes.
const (
	RenderTerminal = "terminal"
	RenderPNG      = "png"
)

// Config holds every configurable value.
type Config struct {
	User    string        `mapstructure:"user"`
	DataDir string        `mapstructure:"data_dir"`
	Storage StorageConfig `mapstructure:"storage"`
	Render  RenderConfig  `mapstructure:"render"`
	Log     LogConfig     `mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	// DSN is the postgres connection string or the sqlite file path.
	DSN string `mapstructure:"dsn"`
}

type RenderConfig struct {
	Mode      string `mapstructure:"mode"`
	OutputDir string `mapstructure:"output_dir"`
	Height    int    `mapstructure:"height"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File receives log output; empty means stderr.
	File string `mapstructure:"file"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"user":       "user",
	"data-dir":   "data_dir",
	"backend":    "storage.backend",
	"dsn":        "storage.dsn",
	"render":     "render.mode",
	"output-dir": "render.output_dir",
	"height":     "render.height",
	"log-level":  "log.level",
	"log-file":   "log.file",
}

// RegisterFlags adds the command-line flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("user", "u", "", "username; prompted for when empty")
	fs.String("data-dir", "", "directory holding file datasets")
	fs.StringP("backend", "b", "", "storage backend: csv, parquet, postgres, sqlite or memory")
	fs.String("dsn", "", "postgres connection string or sqlite file")
	fs.String("render", "", "plot output: terminal or png")
	fs.String("output-dir", "", "directory for png plots")
	fs.Int("height", 0, "terminal plot height in rows")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.StringP("config", "c", "", "config file (default talagalog.yaml)")
}

// Load resolves the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("user", "")
	v.SetDefault("data_dir", ".")
	v.SetDefault("storage.backend", BackendCSV)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("render.mode", RenderTerminal)
	v.SetDefault("render.output_dir", "plots")
	v.SetDefault("render.height", 12)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix("TALAGALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := ""
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("talagalog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("$HOME", ".config", "talagalog"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and backend requirements.
func (c *Config) Validate() error {
	c.User = strings.TrimSpace(c.User)
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	c.Render.Mode = strings.ToLower(c.Render.Mode)

	switch c.Storage.Backend {
	case BackendCSV, BackendParquet, BackendMemory:
	case BackendSQLite:
		if c.Storage.DSN == "" {
			c.Storage.DSN = filepath.Join(c.DataDir, "talagalog.db")
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Render.Mode {
	case RenderTerminal, RenderPNG:
	default:
		return fmt.Errorf("unknown render mode %q", c.Render.Mode)
	}
	if c.Render.Height <= 0 {
		return fmt.Errorf("render.height must be positive, got %d", c.Render.Height)
	}
	if strings.ContainsAny(c.User, `/\`) {
		return fmt.Errorf("user %q must not contain path separators", c.User)
	}
	return nil
}
