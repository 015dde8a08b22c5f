// Package config loads RelCore settings from a YAML file and RELCORE_*
// environment variables using viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/relcore/internal/errs"
)

// EnvPrefix is prepended to every environment override, e.g.
// RELCORE_STORAGE_DRIVER=sqlite.
const EnvPrefix = "RELCORE"

// Storage drivers accepted in storage.driver.
const (
	DriverMemory   = "memory"
	DriverDir      = "dir"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMinIO    = "minio"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Shell   ShellConfig   `mapstructure:"shell"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`

	// Format is the snapshot encoding for dir and minio: json or yaml.
	Format string `mapstructure:"format"`

	// Timeout bounds every snapshot write and read.
	Timeout time.Duration `mapstructure:"timeout"`

	// dir
	Dir string `mapstructure:"dir"`

	// sqlite, postgres, mysql
	DSN string `mapstructure:"dsn"`

	// minio
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ShellConfig struct {
	Prompt      string `mapstructure:"prompt"`
	HistoryFile string `mapstructure:"history_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.format", "json")
	v.SetDefault("storage.timeout", 5*time.Second)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "relcore")
	v.SetDefault("storage.prefix", "snapshots")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.region", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("shell.prompt", "relcore> ")
	v.SetDefault("shell.history_file", "")
}

// Default returns the built-in defaults, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads path (YAML) when given, otherwise ./relcore.yaml if it
// exists, then applies RELCORE_* environment overrides.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config", err)
		}
	} else {
		v.SetConfigName("relcore")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the storage section for the selected driver.
func (c *Config) Validate() error {
	s := c.Storage
	switch s.Format {
	case "json", "yaml", "yml":
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "storage.format must be json or yaml, got %q", s.Format)
	}
	if s.Timeout <= 0 {
		return errs.New(errs.ErrKindInvalidInput, "storage.timeout must be positive")
	}

	switch s.Driver {
	case DriverMemory:
	case DriverDir:
		if s.Dir == "" {
			return errs.New(errs.ErrKindInvalidInput, "storage.dir is required for the dir driver")
		}
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if s.DSN == "" {
			return errs.Newf(errs.ErrKindInvalidInput, "storage.dsn is required for the %s driver", s.Driver)
		}
	case DriverMinIO:
		if s.Endpoint == "" || s.Bucket == "" {
			return errs.New(errs.ErrKindInvalidInput, "storage.endpoint and storage.bucket are required for the minio driver")
		}
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown storage.driver %q", s.Driver)
	}
	return nil
}

// WriteYAML renders the effective configuration. Secrets are masked and
// durations are written in Go duration syntax so the output loads back.
func (c *Config) WriteYAML(w io.Writer) error {
	secret := ""
	if c.Storage.SecretKey != "" {
		secret = "********"
	}
	doc := map[string]any{
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"storage": map[string]any{
			"driver":     c.Storage.Driver,
			"format":     c.Storage.Format,
			"timeout":    c.Storage.Timeout.String(),
			"dir":        c.Storage.Dir,
			"dsn":        c.Storage.DSN,
			"endpoint":   c.Storage.Endpoint,
			"access_key": c.Storage.AccessKey,
			"secret_key": secret,
			"bucket":     c.Storage.Bucket,
			"prefix":     c.Storage.Prefix,
			"use_ssl":    c.Storage.UseSSL,
			"region":     c.Storage.Region,
		},
		"server": map[string]any{
			"addr":             c.Server.Addr,
			"read_timeout":     c.Server.ReadTimeout.String(),
			"write_timeout":    c.Server.WriteTimeout.String(),
			"shutdown_timeout": c.Server.ShutdownTimeout.String(),
		},
		"shell": map[string]any{
			"prompt":       c.Shell.Prompt,
			"history_file": c.Shell.HistoryFile,
		},
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
