// Package config loads xlib settings from a YAML file and XLIB_* environment
// variables. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"xlib-go/internal/fn"
	"xlib-go/pkg/appdir"
	"xlib-go/pkg/kvstore"
	"xlib-go/pkg/log"
	"xlib-go/pkg/transform"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	ConfigFile    string `mapstructure:"config_file"`
	LogLevel      string `mapstructure:"log_level"`
	LogDB         string `mapstructure:"log_db"` // SQLite log sink; empty logs to stderr only
	StorePath     string `mapstructure:"store_path"`
	Compression   string `mapstructure:"compression"`
	Passphrase    string `mapstructure:"snapshot_passphrase"`
	APIListenAddr string `mapstructure:"api_listen_address"`
	Presize       int    `mapstructure:"presize"`
	MaxBuckets    uint32 `mapstructure:"max_buckets"`
	Hash          string `mapstructure:"hash"`

	ManagementSocket   string `mapstructure:"management_socket"` // empty disables the control socket
	ManagementPassword string `mapstructure:"management_password"`
}

func DefaultConfig() *Config {
	return &Config{
		ConfigFile:    "xlib.yaml",
		LogLevel:      "info",
		StorePath:     "kv.db",
		Compression:   transform.Zstd,
		APIListenAddr: ":7780",
		Hash:          "x31",

		ManagementSocket: "xlib.sock",
	}
}

func defaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("config_file", cfg.ConfigFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_db", cfg.LogDB)
	v.SetDefault("store_path", cfg.StorePath)
	v.SetDefault("compression", cfg.Compression)
	v.SetDefault("snapshot_passphrase", cfg.Passphrase)
	v.SetDefault("api_listen_address", cfg.APIListenAddr)
	v.SetDefault("presize", cfg.Presize)
	v.SetDefault("max_buckets", cfg.MaxBuckets)
	v.SetDefault("hash", cfg.Hash)
	v.SetDefault("management_socket", cfg.ManagementSocket)
	v.SetDefault("management_password", cfg.ManagementPassword)
}

// LoadConfig reads file when given, otherwise looks for xlib.yaml in the
// working directory, the application directory and /etc/xlib-go. A missing
// default file is not an error; a missing explicit file is. Environment
// variables (XLIB_STORE_PATH, ...) override file values.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	defaults(v, cfg)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("xlib")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(appdir.AppDir())
		v.AddConfigPath("/etc/xlib-go/")
	}
	v.SetEnvPrefix("XLIB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", fn.Or(file, "xlib.yaml"), err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.ConfigFile = used
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	if _, err := kvstore.HashByName(c.Hash); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := transform.FromName(c.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Presize < 0 {
		return fmt.Errorf("config: presize must not be negative, got %d", c.Presize)
	}
	return nil
}

// StoreFile returns StorePath, placing a relative path in the application
// directory.
func (c *Config) StoreFile() string {
	if c.StorePath == "" || filepath.IsAbs(c.StorePath) {
		return c.StorePath
	}
	return appdir.Path(c.StorePath)
}

// SocketFile returns ManagementSocket, placing a relative path in the
// application directory.
func (c *Config) SocketFile() string {
	if c.ManagementSocket == "" || filepath.IsAbs(c.ManagementSocket) {
		return c.ManagementSocket
	}
	return appdir.Path(c.ManagementSocket)
}

// Store returns the kvstore settings.
func (c *Config) Store() kvstore.Config {
	return kvstore.Config{
		Hash:        c.Hash,
		Presize:     c.Presize,
		MaxBuckets:  c.MaxBuckets,
		Compression: c.Compression,
		Passphrase:  c.Passphrase,
	}
}
