// Package config loads the server configuration with viper.
// Defaults alone give a working server on localhost:4221, a YAML file and
// CLI flags override them.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete flatserv configuration.
type Config struct {
	Listen ListenConfig `mapstructure:"listen"`
	Engine EngineConfig `mapstructure:"engine"`
	Files  FilesConfig  `mapstructure:"files"`
	Routes RoutesConfig `mapstructure:"routes"`
	Gzip   GzipConfig   `mapstructure:"gzip"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Log    LogConfig    `mapstructure:"log"`
}

type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type EngineConfig struct {
	Workers    int `mapstructure:"workers"`
	Queue      int `mapstructure:"queue"`
	ReadBuffer int `mapstructure:"read_buffer"`
}

// FilesConfig scopes the /files/ routes. An empty root disables them.
type FilesConfig struct {
	Root string `mapstructure:"root"`
}

// RoutesConfig points at an optional TOML route table, see routes.go.
type RoutesConfig struct {
	File string `mapstructure:"file"`
}

type GzipConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AuditConfig enables the sqlite request log when a path is set.
type AuditConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen.host", "127.0.0.1")
	v.SetDefault("listen.port", 4221)
	v.SetDefault("engine.workers", 20)
	v.SetDefault("engine.queue", 64)
	v.SetDefault("engine.read_buffer", 1024)
	v.SetDefault("files.root", "")
	v.SetDefault("routes.file", "")
	v.SetDefault("gzip.enabled", false)
	v.SetDefault("audit.path", "")
	v.SetDefault("log.level", "info")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, _ := Load("")
	return cfg
}

// Load reads the config file at path, "" means defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port the engine binds.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Listen.Host, strconv.Itoa(c.Listen.Port))
}

// LevelFromString converts a config string to a slog.Level,
// info for anything unrecognized.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
