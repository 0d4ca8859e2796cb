// Package config loads service configuration from defaults, an optional YAML
// file, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment overrides, e.g.
// STATIONFIT_SERVER__ADDRESS=:9090 sets server.address.
const envPrefix = "STATIONFIT_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	SQLite    SQLiteConfig    `koanf:"sqlite"`
	Session   SessionConfig   `koanf:"session"`
	Log       LogConfig       `koanf:"log"`
	Recommend RecommendConfig `koanf:"recommend"`
}

type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       int           `koanf:"rate_limit"`
}

type DataConfig struct {
	QuestionsPath string `koanf:"questions_path"`
	StationsPath  string `koanf:"stations_path"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type SessionConfig struct {
	// Backend is "memory" or "badger".
	Backend   string `koanf:"backend"`
	BadgerDir string `koanf:"badger_dir"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type RecommendConfig struct {
	DefaultK int `koanf:"default_k"`
	MaxK     int `koanf:"max_k"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       120,
		},
		Data: DataConfig{
			QuestionsPath: "data/questions.json",
			StationsPath:  "data/stations.json",
		},
		SQLite: SQLiteConfig{
			Path: "stationfit.db",
		},
		Session: SessionConfig{
			Backend:   "memory",
			BadgerDir: "data/sessions",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			DefaultK: 3,
			MaxK:     10,
		},
	}
}

// Load builds the configuration. path may be empty or point to a missing
// file; in both cases defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// STATIONFIT_SERVER__ADDRESS -> server.address
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	switch c.Session.Backend {
	case "memory", "badger":
	default:
		return fmt.Errorf("session.backend must be memory or badger, got %q", c.Session.Backend)
	}
	if c.Session.Backend == "badger" && c.Session.BadgerDir == "" {
		return fmt.Errorf("session.badger_dir required for badger backend")
	}
	if c.Recommend.DefaultK <= 0 {
		return fmt.Errorf("recommend.default_k must be positive, got %d", c.Recommend.DefaultK)
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k must be >= default_k")
	}
	return nil
}
