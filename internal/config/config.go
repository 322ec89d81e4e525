// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package config loads service configuration from defaults, an
// optional YAML file, and command-line flags, in that precedence
// order.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full service configuration tree.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Postgres PostgresConfig `koanf:"postgres"`
	Redis    RedisConfig    `koanf:"redis"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP API and observability listeners.
type ServerConfig struct {
	Addr         string `koanf:"addr"`
	MetricsAddr  string `koanf:"metrics_addr"`
	ResetBaseURL string `koanf:"reset_base_url"`
	CookieSecure bool   `koanf:"cookie_secure"`
}

// PostgresConfig configures the user database connection.
type PostgresConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig configures the session and reset-token store.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SMTPConfig configures outbound mail. An empty Host disables delivery
// and recovery links are only logged.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			MetricsAddr:  "127.0.0.1:9100",
			ResetBaseURL: "http://localhost:3000",
		},
		Postgres: PostgresConfig{
			URL: "postgres://localhost:5432/authcore?sslmode=disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		SMTP: SMTPConfig{
			Port: 465,
			From: "no-reply@localhost",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
	}
}

// Load layers defaults, the YAML file at path (when non-empty), and
// the given flag set. Flags use dotted names matching the koanf tree,
// e.g. --server.addr.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "load defaults").
			Wrap(err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "stat config file").
				With("path", path).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "parse config file").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "apply flags").
				Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "unmarshal").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	if cfg.Postgres.URL == "" {
		return invalid("postgres.url is required")
	}
	if cfg.Redis.Addr == "" {
		return invalid("redis.addr is required")
	}
	if cfg.Server.ResetBaseURL == "" {
		return invalid("server.reset_base_url is required")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return invalid(fmt.Sprintf("log.format must be 'json' or 'text', got %q", cfg.Log.Format))
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level))
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return invalid("smtp.from is required when smtp.host is set")
	}
	return nil
}

// MailEnabled reports whether an SMTP transport is configured.
func (cfg *Config) MailEnabled() bool {
	return cfg.SMTP.Host != ""
}

func invalid(msg string) error {
	return oops.Code("CONFIG_INVALID").Errorf("%s", msg)
}
