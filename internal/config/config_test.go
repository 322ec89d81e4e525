// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/config"
	"github.com/authcore/authcore/pkg/errutil"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.MetricsAddr)
	assert.Equal(t, "http://localhost:3000", cfg.Server.ResetBaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.MailEnabled())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "0.0.0.0:9090"
smtp:
  host: smtp.example.com
  from: auth@example.com
log:
  format: text
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.MailEnabled())
	// Untouched keys keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 465, cfg.SMTP.Port)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "0.0.0.0:9090"
`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	flags.String("redis.addr", "", "")
	require.NoError(t, flags.Parse([]string{
		"--server.addr=10.0.0.1:8000",
		"--redis.addr=redis.internal:6379",
	}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:8000", cfg.Server.Addr)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*config.Config) {},
		},
		{
			name:    "missing server addr",
			mutate:  func(cfg *config.Config) { cfg.Server.Addr = "" },
			wantErr: "server.addr is required",
		},
		{
			name:    "missing postgres url",
			mutate:  func(cfg *config.Config) { cfg.Postgres.URL = "" },
			wantErr: "postgres.url is required",
		},
		{
			name:    "missing redis addr",
			mutate:  func(cfg *config.Config) { cfg.Redis.Addr = "" },
			wantErr: "redis.addr is required",
		},
		{
			name:    "missing reset base url",
			mutate:  func(cfg *config.Config) { cfg.Server.ResetBaseURL = "" },
			wantErr: "server.reset_base_url is required",
		},
		{
			name:    "bad log format",
			mutate:  func(cfg *config.Config) { cfg.Log.Format = "xml" },
			wantErr: "log.format must be",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *config.Config) { cfg.Log.Level = "verbose" },
			wantErr: "log.level must be",
		},
		{
			name: "smtp host without from",
			mutate: func(cfg *config.Config) {
				cfg.SMTP.Host = "smtp.example.com"
				cfg.SMTP.From = ""
			},
			wantErr: "smtp.from is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
