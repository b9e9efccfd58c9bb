// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncoform/survival-mcp/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survival.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.SchemaPath)

	// No model configured yet.
	require.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
model_path: /models/survival.yaml
http:
  addr: 127.0.0.1:9090
log:
  level: debug
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/models/survival.yaml", cfg.ModelPath)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = config.LoadFromFile(writeConfig(t, "http: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *config.Config)
		errContains string
	}{
		{name: "missing model", mutate: func(c *config.Config) { c.ModelPath = "" }, errContains: "model_path"},
		{name: "empty addr", mutate: func(c *config.Config) { c.HTTP.Addr = "" }, errContains: "http.addr"},
		{name: "negative timeout", mutate: func(c *config.Config) { c.HTTP.ShutdownTimeout = -time.Second }, errContains: "shutdown_timeout"},
		{name: "bad level", mutate: func(c *config.Config) { c.Log.Level = "loud" }, errContains: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.ModelPath = "model.yaml"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadFromFile_Example(t *testing.T) {
	cfg, err := config.LoadFromFile(filepath.Join("..", "..", "configs", "survival.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "configs/model.example.yaml", cfg.ModelPath)
	assert.Empty(t, cfg.SchemaPath)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
}
