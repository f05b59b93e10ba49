package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/netcmd/internal/errors"
	"github.com/harper/netcmd/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 80, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Server.Backlog)
	assert.Equal(t, 5000, cfg.Server.ReadTimeoutMS)
	assert.Equal(t, 5000, cfg.Server.SendTimeoutMS)
	assert.Equal(t, 0, cfg.Server.HandlerTimeoutSeconds)
	assert.Equal(t, 1024, cfg.Server.MaxRequestBytes)
	assert.True(t, cfg.Server.StatusIndicator)
	assert.Equal(t, index.DefaultTitle, cfg.Index.Title)
	assert.True(t, cfg.Management.Enabled)
	assert.Equal(t, 8082, cfg.Management.Port)
	assert.Equal(t, "/data/netcmd/requests.sqlite", cfg.Database.Path)
	assert.False(t, cfg.Log.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  backlog: 4
  handler_timeout_seconds: 30
index:
  title: "Netduino Api List"
management:
  enabled: false
database:
  path: ""
log:
  verbose: true
`)

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Backlog)
	assert.Equal(t, "Netduino Api List", cfg.Index.Title)
	assert.False(t, cfg.Management.Enabled)
	assert.Empty(t, cfg.Database.Path)
	assert.True(t, cfg.Log.Verbose)
	// untouched keys keep their defaults
	assert.Equal(t, 1024, cfg.Server.MaxRequestBytes)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("NETCMD_SERVER_PORT", "9090")
	t.Setenv("NETCMD_LOG_VERBOSE", "true")
	t.Setenv("NETCMD_DATABASE_PATH", "~/log.sqlite")
	t.Setenv("HOME", "/home/device")

	cfg, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "/home/device/log.sqlite", cfg.Database.Path)
}

func TestDotenvFile(t *testing.T) {
	const key = "NETCMD_INDEX_TITLE"
	_, preset := os.LookupEnv(key)
	require.False(t, preset, "%s must not be set for this test", key)
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(key+"=From Dotenv\n"), 0o600))

	cfg, err := load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "From Dotenv", cfg.Index.Title)
}

func TestMissingDotenvIsIgnored(t *testing.T) {
	_, err := load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"port too large", "server:\n  port: 70000\n", "server.port"},
		{"zero backlog", "server:\n  backlog: 0\n", "server.backlog"},
		{"negative handler timeout", "server:\n  handler_timeout_seconds: -1\n", "server.handler_timeout_seconds"},
		{"tiny request buffer", "server:\n  max_request_bytes: 4\n", "server.max_request_bytes"},
		{"zero read timeout", "server:\n  read_timeout_ms: 0\n", "server.read_timeout_ms"},
		{"bad management port", "management:\n  port: 0\n", "management.port"},
		{"management collides", "server:\n  host: 127.0.0.1\n  port: 8082\n", "management.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.yaml))
			require.Error(t, err)

			var cerr *errors.ConfigError
			require.True(t, stderrors.As(err, &cerr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, cerr.Field)
			assert.Equal(t, "config_error", errors.TypeOf(err))
		})
	}
}

func TestDisabledManagementSkipsPortCheck(t *testing.T) {
	_, err := load(writeConfig(t, "management:\n  enabled: false\n  port: 0\n"))
	assert.NoError(t, err)
}

func TestServerSettings(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                  "10.0.0.2",
			Port:                  80,
			Backlog:               1,
			ReadTimeoutMS:         250,
			SendTimeoutMS:         5000,
			HandlerTimeoutSeconds: 3,
			MaxRequestBytes:       512,
		},
		Index: IndexConfig{Title: "Device"},
	}

	s := cfg.ServerSettings()
	assert.Equal(t, "10.0.0.2:80", s.Addr())
	assert.Equal(t, 250*time.Millisecond, s.ReadTimeout)
	assert.Equal(t, 5*time.Second, s.SendTimeout)
	assert.Equal(t, 3*time.Second, s.HandlerTimeout)
	assert.Equal(t, 512, s.MaxRequestBytes)
	assert.Equal(t, "Device", s.IndexTitle)
}

func TestYAMLRoundTripsThroughLoad(t *testing.T) {
	cfg, err := load("")
	require.NoError(t, err)
	cfg.Server.Port = 8181
	cfg.Index.Title = "Shown"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "read_timeout_ms: 5000")

	reloaded, err := load(writeConfig(t, out))
	require.NoError(t, err)
	assert.Equal(t, 8181, reloaded.Server.Port)
	assert.Equal(t, "Shown", reloaded.Index.Title)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &raw))
	assert.Contains(t, raw, "management")
}
