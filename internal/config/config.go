// ABOUTME: Configuration loading for the command dispatcher
// ABOUTME: YAML file, .env file and NETCMD_* environment overrides layered over defaults

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/harper/netcmd/internal/errors"
	"github.com/harper/netcmd/internal/index"
	"github.com/harper/netcmd/internal/server"
	"github.com/harper/netcmd/internal/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. NETCMD_SERVER_PORT.
const EnvPrefix = "NETCMD"

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Index      IndexConfig      `mapstructure:"index" yaml:"index"`
	Management ManagementConfig `mapstructure:"management" yaml:"management"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host                  string `mapstructure:"host" yaml:"host"`
	Port                  int    `mapstructure:"port" yaml:"port"`
	Backlog               int    `mapstructure:"backlog" yaml:"backlog"`
	ReadTimeoutMS         int    `mapstructure:"read_timeout_ms" yaml:"read_timeout_ms"`
	SendTimeoutMS         int    `mapstructure:"send_timeout_ms" yaml:"send_timeout_ms"`
	HandlerTimeoutSeconds int    `mapstructure:"handler_timeout_seconds" yaml:"handler_timeout_seconds"`
	MaxRequestBytes       int    `mapstructure:"max_request_bytes" yaml:"max_request_bytes"`
	StatusIndicator       bool   `mapstructure:"status_indicator" yaml:"status_indicator"`
}

type IndexConfig struct {
	Title string `mapstructure:"title" yaml:"title"`
}

type ManagementConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Host    string `mapstructure:"host" yaml:"host"`
	Port    int    `mapstructure:"port" yaml:"port"`
}

type DatabaseConfig struct {
	// Path of the SQLite request log. Empty disables it.
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// minRequestBytes fits "GET /x HTTP/1.1".
const minRequestBytes = 16

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 80)
	v.SetDefault("server.backlog", server.DefaultBacklog)
	v.SetDefault("server.read_timeout_ms", int(server.DefaultReadTimeout/time.Millisecond))
	v.SetDefault("server.send_timeout_ms", 5000)
	v.SetDefault("server.handler_timeout_seconds", 0)
	v.SetDefault("server.max_request_bytes", server.DefaultMaxRequestBytes)
	v.SetDefault("server.status_indicator", true)
	v.SetDefault("index.title", index.DefaultTitle)
	v.SetDefault("management.enabled", true)
	v.SetDefault("management.host", "127.0.0.1")
	v.SetDefault("management.port", 8082)
	v.SetDefault("database.path", xdg.DefaultDatabasePath)
	v.SetDefault("log.verbose", false)
}

// Load reads path (skipped when empty), then a .env file in the working
// directory, then NETCMD_* variables. Later layers win.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path string, dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Database.Path = xdg.ExpandPath(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns a ConfigError naming the first bad key.
func (c *Config) Validate() error {
	s := c.Server
	switch {
	case s.Port < 0 || s.Port > 65535:
		return errors.NewConfigError("server.port", s.Port, "must be between 0 and 65535")
	case s.Backlog < 1:
		return errors.NewConfigError("server.backlog", s.Backlog, "must be at least 1")
	case s.ReadTimeoutMS <= 0:
		return errors.NewConfigError("server.read_timeout_ms", s.ReadTimeoutMS, "must be positive")
	case s.SendTimeoutMS <= 0:
		return errors.NewConfigError("server.send_timeout_ms", s.SendTimeoutMS, "must be positive")
	case s.HandlerTimeoutSeconds < 0:
		return errors.NewConfigError("server.handler_timeout_seconds", s.HandlerTimeoutSeconds, "must not be negative")
	case s.MaxRequestBytes < minRequestBytes:
		return errors.NewConfigError("server.max_request_bytes", s.MaxRequestBytes,
			fmt.Sprintf("must be at least %d", minRequestBytes))
	}

	if c.Management.Enabled && (c.Management.Port < 1 || c.Management.Port > 65535) {
		return errors.NewConfigError("management.port", c.Management.Port, "must be between 1 and 65535")
	}
	if c.Management.Enabled && c.Management.Port == s.Port && c.Management.Host == s.Host {
		return errors.NewConfigError("management.port", c.Management.Port, "collides with server.port")
	}
	return nil
}

// ServerSettings maps the file layout onto the dispatcher's settings.
func (c *Config) ServerSettings() server.Config {
	s := c.Server
	return server.Config{
		Host:            s.Host,
		Port:            s.Port,
		Backlog:         s.Backlog,
		ReadTimeout:     time.Duration(s.ReadTimeoutMS) * time.Millisecond,
		SendTimeout:     time.Duration(s.SendTimeoutMS) * time.Millisecond,
		HandlerTimeout:  time.Duration(s.HandlerTimeoutSeconds) * time.Second,
		MaxRequestBytes: s.MaxRequestBytes,
		IndexTitle:      c.Index.Title,
	}
}

// ManagementAddr is the host:port of the management API.
func (c *Config) ManagementAddr() string {
	return net.JoinHostPort(c.Management.Host, strconv.Itoa(c.Management.Port))
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(out), nil
}
