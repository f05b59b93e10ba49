// ABOUTME: XDG Base Directory support for the config file and request log database
// ABOUTME: Resolves config and data directories with a HOME fallback

package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/netcmd/internal/errors"
)

const appName = "netcmd"

// ConfigHome returns ~/.config/netcmd or respects XDG_CONFIG_HOME.
func ConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}
	return filepath.Join(getHome(), ".config", appName)
}

// DataHome returns ~/.local/share/netcmd or respects XDG_DATA_HOME.
func DataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appName)
	}
	return filepath.Join(getHome(), ".local", "share", appName)
}

// DefaultConfigFile is where the CLI looks when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(ConfigHome(), "config.yaml")
}

// DefaultDatabasePath is the request log location before expansion.
const DefaultDatabasePath = "$XDG_DATA_HOME/netcmd/requests.sqlite"

// ExpandPath expands a leading ~/, $XDG_DATA_HOME or $XDG_CONFIG_HOME.
// Anything else passes through unchanged.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(getHome(), path[2:])
	}

	// strings.HasPrefix, not filepath.HasPrefix
	if strings.HasPrefix(path, "$XDG_DATA_HOME") {
		return strings.Replace(path, "$XDG_DATA_HOME", baseDir("XDG_DATA_HOME", ".local", "share"), 1)
	}
	if strings.HasPrefix(path, "$XDG_CONFIG_HOME") {
		return strings.Replace(path, "$XDG_CONFIG_HOME", baseDir("XDG_CONFIG_HOME", ".config"), 1)
	}
	return path
}

// EnsureParent creates the directory holding path.
func EnsureParent(variable, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.NewStorageDirError(variable, dir, err)
	}
	return nil
}

func baseDir(variable string, fallback ...string) string {
	if v := os.Getenv(variable); v != "" {
		return v
	}
	return filepath.Join(append([]string{getHome()}, fallback...)...)
}

// getHome returns HOME, then the working directory, then ".".
func getHome() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}
