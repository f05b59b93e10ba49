package main

import (
	"os"

	"github.com/harper/netcmd/internal/config"
	"github.com/harper/netcmd/internal/logger"
	"github.com/harper/netcmd/internal/xdg"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "netcmd",
	Short: "Single-port command server for small devices",
	Long: `netcmd answers "GET /<route>/<arg>/... HTTP/1.1" requests on one TCP port.
Each route runs a device handler and the raw result is written back before the
connection closes. Unknown routes get an HTML page listing every endpoint.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: $XDG_CONFIG_HOME/netcmd/config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig resolves the config file, loads it and applies log settings.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(xdg.DefaultConfigFile()); err == nil {
			path = xdg.DefaultConfigFile()
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	logger.SetVerbose(cfg.Log.Verbose)

	if path != "" {
		logger.Debug("loaded config from %s", path)
	}
	return cfg, nil
}
