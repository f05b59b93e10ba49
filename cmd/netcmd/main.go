// ABOUTME: Entry point for the netcmd device command server
// ABOUTME: Subcommands are registered on rootCmd from their own files

package main

import (
	"os"

	"github.com/harper/netcmd/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
