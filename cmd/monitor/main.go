// ABOUTME: Entry point for the netcmd terminal monitor
// ABOUTME: Follows the management API event stream in a bubbletea UI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/netcmd/internal/monitor"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	streamURL string
	themeName string
)

var rootCmd = &cobra.Command{
	Use:     "netcmd-monitor",
	Short:   "Watch requests hitting a netcmd device live",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := monitor.NewModel(monitor.NewEventClient(streamURL), monitor.GetTheme(themeName))
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&streamURL, "url", "ws://127.0.0.1:8082/api/events", "Event stream URL of the management API")
	rootCmd.Flags().StringVar(&themeName, "theme", "default", "Color theme (default, light)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
