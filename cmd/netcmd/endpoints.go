package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harper/netcmd/internal/index"
	"github.com/spf13/cobra"
)

var endpointsHTML bool

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the endpoints the server would register",
	RunE:  runEndpoints,
}

func init() {
	endpointsCmd.Flags().BoolVar(&endpointsHTML, "html", false, "Print the index page served for unknown routes")
	rootCmd.AddCommand(endpointsCmd)
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dev, err := newDevice()
	if err != nil {
		return err
	}
	defer dev.close()

	out := cmd.OutOrStdout()
	if endpointsHTML {
		fmt.Fprintln(out, index.Render(cfg.Index.Title, dev.registry.List()))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tMODE\tDESCRIPTION")
	for _, ep := range dev.registry.List() {
		mode := "text"
		if ep.ManualSocket {
			mode = "stream"
		}
		fmt.Fprintf(w, "/%s\t%s\t%s\n", ep.Name, mode, ep.Description)
	}
	return w.Flush()
}
