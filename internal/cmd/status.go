package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/neurax-dev/neurax/internal/mount"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection and mount state for a host",
	Long:  `Show whether the configured host's connection is alive and what is mounted at each mount point.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	cfg, err := e.loadSession()
	if err != nil {
		return err
	}

	connection := "down"
	if e.conn.IsAlive(cmd.Context(), cfg.Host) {
		connection = "alive"
	}

	fmt.Printf("Host:       %s\n", cfg.Host)
	fmt.Printf("Config:     %s\n", cfg.Path)
	fmt.Printf("Socket:     %s\n", e.conn.SocketPath(cfg.Host))
	fmt.Printf("Connection: %s\n", connection)

	if len(cfg.Dirs) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tREMOTE\tMOUNT POINT\tSTATE")
	_, _ = fmt.Fprintln(w, "----\t------\t-----------\t-----")
	for _, m := range cfg.Dirs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Name,
			m.Source(cfg.Host),
			m.LocalPath,
			mount.Inspect(m.LocalPath),
		)
	}
	_ = w.Flush()
	return nil
}
