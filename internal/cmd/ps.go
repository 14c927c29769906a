package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List sessions brought up by neurax",
	Long:  `List every recorded session with its connection state and mount count.`,
	Args:  cobra.NoArgs,
	RunE:  runPs,
}

func init() {
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	records, err := e.store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "HOST\tID\tSTATE\tMOUNTS\tSTARTED")
	_, _ = fmt.Fprintln(w, "----\t--\t-----\t------\t-------")

	for _, rec := range records {
		state := "dead"
		if e.conn.IsAlive(cmd.Context(), rec.Host) {
			state = "alive"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			rec.Host,
			shortID(rec.ID),
			state,
			len(rec.Mounts),
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}

	_ = w.Flush()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
