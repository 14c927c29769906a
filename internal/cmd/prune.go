package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Clean up sessions whose connection has died",
	Long: `Clean up after sessions whose ssh master is no longer running.

For each dead session this command:
  - unmounts its recorded mount points (clearing stale sshfs mounts)
  - removes a leftover control socket
  - forgets the session`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	pruned, err := e.orch.Prune(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	if len(pruned) == 0 {
		fmt.Println("No sessions to remove.")
		return nil
	}
	for _, rec := range pruned {
		fmt.Printf("Removed session: %s (%d mount(s))\n", rec.Host, len(rec.Mounts))
	}
	fmt.Printf("Removed %d session(s).\n", len(pruned))
	return nil
}
