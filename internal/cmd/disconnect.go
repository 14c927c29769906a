package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Unmount a host's directories and close its connection",
	Long: `Unmount every configured directory, then close the ssh master.

Each step is attempted even if an earlier one fails; failures are reported
as warnings.`,
	Args: cobra.NoArgs,
	RunE: runDisconnect,
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	cfg, err := e.loadSession()
	if err != nil {
		return err
	}

	report := e.orch.TearDown(cmd.Context(), cfg)
	if report.OK() {
		fmt.Printf("Disconnected from %s.\n", cfg.Host)
	} else {
		fmt.Printf("Disconnected from %s with warnings.\n", cfg.Host)
	}
	return nil
}
