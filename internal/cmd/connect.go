package cmd

import (
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a host, mount its directories and open a shell",
	Long: `Open a shell on the configured host.

If no live connection exists, a background ssh master is started and every
configured directory is mounted with sshfs over it before the shell opens.
If the connection is already alive the shell simply reuses it.

Examples:
  neurax --name db1 connect
  neurax --config ~/work/db1.toml connect`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	cfg, err := e.loadSession()
	if err != nil {
		return err
	}

	return e.orch.BringUp(cmd.Context(), cfg)
}
