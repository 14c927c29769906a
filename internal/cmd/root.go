package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfgName string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "neurax",
	Short: "neurax - persistent ssh sessions with sshfs mounts",
	Long: `neurax keeps one multiplexed ssh connection per host and mounts the
remote directories you work in on top of it.

Connect (reuses a live connection, otherwise connects and mounts):
  neurax --name db1 connect
  neurax --config ./db1.toml connect

Disconnect (unmounts everything, then closes the connection):
  neurax --name db1 disconnect

Inspect:
  neurax --name db1 status
  neurax ps
  neurax prune`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "session config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&cfgName, "name", "", "name of a config in ~/.config/neurax/configs")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
