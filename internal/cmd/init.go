package cmd

import (
	"fmt"

	"github.com/neurax-dev/neurax/internal/config"
	"github.com/spf13/cobra"
)

var (
	initHost      string
	initMountRoot string
	initForce     bool
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Write a starter session config",
	Long: `Write a starter session config to ~/.config/neurax/configs/<name>.toml.

Examples:
  neurax init db1 --host db1.example.com
  neurax init gpu --host gpu --mount-root ~/remote/gpu`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initHost, "host", "", "ssh destination (default: <name>)")
	initCmd.Flags().StringVar(&initMountRoot, "mount-root", "", "directory holding the mount points (default: ~/remote/<host>)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]
	host := initHost
	if host == "" {
		host = name
	}

	path, err := config.NamedPath(name)
	if err != nil {
		return err
	}

	if err := config.WriteTemplate(path, host, initMountRoot, initForce); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Connect with: neurax --name %s connect\n", name)
	return nil
}
