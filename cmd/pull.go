package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storesync/internal/config"
)

// newPullCmd creates the command that snapshots the remote state into a
// local configuration file.
func newPullCmd() *cobra.Command {
	var flagStdout bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write the current remote state as a configuration file",
		Long: `Fetches the full remote state and writes it to the configuration file
in the declarative YAML shape, as a starting point for managing an
existing store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}

			cfg, err := manager.Pull(cmd.Context())
			if err != nil {
				return err
			}

			if flagStdout {
				return newPrinter(cmd.OutOrStdout()).Config(cfg)
			}
			if err := config.WriteConfig(flagConfig, *cfg); err != nil {
				return err
			}
			if !flagQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flagConfig)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagStdout, "stdout", false, "print the configuration instead of writing the file")
	return cmd
}
