package cmd

import (
	"github.com/spf13/cobra"

	"storesync/internal/config"
)

// newDiffCmd creates the command that shows pending changes without
// applying anything.
func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show what a deploy would change",
		Long: `Loads the store configuration, fetches the current remote state and
prints the pending operations without applying any of them.

Exits 0 when everything is in sync and 4 when changes are pending, so
CI pipelines can gate on drift.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flagConfig)
			if err != nil {
				return err
			}

			manager, err := newManager()
			if err != nil {
				return err
			}

			plan, err := manager.Plan(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			if err := newPrinter(cmd.OutOrStdout()).Plan(plan); err != nil {
				return err
			}
			if !plan.InSync() {
				return errChangesPending
			}
			return nil
		},
	}
}
