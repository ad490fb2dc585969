package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"storesync/internal/config"
	"storesync/internal/reconciler"
)

// newDeployCmd creates the command that applies the configuration.
func newDeployCmd() *cobra.Command {
	var (
		flagYes         bool
		flagDestructive bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply the store configuration to the platform",
		Long: `Diffs the store configuration against the remote state, shows the
pending operations and applies them after confirmation.

Deploys are additive: entities that exist remotely but are absent from
the configuration are left alone unless --destructive is given.`,
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
			printer := newPrinter(cmd.OutOrStdout())
			if err := printer.Plan(plan); err != nil {
				return err
			}
			if plan.InSync() {
				return nil
			}

			if !flagYes {
				ok, err := confirm("Apply these changes? [y/N] ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			var s *spinner.Spinner
			if !flagQuiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Suffix = " Deploying..."
				s.Start()
			}
			report := manager.Deploy(cmd.Context(), &cfg, reconciler.DeployOptions{
				Destructive: flagDestructive,
			})
			if s != nil {
				s.Stop()
			}

			if err := printer.Report(report); err != nil {
				return err
			}
			if report.Failed() {
				return errors.New("deploy finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&flagDestructive, "destructive", false, "delete remote entities absent from the configuration")
	return cmd
}

// confirm prompts on the terminal and accepts y/yes (case-insensitive).
func confirm(prompt string) (bool, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return false, err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
