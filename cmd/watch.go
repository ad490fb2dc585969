package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storesync/internal/config"
	"storesync/internal/reconciler"
	"storesync/internal/watcher"
	"storesync/pkg/logging"
)

// newWatchCmd creates the command that redeploys on configuration changes.
func newWatchCmd() *cobra.Command {
	var (
		flagDestructive bool
		flagDebounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Redeploy whenever the configuration file changes",
		Long: `Watches the configuration file and runs a deploy each time it settles
after a change. Runs until interrupted. Deploys are unconditional (no
confirmation prompt), so treat this as a development loop, not a
production controller.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager()
			if err != nil {
				return err
			}
			printer := newPrinter(cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			deploy := func() {
				cfg, err := config.LoadConfig(flagConfig)
				if err != nil {
					// A half-saved file fails to parse; the next settled
					// write gets another chance.
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return
				}
				report := manager.Deploy(ctx, &cfg, reconciler.DeployOptions{Destructive: flagDestructive})
				if err := printer.Report(report); err != nil {
					logging.Error("watch", err, "rendering deploy report failed")
				}
				manager.Tracker().Reset()
			}

			w := watcher.New(flagConfig, flagDebounce)
			events := make(chan watcher.Event, 1)
			if err := w.Start(ctx, events); err != nil {
				return err
			}
			defer w.Stop()

			if !flagQuiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", flagConfig)
			}
			deploy()

			for {
				select {
				case <-ctx.Done():
					return nil
				case event := <-events:
					if !flagQuiet {
						fmt.Fprintf(cmd.OutOrStdout(), "Change detected at %s\n", event.Timestamp.Format(time.TimeOnly))
					}
					deploy()
				}
			}
		},
	}

	cmd.Flags().BoolVar(&flagDestructive, "destructive", false, "delete remote entities absent from the configuration")
	cmd.Flags().DurationVar(&flagDebounce, "debounce", watcher.DefaultDebounceInterval, "how long the file must stay quiet before a redeploy")
	return cmd
}
