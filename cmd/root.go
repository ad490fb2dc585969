package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storesync/internal/config"
	"storesync/internal/formatting"
	"storesync/pkg/logging"
)

// Exit codes for CLI commands. These follow common conventions and are
// meant for scripting: `storesync diff` in CI distinguishes "drift
// detected" from "something broke".
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates the configuration file is invalid.
	ExitCodeConfigError = 2
	// ExitCodeChangesPending indicates a diff found pending changes.
	ExitCodeChangesPending = 4
)

// errChangesPending is the sentinel a diff returns when drift exists.
var errChangesPending = errors.New("changes pending")

var (
	flagConfig   string
	flagEndpoint string
	flagToken    string
	flagLogLevel string
	flagFormat   string
	flagQuiet    bool
)

// rootCmd is the entry point when storesync is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "storesync",
	Short: "Sync declarative store configuration to your commerce platform",
	Long: `storesync reconciles a declarative YAML description of your store
(channels, warehouses, attributes, product types, categories, products)
against the commerce platform's GraphQL API. It diffs before it writes,
batches bulk work, and backs off when the API rate limits.`,
	// SilenceUsage prevents cobra from printing usage on errors the
	// application already reports. Errors are printed in Execute so the
	// changes-pending sentinel stays silent.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := formatting.ParseFormat(flagFormat); err != nil {
			return err
		}
		logging.InitForCLI(logging.ParseLevel(flagLogLevel), cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and exits the process with a semantic exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "storesync version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(err))
	}
}

// reportError prints err (unless it is the silent drift sentinel) and
// returns the exit code for it.
func reportError(err error) int {
	if errors.Is(err, errChangesPending) {
		return ExitCodeChangesPending
	}
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(os.Stderr, cfgErr.DetailedError())
		return ExitCodeConfigError
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultConfigFile, "path to the store configuration file")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "GraphQL endpoint URL (default $"+config.DefaultEndpointEnv+")")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API token (default $"+config.DefaultTokenEnv+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", string(formatting.FormatTable), "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress decorative output")

	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
