package cmd

import (
	"fmt"
	"io"
	"os"

	"storesync/internal/config"
	"storesync/internal/formatting"
	"storesync/internal/graphql"
	"storesync/internal/reconciler"
	"storesync/internal/repository"
	"storesync/internal/resilience"
)

// resolveEndpoint returns the GraphQL endpoint from the flag or the
// environment.
func resolveEndpoint() (string, error) {
	if flagEndpoint != "" {
		return flagEndpoint, nil
	}
	if v := os.Getenv(config.DefaultEndpointEnv); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no endpoint configured: pass --endpoint or set $%s", config.DefaultEndpointEnv)
}

// resolveToken returns the API token from the flag or the environment.
func resolveToken() (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if v := os.Getenv(config.DefaultTokenEnv); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no API token configured: pass --token or set $%s", config.DefaultTokenEnv)
}

// newManager wires the GraphQL client, the resilience context and the
// repositories into a reconciliation manager. One manager serves one
// command invocation.
func newManager() (*reconciler.Manager, error) {
	endpoint, err := resolveEndpoint()
	if err != nil {
		return nil, err
	}
	token, err := resolveToken()
	if err != nil {
		return nil, err
	}

	client := graphql.NewClient(endpoint, token)
	rc := resilience.NewContext(resilience.Options{})
	return reconciler.NewManager(reconciler.FromSet(repository.NewSet(client, rc)), rc), nil
}

// newPrinter builds the output printer from the global flags.
func newPrinter(out io.Writer) *formatting.Printer {
	format, _ := formatting.ParseFormat(flagFormat)
	return formatting.NewPrinter(out, formatting.Options{
		Format: format,
		Color:  format == formatting.FormatTable && !flagQuiet,
		Quiet:  flagQuiet,
	})
}
