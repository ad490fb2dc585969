package config

import (
	"fmt"
	"os"
	"path/filepath"

	"storesync/pkg/logging"

	"sigs.k8s.io/yaml"
)

// WriteConfig serializes a desired-state document to path, creating parent
// directories as needed. Used by `storesync pull` to bootstrap a local
// configuration from the remote store's current state.
//
// Serialization goes through sigs.k8s.io/yaml so the JSON tags drive the
// output, keeping the written file identical in shape to what the API
// snapshots look like in diff output.
func WriteConfig(path string, config StoreConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing configuration to %s: %w", path, err)
	}

	logging.Info("ConfigStorage", "Wrote configuration to %s", path)
	return nil
}
