package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/template"

	"storesync/pkg/logging"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads the desired-state document from path.
//
// The file is rendered through text/template with the sprig function map
// before parsing, so configurations can pull secrets and per-environment
// values from the process environment:
//
//	channels:
//	  - slug: default
//	    currencyCode: {{ env "STORE_CURRENCY" | default "USD" }}
//
// Parsing is strict: unknown fields are rejected rather than ignored, since
// a typoed field name would otherwise silently drop a declared value.
func LoadConfig(path string) (StoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StoreConfig{}, &ConfigurationError{
				FilePath:  path,
				ErrorType: "io",
				Message:   fmt.Sprintf("configuration file not found: %s", path),
				Suggestions: []string{
					"run 'storesync pull' to bootstrap a configuration from the remote store",
					"pass --config to point at an existing configuration file",
				},
			}
		}
		return StoreConfig{}, fmt.Errorf("reading configuration from %s: %w", path, err)
	}

	rendered, err := renderTemplate(path, data)
	if err != nil {
		return StoreConfig{}, &ConfigurationError{
			FilePath:  path,
			ErrorType: "template",
			Message:   err.Error(),
		}
	}

	config := GetDefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(rendered))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return StoreConfig{}, &ConfigurationError{
			FilePath:  path,
			ErrorType: "parse",
			Message:   fmt.Sprintf("invalid YAML: %v", err),
			Suggestions: []string{
				"check indentation and field names against the documented schema",
			},
		}
	}

	if err := Validate(&config); err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.FilePath = path
		}
		return StoreConfig{}, err
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s (%d channels, %d warehouses, %d attributes, %d product types, %d categories, %d products)",
		path, len(config.Channels), len(config.Warehouses), len(config.Attributes),
		len(config.ProductTypes), len(config.Categories), len(config.Products))
	return config, nil
}

// renderTemplate runs the raw file through text/template with sprig's
// function map. missingkey=error surfaces typoed template variables at load
// time instead of emitting "<no value>" into the YAML.
func renderTemplate(name string, data []byte) ([]byte, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	return buf.Bytes(), nil
}
