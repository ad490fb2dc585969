// Package formatting renders plans, deploy reports and resilience metrics
// for the terminal, with table, JSON and YAML output formats.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: table, json, yaml)", s)
	}
}

// Options configures a Printer.
type Options struct {
	Format OutputFormat
	Color  bool
	// Quiet suppresses decorative output; tables and errors still print.
	Quiet bool
}

// Printer renders command results to one writer.
type Printer struct {
	out  io.Writer
	opts Options
}

// NewPrinter builds a Printer. A zero Format means table output.
func NewPrinter(out io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	return &Printer{out: out, opts: opts}
}

func (p *Printer) printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, string(b))
	return err
}

func (p *Printer) printYAML(v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.out.Write(b)
	return err
}
