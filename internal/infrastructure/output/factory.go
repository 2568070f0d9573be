// Package output renders command results and user-facing status lines.
package output

import (
	"fmt"
	"io"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
)

// FormatterFactory implements ports.OutputFormatterFactory.
type FormatterFactory struct {
	// Color enables colored table output.
	Color bool
}

var _ ports.OutputFormatterFactory = (*FormatterFactory)(nil)

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory(color bool) *FormatterFactory {
	return &FormatterFactory{Color: color}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(format string, writer io.Writer) (ports.OutputFormatter, error) {
	switch format {
	case "table":
		t := NewTableFormatter(writer)
		t.EnableColor = f.Color
		return t, nil
	case "json":
		return NewJSONFormatter(writer, true), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml"}
}
