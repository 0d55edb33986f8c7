package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format string
}

// NewFormatter creates a formatter for format, "json" when empty.
func NewFormatter(writer io.Writer, format string) (*Formatter, error) {
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Formatter{writer: writer, format: format}, nil
}

// FormatTable writes a whole registry.
func (f *Formatter) FormatTable(table TableDTO) error {
	return f.encode(table)
}

// FormatBunches writes a list of bunches with their scopes.
func (f *Formatter) FormatBunches(bunches []BunchDTO) error {
	return f.encode(bunches)
}

// FormatObjects writes structural forms, e.g. query results.
func (f *Formatter) FormatObjects(objects any) error {
	return f.encode(objects)
}

// FormatErrors writes recorded errors.
func (f *Formatter) FormatErrors(errs []ErrorDTO) error {
	if errs == nil {
		errs = []ErrorDTO{}
	}
	return f.encode(errs)
}

func (f *Formatter) encode(v any) error {
	if f.format == FormatYAML {
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
