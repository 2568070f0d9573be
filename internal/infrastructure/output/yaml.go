package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/rodoo-dev/rodoo/internal/application/dto"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatProfile writes the profile as an ordered mapping of field to
// value and source.
func (f *YAMLFormatter) FormatProfile(view dto.ProfileView) error {
	fields := make(yaml.MapSlice, 0, len(view.Fields))
	for _, field := range view.Fields {
		fields = append(fields, yaml.MapItem{
			Key: field.Key,
			Value: yaml.MapSlice{
				{Key: "value", Value: field.Value},
				{Key: "source", Value: field.Source},
			},
		})
	}

	doc := yaml.MapSlice{{Key: "name", Value: view.Name}}
	if view.File != "" {
		doc = append(doc, yaml.MapItem{Key: "file", Value: view.File})
	}
	doc = append(doc,
		yaml.MapItem{Key: "key", Value: view.Key},
		yaml.MapItem{Key: "fields", Value: fields},
	)
	return f.encode(doc)
}

// FormatCacheEntries writes the entries as a YAML sequence.
func (f *YAMLFormatter) FormatCacheEntries(entries []dto.CacheEntryView) error {
	return f.encode(entries)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
