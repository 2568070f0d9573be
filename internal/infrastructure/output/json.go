package output

import (
	"encoding/json"
	"io"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// FormatProfile writes the profile view as JSON.
func (f *JSONFormatter) FormatProfile(view dto.ProfileView) error {
	return f.encode(view)
}

// FormatCacheEntries writes the entries as a JSON array.
func (f *JSONFormatter) FormatCacheEntries(entries []dto.CacheEntryView) error {
	return f.encode(entries)
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
