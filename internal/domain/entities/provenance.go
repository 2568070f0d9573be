package entities

// ValueSource records which configuration layer supplied a resolved value.
type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceFile    ValueSource = "file"
	SourceCLI     ValueSource = "cli"
)

// Provenance maps a profile field name (as spelled in the profile file) to
// the layer that supplied its value.
type Provenance map[string]ValueSource

// Of returns the source of a field, defaulting to SourceDefault.
func (p Provenance) Of(field string) ValueSource {
	if src, ok := p[field]; ok {
		return src
	}
	return SourceDefault
}
