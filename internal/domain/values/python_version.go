package values

import (
	"fmt"
	"regexp"
	"strings"
)

var pythonVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)

// PythonVersion is an interpreter request understood by uv, e.g. "3.12".
type PythonVersion struct {
	value string
}

// NewPythonVersion validates an interpreter version of the form X.Y or X.Y.Z.
func NewPythonVersion(raw string) (PythonVersion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PythonVersion{}, fmt.Errorf("python version cannot be empty")
	}
	if !pythonVersionPattern.MatchString(raw) {
		return PythonVersion{}, fmt.Errorf("invalid python version %q: expected X.Y", raw)
	}
	return PythonVersion{value: raw}, nil
}

// MustNewPythonVersion creates a PythonVersion or panics
func MustNewPythonVersion(raw string) PythonVersion {
	v, err := NewPythonVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v PythonVersion) String() string {
	return v.value
}

// IsEmpty returns true if this is the zero value
func (v PythonVersion) IsEmpty() bool {
	return v.value == ""
}

// Equals checks if two python versions are equal
func (v PythonVersion) Equals(other PythonVersion) bool {
	return v.value == other.value
}
