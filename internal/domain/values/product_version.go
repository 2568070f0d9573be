package values

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ProductVersion is a canonical Odoo release line such as "17.0" or "18.0".
// The canonical form is "major.minor", with the patch appended only when it
// is non-zero. It doubles as the git branch name of the release.
type ProductVersion struct {
	value string
	major uint64
	minor uint64
}

// NewProductVersion parses a product version from its string form.
// Numeric shorthands ("18", "18.0") are accepted; pre-release and build
// metadata are rejected.
func NewProductVersion(raw string) (ProductVersion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProductVersion{}, fmt.Errorf("version cannot be empty")
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return ProductVersion{}, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return ProductVersion{}, fmt.Errorf("invalid version %q: pre-release and metadata are not supported", raw)
	}

	value := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	if v.Patch() != 0 {
		value = fmt.Sprintf("%s.%d", value, v.Patch())
	}

	return ProductVersion{value: value, major: v.Major(), minor: v.Minor()}, nil
}

// MustNewProductVersion creates a ProductVersion or panics
func MustNewProductVersion(raw string) ProductVersion {
	v, err := NewProductVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// ProductVersionFromFloat converts a TOML number (17.0, 18) to a version.
func ProductVersionFromFloat(f float64) (ProductVersion, error) {
	raw := strconv.FormatFloat(f, 'f', -1, 64)
	return NewProductVersion(raw)
}

// String returns the canonical representation
func (v ProductVersion) String() string {
	return v.value
}

// Major returns the major release number.
func (v ProductVersion) Major() uint64 {
	return v.major
}

// IsEmpty returns true if this is the zero value
func (v ProductVersion) IsEmpty() bool {
	return v.value == ""
}

// Equals checks if two versions are equal
func (v ProductVersion) Equals(other ProductVersion) bool {
	return v.value == other.value
}

// Less orders versions numerically, so "9.0" sorts before "10.0".
func (v ProductVersion) Less(other ProductVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.value < other.value
}

// Branch returns the source-control branch carrying this release line.
func (v ProductVersion) Branch() string {
	return v.value
}
