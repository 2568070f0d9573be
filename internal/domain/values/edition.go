package values

import "fmt"

// Edition distinguishes the community source tree from the enterprise add-on tree.
type Edition string

const (
	EditionCommunity  Edition = "community"
	EditionEnterprise Edition = "enterprise"
)

// ParseEdition converts a directory or flag value into an Edition.
func ParseEdition(s string) (Edition, error) {
	switch Edition(s) {
	case EditionCommunity, EditionEnterprise:
		return Edition(s), nil
	default:
		return "", fmt.Errorf("unknown edition %q", s)
	}
}

func (e Edition) String() string {
	return string(e)
}
