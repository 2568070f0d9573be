package ports

import (
	"io"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
)

// OutputFormatter renders command results.
type OutputFormatter interface {
	FormatProfile(view dto.ProfileView) error
	FormatCacheEntries(entries []dto.CacheEntryView) error
}

// OutputFormatterFactory creates formatters by format name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer) (OutputFormatter, error)
	SupportedFormats() []string
}
