package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/rodoo-dev/rodoo/internal/application/dto"
)

// TableFormatter formats results as human-readable tables.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// FormatProfile writes one row per field with its source.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) FormatProfile(view dto.ProfileView) error {
	bold := f.paint(color.Bold)
	gray := f.paint(color.FgHiBlack)

	fmt.Fprintf(f.writer, "Profile: %s\n", bold(view.Name))
	if view.File != "" {
		fmt.Fprintf(f.writer, "File:    %s\n", view.File)
	}
	fmt.Fprintf(f.writer, "Key:     %s\n\n", view.Key)

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSOURCE")
	for _, field := range view.Fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", field.Key, formatValue(field.Value), gray(field.Source))
	}
	return tw.Flush()
}

// FormatCacheEntries writes one row per cache entry.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) FormatCacheEntries(entries []dto.CacheEntryView) error {
	if len(entries) == 0 {
		fmt.Fprintln(f.writer, "Cache is empty.")
		return nil
	}

	green := f.paint(color.FgGreen)
	yellow := f.paint(color.FgYellow)

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tSTATE\tMODIFIED\tPATH")
	for _, e := range entries {
		state := green("complete")
		if !e.Complete {
			state = yellow("incomplete")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Kind, e.Name, state, e.ModTime.Format(time.DateTime), e.Path)
	}
	return tw.Flush()
}

func (f *TableFormatter) paint(attrs ...color.Attribute) func(a ...any) string {
	if !f.EnableColor {
		return fmt.Sprint
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.SprintFunc()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return "-"
		}
		return strings.Join(t, ",")
	case string:
		if t == "" {
			return "-"
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}
