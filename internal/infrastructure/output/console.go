package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console prints user-facing status lines. It writes to stderr in normal use
// so stdout carries only command results.
type Console struct {
	out     io.Writer
	success *color.Color
	info    *color.Color
	warn    *color.Color
	fail    *color.Color
}

// NewConsole creates a console writing to out. Colors follow
// color.NoColor unless disabled explicitly.
func NewConsole(out io.Writer, disableColor bool) *Console {
	c := &Console{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
	}
	if disableColor {
		for _, col := range []*color.Color{c.success, c.info, c.warn, c.fail} {
			col.DisableColor()
		}
	}
	return c
}

// Success prints a completed step.
func (c *Console) Success(format string, args ...any) {
	c.line(c.success, "✓", format, args...)
}

// Info prints a progress note.
func (c *Console) Info(format string, args ...any) {
	c.line(c.info, "•", format, args...)
}

// Warn prints a non-fatal problem.
func (c *Console) Warn(format string, args ...any) {
	c.line(c.warn, "!", format, args...)
}

// Error prints a fatal problem.
func (c *Console) Error(format string, args ...any) {
	c.line(c.fail, "✗", format, args...)
}

//nolint:errcheck // best-effort terminal output
func (c *Console) line(col *color.Color, glyph, format string, args ...any) {
	fmt.Fprintf(c.out, "%s %s\n", col.Sprint(glyph), fmt.Sprintf(format, args...))
}
