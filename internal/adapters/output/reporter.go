// Package output provides adapters for writing operator-facing output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status glyphs printed inside the bracketed marker.
const (
	glyphError   = "✗"
	glyphWarning = "!"
	glyphSuccess = "✓"
	glyphInfo    = "-"
	abortPrefix  = "💥"
)

// Reporter renders step outcomes as colored status lines.
// Error and abort lines go to the error stream, everything else to the output stream.
// Colors are dropped automatically when the destination is not a terminal.
type Reporter struct {
	out io.Writer
	err io.Writer

	red    lipgloss.Style
	yellow lipgloss.Style
	green  lipgloss.Style
	blue   lipgloss.Style
}

// NewReporter creates a Reporter writing to stdout and stderr.
func NewReporter() *Reporter {
	return NewReporterWithOutput(os.Stdout, os.Stderr)
}

// NewReporterWithOutput creates a Reporter with custom output destinations.
// This is useful for testing.
func NewReporterWithOutput(out, errOut io.Writer) *Reporter {
	outRenderer := lipgloss.NewRenderer(out)
	errRenderer := lipgloss.NewRenderer(errOut)

	return &Reporter{
		out:    out,
		err:    errOut,
		red:    errRenderer.NewStyle().Foreground(lipgloss.Color("1")),
		yellow: outRenderer.NewStyle().Foreground(lipgloss.Color("3")),
		green:  outRenderer.NewStyle().Foreground(lipgloss.Color("2")),
		blue:   outRenderer.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// Error reports a failed action: [ ✗ ] ERROR(action): detail
func (r *Reporter) Error(action string, err error) {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	writeLine(r.err, marker(r.red, glyphError), r.red.Render(fmt.Sprintf("ERROR(%s):", action)), detail)
}

// Warn reports a warning: [ ! ] WARNING: messages
func (r *Reporter) Warn(messages ...any) {
	writeLine(r.out, marker(r.yellow, glyphWarning), r.yellow.Render("WARNING:"), join(messages))
}

// Success reports a completed action: [ ✓ ] messages
func (r *Reporter) Success(messages ...any) {
	writeLine(r.out, marker(r.green, glyphSuccess), join(messages))
}

// Info surfaces a value to the operator: [ - ] messages
func (r *Reporter) Info(messages ...any) {
	writeLine(r.out, marker(r.blue, glyphInfo), join(messages))
}

// Abort prints the single terminal message used by the bump-only mode.
func (r *Reporter) Abort(err error) {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	writeLine(r.err, abortPrefix, r.red.Render(detail))
}

func marker(style lipgloss.Style, glyph string) string {
	return "[ " + style.Render(glyph) + " ]"
}

// join formats messages the way fmt.Println does, space separated.
func join(messages []any) string {
	return strings.TrimSuffix(fmt.Sprintln(messages...), "\n")
}

// writeLine writes parts separated by spaces.
// Write errors are ignored: there is nowhere left to report them.
func writeLine(w io.Writer, parts ...string) {
	_, _ = fmt.Fprintln(w, strings.Join(parts, " "))
}
