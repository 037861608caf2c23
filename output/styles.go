// Package output styles terminal output and lays out the balance preview
// shown while a transaction is being composed.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// ANSI palette indices.
const (
	colorRed     = "1"
	colorGreen   = "2"
	colorYellow  = "3"
	colorMagenta = "5"
	colorCyan    = "6"
)

// Styles renders text for a particular writer, degrading to plain text when
// the writer is not a color terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles for w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) color(text, color string, bold bool) string {
	st := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		st = st.Bold()
	}
	return st.String()
}

func (s *Styles) Success(text string) string { return s.color(text, colorGreen, true) }
func (s *Styles) Error(text string) string { return s.color(text, colorRed, true) }
func (s *Styles) Warning(text string) string { return s.color(text, colorYellow, true) }
func (s *Styles) FilePath(text string) string { return s.color(text, colorCyan, false) }
func (s *Styles) Account(text string) string { return s.color(text, colorYellow, false) }

// Amount styles a posting amount; debits are shown in red.
func (s *Styles) Amount(text string, negative bool) string {
	if negative {
		return s.color(text, colorRed, false)
	}
	return s.color(text, colorMagenta, false)
}

func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim fades secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing styles a duration, highlighting slow operations.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, colorRed, false)
	}
	return s.Dim(text)
}

// Output returns the underlying termenv output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
