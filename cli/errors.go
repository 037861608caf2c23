package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledgerentry/oracle"
	"github.com/robinvdvleuten/ledgerentry/parser"
	"github.com/robinvdvleuten/ledgerentry/writer"
)

const tabSpaces = "    "

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and, for rejected
// commands, the offending line with a caret under the rejected word.
type ErrorRenderer struct {
	line string
}

// NewErrorRenderer creates a renderer for errors about line.
func NewErrorRenderer(line string) *ErrorRenderer {
	return &ErrorRenderer{line: line}
}

// Render formats a single error.
func (r *ErrorRenderer) Render(err error) string {
	var grammarErr *parser.GrammarError
	if errors.As(err, &grammarErr) && grammarErr.Column > 0 && r.line != "" {
		return r.renderWithCaret(err.Error(), grammarErr.Column)
	}

	var oracleErr *oracle.Error
	if errors.As(err, &oracleErr) {
		return errorStyle.Render(err.Error()) + "\n" +
			errContextStyle.Render("   the ledger file could not be queried; nothing was written")
	}

	var writeErr *writer.WriteError
	if errors.As(err, &writeErr) {
		return errorStyle.Render(err.Error()) + "\n" +
			errContextStyle.Render("   the ledger file was left unchanged")
	}

	return errorStyle.Render(err.Error())
}

func (r *ErrorRenderer) renderWithCaret(message string, column int) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	buf.WriteString("   ")
	buf.WriteString(errContextStyle.Render(strings.ReplaceAll(r.line, "\t", tabSpaces)))
	buf.WriteByte('\n')

	buf.WriteString("   ")
	// Column is a byte offset; pad by display width so the caret lands under
	// the word even after symbols such as €.
	for _, rn := range r.line[:min(column-1, len(r.line))] {
		if rn == '\t' {
			buf.WriteString(tabSpaces)
			continue
		}
		buf.WriteString(strings.Repeat(" ", runewidth.RuneWidth(rn)))
	}
	buf.WriteString(errCaretStyle.Render("^"))
	buf.WriteByte('\n')

	return buf.String()
}
