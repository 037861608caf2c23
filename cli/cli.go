// Package cli implements the ledgerentry command line: the interactive add
// command, doctor utilities, configuration loading and terminal output.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/robinvdvleuten/ledgerentry/output"
	"github.com/robinvdvleuten/ledgerentry/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#5FD75F"}).Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", warningStyle.Render(warningSymbol), message)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// promptYesNo asks a yes/no question. It answers false without asking when
// stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool
	err := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm).
		Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// prompter reads one line of input. It returns io.EOF when the user is done.
type prompter interface {
	Prompt(label string, validate func(string) error, suggest func(string) []string) (string, error)
}

// linePrompter reads plain lines, for scripted input or dumb terminals.
type linePrompter struct {
	in   *bufio.Scanner
	out  io.Writer
	echo bool
}

func newLinePrompter(r io.Reader, w io.Writer, echo bool) *linePrompter {
	return &linePrompter{in: bufio.NewScanner(r), out: w, echo: echo}
}

func (p *linePrompter) Prompt(label string, _ func(string) error, _ func(string) []string) (string, error) {
	if p.echo {
		_, _ = fmt.Fprint(p.out, promptStyle.Render(label))
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(p.in.Text(), "\r"), nil
}

// huhPrompter shows a huh input with inline validation and suggestions.
type huhPrompter struct{}

func (huhPrompter) Prompt(label string, validate func(string) error, suggest func(string) []string) (string, error) {
	var line string

	input := huh.NewInput().
		Prompt(label).
		Value(&line)
	if validate != nil {
		input = input.Validate(validate)
	}
	if suggest != nil {
		input = input.SuggestionsFunc(func() []string { return suggest(line) }, &line)
	}

	if err := input.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

// newLogger builds the logger for a command from the global flags.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: "ledgerentry",
	}), nil
}

// withTelemetry installs a timing collector when enabled. The returned
// function prints the report and is safe to call when disabled.
func withTelemetry(ctx context.Context, enabled bool, w io.Writer) (context.Context, func()) {
	if !enabled {
		return ctx, func() {}
	}
	collector := telemetry.NewTimingCollector()
	return telemetry.WithCollector(ctx, collector), func() {
		_, _ = fmt.Fprintln(w)
		collector.Report(w, output.NewStyles(w))
	}
}
