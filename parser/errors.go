package parser

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidAccount   = errors.New("invalid character in account name")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrTrailingInput    = errors.New("unexpected input after end of command")

	// ErrIncomplete is returned when an operation is requested before the
	// command reached its end.
	ErrIncomplete = errors.New("incomplete command")

	ErrMalformedHeader = errors.New("missing or malformed transaction header")

	errExponentNotation = errors.New("exponent notation is not supported")
	errScaleTooLarge    = fmt.Errorf("more than %d decimal places", MaxScale)
)

// GrammarError reports a word the command parser rejected. The parser state is
// left as it was before the word.
type GrammarError struct {
	Kind       error  // one of the Err* sentinels above
	Word       string // offending word
	Index      int    // 0-based word index within the command
	Column     int    // 1-based byte column of the word, 0 when unknown
	Underlying error
}

func (e *GrammarError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Kind, e.Word)
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	if e.Column > 0 {
		return fmt.Sprintf("column %d: %s", e.Column, msg)
	}
	return msg
}

// Is makes errors.Is match the error kind.
func (e *GrammarError) Is(target error) bool {
	return e.Kind == target
}

func (e *GrammarError) Unwrap() error {
	return e.Underlying
}

// IncompleteError reports a command that ended before all of its words were
// given.
type IncompleteError struct {
	Expected TokenKind
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s, expecting %s", ErrIncomplete, e.Expected)
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// HeaderError reports a transaction header line that could not be parsed.
type HeaderError struct {
	Line       string
	Underlying error
}

func (e *HeaderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedHeader, e.Underlying)
	}
	return ErrMalformedHeader.Error()
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

func (e *HeaderError) Unwrap() error {
	return e.Underlying
}
