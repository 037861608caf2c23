// Package parser turns typed change commands into ledger operations one word
// at a time, so a caller can validate and complete a line while it is being
// typed.
//
// A command has the shape
//
//	a <account> <commodity> <amount>             simple change
//	s <account> <account> <commodity> <amount>   split change
//	f <account>                                  finalize
//
// Feed each whitespace-delimited word in order, ask Expected which kind of
// word comes next, and call Operation once the command is complete.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledgerentry/ledger"
)

// MaxScale is the largest number of decimal places an amount may have.
const MaxScale = 28

var (
	accountRegex  = regexp.MustCompile(`^\p{L}[\p{L}\p{Nd}:]*$`)
	currencyRegex = regexp.MustCompile(`[^0-9]`)
)

// state holds everything parsed so far. It is a value type so that every
// transition can be a pure function of the previous state and a word.
type state struct {
	next      TokenKind
	op        opKind
	accounts  []string
	commodity string
	amount    decimal.Decimal
	words     int
}

// step consumes one word. On error the returned state equals the input.
func step(s state, word string) (state, error) {
	fail := func(kind error, underlying error) (state, error) {
		return s, &GrammarError{Kind: kind, Word: word, Index: s.words, Underlying: underlying}
	}

	n := s
	n.words++

	switch s.next {
	case OPERATION:
		op, ok := opCodes[word]
		if !ok {
			return fail(ErrInvalidOperation, nil)
		}
		n.op = op
		n.next = ACCOUNT

	case ACCOUNT:
		if !accountRegex.MatchString(word) {
			return fail(ErrInvalidAccount, nil)
		}
		// Copy so that appending never aliases the previous state's slice.
		n.accounts = append(append(make([]string, 0, 2), s.accounts...), word)
		switch {
		case n.op == opFinalize:
			n.next = EOL
		case n.op == opSplit && len(n.accounts) == 1:
			n.next = ACCOUNT
		default:
			n.next = COMMODITY
		}

	case COMMODITY:
		if !currencyRegex.MatchString(word) {
			return fail(ErrInvalidCurrency, nil)
		}
		n.commodity = word
		n.next = AMOUNT

	case AMOUNT:
		if strings.ContainsAny(word, "eE") {
			return fail(ErrInvalidAmount, errExponentNotation)
		}
		d, err := decimal.NewFromString(word)
		if err != nil {
			return fail(ErrInvalidAmount, err)
		}
		if d.Exponent() < -MaxScale {
			return fail(ErrInvalidAmount, errScaleTooLarge)
		}
		n.amount = d
		n.next = EOL

	default:
		return fail(ErrTrailingInput, nil)
	}

	return n, nil
}

// Parser is an incremental command parser. The zero value is not ready for
// use; call New.
type Parser struct {
	state state
}

// New creates a parser expecting an operation code.
func New() *Parser {
	return &Parser{state: state{next: OPERATION}}
}

// Feed consumes the next word of the command. A rejected word returns a
// *GrammarError and leaves the parser unchanged.
func (p *Parser) Feed(word string) error {
	next, err := step(p.state, word)
	if err != nil {
		return err
	}
	p.state = next
	return nil
}

// Expected returns the kind of word the parser needs next.
func (p *Parser) Expected() TokenKind {
	return p.state.next
}

// Words returns the number of accepted words.
func (p *Parser) Words() int {
	return p.state.words
}

// Reset discards everything parsed so far.
func (p *Parser) Reset() {
	p.state = state{next: OPERATION}
}

// Operation returns the parsed operation. It fails with an *IncompleteError
// unless the command has reached its end.
func (p *Parser) Operation() (ledger.Operation, error) {
	s := p.state
	if s.next != EOL {
		return nil, &IncompleteError{Expected: s.next}
	}

	switch s.op {
	case opSimple:
		return ledger.SimpleChange{
			Account: s.accounts[0],
			Amount:  ledger.NewAmount(s.commodity, s.amount),
		}, nil
	case opSplit:
		return ledger.SplitChange{
			Account:      s.accounts[0],
			SplitAccount: s.accounts[1],
			Amount:       ledger.NewAmount(s.commodity, s.amount),
		}, nil
	default:
		return ledger.Finalize{Account: s.accounts[0]}, nil
	}
}

// Word is a whitespace-delimited word of a line and its byte offset.
type Word struct {
	Text   string
	Offset int
}

// Split breaks line into words on ASCII whitespace, remembering where each
// word starts.
func Split(line string) []Word {
	var words []Word
	start := -1
	for i := 0; i < len(line); i++ {
		if isSpace(line[i]) {
			if start >= 0 {
				words = append(words, Word{Text: line[start:i], Offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: line[start:], Offset: start})
	}
	return words
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// FeedLine feeds every word of line to p. Grammar errors carry the column of
// the rejected word.
func (p *Parser) FeedLine(line string) error {
	for _, w := range Split(line) {
		if err := p.Feed(w.Text); err != nil {
			if ge, ok := err.(*GrammarError); ok {
				ge.Column = w.Offset + 1
			}
			return err
		}
	}
	return nil
}

// ParseLine parses a complete command line.
func ParseLine(line string) (ledger.Operation, error) {
	p := New()
	if err := p.FeedLine(line); err != nil {
		return nil, err
	}
	return p.Operation()
}
