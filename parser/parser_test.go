package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledgerentry/ledger"
)

func feed(t *testing.T, p *Parser, words ...string) {
	t.Helper()
	for _, w := range words {
		assert.NoError(t, p.Feed(w))
	}
}

func TestParserSimpleChange(t *testing.T) {
	p := New()
	assert.Equal(t, OPERATION, p.Expected())
	feed(t, p, "a")
	assert.Equal(t, ACCOUNT, p.Expected())
	feed(t, p, "Expenses:Food")
	assert.Equal(t, COMMODITY, p.Expected())
	feed(t, p, "€")
	assert.Equal(t, AMOUNT, p.Expected())
	feed(t, p, "5.95")
	assert.Equal(t, EOL, p.Expected())

	op, err := p.Operation()
	assert.NoError(t, err)
	change, ok := op.(ledger.SimpleChange)
	assert.True(t, ok, "expected SimpleChange, got %T", op)
	assert.Equal(t, "Expenses:Food", change.Account)
	assert.Equal(t, "€ 5.95", change.Amount.String())
}

func TestParserSplitChange(t *testing.T) {
	p := New()
	feed(t, p, "s", "Expenses:Food")
	assert.Equal(t, ACCOUNT, p.Expected())
	feed(t, p, "Debts:Peter", "CZK", "-120")

	op, err := p.Operation()
	assert.NoError(t, err)
	split, ok := op.(ledger.SplitChange)
	assert.True(t, ok, "expected SplitChange, got %T", op)
	assert.Equal(t, "Expenses:Food", split.Account)
	assert.Equal(t, "Debts:Peter", split.SplitAccount)
	assert.Equal(t, "CZK -120", split.Amount.String())
}

func TestParserFinalize(t *testing.T) {
	p := New()
	feed(t, p, "f", "Assets:Cash")
	assert.Equal(t, EOL, p.Expected())

	op, err := p.Operation()
	assert.NoError(t, err)
	assert.Equal(t, ledger.Operation(ledger.Finalize{Account: "Assets:Cash"}), op)
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		err   error
		index int
	}{
		{name: "InvalidOperation", words: []string{"x"}, err: ErrInvalidOperation, index: 0},
		{name: "OperationIsCaseSensitive", words: []string{"A"}, err: ErrInvalidOperation, index: 0},
		{name: "AccountStartsWithDigit", words: []string{"a", "1abc"}, err: ErrInvalidAccount, index: 1},
		{name: "AccountWithDash", words: []string{"a", "Assets:Bank-1"}, err: ErrInvalidAccount, index: 1},
		{name: "AccountStartsWithColon", words: []string{"f", ":Cash"}, err: ErrInvalidAccount, index: 1},
		{name: "SecondSplitAccount", words: []string{"s", "Food", "2nd"}, err: ErrInvalidAccount, index: 2},
		{name: "NumericCurrency", words: []string{"a", "Food", "123"}, err: ErrInvalidCurrency, index: 2},
		{name: "InvalidAmount", words: []string{"a", "Food", "€", "five"}, err: ErrInvalidAmount, index: 3},
		{name: "FloatLikeAmount", words: []string{"a", "Food", "€", "5,95"}, err: ErrInvalidAmount, index: 3},
		{name: "ExponentNotation", words: []string{"a", "Food", "€", "1e2"}, err: ErrInvalidAmount, index: 3},
		{name: "HugeNegativeExponent", words: []string{"s", "Food", "Debts", "€", "1e-2147483648"}, err: ErrInvalidAmount, index: 4},
		{name: "HugePositiveExponent", words: []string{"a", "Food", "€", "1E50000000"}, err: ErrInvalidAmount, index: 3},
		{name: "TooManyDecimalPlaces", words: []string{"a", "Food", "€", "0.00000000000000000000000000001"}, err: ErrInvalidAmount, index: 3},
		{name: "TrailingAfterAmount", words: []string{"a", "Food", "€", "5", "extra"}, err: ErrTrailingInput, index: 4},
		{name: "TrailingAfterFinalize", words: []string{"f", "Cash", "€"}, err: ErrTrailingInput, index: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			last := len(tt.words) - 1
			feed(t, p, tt.words[:last]...)
			before := p.Expected()

			err := p.Feed(tt.words[last])
			assert.IsError(t, err, tt.err)

			var ge *GrammarError
			assert.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.words[last], ge.Word)
			assert.Equal(t, tt.index, ge.Index)

			// A rejected word never advances the parser.
			assert.Equal(t, before, p.Expected())
			assert.Equal(t, last, p.Words())
		})
	}
}

func TestParserAmountAtMaxScale(t *testing.T) {
	op, err := ParseLine("s Expenses:Food Debts:Peter € 1.0000000000000000000000000001")
	assert.NoError(t, err)

	tx := ledger.NewTransaction(time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC), "Dinner")
	ledger.Apply(tx, op)

	changes := tx.Changes("Expenses:Food")
	assert.Equal(t, 1, len(changes))
	assert.Equal(t, "€ 0.50000000000000000000000000005", changes[0].String())
}

func TestParserRecoversAfterRejectedWord(t *testing.T) {
	p := New()
	feed(t, p, "a", "Food")
	assert.Error(t, p.Feed("123"))
	feed(t, p, "CZK", "120")

	op, err := p.Operation()
	assert.NoError(t, err)
	assert.Equal(t, "CZK 120", op.(ledger.SimpleChange).Amount.String())
}

func TestParserIncomplete(t *testing.T) {
	tests := []struct {
		words    []string
		expected TokenKind
	}{
		{words: nil, expected: OPERATION},
		{words: []string{"a"}, expected: ACCOUNT},
		{words: []string{"s", "Food"}, expected: ACCOUNT},
		{words: []string{"a", "Food"}, expected: COMMODITY},
		{words: []string{"a", "Food", "€"}, expected: AMOUNT},
	}

	for _, tt := range tests {
		p := New()
		feed(t, p, tt.words...)

		op, err := p.Operation()
		assert.Zero(t, op)
		assert.IsError(t, err, ErrIncomplete)

		var ie *IncompleteError
		assert.True(t, errors.As(err, &ie))
		assert.Equal(t, tt.expected, ie.Expected)
	}
}

func TestParserDeterminism(t *testing.T) {
	inputs := [][]string{
		{"a", "Expenses:Food", "€", "5.95"},
		{"s", "Expenses:Food", "Debts:Peter", "CZK", "120"},
		{"f", "Assets:Cash"},
		{"a", "1abc"},
		{"a", "Food", "€", "x"},
	}

	run := func(words []string) (ledger.Operation, string) {
		p := New()
		for _, w := range words {
			if err := p.Feed(w); err != nil {
				return nil, err.Error()
			}
		}
		op, err := p.Operation()
		if err != nil {
			return nil, err.Error()
		}
		return op, ""
	}

	for _, words := range inputs {
		op1, err1 := run(words)
		op2, err2 := run(words)
		assert.Equal(t, op1, op2)
		assert.Equal(t, err1, err2)
	}
}

func TestParserReset(t *testing.T) {
	p := New()
	feed(t, p, "a", "Food", "€")
	p.Reset()
	assert.Equal(t, OPERATION, p.Expected())
	assert.Equal(t, 0, p.Words())
}

func TestStepIsPure(t *testing.T) {
	s := state{next: OPERATION}
	s1, err := step(s, "s")
	assert.NoError(t, err)
	s2, err := step(s1, "Food")
	assert.NoError(t, err)

	// Branching from the same state must not leak accounts between branches.
	left, err := step(s2, "Left")
	assert.NoError(t, err)
	right, err := step(s2, "Right")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Food", "Left"}, left.accounts)
	assert.Equal(t, []string{"Food", "Right"}, right.accounts)
	assert.Equal(t, []string{"Food"}, s2.accounts)
	assert.Equal(t, OPERATION, s.next)
}

func TestSplit(t *testing.T) {
	words := Split("  a Expenses:Food\t€  5.95 ")
	assert.Equal(t, []Word{
		{Text: "a", Offset: 2},
		{Text: "Expenses:Food", Offset: 4},
		{Text: "€", Offset: 18},
		{Text: "5.95", Offset: 23},
	}, words)
	assert.Equal(t, 0, len(Split("   ")))
}

func TestParseLine(t *testing.T) {
	t.Run("Complete", func(t *testing.T) {
		op, err := ParseLine("a Expenses:Food CZK 120")
		assert.NoError(t, err)
		assert.Equal(t, "CZK 120", op.(ledger.SimpleChange).Amount.String())
	})

	t.Run("ErrorCarriesColumn", func(t *testing.T) {
		_, err := ParseLine("a Food 123")
		var ge *GrammarError
		assert.True(t, errors.As(err, &ge))
		assert.Equal(t, 8, ge.Column)
		assert.Equal(t, `column 8: invalid currency: "123"`, err.Error())
	})

	t.Run("Incomplete", func(t *testing.T) {
		_, err := ParseLine("a Food")
		assert.EqualError(t, err, "incomplete command, expecting commodity")
	})
}

func TestTokenKindString(t *testing.T) {
	assert.Equal(t, "account", ACCOUNT.String())
	assert.Equal(t, "end of command", EOL.String())
	assert.Equal(t, "UNKNOWN", TokenKind(99).String())
}
