package parser

// TokenKind identifies the kind of word the parser expects next.
type TokenKind uint8

const (
	OPERATION TokenKind = iota // a, s or f
	ACCOUNT                    // Expenses:Food
	COMMODITY                  // €, CZK
	AMOUNT                     // 5.95
	EOL                        // command complete
)

var tokenNames = map[TokenKind]string{
	OPERATION: "operation",
	ACCOUNT:   "account",
	COMMODITY: "commodity",
	AMOUNT:    "amount",
	EOL:       "end of command",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// opKind is the operation code of the command being parsed.
type opKind uint8

const (
	opNone opKind = iota
	opSimple
	opSplit
	opFinalize
)

var opCodes = map[string]opKind{
	"a": opSimple,
	"s": opSplit,
	"f": opFinalize,
}
