package cli

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/ledgerentry/oracle"
)

// OracleFlags select how facts about the ledger file are gathered.
type OracleFlags struct {
	Oracle    string `help:"How to read the ledger file: scan it in-process or ask the ledger binary." enum:"scan,ledger" default:"scan" env:"LEDGERENTRY_ORACLE"`
	LedgerBin string `help:"Path of the ledger binary." default:"ledger" env:"LEDGERENTRY_LEDGER_BIN"`
}

func (f *OracleFlags) build(file string, logger *log.Logger) (oracle.Oracle, error) {
	switch f.Oracle {
	case "", "scan":
		return oracle.NewScanner(file), nil
	case "ledger":
		return oracle.NewLedger(f.LedgerBin, file, logger), nil
	default:
		return nil, fmt.Errorf("unknown oracle %q", f.Oracle)
	}
}
