package output

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Row is one line of a posting table.
type Row struct {
	Account   string
	Commodity string
	Number    string
	Negative  bool
}

// WriteTable writes rows with accounts and commodities left-aligned and
// numbers right-aligned. Widths are measured in terminal cells so symbols
// such as € or wide CJK account names line up. styles may be nil.
func WriteTable(w io.Writer, rows []Row, indent string, styles *Styles) error {
	var accountWidth, commodityWidth, numberWidth int
	for _, r := range rows {
		accountWidth = max(accountWidth, runewidth.StringWidth(r.Account))
		commodityWidth = max(commodityWidth, runewidth.StringWidth(r.Commodity))
		numberWidth = max(numberWidth, runewidth.StringWidth(r.Number))
	}

	var sb strings.Builder
	for _, r := range rows {
		account := runewidth.FillRight(r.Account, accountWidth)
		amount := runewidth.FillRight(r.Commodity, commodityWidth) + " " + runewidth.FillLeft(r.Number, numberWidth)
		if styles != nil {
			account = styles.Account(account)
			amount = styles.Amount(amount, r.Negative)
		}

		sb.WriteString(indent)
		sb.WriteString(account)
		sb.WriteString("  ")
		sb.WriteString(amount)
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
