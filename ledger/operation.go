package ledger

// Operation is a parsed change command that can be applied to a Transaction.
type Operation interface {
	// Apply mutates the transaction.
	Apply(t *Transaction)

	// Kind returns the command code of the operation ("a", "s" or "f").
	Kind() string
}

// SimpleChange adds an amount to one account.
type SimpleChange struct {
	Account string
	Amount  Amount
}

var _ Operation = SimpleChange{}

func (c SimpleChange) Apply(t *Transaction) {
	t.AddChange(c.Account, c.Amount)
}

func (c SimpleChange) Kind() string {
	return "a"
}

// SplitChange divides an amount evenly between two accounts.
type SplitChange struct {
	Account      string
	SplitAccount string
	Amount       Amount
}

var _ Operation = SplitChange{}

func (c SplitChange) Apply(t *Transaction) {
	t.AddSplitChange(c.Account, c.SplitAccount, c.Amount)
}

func (c SplitChange) Kind() string {
	return "s"
}

// Finalize balances the transaction against a single account.
type Finalize struct {
	Account string
}

var _ Operation = Finalize{}

func (f Finalize) Apply(t *Transaction) {
	t.Finalize(f.Account)
}

func (f Finalize) Kind() string {
	return "f"
}

// Apply applies op to t.
func Apply(t *Transaction, op Operation) {
	op.Apply(t)
}
