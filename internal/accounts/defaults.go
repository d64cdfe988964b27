package accounts

// Kinds accepted by New.
const (
	KindNoop      = "noop"
	KindBasic     = "basic"
	KindNoInvoice = "no-invoice"
)

// DefaultAccounts returns the starter accounts for a new journal.
func DefaultAccounts() []Account {
	return []Account{
		Noop{AccountID: "cash", DisplayName: "Cash box"},
		Basic{
			AccountID:   "bank",
			DisplayName: "Bank account",
			FieldDescs: map[string]string{
				"statement": "Bank statement number",
				"invoice":   "Invoice reference",
			},
		},
		NoInvoice{Basic{
			AccountID:   "petty",
			DisplayName: "Petty cash",
			FieldDescs:  map[string]string{"receipt": "Receipt number"},
			Required:    []string{"receipt"},
		}},
	}
}
