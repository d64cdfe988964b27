package journal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/model"
)

// Rule numbers reported by ValidateEntries.
const (
	RuleAccount  = 1 // the account exists and accepts the entry
	RuleCategory = 2 // the entry has a category from the journal's registry
	RuleCurrency = 3 // the entry carries a currency
	RuleDecimals = 4 // no more than 2 decimal places
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule     int
	EntryID  string
	Critical bool
	Err      error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %v", e.Rule, e.EntryID, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// AccountVerifier checks an entry against its account.
type AccountVerifier interface {
	Verify(e *model.Entry) error
}

// criticalError is implemented by account verification errors.
type criticalError interface {
	Critical() bool
}

// ValidateEntries checks entries against their accounts and the journal's
// invariants. Nothing is rejected here; the caller decides whether to block
// or warn.
func (j *Journal) ValidateEntries(entries []*model.Entry, accounts AccountVerifier) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)

	for _, e := range entries {
		if accounts != nil {
			if err := accounts.Verify(e); err != nil {
				critical := true
				var ce criticalError
				if errors.As(err, &ce) {
					critical = ce.Critical()
				}
				errs = append(errs, ValidationError{Rule: RuleAccount, EntryID: e.ID(), Critical: critical, Err: err})
			}
		}

		c := e.Category()
		if c == nil {
			errs = append(errs, ValidationError{
				Rule: RuleCategory, EntryID: e.ID(), Critical: true,
				Err: errors.New("entry has no category"),
			})
		} else if own, ok := j.categories.Lookup(c.Path()...); !ok || own != c {
			errs = append(errs, ValidationError{
				Rule: RuleCategory, EntryID: e.ID(), Critical: true,
				Err: fmt.Errorf("category %q is not from this journal's registry", c),
			})
		}

		if e.Currency() == "" {
			errs = append(errs, ValidationError{
				Rule: RuleCurrency, EntryID: e.ID(),
				Err: errors.New("entry has no currency"),
			})
		}

		v := e.Value().Mul(hundred)
		if !v.Equal(v.Floor()) {
			errs = append(errs, ValidationError{
				Rule: RuleDecimals, EntryID: e.ID(),
				Err: fmt.Errorf("value %s has more than 2 decimal places", e.Value()),
			})
		}
	}
	return errs
}

// HasCritical reports whether any violation blocks the entries.
func HasCritical(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Critical {
			return true
		}
	}
	return false
}
