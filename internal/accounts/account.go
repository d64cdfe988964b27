package accounts

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cleared-dev/ledgr/internal/model"
)

// InvoiceField is the account-info field rejected by NoInvoice accounts.
const InvoiceField = "invoice"

// Account is the capability the journal needs from an account.
type Account interface {
	ID() string
	Name() string
	// Fields describes the account-specific entry fields: id -> description.
	Fields() map[string]string
	// Verify returns a *VerificationError when the entry breaks the account's rules.
	Verify(e *model.Entry) error
}

// FieldProblem describes one faulty account-specific field of an entry.
type FieldProblem struct {
	FieldID     string
	Critical    bool // critical: the entry cannot be accepted as-is
	Description string
}

// VerificationError lists the problems an account found with an entry.
type VerificationError struct {
	AccountID string
	EntryName string
	Problems  []FieldProblem
}

func (e *VerificationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		sev := "warning"
		if p.Critical {
			sev = "critical"
		}
		msgs[i] = fmt.Sprintf("%s (%s): %s", p.FieldID, sev, p.Description)
	}
	return fmt.Sprintf("account %s rejected entry %q: %s", e.AccountID, e.EntryName, strings.Join(msgs, "; "))
}

// Critical reports whether any problem blocks the entry.
func (e *VerificationError) Critical() bool {
	for _, p := range e.Problems {
		if p.Critical {
			return true
		}
	}
	return false
}

// FieldIDs returns the ids of all faulty fields.
func (e *VerificationError) FieldIDs() []string {
	ids := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		ids[i] = p.FieldID
	}
	return ids
}

// Noop accepts every entry and declares no fields.
type Noop struct {
	AccountID   string
	DisplayName string
}

func (a Noop) ID() string                { return a.AccountID }
func (a Noop) Name() string              { return a.DisplayName }
func (a Noop) Fields() map[string]string { return map[string]string{} }
func (a Noop) Verify(*model.Entry) error { return nil }

// Basic declares a set of fields. Missing required fields and undeclared
// fields are reported as non-critical problems.
type Basic struct {
	AccountID   string
	DisplayName string
	FieldDescs  map[string]string
	Required    []string
}

func (a Basic) ID() string   { return a.AccountID }
func (a Basic) Name() string { return a.DisplayName }

func (a Basic) Fields() map[string]string {
	return maps.Clone(a.FieldDescs)
}

func (a Basic) Verify(e *model.Entry) error {
	return a.verify(e, nil)
}

func (a Basic) verify(e *model.Entry, extra []FieldProblem) error {
	var problems []FieldProblem
	for _, id := range a.Required {
		if v, ok := e.Field(id); !ok || strings.TrimSpace(v) == "" {
			problems = append(problems, FieldProblem{
				FieldID:     id,
				Description: fmt.Sprintf("required field %q is missing", id),
			})
		}
	}
	info := e.AccountInfo()
	for _, id := range slices.Sorted(maps.Keys(info)) {
		if _, declared := a.FieldDescs[id]; !declared {
			problems = append(problems, FieldProblem{
				FieldID:     id,
				Description: fmt.Sprintf("field %q is not used by account %s", id, a.AccountID),
			})
		}
	}
	problems = append(problems, extra...)
	if len(problems) == 0 {
		return nil
	}
	return &VerificationError{AccountID: a.AccountID, EntryName: e.Name(), Problems: problems}
}

// NoInvoice behaves like Basic but refuses any entry that references an invoice.
type NoInvoice struct {
	Basic
}

func (a NoInvoice) Verify(e *model.Entry) error {
	var extra []FieldProblem
	if _, ok := e.Field(InvoiceField); ok {
		extra = append(extra, FieldProblem{
			FieldID:     InvoiceField,
			Critical:    true,
			Description: "invoices cannot be booked on this account",
		})
	}
	// The invoice field is reported once, as the critical problem.
	b := a.Basic
	b.FieldDescs = maps.Clone(a.FieldDescs)
	if b.FieldDescs == nil {
		b.FieldDescs = map[string]string{}
	}
	b.FieldDescs[InvoiceField] = ""
	return b.verify(e, extra)
}
