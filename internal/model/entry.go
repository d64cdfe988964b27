package model

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/category"
)

// EntryParams holds the fields of a journal entry.
type EntryParams struct {
	ID             string // generated when empty
	Name           string
	Value          decimal.Decimal // negative = expense, positive = income
	Currency       string
	Date           time.Time
	Category       *category.Category
	AccountID      string
	AccountInfo    map[string]string // account-specific field id -> value
	AdditionalInfo string
}

// Entry is a single dated, categorized ledger line. Entries are immutable
// and compared by pointer: two entries with equal fields are still two lines.
type Entry struct {
	id             string
	name           string
	value          decimal.Decimal
	currency       string
	date           time.Time
	category       *category.Category
	accountID      string
	accountInfo    map[string]string
	additionalInfo string
}

// NewEntry builds an Entry. The account info map is copied.
func NewEntry(p EntryParams) *Entry {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	info := make(map[string]string, len(p.AccountInfo))
	maps.Copy(info, p.AccountInfo)
	return &Entry{
		id:             id,
		name:           p.Name,
		value:          p.Value,
		currency:       p.Currency,
		date:           p.Date,
		category:       p.Category,
		accountID:      p.AccountID,
		accountInfo:    info,
		additionalInfo: p.AdditionalInfo,
	}
}

// ID is the persisted identifier used by the structured document form.
func (e *Entry) ID() string                   { return e.id }
func (e *Entry) Name() string                 { return e.name }
func (e *Entry) Value() decimal.Decimal       { return e.value }
func (e *Entry) Currency() string             { return e.currency }
func (e *Entry) Date() time.Time              { return e.date }
func (e *Entry) Category() *category.Category { return e.category }
func (e *Entry) AccountID() string            { return e.accountID }
func (e *Entry) AdditionalInfo() string       { return e.additionalInfo }

// AccountInfo returns a copy of the account-specific fields.
func (e *Entry) AccountInfo() map[string]string {
	return maps.Clone(e.accountInfo)
}

// Field returns one account-specific field.
func (e *Entry) Field(id string) (string, bool) {
	v, ok := e.accountInfo[id]
	return v, ok
}

// Params returns the entry's fields with ID cleared, for building an edited copy.
func (e *Entry) Params() EntryParams {
	return EntryParams{
		Name:           e.name,
		Value:          e.value,
		Currency:       e.currency,
		Date:           e.date,
		Category:       e.category,
		AccountID:      e.accountID,
		AccountInfo:    e.AccountInfo(),
		AdditionalInfo: e.additionalInfo,
	}
}

// CompareEntries orders entries by date, then name, then ID.
func CompareEntries(a, b *Entry) int {
	if c := a.date.Compare(b.date); c != 0 {
		return c
	}
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}
