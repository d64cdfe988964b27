// Package balance aggregates entry values per account and per category subtree.
package balance

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

// Info is a snapshot of summed entry values: overall, per account and per
// category. A category's sum includes every descendant category's entries.
// Values are summed as plain numbers regardless of currency.
type Info struct {
	overall    decimal.Decimal
	accounts   map[string]decimal.Decimal
	categories map[*category.Category]decimal.Decimal
}

// New returns an empty snapshot.
func New() *Info {
	return &Info{
		accounts:   make(map[string]decimal.Decimal),
		categories: make(map[*category.Category]decimal.Decimal),
	}
}

// FromEntries folds every entry into a fresh snapshot.
func FromEntries(entries []*model.Entry) *Info {
	b := New()
	for _, e := range entries {
		b.add(e)
	}
	return b
}

// FromJournal rebuilds the snapshot from all of j's entries.
func FromJournal(j *journal.Journal) *Info {
	return FromEntries(j.Entries())
}

// Clone returns an independent copy.
func (b *Info) Clone() *Info {
	return &Info{
		overall:    b.overall,
		accounts:   maps.Clone(b.accounts),
		categories: maps.Clone(b.categories),
	}
}

// Increment returns a new snapshot equal to b plus e's contribution. b is unchanged.
func (b *Info) Increment(e *model.Entry) *Info {
	next := b.Clone()
	next.add(e)
	return next
}

// add folds e into b in place: overall, its account, and its category with
// every ancestor up to the root.
func (b *Info) add(e *model.Entry) {
	v := e.Value()
	b.overall = b.overall.Add(v)
	b.accounts[e.AccountID()] = b.accounts[e.AccountID()].Add(v)
	for c := e.Category(); c != nil; c = c.Parent() {
		b.categories[c] = b.categories[c].Add(v)
	}
}

// OverallSum returns the sum of all entries.
func (b *Info) OverallSum() decimal.Decimal { return b.overall }

// Account returns the sum for one account (zero when it has no entries).
func (b *Info) Account(id string) decimal.Decimal { return b.accounts[id] }

// Category returns the rolled-up sum for c (zero when nothing is booked below it).
func (b *Info) Category(c *category.Category) decimal.Decimal { return b.categories[c] }

// AccountSums returns a copy of the per-account sums.
func (b *Info) AccountSums() map[string]decimal.Decimal { return maps.Clone(b.accounts) }

// CategorySums returns a copy of the rolled-up per-category sums.
func (b *Info) CategorySums() map[*category.Category]decimal.Decimal {
	return maps.Clone(b.categories)
}

// Equal reports whether both snapshots hold the same sums.
func (b *Info) Equal(o *Info) bool {
	if !b.overall.Equal(o.overall) {
		return false
	}
	return equalSums(b.accounts, o.accounts) && equalSums(b.categories, o.categories)
}

func equalSums[K comparable](a, b map[K]decimal.Decimal) bool {
	for k, v := range a {
		if !v.Equal(b[k]) {
			return false
		}
	}
	for k, v := range b {
		if !v.Equal(a[k]) {
			return false
		}
	}
	return true
}
