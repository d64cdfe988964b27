// Package journal holds the mutable journal aggregate and its change notifications.
package journal

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/model"
)

// Journal is the aggregate root: a set of entries, date-ordered reading
// points, per-account start values, a name and a description.
//
// Mutators are non-strict: adding a present entry or removing an absent one
// is a no-op that still notifies listeners. A Journal is not safe for
// concurrent use; callers serialize access.
type Journal struct {
	categories  *category.Registry
	name        string
	description string
	entries     map[*model.Entry]struct{}
	points      []*model.ReadingPoint
	startValues map[string]decimal.Decimal

	listeners []subscription
	nextSubID int
}

type subscription struct {
	id int
	l  Listener
}

// New creates an empty journal whose categories come from reg.
func New(reg *category.Registry) *Journal {
	if reg == nil {
		reg = category.NewRegistry()
	}
	return &Journal{
		categories:  reg,
		entries:     make(map[*model.Entry]struct{}),
		startValues: make(map[string]decimal.Decimal),
	}
}

// Categories returns the registry the journal's entries are categorized with.
func (j *Journal) Categories() *category.Registry { return j.categories }

// Subscribe registers l and returns a function that removes it again.
func (j *Journal) Subscribe(l Listener) (unsubscribe func()) {
	j.nextSubID++
	id := j.nextSubID
	j.listeners = append(j.listeners, subscription{id: id, l: l})
	return func() {
		j.listeners = slices.DeleteFunc(j.listeners, func(s subscription) bool { return s.id == id })
	}
}

func (j *Journal) fire(ev Event) {
	ev.Journal = j
	// Listeners may unsubscribe while being notified.
	for _, s := range slices.Clone(j.listeners) {
		s.l.JournalChanged(ev)
	}
}

// AddEntry inserts e.
func (j *Journal) AddEntry(e *model.Entry) { j.AddEntries(e) }

// AddEntries inserts entries and fires a single EntriesAdded event. It
// returns the entries that were not already present.
func (j *Journal) AddEntries(entries ...*model.Entry) []*model.Entry {
	var added []*model.Entry
	for _, e := range entries {
		if e == nil {
			continue
		}
		if _, ok := j.entries[e]; ok {
			continue
		}
		j.entries[e] = struct{}{}
		added = append(added, e)
	}
	j.fire(Event{Kind: EntriesAdded, Entries: added})
	return added
}

// RemoveEntry removes e.
func (j *Journal) RemoveEntry(e *model.Entry) { j.RemoveEntries(e) }

// RemoveEntries removes entries and fires a single EntriesRemoved event. It
// returns the entries that were present.
func (j *Journal) RemoveEntries(entries ...*model.Entry) []*model.Entry {
	var removed []*model.Entry
	for _, e := range entries {
		if _, ok := j.entries[e]; !ok {
			continue
		}
		delete(j.entries, e)
		removed = append(removed, e)
	}
	j.fire(Event{Kind: EntriesRemoved, Entries: removed})
	return removed
}

// ReplaceEntry swaps old for replacement and fires one EntryReplaced event.
// replacement is installed even when old is absent.
func (j *Journal) ReplaceEntry(old, replacement *model.Entry) {
	if old != nil {
		delete(j.entries, old)
	}
	if replacement != nil {
		j.entries[replacement] = struct{}{}
	}
	j.fire(Event{Kind: EntryReplaced, OldEntry: old, NewEntry: replacement})
}

// Contains reports whether e itself (not an equal-looking entry) is in the journal.
func (j *Journal) Contains(e *model.Entry) bool {
	_, ok := j.entries[e]
	return ok
}

// Len returns the number of entries.
func (j *Journal) Len() int { return len(j.entries) }

// Entries returns the entries ordered by date, name and ID.
func (j *Journal) Entries() []*model.Entry {
	out := slices.Collect(maps.Keys(j.entries))
	slices.SortFunc(out, model.CompareEntries)
	return out
}

// AddReadingPoint inserts p, keeping date order, and reports whether p was new.
func (j *Journal) AddReadingPoint(p *model.ReadingPoint) bool {
	added := p != nil && !j.ContainsReadingPoint(p)
	if added {
		i, _ := slices.BinarySearchFunc(j.points, p, model.CompareReadingPoints)
		j.points = slices.Insert(j.points, i, p)
	}
	j.fire(Event{Kind: ReadingPointAdded, ReadingPoint: p})
	return added
}

// RemoveReadingPoint removes p and reports whether it was present.
func (j *Journal) RemoveReadingPoint(p *model.ReadingPoint) bool {
	i := slices.Index(j.points, p)
	if i >= 0 {
		j.points = slices.Delete(j.points, i, i+1)
	}
	j.fire(Event{Kind: ReadingPointRemoved, ReadingPoint: p})
	return i >= 0
}

// ContainsReadingPoint reports whether p itself is in the journal.
func (j *Journal) ContainsReadingPoint(p *model.ReadingPoint) bool {
	return slices.Contains(j.points, p)
}

// ReadingPoints returns the reading points in date order.
func (j *Journal) ReadingPoints() []*model.ReadingPoint {
	return slices.Clone(j.points)
}

// SetStartValue sets the opening balance of an account; nil removes it.
func (j *Journal) SetStartValue(accountID string, value *decimal.Decimal) {
	old := j.startValuePtr(accountID)
	if value == nil {
		delete(j.startValues, accountID)
	} else {
		j.startValues[accountID] = *value
	}
	j.fire(Event{
		Kind:      StartValueChanged,
		AccountID: accountID,
		OldValue:  old,
		NewValue:  j.startValuePtr(accountID),
	})
}

// StartValue returns the opening balance of an account, if one is defined.
func (j *Journal) StartValue(accountID string) (decimal.Decimal, bool) {
	v, ok := j.startValues[accountID]
	return v, ok
}

// StartValues returns a copy of all defined start values.
func (j *Journal) StartValues() map[string]decimal.Decimal {
	return maps.Clone(j.startValues)
}

func (j *Journal) startValuePtr(accountID string) *decimal.Decimal {
	v, ok := j.startValues[accountID]
	if !ok {
		return nil
	}
	return &v
}

// Name returns the journal's display name.
func (j *Journal) Name() string { return j.name }

// SetName renames the journal.
func (j *Journal) SetName(name string) {
	old := j.name
	j.name = name
	j.fire(Event{Kind: NameChanged, OldText: old, NewText: name})
}

// Description returns the journal's description.
func (j *Journal) Description() string { return j.description }

// SetDescription replaces the journal's description.
func (j *Journal) SetDescription(desc string) {
	old := j.description
	j.description = desc
	j.fire(Event{Kind: DescriptionChanged, OldText: old, NewText: desc})
}
