// Package edits records reversible journal mutations and replays them for undo/redo.
package edits

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

// Kind is the closed set of edit variants.
type Kind int

const (
	KindEntrySet Kind = iota
	KindEntryReplace
	KindReadingPoint
	KindStartValue
	KindName
	KindDescription
)

func (k Kind) String() string {
	switch k {
	case KindEntrySet:
		return "entry-set"
	case KindEntryReplace:
		return "entry-replace"
	case KindReadingPoint:
		return "reading-point"
	case KindStartValue:
		return "start-value"
	case KindName:
		return "name"
	case KindDescription:
		return "description"
	}
	return "unknown"
}

type state int

const (
	unapplied state = iota
	applied
	undone
	dead
)

// Edit is one reversible journal mutation. It carries only what it needs to
// apply and invert itself; only the fields of its Kind are set.
type Edit struct {
	kind    Kind
	journal *journal.Journal
	state   state

	adding bool // KindEntrySet, KindReadingPoint

	entries []*model.Entry // KindEntrySet

	// changed holds what the last forward pass actually added or removed;
	// backward inverts only that. Unset for edits applied outside Apply.
	tracked      bool
	changed      []*model.Entry
	pointChanged bool

	oldEntry *model.Entry // KindEntryReplace
	newEntry *model.Entry

	point *model.ReadingPoint // KindReadingPoint

	accountID string // KindStartValue; nil values mean "no start value"
	oldValue  *decimal.Decimal
	newValue  *decimal.Decimal

	oldText string // KindName, KindDescription
	newText string
}

// AddEntries records adding a batch of entries.
func AddEntries(j *journal.Journal, entries ...*model.Entry) *Edit {
	return &Edit{kind: KindEntrySet, journal: j, adding: true, entries: entries}
}

// RemoveEntries records removing a batch of entries.
func RemoveEntries(j *journal.Journal, entries ...*model.Entry) *Edit {
	return &Edit{kind: KindEntrySet, journal: j, entries: entries}
}

// ReplaceEntry records swapping old for replacement.
func ReplaceEntry(j *journal.Journal, old, replacement *model.Entry) *Edit {
	return &Edit{kind: KindEntryReplace, journal: j, oldEntry: old, newEntry: replacement}
}

// AddReadingPoint records adding a reading point.
func AddReadingPoint(j *journal.Journal, p *model.ReadingPoint) *Edit {
	return &Edit{kind: KindReadingPoint, journal: j, adding: true, point: p}
}

// RemoveReadingPoint records removing a reading point.
func RemoveReadingPoint(j *journal.Journal, p *model.ReadingPoint) *Edit {
	return &Edit{kind: KindReadingPoint, journal: j, point: p}
}

// SetStartValue records changing an account's start value; the current
// value is captured as the old one. A nil value removes the start value.
func SetStartValue(j *journal.Journal, accountID string, value *decimal.Decimal) *Edit {
	e := &Edit{kind: KindStartValue, journal: j, accountID: accountID, newValue: copyDec(value)}
	if j != nil {
		if v, ok := j.StartValue(accountID); ok {
			e.oldValue = &v
		}
	}
	return e
}

// Rename records renaming the journal.
func Rename(j *journal.Journal, name string) *Edit {
	e := &Edit{kind: KindName, journal: j, newText: name}
	if j != nil {
		e.oldText = j.Name()
	}
	return e
}

// Describe records changing the journal's description.
func Describe(j *journal.Journal, desc string) *Edit {
	e := &Edit{kind: KindDescription, journal: j, newText: desc}
	if j != nil {
		e.oldText = j.Description()
	}
	return e
}

func copyDec(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Kind returns the edit's variant.
func (e *Edit) Kind() Kind { return e.kind }

// Journal returns the journal the edit targets.
func (e *Edit) Journal() *journal.Journal { return e.journal }

// Entries returns the entries of an entry-set edit.
func (e *Edit) Entries() []*model.Entry { return e.entries }

// Apply performs the edit for the first time, or again after an undo.
func (e *Edit) Apply() error {
	switch {
	case e.state == dead:
		return ErrNotAlive
	case e.journal == nil:
		return ErrNoJournal
	case e.state == applied:
		return ErrAlreadyApplied
	}
	e.forward()
	e.state = applied
	return nil
}

// CanUndo reports whether Undo would succeed.
func (e *Edit) CanUndo() bool { return e.state == applied && e.journal != nil }

// CanRedo reports whether Redo would succeed.
func (e *Edit) CanRedo() bool { return e.state == undone && e.journal != nil }

// Undo reverts the edit on its journal.
func (e *Edit) Undo() error {
	if e.state == dead {
		return fmt.Errorf("undo %s: %w", e.Description(), ErrNotAlive)
	}
	if !e.CanUndo() {
		return fmt.Errorf("undo %s: %w", e.Description(), ErrCannotUndo)
	}
	e.backward()
	e.state = undone
	return nil
}

// Redo re-applies an undone edit.
func (e *Edit) Redo() error {
	if e.state == dead {
		return fmt.Errorf("redo %s: %w", e.Description(), ErrNotAlive)
	}
	if !e.CanRedo() {
		return fmt.Errorf("redo %s: %w", e.Description(), ErrCannotRedo)
	}
	e.forward()
	e.state = applied
	return nil
}

// die makes the edit terminal; used when it leaves the history.
func (e *Edit) die() { e.state = dead }

func (e *Edit) forward() {
	j := e.journal
	switch e.kind {
	case KindEntrySet:
		if e.adding {
			e.changed = j.AddEntries(e.entries...)
		} else {
			e.changed = j.RemoveEntries(e.entries...)
		}
		e.tracked = true
	case KindEntryReplace:
		j.ReplaceEntry(e.oldEntry, e.newEntry)
	case KindReadingPoint:
		if e.adding {
			e.pointChanged = j.AddReadingPoint(e.point)
		} else {
			e.pointChanged = j.RemoveReadingPoint(e.point)
		}
		e.tracked = true
	case KindStartValue:
		j.SetStartValue(e.accountID, e.newValue)
	case KindName:
		j.SetName(e.newText)
	case KindDescription:
		j.SetDescription(e.newText)
	}
}

func (e *Edit) backward() {
	j := e.journal
	switch e.kind {
	case KindEntrySet:
		entries := e.entries
		if e.tracked {
			entries = e.changed
		}
		if e.adding {
			j.RemoveEntries(entries...)
		} else {
			j.AddEntries(entries...)
		}
	case KindEntryReplace:
		j.ReplaceEntry(e.newEntry, e.oldEntry)
	case KindReadingPoint:
		switch {
		case e.tracked && !e.pointChanged:
			// membership of p did not change
		case e.adding:
			j.RemoveReadingPoint(e.point)
		default:
			j.AddReadingPoint(e.point)
		}
	case KindStartValue:
		j.SetStartValue(e.accountID, e.oldValue)
	case KindName:
		j.SetName(e.oldText)
	case KindDescription:
		j.SetDescription(e.oldText)
	}
}
