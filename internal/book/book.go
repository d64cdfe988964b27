// Package book ties a journal to its category registry, undo history,
// running balance and accounts. Every change made through a Book is an edit
// in its history.
package book

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/accounts"
	"github.com/cleared-dev/ledgr/internal/balance"
	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/edits"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

var (
	ErrRejected       = errors.New("entries rejected")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrPointNotFound  = errors.New("reading point not found")
	ErrUnknownAccount = errors.New("unknown account")
)

// RejectedError carries the violations that blocked a change.
type RejectedError struct {
	Problems []journal.ValidationError
}

func (e *RejectedError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Critical {
			msgs = append(msgs, p.Error())
		}
	}
	return fmt.Sprintf("%s: %s", ErrRejected, strings.Join(msgs, "; "))
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// Auditor records what happened to the history.
type Auditor interface {
	Record(action, description string) error
}

// Book is the working set for one journal. It is not safe for concurrent use.
type Book struct {
	journal  *journal.Journal
	history  *edits.Manager
	tracker  *balance.Tracker
	accounts *accounts.Service
	currency string
	logger   *slog.Logger
	auditor  Auditor
}

type options struct {
	limit    int
	logger   *slog.Logger
	metrics  *edits.Metrics
	auditor  Auditor
	currency string
}

// Option configures a Book.
type Option func(*options)

// WithHistoryLimit bounds the undo history; n <= 0 means unlimited.
func WithHistoryLimit(n int) Option { return func(o *options) { o.limit = n } }

// WithLogger sets the logger shared by the history and the balance tracker.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMetrics records history activity.
func WithMetrics(m *edits.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithAuditor records every do, undo and redo.
func WithAuditor(a Auditor) Option { return func(o *options) { o.auditor = a } }

// WithCurrency sets the currency used when an entry is given none.
func WithCurrency(c string) Option { return func(o *options) { o.currency = c } }

// New wraps j. A nil j starts an empty journal; nil accts uses the default accounts.
func New(j *journal.Journal, accts *accounts.Service, opts ...Option) (*Book, error) {
	o := options{limit: edits.DefaultLimit, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if j == nil {
		j = journal.New(category.NewRegistry())
	}
	if accts == nil {
		var err error
		if accts, err = accounts.NewService(accounts.DefaultAccounts()); err != nil {
			return nil, fmt.Errorf("default accounts: %w", err)
		}
	}

	b := &Book{
		journal:  j,
		accounts: accts,
		currency: o.currency,
		logger:   o.logger,
		auditor:  o.auditor,
		tracker:  balance.NewTracker(j, o.logger),
		history: edits.NewManager(j,
			edits.WithLimit(o.limit),
			edits.WithLogger(o.logger),
			edits.WithMetrics(o.metrics),
		),
	}
	return b, nil
}

// Close detaches the balance tracker from the journal.
func (b *Book) Close() { b.tracker.Close() }

func (b *Book) Journal() *journal.Journal            { return b.journal }
func (b *Book) History() *edits.Manager              { return b.history }
func (b *Book) Accounts() *accounts.Service          { return b.accounts }
func (b *Book) Categories() *category.Registry       { return b.journal.Categories() }
func (b *Book) Currency() string                     { return b.currency }
func (b *Book) Balance() *balance.Info               { return b.tracker.Snapshot() }
func (b *Book) Periods() []balance.Period            { return balance.Periods(b.journal) }
func (b *Book) Entries() []*model.Entry              { return b.journal.Entries() }
func (b *Book) ReadingPoints() []*model.ReadingPoint { return b.journal.ReadingPoints() }

// Entry finds an entry by ID or by a unique ID prefix.
func (b *Book) Entry(id string) (*model.Entry, error) {
	var found *model.Entry
	for _, e := range b.journal.Entries() {
		if e.ID() == id {
			return e, nil
		}
		if id != "" && strings.HasPrefix(e.ID(), id) {
			if found != nil {
				return nil, fmt.Errorf("%w: prefix %q is ambiguous", ErrEntryNotFound, id)
			}
			found = e
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return found, nil
}

// ReadingPoint finds a reading point by ID or name.
func (b *Book) ReadingPoint(key string) (*model.ReadingPoint, error) {
	for _, p := range b.journal.ReadingPoints() {
		if p.ID() == key || p.Name() == key {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPointNotFound, key)
}

// NewEntry builds an entry categorized in this book's registry. The category
// is given in display form ("Income:Sales").
func (b *Book) NewEntry(p model.EntryParams, categoryPath string) (*model.Entry, error) {
	c, err := b.Categories().Parse(categoryPath)
	if err != nil {
		return nil, fmt.Errorf("parsing category: %w", err)
	}
	p.Category = c
	if p.Currency == "" {
		p.Currency = b.currency
	}
	return model.NewEntry(p), nil
}

// check validates entries and fails on critical violations. Non-critical
// violations are returned as warnings.
func (b *Book) check(entries []*model.Entry) ([]journal.ValidationError, error) {
	problems := b.journal.ValidateEntries(entries, b.accounts)
	if journal.HasCritical(problems) {
		return problems, &RejectedError{Problems: problems}
	}
	for _, p := range problems {
		b.logger.Warn("entry accepted with warning", "entry", p.EntryID, "rule", p.Rule, "error", p.Err)
	}
	return problems, nil
}

// AddEntries validates entries and adds them as one undoable edit.
func (b *Book) AddEntries(entries ...*model.Entry) ([]journal.ValidationError, error) {
	warnings, err := b.check(entries)
	if err != nil {
		return warnings, err
	}
	return warnings, b.do(edits.AddEntries(b.journal, entries...))
}

// RemoveEntries removes entries as one undoable edit.
func (b *Book) RemoveEntries(entries ...*model.Entry) error {
	for _, e := range entries {
		if !b.journal.Contains(e) {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, e.ID())
		}
	}
	return b.do(edits.RemoveEntries(b.journal, entries...))
}

// ReplaceEntry swaps old for replacement after validating replacement.
func (b *Book) ReplaceEntry(old, replacement *model.Entry) ([]journal.ValidationError, error) {
	if !b.journal.Contains(old) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, old.ID())
	}
	warnings, err := b.check([]*model.Entry{replacement})
	if err != nil {
		return warnings, err
	}
	return warnings, b.do(edits.ReplaceEntry(b.journal, old, replacement))
}

// AddReadingPoint adds p as an undoable edit.
func (b *Book) AddReadingPoint(p *model.ReadingPoint) error {
	return b.do(edits.AddReadingPoint(b.journal, p))
}

// RemoveReadingPoint removes p as an undoable edit.
func (b *Book) RemoveReadingPoint(p *model.ReadingPoint) error {
	if !b.journal.ContainsReadingPoint(p) {
		return fmt.Errorf("%w: %s", ErrPointNotFound, p.Name())
	}
	return b.do(edits.RemoveReadingPoint(b.journal, p))
}

// SetStartValue changes an account's opening balance; nil clears it.
func (b *Book) SetStartValue(accountID string, value *decimal.Decimal) error {
	if !b.accounts.Exists(accountID) {
		return fmt.Errorf("%w %q", ErrUnknownAccount, accountID)
	}
	return b.do(edits.SetStartValue(b.journal, accountID, value))
}

// Rename changes the journal's name.
func (b *Book) Rename(name string) error {
	return b.do(edits.Rename(b.journal, name))
}

// Describe changes the journal's description.
func (b *Book) Describe(desc string) error {
	return b.do(edits.Describe(b.journal, desc))
}

// Undo reverts the most recent edit and returns its description.
func (b *Book) Undo() (string, error) {
	desc := b.history.UndoDescription()
	if err := b.history.Undo(); err != nil {
		return "", err
	}
	b.audit("undo", desc)
	return desc, nil
}

// Redo re-applies the most recently undone edit and returns its description.
func (b *Book) Redo() (string, error) {
	desc := b.history.RedoDescription()
	if err := b.history.Redo(); err != nil {
		return "", err
	}
	b.audit("redo", desc)
	return desc, nil
}

func (b *Book) do(e *edits.Edit) error {
	if err := b.history.Do(e); err != nil {
		return err
	}
	b.audit("do", e.Description())
	return nil
}

func (b *Book) audit(action, desc string) {
	if b.auditor == nil {
		return
	}
	if err := b.auditor.Record(action, desc); err != nil {
		b.logger.Warn("failed to write audit log", "action", action, "error", err)
	}
}
