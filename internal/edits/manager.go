package edits

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/cleared-dev/ledgr/internal/journal"
)

// DefaultLimit bounds the history unless WithLimit says otherwise.
const DefaultLimit = 100

// HistoryEvent reports a change of a Manager's history.
type HistoryEvent struct {
	Manager *Manager
	Len     int
	Cursor  int
}

// HistoryListener is notified after the history changes.
type HistoryListener interface {
	HistoryChanged(ev HistoryEvent)
}

// HistoryListenerFunc adapts a function to HistoryListener.
type HistoryListenerFunc func(ev HistoryEvent)

func (f HistoryListenerFunc) HistoryChanged(ev HistoryEvent) { f(ev) }

// HistoryItem describes one edit in the history.
type HistoryItem struct {
	Description string
	Kind        Kind
	Done        bool // before the cursor: undoable
}

// Manager is the linear undo/redo history of one journal. Edits before the
// cursor are done, edits after it are undone; adding an edit drops the undone
// tail. A Manager is not safe for concurrent use.
type Manager struct {
	journal   *journal.Journal
	edits     []*Edit
	cursor    int
	limit     int
	logger    *slog.Logger
	metrics   *Metrics
	listeners []HistoryListener
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit bounds the history length; n <= 0 means unlimited.
func WithLimit(n int) Option { return func(m *Manager) { m.limit = n } }

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

// WithMetrics records history activity in m.
func WithMetrics(metrics *Metrics) Option { return func(m *Manager) { m.metrics = metrics } }

// NewManager creates the history for j.
func NewManager(j *journal.Journal, opts ...Option) *Manager {
	m := &Manager{journal: j, limit: DefaultLimit, logger: slog.Default()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Journal returns the journal this history belongs to.
func (m *Manager) Journal() *journal.Journal { return m.journal }

// Subscribe registers l for history changes.
func (m *Manager) Subscribe(l HistoryListener) {
	m.listeners = append(m.listeners, l)
}

func (m *Manager) fire() {
	m.metrics.observeLen(len(m.edits))
	ev := HistoryEvent{Manager: m, Len: len(m.edits), Cursor: m.cursor}
	for _, l := range slices.Clone(m.listeners) {
		l.HistoryChanged(ev)
	}
}

// Do applies e to the journal and records it.
func (m *Manager) Do(e *Edit) error {
	if e.journal != m.journal {
		return ErrForeignJournal
	}
	if err := e.Apply(); err != nil {
		return fmt.Errorf("applying %s: %w", e.Description(), err)
	}
	return m.AddEdit(e)
}

// AddEdit records an edit that the caller has already applied. Any undone
// edits after the cursor are discarded.
func (m *Manager) AddEdit(e *Edit) error {
	switch {
	case e.journal != m.journal:
		return ErrForeignJournal
	case e.state == dead:
		return ErrNotAlive
	case e.state != applied:
		return ErrNotApplied
	}

	for _, tail := range m.edits[m.cursor:] {
		tail.die()
	}
	m.edits = append(m.edits[:m.cursor], e)
	m.cursor++
	m.trim()

	m.metrics.observeEdit(e.kind)
	m.logger.Debug("edit recorded", "kind", e.kind.String(), "edit", e.Description(), "history", len(m.edits))
	m.fire()
	return nil
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	return m.cursor > 0 && m.edits[m.cursor-1].CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.edits) && m.edits[m.cursor].CanRedo()
}

// Undo reverts the edit before the cursor and moves the cursor back.
func (m *Manager) Undo() error {
	if m.cursor == 0 {
		return ErrCannotUndo
	}
	e := m.edits[m.cursor-1]
	if err := e.Undo(); err != nil {
		return err
	}
	m.cursor--
	m.metrics.observeUndo()
	m.logger.Debug("edit undone", "edit", e.Description(), "cursor", m.cursor)
	m.fire()
	return nil
}

// Redo re-applies the edit after the cursor and moves the cursor forward.
func (m *Manager) Redo() error {
	if m.cursor >= len(m.edits) {
		return ErrCannotRedo
	}
	e := m.edits[m.cursor]
	if err := e.Redo(); err != nil {
		return err
	}
	m.cursor++
	m.metrics.observeRedo()
	m.logger.Debug("edit redone", "edit", e.Description(), "cursor", m.cursor)
	m.fire()
	return nil
}

// UndoDescription labels the pending undo, or "" when there is none.
func (m *Manager) UndoDescription() string {
	if !m.CanUndo() {
		return ""
	}
	return m.edits[m.cursor-1].UndoDescription()
}

// RedoDescription labels the pending redo, or "" when there is none.
func (m *Manager) RedoDescription() string {
	if !m.CanRedo() {
		return ""
	}
	return m.edits[m.cursor].RedoDescription()
}

// DiscardAllEdits empties the history. The journal keeps its state.
func (m *Manager) DiscardAllEdits() {
	for _, e := range m.edits {
		e.die()
	}
	m.edits = nil
	m.cursor = 0
	m.fire()
}

// SetLimit bounds the history length, trimming oldest edits first; n <= 0
// means unlimited.
func (m *Manager) SetLimit(n int) {
	m.limit = n
	m.trim()
	m.fire()
}

// Limit returns the current history bound.
func (m *Manager) Limit() int { return m.limit }

// Len returns the number of edits in the history.
func (m *Manager) Len() int { return len(m.edits) }

// Cursor returns the number of done edits.
func (m *Manager) Cursor() int { return m.cursor }

// History describes every edit, oldest first.
func (m *Manager) History() []HistoryItem {
	out := make([]HistoryItem, len(m.edits))
	for i, e := range m.edits {
		out[i] = HistoryItem{Description: e.Description(), Kind: e.kind, Done: i < m.cursor}
	}
	return out
}

// trim drops the oldest done edits first, then undone edits from the end.
func (m *Manager) trim() {
	if m.limit <= 0 {
		return
	}
	for len(m.edits) > m.limit && m.cursor > 0 {
		m.edits[0].die()
		m.edits = m.edits[1:]
		m.cursor--
	}
	for len(m.edits) > m.limit {
		last := len(m.edits) - 1
		m.edits[last].die()
		m.edits = m.edits[:last]
	}
}
