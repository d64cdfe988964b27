package balance

import (
	"log/slog"

	"github.com/cleared-dev/ledgr/internal/journal"
)

// Tracker keeps a snapshot current as its journal changes. Additions are
// folded in incrementally; removals and replacements trigger a rebuild.
type Tracker struct {
	journal     *journal.Journal
	info        *Info
	rebuilds    int
	logger      *slog.Logger
	unsubscribe func()
}

// NewTracker builds the initial snapshot and subscribes to j.
func NewTracker(j *journal.Journal, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{journal: j, info: FromJournal(j), logger: logger}
	t.unsubscribe = j.Subscribe(t)
	return t
}

// JournalChanged implements journal.Listener.
func (t *Tracker) JournalChanged(ev journal.Event) {
	switch ev.Kind {
	case journal.EntriesAdded:
		for _, e := range ev.Entries {
			t.info.add(e)
		}
	case journal.EntriesRemoved:
		if len(ev.Entries) > 0 {
			t.Rebuild()
		}
	case journal.EntryReplaced:
		t.Rebuild()
	}
}

// Rebuild recomputes the snapshot from the journal.
func (t *Tracker) Rebuild() {
	t.info = FromJournal(t.journal)
	t.rebuilds++
	t.logger.Debug("balance rebuilt", "entries", t.journal.Len(), "rebuilds", t.rebuilds)
}

// Snapshot returns a copy of the current sums.
func (t *Tracker) Snapshot() *Info { return t.info.Clone() }

// Rebuilds returns how many full rebuilds have happened.
func (t *Tracker) Rebuilds() int { return t.rebuilds }

// Close stops tracking the journal.
func (t *Tracker) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}
