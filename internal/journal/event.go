package journal

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgr/internal/model"
)

// ChangeKind identifies the structural change an Event reports.
type ChangeKind int

const (
	EntriesAdded ChangeKind = iota
	EntriesRemoved
	EntryReplaced
	ReadingPointAdded
	ReadingPointRemoved
	StartValueChanged
	NameChanged
	DescriptionChanged
)

func (k ChangeKind) String() string {
	switch k {
	case EntriesAdded:
		return "entries-added"
	case EntriesRemoved:
		return "entries-removed"
	case EntryReplaced:
		return "entry-replaced"
	case ReadingPointAdded:
		return "reading-point-added"
	case ReadingPointRemoved:
		return "reading-point-removed"
	case StartValueChanged:
		return "start-value-changed"
	case NameChanged:
		return "name-changed"
	case DescriptionChanged:
		return "description-changed"
	}
	return "unknown"
}

// Event describes one committed mutation. Only the fields relevant to Kind are set.
type Event struct {
	Journal *Journal
	Kind    ChangeKind

	// EntriesAdded / EntriesRemoved: entries whose membership actually changed.
	// Empty when the call was a no-op.
	Entries []*model.Entry

	// EntryReplaced.
	OldEntry *model.Entry
	NewEntry *model.Entry

	// ReadingPointAdded / ReadingPointRemoved.
	ReadingPoint *model.ReadingPoint

	// StartValueChanged; nil means no start value.
	AccountID string
	OldValue  *decimal.Decimal
	NewValue  *decimal.Decimal

	// NameChanged / DescriptionChanged.
	OldText string
	NewText string
}

// Listener receives journal events synchronously, after the mutation is
// committed. A listener must not mutate the journal it is notified about.
type Listener interface {
	JournalChanged(ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event)

func (f ListenerFunc) JournalChanged(ev Event) { f(ev) }
