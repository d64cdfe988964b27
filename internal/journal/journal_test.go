package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/model"
)

// recorder collects events for assertions.
type recorder struct {
	events []Event
}

func (r *recorder) JournalChanged(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) last(t *testing.T) Event {
	t.Helper()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEntry(j *Journal, name, value string, path ...string) *model.Entry {
	return model.NewEntry(model.EntryParams{
		Name:      name,
		Value:     dec(value),
		Currency:  "EUR",
		Date:      date(2025, 1, 15),
		Category:  j.Categories().MustGet(path...),
		AccountID: "cash",
	})
}

func newJournal(t *testing.T) (*Journal, *recorder) {
	t.Helper()
	j := New(category.NewRegistry())
	rec := &recorder{}
	j.Subscribe(rec)
	return j, rec
}

func TestAddEntries_FiresOneBatchedEvent(t *testing.T) {
	j, rec := newJournal(t)
	a := newEntry(j, "A", "100", "Income", "Sales")
	b := newEntry(j, "B", "50", "Income", "Donations")

	j.AddEntries(a, b)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, EntriesAdded, ev.Kind)
	assert.Same(t, j, ev.Journal)
	assert.ElementsMatch(t, []*model.Entry{a, b}, ev.Entries)
	assert.Equal(t, 2, j.Len())
}

func TestAddEntry_NonStrict(t *testing.T) {
	j, rec := newJournal(t)
	a := newEntry(j, "A", "100", "Income")
	j.AddEntry(a)
	j.AddEntry(a)

	assert.Equal(t, 1, j.Len(), "same instance is stored once")
	require.Len(t, rec.events, 2, "the no-op still notifies")
	assert.Empty(t, rec.last(t).Entries)
}

func TestBatch_ReturnsChanged(t *testing.T) {
	j, _ := newJournal(t)
	a := newEntry(j, "A", "1", "x")
	b := newEntry(j, "B", "2", "x")
	absent := newEntry(j, "C", "3", "x")

	assert.Equal(t, []*model.Entry{a}, j.AddEntries(a))
	assert.Equal(t, []*model.Entry{b}, j.AddEntries(a, b))
	assert.Equal(t, []*model.Entry{b}, j.RemoveEntries(b, absent))
	assert.Empty(t, j.RemoveEntries(absent))

	p := model.NewReadingPoint(model.ReadingPointParams{Name: "Q1", Date: date(2025, 3, 31)})
	assert.True(t, j.AddReadingPoint(p))
	assert.False(t, j.AddReadingPoint(p))
	assert.True(t, j.RemoveReadingPoint(p))
	assert.False(t, j.RemoveReadingPoint(p))
}

func TestAddEntry_DuplicateLookingEntriesAreDistinct(t *testing.T) {
	j, _ := newJournal(t)
	p := model.EntryParams{Name: "Dues", Value: dec("10"), Category: j.Categories().Root()}
	j.AddEntries(model.NewEntry(p), model.NewEntry(p))
	assert.Equal(t, 2, j.Len())
}

func TestRemoveEntries(t *testing.T) {
	j, rec := newJournal(t)
	a := newEntry(j, "A", "1", "x")
	b := newEntry(j, "B", "2", "x")
	absent := newEntry(j, "C", "3", "x")
	j.AddEntries(a, b)

	j.RemoveEntries(a, absent)

	ev := rec.last(t)
	assert.Equal(t, EntriesRemoved, ev.Kind)
	assert.Equal(t, []*model.Entry{a}, ev.Entries)
	assert.False(t, j.Contains(a))
	assert.True(t, j.Contains(b))

	j.RemoveEntry(absent)
	assert.Equal(t, EntriesRemoved, rec.last(t).Kind)
	assert.Empty(t, rec.last(t).Entries)
	assert.Equal(t, 1, j.Len())
}

func TestReplaceEntry(t *testing.T) {
	j, rec := newJournal(t)
	old := newEntry(j, "Old", "1", "x")
	repl := newEntry(j, "New", "2", "x")
	j.AddEntry(old)
	rec.events = nil

	j.ReplaceEntry(old, repl)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, EntryReplaced, ev.Kind)
	assert.Same(t, old, ev.OldEntry)
	assert.Same(t, repl, ev.NewEntry)
	assert.False(t, j.Contains(old))
	assert.True(t, j.Contains(repl))
}

func TestReplaceEntry_AbsentOldStillInstallsNew(t *testing.T) {
	j, _ := newJournal(t)
	old := newEntry(j, "Old", "1", "x")
	repl := newEntry(j, "New", "2", "x")

	j.ReplaceEntry(old, repl)

	assert.Equal(t, 1, j.Len())
	assert.True(t, j.Contains(repl))
}

func TestEntries_Ordered(t *testing.T) {
	j, _ := newJournal(t)
	late := model.NewEntry(model.EntryParams{Name: "late", Date: date(2025, 2, 1)})
	early := model.NewEntry(model.EntryParams{Name: "early", Date: date(2025, 1, 1)})
	j.AddEntries(late, early)

	assert.Equal(t, []*model.Entry{early, late}, j.Entries())
}

func TestReadingPoints(t *testing.T) {
	j, rec := newJournal(t)
	q2 := model.NewReadingPoint(model.ReadingPointParams{Name: "Q2", Date: date(2025, 6, 30), Active: true})
	q1 := model.NewReadingPoint(model.ReadingPointParams{Name: "Q1", Date: date(2025, 3, 31), Active: true})
	q3 := model.NewReadingPoint(model.ReadingPointParams{Name: "Q3", Date: date(2025, 9, 30)})

	j.AddReadingPoint(q2)
	j.AddReadingPoint(q3)
	j.AddReadingPoint(q1)
	j.AddReadingPoint(q1)

	assert.Equal(t, []*model.ReadingPoint{q1, q2, q3}, j.ReadingPoints())
	assert.Len(t, rec.events, 4)
	assert.Equal(t, ReadingPointAdded, rec.last(t).Kind)
	assert.Same(t, q1, rec.last(t).ReadingPoint)

	j.RemoveReadingPoint(q2)
	j.RemoveReadingPoint(q2)
	assert.Equal(t, []*model.ReadingPoint{q1, q3}, j.ReadingPoints())
	assert.Equal(t, ReadingPointRemoved, rec.last(t).Kind)
	assert.False(t, j.ContainsReadingPoint(q2))
}

func TestSetStartValue(t *testing.T) {
	j, rec := newJournal(t)

	v := dec("250.00")
	j.SetStartValue("cash", &v)
	ev := rec.last(t)
	assert.Equal(t, StartValueChanged, ev.Kind)
	assert.Equal(t, "cash", ev.AccountID)
	assert.Nil(t, ev.OldValue)
	require.NotNil(t, ev.NewValue)
	assert.True(t, ev.NewValue.Equal(v))

	got, ok := j.StartValue("cash")
	require.True(t, ok)
	assert.True(t, got.Equal(v))

	j.SetStartValue("cash", nil)
	ev = rec.last(t)
	require.NotNil(t, ev.OldValue)
	assert.True(t, ev.OldValue.Equal(v))
	assert.Nil(t, ev.NewValue)
	_, ok = j.StartValue("cash")
	assert.False(t, ok)
	assert.Empty(t, j.StartValues())
}

func TestSetNameAndDescription(t *testing.T) {
	j, rec := newJournal(t)

	j.SetName("Club 2025")
	assert.Equal(t, Event{Journal: j, Kind: NameChanged, NewText: "Club 2025"}, rec.last(t))

	j.SetDescription("Annual accounts")
	j.SetDescription("Accounts")
	assert.Equal(t, Event{Journal: j, Kind: DescriptionChanged, OldText: "Annual accounts", NewText: "Accounts"}, rec.last(t))
	assert.Equal(t, "Club 2025", j.Name())
	assert.Equal(t, "Accounts", j.Description())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	j := New(nil)
	var calls int
	unsubscribe := j.Subscribe(ListenerFunc(func(Event) { calls++ }))

	j.SetName("a")
	unsubscribe()
	j.SetName("b")

	assert.Equal(t, 1, calls)
}

func TestSubscribe_NotifiedAfterCommit(t *testing.T) {
	j := New(nil)
	e := newEntry(j, "A", "1", "x")
	var sawEntry bool
	j.Subscribe(ListenerFunc(func(ev Event) { sawEntry = ev.Journal.Contains(e) }))

	j.AddEntry(e)
	assert.True(t, sawEntry)
}

func TestChangeKind_String(t *testing.T) {
	assert.Equal(t, "entries-added", EntriesAdded.String())
	assert.Equal(t, "description-changed", DescriptionChanged.String())
	assert.Equal(t, "unknown", ChangeKind(99).String())
}
