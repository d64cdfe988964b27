package balance

import (
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

// Period is the balance of a journal up to an active reading point.
type Period struct {
	Point *model.ReadingPoint
	Info  *Info
}

// Periods returns one snapshot per active reading point, in date order,
// each folding the entries dated on or before the point.
func Periods(j *journal.Journal) []Period {
	entries := j.Entries() // date order
	var (
		out  []Period
		info = New()
		next int
	)
	for _, p := range j.ReadingPoints() {
		for next < len(entries) && !entries[next].Date().After(p.Date()) {
			info.add(entries[next])
			next++
		}
		if p.Active() {
			out = append(out, Period{Point: p, Info: info.Clone()})
		}
	}
	return out
}
