package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReadingPoint is a named, dated marker delimiting a reporting period.
// Active points have balances computed up to their date.
type ReadingPoint struct {
	id      string
	name    string
	date    time.Time
	visible bool
	active  bool
}

// ReadingPointParams holds the fields of a reading point.
type ReadingPointParams struct {
	ID      string // generated when empty
	Name    string
	Date    time.Time
	Visible bool
	Active  bool
}

// NewReadingPoint builds an immutable ReadingPoint.
func NewReadingPoint(p ReadingPointParams) *ReadingPoint {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &ReadingPoint{id: id, name: p.Name, date: p.Date, visible: p.Visible, active: p.Active}
}

func (p *ReadingPoint) ID() string      { return p.id }
func (p *ReadingPoint) Name() string    { return p.name }
func (p *ReadingPoint) Date() time.Time { return p.date }
func (p *ReadingPoint) Visible() bool   { return p.visible }
func (p *ReadingPoint) Active() bool    { return p.active }

// CompareReadingPoints orders by date, then name, then ID.
func CompareReadingPoints(a, b *ReadingPoint) int {
	if c := a.date.Compare(b.date); c != 0 {
		return c
	}
	if c := strings.Compare(a.name, b.name); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}
