// Package document converts a journal to and from its structured YAML form.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgr/internal/category"
	"github.com/cleared-dev/ledgr/internal/journal"
	"github.com/cleared-dev/ledgr/internal/model"
)

// Version is written into every document.
const Version = 1

// ErrVersion is returned for documents written by a newer ledgr.
var ErrVersion = errors.New("unsupported document version")

// Document is the persisted form of a journal.
type Document struct {
	Version       int               `yaml:"version"`
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description,omitempty"`
	StartValues   map[string]string `yaml:"start_values,omitempty"`
	ReadingPoints []ReadingPoint    `yaml:"reading_points,omitempty"`
	Entries       []Entry           `yaml:"entries"`
}

// Entry is one journal entry. Values are decimal strings so no precision is
// lost in YAML.
type Entry struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Value          string            `yaml:"value"`
	Currency       string            `yaml:"currency"`
	Date           string            `yaml:"date"`
	Category       []string          `yaml:"category,flow"`
	Account        string            `yaml:"account"`
	AccountInfo    map[string]string `yaml:"account_info,omitempty"`
	AdditionalInfo string            `yaml:"additional_info,omitempty"`
}

// ReadingPoint is one reading point.
type ReadingPoint struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Date    string `yaml:"date"`
	Visible bool   `yaml:"visible"`
	Active  bool   `yaml:"active"`
}

// FromJournal captures the current state of j.
func FromJournal(j *journal.Journal) *Document {
	doc := &Document{
		Version:     Version,
		Name:        j.Name(),
		Description: j.Description(),
		Entries:     []Entry{},
	}
	if sv := j.StartValues(); len(sv) > 0 {
		doc.StartValues = make(map[string]string, len(sv))
		for id, v := range sv {
			doc.StartValues[id] = v.String()
		}
	}
	for _, p := range j.ReadingPoints() {
		doc.ReadingPoints = append(doc.ReadingPoints, ReadingPoint{
			ID:      p.ID(),
			Name:    p.Name(),
			Date:    formatDate(p.Date()),
			Visible: p.Visible(),
			Active:  p.Active(),
		})
	}
	for _, e := range j.Entries() {
		var path []string
		if c := e.Category(); c != nil {
			path = c.Path()
		}
		info := e.AccountInfo()
		if len(info) == 0 {
			info = nil
		}
		doc.Entries = append(doc.Entries, Entry{
			ID:             e.ID(),
			Name:           e.Name(),
			Value:          e.Value().String(),
			Currency:       e.Currency(),
			Date:           formatDate(e.Date()),
			Category:       path,
			Account:        e.AccountID(),
			AccountInfo:    info,
			AdditionalInfo: e.AdditionalInfo(),
		})
	}
	return doc
}

// Journal rebuilds a journal whose categories are interned in reg. A nil reg
// starts a fresh registry.
func (d *Document) Journal(reg *category.Registry) (*journal.Journal, error) {
	if d.Version > Version {
		return nil, fmt.Errorf("%w %d", ErrVersion, d.Version)
	}
	if reg == nil {
		reg = category.NewRegistry()
	}
	j := journal.New(reg)
	j.SetName(d.Name)
	j.SetDescription(d.Description)

	for _, id := range slices.Sorted(maps.Keys(d.StartValues)) {
		v, err := decimal.NewFromString(d.StartValues[id])
		if err != nil {
			return nil, fmt.Errorf("start value of %s: %w", id, err)
		}
		j.SetStartValue(id, &v)
	}

	for i, rp := range d.ReadingPoints {
		date, err := parseDate(rp.Date)
		if err != nil {
			return nil, fmt.Errorf("reading point %d (%s): %w", i, rp.Name, err)
		}
		j.AddReadingPoint(model.NewReadingPoint(model.ReadingPointParams{
			ID:      rp.ID,
			Name:    rp.Name,
			Date:    date,
			Visible: rp.Visible,
			Active:  rp.Active,
		}))
	}

	entries := make([]*model.Entry, 0, len(d.Entries))
	for i, de := range d.Entries {
		e, err := de.entry(reg)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, de.Name, err)
		}
		entries = append(entries, e)
	}
	j.AddEntries(entries...)
	return j, nil
}

func (de Entry) entry(reg *category.Registry) (*model.Entry, error) {
	value, err := decimal.NewFromString(de.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing value %q: %w", de.Value, err)
	}
	date, err := parseDate(de.Date)
	if err != nil {
		return nil, err
	}
	c, err := reg.Get(de.Category...)
	if err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}
	return model.NewEntry(model.EntryParams{
		ID:             de.ID,
		Name:           de.Name,
		Value:          value,
		Currency:       de.Currency,
		Date:           date,
		Category:       c,
		AccountID:      de.Account,
		AccountInfo:    de.AccountInfo,
		AdditionalInfo: de.AdditionalInfo,
	}), nil
}

// Dates without a time of day are written as 2006-01-02.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Location() == time.UTC && t.Equal(t.Truncate(24*time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339Nano)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Read decodes a document.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{Version: Version, Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &doc, nil
}

// Write encodes d.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return enc.Close()
}

// Marshal returns d as YAML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Save writes d to path, replacing it atomically.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}
