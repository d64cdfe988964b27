// Package auditlog keeps a CSV trail of the edits made to a journal.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Record is one row in the audit log.
type Record struct {
	Timestamp   time.Time
	Source      string // cli, shell, http
	Action      string // do, undo, redo
	Description string
	Journal     string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,source,action,description,journal"

const (
	numFields      = 5
	logDir         = "logs"
	logFile        = "logs/audit-log.csv"
	colTimestamp   = 0
	colSource      = 1
	colAction      = 2
	colDescription = 3
	colJournal     = 4
)

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r Record) []string {
	row := make([]string, numFields)
	row[colTimestamp] = r.Timestamp.UTC().Format(time.RFC3339)
	row[colSource] = r.Source
	row[colAction] = r.Action
	row[colDescription] = r.Description
	row[colJournal] = r.Journal
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[colTimestamp])
	if err != nil {
		return Record{}, fmt.Errorf("parsing timestamp %q: %w", row[colTimestamp], err)
	}
	return Record{
		Timestamp:   ts,
		Source:      row[colSource],
		Action:      row[colAction],
		Description: row[colDescription],
		Journal:     row[colJournal],
	}, nil
}

// Append writes records to <root>/logs/audit-log.csv, creating the file and
// header if needed.
func Append(root string, records []Record) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, r := range records {
		if err := cw.Write(MarshalRecord(r)); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all records from <root>/logs/audit-log.csv, or nil if the
// file does not exist.
func Read(root string) ([]Record, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var records []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Log appends one record per history action. It satisfies book.Auditor.
type Log struct {
	root    string
	source  string
	journal func() string
	now     func() time.Time
}

// New returns a Log writing under root. journal reports the current journal
// name at the time of each record.
func New(root, source string, journal func() string) *Log {
	return &Log{root: root, source: source, journal: journal, now: time.Now}
}

// Record appends a single action.
func (l *Log) Record(action, description string) error {
	var name string
	if l.journal != nil {
		name = l.journal()
	}
	return Append(l.root, []Record{{
		Timestamp:   l.now(),
		Source:      l.source,
		Action:      action,
		Description: description,
		Journal:     name,
	}})
}
