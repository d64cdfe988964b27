package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// csvParser reads exports with a header row and fixed column positions.
// Columns set to -1 are absent.
type csvParser struct {
	format     string
	dateLayout string
	fields     int
	colDate    int
	colDesc    int
	colAmount  int
	colType    int
}

// ChaseParser parses Chase checking exports:
// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
func ChaseParser() Parser {
	return &csvParser{
		format:     "chase",
		dateLayout: "01/02/2006",
		fields:     7,
		colDate:    1,
		colDesc:    2,
		colAmount:  3,
		colType:    4,
	}
}

// SimpleParser parses date,description,amount with ISO dates.
func SimpleParser() Parser {
	return &csvParser{
		format:     "simple",
		dateLayout: time.DateOnly,
		fields:     3,
		colDate:    0,
		colDesc:    1,
		colAmount:  2,
		colType:    -1,
	}
}

func (p *csvParser) Format() string { return p.format }

func (p *csvParser) Parse(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = p.fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", p.format, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []Transaction
	for i, rec := range records[1:] {
		txn, err := p.row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (p *csvParser) row(rec []string) (Transaction, error) {
	date, err := time.Parse(p.dateLayout, strings.TrimSpace(rec[p.colDate]))
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing date %q: %w", rec[p.colDate], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[p.colAmount]))
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[p.colAmount], err)
	}

	txn := Transaction{
		Date:        date,
		Description: strings.TrimSpace(rec[p.colDesc]),
		Amount:      amount,
	}
	if p.colType >= 0 {
		txn.Type = rec[p.colType]
	}
	txn.Reference = reference(p.format, date, txn.Description)
	return txn, nil
}

// reference builds an identifier like chase_20250103_GITHUBPROS.
func reference(format string, date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("%s_%s_%s", format, date.Format("20060102"), prefix)
}
