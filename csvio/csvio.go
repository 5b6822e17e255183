// Package csvio reads the semicolon separated exports used by valuation and inflation files.
//
// These files come from spreadsheet tools with a European locale: ';' separates fields,
// ',' is the decimal mark, '.' groups thousands and amounts may carry a currency symbol.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/curves"
	"github.com/shopspring/decimal"
)

// Reader reads records of a semicolon separated file that starts with a header line.
type Reader struct {
	r      *csv.Reader
	Header []string
}

// NewReader reads the header line of r and returns a Reader positioned on the first record.
func NewReader(r io.Reader) (*Reader, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // rows are checked against the header by Read
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file, a header line is required: %w", curves.ErrInputFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", errors.Join(curves.ErrInputFormat, err))
	}
	for i, h := range header {
		// spreadsheet exports often start with a byte order mark.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &Reader{r: reader, Header: header}, nil
}

// Column returns the index of the header named name, ignoring case.
func (r *Reader) Column(name string) (int, bool) {
	for i, h := range r.Header {
		if strings.EqualFold(h, name) {
			return i, true
		}
	}
	return -1, false
}

// Read returns the next non blank record and its line number in the file.
//
// It returns io.EOF at the end of the file. Any other error wraps curves.ErrInputFormat.
func (r *Reader) Read() (line int, record []string, err error) {
	for {
		record, err = r.r.Read()
		if err == io.EOF {
			return 0, nil, io.EOF
		}
		if err != nil {
			return 0, nil, errors.Join(curves.ErrInputFormat, err)
		}
		line, _ = r.r.FieldPos(0)
		if blank(record) {
			continue
		}
		if len(record) > len(r.Header) {
			return line, nil, fmt.Errorf("line %d: %d fields, header has %d: %w", line, len(record), len(r.Header), curves.ErrInputFormat)
		}
		return line, record, nil
	}
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseDecimal parses a numeric cell like "1.234,56 €", "0,5" or "101.25".
//
// When the cell contains a comma, it is the decimal mark and dots are thousands separators.
// Otherwise a dot is the decimal mark. Spaces and the euro sign are ignored.
func ParseDecimal(cell string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '€', ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, cell)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number: %w", curves.ErrInputFormat)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q: %w", cell, curves.ErrInputFormat)
	}
	return v, nil
}

// IsEmpty reports whether a cell holds no value at all.
func IsEmpty(cell string) bool {
	return strings.TrimSpace(strings.ReplaceAll(cell, "€", "")) == ""
}
