// Package inflation loads inflation tables from semicolon separated files.
//
//	Date;Inflation
//	30.06.17;0
//	03.07.17;0,12
//
// The unit of the Inflation column is not in the file, the caller declares it.
package inflation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/curves"
	"github.com/etnz/curves/csvio"
	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// Unit of the rates found in an inflation file.
type Unit int

const (
	// Fraction rates: 0.02 is 2%.
	Fraction Unit = iota
	// Percent rates: 2 is 2%.
	Percent
	// BasisPoints rates: 200 is 2%.
	BasisPoints
)

func (u Unit) String() string {
	switch u {
	case Fraction:
		return "fraction"
	case Percent:
		return "percent"
	case BasisPoints:
		return "bp"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// ParseUnit parses "fraction", "percent" (or "%") and "bp" (or "basis-points").
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fraction", "":
		return Fraction, nil
	case "percent", "%":
		return Percent, nil
	case "bp", "bps", "basis-points":
		return BasisPoints, nil
	}
	return Fraction, fmt.Errorf("unknown inflation unit %q, want fraction, percent or bp", s)
}

// Set implements flag.Value.
func (u *Unit) Set(s string) (err error) {
	*u, err = ParseUnit(s)
	return err
}

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10_000)
)

// Fraction converts v expressed in u into a decimal fraction.
func (u Unit) Fraction(v decimal.Decimal) decimal.Decimal {
	switch u {
	case Percent:
		return v.Div(hundred)
	case BasisPoints:
		return v.Div(tenThousand)
	default:
		return v
	}
}

// DefaultColumn is the rate column read when none is configured.
const DefaultColumn = "Inflation"

// Layouts accepted for the Date column.
var Layouts = []string{date.DateFormat, date.ValuationFormat, "02.01.2006"}

// Load reads the rates in column of r, expressed in unit.
//
// Empty cells are skipped: deflating on their date fails later with curves.ErrMissingRate.
func Load(r io.Reader, column string, unit Unit) (*curves.InflationTable, error) {
	if column == "" {
		column = DefaultColumn
	}
	reader, err := csvio.NewReader(r)
	if err != nil {
		return nil, err
	}
	dateIndex, ok := reader.Column("Date")
	if !ok {
		return nil, fmt.Errorf("no Date column in header %q: %w", reader.Header, curves.ErrInputFormat)
	}
	rateIndex, ok := reader.Column(column)
	if !ok {
		return nil, fmt.Errorf("no %q column in header %q: %w", column, reader.Header, curves.ErrInputFormat)
	}

	rates := make(map[date.Date]decimal.Decimal)
	for {
		line, record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rateIndex >= len(record) || csvio.IsEmpty(record[rateIndex]) {
			continue
		}
		on, err := date.ParseAny(record[dateIndex], Layouts...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, curves.ErrInputFormat, err)
		}
		v, err := csvio.ParseDecimal(record[rateIndex])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if _, exists := rates[on]; exists {
			return nil, fmt.Errorf("line %d: duplicate date %v: %w", line, on, curves.ErrInvalidInput)
		}
		rates[on] = unit.Fraction(v)
	}
	return curves.NewInflationTable(rates), nil
}

// File is a curves.InflationSource reading an inflation file on every call.
type File struct {
	Path   string
	Column string
	Unit   Unit
	// Cumulative compounds the periodic rates of the file, starting on the first rate
	// on or after the beginning of the range.
	Cumulative bool
}

// Inflation loads the whole table. Rates outside r are kept, they are needed to project
// a monthly table on the first days of r. A cumulative table drops the rates before r.
func (f File) Inflation(ctx context.Context, r date.Range) (*curves.InflationTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open inflation file: %w", err)
	}
	defer file.Close()

	table, err := Load(file, f.Column, f.Unit)
	if err != nil {
		return nil, fmt.Errorf("loading inflation from %q: %w", f.Path, err)
	}
	if !f.Cumulative {
		return table, nil
	}
	if !r.From.IsZero() {
		rates := make(map[date.Date]decimal.Decimal, table.Len())
		for _, on := range table.Days() {
			if !on.Before(r.From) {
				rates[on], _ = table.Rate(on)
			}
		}
		table = curves.NewInflationTable(rates)
	}
	return table.Cumulative(), nil
}
