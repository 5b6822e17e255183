// Package valuation loads strategy valuations exported as semicolon separated files.
//
// A valuation file has a Date column and one column per strategy:
//
//	Date;Cash;Defensiv;Ausgewogen;Offensiv
//	30.06.17;100,00 €;100,00 €;100,00 €;100,00 €
//	03.07.17;100,01 €;100,12 €;100,25 €;100,41 €
//
// Dates use the day.month.year layout, with a two or four digit year. Amounts use a decimal
// comma and may carry thousands separators and a euro sign.
package valuation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/etnz/curves"
	"github.com/etnz/curves/csvio"
	"github.com/etnz/curves/date"
)

// DateColumn is the name of the column holding the valuation dates.
const DateColumn = "Date"

// Layouts accepted for the Date column.
var Layouts = []string{date.ValuationFormat, "02.01.2006", date.DateFormat}

// Load reads every strategy column of r, or only the named ones when columns is not empty.
//
// Series are returned in column order. An empty cell is a missing point for that strategy.
// Any malformed row rejects the whole load, the error names its line.
func Load(r io.Reader, columns ...string) ([]*curves.Series, error) {
	reader, err := csvio.NewReader(r)
	if err != nil {
		return nil, err
	}
	dateIndex, ok := reader.Column(DateColumn)
	if !ok {
		return nil, fmt.Errorf("no %q column in header %q: %w", DateColumn, reader.Header, curves.ErrInputFormat)
	}

	// resolve the strategy columns to read.
	var indexes []int
	if len(columns) == 0 {
		for i := range reader.Header {
			if i != dateIndex {
				indexes = append(indexes, i)
			}
		}
	} else {
		for _, name := range columns {
			i, ok := reader.Column(name)
			if !ok || i == dateIndex {
				return nil, fmt.Errorf("no strategy column %q in header %q: %w", name, reader.Header, curves.ErrInputFormat)
			}
			indexes = append(indexes, i)
		}
	}

	builders := make([]*curves.SeriesBuilder, len(indexes))
	for j, i := range indexes {
		builders[j] = &curves.SeriesBuilder{Name: reader.Header[i]}
	}

	for {
		line, record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		on, err := date.ParseAny(cell(record, dateIndex), Layouts...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, curves.ErrInputFormat, err)
		}
		for j, i := range indexes {
			c := cell(record, i)
			if csvio.IsEmpty(c) {
				continue
			}
			v, err := csvio.ParseDecimal(c)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, reader.Header[i], err)
			}
			builders[j].Add(on, v)
		}
	}

	series := make([]*curves.Series, 0, len(builders))
	for _, b := range builders {
		s, err := b.Series()
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// File is a curves.Source reading a valuation file on every fetch.
type File struct {
	Path string
	// Columns selects the strategies to read, all of them when empty.
	Columns []string
}

// Fetch loads the file and keeps the points within r.
func (f File) Fetch(ctx context.Context, r date.Range) ([]*curves.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot open valuation file: %w", err)
	}
	defer file.Close()

	series, err := Load(file, f.Columns...)
	if err != nil {
		return nil, fmt.Errorf("loading valuations from %q: %w", f.Path, err)
	}
	for i, s := range series {
		series[i] = s.Window(r)
	}
	return series, nil
}
