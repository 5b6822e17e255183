package cmd

import (
	"encoding/csv"
	"io"
	"slices"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
)

// writeSeries writes series as a semicolon separated file: a Date column, then one column
// per series. Dates are the union of the series dates, missing values are empty cells.
func writeSeries(w io.Writer, series ...*curves.Series) error {
	var days []date.Date
	for _, s := range series {
		days = append(days, s.Days()...)
	}
	slices.SortFunc(days, date.Date.Compare)
	days = slices.Compact(days)

	out := csv.NewWriter(w)
	out.Comma = ';'
	header := []string{"Date"}
	for _, s := range series {
		header = append(header, s.Name())
	}
	if err := out.Write(header); err != nil {
		return err
	}
	for _, on := range days {
		record := []string{on.String()}
		for _, s := range series {
			cell := ""
			if v, ok := s.Get(on); ok {
				cell = v.String()
			}
			record = append(record, cell)
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}
