package curves

import (
	"fmt"
	"maps"
	"slices"

	"github.com/etnz/curves/date"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InflationTable maps dates to an inflation rate.
//
// Rates are decimal fractions: 0.02 means 2%. Sources expressed in percent or basis points
// are converted by their adapter before reaching the table.
type InflationTable struct {
	rates *Series
}

// NewInflationTable returns a table from a date to rate mapping.
func NewInflationTable(rates map[date.Date]decimal.Decimal) *InflationTable {
	days := slices.SortedFunc(maps.Keys(rates), date.Date.Compare)
	values := make([]decimal.Decimal, len(days))
	for i, on := range days {
		values[i] = rates[on]
	}
	// keys are unique and sorted, it cannot fail.
	s, _ := NewSeries("inflation", days, values)
	return &InflationTable{rates: s}
}

// Len returns the number of dates in the table.
func (t *InflationTable) Len() int { return t.rates.Len() }

// Days returns the table dates in chronological order.
func (t *InflationTable) Days() []date.Date { return t.rates.Days() }

// Rate returns the rate on day.
func (t *InflationTable) Rate(day date.Date) (decimal.Decimal, bool) { return t.rates.Get(day) }

// Cumulative returns the table of compounded rates: each entry becomes prod(1+r) - 1 over all
// entries up to and including it.
func (t *InflationTable) Cumulative() *InflationTable {
	one := decimal.NewFromInt(1)
	factor := one
	rates := make(map[date.Date]decimal.Decimal, t.Len())
	for on, r := range t.rates.Values() {
		factor = factor.Mul(one.Add(r))
		rates[on] = factor.Sub(one)
	}
	return NewInflationTable(rates)
}

// Project returns a table defined on days, using for each day the latest rate on or before it.
//
// Days before the first entry of t have no rate in the result, deflating them still fails.
// This is how a monthly index gets joined on a daily axis; it is never applied implicitly.
func (t *InflationTable) Project(days []date.Date) *InflationTable {
	rates := make(map[date.Date]decimal.Decimal, len(days))
	for _, on := range days {
		if r, ok := t.rates.ValueAsOf(on); ok {
			rates[on] = r
		}
	}
	return NewInflationTable(rates)
}

// Deflate returns a new dataset where each targeted column value at date d is divided by
// (1 + rate(d)).
//
// No target means every column. Columns not targeted are kept unchanged. Every date of the
// axis must have a rate in the table, a missing one fails with ErrMissingRate.
func Deflate(ds *Dataset, table *InflationTable, targets ...string) (*Dataset, error) {
	if len(targets) == 0 {
		targets = ds.names
	}
	targets = lo.Uniq(targets)
	for _, name := range targets {
		if _, ok := ds.columns[name]; !ok {
			return nil, fmt.Errorf("cannot deflate unknown series %q: %w", name, ErrInvalidInput)
		}
	}
	if table == nil {
		if ds.IsEmpty() {
			return ds, nil
		}
		return nil, fmt.Errorf("no inflation table: %w", ErrMissingRate)
	}

	one := decimal.NewFromInt(1)
	factors := make([]decimal.Decimal, len(ds.days))
	for i, on := range ds.days {
		r, ok := table.Rate(on)
		if !ok {
			return nil, fmt.Errorf("no rate on %v: %w", on, ErrMissingRate)
		}
		factors[i] = one.Add(r)
		if factors[i].IsZero() {
			return nil, fmt.Errorf("rate %v on %v: %w", r, on, ErrInvalidRate)
		}
	}

	out := newDataset(ds.days)
	for _, name := range ds.names {
		values := ds.columns[name]
		if !lo.Contains(targets, name) {
			out.put(name, values)
			continue
		}
		deflated := make([]decimal.Decimal, len(values))
		for i, v := range values {
			deflated[i] = v.Div(factors[i])
		}
		out.put(name, deflated)
	}
	return out, nil
}
