package curves

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// Series is a named chronological sequence of values, one per date.
//
// Dates are unique and strictly increasing. A Series is immutable once built: every
// transformation returns a new Series.
type Series struct {
	name   string
	days   []date.Date
	values []decimal.Decimal
}

// NewSeries returns a Series from parallel slices of dates and values.
// The slices are copied. Dates must be strictly increasing.
func NewSeries(name string, days []date.Date, values []decimal.Decimal) (*Series, error) {
	if len(days) != len(values) {
		return nil, fmt.Errorf("series %q: %d dates for %d values: %w", name, len(days), len(values), ErrInvalidInput)
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Before(days[i]) {
			return nil, fmt.Errorf("series %q: date %v is not after %v: %w", name, days[i], days[i-1], ErrInvalidInput)
		}
	}
	return &Series{
		name:   name,
		days:   slices.Clone(days),
		values: slices.Clone(values),
	}, nil
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Len returns the number of points in the series.
func (s *Series) Len() int { return len(s.days) }

// Days returns a copy of the series dates.
func (s *Series) Days() []date.Date { return slices.Clone(s.days) }

// At returns the i-th point.
func (s *Series) At(i int) (date.Date, decimal.Decimal) { return s.days[i], s.values[i] }

// First returns the chronologically first point, or false if the series is empty.
func (s *Series) First() (date.Date, decimal.Decimal, bool) {
	if len(s.days) == 0 {
		return date.Date{}, decimal.Decimal{}, false
	}
	return s.days[0], s.values[0], true
}

// Values returns an iterator over all date/value pairs in the series, in chronological order.
func (s *Series) Values() iter.Seq2[date.Date, decimal.Decimal] {
	return func(yield func(date.Date, decimal.Decimal) bool) {
		for i, on := range s.days {
			if !yield(on, s.values[i]) {
				return
			}
		}
	}
}

// search returns the index where day is or would be inserted.
func (s *Series) search(day date.Date) (int, bool) {
	return slices.BinarySearchFunc(s.days, day, date.Date.Compare)
}

// Get returns the value at 'day' and true or zero value and false.
func (s *Series) Get(day date.Date) (decimal.Decimal, bool) {
	if i, found := s.search(day); found {
		return s.values[i], true
	}
	return decimal.Decimal{}, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns false if there is no point on or before day.
func (s *Series) ValueAsOf(day date.Date) (decimal.Decimal, bool) {
	i, found := s.search(day)
	if found {
		return s.values[i], true
	}
	// Not found. `i` is the index where `day` would be inserted.
	if i == 0 {
		return decimal.Decimal{}, false
	}
	return s.values[i-1], true
}

// Window returns the points whose date is within r.
func (s *Series) Window(r date.Range) *Series {
	w := &Series{name: s.name}
	for i, on := range s.days {
		if r.Contains(on) {
			w.days = append(w.days, on)
			w.values = append(w.values, s.values[i])
		}
	}
	return w
}

// SeriesBuilder accumulates points in any order and builds a Series.
//
// The zero value is ready to use once Name is set.
type SeriesBuilder struct {
	Name   string
	days   []date.Date
	values []decimal.Decimal
}

// Add appends a point to the builder.
func (b *SeriesBuilder) Add(on date.Date, value decimal.Decimal) *SeriesBuilder {
	b.days, b.values = append(b.days, on), append(b.values, value)
	return b
}

// Len returns the number of points added so far.
func (b *SeriesBuilder) Len() int { return len(b.days) }

// chronological is a private implementation to make the builder chronologically sorted.
type chronological struct{ *SeriesBuilder }

func (c chronological) Less(i, j int) bool { return c.days[i].Before(c.days[j]) }

func (c chronological) Swap(i, j int) {
	c.days[i], c.days[j] = c.days[j], c.days[i]
	c.values[i], c.values[j] = c.values[j], c.values[i]
}

// Series sorts the accumulated points and returns the Series.
// Two points on the same date are rejected.
func (b *SeriesBuilder) Series() (*Series, error) {
	sort.Stable(chronological{b})
	return NewSeries(b.Name, b.days, b.values)
}
