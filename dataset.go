package curves

import (
	"fmt"
	"slices"

	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// Dataset is a set of series aligned on a single ascending date axis.
//
// Every column has exactly one value per axis date. Datasets are never mutated once built;
// transformations return new datasets.
type Dataset struct {
	days    []date.Date
	names   []string
	columns map[string][]decimal.Decimal
}

// newDataset returns an empty dataset on the given axis.
func newDataset(days []date.Date) *Dataset {
	return &Dataset{days: days, columns: make(map[string][]decimal.Decimal)}
}

// put adds a column; only used while building a dataset.
func (d *Dataset) put(name string, values []decimal.Decimal) {
	d.names = append(d.names, name)
	d.columns[name] = values
}

// Len returns the length of the date axis.
func (d *Dataset) Len() int { return len(d.days) }

// IsEmpty reports whether the axis has no date.
func (d *Dataset) IsEmpty() bool { return len(d.days) == 0 }

// Days returns a copy of the date axis.
func (d *Dataset) Days() []date.Date { return slices.Clone(d.days) }

// Names returns the column names in order.
func (d *Dataset) Names() []string { return slices.Clone(d.names) }

// Column returns a copy of the values of the named column.
func (d *Dataset) Column(name string) ([]decimal.Decimal, bool) {
	values, ok := d.columns[name]
	return slices.Clone(values), ok
}

// Value returns the value of column name at axis index i.
func (d *Dataset) Value(name string, i int) (decimal.Decimal, bool) {
	values, ok := d.columns[name]
	if !ok || i < 0 || i >= len(values) {
		return decimal.Decimal{}, false
	}
	return values[i], true
}

// Series returns the named column as a Series.
func (d *Dataset) Series(name string) (*Series, bool) {
	values, ok := d.columns[name]
	if !ok {
		return nil, false
	}
	return &Series{name: name, days: d.days, values: values}, true
}

// Normalize returns a new dataset where every column is normalized with spec.
//
// Columns are anchored on the first date of the axis, so all curves start from the
// reference on the same day. An empty dataset normalizes to itself.
func (d *Dataset) Normalize(spec NormalizationSpec) (*Dataset, error) {
	out := newDataset(d.days)
	if d.IsEmpty() {
		for _, name := range d.names {
			out.put(name, nil)
		}
		return out, nil
	}
	for _, name := range d.names {
		s, _ := d.Series(name)
		n, err := Normalize(s, spec)
		if err != nil {
			return nil, fmt.Errorf("normalizing %q: %w", name, err)
		}
		out.put(name, n.values)
	}
	return out, nil
}
