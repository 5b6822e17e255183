package curves

import (
	"fmt"

	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// Merge aligns every series of the set on their common dates.
//
// The date axis is the intersection of all the series dates: a date missing from a single
// series is dropped for all of them, nothing is interpolated. Series without any common date
// yield an empty dataset, which is not an error.
func Merge(set *SeriesSet) (*Dataset, error) {
	if set == nil || set.Len() == 0 {
		return newDataset(nil), nil
	}
	axes := make([][]date.Date, 0, set.Len())
	for _, name := range set.names {
		s := set.series[name]
		if s == nil {
			return nil, fmt.Errorf("series %q is nil: %w", name, ErrInvalidInput)
		}
		axes = append(axes, s.days)
	}
	days := date.Intersect(axes...)

	ds := newDataset(days)
	for _, name := range set.names {
		s := set.series[name]
		values := make([]decimal.Decimal, 0, len(days))
		// days is a subsequence of s.days, walk both.
		j := 0
		for _, on := range days {
			for s.days[j] != on {
				j++
			}
			values = append(values, s.values[j])
		}
		ds.put(name, values)
	}
	return ds, nil
}
