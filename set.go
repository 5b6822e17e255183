package curves

import (
	"fmt"
	"slices"
)

// SeriesSet is a collection of series keyed by a unique name.
//
// Names keep their insertion order so that presentation is stable: strategies are usually
// added before benchmarks.
type SeriesSet struct {
	names  []string
	series map[string]*Series
}

// NewSeriesSet returns a set holding the given series.
func NewSeriesSet(series ...*Series) (*SeriesSet, error) {
	s := &SeriesSet{series: make(map[string]*Series)}
	if err := s.Add(series...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts series into the set. Names must be unique.
func (s *SeriesSet) Add(series ...*Series) error {
	if s.series == nil {
		s.series = make(map[string]*Series)
	}
	for _, x := range series {
		if x == nil {
			return fmt.Errorf("nil series: %w", ErrInvalidInput)
		}
		if _, exists := s.series[x.Name()]; exists {
			return fmt.Errorf("duplicate series name %q: %w", x.Name(), ErrInvalidInput)
		}
		s.names = append(s.names, x.Name())
		s.series[x.Name()] = x
	}
	return nil
}

// Names returns the series names in insertion order.
func (s *SeriesSet) Names() []string { return slices.Clone(s.names) }

// Len returns the number of series in the set.
func (s *SeriesSet) Len() int { return len(s.names) }

// Get returns the series named name.
func (s *SeriesSet) Get(name string) (*Series, bool) {
	x, ok := s.series[name]
	return x, ok
}
