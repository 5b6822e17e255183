package curves

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/curves/date"
)

// Source provides series for a date range, e.g. a valuation file or a market data provider.
//
// Fetch is called once per pipeline run and must return series built for that call only.
type Source interface {
	Fetch(ctx context.Context, r date.Range) ([]*Series, error)
}

// InflationSource provides the inflation table for a date range.
type InflationSource interface {
	Inflation(ctx context.Context, r date.Range) (*InflationTable, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, r date.Range) ([]*Series, error)

func (f SourceFunc) Fetch(ctx context.Context, r date.Range) ([]*Series, error) { return f(ctx, r) }

// Pipeline computes comparable curves from its sources.
//
// A Pipeline holds configuration only. Each Run fetches fresh data and builds every
// intermediate value from scratch, so runs never influence each other.
type Pipeline struct {
	Sources   []Source
	Inflation InflationSource
	// ProjectInflation joins the inflation table on the merged axis using the latest rate on or
	// before each date. Use it for monthly or quarterly inflation series.
	ProjectInflation bool
}

// Run fetches every source and computes the view requested by state.
//
// Any error aborts the run: no partially transformed view is ever returned.
func (p *Pipeline) Run(ctx context.Context, state DisplayState) (View, error) {
	set, table, err := p.Load(ctx, state)
	if err != nil {
		return View{}, err
	}
	return p.Compute(set, table, state)
}

// Load fetches the series of every source, and the inflation table if state asks for it.
func (p *Pipeline) Load(ctx context.Context, state DisplayState) (*SeriesSet, *InflationTable, error) {
	set, err := p.Fetch(ctx, state.Range)
	if err != nil {
		return nil, nil, err
	}
	if !state.Inflation {
		return set, nil, nil
	}
	if p.Inflation == nil {
		return nil, nil, fmt.Errorf("inflation requested without an inflation source: %w", ErrMissingRate)
	}
	table, err := p.Inflation.Inflation(ctx, state.Range)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching inflation: %w", err)
	}
	return set, table, nil
}

// Fetch collects the series of every source into a new set.
func (p *Pipeline) Fetch(ctx context.Context, r date.Range) (*SeriesSet, error) {
	set := &SeriesSet{}
	var errs error
	for _, src := range p.Sources {
		series, err := src.Fetch(ctx, r)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if err := set.Add(series...); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

// Compute runs the pure part of the pipeline on already fetched data:
// window, merge, normalize, optionally deflate, and display.
//
// set and table are only read. The same inputs always give the same view.
func (p *Pipeline) Compute(set *SeriesSet, table *InflationTable, state DisplayState) (View, error) {
	if !state.Range.IsOpen() {
		windowed := &SeriesSet{}
		for _, name := range set.Names() {
			s, _ := set.Get(name)
			if err := windowed.Add(s.Window(state.Range)); err != nil {
				return View{}, err
			}
		}
		set = windowed
	}

	ds, err := Merge(set)
	if err != nil {
		return View{}, fmt.Errorf("merging: %w", err)
	}
	ds, err = ds.Normalize(ReferenceFor(state.Principal))
	if err != nil {
		return View{}, err
	}
	if state.Inflation {
		if table != nil && p.ProjectInflation {
			table = table.Project(ds.days)
		}
		ds, err = Deflate(ds, table)
		if err != nil {
			return View{}, fmt.Errorf("deflating: %w", err)
		}
	}
	return Display(ds, state), nil
}

// Compute is Pipeline.Compute with the default configuration.
func Compute(set *SeriesSet, table *InflationTable, state DisplayState) (View, error) {
	return (&Pipeline{}).Compute(set, table, state)
}
