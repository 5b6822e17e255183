package curves

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/curves/date"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Scale is the y axis scale used to render curves.
type Scale int

const (
	Linear Scale = iota
	Logarithmic
)

func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case Logarithmic:
		return "log"
	default:
		return fmt.Sprintf("scale(%d)", int(s))
	}
}

// ParseScale parses "linear"/"lin" or "log"/"logarithmic".
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear", "lin":
		return Linear, nil
	case "log", "logarithmic":
		return Logarithmic, nil
	default:
		return Linear, fmt.Errorf("unknown scale %q", s)
	}
}

func (s Scale) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// DisplayState is what the user asked to see for one interaction.
//
// It is rebuilt on every interaction and never kept.
type DisplayState struct {
	Selection []string        // names of the series to plot
	Scale     Scale           // linear or logarithmic axis
	Principal decimal.Decimal // one-time investment, non positive means "use 100"
	Inflation bool            // deflate values with the inflation table
	Range     date.Range      // optional window, its first common date is the anchor
}

// Column is one plotted series.
type Column struct {
	Name   string
	Values []decimal.Decimal
}

// View is the read-only result handed to a renderer.
type View struct {
	Scale   Scale
	Days    []date.Date
	Columns []Column
}

// IsEmpty reports whether there is nothing to plot.
func (v View) IsEmpty() bool { return len(v.Columns) == 0 || len(v.Days) == 0 }

// Column returns the plotted column called name.
func (v View) Column(name string) (Column, bool) {
	return lo.Find(v.Columns, func(c Column) bool { return c.Name == name })
}

// Names returns the plotted column names.
func (v View) Names() []string {
	return lo.Map(v.Columns, func(c Column, _ int) string { return c.Name })
}

// Display projects ds on the selection of state.
//
// Columns keep the dataset order; selected names absent from ds are ignored. Values are
// copied as is: the scale is only an annotation for the renderer. An empty selection yields
// an empty view.
func Display(ds *Dataset, state DisplayState) View {
	v := View{Scale: state.Scale}
	names := lo.Filter(ds.names, func(name string, _ int) bool {
		return lo.Contains(state.Selection, name)
	})
	if len(names) == 0 {
		return v
	}
	v.Days = slices.Clone(ds.days)
	for _, name := range names {
		v.Columns = append(v.Columns, Column{Name: name, Values: slices.Clone(ds.columns[name])})
	}
	return v
}

// SelectAll returns a selection holding every series of the set.
func SelectAll(set *SeriesSet) []string { return set.Names() }

// MarshalJSON encodes the view for chart front ends: values are plain JSON numbers.
func (v View) MarshalJSON() ([]byte, error) {
	type column struct {
		Name   string        `json:"name"`
		Values []json.Number `json:"values"`
	}
	columns := make([]column, 0, len(v.Columns))
	for _, c := range v.Columns {
		columns = append(columns, column{
			Name: c.Name,
			Values: lo.Map(c.Values, func(x decimal.Decimal, _ int) json.Number {
				return json.Number(x.StringFixed(Precision))
			}),
		})
	}
	days := v.Days
	if days == nil {
		days = []date.Date{}
	}

	return json.Marshal(struct {
		Scale  Scale       `json:"scale"`
		Dates  []date.Date `json:"dates"`
		Series []column    `json:"series"`
	}{v.Scale, days, columns})
}
