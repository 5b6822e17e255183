package curves

import (
	"testing"

	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// d is a helper for test to create dates from ISO strings.
func d(s string) date.Date { return date.MustParse(s) }

// dec is a helper for test to create decimals from const.
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// series is a helper for test to build a series from "date", value pairs.
func series(t *testing.T, name string, points ...any) *Series {
	t.Helper()
	b := &SeriesBuilder{Name: name}
	for i := 0; i < len(points); i += 2 {
		b.Add(d(points[i].(string)), dec(toFloat(points[i+1])))
	}
	s, err := b.Series()
	if err != nil {
		t.Fatalf("invalid test series %q: %v", name, err)
	}
	return s
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case float64:
		return x
	default:
		panic("unsupported test value")
	}
}

// set is a helper for test to build a series set.
func set(t *testing.T, series ...*Series) *SeriesSet {
	t.Helper()
	s, err := NewSeriesSet(series...)
	if err != nil {
		t.Fatalf("invalid test set: %v", err)
	}
	return s
}

// assertValues checks values against float expectations, exactly.
func assertValues(t *testing.T, what string, got []decimal.Decimal, want ...float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
	for i := range want {
		if !got[i].Equal(dec(want[i])) {
			t.Errorf("%s[%d] = %v, want %v", what, i, got[i], want[i])
		}
	}
}

func seriesValues(s *Series) []decimal.Decimal {
	var values []decimal.Decimal
	for _, v := range s.Values() {
		values = append(values, v)
	}
	return values
}
