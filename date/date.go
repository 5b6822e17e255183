package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// ValuationFormat is the day.month.two-digit-year layout used by valuation exports.
const ValuationFormat = "02.01.06"

const Day = 24 * time.Hour

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// ISOWeek returns the ISO 8601 year and week number in which d occurs.
func (d Date) ISOWeek() (year, week int) { return d.time().ISOWeek() }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the midnight UTC instant of that day.
func (d Date) Time() time.Time { return d.time() }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmp(d.y, x.y)
	case d.m != x.m:
		return cmp(int(d.m), int(x.m))
	default:
		return cmp(d.d, x.d)
	}
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Format returns a textual representation of the date according to layout, see [time.Time.Format].
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// ParseLayout parses a Date using an explicit time layout.
func ParseLayout(layout, str string) (Date, error) {
	on, err := time.Parse(layout, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, layout, err)
	}
	return New(on.Date()), nil
}

// ParseAny tries each layout in turn and returns the first successful parse.
func ParseAny(str string, layouts ...string) (Date, error) {
	for _, layout := range layouts {
		if on, err := time.Parse(layout, str); err == nil {
			return New(on.Date()), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q want one of %q", str, layouts)
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// Intersect returns the sorted dates present in every one of the sorted date slices.
//
// Each input must be strictly increasing. With no input, the result is empty.
func Intersect(series ...[]Date) []Date {
	if len(series) == 0 {
		return nil
	}
	indexes := make([]int, len(series))
	var common []Date
	for {
		// find the max of the current heads, every series must reach it.
		var m Date
		for i, index := range indexes {
			if index >= len(series[i]) {
				// one series is exhausted, nothing else can be common.
				return common
			}
			if on := series[i][index]; i == 0 || on.After(m) {
				m = on
			}
		}
		// advance every series up to m
		all := true
		for i := range indexes {
			for indexes[i] < len(series[i]) && series[i][indexes[i]].Before(m) {
				indexes[i]++
			}
			if indexes[i] >= len(series[i]) {
				return common
			}
			if series[i][indexes[i]] != m {
				all = false
			}
		}
		if !all {
			continue
		}
		common = append(common, m)
		for i := range indexes {
			indexes[i]++
		}
	}
}
