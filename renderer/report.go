package renderer

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Report is the data of the markdown comparison report.
type Report struct {
	Title       string
	Description string
	Columns     []string
	Summary     []Performance
	Rows        []Row
}

// Performance sums up one curve over the whole view.
type Performance struct {
	Name   string
	Group  string // Strategy or Benchmark
	Start  string
	End    string
	Change string // e.g. +1.25%
}

// Row holds the values of every column on one date.
type Row struct {
	Date   string
	Values []string
}

// ReportOptions configures NewReport.
type ReportOptions struct {
	Title     string
	Currency  string          // ISO code of the principal, EUR if empty
	Principal decimal.Decimal // as requested, non positive means an index based on 100
	Inflation bool
	// Period keeps only the last date of each period in the value table.
	Period date.Period
	// Benchmarks lists the columns that are benchmarks, other columns are strategies.
	Benchmarks []string
}

var hundred = decimal.NewFromInt(100)

// NewReport builds the report of a view.
func NewReport(v curves.View, opts ReportOptions) *Report {
	r := &Report{
		Title:       opts.Title,
		Description: describe(v, opts),
		Columns:     v.Names(),
	}
	if r.Title == "" {
		r.Title = "Strategies vs benchmarks"
	}
	if v.IsEmpty() {
		return r
	}

	last := len(v.Days) - 1
	for _, c := range v.Columns {
		p := Performance{
			Name:  c.Name,
			Group: "Strategy",
			Start: c.Values[0].StringFixed(curves.Precision),
			End:   c.Values[last].StringFixed(curves.Precision),
		}
		if lo.Contains(opts.Benchmarks, c.Name) {
			p.Group = "Benchmark"
		}
		p.Change = change(c.Values[0], c.Values[last])
		r.Summary = append(r.Summary, p)
	}

	for i, on := range v.Days {
		if i != 0 && i != last && v.Days[i+1].StartOf(opts.Period) == on.StartOf(opts.Period) {
			continue
		}
		row := Row{Date: on.String()}
		for _, c := range v.Columns {
			row.Values = append(row.Values, c.Values[i].StringFixed(curves.Precision))
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

func change(start, end decimal.Decimal) string {
	if start.IsZero() {
		return "n/a"
	}
	pct := end.Div(start).Sub(decimal.NewFromInt(1)).Mul(hundred)
	s := pct.StringFixed(2) + "%"
	if pct.IsPositive() {
		s = "+" + s
	}
	return s
}

func describe(v curves.View, opts ReportOptions) string {
	var b strings.Builder
	if opts.Principal.IsPositive() {
		fmt.Fprintf(&b, "Value of %s invested", formatPrincipal(opts.Principal, opts.Currency))
	} else {
		fmt.Fprintf(&b, "Index based on %v", curves.DefaultReference)
	}
	if len(v.Days) > 0 {
		fmt.Fprintf(&b, " on %v", v.Days[0])
	}
	fmt.Fprintf(&b, ", %v scale", scaleName(v.Scale))
	if opts.Inflation {
		b.WriteString(", adjusted for inflation")
	}
	b.WriteString(".")
	return b.String()
}

func scaleName(s curves.Scale) string {
	if s == curves.Logarithmic {
		return "logarithmic"
	}
	return "linear"
}

// formatPrincipal formats an amount like €10,000.00 using the currency conventions.
func formatPrincipal(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = money.EUR
	}
	c := money.GetCurrency(currency)
	if c == nil {
		return amount.StringFixed(2) + " " + currency
	}
	units := amount.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(units, currency).Display()
}
