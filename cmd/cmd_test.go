package cmd

import (
	"bytes"
	"flag"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/etnz/curves/inflation"
	"github.com/etnz/curves/insee"
	"github.com/etnz/curves/profile"
	"github.com/shopspring/decimal"
)

func series(t *testing.T, name string, points map[string]float64) *curves.Series {
	t.Helper()
	b := &curves.SeriesBuilder{Name: name}
	for on, v := range points {
		b.Add(date.MustParse(on), decimal.NewFromFloat(v))
	}
	s, err := b.Series()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{" a , b,,c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := splitList(tt.in)
			if got == nil || !slices.Equal(got, tt.want) {
				t.Errorf("splitList(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProfileFlags(t *testing.T) {
	var c profileFlags
	f := flag.NewFlagSet("compare", flag.ContinueOnError)
	c.SetFlags(f)
	err := f.Parse([]string{"-valuation", "s.csv", "-b", "", "-principal", "5000", "-log", "-s", "Offensiv,Cash", "-insee", "001759970", "-currency", "usd"})
	if err != nil {
		t.Fatal(err)
	}

	p := profile.Default()
	p.Inflation.Path = "inflation.csv"
	if err := c.apply(p, f); err != nil {
		t.Fatalf("apply() = %v", err)
	}
	if p.Valuation.Path != "s.csv" || len(p.Benchmarks) != 0 || p.Principal != 5000 || p.Scale != "log" || p.Currency != "USD" {
		t.Errorf("apply() = %+v", p)
	}
	if !slices.Equal(p.Selection, []string{"Offensiv", "Cash"}) {
		t.Errorf("selection = %v", p.Selection)
	}
	if p.Inflation.INSEE != "001759970" || p.Inflation.Path != "" {
		t.Errorf("inflation = %+v, want the insee index only", p.Inflation)
	}
	// flags not set keep the profile values.
	if p.From != "2017-06-30" || p.Inflation.Unit != "percent" {
		t.Errorf("defaults overridden: from %q, unit %q", p.From, p.Inflation.Unit)
	}
}

func TestProfileFlags_Cumulative(t *testing.T) {
	var c profileFlags
	f := flag.NewFlagSet("compare", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse([]string{"-inflation-file", "cpi.csv", "-cumulative", "-principal", "-5"}); err != nil {
		t.Fatal(err)
	}
	p := profile.Default()
	if err := c.apply(p, f); err != nil {
		t.Fatalf("apply() = %v", err)
	}
	if p.Inflation.Path != "cpi.csv" || !p.Inflation.Cumulative {
		t.Errorf("inflation = %+v, want a cumulative file", p.Inflation)
	}
	// a negative principal falls back to an index based on 100.
	if p.Principal != -5 {
		t.Errorf("principal = %v, want -5", p.Principal)
	}
}

func TestProfileFlags_Invalid(t *testing.T) {
	var c profileFlags
	f := flag.NewFlagSet("compare", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse([]string{"-from", "yesterday", "-b", "DAX"}); err != nil {
		t.Fatal(err)
	}
	err := c.apply(profile.Default(), f)
	if err == nil {
		t.Fatal("apply() succeeded, want validation errors")
	}
	for _, want := range []string{"from", "benchmarks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("apply() = %v, want an error about %s", err, want)
		}
	}
}

func TestWriteSeries(t *testing.T) {
	a := series(t, "GDAXI.INDX", map[string]float64{"2024-07-01": 18000.5, "2024-07-03": 18100})
	b := series(t, "TEPLX.US", map[string]float64{"2024-07-02": 20.25, "2024-07-03": 20.5})

	var buf bytes.Buffer
	if err := writeSeries(&buf, a, b); err != nil {
		t.Fatal(err)
	}
	want := `Date;GDAXI.INDX;TEPLX.US
2024-07-01;18000.5;
2024-07-02;;20.25
2024-07-03;18100;20.5
`
	if got := buf.String(); got != want {
		t.Errorf("writeSeries() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteInflation(t *testing.T) {
	index := &insee.Series{Values: map[date.Date]decimal.Decimal{
		date.MustParse("2024-06-30"): decimal.NewFromInt(100),
		date.MustParse("2024-07-31"): decimal.RequireFromString("100.5"),
	}}
	rates, err := index.Rates(date.Date{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		unit inflation.Unit
		want string
	}{
		{inflation.Percent, "Date;Index;Inflation\n2024-06-30;100;0\n2024-07-31;100.5;0.5\n"},
		{inflation.Fraction, "Date;Index;Inflation\n2024-06-30;100;0\n2024-07-31;100.5;0.005\n"},
		{inflation.BasisPoints, "Date;Index;Inflation\n2024-06-30;100;0\n2024-07-31;100.5;50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeInflation(&buf, index, rates, tt.unit); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("writeInflation() = %q, want %q", got, tt.want)
			}
			// the output is a valid inflation file.
			table, err := inflation.Load(strings.NewReader(buf.String()), inflation.DefaultColumn, tt.unit)
			if err != nil {
				t.Fatalf("inflation.Load() = %v", err)
			}
			if r, _ := table.Rate(date.MustParse("2024-07-31")); !r.Equal(decimal.RequireFromString("0.005")) {
				t.Errorf("rate = %v, want 0.005", r)
			}
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	md := "# Title\n\n| A | B |\n|---|--:|\n| x | 1 |\n"
	page, err := markdownToHTML("My <report>", md, "chart.png")
	if err != nil {
		t.Fatal(err)
	}
	got := string(page)
	for _, want := range []string{
		"<title>My &lt;report&gt;</title>",
		`<img src="chart.png"`,
		"<h1>Title</h1>",
		"<table>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page does not contain %q:\n%s", want, got)
		}
	}

	page, err = markdownToHTML("t", md, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(page), "<img") {
		t.Errorf("page without chart has an image")
	}
}

func TestParseRange(t *testing.T) {
	r, err := parseRange("2024-07-31", "2024-07-01")
	if err != nil {
		t.Fatal(err)
	}
	if r.From != date.MustParse("2024-07-01") || r.To != date.MustParse("2024-07-31") {
		t.Errorf("parseRange() = %v, want the swapped range", r)
	}
	if r, _ := parseRange("", ""); !r.IsOpen() {
		t.Errorf("parseRange() = %v, want an open range", r)
	}
	if _, err := parseRange("july", ""); err == nil {
		t.Errorf("parseRange(july) succeeded")
	}
}
