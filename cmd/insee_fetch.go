package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/etnz/curves/inflation"
	"github.com/etnz/curves/insee"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// inseeFetchCmd implements the "insee fetch" command.
type inseeFetchCmd struct {
	from, to string
	base     string
	unit     inflation.Unit
}

func (*inseeFetchCmd) Name() string     { return "fetch" }
func (*inseeFetchCmd) Synopsis() string { return "fetches a price index from INSEE as an inflation file" }
func (*inseeFetchCmd) Usage() string {
	return `insee fetch [-from <date>] [-to <date>] [-base <date>] [-unit <unit>] IDBANK

Fetches a price index from bdm.insee.fr and prints it as a semicolon separated
inflation file: the index value and the cumulative inflation since the base date.
`
}

func (c *inseeFetchCmd) SetFlags(f *flag.FlagSet) {
	c.unit = inflation.Percent
	f.StringVar(&c.from, "from", "", "first date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.base, "base", "", "date of zero inflation, the first index by default (YYYY-MM-DD)")
	f.Var(&c.unit, "unit", "unit of the printed inflation: fraction, percent or bp")
}

func (c *inseeFetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one INSEE idBank is required, e.g. 001759970")
		return subcommands.ExitUsageError
	}
	idBank := f.Arg(0)
	r, err := parseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var base date.Date
	if c.base != "" {
		if base, err = date.Parse(c.base); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	series, err := (&insee.Client{}).Series(ctx, idBank, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch from bdm.insee.fr: %v\n", err)
		return subcommands.ExitFailure
	}
	rates, err := series.Rates(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := writeInflation(os.Stdout, series, rates, c.unit); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "%s: %d values, last updated %s\n", series.Libelle, rates.Len(), series.LastUpdate.Format("2006-01-02"))
	return subcommands.ExitSuccess
}

// writeInflation writes the index and its rates, expressed in unit, as an inflation file.
func writeInflation(w io.Writer, series *insee.Series, rates *curves.InflationTable, unit inflation.Unit) error {
	out := csv.NewWriter(w)
	out.Comma = ';'
	if err := out.Write([]string{"Date", "Index", inflation.DefaultColumn}); err != nil {
		return err
	}
	scale := unit.Fraction(decimal.NewFromInt(1))
	for _, on := range rates.Days() {
		rate, _ := rates.Rate(on)
		record := []string{on.String(), series.Values[on].String(), rate.Div(scale).Round(6).String()}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}
