package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/curves/date"
	"github.com/etnz/curves/eodhd"
	"github.com/google/subcommands"
)

const EnvEODHDAPIKey = "EODHD_API_KEY"

// eodhdFetchCmd implements the "eodhd fetch" command.
type eodhdFetchCmd struct {
	eodhdApiFlag string
	from, to     string
	field        string
	cacheDir     string
}

func (*eodhdFetchCmd) Name() string     { return "fetch" }
func (*eodhdFetchCmd) Synopsis() string { return "fetches benchmark prices from EODHD" }
func (*eodhdFetchCmd) Usage() string {
	return `eodhd fetch [-from <date>] [-to <date>] [-field <field>] SYMBOL.VENUE...

	Fetches end of day prices from eodhd.com and prints them as a semicolon
	separated file, one column per benchmark, that can be used as a valuation file.

	Requires the EODHD_API_KEY environment variable to be set or passed as a flag.
	`
}
func (c *eodhdFetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.eodhdApiFlag, "eodhd-api-key", "", "EODHD API key to use for consuming EODHD.com API. This flag takes precedence over the "+EnvEODHDAPIKey+" environment variable. You can get one at https://eodhd.com/")
	f.StringVar(&c.from, "from", "", "first date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.field, "field", eodhd.DefaultField, "price field to read: open, high, low, close or adjusted_close")
	f.StringVar(&c.cacheDir, "cache", "", "directory of the response cache, the system temporary directory by default")
}

// eodhdApiKey retrieves the EODHD API key from the command-line flag or the environment variable.
// It prioritizes the flag over the environment variable.
func (c *eodhdFetchCmd) eodhdApiKey() string {
	if c.eodhdApiFlag == "" {
		c.eodhdApiFlag = os.Getenv(EnvEODHDAPIKey)
	}
	return c.eodhdApiFlag
}

func (c *eodhdFetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key := c.eodhdApiKey()
	if key == "" {
		fmt.Fprintf(os.Stderr, "Error: EODHD API key is not set. Use -eodhd-api-key flag or EODHD_API_KEY environment variable\n")
		return subcommands.ExitFailure
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one benchmark is required")
		return subcommands.ExitUsageError
	}
	var benchmarks []eodhd.Benchmark
	for _, arg := range f.Args() {
		b, err := eodhd.ParseBenchmark(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		benchmarks = append(benchmarks, b)
	}
	r, err := parseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	client := &eodhd.Client{
		APIKey: key,
		HTTP:   eodhd.NewCachingClient(c.cacheDir, date.Daily),
		Field:  c.field,
	}
	series, err := eodhd.Source{Client: client, Benchmarks: benchmarks}.Fetch(ctx, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch from eodhd.com: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := writeSeries(os.Stdout, series...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range series {
		fmt.Fprintf(os.Stderr, "%s: %d prices\n", s.Name(), s.Len())
	}
	return subcommands.ExitSuccess
}

// parseRange parses optional from and to dates.
func parseRange(from, to string) (r date.Range, err error) {
	if from != "" {
		if r.From, err = date.Parse(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = date.Parse(to); err != nil {
			return r, err
		}
	}
	return date.Between(r.From, r.To), nil
}
