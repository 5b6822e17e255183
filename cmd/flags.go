package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/curves/profile"
)

// profileFlags are the flags overriding the loaded profile.
type profileFlags struct {
	valuation  string
	strategies string
	benchmarks string
	from, to   string
	principal  float64
	currency   string
	scale      bool
	selection  string

	inflation     bool
	inflationFile string
	inflationUnit string
	insee         string
	project       bool
	cumulative    bool

	apiKey   string
	cacheDir string
}

func (c *profileFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.valuation, "valuation", "", "Path to the valuation file of the strategies (semicolon separated, first column is the date).")
	f.StringVar(&c.strategies, "strategies", "", "Comma separated strategy columns to read from the valuation file. All columns by default.")
	f.StringVar(&c.benchmarks, "b", "", "Comma separated benchmarks, as SYMBOL.VENUE, e.g. GDAXI.INDX. An empty value disables benchmarks.")
	f.StringVar(&c.from, "from", "", "First date of the comparison, its first common date is the anchor (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Last date of the comparison (YYYY-MM-DD).")
	f.Float64Var(&c.principal, "principal", 0, "One-time investment at the anchor date. Curves are an index based on 100 if not positive.")
	f.StringVar(&c.currency, "currency", "", "ISO currency of the principal.")
	f.BoolVar(&c.scale, "log", false, "Use a logarithmic scale.")
	f.StringVar(&c.selection, "s", "", "Comma separated series to display. All series by default.")

	f.BoolVar(&c.inflation, "inflation", false, "Adjust every curve for inflation.")
	f.StringVar(&c.inflationFile, "inflation-file", "", "Path to the inflation file (semicolon separated, date and rate columns).")
	f.StringVar(&c.inflationUnit, "inflation-unit", "", "Unit of the inflation file rates: fraction, percent or bp.")
	f.StringVar(&c.insee, "insee", "", "INSEE idBank of the price index to use for inflation, e.g. 001759970.")
	f.BoolVar(&c.project, "project", false, "Use the latest inflation rate on or before each date, for monthly or quarterly rates.")
	f.BoolVar(&c.cumulative, "cumulative", false, "The inflation file holds periodic rates, compound them from the first date.")

	f.StringVar(&c.apiKey, "eodhd-api-key", "", "EODHD API key to fetch benchmarks. This flag takes precedence over the "+EnvEODHDAPIKey+" environment variable. You can get one at https://eodhd.com/")
	f.StringVar(&c.cacheDir, "cache", "", "Directory of the EODHD response cache. The system temporary directory by default.")
}

// apply overrides p with the flags actually set on f, then validates the result.
func (c *profileFlags) apply(p *profile.Profile, f *flag.FlagSet) error {
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "valuation":
			p.Valuation.Path = c.valuation
		case "strategies":
			p.Valuation.Columns = splitList(c.strategies)
		case "b":
			p.Benchmarks = splitList(c.benchmarks)
		case "from":
			p.From = c.from
		case "to":
			p.To = c.to
		case "principal":
			p.Principal = c.principal
		case "currency":
			p.Currency = strings.ToUpper(c.currency)
		case "log":
			p.Scale = "linear"
			if c.scale {
				p.Scale = "log"
			}
		case "s":
			p.Selection = splitList(c.selection)
		case "inflation":
			p.Inflation.Enabled = c.inflation
		case "inflation-file":
			p.Inflation.Path, p.Inflation.INSEE = c.inflationFile, ""
		case "inflation-unit":
			p.Inflation.Unit = c.inflationUnit
		case "insee":
			p.Inflation.INSEE, p.Inflation.Path = c.insee, ""
		case "project":
			p.Inflation.Project = c.project
		case "cumulative":
			p.Inflation.Cumulative = c.cumulative
		case "eodhd-api-key":
			p.EODHD.APIKey = c.apiKey
		case "cache":
			p.EODHD.CacheDir = c.cacheDir
		}
	})
	return p.Validate()
}

// splitList splits a comma separated list, ignoring blank items.
// It returns an empty, non nil, list for a blank value.
func splitList(s string) []string {
	list := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
