package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/etnz/curves/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type compareCmd struct {
	profileFlags

	title    string
	period   string
	jsonFile string
	pngFile  string
	htmlFile string
}

func (*compareCmd) Name() string { return "compare" }
func (*compareCmd) Synopsis() string {
	return "compare strategy valuations with benchmarks from a common starting point"
}
func (*compareCmd) Usage() string {
	return `curvecmp compare [-valuation <file>] [-b <benchmarks>] [-from <date>] [-principal <amount>] [-inflation] [-log] [-json <file>] [-png <file>] [-html <file>]

  Fetches the strategy valuations and the benchmark prices, aligns them on
  their common dates, and rescales every curve to the same value on the first
  common date. Prints a markdown report of the curves.

  Flags override the profile selected by the global -profile flag.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	c.profileFlags.SetFlags(f)
	f.StringVar(&c.title, "title", "", "Title of the report.")
	f.StringVar(&c.period, "period", "month", "Period of the report value table (day, week, month, quarter, year).")
	f.StringVar(&c.jsonFile, "json", "", "Write the curves as JSON to this file, '-' for stdout (no report is printed then).")
	f.StringVar(&c.pngFile, "png", "", "Write the chart as a PNG image to this file.")
	f.StringVar(&c.htmlFile, "html", "", "Write the report as an HTML page to this file. It shows the -png chart if any.")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing period: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, err := LoadProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load profile: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.apply(p, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid options: %v\n", err)
		return subcommands.ExitUsageError
	}
	pipeline, err := p.Pipeline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	state, err := p.State()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	view, _, err := run(ctx, pipeline, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not compare curves: %v\n", err)
		return subcommands.ExitFailure
	}
	if view.IsEmpty() {
		fmt.Fprintln(os.Stderr, "Warning: nothing to compare, the series have no common date or none is selected.")
	}

	if c.jsonFile != "" {
		if err := writeJSON(c.jsonFile, view); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing curves: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.pngFile != "" {
		if err := writeChart(c.pngFile, view, c.title, p.Benchmarks); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	report := renderer.NewReport(view, renderer.ReportOptions{
		Title:      c.title,
		Currency:   p.Currency,
		Principal:  decimal.NewFromFloat(p.Principal),
		Inflation:  state.Inflation,
		Period:     period,
		Benchmarks: p.Benchmarks,
	})
	md := renderer.RenderReport(report)

	if c.htmlFile != "" {
		image := ""
		if c.pngFile != "" {
			// the page refers to the image next to it.
			if rel, err := filepath.Rel(filepath.Dir(c.htmlFile), c.pngFile); err == nil {
				image = filepath.ToSlash(rel)
			}
		}
		page, err := markdownToHTML(report.Title, md, image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.htmlFile, page, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if c.jsonFile != "-" {
		printMarkdown(md)
	}
	return subcommands.ExitSuccess
}

// writeJSON writes v to the file name, or stdout for "-".
func writeJSON(name string, v curves.View) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if name == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0644)
}

func writeChart(name string, v curves.View, title string, benchmarks []string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := renderer.RenderChart(f, v, renderer.ChartOptions{Title: title, Benchmarks: benchmarks}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
