// Package profile reads comparison profiles: the YAML description of which strategies and
// benchmarks to compare, and how.
//
//	valuation:
//	  path: Macromedia_example.csv
//	  columns: [Cash, Defensiv, Ausgewogen, Offensiv]
//	benchmarks: [LU0323577840.EUFUND, GDAXI.INDX, STOXX50E.INDX, TEPLX.US]
//	inflation:
//	  path: inflation_data.csv
//	  unit: bp
//	from: 2017-06-30
//	principal: 10000
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/etnz/curves/eodhd"
	"github.com/etnz/curves/inflation"
	"github.com/etnz/curves/insee"
	"github.com/etnz/curves/valuation"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Profile describes a comparison.
type Profile struct {
	Valuation struct {
		Path string `yaml:"path"`
		// Columns selects strategies, all columns when empty.
		Columns []string `yaml:"columns"`
	} `yaml:"valuation"`

	Benchmarks []string `yaml:"benchmarks" default:"[\"LU0323577840.EUFUND\",\"GDAXI.INDX\",\"STOXX50E.INDX\",\"TEPLX.US\"]" validate:"dive,benchmark"`

	EODHD struct {
		APIKey   string `yaml:"api_key"`
		Field    string `yaml:"field" default:"adjusted_close" validate:"oneof=open high low close adjusted_close"`
		CacheDir string `yaml:"cache_dir"`
		BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	} `yaml:"eodhd"`

	Inflation struct {
		// Path of an inflation file, exclusive with INSEE.
		Path   string `yaml:"path" validate:"excluded_with=INSEE"`
		Column string `yaml:"column" default:"Inflation"`
		Unit   string `yaml:"unit" default:"percent" validate:"oneof=fraction percent % bp bps basis-points"`
		// INSEE is the idBank of a price index.
		INSEE   string `yaml:"insee" validate:"omitempty,numeric"`
		Project bool   `yaml:"project"`
		// Cumulative compounds the periodic rates of the file from the first date.
		Cumulative bool `yaml:"cumulative" validate:"excluded_with=INSEE"`
		// Enabled deflates curves by default.
		Enabled bool `yaml:"enabled"`
	} `yaml:"inflation"`

	From      string   `yaml:"from" default:"2017-06-30" validate:"omitempty,date"`
	To        string   `yaml:"to" validate:"omitempty,date"`
	Principal float64  `yaml:"principal"`
	Currency  string   `yaml:"currency" default:"EUR" validate:"len=3,uppercase"`
	Scale     string   `yaml:"scale" default:"linear" validate:"oneof=linear log"`
	Selection []string `yaml:"selection"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("benchmark", func(fl validator.FieldLevel) bool {
		_, err := eodhd.ParseBenchmark(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := date.Parse(fl.Field().String())
		return err == nil
	})
}

// Default returns the profile with every default set.
func Default() *Profile {
	p := new(Profile)
	if err := defaults.Set(p); err != nil {
		panic(err) // default tags are static.
	}
	return p
}

// Load reads, applies defaults and validates a YAML profile.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML profile, applies defaults, then validates it.
func Parse(b []byte) (*Profile, error) {
	p := new(Profile)
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := defaults.Set(p); err != nil {
		return nil, fmt.Errorf("profile defaults: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validate profile: %w", err)
	}
	return p, nil
}

// WithEnv overrides the profile with environment variables.
func (p *Profile) WithEnv() *Profile {
	if v := os.Getenv("EODHD_API_KEY"); v != "" {
		p.EODHD.APIKey = v
	}
	return p
}

// Validate checks the profile, reporting every invalid field.
func (p *Profile) Validate() error {
	err := validate.Struct(p)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	var errs error
	for _, e := range validationErrors {
		errs = errors.Join(errs, fmt.Errorf("%s: %s", fieldPath(e), message(e)))
	}
	return errs
}

// fieldPath returns the yaml-ish path of a field error, e.g. "inflation.unit".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	ns = strings.TrimPrefix(ns, "Profile.")
	return strings.ToLower(ns)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s, got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "benchmark":
		return fmt.Sprintf("invalid benchmark %q, want SYMBOL.VENUE", fe.Value())
	case "date":
		return fmt.Sprintf("invalid date %q, want YYYY-MM-DD", fe.Value())
	case "excluded_with":
		return "cannot be used with an insee index"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// Range returns the date window of the profile.
func (p *Profile) Range() date.Range {
	var from, to date.Date
	// dates are validated already.
	if p.From != "" {
		from, _ = date.Parse(p.From)
	}
	if p.To != "" {
		to, _ = date.Parse(p.To)
	}
	return date.Between(from, to)
}

// Benchmark returns the parsed benchmarks.
func (p *Profile) Benchmark() ([]eodhd.Benchmark, error) {
	var benchmarks []eodhd.Benchmark
	for _, s := range p.Benchmarks {
		b, err := eodhd.ParseBenchmark(s)
		if err != nil {
			return nil, err
		}
		benchmarks = append(benchmarks, b)
	}
	return benchmarks, nil
}

// Pipeline returns the pipeline reading the profile sources.
func (p *Profile) Pipeline() (*curves.Pipeline, error) {
	pipeline := &curves.Pipeline{ProjectInflation: p.Inflation.Project}

	if p.Valuation.Path != "" {
		pipeline.Sources = append(pipeline.Sources, valuation.File{Path: p.Valuation.Path, Columns: p.Valuation.Columns})
	}

	benchmarks, err := p.Benchmark()
	if err != nil {
		return nil, err
	}
	if len(benchmarks) > 0 {
		if p.EODHD.APIKey == "" {
			return nil, fmt.Errorf("an eodhd api key is required to fetch %d benchmarks", len(benchmarks))
		}
		client := &eodhd.Client{
			APIKey:  p.EODHD.APIKey,
			BaseURL: p.EODHD.BaseURL,
			HTTP:    eodhd.NewCachingClient(p.EODHD.CacheDir, date.Daily),
			Field:   p.EODHD.Field,
		}
		pipeline.Sources = append(pipeline.Sources, eodhd.Source{Client: client, Benchmarks: benchmarks})
	}

	switch {
	case p.Inflation.Path != "":
		unit, err := inflation.ParseUnit(p.Inflation.Unit)
		if err != nil {
			return nil, err
		}
		pipeline.Inflation = inflation.File{
			Path:       p.Inflation.Path,
			Column:     p.Inflation.Column,
			Unit:       unit,
			Cumulative: p.Inflation.Cumulative,
		}
	case p.Inflation.INSEE != "":
		pipeline.Inflation = insee.Source{Client: &insee.Client{}, IDBank: p.Inflation.INSEE}
		// a price index is monthly at best.
		pipeline.ProjectInflation = true
	}
	return pipeline, nil
}

// State returns the initial display state of the profile.
func (p *Profile) State() (curves.DisplayState, error) {
	scale, err := curves.ParseScale(p.Scale)
	if err != nil {
		return curves.DisplayState{}, err
	}
	return curves.DisplayState{
		Selection: p.Selection,
		Scale:     scale,
		Principal: decimal.NewFromFloat(p.Principal),
		Inflation: p.Inflation.Enabled,
		Range:     p.Range(),
	}, nil
}
