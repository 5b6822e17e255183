// Package eodhd fetches benchmark end of day prices from the EOD Historical Data API.
//
// See https://eodhd.com/financial-apis/api-for-historical-data-and-volumes
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// DefaultField is the price field used when none is configured.
//
// Adjusted prices account for splits and distributions, so the benchmark curve compares with
// a strategy valuation.
const DefaultField = "adjusted_close"

// Benchmark identifies an instrument on an EODHD venue, e.g. GDAXI.INDX or LU0323577840.EUFUND.
type Benchmark struct {
	Symbol string
	Venue  string
}

// ParseBenchmark parses "SYMBOL.VENUE". The venue is what follows the last dot.
func ParseBenchmark(s string) (Benchmark, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Benchmark{}, fmt.Errorf("invalid benchmark %q, want SYMBOL.VENUE", s)
	}
	return Benchmark{Symbol: s[:i], Venue: s[i+1:]}, nil
}

// String returns the "{symbol}.{venue}" key, also used as the series name.
func (b Benchmark) String() string { return b.Symbol + "." + b.Venue }

// Set implements flag.Value.
func (b *Benchmark) Set(s string) (err error) {
	*b, err = ParseBenchmark(s)
	return err
}

// Client reads end of day series from EODHD.
//
// A Client only holds configuration and can be shared between goroutines.
type Client struct {
	APIKey string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// HTTP defaults to a client with a daily disk cache.
	HTTP *http.Client
	// Field is the price field to read, DefaultField if empty.
	Field string
}

// NewClient returns a Client for apiKey with a daily disk cache.
func NewClient(apiKey string) *Client {
	return &Client{APIKey: apiKey, HTTP: NewCachingClient("", date.Daily)}
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) field() string {
	if c.Field == "" {
		return DefaultField
	}
	return c.Field
}

// EOD returns the end of day series of b within r. Open bounds are not sent to the API.
func (c *Client) EOD(ctx context.Context, b Benchmark, r date.Range) (*curves.Series, error) {
	// https://eodhd.com/api/eod/GDAXI.INDX?api_token=demo&fmt=json&from=2017-06-30
	// [
	//  {
	//    "date": "2017-06-30",
	//    "open": 12380.48,
	//    "high": 12428.01,
	//    "low": 12301.24,
	//    "close": 12325.12,
	//    "adjusted_close": 12325.12,
	//    "volume": 137016000
	//  },
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.APIKey)
	if !r.From.IsZero() {
		q.Set("from", r.From.String())
	}
	if !r.To.IsZero() {
		q.Set("to", r.To.String())
	}
	addr := fmt.Sprintf("%s/eod/%s?%s", c.baseURL(), url.PathEscape(b.String()), q.Encode())

	var jobj any
	if err := jwget(ctx, c.client(), addr, &jobj); err != nil {
		return nil, fmt.Errorf("fetching %v: %w", b, err)
	}
	items, ok := jobj.([]any)
	if !ok {
		return nil, fmt.Errorf("fetching %v: response is not a list: %w", b, curves.ErrInputFormat)
	}

	builder := &curves.SeriesBuilder{Name: b.String()}
	path := "$." + c.field()
	for i, item := range items {
		jdate, err := jsonpath.Get("$.date", item)
		if err != nil {
			return nil, fmt.Errorf("%v item %d: %w: %w", b, i, curves.ErrInputFormat, err)
		}
		sdate, _ := jdate.(string)
		on, err := date.Parse(sdate)
		if err != nil {
			return nil, fmt.Errorf("%v item %d: %w: %w", b, i, curves.ErrInputFormat, err)
		}
		jval, err := jsonpath.Get(path, item)
		if err != nil {
			return nil, fmt.Errorf("%v on %v: no field %q: %w", b, on, c.field(), curves.ErrInputFormat)
		}
		if jval == nil {
			// the API reports days without a price as null.
			log.Printf("%v on %v: no %s, skipped", b, on, c.field())
			continue
		}
		v, err := toDecimal(jval)
		if err != nil {
			return nil, fmt.Errorf("%v on %v: %w", b, on, err)
		}
		builder.Add(on, v)
	}
	return builder.Series()
}

func toDecimal(jval any) (decimal.Decimal, error) {
	switch v := jval.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid number %q: %w", v, curves.ErrInputFormat)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid number %q: %w", v, curves.ErrInputFormat)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v: %w", jval, curves.ErrInputFormat)
	}
}

// Source is a curves.Source fetching every benchmark on each call.
type Source struct {
	Client     *Client
	Benchmarks []Benchmark
}

// Fetch returns one series per benchmark, in order. Errors of all benchmarks are joined.
func (s Source) Fetch(ctx context.Context, r date.Range) ([]*curves.Series, error) {
	series := make([]*curves.Series, 0, len(s.Benchmarks))
	var errs error
	for _, b := range s.Benchmarks {
		x, err := s.Client.EOD(ctx, b, r)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		series = append(series, x)
	}
	if errs != nil {
		return nil, errs
	}
	return series, nil
}
