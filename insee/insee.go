// Package insee downloads consumer price index series from the INSEE macro-economic database
// and turns them into inflation tables.
//
// A series is identified by its idBank, e.g. 001759970 for the monthly French CPI.
// See https://www.insee.fr/fr/information/2868055
package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the root of the INSEE series download service.
const DefaultBaseURL = "https://bdm.insee.fr/series"

// Client downloads INSEE series.
type Client struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// HTTP defaults to http.DefaultClient.
	HTTP *http.Client
}

// Series holds the data from an INSEE time series CSV file.
type Series struct {
	Libelle    string
	IDBank     string
	LastUpdate time.Time
	Values     map[date.Date]decimal.Decimal
}

// Series constructs the URL, downloads, and parses an INSEE time series over r.
func (c *Client) Series(ctx context.Context, idBank string, r date.Range) (*Series, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("lang", "fr")
	q.Set("ordre", "antechronologique")
	q.Set("transposition", "donneescolonne")
	q.Set("revision", "sansrevisions")
	// periods are quarters, whatever the series frequency.
	if !r.From.IsZero() {
		q.Set("periodeDebut", strconv.Itoa(int(r.From.Month()-1)/3+1))
		q.Set("anneeDebut", strconv.Itoa(r.From.Year()))
	}
	if !r.To.IsZero() {
		q.Set("periodeFin", strconv.Itoa(int(r.To.Month()-1)/3+1))
		q.Set("anneeFin", strconv.Itoa(r.To.Year()))
	}
	addr := fmt.Sprintf("%s/%s/csv?%s", strings.TrimSuffix(base, "/"), url.PathEscape(idBank), q.Encode())
	log.Println("Downloading from INSEE:", addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: %w", idBank, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download from INSEE for ID %s: received status %s", idBank, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return readArchive(idBank, body)
}

// readArchive finds and parses the values file of a downloaded zip archive.
func readArchive(idBank string, body []byte) (*Series, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive from INSEE response: %w", err)
	}

	var foundFiles []string
	for _, f := range zipReader.File {
		filename := f.Name
		foundFiles = append(foundFiles, filename)
		if filename == "valeurs_trimestrielles.csv" || filename == "valeurs_mensuelles.csv" {
			csvFile, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open '%s' from zip archive: %w", filename, err)
			}
			defer csvFile.Close()
			return parseSeries(csvFile)
		}
	}
	return nil, fmt.Errorf("could not find a values file (mensuelles or trimestrielles) in downloaded zip file for ID %s (found: %s)", idBank, strings.Join(foundFiles, ", "))
}

// parseInseeDate parses a string like "2025-T2" or "2025-08" into the last day of that period.
func parseInseeDate(s string) (date.Date, error) {
	if strings.Contains(s, "-T") {
		return parseQuarterlyDate(s)
	}

	parts := strings.Split(s, "-")
	if len(parts) == 2 {
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return date.Date{}, fmt.Errorf("invalid year in monthly date %q: %w", s, err)
		}
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return date.Date{}, fmt.Errorf("invalid month in monthly date %q", s)
		}
		return date.New(year, time.Month(month), 1).EndOf(date.Monthly), nil
	}
	return date.Date{}, fmt.Errorf("unrecognized insee date format: %q", s)
}

// parseQuarterlyDate parses a string like "2025-T2" into the last day of that quarter.
func parseQuarterlyDate(s string) (date.Date, error) {
	parts := strings.Split(s, "-T")
	if len(parts) != 2 {
		return date.Date{}, fmt.Errorf("invalid quarterly date format: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid year in quarterly date %q: %w", s, err)
	}

	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return date.Date{}, fmt.Errorf("invalid quarter in quarterly date %q", s)
	}
	return date.New(year, time.Month(quarter*3), 1).EndOf(date.Quarterly), nil
}

// parseSeries reads the INSEE CSV format from an io.Reader.
func parseSeries(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(records) < 4 {
		return nil, fmt.Errorf("not enough records in csv to parse series: %w", curves.ErrInputFormat)
	}
	// the three header rows are "label";"value".
	for i, name := range []string{"label", "idBank", "last update"} {
		if len(records[i]) < 2 {
			return nil, fmt.Errorf("line %d: no %s value in header: %w", i+1, name, curves.ErrInputFormat)
		}
	}

	series := &Series{
		Libelle: records[0][1],
		IDBank:  records[1][1],
		Values:  make(map[date.Date]decimal.Decimal),
	}

	series.LastUpdate, err = time.Parse("02/01/2006 15:04", records[2][1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse last update date %q: %w", records[2][1], curves.ErrInputFormat)
	}

	for i := 4; i < len(records); i++ {
		if len(records[i]) > 1 && records[i][1] != "" {
			on, err := parseInseeDate(records[i][0])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", curves.ErrInputFormat, err)
			}
			val, err := decimal.NewFromString(records[i][1])
			if err != nil {
				return nil, fmt.Errorf("failed to parse value %q for date %q: %w", records[i][1], records[i][0], curves.ErrInputFormat)
			}
			series.Values[on] = val
		}
	}
	return series, nil
}

// Rates returns the cumulative inflation since base: each index value v becomes v/v0 - 1,
// where v0 is the latest index on or before base, or the first one if base precedes them all.
// A zero base uses the first index.
func (s *Series) Rates(base date.Date) (*curves.InflationTable, error) {
	index := curves.NewInflationTable(s.Values)
	if index.Len() == 0 {
		return curves.NewInflationTable(nil), nil
	}
	days := index.Days()
	v0, _ := index.Rate(days[0])
	if !base.IsZero() {
		if projected := index.Project([]date.Date{base}); projected.Len() == 1 {
			v0, _ = projected.Rate(base)
		}
	}
	if v0.Sign() <= 0 {
		return nil, fmt.Errorf("index %s base value %v: %w", s.IDBank, v0, curves.ErrInvalidRate)
	}

	one := decimal.NewFromInt(1)
	rates := make(map[date.Date]decimal.Decimal, len(days))
	for on, v := range s.Values {
		rates[on] = v.Div(v0).Sub(one)
	}
	return curves.NewInflationTable(rates), nil
}

// Source is a curves.InflationSource backed by an INSEE price index.
//
// The table is relative to the start of the requested range, so every curve is expressed in
// money of that date.
type Source struct {
	Client *Client
	IDBank string
}

// Inflation downloads the index and returns its cumulative rates since r.From.
//
// The download starts one quarter before r.From so the index value in force on r.From is known.
func (s Source) Inflation(ctx context.Context, r date.Range) (*curves.InflationTable, error) {
	fetch := r
	if !fetch.From.IsZero() {
		fetch.From = fetch.From.StartOf(date.Quarterly).Add(-1)
	}
	series, err := s.Client.Series(ctx, s.IDBank, fetch)
	if err != nil {
		return nil, err
	}
	return series.Rates(r.From)
}
