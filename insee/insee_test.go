package insee

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/shopspring/decimal"
)

const monthlyCSV = `"Libellé";"Indice des prix à la consommation - Base 2015 - Ensemble des ménages - France - Ensemble";"Codes"
"idBank";"001759970";""
"Dernière mise à jour";"15/09/2017 08:45";""
"Période";"";""
"2017-08";"101.50";"A"
"2017-07";"101.00";"A"
"2017-06";"100.00";"A"
"2017-05";"99.90";"A"
`

func TestParseSeries(t *testing.T) {
	csvData := `"Libellé";"Indice des prix des logements anciens - Province - Série CVS";"Codes"
"idBank";"010567069";""
"Dernière mise à jour";"28/08/2025 08:45";""
"Période";"";""
"2025-T4";"";""
"2025-T3";"";""
"2025-T2";"135.2";"P"
"2025-T1";"135.6";"A"
"2024-T4";"133.4";"A"
`

	series, err := parseSeries(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}

	expectedLibelle := "Indice des prix des logements anciens - Province - Série CVS"
	if series.Libelle != expectedLibelle {
		t.Errorf("got Libelle %q, want %q", series.Libelle, expectedLibelle)
	}
	if series.IDBank != "010567069" {
		t.Errorf("got IDBank %q, want %q", series.IDBank, "010567069")
	}
	expectedLastUpdate := time.Date(2025, 8, 28, 8, 45, 0, 0, time.UTC)
	if !series.LastUpdate.Equal(expectedLastUpdate) {
		t.Errorf("got LastUpdate %v, want %v", series.LastUpdate, expectedLastUpdate)
	}
	if len(series.Values) != 3 {
		t.Errorf("got %d values, want 3", len(series.Values))
	}

	testCases := map[date.Date]string{
		date.New(2025, 6, 30):  "135.2",
		date.New(2025, 3, 31):  "135.6",
		date.New(2024, 12, 31): "133.4",
	}
	for on, want := range testCases {
		if val, ok := series.Values[on]; !ok || !val.Equal(decimal.RequireFromString(want)) {
			t.Errorf("for date %v, got %v, want %s", on, val, want)
		}
	}
}

func TestParseSeries_Monthly(t *testing.T) {
	series, err := parseSeries(strings.NewReader(monthlyCSV))
	if err != nil {
		t.Fatalf("parseSeries() failed: %v", err)
	}
	if v, ok := series.Values[date.New(2017, 7, 31)]; !ok || !v.Equal(decimal.NewFromInt(101)) {
		t.Errorf("July 2017 value = %v, %v, want 101 on 2017-07-31", v, ok)
	}
}

func TestParseSeries_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
		wantErr string
	}{
		{
			name: "bad last update date",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"not-a-date"
"Période";""
`,
			wantErr: "failed to parse last update date",
		},
		{
			name: "bad quarterly date",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-T5";"135.2"`,
			wantErr: "invalid quarter in quarterly date",
		},
		{
			name: "bad monthly date",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-13";"135.2"`,
			wantErr: "invalid month in monthly date",
		},
		{
			name: "bad value",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour";"28/08/2025 08:45"
"Période";""
"2025-T2";"not-a-float"`,
			wantErr: "failed to parse value",
		},
		{
			name:    "header without values",
			csvData: "Libelle\nidBank\nupdate\nperiod\n2024-01;100\n",
			wantErr: "line 1: no label value in header",
		},
		{
			name: "last update without value",
			csvData: `"Libellé";"..."
"idBank";"..."
"Dernière mise à jour"
"Période";""
`,
			wantErr: "line 3: no last update value in header",
		},
		{
			name: "not enough records",
			csvData: `"Libellé";"..."
"idBank";"..."`,
			wantErr: "not enough records in csv",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSeries(strings.NewReader(tc.csvData))
			if err == nil {
				t.Fatalf("parseSeries() expected an error, but got none")
			}
			if !errors.Is(err, curves.ErrInputFormat) {
				t.Errorf("parseSeries() error = %v, want ErrInputFormat", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("parseSeries() error = %q, want to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestSeries_Rates(t *testing.T) {
	series, err := parseSeries(strings.NewReader(monthlyCSV))
	if err != nil {
		t.Fatal(err)
	}
	testCases := []struct {
		name string
		base date.Date
		on   date.Date
		want string
	}{
		{"base in force", date.New(2017, 7, 3), date.New(2017, 8, 31), "0.015"},
		{"base on index date", date.New(2017, 7, 31), date.New(2017, 8, 31), "0.004950495049505"},
		{"base after index date", date.New(2017, 8, 1), date.New(2017, 8, 31), "0.004950495049505"},
		{"base before index", date.New(2010, 1, 1), date.New(2017, 6, 30), "0.001001001001001"},
		{"zero base", date.Date{}, date.New(2017, 5, 31), "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := series.Rates(tc.base)
			if err != nil {
				t.Fatalf("Rates() unexpected error: %v", err)
			}
			got, ok := table.Rate(tc.on)
			if !ok {
				t.Fatalf("Rates() has no rate on %v", tc.on)
			}
			if !got.Round(15).Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("Rates() on %v = %v, want %s", tc.on, got, tc.want)
			}
		})
	}
}

// zipped returns a zip archive holding content as name.
func zipped(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestReadArchive(t *testing.T) {
	if _, err := readArchive("001759970", zipped(t, "valeurs_mensuelles.csv", monthlyCSV)); err != nil {
		t.Errorf("readArchive() unexpected error: %v", err)
	}
	_, err := readArchive("001759970", zipped(t, "caracteristiques.csv", "x"))
	if err == nil || !strings.Contains(err.Error(), "caracteristiques.csv") {
		t.Errorf("readArchive() error = %v, want the list of found files", err)
	}
	if _, err := readArchive("001759970", []byte("not a zip")); err == nil {
		t.Error("readArchive() expected an error for a non zip body")
	}
}

func TestSource_Inflation(t *testing.T) {
	archive := zipped(t, "valeurs_mensuelles.csv", monthlyCSV)
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/001759970/csv" {
			http.NotFound(w, r)
			return
		}
		query = r.URL.RawQuery
		w.Write(archive)
	}))
	defer srv.Close()

	src := Source{Client: &Client{BaseURL: srv.URL}, IDBank: "001759970"}
	r := date.Between(date.New(2017, 7, 3), date.New(2017, 8, 31))
	table, err := src.Inflation(context.Background(), r)
	if err != nil {
		t.Fatalf("Inflation() unexpected error: %v", err)
	}
	if !strings.Contains(query, "anneeDebut=2017&anneeFin=2017") || !strings.Contains(query, "periodeDebut=2&periodeFin=3") {
		t.Errorf("Inflation() query = %q, want from Q2 2017 to Q3 2017", query)
	}
	// the June index is in force on 2017-07-03, it is the base.
	if got, _ := table.Rate(date.New(2017, 6, 30)); !got.IsZero() {
		t.Errorf("Rate(2017-06-30) = %v, want 0", got)
	}
	if got, _ := table.Rate(date.New(2017, 7, 31)); !got.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Rate(2017-07-31) = %v, want 0.01", got)
	}

	src.IDBank = "unknown"
	if _, err := src.Inflation(context.Background(), r); err == nil {
		t.Error("Inflation(unknown) expected an error")
	}
}

func TestClient_Series_Live(t *testing.T) {
	// This is an integration test that hits the live INSEE server.
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	idBank := "001763825" // Indice des prix à la consommation
	series, err := (&Client{}).Series(context.Background(), idBank, date.Between(date.New(2023, 12, 31), date.New(2025, 1, 1)))
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if series.IDBank != idBank {
		t.Errorf("got IDBank %q, want %q", series.IDBank, idBank)
	}
	if len(series.Values) == 0 {
		t.Error("expected to get some values, but got none")
	}
}
