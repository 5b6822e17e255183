package csvio

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/etnz/curves"
	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	testCases := []struct {
		cell string
		want string
	}{
		{"100", "100"},
		{"100,5", "100.5"},
		{"1.234,56 €", "1234.56"},
		{"1.234.567,8€", "1234567.8"},
		{" 99,99 € ", "99.99"},
		{"101.25", "101.25"},
		{"-0,5", "-0.5"},
		{"1 234,5", "1234.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.cell, func(t *testing.T) {
			got, err := ParseDecimal(tc.cell)
			if err != nil {
				t.Fatalf("ParseDecimal(%q) unexpected error: %v", tc.cell, err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("ParseDecimal(%q) = %v, want %v", tc.cell, got, tc.want)
			}
		})
	}
}

func TestParseDecimal_Errors(t *testing.T) {
	for _, cell := range []string{"", "€", "abc", "1,2,3", "12x"} {
		t.Run(cell, func(t *testing.T) {
			if _, err := ParseDecimal(cell); !errors.Is(err, curves.ErrInputFormat) {
				t.Errorf("ParseDecimal(%q) error = %v, want ErrInputFormat", cell, err)
			}
		})
	}
}

func TestReader(t *testing.T) {
	data := "\ufeffDate; Cash ;Offensiv\n30.06.17;100,00 €;100,00 €\n\n;;\n03.07.17;100,10 €;102,00 €\n"
	r, err := NewReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader() unexpected error: %v", err)
	}
	if got := strings.Join(r.Header, "|"); got != "Date|Cash|Offensiv" {
		t.Errorf("Header = %q, want %q", got, "Date|Cash|Offensiv")
	}
	if i, ok := r.Column("cash"); !ok || i != 1 {
		t.Errorf("Column(cash) = %d, %v, want 1, true", i, ok)
	}

	var lines []int
	for {
		line, _, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read() unexpected error: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 2 || lines[0] != 2 || lines[1] != 5 {
		t.Errorf("Read() lines = %v, want [2 5]", lines)
	}
}

func TestReader_Errors(t *testing.T) {
	if _, err := NewReader(strings.NewReader("")); !errors.Is(err, curves.ErrInputFormat) {
		t.Errorf("NewReader(empty) error = %v, want ErrInputFormat", err)
	}
	r, err := NewReader(strings.NewReader("Date;Cash\n30.06.17;1;2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Read(); !errors.Is(err, curves.ErrInputFormat) {
		t.Errorf("Read(extra field) error = %v, want ErrInputFormat", err)
	}
}
