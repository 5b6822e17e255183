package curves

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultReference is the value every normalized curve starts from when no principal is given.
var DefaultReference = decimal.NewFromInt(100)

// Precision is the number of decimal digits kept by the normalizer.
const Precision = 2

// NormalizationSpec defines how series are rescaled.
//
// Values are rescaled so that the first one equals Reference, then rounded up (ceiling) to
// Precision digits.
type NormalizationSpec struct {
	Reference decimal.Decimal
}

// ReferenceFor returns the normalization spec for a user supplied principal.
//
// A zero or negative principal (including an absent one) falls back to DefaultReference.
func ReferenceFor(principal decimal.Decimal) NormalizationSpec {
	if !principal.IsPositive() {
		return NormalizationSpec{Reference: DefaultReference}
	}
	return NormalizationSpec{Reference: principal}
}

// Normalize returns a new series rescaled relatively to its first value:
//
//	normalized[i] = ceil(value[i] * reference / first, 2 digits)
//
// An empty series or a zero first value has no scale and is rejected with ErrUndefinedScale.
func Normalize(s *Series, spec NormalizationSpec) (*Series, error) {
	if !spec.Reference.IsPositive() {
		return nil, fmt.Errorf("reference %v: %w", spec.Reference, ErrInvalidReference)
	}
	on, first, ok := s.First()
	if !ok {
		return nil, fmt.Errorf("series %q is empty: %w", s.Name(), ErrUndefinedScale)
	}
	if first.IsZero() {
		return nil, fmt.Errorf("series %q is zero on %v: %w", s.Name(), on, ErrUndefinedScale)
	}

	n := &Series{
		name:   s.name,
		days:   s.days,
		values: make([]decimal.Decimal, len(s.values)),
	}
	for i, v := range s.values {
		// multiply before dividing: exact cents stay exact.
		n.values[i] = v.Mul(spec.Reference).Div(first).RoundCeil(Precision)
	}
	return n, nil
}
