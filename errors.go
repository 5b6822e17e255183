package curves

import "errors"

// Input contract violations.
var (
	// ErrInputFormat reports a malformed record in a source (bad date, non numeric cell).
	ErrInputFormat = errors.New("invalid input format")
	// ErrInvalidInput reports a structurally invalid input (unsorted or duplicated dates, duplicated names).
	ErrInvalidInput = errors.New("invalid input")
)

// Precondition violations: the computation is undefined, never coerced to zero or NaN.
var (
	// ErrUndefinedScale reports a series whose first value is zero or missing.
	ErrUndefinedScale = errors.New("undefined normalization scale")
	// ErrInvalidReference reports a non positive normalization reference.
	ErrInvalidReference = errors.New("invalid normalization reference")
	// ErrMissingRate reports a date with no entry in the inflation table.
	ErrMissingRate = errors.New("missing inflation rate")
	// ErrInvalidRate reports an inflation rate that makes the deflation factor zero.
	ErrInvalidRate = errors.New("invalid inflation rate")
)

// IsPrecondition reports whether err is a precondition violation of the pipeline.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrUndefinedScale) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrMissingRate) ||
		errors.Is(err, ErrInvalidRate)
}

// IsInput reports whether err is caused by invalid input data.
func IsInput(err error) bool {
	return errors.Is(err, ErrInputFormat) || errors.Is(err, ErrInvalidInput)
}
