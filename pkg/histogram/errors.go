package histogram

import "errors"

var (
	// ErrInvalidConfig is returned for a non-positive bin count or an empty range.
	ErrInvalidConfig = errors.New("histogram: invalid config")

	// ErrEmptyFrame is returned when computing over an empty Mat.
	ErrEmptyFrame = errors.New("histogram: empty frame")

	// ErrNotGreyscale is returned when the input is not single channel 8-bit.
	ErrNotGreyscale = errors.New("histogram: frame is not 8-bit greyscale")

	// ErrCountMismatch is returned when counts do not match the bin count.
	ErrCountMismatch = errors.New("histogram: counts do not match bins")
)
