package frame

import "errors"

var (
	// ErrEmptyFrame is returned when a frame has no pixels.
	ErrEmptyFrame = errors.New("frame: empty")

	// ErrUnsupportedColorSpace is returned when an operation needs BGR or greyscale input.
	ErrUnsupportedColorSpace = errors.New("frame: unsupported color space")

	// ErrUnknownFilter is returned for a FilterType with no handling.
	ErrUnknownFilter = errors.New("frame: unknown filter")

	// ErrInvalidSettings is returned when filter settings are out of range.
	ErrInvalidSettings = errors.New("frame: invalid filter settings")

	// ErrEncode is returned when an image cannot be encoded or written.
	ErrEncode = errors.New("frame: encode failed")
)
