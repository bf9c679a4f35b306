package frame

import (
	"fmt"
	"image"
)

// ColorSpace describes the channel layout of a frame.
type ColorSpace int

const (
	// BGR has blue, green and red channels in that order (OpenCV default).
	BGR ColorSpace = iota
	// Gray has a single brightness channel.
	Gray
	// Other is any other layout, e.g. an edge map.
	Other
)

func (c ColorSpace) String() string {
	switch c {
	case BGR:
		return "bgr"
	case Gray:
		return "gray"
	default:
		return "other"
	}
}

// FilterType selects a transformation for ApplyFilter.
type FilterType int

const (
	FilterNone FilterType = iota
	FilterGreyscale
	FilterGaussianBlur
	FilterCannyEdge
)

func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterGreyscale:
		return "greyscale"
	case FilterGaussianBlur:
		return "gaussian_blur"
	case FilterCannyEdge:
		return "canny_edge_detection"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// ParseFilterType returns the filter whose String form is name.
func ParseFilterType(name string) (FilterType, error) {
	for t := FilterNone; t <= FilterCannyEdge; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return FilterNone, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// FilterSettings carries the parameters of every filter; each filter reads
// only its own fields.
type FilterSettings struct {
	// Gaussian blur kernel, both dimensions odd and positive.
	KernelSize image.Point
	// Gaussian blur standard deviation in X; 0 derives it from the kernel.
	SigmaX float64

	// Canny hysteresis thresholds.
	ThresholdLower float64
	ThresholdUpper float64
}

// DefaultFilterSettings returns a 5x5 blur kernel and Canny thresholds 100/200.
func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		KernelSize:     image.Pt(5, 5),
		SigmaX:         0,
		ThresholdLower: 100,
		ThresholdUpper: 200,
	}
}

// Validate checks the fields used by filter t.
func (s FilterSettings) Validate(t FilterType) error {
	switch t {
	case FilterNone, FilterGreyscale:
	case FilterGaussianBlur:
		k := s.KernelSize
		if k.X <= 0 || k.Y <= 0 || k.X%2 == 0 || k.Y%2 == 0 {
			return fmt.Errorf("%w: kernel %dx%d must be odd and positive", ErrInvalidSettings, k.X, k.Y)
		}
		if s.SigmaX < 0 {
			return fmt.Errorf("%w: sigma x %g is negative", ErrInvalidSettings, s.SigmaX)
		}
	case FilterCannyEdge:
		if s.ThresholdLower < 0 || s.ThresholdUpper < s.ThresholdLower {
			return fmt.Errorf("%w: thresholds %g/%g", ErrInvalidSettings, s.ThresholdLower, s.ThresholdUpper)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFilter, t)
	}
	return nil
}
