// Package frame wraps a captured image and the filters applied to it.
package frame

import (
	"fmt"

	"github.com/teslashibe/go-webcam/pkg/histogram"
	"gocv.io/x/gocv"
)

// Frame holds the image as captured plus its current filtered state.
// Reset goes back to the captured image. Close releases both Mats.
type Frame struct {
	original gocv.Mat
	current  gocv.Mat
	space    ColorSpace
}

// New takes ownership of m. The color space is inferred from the channel
// count: three channels are assumed BGR as OpenCV delivers them.
func New(m gocv.Mat) (*Frame, error) {
	if m.Empty() {
		return nil, ErrEmptyFrame
	}
	return &Frame{
		original: m,
		current:  m.Clone(),
		space:    spaceOf(m),
	}, nil
}

// Load reads an image file (BMP, JPEG, PNG, ...) as BGR.
func Load(path string) (*Frame, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	if m.Empty() {
		m.Close()
		return nil, fmt.Errorf("%w: cannot read %s", ErrEmptyFrame, path)
	}
	return New(m)
}

// Decode decodes an encoded image (e.g. PNG bytes) as BGR.
func Decode(data []byte) (*Frame, error) {
	m, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if m.Empty() {
		m.Close()
		return nil, ErrEmptyFrame
	}
	return New(m)
}

func spaceOf(m gocv.Mat) ColorSpace {
	switch m.Channels() {
	case 3:
		return BGR
	case 1:
		return Gray
	default:
		return Other
	}
}

// Mat returns the current image. It stays owned by the Frame.
func (f *Frame) Mat() gocv.Mat {
	return f.current
}

// ColorSpace returns the layout of the current image.
func (f *Frame) ColorSpace() ColorSpace {
	return f.space
}

// Rows returns the image height.
func (f *Frame) Rows() int { return f.current.Rows() }

// Cols returns the image width.
func (f *Frame) Cols() int { return f.current.Cols() }

// Reset sets the frame back to what it was upon creation.
func (f *Frame) Reset() {
	f.replace(f.original.Clone(), spaceOf(f.original))
}

func (f *Frame) replace(m gocv.Mat, space ColorSpace) {
	f.current.Close()
	f.current = m
	f.space = space
}

// ApplyFilter transforms the current image. Filters stack; use Reset to undo.
func (f *Frame) ApplyFilter(t FilterType, s FilterSettings) error {
	if err := s.Validate(t); err != nil {
		return err
	}

	switch t {
	case FilterNone:
		return nil

	case FilterGreyscale:
		if f.space == Gray {
			return nil
		}
		gray, err := Greyscale(f.current)
		if err != nil {
			return err
		}
		f.replace(gray, Gray)
		return nil

	case FilterGaussianBlur:
		dst := gocv.NewMat()
		if err := gocv.GaussianBlur(f.current, &dst, s.KernelSize, s.SigmaX, 0, gocv.BorderDefault); err != nil {
			dst.Close()
			return fmt.Errorf("gaussian blur: %w", err)
		}
		f.replace(dst, f.space)
		return nil

	case FilterCannyEdge:
		gray, err := f.Greyscale()
		if err != nil {
			return err
		}
		defer gray.Close()
		edges := gocv.NewMat()
		if err := gocv.Canny(gray, &edges, float32(s.ThresholdLower), float32(s.ThresholdUpper)); err != nil {
			edges.Close()
			return fmt.Errorf("canny: %w", err)
		}
		f.replace(edges, Other)
		return nil

	default:
		return fmt.Errorf("%w: %v", ErrUnknownFilter, t)
	}
}

// Greyscale returns a greyscale copy of the current image without
// changing the frame. The caller owns the returned Mat.
func (f *Frame) Greyscale() (gocv.Mat, error) {
	switch f.space {
	case Gray:
		return f.current.Clone(), nil
	case BGR:
		return Greyscale(f.current)
	default:
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUnsupportedColorSpace, f.space)
	}
}

// GreyscaleHistogram computes the histogram of the frame's greyscale view.
// The frame must be BGR or already greyscale.
func (f *Frame) GreyscaleHistogram(cfg histogram.Config) (*histogram.Histogram, error) {
	gray, err := f.Greyscale()
	if err != nil {
		return nil, err
	}
	defer gray.Close()
	return histogram.Compute(gray, cfg)
}

// Close releases the frame's images.
func (f *Frame) Close() error {
	f.current.Close()
	return f.original.Close()
}

// Greyscale converts a BGR image with OpenCV's fixed luminance weights.
// The caller owns the returned Mat.
func Greyscale(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, ErrEmptyFrame
	}
	if src.Channels() != 3 {
		return gocv.Mat{}, fmt.Errorf("%w: want 3 channels, got %d", ErrUnsupportedColorSpace, src.Channels())
	}
	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, gocv.ColorBGRToGray); err != nil {
		dst.Close()
		return gocv.Mat{}, fmt.Errorf("convert to greyscale: %w", err)
	}
	return dst, nil
}
