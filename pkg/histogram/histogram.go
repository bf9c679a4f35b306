// Package histogram counts pixel intensities of greyscale frames.
//
// The default configuration is 256 bins over [0, 256), one bin per 8-bit
// intensity. Bin count and range must agree with each other; a config such
// as 256 bins over [0, 100) still computes, but every bin then covers a
// fraction of an intensity value and the counts misrepresent the frame.
// Config.Consistent reports that condition so callers can warn about it.
package histogram

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Default histogram parameters for 8-bit greyscale.
const (
	DefaultBins = 256
	DefaultMin  = 0
	DefaultMax  = 256
)

// Config selects the bin count and the half-open value range [Min, Max).
type Config struct {
	Bins int     `json:"bins"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DefaultConfig returns 256 bins over [0, 256).
func DefaultConfig() Config {
	return Config{Bins: DefaultBins, Min: DefaultMin, Max: DefaultMax}
}

// Validate rejects configurations that cannot produce a histogram.
func (c Config) Validate() error {
	if c.Bins <= 0 {
		return fmt.Errorf("%w: bins must be positive, got %d", ErrInvalidConfig, c.Bins)
	}
	if !(c.Max > c.Min) {
		return fmt.Errorf("%w: range [%g, %g) is empty", ErrInvalidConfig, c.Min, c.Max)
	}
	return nil
}

// BinWidth returns how many intensity values one bin spans.
func (c Config) BinWidth() float64 {
	return (c.Max - c.Min) / float64(c.Bins)
}

// Consistent reports whether every bin covers a whole number of
// intensity values.
func (c Config) Consistent() bool {
	if c.Validate() != nil {
		return false
	}
	w := c.BinWidth()
	return w >= 1 && w == math.Trunc(w)
}

// Histogram is an ordered sequence of counts; Counts[i] is the number of
// pixels falling in bin i.
type Histogram struct {
	Config
	Counts []uint64 `json:"counts"`
}

// Compute counts the pixels of a single channel 8-bit frame.
func Compute(gray gocv.Mat, cfg Config) (*Histogram, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gray.Empty() {
		return nil, ErrEmptyFrame
	}
	if gray.Channels() != 1 || gray.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("%w: %d channel(s), type %v", ErrNotGreyscale, gray.Channels(), gray.Type())
	}

	counts := make([]uint64, cfg.Bins)
	rows, cols := gray.Rows(), gray.Cols()
	band := max(maxBandPixels/cols, 1)
	for y := 0; y < rows; y += band {
		region := gray.Region(image.Rect(0, y, cols, min(y+band, rows)))
		err := accumulate(region, cfg, counts)
		region.Close()
		if err != nil {
			return nil, err
		}
	}
	return &Histogram{Config: cfg, Counts: counts}, nil
}

// calcHist counts in float32, which is exact only up to 2^24 per bin, so
// Compute feeds it row bands no larger than this.
var maxBandPixels = 1 << 24

// accumulate adds the histogram of one band to counts.
func accumulate(band gocv.Mat, cfg Config, counts []uint64) error {
	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	if err := gocv.CalcHist([]gocv.Mat{band}, []int{0}, mask, &hist,
		[]int{cfg.Bins}, []float64{cfg.Min, cfg.Max}, false); err != nil {
		return fmt.Errorf("calc histogram: %w", err)
	}
	// calcHist yields a Bins x 1 float32 column.
	if hist.Rows() != len(counts) {
		return fmt.Errorf("calc histogram: got %d bins, want %d", hist.Rows(), len(counts))
	}
	for i := range counts {
		counts[i] += uint64(math.Round(float64(hist.GetFloatAt(i, 0))))
	}
	return nil
}

// FromCounts builds a histogram from precomputed counts.
func FromCounts(cfg Config, counts []uint64) (*Histogram, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(counts) != cfg.Bins {
		return nil, fmt.Errorf("%w: %d counts for %d bins", ErrCountMismatch, len(counts), cfg.Bins)
	}
	c := make([]uint64, len(counts))
	copy(c, counts)
	return &Histogram{Config: cfg, Counts: c}, nil
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Edge returns the lower bound of bin i.
func (h *Histogram) Edge(i int) float64 {
	return h.Min + float64(i)*h.BinWidth()
}

// Stats summarizes the intensity distribution.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Mode   int     `json:"mode"` // bin with the most pixels, lowest on ties
	Min    int     `json:"min"`  // first non-empty bin
	Max    int     `json:"max"`  // last non-empty bin
}

// Stats computes population mean and standard deviation over bin lower
// edges weighted by count. An empty histogram yields the zero Stats.
func (h *Histogram) Stats() Stats {
	if h.Total() == 0 {
		return Stats{}
	}

	x := make([]float64, len(h.Counts))
	w := make([]float64, len(h.Counts))
	s := Stats{Min: -1}
	for i, c := range h.Counts {
		x[i] = h.Edge(i)
		w[i] = float64(c)
		if c == 0 {
			continue
		}
		if s.Min < 0 {
			s.Min = i
		}
		s.Max = i
		if c > h.Counts[s.Mode] {
			s.Mode = i
		}
	}
	s.Mean, s.StdDev = stat.PopMeanStdDev(x, w)
	return s
}
