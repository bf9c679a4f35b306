// Package histplot renders intensity histograms with gonum/plot.
package histplot

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/teslashibe/go-webcam/pkg/histogram"
)

// Axis labels used on every histogram plot.
const (
	XLabel = "Pixel Values (Bins)"
	YLabel = "# of Pixels"
)

// Style selects how counts are drawn.
type Style int

const (
	// StyleLine connects the count of each bin.
	StyleLine Style = iota
	// StyleBar draws one filled bar per bin.
	StyleBar
)

// Options controls plot appearance and output size.
type Options struct {
	Title  string
	Style  Style
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a 6x4 inch line plot.
func DefaultOptions() Options {
	return Options{
		Style:  StyleLine,
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// New builds the plot for h. The X axis spans exactly [Min, Max] of the
// histogram range, the Y axis starts at 0 and grows with the data.
func New(h *histogram.Histogram, opts Options) (*plot.Plot, error) {
	if h == nil || len(h.Counts) == 0 {
		return nil, fmt.Errorf("histplot: empty histogram")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel

	switch opts.Style {
	case StyleBar:
		bins := make([]plotter.HistogramBin, len(h.Counts))
		for i, c := range h.Counts {
			bins[i] = plotter.HistogramBin{
				Min:    h.Edge(i),
				Max:    h.Edge(i + 1),
				Weight: float64(c),
			}
		}
		bars := &plotter.Histogram{
			Bins:      bins,
			Width:     h.BinWidth(),
			FillColor: color.Gray{Y: 96},
			LineStyle: plotter.DefaultLineStyle,
		}
		bars.LineStyle.Width = 0
		p.Add(bars)

	default:
		pts := make(plotter.XYs, len(h.Counts))
		for i, c := range h.Counts {
			pts[i] = plotter.XY{X: h.Edge(i), Y: float64(c)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("histplot: line: %w", err)
		}
		line.Width = vg.Points(1)
		line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		p.Add(line)
	}

	// Pin ranges after Add, which widens them to fit the data.
	p.X.Min = h.Min
	p.X.Max = h.Max
	p.Y.Min = 0
	if p.Y.Max <= 0 {
		p.Y.Max = 1
	}
	return p, nil
}

// PNG renders h as PNG bytes.
func PNG(h *histogram.Histogram, opts Options) ([]byte, error) {
	p, err := New(h, opts)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("histplot: render: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("histplot: render: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders h to path; the format follows the file extension.
func Save(h *histogram.Histogram, opts Options, path string) error {
	p, err := New(h, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("histplot: save %s: %w", path, err)
	}
	return nil
}
