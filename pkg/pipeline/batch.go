package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
	"github.com/teslashibe/go-webcam/pkg/histplot"
)

// Output file suffixes written by Batch.
const (
	SuffixGreyscale = "_greyscale"
	SuffixHistogram = "_greyscale_histogram"
	SuffixBlur      = "_gaussian_blur"
	SuffixEdges     = "_canny_edge_detection"
)

// BatchOptions selects which derived images Batch writes.
type BatchOptions struct {
	OutputDir string
	Name      string // file name stem, e.g. "webcam" or the input basename

	Greyscale    bool
	Histogram    bool
	GaussianBlur bool
	CannyEdge    bool

	Filter  frame.FilterSettings
	HistCfg histogram.Config
	Plot    histplot.Options
}

// All enables every output.
func (o *BatchOptions) All() {
	o.Greyscale = true
	o.Histogram = true
	o.GaussianBlur = true
	o.CannyEdge = true
}

// Batch writes <name>.png and each selected derived image to OutputDir.
// The frame is reset after every filter, so outputs never stack.
// It returns the written paths in order.
func Batch(f *frame.Frame, opts BatchOptions, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("batch: output name required")
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	path := func(suffix string) string {
		return filepath.Join(dir, opts.Name+suffix+".png")
	}
	save := func(p string) error {
		if err := f.Save(p); err != nil {
			return err
		}
		written = append(written, p)
		logger.Info("image written", "path", p)
		return nil
	}
	filtered := func(t frame.FilterType, suffix string) error {
		defer f.Reset()
		if err := f.ApplyFilter(t, opts.Filter); err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
		return save(path(suffix))
	}

	if err := save(path("")); err != nil {
		return written, err
	}

	if opts.Greyscale {
		if err := filtered(frame.FilterGreyscale, SuffixGreyscale); err != nil {
			return written, err
		}
	}

	if opts.Histogram {
		hist, err := f.GreyscaleHistogram(opts.HistCfg)
		if err != nil {
			return written, err
		}
		p := path(SuffixHistogram)
		if err := histplot.Save(hist, opts.Plot, p); err != nil {
			return written, err
		}
		written = append(written, p)
		logger.Info("histogram written", "path", p, "pixels", hist.Total())
	}

	if opts.GaussianBlur {
		if err := filtered(frame.FilterGaussianBlur, SuffixBlur); err != nil {
			return written, err
		}
	}

	if opts.CannyEdge {
		if err := filtered(frame.FilterCannyEdge, SuffixEdges); err != nil {
			return written, err
		}
	}

	return written, nil
}
