// Package pipeline runs the capture → greyscale → histogram → plot flow.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/display"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"gocv.io/x/gocv"
)

// Window titles used by Run.
const (
	WindowFrame     = "frame"
	WindowGrey      = "grey_frame"
	WindowHistogram = "histogram"
)

// Config holds everything the single-shot flow needs.
type Config struct {
	Camera    camera.Config
	Histogram histogram.Config
	Plot      histplot.Options
}

// DefaultConfig captures from device 0 and plots a 256-bin line histogram.
func DefaultConfig() Config {
	plot := histplot.DefaultOptions()
	plot.Title = "Greyscale Histogram"
	return Config{
		Camera:    camera.DefaultConfig(),
		Histogram: histogram.DefaultConfig(),
		Plot:      plot,
	}
}

// Result describes a completed run.
type Result struct {
	Rows      int
	Cols      int
	Histogram *histogram.Histogram
}

// Runner executes the flow against a viewer and a camera opener.
type Runner struct {
	cfg        Config
	viewer     display.Viewer
	cameraOpts []camera.Option
	log        *slog.Logger
}

// NewRunner creates a runner. cameraOpts are passed to camera.Open.
func NewRunner(cfg Config, viewer display.Viewer, logger *slog.Logger, cameraOpts ...camera.Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:        cfg,
		viewer:     viewer,
		cameraOpts: append([]camera.Option{camera.WithLogger(logger)}, cameraOpts...),
		log:        logger,
	}
}

// Run captures one frame, shows it, shows its greyscale version, then
// computes and shows the histogram plot. Each show blocks on the viewer.
// The camera and the viewer's windows are released on every return path.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	defer func() {
		if cerr := r.viewer.Close(); cerr != nil {
			r.log.Warn("failed to destroy windows", "error", cerr)
		}
	}()

	if !r.cfg.Histogram.Consistent() {
		r.log.Warn("histogram bins and range disagree, counts will misrepresent the frame",
			"bins", r.cfg.Histogram.Bins, "min", r.cfg.Histogram.Min, "max", r.cfg.Histogram.Max)
	}

	cam, err := camera.Open(r.cfg.Camera, r.cameraOpts...)
	if err != nil {
		return nil, err
	}
	defer cam.Close()

	m, err := cam.Read()
	if err != nil {
		return nil, err
	}
	f, err := frame.New(m)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: %v", camera.ErrFrameRead, err)
	}
	defer f.Close()
	r.log.Info("frame captured", "rows", f.Rows(), "cols", f.Cols(), "space", f.ColorSpace())

	if err := r.show(ctx, WindowFrame, f.Mat()); err != nil {
		return nil, err
	}

	gray, err := f.Greyscale()
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	if err := r.show(ctx, WindowGrey, gray); err != nil {
		return nil, err
	}

	hist, err := histogram.Compute(gray, r.cfg.Histogram)
	if err != nil {
		return nil, err
	}
	stats := hist.Stats()
	r.log.Info("histogram computed", "pixels", hist.Total(), "mean", stats.Mean, "stddev", stats.StdDev, "mode", stats.Mode)

	png, err := histplot.PNG(hist, r.cfg.Plot)
	if err != nil {
		return nil, err
	}
	plotFrame, err := frame.Decode(png)
	if err != nil {
		return nil, fmt.Errorf("decode plot: %w", err)
	}
	defer plotFrame.Close()

	if err := r.show(ctx, WindowHistogram, plotFrame.Mat()); err != nil {
		return nil, err
	}

	return &Result{Rows: f.Rows(), Cols: f.Cols(), Histogram: hist}, nil
}

func (r *Runner) show(ctx context.Context, title string, img gocv.Mat) error {
	if err := r.viewer.Show(title, img); err != nil {
		return fmt.Errorf("show %s: %w", title, err)
	}
	return r.viewer.Wait(ctx)
}
