// imgproc writes a frame from the webcam (or an image file) to PNG along
// with any requested derived images: greyscale, greyscale histogram,
// Gaussian blur and Canny edge detection.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/teslashibe/go-webcam/internal/config"
	"github.com/teslashibe/go-webcam/internal/log"
	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"github.com/teslashibe/go-webcam/pkg/pipeline"
)

func main() {
	defaults := frame.DefaultFilterSettings()

	input := flag.String("in", "", "read this image (BMP, JPG, PNG, ...) instead of the webcam")
	outDir := flag.String("out", config.OutputDir(), "output directory (or set IMGPROC_OUT)")
	cameraIndex := flag.Int("camera", config.CameraIndex(), "webcam device index (or set CAMERA_INDEX)")
	grey := flag.Bool("grey", false, "output greyscale image")
	hist := flag.Bool("histogram", false, "output greyscale histogram")
	bars := flag.Bool("bars", false, "draw the histogram as bars instead of a line")
	blur := flag.Bool("blur", false, "output image with Gaussian blur")
	kx := flag.Int("ksize-x", defaults.KernelSize.X, "kernel x-size for Gaussian blur")
	ky := flag.Int("ksize-y", defaults.KernelSize.Y, "kernel y-size for Gaussian blur")
	sigmaX := flag.Float64("sigma-x", defaults.SigmaX, "standard deviation in x for Gaussian blur")
	edges := flag.Bool("edge", false, "output image with Canny edge detection")
	lower := flag.Float64("threshold-l", defaults.ThresholdLower, "lower threshold for Canny edge detection")
	upper := flag.Float64("threshold-u", defaults.ThresholdUpper, "upper threshold for Canny edge detection")
	all := flag.Bool("all", false, "output all image filter types")
	logLevel := flag.String("log-level", config.LogLevel(), "debug, info, warn or error")
	flag.Parse()

	log.Init(*logLevel)

	var (
		f    *frame.Frame
		name string
		err  error
	)
	if *input == "" {
		cfg := camera.DefaultConfig()
		cfg.Index = *cameraIndex
		m, cerr := camera.CaptureFrame(cfg, camera.WithLogger(log.L()))
		if cerr != nil {
			fmt.Fprintln(os.Stderr, pipeline.Message(cerr))
			os.Exit(pipeline.ExitCode(cerr))
		}
		f, err = frame.New(m)
		name = "webcam"
	} else {
		f, err = frame.Load(*input)
		name = strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	}
	if err != nil {
		log.Error("failed to load frame", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	plotOpts := histplot.DefaultOptions()
	plotOpts.Title = name + " greyscale histogram"
	if *bars {
		plotOpts.Style = histplot.StyleBar
	}

	opts := pipeline.BatchOptions{
		OutputDir:    *outDir,
		Name:         name,
		Greyscale:    *grey,
		Histogram:    *hist,
		GaussianBlur: *blur,
		CannyEdge:    *edges,
		Filter: frame.FilterSettings{
			KernelSize:     image.Pt(*kx, *ky),
			SigmaX:         *sigmaX,
			ThresholdLower: *lower,
			ThresholdUpper: *upper,
		},
		HistCfg: histogram.DefaultConfig(),
		Plot:    plotOpts,
	}
	if *all {
		opts.All()
	}

	written, err := pipeline.Batch(f, opts, log.L())
	if err != nil {
		log.Error("processing failed", "error", err)
		f.Close()
		os.Exit(1)
	}
	log.Info("done", "files", len(written))
}
