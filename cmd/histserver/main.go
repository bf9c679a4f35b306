// histserver samples the webcam continuously and serves the latest frame,
// its greyscale histogram and the camera configuration over HTTP and
// websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-webcam/internal/config"
	"github.com/teslashibe/go-webcam/internal/log"
	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"github.com/teslashibe/go-webcam/pkg/pipeline"
	"github.com/teslashibe/go-webcam/pkg/web"
)

func main() {
	port := flag.String("port", config.ServerPort(), "HTTP server port (or set PORT)")
	cameraIndex := flag.Int("camera", config.CameraIndex(), "webcam device index (or set CAMERA_INDEX)")
	preset := flag.String("preset", camera.PresetLowRate, fmt.Sprintf("camera preset %v", camera.PresetNames()))
	logLevel := flag.String("log-level", config.LogLevel(), "debug, info, warn or error")
	flag.Parse()

	log.Init(*logLevel)

	cfg := camera.GetPreset(*preset)
	if cfg == nil {
		log.Error("unknown preset", "preset", *preset)
		os.Exit(1)
	}
	cfg.Index = *cameraIndex

	cam, err := camera.Open(*cfg, camera.WithLogger(log.L()))
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.Message(err))
		os.Exit(pipeline.ExitCode(err))
	}
	defer cam.Close()

	mgr := camera.NewManager(cam.Config())
	mgr.OnConfigChange = cam.Apply

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sampler := &pipeline.Sampler{
		Source:    cam,
		Histogram: histogram.DefaultConfig(),
		Interval:  func() time.Duration { return mgr.GetConfig().Interval() },
		Log:       log.L(),
	}
	if err := sampler.SetFilter(frame.FilterNone, frame.DefaultFilterSettings()); err != nil {
		log.Error("invalid filter settings", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(*port, mgr, sampler, histplot.DefaultOptions(), log.L())
	sampler.OnSnapshot = server.Publish

	samplerDone := make(chan error, 1)
	go func() { samplerDone <- sampler.Run(ctx) }()

	if err := server.Start(ctx); err != nil {
		log.Error("web server stopped", "error", err)
		stop()
	}

	if err := <-samplerDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("sampler stopped", "error", err)
	}
	log.Info("shut down")
}
