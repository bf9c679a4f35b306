// webcam-histogram captures one frame from the default camera, shows it
// and its greyscale version, then plots the greyscale histogram.
//
// Press q to dismiss each window. Exit codes: 0 on success, 1 if the
// camera cannot be opened, 2 if no frame can be read.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/teslashibe/go-webcam/internal/log"
	"github.com/teslashibe/go-webcam/pkg/display"
	"github.com/teslashibe/go-webcam/pkg/pipeline"
)

func init() {
	// HighGUI windows must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	log.Init("info")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(pipeline.DefaultConfig(), display.NewWindows(log.L()), log.L())
	_, err := runner.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err)
	}
	return pipeline.Report(os.Stdout, err)
}
