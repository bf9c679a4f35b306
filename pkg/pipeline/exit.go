package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/teslashibe/go-webcam/pkg/camera"
)

// Process exit codes of the single-shot flow.
const (
	ExitOK         = 0
	ExitCameraOpen = 1
	ExitFrameRead  = 2
)

// ExitCode maps a Run error to the process exit code.
// Errors other than a failed frame read exit with ExitCameraOpen, the
// generic failure code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, camera.ErrFrameRead):
		return ExitFrameRead
	default:
		return ExitCameraOpen
	}
}

// Message returns the line printed for err before exiting.
func Message(err error) string {
	switch {
	case err == nil:
		return "Done. Cleaning up..."
	case errors.Is(err, camera.ErrFrameRead):
		return "ERROR: Problem reading frame from webcam."
	case errors.Is(err, camera.ErrCameraUnavailable), errors.Is(err, camera.ErrCameraInUse):
		return "ERROR: Cannot open default webcam."
	default:
		return "ERROR: " + err.Error()
	}
}

// Report prints the message for err to w and returns the exit code.
func Report(w io.Writer, err error) int {
	fmt.Fprintln(w, Message(err))
	return ExitCode(err)
}
