// Package display shows images in windows and waits for the user to
// dismiss them.
//
// Viewer is the abstraction the pipeline uses. Windows renders through
// OpenCV's HighGUI; Headless records what would have been shown and never
// blocks, for tests and machines without a display.
package display

import (
	"context"

	"gocv.io/x/gocv"
)

// QuitKey dismisses a shown image.
const QuitKey = 'q'

// Viewer renders images and blocks until they are dismissed.
type Viewer interface {
	// Show renders img in the window called title, creating it on first use.
	Show(title string, img gocv.Mat) error

	// Wait blocks until the quit key is pressed or ctx is done.
	Wait(ctx context.Context) error

	// Close destroys every window the viewer opened.
	Close() error
}

// PollFunc checks for a key press once and returns its code, or -1.
type PollFunc func() int

// WaitForKey calls poll until it reports key or ctx is done.
// Only the low byte of the polled code is compared, as HighGUI may set
// modifier bits above it.
func WaitForKey(ctx context.Context, key int, poll PollFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if k := poll(); k >= 0 && k&0xFF == key {
			return nil
		}
	}
}
