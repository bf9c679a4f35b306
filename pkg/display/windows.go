package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Windows is a Viewer backed by HighGUI windows.
// HighGUI requires all calls to come from the main OS thread; callers
// lock it with runtime.LockOSThread in init.
type Windows struct {
	mu      sync.Mutex
	windows map[string]*gocv.Window
	last    *gocv.Window
	key     int
	log     *slog.Logger
}

// NewWindows returns a viewer dismissed with QuitKey.
func NewWindows(logger *slog.Logger) *Windows {
	if logger == nil {
		logger = slog.Default()
	}
	return &Windows{
		windows: make(map[string]*gocv.Window),
		key:     QuitKey,
		log:     logger,
	}
}

// Show implements Viewer.
func (w *Windows) Show(title string, img gocv.Mat) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	win, ok := w.windows[title]
	if !ok {
		win = gocv.NewWindow(title)
		w.windows[title] = win
	}
	if err := win.IMShow(img); err != nil {
		return fmt.Errorf("imshow %s: %w", title, err)
	}
	w.last = win
	w.log.Debug("window shown", "title", title, "rows", img.Rows(), "cols", img.Cols())
	return nil
}

// Wait implements Viewer by polling the most recent window once per
// millisecond until the quit key arrives.
func (w *Windows) Wait(ctx context.Context) error {
	w.mu.Lock()
	win := w.last
	w.mu.Unlock()

	if win == nil {
		return errors.New("display: wait with no window shown")
	}
	w.log.Info("press key to continue", "key", string(rune(w.key)))
	return WaitForKey(ctx, w.key, func() int { return win.WaitKey(1) })
}

// Close implements Viewer.
func (w *Windows) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for title, win := range w.windows {
		if err := win.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(w.windows, title)
	}
	w.last = nil
	return errors.Join(errs...)
}
