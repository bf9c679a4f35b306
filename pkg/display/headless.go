package display

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// Shown records one Show call on a Headless viewer.
type Shown struct {
	Title    string
	Rows     int
	Cols     int
	Channels int
}

// Headless is a Viewer that records calls and never blocks.
type Headless struct {
	mu     sync.Mutex
	shown  []Shown
	waits  int
	closes int
}

// NewHeadless returns an empty Headless viewer.
func NewHeadless() *Headless {
	return &Headless{}
}

// Show implements Viewer.
func (h *Headless) Show(title string, img gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown = append(h.shown, Shown{
		Title:    title,
		Rows:     img.Rows(),
		Cols:     img.Cols(),
		Channels: img.Channels(),
	})
	return nil
}

// Wait implements Viewer. It returns at once unless ctx is already done.
func (h *Headless) Wait(ctx context.Context) error {
	h.mu.Lock()
	h.waits++
	h.mu.Unlock()
	return ctx.Err()
}

// Close implements Viewer.
func (h *Headless) Close() error {
	h.mu.Lock()
	h.closes++
	h.mu.Unlock()
	return nil
}

// Shown returns the recorded Show calls in order.
func (h *Headless) Shown() []Shown {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Shown(nil), h.shown...)
}

// Waits returns how many times Wait was called.
func (h *Headless) Waits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waits
}

// Closes returns how many times Close was called.
func (h *Headless) Closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closes
}
