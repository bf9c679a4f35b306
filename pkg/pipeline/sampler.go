package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
)

// FrameReader yields frames; *camera.Webcam implements it.
type FrameReader interface {
	Read() (gocv.Mat, error)
}

// Snapshot is one sampled frame, after the sampler's filter, with its
// greyscale histogram.
type Snapshot struct {
	ID         uuid.UUID
	CapturedAt time.Time
	Filter     frame.FilterType
	Rows       int
	Cols       int
	PNG        []byte
	Histogram  *histogram.Histogram
}

// Sampler periodically reads frames and publishes snapshots.
type Sampler struct {
	Source    FrameReader
	Histogram histogram.Config

	// Interval returns the current sampling period, so it can follow
	// camera config changes. Called once per tick.
	Interval func() time.Duration

	// OnSnapshot receives every successful sample.
	OnSnapshot func(Snapshot)

	Log *slog.Logger

	mu       sync.Mutex
	filter   frame.FilterType
	settings frame.FilterSettings
}

// SetFilter selects the filter applied to every sampled frame before it is
// encoded and its histogram computed.
func (s *Sampler) SetFilter(t frame.FilterType, settings frame.FilterSettings) error {
	if err := settings.Validate(t); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter, s.settings = t, settings
	s.mu.Unlock()
	return nil
}

// Filter returns the filter applied to sampled frames.
func (s *Sampler) Filter() (frame.FilterType, frame.FilterSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter, s.settings
}

// Sample reads one frame and builds its snapshot.
func (s *Sampler) Sample() (Snapshot, error) {
	m, err := s.Source.Read()
	if err != nil {
		return Snapshot{}, err
	}
	f, err := frame.New(m)
	if err != nil {
		m.Close()
		return Snapshot{}, err
	}
	defer f.Close()

	filter, settings := s.Filter()
	if filter != frame.FilterNone {
		if err := f.ApplyFilter(filter, settings); err != nil {
			return Snapshot{}, err
		}
	}

	var hist *histogram.Histogram
	if f.ColorSpace() == frame.Other {
		// Edge maps are single channel intensities already.
		hist, err = histogram.Compute(f.Mat(), s.Histogram)
	} else {
		hist, err = f.GreyscaleHistogram(s.Histogram)
	}
	if err != nil {
		return Snapshot{}, err
	}
	png, err := f.PNG()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:         uuid.New(),
		CapturedAt: time.Now(),
		Filter:     filter,
		Rows:       f.Rows(),
		Cols:       f.Cols(),
		PNG:        png,
		Histogram:  hist,
	}, nil
}

// Run samples until ctx is done. Read failures are logged and retried on
// the next tick; a released camera stops the loop.
func (s *Sampler) Run(ctx context.Context) error {
	logger := s.Log
	if logger == nil {
		logger = slog.Default()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		snap, err := s.Sample()
		switch {
		case errors.Is(err, camera.ErrReleased):
			return err
		case err != nil:
			logger.Warn("sample failed", "error", err)
		case s.OnSnapshot != nil:
			s.OnSnapshot(snap)
		}

		timer.Reset(s.interval())
	}
}

func (s *Sampler) interval() time.Duration {
	if s.Interval == nil {
		return camera.DefaultConfig().Interval()
	}
	if d := s.Interval(); d > 0 {
		return d
	}
	return camera.DefaultConfig().Interval()
}
