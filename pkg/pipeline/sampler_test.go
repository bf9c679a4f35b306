package pipeline

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
)

func TestSampler_Sample(t *testing.T) {
	dev := camera.NewMockDevice(uniformBGR(t, 5, 4, 0, 0, 0))
	cam, err := camera.Open(camera.Config{Index: 7}, camera.WithOpener(dev.Opener()))
	require.NoError(t, err)
	defer cam.Close()

	s := &Sampler{Source: cam, Histogram: histogram.DefaultConfig()}
	snap, err := s.Sample()
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Rows)
	assert.Equal(t, 4, snap.Cols)
	assert.Equal(t, uint64(20), snap.Histogram.Counts[0])
	assert.Equal(t, []byte("\x89PNG"), snap.PNG[:4])
	assert.NotEqual(t, snap.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestSampler_RunPublishesUntilCancelled(t *testing.T) {
	dev := camera.NewMockDevice(uniformBGR(t, 2, 2, 0, 0, 0))
	cam, err := camera.Open(camera.Config{Index: 8}, camera.WithOpener(dev.Opener()))
	require.NoError(t, err)
	defer cam.Close()

	ctx, cancel := context.WithCancel(context.Background())
	snaps := make(chan Snapshot, 8)
	s := &Sampler{
		Source:    cam,
		Histogram: histogram.DefaultConfig(),
		Interval:  func() time.Duration { return time.Millisecond },
		OnSnapshot: func(snap Snapshot) {
			select {
			case snaps <- snap:
			default:
			}
		},
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	first := <-snaps
	second := <-snaps
	assert.NotEqual(t, first.ID, second.ID)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSampler_StopsWhenCameraReleased(t *testing.T) {
	dev := camera.NewMockDevice(uniformBGR(t, 2, 2, 0, 0, 0))
	cam, err := camera.Open(camera.Config{Index: 9}, camera.WithOpener(dev.Opener()))
	require.NoError(t, err)
	cam.Close()

	s := &Sampler{Source: cam, Histogram: histogram.DefaultConfig()}
	err = s.Run(context.Background())
	assert.ErrorIs(t, err, camera.ErrReleased)
}

func TestSampler_AppliesFilter(t *testing.T) {
	// Pure red: BGR-to-grey weights put it at 76.
	dev := camera.NewMockDevice(uniformBGR(t, 6, 5, 0, 0, 255))
	cam, err := camera.Open(camera.Config{Index: 10}, camera.WithOpener(dev.Opener()))
	require.NoError(t, err)
	defer cam.Close()

	s := &Sampler{Source: cam, Histogram: histogram.DefaultConfig()}
	settings := frame.DefaultFilterSettings()

	tests := []struct {
		filter frame.FilterType
		bin    int
	}{
		{frame.FilterNone, 76},
		{frame.FilterGreyscale, 76},
		{frame.FilterGaussianBlur, 76},
		{frame.FilterCannyEdge, 0}, // no edges in a flat frame
	}
	for _, tt := range tests {
		t.Run(tt.filter.String(), func(t *testing.T) {
			require.NoError(t, s.SetFilter(tt.filter, settings))

			snap, err := s.Sample()
			require.NoError(t, err)
			assert.Equal(t, tt.filter, snap.Filter)
			assert.Equal(t, uint64(30), snap.Histogram.Counts[tt.bin])
			assert.Equal(t, uint64(30), snap.Histogram.Total())
			assert.Equal(t, 6, snap.Rows)
		})
	}
}

func TestSampler_SetFilterRejectsInvalid(t *testing.T) {
	s := &Sampler{}
	good := frame.DefaultFilterSettings()
	require.NoError(t, s.SetFilter(frame.FilterGaussianBlur, good))

	bad := good
	bad.KernelSize = image.Pt(4, 4)
	assert.ErrorIs(t, s.SetFilter(frame.FilterGaussianBlur, bad), frame.ErrInvalidSettings)
	assert.ErrorIs(t, s.SetFilter(frame.FilterType(9), good), frame.ErrUnknownFilter)

	got, settings := s.Filter()
	assert.Equal(t, frame.FilterGaussianBlur, got)
	assert.Equal(t, good, settings)
}
