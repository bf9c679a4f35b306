package camera

import "errors"

var (
	// ErrCameraUnavailable is returned when the capture device cannot be opened.
	ErrCameraUnavailable = errors.New("camera: device unavailable")

	// ErrFrameRead is returned when a read does not produce a frame.
	ErrFrameRead = errors.New("camera: frame read failed")

	// ErrCameraInUse is returned when another Webcam already holds the device index.
	ErrCameraInUse = errors.New("camera: device already in use")

	// ErrReleased is returned when using a Webcam after Close.
	ErrReleased = errors.New("camera: webcam released")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("camera: invalid config")
)
