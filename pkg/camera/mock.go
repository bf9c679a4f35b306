package camera

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDevice implements Device for testing without a camera.
// Each Read copies Frame into the destination Mat.
type MockDevice struct {
	// Frame is copied on every successful Read.
	Frame gocv.Mat

	// Unopened makes IsOpened report false, as a missing camera does.
	Unopened bool

	// FailReadAfter makes reads fail once this many have succeeded.
	// Negative means reads never fail.
	FailReadAfter int

	mu     sync.Mutex
	reads  int
	closes int
	props  map[gocv.VideoCaptureProperties]float64
}

// NewMockDevice returns an opened device that yields frame forever.
func NewMockDevice(frame gocv.Mat) *MockDevice {
	return &MockDevice{Frame: frame, FailReadAfter: -1}
}

// Opener returns an Opener that always hands out this device.
func (d *MockDevice) Opener() Opener {
	return func(int) (Device, error) { return d, nil }
}

// IsOpened implements Device.
func (d *MockDevice) IsOpened() bool {
	return !d.Unopened
}

// Read implements Device.
func (d *MockDevice) Read(m *gocv.Mat) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailReadAfter >= 0 && d.reads >= d.FailReadAfter {
		return false
	}
	if err := d.Frame.CopyTo(m); err != nil {
		return false
	}
	d.reads++
	return true
}

// Set implements Device.
func (d *MockDevice) Set(prop gocv.VideoCaptureProperties, param float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.props == nil {
		d.props = make(map[gocv.VideoCaptureProperties]float64)
	}
	d.props[prop] = param
}

// Close implements Device.
func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// Reads returns the number of successful reads.
func (d *MockDevice) Reads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads
}

// Closes returns how many times Close was called.
func (d *MockDevice) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Prop returns the last value set for prop.
func (d *MockDevice) Prop(prop gocv.VideoCaptureProperties) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.props[prop]
	return v, ok
}
