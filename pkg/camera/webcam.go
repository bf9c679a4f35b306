package camera

import (
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Device is the subset of gocv.VideoCapture a Webcam drives.
type Device interface {
	IsOpened() bool
	Read(m *gocv.Mat) bool
	Set(prop gocv.VideoCaptureProperties, param float64)
	Close() error
}

// Opener opens the capture device with the given index.
type Opener func(index int) (Device, error)

// OpenVideoCapture opens a real device through OpenCV.
func OpenVideoCapture(index int) (Device, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, err
	}
	return videoCapture{vc}, nil
}

type videoCapture struct {
	vc *gocv.VideoCapture
}

func (c videoCapture) IsOpened() bool        { return c.vc.IsOpened() }
func (c videoCapture) Read(m *gocv.Mat) bool { return c.vc.Read(m) }
func (c videoCapture) Close() error          { return c.vc.Close() }

func (c videoCapture) Set(prop gocv.VideoCaptureProperties, param float64) {
	c.vc.Set(prop, param)
}

// Indices held by open Webcams in this process.
var (
	inUseMu sync.Mutex
	inUse   = make(map[int]struct{})
)

func reserve(index int) bool {
	inUseMu.Lock()
	defer inUseMu.Unlock()
	if _, ok := inUse[index]; ok {
		return false
	}
	inUse[index] = struct{}{}
	return true
}

func unreserve(index int) {
	inUseMu.Lock()
	delete(inUse, index)
	inUseMu.Unlock()
}

// Option configures Open.
type Option func(*options)

type options struct {
	opener Opener
	logger *slog.Logger
}

// WithOpener replaces the OpenCV device opener, typically with a fake.
func WithOpener(o Opener) Option {
	return func(opts *options) { opts.opener = o }
}

// WithLogger sets the logger used for device lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// Webcam owns an open capture device. It must be closed exactly once;
// further Close calls are no-ops.
type Webcam struct {
	mu     sync.Mutex
	dev    Device
	cfg    Config
	closed bool
	log    *slog.Logger
}

// Open opens the device named by cfg.Index and applies the requested mode.
func Open(cfg Config, opts ...Option) (*Webcam, error) {
	o := options{opener: OpenVideoCapture, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}
	if !reserve(cfg.Index) {
		return nil, fmt.Errorf("%w: index %d", ErrCameraInUse, cfg.Index)
	}

	dev, err := o.opener(cfg.Index)
	if err != nil {
		unreserve(cfg.Index)
		return nil, fmt.Errorf("%w: index %d: %v", ErrCameraUnavailable, cfg.Index, err)
	}
	if dev == nil || !dev.IsOpened() {
		if dev != nil {
			dev.Close()
		}
		unreserve(cfg.Index)
		return nil, fmt.Errorf("%w: index %d", ErrCameraUnavailable, cfg.Index)
	}

	w := &Webcam{
		dev: dev,
		cfg: cfg,
		log: o.logger.With("camera", cfg.Index),
	}
	w.applyLocked(cfg)

	for i := 0; i < cfg.Warmup; i++ {
		m, err := w.Read()
		if err != nil {
			w.Close()
			return nil, err
		}
		m.Close()
	}

	w.log.Debug("camera opened", "width", cfg.Width, "height", cfg.Height, "fps", cfg.Framerate)
	return w, nil
}

// CaptureFrame opens the device, reads a single frame and releases it.
// The caller owns the returned Mat.
func CaptureFrame(cfg Config, opts ...Option) (gocv.Mat, error) {
	w, err := Open(cfg, opts...)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer w.Close()
	return w.Read()
}

// Index returns the device index.
func (w *Webcam) Index() int {
	return w.cfg.Index
}

// Config returns the mode last applied to the device.
func (w *Webcam) Config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Read grabs the current frame. The caller owns the returned Mat.
func (w *Webcam) Read() (gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return gocv.Mat{}, ErrReleased
	}

	m := gocv.NewMat()
	if ok := w.dev.Read(&m); !ok || m.Empty() {
		m.Close()
		return gocv.Mat{}, fmt.Errorf("%w: index %d", ErrFrameRead, w.cfg.Index)
	}
	return m, nil
}

// Apply changes the capture mode of the open device.
// The device index cannot change without reopening.
func (w *Webcam) Apply(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrReleased
	}
	if cfg.Index != w.cfg.Index {
		return fmt.Errorf("%w: index change %d -> %d requires reopening", ErrInvalidConfig, w.cfg.Index, cfg.Index)
	}
	w.applyLocked(cfg)
	w.cfg = cfg
	w.log.Info("camera mode changed", "width", cfg.Width, "height", cfg.Height, "fps", cfg.Framerate)
	return nil
}

func (w *Webcam) applyLocked(cfg Config) {
	if cfg.Width > 0 && cfg.Height > 0 {
		w.dev.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		w.dev.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		w.dev.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}
}

// Close releases the device and frees its index.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	err := w.dev.Close()
	unreserve(w.cfg.Index)
	w.log.Debug("camera released")
	return err
}
