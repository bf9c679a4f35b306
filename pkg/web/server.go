// Package web serves live webcam snapshots and their histograms
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"github.com/teslashibe/go-webcam/pkg/hub"
	"github.com/teslashibe/go-webcam/pkg/pipeline"
)

// FilterControl selects the filter applied to sampled frames
type FilterControl interface {
	Filter() (frame.FilterType, frame.FilterSettings)
	SetFilter(frame.FilterType, frame.FilterSettings) error
}

// HistogramResponse is the JSON form of a snapshot's histogram
type HistogramResponse struct {
	ID         string    `json:"id"`
	CapturedAt time.Time `json:"captured_at"`
	Filter     string    `json:"filter"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	Bins       int       `json:"bins"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Counts     []uint64  `json:"counts"`
	Total      uint64    `json:"total"`
	Mean       float64   `json:"mean"`
	StdDev     float64   `json:"stddev"`
	Mode       int       `json:"mode"`
}

func newHistogramResponse(s pipeline.Snapshot) HistogramResponse {
	h := s.Histogram
	stats := h.Stats()
	return HistogramResponse{
		ID:         s.ID.String(),
		CapturedAt: s.CapturedAt,
		Filter:     s.Filter.String(),
		Rows:       s.Rows,
		Cols:       s.Cols,
		Bins:       h.Bins,
		Min:        h.Min,
		Max:        h.Max,
		Counts:     h.Counts,
		Total:      h.Total(),
		Mean:       stats.Mean,
		StdDev:     stats.StdDev,
		Mode:       stats.Mode,
	}
}

// Server is the snapshot and histogram API server
type Server struct {
	app  *fiber.App
	port string
	log  *slog.Logger

	cameras *camera.Manager
	filters FilterControl
	plot    histplot.Options

	// Latest published snapshot
	latest   *pipeline.Snapshot
	latestMu sync.RWMutex

	// Hubs for websocket broadcast
	histogramHub *hub.Hub
	snapshotHub  *hub.Hub
}

// NewServer creates a new server. cameras backs the camera config routes
// and filters the filter routes.
func NewServer(port string, cameras *camera.Manager, filters FilterControl, plot histplot.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:         port,
		log:          logger,
		cameras:      cameras,
		filters:      filters,
		plot:         plot,
		histogramHub: hub.New("histogram", logger),
		snapshotHub:  hub.New("snapshot", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Webcam Histogram",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/snapshot.png", s.handleSnapshotPNG)
	api.Get("/histogram", s.handleHistogram)
	api.Get("/histogram.png", s.handleHistogramPNG)
	api.Get("/camera/config", s.handleGetCameraConfig)
	api.Put("/camera/config", s.handleUpdateCameraConfig)
	api.Get("/camera/presets", s.handleListPresets)
	api.Get("/filter", s.handleGetFilter)
	api.Put("/filter", s.handleUpdateFilter)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/histogram", websocket.New(s.handleHistogramWS))
	app.Get("/ws/snapshot", websocket.New(s.handleSnapshotWS))

	s.app = app
	return s
}

// App returns the underlying fiber app (for tests).
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and listens on the configured port until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("web server listening", "addr", ln.Addr().String())

	go s.histogramHub.Run(ctx)
	go s.snapshotHub.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.log.Warn("web server shutdown", "error", err)
		}
	}()

	return s.app.Listener(ln)
}

// Publish stores snap as the latest snapshot and broadcasts it
func (s *Server) Publish(snap pipeline.Snapshot) {
	s.latestMu.Lock()
	s.latest = &snap
	s.latestMu.Unlock()

	if err := s.histogramHub.BroadcastJSON(newHistogramResponse(snap)); err != nil {
		s.log.Warn("broadcast histogram", "error", err)
	}
	s.snapshotHub.BroadcastBinary(snap.PNG)
}

// Latest returns the most recent snapshot, if any
func (s *Server) Latest() (pipeline.Snapshot, bool) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	if s.latest == nil {
		return pipeline.Snapshot{}, false
	}
	return *s.latest, true
}
