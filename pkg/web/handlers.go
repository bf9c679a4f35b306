package web

import (
	"bytes"
	"encoding/json"
	"image"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"github.com/teslashibe/go-webcam/pkg/hub"
)

// errNoSnapshot is returned before the first frame has been sampled
var errNoSnapshot = fiber.NewError(fiber.StatusServiceUnavailable, "no snapshot captured yet")

// handleSnapshotPNG returns the latest frame as PNG
func (s *Server) handleSnapshotPNG(c *fiber.Ctx) error {
	snap, ok := s.Latest()
	if !ok {
		return errNoSnapshot
	}
	c.Set("X-Snapshot-ID", snap.ID.String())
	c.Type("png")
	return c.Send(snap.PNG)
}

// handleHistogram returns the latest histogram as JSON
func (s *Server) handleHistogram(c *fiber.Ctx) error {
	snap, ok := s.Latest()
	if !ok {
		return errNoSnapshot
	}
	return c.JSON(newHistogramResponse(snap))
}

// handleHistogramPNG renders the latest histogram plot.
// ?style=bar switches from the default line plot.
func (s *Server) handleHistogramPNG(c *fiber.Ctx) error {
	snap, ok := s.Latest()
	if !ok {
		return errNoSnapshot
	}

	opts := s.plot
	switch c.Query("style") {
	case "", "line":
		opts.Style = histplot.StyleLine
	case "bar":
		opts.Style = histplot.StyleBar
	default:
		return fiber.NewError(fiber.StatusBadRequest, "style must be line or bar")
	}

	png, err := histplot.PNG(snap.Histogram, opts)
	if err != nil {
		return err
	}
	c.Set("X-Snapshot-ID", snap.ID.String())
	c.Type("png")
	return c.Send(png)
}

// handleGetCameraConfig returns the current camera configuration
func (s *Server) handleGetCameraConfig(c *fiber.Ctx) error {
	return c.JSON(s.cameras.GetConfigJSON())
}

// handleUpdateCameraConfig applies a partial config or preset
func (s *Server) handleUpdateCameraConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := json.Unmarshal(c.Body(), &params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	if err := s.cameras.UpdateConfig(params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(s.cameras.GetConfigJSON())
}

// handleListPresets lists the preset names accepted by the config route
func (s *Server) handleListPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"presets": camera.PresetNames()})
}

// FilterResponse is the JSON form of the live filter selection
type FilterResponse struct {
	Filter         string  `json:"filter"`
	KernelX        int     `json:"ksize_x"`
	KernelY        int     `json:"ksize_y"`
	SigmaX         float64 `json:"sigma_x"`
	ThresholdLower float64 `json:"threshold_lower"`
	ThresholdUpper float64 `json:"threshold_upper"`
}

func newFilterResponse(t frame.FilterType, fs frame.FilterSettings) FilterResponse {
	return FilterResponse{
		Filter:         t.String(),
		KernelX:        fs.KernelSize.X,
		KernelY:        fs.KernelSize.Y,
		SigmaX:         fs.SigmaX,
		ThresholdLower: fs.ThresholdLower,
		ThresholdUpper: fs.ThresholdUpper,
	}
}

// errNoFilters is returned when the server has no sampler to configure
var errNoFilters = fiber.NewError(fiber.StatusNotImplemented, "live filters not available")

// handleGetFilter returns the filter applied to sampled frames
func (s *Server) handleGetFilter(c *fiber.Ctx) error {
	if s.filters == nil {
		return errNoFilters
	}
	return c.JSON(newFilterResponse(s.filters.Filter()))
}

// handleUpdateFilter changes the filter; omitted fields keep their values
func (s *Server) handleUpdateFilter(c *fiber.Ctx) error {
	if s.filters == nil {
		return errNoFilters
	}

	req := newFilterResponse(s.filters.Filter())
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}

	t, err := frame.ParseFilterType(req.Filter)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	settings := frame.FilterSettings{
		KernelSize:     image.Pt(req.KernelX, req.KernelY),
		SigmaX:         req.SigmaX,
		ThresholdLower: req.ThresholdLower,
		ThresholdUpper: req.ThresholdUpper,
	}
	if err := s.filters.SetFilter(t, settings); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.log.Info("filter changed", "filter", t, "settings", settings)
	return c.JSON(newFilterResponse(s.filters.Filter()))
}

// handleHistogramWS streams each new histogram as JSON, starting with the latest
func (s *Server) handleHistogramWS(c *websocket.Conn) {
	var initial []hub.Message
	if snap, ok := s.Latest(); ok {
		if data, err := json.Marshal(newHistogramResponse(snap)); err == nil {
			initial = append(initial, hub.NewJSONMessage(data))
		}
	}
	hub.NewClient(s.histogramHub, c, initial...).Run()
}

// handleSnapshotWS streams each new frame as binary PNG
func (s *Server) handleSnapshotWS(c *websocket.Conn) {
	var initial []hub.Message
	if snap, ok := s.Latest(); ok {
		initial = append(initial, hub.NewBinaryMessage(snap.PNG))
	}
	hub.NewClient(s.snapshotHub, c, initial...).Run()
}
