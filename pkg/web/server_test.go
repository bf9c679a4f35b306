package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-webcam/pkg/camera"
	"github.com/teslashibe/go-webcam/pkg/frame"
	"github.com/teslashibe/go-webcam/pkg/histogram"
	"github.com/teslashibe/go-webcam/pkg/histplot"
	"github.com/teslashibe/go-webcam/pkg/pipeline"
)

func newTestServer(t *testing.T) (*Server, *camera.Manager) {
	t.Helper()
	mgr := camera.NewManager(camera.DefaultConfig())
	return NewServer("0", mgr, newTestSampler(t), histplot.DefaultOptions(), nil), mgr
}

func newTestSampler(t *testing.T) *pipeline.Sampler {
	t.Helper()
	sampler := &pipeline.Sampler{Histogram: histogram.DefaultConfig()}
	require.NoError(t, sampler.SetFilter(frame.FilterNone, frame.DefaultFilterSettings()))
	return sampler
}

func testSnapshot(t *testing.T) pipeline.Snapshot {
	t.Helper()
	counts := make([]uint64, 256)
	counts[10] = 50
	counts[200] = 50
	h, err := histogram.FromCounts(histogram.DefaultConfig(), counts)
	require.NoError(t, err)
	return pipeline.Snapshot{
		ID:         uuid.New(),
		CapturedAt: time.Now(),
		Rows:       10,
		Cols:       10,
		Filter:     frame.FilterGaussianBlur,
		PNG:        []byte("\x89PNG fake"),
		Histogram:  h,
	}
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestNoSnapshotYet(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/api/snapshot.png", "/api/histogram", "/api/histogram.png"} {
		resp, _ := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestHistogramJSON(t *testing.T) {
	s, _ := newTestServer(t)
	snap := testSnapshot(t)
	s.Publish(snap)

	resp, data := do(t, s, http.MethodGet, "/api/histogram", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got HistogramResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap.ID.String(), got.ID)
	assert.Equal(t, "gaussian_blur", got.Filter)
	assert.Equal(t, 256, got.Bins)
	assert.Len(t, got.Counts, 256)
	assert.Equal(t, uint64(100), got.Total)
	assert.Equal(t, uint64(50), got.Counts[200])
	assert.InDelta(t, 105.0, got.Mean, 1e-9)
}

func TestSnapshotPNG(t *testing.T) {
	s, _ := newTestServer(t)
	snap := testSnapshot(t)
	s.Publish(snap)

	resp, data := do(t, s, http.MethodGet, "/api/snapshot.png", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, snap.ID.String(), resp.Header.Get("X-Snapshot-ID"))
	assert.Equal(t, snap.PNG, data)
}

func TestHistogramPNG(t *testing.T) {
	s, _ := newTestServer(t)
	s.Publish(testSnapshot(t))

	for _, style := range []string{"", "line", "bar"} {
		resp, data := do(t, s, http.MethodGet, "/api/histogram.png?style="+style, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, style)
		assert.Equal(t, []byte("\x89PNG"), data[:4])
	}

	resp, _ := do(t, s, http.MethodGet, "/api/histogram.png?style=pie", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCameraConfigRoutes(t *testing.T) {
	s, mgr := newTestServer(t)

	var applied []camera.Config
	mgr.OnConfigChange = func(cfg camera.Config) error {
		applied = append(applied, cfg)
		return nil
	}

	resp, data := do(t, s, http.MethodPut, "/api/camera/config", `{"preset":"720p","framerate":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(1280), got["width"])
	assert.Equal(t, float64(5), got["framerate"])
	require.Len(t, applied, 1)

	resp, _ = do(t, s, http.MethodPut, "/api/camera/config", `{"width":99999,"height":480}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPut, "/api/camera/config", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = do(t, s, http.MethodPut, "/api/camera/config", `{"width":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "width")
	require.Len(t, applied, 1)

	resp, data = do(t, s, http.MethodGet, "/api/camera/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(720), got["height"])

	resp, data = do(t, s, http.MethodGet, "/api/camera/presets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"1080p"`)
}

func TestFilterRoutes(t *testing.T) {
	mgr := camera.NewManager(camera.DefaultConfig())
	sampler := newTestSampler(t)
	s := NewServer("0", mgr, sampler, histplot.DefaultOptions(), nil)

	resp, data := do(t, s, http.MethodGet, "/api/filter", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got FilterResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, FilterResponse{
		Filter: "none", KernelX: 5, KernelY: 5, ThresholdLower: 100, ThresholdUpper: 200,
	}, got)

	resp, data = do(t, s, http.MethodPut, "/api/filter", `{"filter":"gaussian_blur","ksize_x":7,"sigma_x":1.5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "gaussian_blur", got.Filter)
	assert.Equal(t, 7, got.KernelX)
	assert.Equal(t, 5, got.KernelY)

	ft, settings := sampler.Filter()
	assert.Equal(t, frame.FilterGaussianBlur, ft)
	assert.Equal(t, 1.5, settings.SigmaX)

	for _, body := range []string{
		`{"filter":"sepia"}`,
		`{"filter":"gaussian_blur","ksize_x":4}`,
		`{"filter":"canny_edge_detection","threshold_lower":300}`,
		`{"zoom":2}`,
		`not json`,
	} {
		resp, _ := do(t, s, http.MethodPut, "/api/filter", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	ft, _ = sampler.Filter()
	assert.Equal(t, frame.FilterGaussianBlur, ft)
}

func TestFilterRoutesWithoutSampler(t *testing.T) {
	s := NewServer("0", camera.NewManager(camera.DefaultConfig()), nil, histplot.DefaultOptions(), nil)
	resp, _ := do(t, s, http.MethodGet, "/api/filter", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestWSRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t)
	resp, _ := do(t, s, http.MethodGet, "/ws/histogram", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestHistogramWS(t *testing.T) {
	s, _ := newTestServer(t)
	first := testSnapshot(t)
	s.Publish(first)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Serve(ctx, ln)

	url := "ws://" + ln.Addr().String() + "/ws/histogram"
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()

	read := func() HistogramResponse {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		typ, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, typ)
		var got HistogramResponse
		require.NoError(t, json.Unmarshal(data, &got))
		return got
	}

	assert.Equal(t, first.ID.String(), read().ID, "latest snapshot sent on connect")

	// The first snapshot may also arrive as a broadcast if the hub drained
	// its queue after this client registered.
	second := testSnapshot(t)
	s.Publish(second)
	got := read()
	if got.ID == first.ID.String() {
		got = read()
	}
	assert.Equal(t, second.ID.String(), got.ID)
}
