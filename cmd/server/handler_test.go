package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	mandelbrot "github.com/DCatman/Mandelbrot-Set"
)

func testSessionConfig() mandelbrot.Config {
	sc := mandelbrot.DefaultConfig()
	sc.Resolution = mandelbrot.Resolution{Width: 64, Height: 36}
	sc.DraftIterations = 20
	sc.RefinedIterations = 40
	sc.IdleThreshold = time.Hour // keep upgrades out of these tests
	return sc
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// wsClient wraps the test side of the protocol: JSON frames in both
// directions plus binary PNG frames from the server.
type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dialSession(t *testing.T, ctx context.Context, sc mandelbrot.Config) *wsClient {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", sessionHandler(sc, discardLogger()))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("websocket.Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	conn.SetReadLimit(1 << 20)
	return &wsClient{t: t, ctx: ctx, conn: conn}
}

func (c *wsClient) send(v any) {
	c.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := c.conn.Write(c.ctx, websocket.MessageText, data); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// read returns the next frame as either a decoded status/error message or a
// decoded PNG.
func (c *wsClient) read() (msgType string, data []byte, img image.Image) {
	c.t.Helper()
	typ, raw, err := c.conn.Read(c.ctx)
	if err != nil {
		c.t.Fatalf("read: %v", err)
	}
	if typ == websocket.MessageBinary {
		im, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			c.t.Fatalf("png decode: %v", err)
		}
		return "png", nil, im
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		c.t.Fatalf("unmarshal frame type: %v", err)
	}
	return probe.Type, raw, nil
}

func (c *wsClient) nextStatus() statusMsg {
	c.t.Helper()
	for {
		typ, raw, _ := c.read()
		if typ != "status" {
			continue
		}
		var st statusMsg
		if err := json.Unmarshal(raw, &st); err != nil {
			c.t.Fatalf("unmarshal status: %v", err)
		}
		return st
	}
}

func (c *wsClient) nextBitmap() image.Image {
	c.t.Helper()
	for {
		if typ, _, img := c.read(); typ == "png" {
			return img
		}
	}
}

func (c *wsClient) nextError() errorMsg {
	c.t.Helper()
	for {
		typ, raw, _ := c.read()
		if typ != "error" {
			continue
		}
		var em errorMsg
		if err := json.Unmarshal(raw, &em); err != nil {
			c.t.Fatalf("unmarshal error frame: %v", err)
		}
		return em
	}
}

func TestSessionHandler_InitialFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := dialSession(t, ctx, testSessionConfig())

	st := c.nextStatus()
	if st.Xmin != -2.5 || st.Xmax != 1.0 || st.Ymin != -1.25 || st.Ymax != 1.25 {
		t.Errorf("initial bounds = [%v, %v] x [%v, %v], want [-2.5, 1] x [-1.25, 1.25]",
			st.Xmin, st.Xmax, st.Ymin, st.Ymax)
	}
	if st.Width != 64 || st.Height != 36 {
		t.Errorf("resolution = %dx%d, want 64x36", st.Width, st.Height)
	}
	if st.CumulativeZoom != 1 || st.ZoomFactor != 1 || st.Quality != "draft" {
		t.Errorf("initial status = %+v, want zoom 1, factor 1, draft", st)
	}
	if st.LastPoint != nil {
		t.Errorf("initial lastPoint = %v, want absent", st.LastPoint)
	}

	img := c.nextBitmap()
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 36 {
		t.Errorf("bitmap = %v, want 64x36", img.Bounds())
	}
}

func TestSessionHandler_ZoomAndClick(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := dialSession(t, ctx, testSessionConfig())
	c.nextBitmap() // initial draft

	c.send(clientMsg{Type: "zoom", Factor: 10})
	st := c.nextStatus()
	for st.ZoomFactor != 10 { // skip statuses emitted before the zoom landed
		st = c.nextStatus()
	}

	c.send(clientMsg{Type: "click", X: 32, Y: 18})
	st = c.nextStatus()
	if got := st.Xmax - st.Xmin; got < 0.3499 || got > 0.3501 {
		t.Errorf("width after center click = %v, want 0.35", got)
	}
	if st.CumulativeZoom < 0.0999 || st.CumulativeZoom > 0.1001 {
		t.Errorf("cumulativeZoom = %v, want 0.1", st.CumulativeZoom)
	}
	if len(st.LastPoint) != 2 {
		t.Fatalf("lastPoint = %v, want [re, im]", st.LastPoint)
	}

	img := c.nextBitmap()
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 36 {
		t.Errorf("bitmap = %v, want 64x36", img.Bounds())
	}
}

func TestSessionHandler_RejectionsBecomeErrorFrames(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := dialSession(t, ctx, testSessionConfig())
	c.nextBitmap()

	tests := []struct {
		name string
		msg  any
	}{
		{"click out of bounds", clientMsg{Type: "click", X: -5, Y: 0}},
		{"factor out of range", clientMsg{Type: "zoom", Factor: 5000}},
		{"unknown type", clientMsg{Type: "teleport"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.send(tt.msg)
			if em := c.nextError(); em.Message == "" {
				t.Error("error frame with empty message")
			}
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		if err := c.conn.Write(ctx, websocket.MessageText, []byte("{nope")); err != nil {
			t.Fatalf("write: %v", err)
		}
		if em := c.nextError(); em.Message == "" {
			t.Error("error frame with empty message")
		}
	})
}

func TestSessionHandler_ScaledBitmaps(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sc := testSessionConfig()
	sc.Renderer = mandelbrot.Inferno().Scaled(2)
	c := dialSession(t, ctx, sc)

	// The served bitmap doubles; the status keeps the logical resolution
	// so the page maps clicks correctly.
	st := c.nextStatus()
	if st.Width != 64 || st.Height != 36 {
		t.Errorf("status resolution = %dx%d, want logical 64x36", st.Width, st.Height)
	}
	img := c.nextBitmap()
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 72 {
		t.Errorf("bitmap = %v, want 128x72", img.Bounds())
	}
	c.nextStatus() // draft completion

	// Clicks remain addressed in logical pixels: (16, 9) on the 64x36 grid
	// is the quarter point of the default view.
	c.send(clientMsg{Type: "click", X: 16, Y: 9})
	st = c.nextStatus()
	if mid := (st.Xmin + st.Xmax) / 2; mid < -1.6251 || mid > -1.6249 {
		t.Errorf("center after click = %v, want -1.625", mid)
	}
}

func TestNewWebServer_EmbeddedPage(t *testing.T) {
	cfg := serverConfig{addr: ":0"}
	srv := newWebServer(cfg, testSessionConfig(), discardLogger())
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Contains(body, []byte("<canvas")) {
		t.Error("embedded page does not contain the canvas element")
	}

	resp2, err := http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatalf("GET /missing: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("GET /missing status = %d, want 404", resp2.StatusCode)
	}
}

func TestSessionConfigFlags(t *testing.T) {
	cfg := serverConfig{
		width: 320, height: 180,
		draftIters: 30, refinedIters: 90,
		idle:  time.Second,
		scale: 2,
	}
	sc, err := sessionConfig(cfg)
	if err != nil {
		t.Fatalf("sessionConfig() error = %v", err)
	}
	if sc.Resolution.Width != 320 || sc.Resolution.Height != 180 {
		t.Errorf("resolution = %+v, want 320x180", sc.Resolution)
	}
	if sc.DraftIterations != 30 || sc.RefinedIterations != 90 || sc.IdleThreshold != time.Second {
		t.Errorf("budgets = %d/%d idle %v, want 30/90 1s", sc.DraftIterations, sc.RefinedIterations, sc.IdleThreshold)
	}
	if sc.Renderer == nil {
		t.Error("scale 2 should install a scaling renderer")
	}

	cfg.width = 0
	if _, err := sessionConfig(cfg); err == nil {
		t.Error("sessionConfig(zero width) = nil error, want rejection")
	}
}
