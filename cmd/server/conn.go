package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	mandelbrot "github.com/DCatman/Mandelbrot-Set"
)

// Messages from the page. Clicks carry the pixel coordinate in bitmap
// space; zoom carries the new slider setting.
type clientMsg struct {
	Type   string  `json:"type"` // "click" | "zoom"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Factor int     `json:"factor"`
}

// Messages to the page. Bitmaps travel separately as binary PNG frames.
type statusMsg struct {
	Type           string    `json:"type"` // "status"
	Xmin           float64   `json:"xmin"`
	Xmax           float64   `json:"xmax"`
	Ymin           float64   `json:"ymin"`
	Ymax           float64   `json:"ymax"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	CumulativeZoom float64   `json:"cumulativeZoom"`
	ZoomFactor     int       `json:"zoomFactor"`
	LastPoint      []float64 `json:"lastPoint,omitempty"` // [re, im]
	Quality        string    `json:"quality"`             // "draft" | "refined"
}

type errorMsg struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// sessionHandler upgrades the connection and runs one session per client:
// a read loop feeding user input into the session, with session output
// flowing back through a wsDisplay.
func sessionHandler(sc mandelbrot.Config, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // TODO: tighten in prod
		})
		if err != nil {
			logger.Warn("websocket accept failed", "err", err)
			return
		}
		defer c.CloseNow()

		ctx := r.Context()
		disp := &wsDisplay{ctx: ctx, conn: c, logger: logger}
		sess, err := mandelbrot.NewSession(sc, disp)
		if err != nil {
			logger.Error("session setup failed", "err", err)
			return
		}
		defer sess.Close()

		logger.Info("client connected", "remote", r.RemoteAddr)
		sess.Start()

		for {
			typ, data, err := c.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					logger.Info("client disconnected", "remote", r.RemoteAddr)
				default:
					logger.Warn("client read failed", "remote", r.RemoteAddr, "err", err)
				}
				return
			}
			if typ != websocket.MessageText {
				continue // the page only sends JSON control frames
			}

			var msg clientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				disp.DisplayError(fmt.Errorf("malformed message: %w", err))
				continue
			}
			switch msg.Type {
			case "click":
				if err := sess.PointClicked(msg.X, msg.Y); err != nil {
					disp.DisplayError(err)
				}
			case "zoom":
				if err := sess.ZoomFactorChanged(msg.Factor); err != nil {
					disp.DisplayError(err)
				}
			default:
				disp.DisplayError(fmt.Errorf("unknown message type %q", msg.Type))
			}
		}
	}
}

// wsDisplay forwards session output to the page: JSON text frames for
// status and errors, PNG binary frames for bitmaps. The mutex serializes
// the session's dispatch goroutine with rejection messages written from the
// read loop.
type wsDisplay struct {
	ctx    context.Context
	conn   *websocket.Conn
	logger *slog.Logger

	mu sync.Mutex
}

var _ mandelbrot.Display = (*wsDisplay)(nil)

func (d *wsDisplay) DisplayImage(img *image.RGBA, _ mandelbrot.Viewport, tier mandelbrot.Tier) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		d.logger.Warn("png encode failed", "err", err)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.conn.Write(d.ctx, websocket.MessageBinary, buf.Bytes()); err != nil {
		d.logger.Debug("bitmap write failed", "tier", tier.String(), "err", err)
	}
}

func (d *wsDisplay) DisplayStatus(st mandelbrot.Status) {
	msg := statusMsg{
		Type:           "status",
		Xmin:           st.Viewport.Xmin,
		Xmax:           st.Viewport.Xmax,
		Ymin:           st.Viewport.Ymin,
		Ymax:           st.Viewport.Ymax,
		Width:          st.Resolution.Width,
		Height:         st.Resolution.Height,
		CumulativeZoom: st.CumulativeZoom,
		ZoomFactor:     st.ZoomFactor,
		Quality:        st.Quality.String(),
	}
	if st.LastPoint != nil {
		msg.LastPoint = []float64{st.LastPoint.X, st.LastPoint.Y}
	}
	d.writeJSON(msg)
}

func (d *wsDisplay) DisplayError(err error) {
	d.writeJSON(errorMsg{Type: "error", Message: err.Error()})
}

func (d *wsDisplay) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		d.logger.Warn("status marshal failed", "err", err)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.conn.Write(d.ctx, websocket.MessageText, data); err != nil {
		d.logger.Debug("status write failed", "err", err)
	}
}
