package main

import (
	"embed"
	"log/slog"
	"net/http"
	"time"

	mandelbrot "github.com/DCatman/Mandelbrot-Set"
)

//go:embed static
var staticFS embed.FS

// newWebServer builds the server: the websocket endpoint on /ws plus the UI
// page, served either from the embedded copy or from --static for local
// hacking on the page.
func newWebServer(cfg serverConfig, sc mandelbrot.Config, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", sessionHandler(sc, logger))
	if cfg.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.staticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			http.ServeFileFS(w, r, staticFS, "static/index.html")
		})
	}

	return &http.Server{
		Addr:              cfg.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
