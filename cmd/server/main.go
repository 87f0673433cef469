// Command server runs the interactive Mandelbrot explorer: an HTTP server
// whose websocket endpoint gives every connection its own render session.
// All rendering happens server side; the browser page only draws bitmaps
// and reports clicks and slider moves.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mandelbrot "github.com/DCatman/Mandelbrot-Set"
)

func main() {
	if err := mainCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type serverConfig struct {
	addr         string
	staticDir    string
	width        int
	height       int
	draftIters   int
	refinedIters int
	idle         time.Duration
	scale        int
	verbose      bool
}

func mainCmd() *cobra.Command {
	var cfg serverConfig
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the interactive Mandelbrot explorer over HTTP and websocket",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.addr, "addr", ":8080", "listen address")
	f.StringVar(&cfg.staticDir, "static", "", "serve the UI from this directory instead of the embedded page")
	f.IntVar(&cfg.width, "width", mandelbrot.DefaultResolution.Width, "bitmap width in pixels")
	f.IntVar(&cfg.height, "height", mandelbrot.DefaultResolution.Height, "bitmap height in pixels")
	f.IntVar(&cfg.draftIters, "draft-iters", mandelbrot.DefaultDraftIterations, "iteration budget for draft renders")
	f.IntVar(&cfg.refinedIters, "refined-iters", mandelbrot.DefaultRefinedIterations, "iteration budget for refined renders")
	f.DurationVar(&cfg.idle, "idle", mandelbrot.DefaultIdleThreshold, "idle time before a draft is upgraded to a refined render")
	f.IntVar(&cfg.scale, "scale", 1, "bilinear upscale factor applied to served bitmaps")
	f.BoolVar(&cfg.verbose, "verbose", false, "log per-render debug details")
	return cmd
}

func run(ctx context.Context, cfg serverConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mandelbrot.SetLogger(logger)

	if cfg.scale < 1 {
		return fmt.Errorf("scale must be at least 1, got %d", cfg.scale)
	}
	sc, err := sessionConfig(cfg)
	if err != nil {
		return err
	}

	srv := newWebServer(cfg, sc, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("listening", "addr", cfg.addr)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

func sessionConfig(cfg serverConfig) (mandelbrot.Config, error) {
	sc := mandelbrot.DefaultConfig()
	sc.Resolution = mandelbrot.Resolution{Width: cfg.width, Height: cfg.height}
	sc.DraftIterations = cfg.draftIters
	sc.RefinedIterations = cfg.refinedIters
	sc.IdleThreshold = cfg.idle
	if cfg.scale > 1 {
		sc.Renderer = mandelbrot.Inferno().Scaled(cfg.scale)
	}
	if err := sc.Validate(); err != nil {
		return mandelbrot.Config{}, err
	}
	return sc, nil
}
