// Package mandelbrot implements an interactive Mandelbrot set explorer:
// escape-time evaluation of complex-plane viewports, colorization of the
// resulting escape grids, click-to-recenter zooming and a two-tier render
// quality policy that keeps interaction cheap and refines the image once
// input settles.
//
// The pieces compose bottom-up. Evaluate samples a Viewport into an
// EscapeGrid; a Palette turns the grid into an image; Viewport.RecenterZoom
// derives the next view from a click; QualityController decides when a view
// has earned an expensive refined render. Session wires all of them to a
// Display and owns the concurrency: one render in flight, stale results
// discarded, the refined upgrade scheduled on an idle timer and preempted by
// the next click.
//
// A minimal non-interactive use needs no session:
//
//	grid, err := mandelbrot.Evaluate(ctx, mandelbrot.SeahorseValley,
//		mandelbrot.Resolution{Width: 800, Height: 450}, 500)
//	if err != nil {
//		return err
//	}
//	img, err := mandelbrot.Inferno().Render(grid)
//
// Interactive surfaces implement Display and feed user input to a Session:
//
//	sess, err := mandelbrot.NewSession(mandelbrot.DefaultConfig(), display)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//	sess.Start()
//	// on click:        sess.PointClicked(x, y)
//	// on slider move:  sess.ZoomFactorChanged(f)
//
// The package logs through log/slog and is silent by default; see SetLogger.
package mandelbrot
