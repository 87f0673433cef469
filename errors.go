package mandelbrot

import "errors"

// Error kinds reported by the core. Input-validation errors are returned
// synchronously and leave session state untouched; render-time failures
// abort the in-flight render and keep the previous bitmap on display.
var (
	// ErrInvalidViewport reports viewport bounds that are not finite or not
	// strictly ordered (Xmin < Xmax, Ymin < Ymax).
	ErrInvalidViewport = errors.New("mandelbrot: invalid viewport bounds")

	// ErrInvalidZoomFactor reports a zoom factor setting outside
	// [MinZoomFactor, MaxZoomFactor].
	ErrInvalidZoomFactor = errors.New("mandelbrot: zoom factor out of range")

	// ErrDegenerateViewport reports a zoom step whose result would collapse
	// to zero extent or overflow to a non-finite bound.
	ErrDegenerateViewport = errors.New("mandelbrot: zoom would degenerate viewport")

	// ErrRenderFailure reports an unexpected failure while producing a bitmap.
	ErrRenderFailure = errors.New("mandelbrot: render failed")

	// ErrInvalidResolution reports a bitmap resolution below 1x1.
	ErrInvalidResolution = errors.New("mandelbrot: invalid resolution")

	// ErrInvalidIterations reports an iteration budget below 1.
	ErrInvalidIterations = errors.New("mandelbrot: iteration budget below 1")

	// ErrPointOutOfBounds reports a click outside the displayed bitmap.
	ErrPointOutOfBounds = errors.New("mandelbrot: point outside bitmap bounds")

	// ErrSessionClosed reports an event delivered to a closed session.
	ErrSessionClosed = errors.New("mandelbrot: session closed")
)
