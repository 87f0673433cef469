package mandelbrot

import (
	"context"
	"image"
)

// Evaluator produces escape grids. The package function Evaluate is the
// default implementation; sessions accept the interface so tests can stub
// the expensive part.
type Evaluator interface {
	Evaluate(ctx context.Context, v Viewport, res Resolution, maxIter int) (*EscapeGrid, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, v Viewport, res Resolution, maxIter int) (*EscapeGrid, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, v Viewport, res Resolution, maxIter int) (*EscapeGrid, error) {
	return f(ctx, v, res, maxIter)
}

var _ Evaluator = EvaluatorFunc(Evaluate)

// Renderer turns an escape grid into a displayable bitmap.
type Renderer interface {
	Render(grid *EscapeGrid) (*image.RGBA, error)
}

// Status is the textual session state shown next to the bitmap.
type Status struct {
	Viewport       Viewport
	Resolution     Resolution
	CumulativeZoom float64
	ZoomFactor     int
	LastPoint      *PlanePoint // nil until the first click
	Quality        Tier        // quality reached for the current view
}

// Display consumes session output. The session calls each method from its
// dispatch goroutine, one call at a time, in emission order. A slow
// implementation loses intermediate events rather than blocking the session.
type Display interface {
	// DisplayImage replaces the bitmap on screen. The viewport is the one
	// the bitmap was rendered for.
	DisplayImage(img *image.RGBA, v Viewport, tier Tier)

	// DisplayStatus updates the textual state.
	DisplayStatus(st Status)

	// DisplayError surfaces a failed render. The previous bitmap stays on
	// screen.
	DisplayError(err error)
}
