package mandelbrot

import (
	"fmt"
	"math"
)

// Range of the zoom factor control.
const (
	MinZoomFactor = -1000
	MaxZoomFactor = 1000
)

// ZoomState carries the zoom bookkeeping of one session. CumulativeZoom is
// the running product of the region scale multipliers applied since session
// start and stays strictly positive and finite; Factor is the control
// setting the next click will use.
type ZoomState struct {
	CumulativeZoom float64
	Factor         int
}

// DefaultZoomState returns the unzoomed state with the factor at 1.
func DefaultZoomState() ZoomState {
	return ZoomState{CumulativeZoom: 1, Factor: 1}
}

// ZoomMultiplier converts a factor setting to the region scale multiplier:
// a positive factor shrinks the viewport to 1/f of its extent (zoom in), a
// negative factor grows it by |f| (zoom out). Zero sits between 1 and -1 on
// the control and, like both, recenters without scaling.
func ZoomMultiplier(factor int) (float64, error) {
	if factor < MinZoomFactor || factor > MaxZoomFactor {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidZoomFactor, factor, MinZoomFactor, MaxZoomFactor)
	}
	switch {
	case factor > 0:
		return 1 / float64(factor), nil
	case factor < 0:
		return float64(-factor), nil
	default:
		return 1, nil
	}
}

// RecenterZoom builds the viewport produced by clicking pixel (px, py) on a
// bitmap of this viewport with the given factor setting. The clicked plane
// point becomes the new center and both extents scale by the same
// multiplier, preserving aspect ratio. The receiver is not modified; callers
// commit the result only when the error is nil.
func (v Viewport) RecenterZoom(px, py float64, res Resolution, factor int) (Viewport, float64, error) {
	if err := v.Validate(); err != nil {
		return Viewport{}, 0, err
	}
	if err := res.Validate(); err != nil {
		return Viewport{}, 0, err
	}
	if !res.Contains(px, py) {
		return Viewport{}, 0, fmt.Errorf("%w: (%g, %g) on %dx%d", ErrPointOutOfBounds, px, py, res.Width, res.Height)
	}
	mult, err := ZoomMultiplier(factor)
	if err != nil {
		return Viewport{}, 0, err
	}

	center := v.PixelToPlane(px, py, res)
	halfW := mult * v.Width() / 2
	halfH := mult * v.Height() / 2
	next := Viewport{
		Xmin: center.X - halfW,
		Xmax: center.X + halfW,
		Ymin: center.Y - halfH,
		Ymax: center.Y + halfH,
	}
	if next.Validate() != nil {
		// The half extents underflowed to zero or overflowed to infinity.
		return Viewport{}, 0, fmt.Errorf("%w: factor %d at %g by %g", ErrDegenerateViewport, factor, v.Width(), v.Height())
	}
	return next, mult, nil
}

// ViewState is the mutable view of one session: the displayed viewport plus
// the zoom bookkeeping.
type ViewState struct {
	Viewport Viewport
	Zoom     ZoomState
}

// DefaultViewState returns the whole-set view with no zoom applied.
func DefaultViewState() ViewState {
	return ViewState{Viewport: DefaultViewport(), Zoom: DefaultZoomState()}
}

// RecenterZoom applies a click to the view and returns the successor state
// without mutating the receiver. The cumulative zoom picks up the step's
// multiplier; a step that would push it to zero or infinity is rejected as
// degenerate.
func (s ViewState) RecenterZoom(px, py float64, res Resolution) (ViewState, error) {
	next, mult, err := s.Viewport.RecenterZoom(px, py, res, s.Zoom.Factor)
	if err != nil {
		return ViewState{}, err
	}
	cum := s.Zoom.CumulativeZoom * mult
	if cum <= 0 || math.IsInf(cum, 0) {
		return ViewState{}, fmt.Errorf("%w: cumulative zoom %g", ErrDegenerateViewport, cum)
	}
	return ViewState{
		Viewport: next,
		Zoom:     ZoomState{CumulativeZoom: cum, Factor: s.Zoom.Factor},
	}, nil
}
