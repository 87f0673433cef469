package mandelbrot

import (
	"fmt"
	"math"
)

// Viewport is an axis-aligned region of the complex plane, the rectangle a
// bitmap displays. Invariant: Xmin < Xmax and Ymin < Ymax, all bounds finite.
type Viewport struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// DefaultViewport is the whole-set view every session starts from.
func DefaultViewport() Viewport {
	return Viewport{Xmin: -2.5, Xmax: 1.0, Ymin: -1.25, Ymax: 1.25}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Viewport{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Viewport{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Viewport{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Viewport{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Viewport{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Viewport{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

// Width returns the horizontal extent of the viewport.
func (v Viewport) Width() float64 { return v.Xmax - v.Xmin }

// Height returns the vertical extent of the viewport.
func (v Viewport) Height() float64 { return v.Ymax - v.Ymin }

// Center returns the midpoint of the viewport.
func (v Viewport) Center() PlanePoint {
	return PlanePoint{X: v.Xmin + v.Width()/2, Y: v.Ymin + v.Height()/2}
}

// Validate reports ErrInvalidViewport unless all bounds are finite and
// strictly ordered.
func (v Viewport) Validate() error {
	for _, b := range [4]float64{v.Xmin, v.Xmax, v.Ymin, v.Ymax} {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: non-finite bound", ErrInvalidViewport)
		}
	}
	if v.Xmin >= v.Xmax || v.Ymin >= v.Ymax {
		return fmt.Errorf("%w: [%g, %g] x [%g, %g]", ErrInvalidViewport, v.Xmin, v.Xmax, v.Ymin, v.Ymax)
	}
	return nil
}

// PixelToPlane maps a continuous pixel coordinate on a bitmap of this
// viewport to the plane point it displays. Rendering samples pixel centers,
// so passing (k+0.5, j+0.5) recovers the sample lattice used by Evaluate;
// clicks pass the raw coordinate and land on the same linear map.
func (v Viewport) PixelToPlane(px, py float64, res Resolution) PlanePoint {
	return PlanePoint{
		X: v.Xmin + px/float64(res.Width)*v.Width(),
		Y: v.Ymin + py/float64(res.Height)*v.Height(),
	}
}

// PlanePoint is a point in the complex plane.
type PlanePoint struct {
	X, Y float64
}

// Resolution is the pixel size of a session's bitmaps. It is fixed for the
// lifetime of a session.
type Resolution struct {
	Width, Height int
}

// DefaultResolution matches the canvas the interactive UI renders into.
var DefaultResolution = Resolution{Width: 1600, Height: 900}

// Validate reports ErrInvalidResolution unless both dimensions are positive.
func (r Resolution) Validate() error {
	if r.Width < 1 || r.Height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidResolution, r.Width, r.Height)
	}
	return nil
}

// Contains reports whether the continuous pixel coordinate lies on a bitmap
// of this resolution.
func (r Resolution) Contains(px, py float64) bool {
	return px >= 0 && px < float64(r.Width) && py >= 0 && py < float64(r.Height)
}
