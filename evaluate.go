package mandelbrot

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// escapeRadiusSq is the squared modulus beyond which an orbit cannot return
// to the set.
const escapeRadiusSq = 4.0

// EscapeGrid holds the per-pixel escape iteration counts of one render,
// row-major. Counts lie in [1, MaxIter]; a count of MaxIter means the orbit
// stayed bounded for the whole budget and the point is treated as inside the
// set. Grids are never modified once produced.
type EscapeGrid struct {
	Width, Height int
	MaxIter       int
	Counts        []int32
}

// At returns the escape count of pixel (x, y).
func (g *EscapeGrid) At(x, y int) int32 { return g.Counts[y*g.Width+x] }

// Escaped reports whether pixel (x, y) escaped within the iteration budget.
func (g *EscapeGrid) Escaped(x, y int) bool { return g.At(x, y) < int32(g.MaxIter) }

// EscapeCount iterates z = z^2 + c from z = 0 and returns the 1-based
// iteration at which the squared modulus first exceeded 4, or maxIter if the
// orbit stayed bounded for the whole budget. c = 0 never escapes; c = 3
// escapes on the first iteration.
func EscapeCount(cx, cy float64, maxIter int) int32 {
	var zx, zy float64
	for i := 1; i <= maxIter; i++ {
		zx, zy = zx*zx-zy*zy+cx, 2*zx*zy+cy
		if zx*zx+zy*zy > escapeRadiusSq {
			return int32(i)
		}
	}
	return int32(maxIter)
}

// Evaluate samples the viewport on a pixel-center lattice of the given
// resolution and computes the escape count of every sample. Column k of a
// width w bitmap samples Xmin + (k+0.5)/w * (Xmax-Xmin), and rows likewise,
// so the lattice and PixelToPlane share one linear map.
//
// Rows are computed in parallel across GOMAXPROCS workers. The result is
// deterministic for equal inputs regardless of scheduling. Canceling ctx
// abandons the render; no partial grid is returned.
func Evaluate(ctx context.Context, v Viewport, res Resolution, maxIter int) (*EscapeGrid, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, maxIter)
	}

	grid := &EscapeGrid{
		Width:   res.Width,
		Height:  res.Height,
		MaxIter: maxIter,
		Counts:  make([]int32, res.Width*res.Height),
	}
	dx := v.Width() / float64(res.Width)
	dy := v.Height() / float64(res.Height)

	rows := make(chan int)
	go func() {
		defer close(rows)
		for y := 0; y < res.Height; y++ {
			select {
			case rows <- y:
			case <-ctx.Done():
				return
			}
		}
	}()

	workers := runtime.GOMAXPROCS(0)
	if workers > res.Height {
		workers = res.Height
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for y := range rows {
				cy := v.Ymin + (float64(y)+0.5)*dy
				base := y * res.Width
				for x := 0; x < res.Width; x++ {
					cx := v.Xmin + (float64(x)+0.5)*dx
					grid.Counts[base+x] = EscapeCount(cx, cy, maxIter)
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}
