package mandelbrot

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ColorStop anchors the escape ramp at an offset in [0, 1].
type ColorStop struct {
	Offset float64
	Color  color.RGBA
}

// Palette maps escape counts to colors. Escaped counts spread monotonically
// over a ramp of color stops; counts at the iteration budget are treated as
// inside the set and painted Interior. Stops must be sorted by ascending
// offset. The zero Palette paints everything Interior.
type Palette struct {
	Stops    []ColorStop
	Interior color.RGBA
}

// Inferno returns the default palette: anchors of the perceptually uniform
// inferno ramp, near-black violet through red and orange to pale yellow,
// with a black set interior.
func Inferno() Palette {
	return Palette{
		Stops: []ColorStop{
			{Offset: 0.00, Color: color.RGBA{R: 0, G: 0, B: 4, A: 255}},
			{Offset: 0.25, Color: color.RGBA{R: 87, G: 16, B: 110, A: 255}},
			{Offset: 0.50, Color: color.RGBA{R: 188, G: 55, B: 84, A: 255}},
			{Offset: 0.75, Color: color.RGBA{R: 249, G: 142, B: 9, A: 255}},
			{Offset: 1.00, Color: color.RGBA{R: 252, G: 255, B: 164, A: 255}},
		},
		Interior: color.RGBA{A: 255},
	}
}

// ColorAt returns the ramp color at offset t. Offsets outside [0, 1] clamp
// to the nearest stop; offsets between stops interpolate linearly.
func (p Palette) ColorAt(t float64) color.RGBA {
	if len(p.Stops) == 0 {
		return p.Interior
	}
	if t <= p.Stops[0].Offset {
		return p.Stops[0].Color
	}
	last := p.Stops[len(p.Stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	i := 1
	for p.Stops[i].Offset < t {
		i++
	}
	lo, hi := p.Stops[i-1], p.Stops[i]
	span := hi.Offset - lo.Offset
	if span <= 0 {
		return hi.Color
	}
	return lerpRGBA(lo.Color, hi.Color, (t-lo.Offset)/span)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R)) + 0.5),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G)) + 0.5),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B)) + 0.5),
		A: uint8(float64(a.A) + t*(float64(b.A)-float64(a.A)) + 0.5),
	}
}

// Render maps every count of the grid through the ramp into a bitmap of the
// same dimensions. Equal grids and palettes always produce identical
// bitmaps. The grid is only read.
func (p Palette) Render(grid *EscapeGrid) (*image.RGBA, error) {
	if grid == nil || grid.Width < 1 || grid.Height < 1 || len(grid.Counts) != grid.Width*grid.Height {
		return nil, fmt.Errorf("%w: malformed escape grid", ErrRenderFailure)
	}
	if grid.MaxIter < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIterations, grid.MaxIter)
	}

	// One ramp lookup per distinct count, not per pixel.
	lut := make([]color.RGBA, grid.MaxIter+1)
	for n := 1; n < grid.MaxIter; n++ {
		lut[n] = p.ColorAt(float64(n-1) / float64(grid.MaxIter-1))
	}
	lut[grid.MaxIter] = p.Interior

	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			img.SetRGBA(x, y, lut[grid.At(x, y)])
		}
	}
	return img, nil
}

// RenderScaled renders the grid and upscales the bitmap by an integer factor
// with bilinear filtering. The escape grid itself is never resampled; the
// scaling is purely a display nicety.
func (p Palette) RenderScaled(grid *EscapeGrid, scale int) (*image.RGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: scale %d", ErrRenderFailure, scale)
	}
	img, err := p.Render(grid)
	if err != nil || scale == 1 {
		return img, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, grid.Width*scale, grid.Height*scale))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// Scaled returns a Renderer that upscales this palette's bitmaps by the
// given factor.
func (p Palette) Scaled(scale int) Renderer {
	return scaledRenderer{p: p, scale: scale}
}

type scaledRenderer struct {
	p     Palette
	scale int
}

func (r scaledRenderer) Render(grid *EscapeGrid) (*image.RGBA, error) {
	return r.p.RenderScaled(grid, r.scale)
}

var _ Renderer = Palette{}
var _ Renderer = scaledRenderer{}
