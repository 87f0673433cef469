package mandelbrot

import (
	"errors"
	"image/color"
	"testing"
)

func grayscale() Palette {
	return Palette{
		Stops: []ColorStop{
			{Offset: 0, Color: color.RGBA{R: 0, G: 0, B: 0, A: 255}},
			{Offset: 1, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		},
		Interior: color.RGBA{R: 255, G: 0, B: 0, A: 255},
	}
}

func TestPalette_ColorAt(t *testing.T) {
	p := grayscale()
	tests := []struct {
		name string
		t    float64
		want color.RGBA
	}{
		{"start", 0, color.RGBA{R: 0, G: 0, B: 0, A: 255}},
		{"end", 1, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"midpoint", 0.5, color.RGBA{R: 128, G: 128, B: 128, A: 255}},
		{"clamp below", -2, color.RGBA{R: 0, G: 0, B: 0, A: 255}},
		{"clamp above", 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ColorAt(tt.t); got != tt.want {
				t.Errorf("ColorAt(%v) = %+v, want %+v", tt.t, got, tt.want)
			}
		})
	}
}

func TestPalette_ColorAt_EmptyStops(t *testing.T) {
	p := Palette{Interior: color.RGBA{R: 9, G: 9, B: 9, A: 255}}
	if got := p.ColorAt(0.5); got != p.Interior {
		t.Errorf("ColorAt with no stops = %+v, want Interior %+v", got, p.Interior)
	}
}

func TestInferno_Anchors(t *testing.T) {
	p := Inferno()
	for _, stop := range p.Stops {
		if got := p.ColorAt(stop.Offset); got != stop.Color {
			t.Errorf("ColorAt(%v) = %+v, want anchor %+v", stop.Offset, got, stop.Color)
		}
	}
	if p.Interior != (color.RGBA{A: 255}) {
		t.Errorf("Interior = %+v, want opaque black", p.Interior)
	}
}

func TestPalette_Render(t *testing.T) {
	p := grayscale()
	grid := &EscapeGrid{
		Width:   3,
		Height:  1,
		MaxIter: 10,
		Counts:  []int32{1, 5, 10},
	}

	img, err := p.Render(grid)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 1 {
		t.Fatalf("bounds = %v, want 3x1", img.Bounds())
	}

	// Count 1 maps to the ramp start, the budget maps to Interior.
	if got, want := img.RGBAAt(0, 0), p.ColorAt(0); got != want {
		t.Errorf("pixel 0 = %+v, want ramp start %+v", got, want)
	}
	if got, want := img.RGBAAt(1, 0), p.ColorAt(4.0/9.0); got != want {
		t.Errorf("pixel 1 = %+v, want %+v", got, want)
	}
	if got := img.RGBAAt(2, 0); got != p.Interior {
		t.Errorf("pixel 2 = %+v, want Interior %+v", got, p.Interior)
	}
}

func TestPalette_Render_BudgetOfOne(t *testing.T) {
	// With a budget of one every count is the budget, so everything is
	// interior and the ramp denominator is never used.
	p := grayscale()
	grid := &EscapeGrid{Width: 2, Height: 2, MaxIter: 1, Counts: []int32{1, 1, 1, 1}}

	img, err := p.Render(grid)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := img.RGBAAt(x, y); got != p.Interior {
				t.Errorf("pixel (%d, %d) = %+v, want Interior", x, y, got)
			}
		}
	}
}

func TestPalette_Render_Deterministic(t *testing.T) {
	p := Inferno()
	grid := &EscapeGrid{Width: 8, Height: 4, MaxIter: 40, Counts: make([]int32, 32)}
	for i := range grid.Counts {
		grid.Counts[i] = int32(i%40 + 1)
	}

	a, err := p.Render(grid)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := p.Render(grid)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Pix[%d] differs between renders: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestPalette_Render_Rejections(t *testing.T) {
	p := Inferno()
	tests := []struct {
		name string
		grid *EscapeGrid
	}{
		{"nil grid", nil},
		{"zero width", &EscapeGrid{Width: 0, Height: 4, MaxIter: 10}},
		{"count length mismatch", &EscapeGrid{Width: 2, Height: 2, MaxIter: 10, Counts: []int32{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := p.Render(tt.grid)
			if !errors.Is(err, ErrRenderFailure) {
				t.Errorf("Render() error = %v, want ErrRenderFailure", err)
			}
			if img != nil {
				t.Error("Render() returned an image on rejection, want nil")
			}
		})
	}
}

func TestPalette_RenderScaled(t *testing.T) {
	p := Inferno()
	grid := &EscapeGrid{Width: 4, Height: 2, MaxIter: 10, Counts: []int32{
		1, 2, 3, 4,
		5, 6, 7, 10,
	}}

	t.Run("scale 1 is plain render", func(t *testing.T) {
		img, err := p.RenderScaled(grid, 1)
		if err != nil {
			t.Fatalf("RenderScaled() error = %v", err)
		}
		if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
			t.Errorf("bounds = %v, want 4x2", img.Bounds())
		}
	})

	t.Run("scale 3 triples dimensions", func(t *testing.T) {
		img, err := p.RenderScaled(grid, 3)
		if err != nil {
			t.Fatalf("RenderScaled() error = %v", err)
		}
		if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 6 {
			t.Errorf("bounds = %v, want 12x6", img.Bounds())
		}
	})

	t.Run("scale 0 rejected", func(t *testing.T) {
		if _, err := p.RenderScaled(grid, 0); !errors.Is(err, ErrRenderFailure) {
			t.Errorf("RenderScaled() error = %v, want ErrRenderFailure", err)
		}
	})
}

func TestPalette_Scaled_Renderer(t *testing.T) {
	var r Renderer = Inferno().Scaled(2)
	grid := &EscapeGrid{Width: 3, Height: 3, MaxIter: 5, Counts: make([]int32, 9)}
	for i := range grid.Counts {
		grid.Counts[i] = int32(i%5 + 1)
	}

	img, err := r.Render(grid)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v, want 6x6", img.Bounds())
	}
}

func BenchmarkPalette_Render(b *testing.B) {
	p := Inferno()
	grid := &EscapeGrid{Width: 320, Height: 180, MaxIter: 500, Counts: make([]int32, 320*180)}
	for i := range grid.Counts {
		grid.Counts[i] = int32(i%500 + 1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Render(grid); err != nil {
			b.Fatal(err)
		}
	}
}
