// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
)

// fakeView records Destroy calls.
type fakeView struct {
	destroyed int
}

func (v *fakeView) Destroy() { v.destroyed++ }

func TestNewPixmapTarget(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small", 100, 100},
		{"medium", 800, 600},
		{"wide", 1000, 100},
		{"tall", 100, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewPixmapTarget(tt.width, tt.height)

			if target.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", target.Width(), tt.width)
			}
			if target.Height() != tt.height {
				t.Errorf("Height() = %d, want %d", target.Height(), tt.height)
			}
			if target.Format() != gputypes.TextureFormatRGBA8Unorm {
				t.Errorf("Format() = %v, want RGBA8Unorm", target.Format())
			}
			if target.TextureView() != nil {
				t.Error("TextureView() should be nil for CPU target")
			}
			if target.Pixels() == nil {
				t.Error("Pixels() should not be nil for CPU target")
			}
			if target.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", target.Stride(), tt.width*4)
			}
		})
	}
}

func TestPixmapTargetFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	img.SetRGBA(50, 50, color.RGBA{255, 0, 0, 255})

	target := NewPixmapTargetFromImage(img)

	if target.Width() != 200 || target.Height() != 150 {
		t.Errorf("size = %dx%d, want 200x150", target.Width(), target.Height())
	}
	if got := target.GetPixel(50, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("GetPixel(50, 50) = %v, want red", got)
	}
}

func TestPixmapTargetClear(t *testing.T) {
	target := NewPixmapTarget(10, 10)
	blue := color.RGBA{0, 0, 255, 255}

	target.Clear(blue)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := target.GetPixel(x, y); got != blue {
				t.Fatalf("Pixel at (%d, %d) = %v, want blue", x, y, got)
			}
		}
	}
}

func TestPixmapTargetFillRect(t *testing.T) {
	tests := []struct {
		name   string
		rect   image.Rectangle
		inside image.Point
		out    image.Point
	}{
		{"interior", image.Rect(2, 2, 5, 5), image.Pt(3, 3), image.Pt(6, 6)},
		{"clipped", image.Rect(-5, -5, 3, 3), image.Pt(0, 0), image.Pt(3, 3)},
		{"edge", image.Rect(8, 0, 20, 10), image.Pt(9, 9), image.Pt(7, 9)},
	}

	red := color.RGBA{255, 0, 0, 255}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewPixmapTarget(10, 10)
			target.FillRect(tt.rect, red)

			if got := target.GetPixel(tt.inside.X, tt.inside.Y); got != red {
				t.Errorf("inside %v = %v, want red", tt.inside, got)
			}
			if got := target.GetPixel(tt.out.X, tt.out.Y); got != (color.RGBA{}) {
				t.Errorf("outside %v = %v, want untouched", tt.out, got)
			}
		})
	}
}

func TestPixmapTargetFillRectEmpty(t *testing.T) {
	target := NewPixmapTarget(4, 4)
	target.FillRect(image.Rect(10, 10, 20, 20), color.White)

	for _, b := range target.Pixels() {
		if b != 0 {
			t.Fatal("FillRect outside bounds modified pixels")
		}
	}
}

func TestPixmapTargetFillRectOffsetImage(t *testing.T) {
	// Sub-images keep their parent's coordinate space.
	parent := image.NewRGBA(image.Rect(0, 0, 20, 20))
	sub := parent.SubImage(image.Rect(10, 10, 20, 20)).(*image.RGBA)
	target := NewPixmapTargetFromImage(sub)

	target.FillRect(image.Rect(0, 0, 1, 1), color.White)

	if got := parent.RGBAAt(10, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("parent (10,10) = %v, want white", got)
	}
	if got := parent.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("parent (0,0) = %v, want untouched", got)
	}
}

func TestPixmapTargetSetGetPixel(t *testing.T) {
	target := NewPixmapTarget(100, 100)

	tests := []struct {
		x, y int
		c    color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{99, 99, color.RGBA{0, 255, 0, 255}},
		{50, 50, color.RGBA{0, 0, 255, 128}},
	}

	for _, tt := range tests {
		target.SetPixel(tt.x, tt.y, tt.c)
		if got := target.GetPixel(tt.x, tt.y); got != tt.c {
			t.Errorf("GetPixel(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.c)
		}
	}
}

func TestPixmapTargetResize(t *testing.T) {
	target := NewPixmapTarget(100, 100)
	target.SetPixel(50, 50, color.RGBA{255, 0, 0, 255})

	target.Resize(200, 150)

	if target.Width() != 200 || target.Height() != 150 {
		t.Errorf("size = %dx%d, want 200x150", target.Width(), target.Height())
	}
	if got := target.GetPixel(50, 50); got.A != 0 {
		t.Errorf("Pixel after resize should be transparent, got %v", got)
	}
}

func TestPixmapTargetImageSharesMemory(t *testing.T) {
	target := NewPixmapTarget(100, 100)
	img := target.Image()

	img.SetRGBA(10, 10, color.RGBA{255, 0, 0, 255})
	if target.GetPixel(10, 10).R != 255 {
		t.Error("Image and target should share memory")
	}
}

func TestTextureTarget(t *testing.T) {
	view := &fakeView{}
	target := NewTextureTarget(512, 256, gputypes.TextureFormatRGBA8Unorm, view)

	if target.Width() != 512 || target.Height() != 256 {
		t.Errorf("size = %dx%d, want 512x256", target.Width(), target.Height())
	}
	if target.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", target.Format())
	}
	if target.TextureView() != view {
		t.Error("TextureView() should return the wrapped view")
	}
	if target.Pixels() != nil {
		t.Error("Pixels() should be nil for GPU target")
	}
	if target.Stride() != 0 {
		t.Errorf("Stride() = %d, want 0 for GPU target", target.Stride())
	}

	target.Destroy()
	target.Destroy()
	if view.destroyed != 1 {
		t.Errorf("view destroyed %d times, want 1", view.destroyed)
	}
	if target.TextureView() != nil {
		t.Error("TextureView() should be nil after Destroy")
	}
}

func TestSurfaceTarget(t *testing.T) {
	view := &fakeView{}
	target := NewSurfaceTarget(800, 600, gputypes.TextureFormatBGRA8Unorm, view)

	if target.Width() != 800 || target.Height() != 600 {
		t.Errorf("size = %dx%d, want 800x600", target.Width(), target.Height())
	}
	if target.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", target.Format())
	}
	if target.Pixels() != nil {
		t.Error("Pixels() should be nil for surface target")
	}
	if target.TextureView() != view {
		t.Error("TextureView() should return the host view")
	}
}

func TestPixmapTargetSavePNG(t *testing.T) {
	target := NewPixmapTarget(4, 3)
	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	target.Clear(want)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := target.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := color.RGBAModel.Convert(img.At(2, 1)); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}

	if err := target.SavePNG(filepath.Join(t.TempDir(), "missing", "x.png")); err == nil {
		t.Error("SavePNG() into a missing directory should fail")
	}
}
