package camdev

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/camdev/render"
)

func TestViewportValidate(t *testing.T) {
	tests := []struct {
		name string
		v    Viewport
		ok   bool
	}{
		{"full", FullViewport, true},
		{"quadrant", Viewport{0.5, 0.5, 1, 1}, true},
		{"degenerate", Viewport{0.3, 0.3, 0.3, 0.3}, true},
		{"negative", Viewport{-0.1, 0, 1, 1}, false},
		{"over one", Viewport{0, 0, 1.5, 1}, false},
		{"min above max", Viewport{0.6, 0, 0.4, 1}, false},
		{"nan", Viewport{math.NaN(), 0, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidViewport) {
				t.Errorf("Validate() = %v, want ErrInvalidViewport", err)
			}
		})
	}
}

func TestViewportRect(t *testing.T) {
	tests := []struct {
		name string
		v    Viewport
		w, h int
		want image.Rectangle
	}{
		{"full", FullViewport, 100, 50, image.Rect(0, 0, 100, 50)},
		{"lower left", Viewport{0, 0, 0.5, 0.5}, 100, 100, image.Rect(0, 50, 50, 100)},
		{"upper right", Viewport{0.5, 0.5, 1, 1}, 100, 100, image.Rect(50, 0, 100, 50)},
		{"rounding", Viewport{0, 0, 1.0 / 3, 1}, 10, 10, image.Rect(0, 0, 3, 10)},
		{"empty", Viewport{0.5, 0.5, 0.5, 0.5}, 10, 10, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Rect(tt.w, tt.h)
			if got.Empty() && tt.want.Empty() {
				return
			}
			if got != tt.want {
				t.Errorf("Rect(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestNewRendererDefaults(t *testing.T) {
	target := render.NewPixmapTarget(10, 10)
	r := NewRenderer(target)

	if r.Target() != render.RenderTarget(target) {
		t.Error("Target() differs from the constructor argument")
	}
	if r.Viewport() != FullViewport {
		t.Errorf("Viewport() = %v, want full", r.Viewport())
	}
	if r.Background() != color.Color(color.Black) {
		t.Errorf("Background() = %v, want black", r.Background())
	}
	if !r.Erase() {
		t.Error("Erase() = false, want true")
	}
	if r.DeviceHandle() != nil {
		t.Error("DeviceHandle() should be nil by default")
	}
	if r.DrawState() != (DrawState{}) {
		t.Error("DrawState() should start zero")
	}
}

func TestRendererSetViewport(t *testing.T) {
	r := NewRenderer(render.NewPixmapTarget(10, 10))
	if err := r.SetViewport(Viewport{0, 0, 2, 1}); !errors.Is(err, ErrInvalidViewport) {
		t.Errorf("SetViewport(invalid) = %v, want ErrInvalidViewport", err)
	}
	if r.Viewport() != FullViewport {
		t.Error("invalid viewport was stored")
	}
	half := Viewport{0, 0, 0.5, 1}
	if err := r.SetViewport(half); err != nil {
		t.Fatalf("SetViewport() error = %v", err)
	}
	if r.Viewport() != half {
		t.Errorf("Viewport() = %v, want %v", r.Viewport(), half)
	}
}

func TestRendererAspect(t *testing.T) {
	tests := []struct {
		name   string
		target render.RenderTarget
		v      Viewport
		want   float64
	}{
		{"wide", render.NewPixmapTarget(200, 100), FullViewport, 2},
		{"half width", render.NewPixmapTarget(200, 100), Viewport{0, 0, 0.5, 1}, 1},
		{"empty viewport", render.NewPixmapTarget(200, 100), Viewport{0, 0, 0, 1}, 1},
		{"no target", nil, FullViewport, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(tt.target, WithViewport(tt.v))
			if got := r.Aspect(); got != tt.want {
				t.Errorf("Aspect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRendererDrawStateFrames(t *testing.T) {
	r := NewRenderer(render.NewPixmapTarget(8, 4))
	cam := NewCamera()

	for i := 1; i <= 3; i++ {
		s := r.NewDrawState("mock", cam)
		s.Frame = 42
		r.SetDrawState(s)
		if got := r.DrawState().Frame; got != uint64(i) {
			t.Errorf("Frame = %d after %d calls, want %d", got, i, i)
		}
	}

	s := r.DrawState()
	if s.Device != "mock" || s.Aspect != 2 || s.Viewport != image.Rect(0, 0, 8, 4) {
		t.Errorf("DrawState() = %+v", s)
	}
}

func TestRendererOptions(t *testing.T) {
	handle := render.NullDeviceHandle{}
	bg := color.RGBA{1, 2, 3, 4}
	r := NewRenderer(nil,
		WithBackground(bg),
		WithErase(false),
		WithDeviceHandle(handle),
	)
	if r.Background() != color.Color(bg) || r.Erase() {
		t.Error("renderer options not applied")
	}
	if r.DeviceHandle() != render.DeviceHandle(handle) {
		t.Error("WithDeviceHandle not applied")
	}
	if !r.ViewportRect().Empty() {
		t.Error("ViewportRect() without target should be empty")
	}
}
