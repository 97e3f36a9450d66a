// Package devicetest checks that a camdev.Device honors the device
// contract. Device packages call Run from their tests:
//
//	func TestConformance(t *testing.T) {
//	    devicetest.Run(t, devicetest.Config{
//	        NewDevice: func() camdev.Device { return software.New(software.Options{}) },
//	    })
//	}
package devicetest

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/camdev"
	"github.com/gogpu/camdev/render"
)

// Config describes the device under test.
type Config struct {
	// NewDevice creates a fresh, ready-to-render device. Required.
	NewDevice func() camdev.Device

	// NewTarget creates the target to render into.
	// Defaults to a 64x48 render.PixmapTarget.
	NewTarget func() render.RenderTarget

	// RendererOptions are applied to every renderer built by Run.
	RendererOptions []camdev.RendererOption
}

func (c Config) target() render.RenderTarget {
	if c.NewTarget != nil {
		return c.NewTarget()
	}
	return render.NewPixmapTarget(64, 48)
}

func (c Config) renderer() *camdev.Renderer {
	opts := append([]camdev.RendererOption{
		camdev.WithViewport(camdev.Viewport{XMin: 0.25, YMin: 0.25, XMax: 0.75, YMax: 1}),
		camdev.WithBackground(color.RGBA{R: 0x20, G: 0x40, B: 0x60, A: 0xff}),
	}, c.RendererOptions...)
	return camdev.NewRenderer(c.target(), opts...)
}

// Run executes the conformance checks as subtests of t.
func Run(t *testing.T, cfg Config) {
	t.Helper()
	if cfg.NewDevice == nil {
		t.Fatal("devicetest: Config.NewDevice is required")
	}

	t.Run("Name", func(t *testing.T) { testName(t, cfg) })
	t.Run("NilArguments", func(t *testing.T) { testNilArguments(t, cfg) })
	t.Run("InvalidViewport", func(t *testing.T) { testInvalidViewport(t, cfg) })
	t.Run("PreservesIdentity", func(t *testing.T) { testPreservesIdentity(t, cfg) })
	t.Run("Deterministic", func(t *testing.T) { testDeterministic(t, cfg) })
	t.Run("CameraDelegation", func(t *testing.T) { testCameraDelegation(t, cfg) })
}

func newCamera() *camdev.Camera {
	return camdev.NewCamera(
		camdev.WithPosition(1, 2, 3),
		camdev.WithFocalPoint(0, 0, 0),
		camdev.WithViewAngle(45),
	)
}

func closeDevice(d camdev.Device) {
	if c, ok := d.(camdev.Closer); ok {
		c.Close()
	}
}

func testName(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	defer closeDevice(d)

	name := d.Name()
	if name == "" {
		t.Fatal("Name() is empty")
	}
	for i := 0; i < 3; i++ {
		if got := d.Name(); got != name {
			t.Fatalf("Name() call %d = %q, want %q", i, got, name)
		}
	}

	other := cfg.NewDevice()
	defer closeDevice(other)
	if got := other.Name(); got != name {
		t.Errorf("second instance Name() = %q, want %q", got, name)
	}
}

func testNilArguments(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	defer closeDevice(d)

	if err := d.Render(nil, cfg.renderer()); !errors.Is(err, camdev.ErrNilCamera) {
		t.Errorf("Render(nil, ren) = %v, want ErrNilCamera", err)
	}
	if err := d.Render(newCamera(), nil); !errors.Is(err, camdev.ErrNilRenderer) {
		t.Errorf("Render(cam, nil) = %v, want ErrNilRenderer", err)
	}
}

func testInvalidViewport(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	defer closeDevice(d)

	ren := cfg.renderer()
	before := clonePixels(ren.Target())
	for _, vp := range []camdev.Viewport{
		{XMin: 0.8, YMin: 0, XMax: 0.2, YMax: 1},
		{XMin: 0, YMin: -0.5, XMax: 1, YMax: 1},
	} {
		bad := camdev.NewRenderer(ren.Target(), camdev.WithViewport(vp))
		if err := d.Render(newCamera(), bad); !errors.Is(err, camdev.ErrInvalidViewport) {
			t.Errorf("Render() with viewport %v = %v, want ErrInvalidViewport", vp, err)
		}
		if bad.DrawState().Frame != 0 {
			t.Errorf("viewport %v produced a frame", vp)
		}
	}
	if !bytes.Equal(before, ren.Target().Pixels()) {
		t.Error("Render with an invalid viewport touched pixels")
	}
}

func testPreservesIdentity(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	defer closeDevice(d)

	cam := newCamera()
	ren := cfg.renderer()

	target := ren.Target()
	camState := cam.State()
	camMTime := cam.MTime()
	viewport := ren.Viewport()
	background := ren.Background()

	if err := d.Render(cam, ren); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if ren.Target() != target {
		t.Error("Render replaced the renderer target")
	}
	if cam.State() != camState {
		t.Error("Render modified the camera parameters")
	}
	if cam.MTime() != camMTime {
		t.Error("Render bumped the camera modification time")
	}
	if ren.Viewport() != viewport {
		t.Error("Render modified the renderer viewport")
	}
	if ren.Background() != background {
		t.Error("Render modified the renderer background")
	}
	if got := ren.DrawState().Device; got != d.Name() {
		t.Errorf("DrawState().Device = %q, want %q", got, d.Name())
	}
}

func testDeterministic(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	defer closeDevice(d)

	cam := newCamera()
	ren := cfg.renderer()

	if err := d.Render(cam, ren); err != nil {
		t.Fatalf("first Render() error = %v", err)
	}
	first := ren.DrawState()
	firstPixels := clonePixels(ren.Target())

	if err := d.Render(cam, ren); err != nil {
		t.Fatalf("second Render() error = %v", err)
	}
	second := ren.DrawState()

	if second.Frame != first.Frame+1 {
		t.Errorf("Frame = %d after second render, want %d", second.Frame, first.Frame+1)
	}
	first.Frame, second.Frame = 0, 0
	if first != second {
		t.Errorf("draw state differs between identical renders:\n first %+v\nsecond %+v", first, second)
	}
	if !bytes.Equal(firstPixels, ren.Target().Pixels()) {
		t.Error("pixels differ between identical renders")
	}
}

func testCameraDelegation(t *testing.T, cfg Config) {
	d := cfg.NewDevice()
	cam := camdev.NewCamera(camdev.WithDevice(d), camdev.WithFocalPoint(0, 0, -1))
	defer cam.Close()

	if err := cam.Render(cfg.renderer()); err != nil {
		t.Fatalf("Camera.Render() error = %v", err)
	}
	if cam.Device() != d {
		t.Error("camera replaced the device it was given")
	}
	if cam.DeviceName() != d.Name() {
		t.Errorf("DeviceName() = %q, want %q", cam.DeviceName(), d.Name())
	}
}

func clonePixels(t render.RenderTarget) []byte {
	pix := t.Pixels()
	if pix == nil {
		return nil
	}
	return append([]byte(nil), pix...)
}
