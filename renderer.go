package camdev

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/camdev/render"
	"golang.org/x/image/math/f32"
)

// ErrInvalidViewport is returned by Viewport.Validate.
var ErrInvalidViewport = errors.New("camdev: invalid viewport")

// Viewport is a normalized sub-rectangle of the render target:
// XMin, YMin, XMax, YMax in [0, 1] with the origin at the lower-left
// corner of the target.
type Viewport struct {
	XMin, YMin, XMax, YMax float64
}

// FullViewport covers the whole target.
var FullViewport = Viewport{0, 0, 1, 1}

// Validate reports whether v lies within [0, 1] with min <= max.
func (v Viewport) Validate() error {
	for _, f := range [...]float64{v.XMin, v.YMin, v.XMax, v.YMax} {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Errorf("%w: %v outside [0, 1]", ErrInvalidViewport, v)
		}
	}
	if v.XMin > v.XMax || v.YMin > v.YMax {
		return fmt.Errorf("%w: %v has min > max", ErrInvalidViewport, v)
	}
	return nil
}

// Rect converts v to pixel space for a width x height target.
// The result uses image coordinates (top-left origin) and is clamped to
// the target bounds.
func (v Viewport) Rect(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	x0 := int(math.Round(v.XMin * w))
	x1 := int(math.Round(v.XMax * w))
	// Lower-left origin: YMax maps to the top row.
	y0 := int(math.Round((1 - v.YMax) * h))
	y1 := int(math.Round((1 - v.YMin) * h))
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
}

// DrawState is what a device leaves in the renderer after Render: the
// context the scene pass draws with.
type DrawState struct {
	// Device is the name of the device that produced the state.
	Device string

	// Frame counts SetDrawState calls on the renderer.
	Frame uint64

	// Viewport is the active viewport in target pixels.
	Viewport image.Rectangle

	// Aspect is the viewport width over height.
	Aspect float64

	// View and Projection are the matrices loaded for the frame.
	View       f32.Mat4
	Projection f32.Mat4

	// Erased reports whether the viewport was cleared to the background.
	Erased bool
}

// Renderer is the draw target a camera renders into: a render target, the
// viewport within it, and the background it is erased to.
// Renderer is NOT safe for concurrent use.
type Renderer struct {
	target     render.RenderTarget
	viewport   Viewport
	background color.Color
	erase      bool
	handle     render.DeviceHandle

	state DrawState
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithViewport sets the normalized viewport.
func WithViewport(v Viewport) RendererOption {
	return func(r *Renderer) { r.viewport = v }
}

// WithBackground sets the color the viewport is erased to.
func WithBackground(c color.Color) RendererOption {
	return func(r *Renderer) { r.background = c }
}

// WithErase controls whether devices clear the viewport before drawing.
func WithErase(erase bool) RendererOption {
	return func(r *Renderer) { r.erase = erase }
}

// WithDeviceHandle attaches the host's GPU device provider.
func WithDeviceHandle(h render.DeviceHandle) RendererOption {
	return func(r *Renderer) { r.handle = h }
}

// NewRenderer creates a renderer drawing into target with a full
// viewport, a black background and erasing enabled.
func NewRenderer(target render.RenderTarget, opts ...RendererOption) *Renderer {
	r := &Renderer{
		target:     target,
		viewport:   FullViewport,
		background: color.Black,
		erase:      true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Target returns the render target.
func (r *Renderer) Target() render.RenderTarget { return r.target }

// SetTarget replaces the render target (e.g. after a window resize).
func (r *Renderer) SetTarget(t render.RenderTarget) { r.target = t }

// Viewport returns the normalized viewport.
func (r *Renderer) Viewport() Viewport { return r.viewport }

// SetViewport sets the normalized viewport.
func (r *Renderer) SetViewport(v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.viewport = v
	return nil
}

// Background returns the erase color.
func (r *Renderer) Background() color.Color { return r.background }

// SetBackground sets the erase color.
func (r *Renderer) SetBackground(c color.Color) { r.background = c }

// Erase reports whether devices clear the viewport before drawing.
func (r *Renderer) Erase() bool { return r.erase }

// SetErase controls whether devices clear the viewport before drawing.
func (r *Renderer) SetErase(erase bool) { r.erase = erase }

// DeviceHandle returns the host GPU device provider, or nil.
func (r *Renderer) DeviceHandle() render.DeviceHandle { return r.handle }

// ViewportRect returns the viewport in target pixel coordinates.
// It is empty when the renderer has no target.
func (r *Renderer) ViewportRect() image.Rectangle {
	if r.target == nil {
		return image.Rectangle{}
	}
	return r.viewport.Rect(r.target.Width(), r.target.Height())
}

// Aspect returns the viewport aspect ratio (width / height), or 1 for an
// empty viewport.
func (r *Renderer) Aspect() float64 {
	rect := r.ViewportRect()
	if rect.Dx() == 0 || rect.Dy() == 0 {
		return 1
	}
	return float64(rect.Dx()) / float64(rect.Dy())
}

// DrawState returns the state left by the last device that rendered.
func (r *Renderer) DrawState() DrawState { return r.state }

// SetDrawState records the state for the scene pass and advances the
// frame counter. Devices call it at the end of Render.
func (r *Renderer) SetDrawState(s DrawState) {
	s.Frame = r.state.Frame + 1
	r.state = s
}

// NewDrawState builds the draw state a device would set for cam in r:
// viewport rect, aspect and the camera's matrices.
func (r *Renderer) NewDrawState(device string, cam *Camera) DrawState {
	return DrawState{
		Device:     device,
		Viewport:   r.ViewportRect(),
		Aspect:     r.Aspect(),
		View:       cam.ViewTransform(),
		Projection: cam.ProjectionTransform(),
	}
}
