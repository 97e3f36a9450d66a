package camdev

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"
)

// ErrInvalidCamera is returned by Camera.Validate for unusable parameters.
var ErrInvalidCamera = errors.New("camdev: invalid camera")

// Default camera parameters.
const (
	DefaultViewAngle = 30.0
	DefaultNearPlane = 0.1
	DefaultFarPlane  = 1000.0
)

// Identity4 returns the 4x4 identity matrix.
func Identity4() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// CameraState is a value snapshot of a camera's viewpoint and projection
// parameters. It carries no reference back to the camera.
type CameraState struct {
	Position           [3]float64
	FocalPoint         [3]float64
	ViewUp             [3]float64
	ViewAngle          float64
	ClippingRange      [2]float64
	ParallelProjection bool
	ParallelScale      float64

	// ViewTransform and ProjectionTransform are supplied by the camera's
	// owner; the camera stores them as given.
	ViewTransform       f32.Mat4
	ProjectionTransform f32.Mat4
}

// Camera holds viewpoint and projection state and owns the device it
// renders through.
//
// The device is created automatically on the first Render call, from the
// device set with WithDevice or SetDevice, the registry name set with
// WithDeviceName, or the registry default, in that order. Close releases
// it. Camera is NOT safe for concurrent use.
type Camera struct {
	state CameraState
	mtime uint64

	deviceName string
	device     Device
	ready      bool // device initialized
	closed     bool
}

// CameraOption configures a Camera.
type CameraOption func(*Camera)

// WithDeviceName selects the registered device the camera creates.
func WithDeviceName(name string) CameraOption {
	return func(c *Camera) { c.deviceName = name }
}

// WithDevice hands an already created device to the camera.
// The camera takes ownership: it initializes the device before the
// first Render and closes it on Close.
func WithDevice(d Device) CameraOption {
	return func(c *Camera) { c.device = d }
}

// WithPosition sets the camera position.
func WithPosition(x, y, z float64) CameraOption {
	return func(c *Camera) { c.state.Position = [3]float64{x, y, z} }
}

// WithFocalPoint sets the point the camera looks at.
func WithFocalPoint(x, y, z float64) CameraOption {
	return func(c *Camera) { c.state.FocalPoint = [3]float64{x, y, z} }
}

// WithViewUp sets the view-up vector.
func WithViewUp(x, y, z float64) CameraOption {
	return func(c *Camera) { c.state.ViewUp = [3]float64{x, y, z} }
}

// WithViewAngle sets the vertical view angle in degrees.
func WithViewAngle(deg float64) CameraOption {
	return func(c *Camera) { c.state.ViewAngle = deg }
}

// WithClippingRange sets the near and far clipping distances.
func WithClippingRange(near, far float64) CameraOption {
	return func(c *Camera) { c.state.ClippingRange = [2]float64{near, far} }
}

// WithState restores every camera parameter from a snapshot taken with
// State. Options after it override individual parameters.
func WithState(s CameraState) CameraOption {
	return func(c *Camera) { c.state = s }
}

// NewCamera creates a camera at (0, 0, 1) looking at the origin with +Y up.
func NewCamera(opts ...CameraOption) *Camera {
	c := &Camera{
		state: CameraState{
			Position:            [3]float64{0, 0, 1},
			ViewUp:              [3]float64{0, 1, 0},
			ViewAngle:           DefaultViewAngle,
			ClippingRange:       [2]float64{DefaultNearPlane, DefaultFarPlane},
			ParallelScale:       1,
			ViewTransform:       Identity4(),
			ProjectionTransform: Identity4(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the camera parameters.
func (c *Camera) State() CameraState {
	return c.state
}

// MTime returns the modification counter. Every setter increments it.
func (c *Camera) MTime() uint64 {
	return c.mtime
}

func (c *Camera) modified() {
	c.mtime++
}

// Position returns the camera position.
func (c *Camera) Position() [3]float64 { return c.state.Position }

// SetPosition sets the camera position.
func (c *Camera) SetPosition(x, y, z float64) {
	c.state.Position = [3]float64{x, y, z}
	c.modified()
}

// FocalPoint returns the point the camera looks at.
func (c *Camera) FocalPoint() [3]float64 { return c.state.FocalPoint }

// SetFocalPoint sets the point the camera looks at.
func (c *Camera) SetFocalPoint(x, y, z float64) {
	c.state.FocalPoint = [3]float64{x, y, z}
	c.modified()
}

// ViewUp returns the view-up vector.
func (c *Camera) ViewUp() [3]float64 { return c.state.ViewUp }

// SetViewUp sets the view-up vector.
func (c *Camera) SetViewUp(x, y, z float64) {
	c.state.ViewUp = [3]float64{x, y, z}
	c.modified()
}

// ViewAngle returns the vertical view angle in degrees.
func (c *Camera) ViewAngle() float64 { return c.state.ViewAngle }

// SetViewAngle sets the vertical view angle in degrees.
func (c *Camera) SetViewAngle(deg float64) {
	c.state.ViewAngle = deg
	c.modified()
}

// ClippingRange returns the near and far clipping distances.
func (c *Camera) ClippingRange() (near, far float64) {
	return c.state.ClippingRange[0], c.state.ClippingRange[1]
}

// SetClippingRange sets the near and far clipping distances.
func (c *Camera) SetClippingRange(near, far float64) {
	c.state.ClippingRange = [2]float64{near, far}
	c.modified()
}

// SetParallelProjection switches between parallel and perspective
// projection. scale is the half-height of the parallel view volume.
func (c *Camera) SetParallelProjection(on bool, scale float64) {
	c.state.ParallelProjection = on
	c.state.ParallelScale = scale
	c.modified()
}

// ViewTransform returns the owner-supplied world-to-view matrix.
func (c *Camera) ViewTransform() f32.Mat4 { return c.state.ViewTransform }

// SetViewTransform stores the world-to-view matrix.
func (c *Camera) SetViewTransform(m f32.Mat4) {
	c.state.ViewTransform = m
	c.modified()
}

// ProjectionTransform returns the owner-supplied projection matrix.
func (c *Camera) ProjectionTransform() f32.Mat4 { return c.state.ProjectionTransform }

// SetProjectionTransform stores the projection matrix.
func (c *Camera) SetProjectionTransform(m f32.Mat4) {
	c.state.ProjectionTransform = m
	c.modified()
}

// Validate reports whether the camera parameters can be rendered.
func (c *Camera) Validate() error {
	s := c.state
	if !s.ParallelProjection && (s.ViewAngle <= 0 || s.ViewAngle >= 180) {
		return fmt.Errorf("%w: view angle %g not in (0, 180)", ErrInvalidCamera, s.ViewAngle)
	}
	if s.ParallelProjection && s.ParallelScale <= 0 {
		return fmt.Errorf("%w: parallel scale %g must be > 0", ErrInvalidCamera, s.ParallelScale)
	}
	near, far := s.ClippingRange[0], s.ClippingRange[1]
	if near <= 0 || far <= near {
		return fmt.Errorf("%w: clipping range [%g, %g]", ErrInvalidCamera, near, far)
	}
	if s.Position == s.FocalPoint {
		return fmt.Errorf("%w: position equals focal point", ErrInvalidCamera)
	}
	if s.ViewUp == ([3]float64{}) {
		return fmt.Errorf("%w: zero view-up vector", ErrInvalidCamera)
	}
	return nil
}

// DeviceName returns the name of the camera's device: the live device's
// name once created, otherwise the configured registry name.
func (c *Camera) DeviceName() string {
	if c.device != nil {
		return c.device.Name()
	}
	return c.deviceName
}

// Device returns the camera's device, or nil before the first Render.
func (c *Camera) Device() Device {
	return c.device
}

// SetDevice replaces the camera's device. The previous device, if any
// and different from d, is closed. The camera takes ownership of d and
// initializes it on the next Render. A closed camera closes d at once.
func (c *Camera) SetDevice(d Device) {
	if c.closed {
		if d != nil {
			closeDevice(d)
		}
		return
	}
	if c.device == d {
		return
	}
	if c.device != nil {
		closeDevice(c.device)
	}
	c.device = d
	c.ready = false
}

// Render draws through the camera into ren, creating the camera's device
// on first use.
func (c *Camera) Render(ren *Renderer) error {
	if c.closed {
		return ErrCameraClosed
	}
	if ren == nil {
		return ErrNilRenderer
	}
	if c.device == nil {
		d, err := c.createDevice()
		if err != nil {
			return err
		}
		c.device = d
		c.ready = true
	}
	if !c.ready {
		if err := initializeDevice(c.device); err != nil {
			return fmt.Errorf("camdev: init device %q: %w", c.device.Name(), err)
		}
		c.ready = true
	}

	if err := c.device.Render(c, ren); err != nil {
		return fmt.Errorf("camdev: %s render: %w", c.device.Name(), err)
	}
	return nil
}

func (c *Camera) createDevice() (Device, error) {
	if c.deviceName != "" {
		return NewDevice(c.deviceName)
	}
	return DefaultDevice()
}

// Close destroys the camera's device. Render fails with ErrCameraClosed
// afterwards. Close is idempotent.
func (c *Camera) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.device != nil {
		closeDevice(c.device)
		c.device = nil
	}
}
