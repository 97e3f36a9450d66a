package camdev

import (
	"errors"
)

// Common device errors.
var (
	// ErrDeviceNotAvailable is returned when no device can be created
	// for a camera, either because the requested name is not registered
	// or because the registry is empty.
	ErrDeviceNotAvailable = errors.New("camdev: device not available")

	// ErrNilCamera is returned when Render is called without a camera.
	ErrNilCamera = errors.New("camdev: nil camera")

	// ErrNilRenderer is returned when Render is called without a renderer.
	ErrNilRenderer = errors.New("camdev: nil renderer")

	// ErrNilTarget is returned when the renderer has no render target.
	ErrNilTarget = errors.New("camdev: renderer has no target")

	// ErrCameraClosed is returned by Camera.Render after Close.
	ErrCameraClosed = errors.New("camdev: camera closed")
)

// Device is the rendering capability a Camera delegates to.
//
// A Device is a hardware or backend specific implementation of the single
// operation a camera needs: drawing the scene as seen through the camera
// into the renderer's target. Devices are normally never constructed by
// users directly; a Camera creates its device from the registry the first
// time it renders and destroys it when the camera is closed.
//
// The camera and renderer passed to Render are borrowed for the duration
// of the call. A Device must not retain either of them after Render
// returns, and must not replace them; it only updates the renderer's
// target contents and draw state.
//
// Devices are NOT safe for concurrent use. Each device is driven from a
// single goroutine, matching the single rendering context it draws into.
type Device interface {
	// Name returns the constant identifier of the device type
	// (e.g. "software", "gpu"). It never returns an empty string.
	Name() string

	// Render draws through cam into ren.
	//
	// The capability defines no failure modes of its own. Concrete
	// devices return an error for their backend specific failures
	// (unsupported target, lost context, ...) and nil otherwise.
	Render(cam *Camera, ren *Renderer) error
}

// Initializer is implemented by devices that acquire resources before
// their first frame. NewDevice calls Init once after creating the device.
type Initializer interface {
	Init() error
}

// Closer is implemented by devices that hold resources. The owning
// camera calls Close when it is closed or when its device is replaced.
type Closer interface {
	Close()
}

// Capabilities describes what a device can render into.
type Capabilities struct {
	// Hardware reports whether the device drives a GPU.
	Hardware bool

	// RequiresCPUTarget reports whether the device needs direct pixel
	// access (RenderTarget.Pixels) to draw.
	RequiresCPUTarget bool

	// SupportsGPUTarget reports whether the device can draw into
	// texture or surface targets.
	SupportsGPUTarget bool

	// MaxViewportSize is the largest viewport dimension in pixels
	// (0 = unlimited).
	MaxViewportSize int
}

// CapableDevice is an optional interface for devices that can report
// their capabilities.
type CapableDevice interface {
	Device

	// Capabilities returns the device's capabilities.
	Capabilities() Capabilities
}

// CapabilitiesOf returns d's capabilities, or the zero value when d does
// not implement CapableDevice.
func CapabilitiesOf(d Device) Capabilities {
	if cd, ok := d.(CapableDevice); ok {
		return cd.Capabilities()
	}
	return Capabilities{}
}

// ValidateCall performs the argument checks shared by all devices:
// non-nil camera, renderer and render target, and a valid viewport.
func ValidateCall(cam *Camera, ren *Renderer) error {
	if cam == nil {
		return ErrNilCamera
	}
	if ren == nil {
		return ErrNilRenderer
	}
	if ren.Target() == nil {
		return ErrNilTarget
	}
	return ren.Viewport().Validate()
}

// initializeDevice runs Init on devices that implement Initializer.
func initializeDevice(d Device) error {
	if in, ok := d.(Initializer); ok {
		return in.Init()
	}
	return nil
}

// closeDevice releases d if it implements Closer.
func closeDevice(d Device) {
	if c, ok := d.(Closer); ok {
		c.Close()
	}
}
