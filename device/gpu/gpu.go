// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gogpu/camdev"
	"github.com/gogpu/camdev/device/software"
	"github.com/gogpu/camdev/render"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// Name is the registry name of the GPU device.
const Name = camdev.DeviceGPU

// MaxViewportSize is the largest viewport dimension the device accepts.
const MaxViewportSize = 8192

// GPU device errors.
var (
	// ErrNotInitialized is returned by Render before Init.
	ErrNotInitialized = errors.New("gpu: device not initialized")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("gpu: device closed")

	// ErrNoTextureView is returned for GPU targets without a texture view.
	ErrNoTextureView = errors.New("gpu: target has no texture view")

	// ErrViewportTooLarge is returned when the viewport exceeds MaxViewportSize.
	ErrViewportTooLarge = errors.New("gpu: viewport too large")

	// ErrNoHALDevice is returned by SetDeviceProvider when the provider
	// does not expose a HAL device.
	ErrNoHALDevice = errors.New("gpu: provider does not expose a HAL device")
)

func init() {
	camdev.Register(Name, func() camdev.Device {
		return New()
	})
}

// Pass describes the render pass the device sets up for one camera frame:
// the attachment, the viewport and scissor, how the viewport is erased,
// and the matrices the scene pass draws with.
//
// A viewport covering the whole attachment is erased with LoadOpClear.
// A smaller one keeps LoadOpLoad and carries a Clear draw, so pixels
// outside the viewport survive.
type Pass struct {
	Label    string
	Target   render.TextureView
	Format   gputypes.TextureFormat
	Viewport image.Rectangle

	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color

	// Clear is drawn first when the viewport is erased but smaller than
	// the attachment. Nil otherwise.
	Clear *ViewportClear

	ViewMatrix       f32.Mat4
	ProjectionMatrix f32.Mat4
}

// PassEncoder records passes into the host's command stream.
// A renderer whose DeviceHandle implements PassEncoder receives passes
// immediately; otherwise the device queues them until Flush.
type PassEncoder interface {
	EncodePass(p Pass) error
}

// Device is the GPU camera device.
//
// On GPU targets (texture or surface views) it builds a Pass per frame.
// On CPU targets it falls back to the software device, the same way the
// host GPU renderer falls back when no GPU path exists.
type Device struct {
	mu sync.Mutex

	logger   *slog.Logger
	fallback *software.Device

	spirv        []uint32
	halDevice    hal.Device
	shaderModule hal.ShaderModule

	pending []Pass
	frame   uint64

	initialized bool
	closed      bool
}

// Ensure Device implements the camdev interfaces.
var (
	_ camdev.Device        = (*Device)(nil)
	_ camdev.CapableDevice = (*Device)(nil)
	_ camdev.Initializer   = (*Device)(nil)
	_ camdev.Closer        = (*Device)(nil)
)

// New creates a GPU device. Init must be called before Render; camdev
// does that for devices from camdev.NewDevice and for devices handed to
// a camera.
func New() *Device {
	return &Device{
		fallback: software.New(software.Options{ReportAs: Name}),
	}
}

// Name returns "gpu".
func (d *Device) Name() string {
	return Name
}

// SetLogger overrides camdev.Logger for this device. Nil restores it.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	d.logger = l
	d.mu.Unlock()
	d.fallback.SetLogger(l)
}

func (d *Device) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return camdev.Logger()
}

// Capabilities reports a hardware device that also accepts CPU targets.
func (d *Device) Capabilities() camdev.Capabilities {
	return camdev.Capabilities{
		Hardware:          true,
		RequiresCPUTarget: false,
		SupportsGPUTarget: true,
		MaxViewportSize:   MaxViewportSize,
	}
}

// Init compiles the viewport clear shader. When a HAL device was provided
// with SetDeviceProvider, the shader module is created on it.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.initialized {
		return nil
	}

	words, err := compileSPIRV(viewportClearWGSL)
	if err != nil {
		return err
	}
	d.spirv = words
	d.initialized = true

	if d.halDevice != nil {
		if err := d.createShaderModuleLocked(); err != nil {
			return err
		}
	}
	d.log().Info("gpu: device initialized", "spirv_words", len(words), "hal", d.halDevice != nil)
	return nil
}

// SPIRV returns the compiled viewport clear shader, nil before Init.
func (d *Device) SPIRV() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spirv
}

// SetDeviceProvider switches the device to a GPU device shared by the
// host. The provider must implement HalDevice() any returning a
// hal.Device. The device never destroys a provided HAL device.
func (d *Device) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return ErrNoHALDevice
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.destroyShaderModuleLocked()
	d.halDevice = device
	if d.initialized {
		if err := d.createShaderModuleLocked(); err != nil {
			return err
		}
	}
	d.retargetPendingLocked()
	return nil
}

// retargetPendingLocked points queued clear draws at the current shader
// module. The module they were built with may have been destroyed.
func (d *Device) retargetPendingLocked() {
	for _, p := range d.pending {
		if p.Clear != nil {
			p.Clear.Shader = d.shaderModule
		}
	}
}

func (d *Device) createShaderModuleLocked() error {
	module, err := d.halDevice.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "camdev_viewport_clear",
		Source: hal.ShaderSource{
			SPIRV: d.spirv,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create shader module: %w", err)
	}
	d.shaderModule = module
	return nil
}

func (d *Device) destroyShaderModuleLocked() {
	if d.shaderModule != nil && d.halDevice != nil {
		d.halDevice.DestroyShaderModule(d.shaderModule)
	}
	d.shaderModule = nil
}

// Render draws through cam into ren.
//
// CPU targets are drawn by the software fallback. GPU targets get a Pass
// that is handed to the renderer's PassEncoder, or queued for Flush.
func (d *Device) Render(cam *camdev.Camera, ren *camdev.Renderer) error {
	if err := camdev.ValidateCall(cam, ren); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if !d.initialized {
		return ErrNotInitialized
	}

	target := ren.Target()
	if target.Pixels() != nil {
		d.log().Debug("gpu: CPU target, using software fallback")
		return d.fallback.Render(cam, ren)
	}

	if err := cam.Validate(); err != nil {
		return err
	}
	view := target.TextureView()
	if view == nil {
		return ErrNoTextureView
	}

	d.adoptHandleLocked(ren.DeviceHandle())

	state := ren.NewDrawState(Name, cam)
	if state.Viewport.Dx() > MaxViewportSize || state.Viewport.Dy() > MaxViewportSize {
		return fmt.Errorf("%w: %v", ErrViewportTooLarge, state.Viewport)
	}

	d.frame++
	pass := Pass{
		Label:            fmt.Sprintf("camdev_frame_%d", d.frame),
		Target:           view,
		Format:           target.Format(),
		Viewport:         state.Viewport,
		LoadOp:           gputypes.LoadOpLoad,
		StoreOp:          gputypes.StoreOpStore,
		ClearValue:       clearColor(ren.Background()),
		ViewMatrix:       state.View,
		ProjectionMatrix: state.Projection,
	}
	if ren.Erase() && !state.Viewport.Empty() {
		if state.Viewport == image.Rect(0, 0, target.Width(), target.Height()) {
			pass.LoadOp = gputypes.LoadOpClear
		} else {
			pass.Clear = d.viewportClearLocked(pass.ClearValue)
		}
		state.Erased = true
	}

	if enc, ok := ren.DeviceHandle().(PassEncoder); ok {
		if err := enc.EncodePass(pass); err != nil {
			return fmt.Errorf("gpu: encode pass: %w", err)
		}
	} else {
		d.pending = append(d.pending, pass)
	}
	ren.SetDrawState(state)

	d.log().Debug("gpu: frame", "viewport", state.Viewport, "load_op", pass.LoadOp,
		"shader_clear", pass.Clear != nil, "queued", len(d.pending))
	return nil
}

// adoptHandleLocked switches to the renderer's HAL device when the
// device has none yet. Failures are logged; rendering continues with
// pass encoding only.
func (d *Device) adoptHandleLocked(h render.DeviceHandle) {
	if d.halDevice != nil || h == nil {
		return
	}
	type halProvider interface {
		HalDevice() any
	}
	hp, ok := h.(halProvider)
	if !ok {
		return
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return
	}
	d.halDevice = device
	if err := d.createShaderModuleLocked(); err != nil {
		d.log().Warn("gpu: shader module on host device failed", "error", err)
		d.halDevice = nil
		return
	}
	d.retargetPendingLocked()
}

// Pending returns a copy of the passes waiting for Flush.
func (d *Device) Pending() []Pass {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Pass(nil), d.pending...)
}

// Flush hands queued passes to enc in render order. On error the failed
// pass and those after it stay queued.
func (d *Device) Flush(enc PassEncoder) error {
	if enc == nil {
		return errors.New("gpu: nil pass encoder")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i, p := range d.pending {
		if err := enc.EncodePass(p); err != nil {
			d.pending = append(d.pending[:0], d.pending[i:]...)
			return fmt.Errorf("gpu: encode pass %q: %w", p.Label, err)
		}
	}
	d.pending = d.pending[:0]
	return nil
}

// Close releases GPU resources and drops queued passes. The HAL device
// itself belongs to the host and is not destroyed.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.destroyShaderModuleLocked()
	if n := len(d.pending); n > 0 {
		d.log().Warn("gpu: dropping queued passes on close", "count", n)
	}
	d.pending = nil
	d.halDevice = nil
	d.closed = true
}

// clearColor converts c to a WebGPU clear value (premultiplied alpha).
func clearColor(c color.Color) gputypes.Color {
	if c == nil {
		return gputypes.Color{}
	}
	r, g, b, a := c.RGBA()
	return gputypes.Color{
		R: float64(r) / 0xffff,
		G: float64(g) / 0xffff,
		B: float64(b) / 0xffff,
		A: float64(a) / 0xffff,
	}
}
