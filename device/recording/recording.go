// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recording provides a camera device that captures frames as
// commands instead of drawing them.
//
// Every Render appends a Command holding the camera parameters and the
// renderer settings of that frame. Recorded frames can be replayed
// through any other device with Playback:
//
//	rec := recording.New()
//	cam := camdev.NewCamera(camdev.WithDevice(rec))
//	_ = cam.Render(ren)
//
//	sw, _ := camdev.NewDevice("software")
//	_ = rec.Playback(sw, camdev.NewRenderer(render.NewPixmapTarget(800, 600)))
//
// Wrap records frames while delegating the drawing to another device.
package recording

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gogpu/camdev"
)

// Name is the registry name of the recording device.
const Name = camdev.DeviceRecording

// ErrNilDevice is returned by Playback without a device.
var ErrNilDevice = errors.New("recording: nil playback device")

func init() {
	camdev.Register(Name, func() camdev.Device {
		return New()
	})
}

// Command is one recorded frame.
type Command struct {
	// Seq numbers commands from 1 in recording order.
	Seq uint64

	// Camera is the camera snapshot at render time.
	Camera camdev.CameraState

	// Viewport is the normalized viewport and Rect its pixel rectangle.
	Viewport camdev.Viewport
	Rect     image.Rectangle

	Aspect     float64
	Background color.Color
	Erase      bool
}

// Device records camera frames. It is safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	inner    camdev.Device
	commands []Command
	seq      uint64
	logger   *slog.Logger
}

// Ensure Device implements the camdev interfaces.
var (
	_ camdev.Device        = (*Device)(nil)
	_ camdev.CapableDevice = (*Device)(nil)
	_ camdev.Initializer   = (*Device)(nil)
	_ camdev.Closer        = (*Device)(nil)
)

// New creates a recording device that never touches pixels.
func New() *Device {
	return &Device{commands: make([]Command, 0, 16)}
}

// Wrap creates a recording device that records each frame and then
// renders it with inner. The wrapper reports inner's name, and forwards
// Init, SetLogger and Close to inner.
func Wrap(inner camdev.Device) *Device {
	d := New()
	d.inner = inner
	return d
}

// Name returns "recording", or the wrapped device's name.
func (d *Device) Name() string {
	if d.inner != nil {
		return d.inner.Name()
	}
	return Name
}

// SetLogger overrides camdev.Logger for this device and the wrapped
// device. Nil restores it.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	d.logger = l
	d.mu.Unlock()
	if ls, ok := d.inner.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}

// Init initializes the wrapped device. A plain recorder needs no setup.
func (d *Device) Init() error {
	if in, ok := d.inner.(camdev.Initializer); ok {
		return in.Init()
	}
	return nil
}

func (d *Device) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return camdev.Logger()
}

// Capabilities reports the wrapped device's capabilities, or a device
// that accepts any target.
func (d *Device) Capabilities() camdev.Capabilities {
	if d.inner != nil {
		return camdev.CapabilitiesOf(d.inner)
	}
	return camdev.Capabilities{SupportsGPUTarget: true}
}

// Render records the frame. A wrapping device then renders it with the
// wrapped device; the command is kept only if that succeeds.
func (d *Device) Render(cam *camdev.Camera, ren *camdev.Renderer) error {
	if err := camdev.ValidateCall(cam, ren); err != nil {
		return err
	}
	if err := cam.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inner != nil {
		if err := d.inner.Render(cam, ren); err != nil {
			return err
		}
	} else {
		ren.SetDrawState(ren.NewDrawState(Name, cam))
	}

	d.seq++
	cmd := Command{
		Seq:        d.seq,
		Camera:     cam.State(),
		Viewport:   ren.Viewport(),
		Rect:       ren.ViewportRect(),
		Aspect:     ren.Aspect(),
		Background: ren.Background(),
		Erase:      ren.Erase(),
	}
	d.commands = append(d.commands, cmd)

	d.log().Debug("recording: frame", "seq", cmd.Seq, "viewport", cmd.Rect)
	return nil
}

// Commands returns a copy of the recorded commands.
func (d *Device) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.commands...)
}

// Len returns the number of recorded commands.
func (d *Device) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.commands)
}

// Reset discards all recorded commands. Sequence numbers restart at 1.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = d.commands[:0]
	d.seq = 0
}

// Playback renders every recorded command with dev into ren, in order.
// The renderer's viewport, background and erase flag are set from each
// command and restored afterwards. Playback stops at the first error.
func (d *Device) Playback(dev camdev.Device, ren *camdev.Renderer) error {
	if dev == nil {
		return ErrNilDevice
	}
	if ren == nil {
		return camdev.ErrNilRenderer
	}

	cmds := d.Commands()

	viewport, background, erase := ren.Viewport(), ren.Background(), ren.Erase()
	defer func() {
		_ = ren.SetViewport(viewport)
		ren.SetBackground(background)
		ren.SetErase(erase)
	}()

	for _, cmd := range cmds {
		if err := ren.SetViewport(cmd.Viewport); err != nil {
			return fmt.Errorf("recording: command %d: %w", cmd.Seq, err)
		}
		ren.SetBackground(cmd.Background)
		ren.SetErase(cmd.Erase)

		cam := camdev.NewCamera(camdev.WithState(cmd.Camera))
		if err := dev.Render(cam, ren); err != nil {
			return fmt.Errorf("recording: playback command %d on %s: %w", cmd.Seq, dev.Name(), err)
		}
	}

	d.log().Debug("recording: playback", "device", dev.Name(), "commands", len(cmds))
	return nil
}

// Close discards the recording and closes the wrapped device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = nil
	d.seq = 0
	if c, ok := d.inner.(camdev.Closer); ok {
		c.Close()
	}
}
