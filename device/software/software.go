// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides the CPU camera device.
//
// The software device draws into CPU-backed targets (render.PixmapTarget
// or any target exposing Pixels). For every frame it erases the
// renderer's viewport to the background color, loads the camera's view
// and projection matrices into the renderer's draw state, and optionally
// stamps its name into the viewport corner.
//
// Import the package to register the "software" device:
//
//	import _ "github.com/gogpu/camdev/device/software"
package software

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/camdev"
	"github.com/gogpu/camdev/render"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrTargetNotCPU is returned when the renderer's target has no CPU pixels.
var ErrTargetNotCPU = errors.New("software: target does not support CPU rendering")

// Name is the registry name of the software device.
const Name = camdev.DeviceSoftware

func init() {
	camdev.Register(Name, func() camdev.Device {
		return New(Options{})
	})
}

// Options configures a software device.
type Options struct {
	// Annotate stamps the device name into the top-left corner of the
	// viewport after erasing it.
	Annotate bool

	// AnnotateColor is the label color. Defaults to white.
	AnnotateColor color.Color

	// ReportAs is the device name recorded in the renderer's draw state.
	// Defaults to "software"; devices that fall back to the CPU path set
	// it to their own name.
	ReportAs string
}

// Device is the CPU camera device.
type Device struct {
	opts   Options
	logger *slog.Logger
}

// Ensure Device implements the camdev interfaces.
var (
	_ camdev.Device        = (*Device)(nil)
	_ camdev.CapableDevice = (*Device)(nil)
)

// New creates a software device.
func New(opts Options) *Device {
	if opts.AnnotateColor == nil {
		opts.AnnotateColor = color.White
	}
	if opts.ReportAs == "" {
		opts.ReportAs = Name
	}
	return &Device{opts: opts}
}

// Name returns "software".
func (d *Device) Name() string {
	return Name
}

// SetLogger overrides camdev.Logger for this device. Nil restores it.
func (d *Device) SetLogger(l *slog.Logger) {
	d.logger = l
}

func (d *Device) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return camdev.Logger()
}

// Capabilities reports a CPU-only device.
func (d *Device) Capabilities() camdev.Capabilities {
	return camdev.Capabilities{
		Hardware:          false,
		RequiresCPUTarget: true,
		SupportsGPUTarget: false,
	}
}

// Render erases the viewport of ren and loads cam's matrices into the
// renderer's draw state. Pixels outside the viewport are never touched.
func (d *Device) Render(cam *camdev.Camera, ren *camdev.Renderer) error {
	if err := camdev.ValidateCall(cam, ren); err != nil {
		return err
	}
	if err := cam.Validate(); err != nil {
		return err
	}

	img, err := targetImage(ren.Target())
	if err != nil {
		return err
	}

	state := ren.NewDrawState(d.opts.ReportAs, cam)
	vp := state.Viewport.Add(img.Bounds().Min)
	if !vp.Empty() {
		if ren.Erase() {
			draw.Draw(img, vp, image.NewUniform(ren.Background()), image.Point{}, draw.Src)
			state.Erased = true
		}
		if d.opts.Annotate {
			d.annotate(img, vp)
		}
	}
	ren.SetDrawState(state)

	d.log().Debug("software: frame", "device", d.opts.ReportAs,
		"viewport", state.Viewport, "aspect", state.Aspect, "erased", state.Erased)
	return nil
}

// annotate draws the device name inside vp, clipped to it.
func (d *Device) annotate(img *image.RGBA, vp image.Rectangle) {
	face := basicfont.Face7x13
	clip, ok := img.SubImage(vp).(*image.RGBA)
	if !ok {
		return
	}
	drawer := font.Drawer{
		Dst:  clip,
		Src:  image.NewUniform(d.opts.AnnotateColor),
		Face: face,
		Dot:  fixed.P(vp.Min.X+2, vp.Min.Y+face.Ascent+2),
	}
	drawer.DrawString(d.opts.ReportAs)
}

// targetImage returns the *image.RGBA behind a CPU target.
func targetImage(t render.RenderTarget) (*image.RGBA, error) {
	if pt, ok := t.(*render.PixmapTarget); ok {
		return pt.Image(), nil
	}
	pix := t.Pixels()
	if pix == nil {
		return nil, ErrTargetNotCPU
	}
	w, h := t.Width(), t.Height()
	if t.Stride() < w*4 || len(pix) < t.Stride()*(h-1)+w*4 {
		return nil, ErrTargetNotCPU
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: t.Stride(),
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
