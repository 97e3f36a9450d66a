// Package camdev provides the camera render device abstraction: the
// backend-specific part of drawing a scene through a camera.
//
// # Overview
//
// A Camera holds viewing parameters (position, focal point, view-up,
// view angle, clipping range and owner-supplied view and projection
// matrices). A Renderer holds the render target, the normalized viewport
// within it and the background the viewport is erased to. A Device sets
// up one frame for a camera in a renderer: it erases the viewport, loads
// the camera's matrices, and leaves a DrawState in the renderer for the
// scene pass.
//
// Devices are interchangeable. The camera never knows which device it
// drives; it only calls Device.Render.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/camdev"
//	    "github.com/gogpu/camdev/render"
//	    _ "github.com/gogpu/camdev/device/software"
//	)
//
//	target := render.NewPixmapTarget(640, 480)
//	ren := camdev.NewRenderer(target, camdev.WithBackground(color.Black))
//
//	cam := camdev.NewCamera(camdev.WithPosition(0, 0, 5))
//	defer cam.Close()
//
//	if err := cam.Render(ren); err != nil {
//	    log.Fatal(err)
//	}
//
// # Devices
//
// Device packages register themselves on import, like database/sql
// drivers:
//
//   - device/software: CPU device for render.PixmapTarget and other
//     targets with direct pixel access
//   - device/gpu: WebGPU device for texture and surface targets, with a
//     software fallback for CPU targets
//   - device/recording: captures frames as commands for later playback
//
// A camera uses the device it was given (WithDevice), the registered
// device it was pointed at (WithDeviceName), or DefaultDevice, which
// prefers "gpu" over "software".
//
// # Logging
//
// camdev is silent by default. Call SetLogger with a *slog.Logger to
// see device selection and per-frame diagnostics.
package camdev
