// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the surfaces camera devices draw into and the
// GPU device handle a host application lends them.
//
// # Key Principle
//
// camdev RECEIVES a GPU device from the host application, it does NOT
// create its own. A renderer carries the host's DeviceHandle and a
// RenderTarget; the camera's device chooses how to draw into it.
//
// # RenderTarget Implementations
//
//   - PixmapTarget: CPU-backed *image.RGBA target
//   - TextureTarget: offscreen GPU texture view
//   - SurfaceTarget: window surface view from the host
//
// # Thread Safety
//
// Targets are NOT thread-safe. A target is drawn by one device at a time.
package render
