// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scanout is the damage-propagation and framebuffer-synchronization
// core of a KMS display driver.
//
// # Overview
//
// The render path draws into a surface and reports which rectangles it
// changed. Once per event-loop iteration, before the loop blocks, the
// [Screen] pushes that damage through the pipeline:
//
//  1. Block hooks run, in registration order.
//  2. With a shadow layer, changed tiles of the shadow are copied (or
//     converted to 24 bpp) into the front buffer.
//  3. The front buffer's damage is sent to the kernel as dirty rectangles.
//  4. Tracked slave outputs are refreshed from their source surface.
//
// # Quick Start
//
//	card, _ := drm.Open("")
//	scr := scanout.NewScreen(scanout.WithKernel(card))
//	if err := scr.CreateResources(root); err != nil {
//		log.Fatal(err)
//	}
//	for {
//		// draw into scr.DrawSurface(), then:
//		scr.DamageBox(region.BoxXYWH(10, 10, 100, 100))
//		timeout := 16 * time.Millisecond
//		scr.BlockHandler(&timeout)
//	}
//
// # Sub-packages
//
//   - region: rectangle set algebra
//   - damage: per-consumer damage recorders
//   - surface: pixel buffers and damage fan-out
//   - shadow: shadow buffers, tile diff and front buffer conversion
//   - dispatch: dirty rectangle submission and its disable policy
//   - accel: acceleration method and GPU completion barrier
//   - mirror: slave output tracking, shared buffers and flipping
//   - config: driver option file
//
// # Logging
//
// Nothing is logged by default. See [SetLogger].
package scanout
