// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scanout

import (
	"github.com/gogpu/scanout/accel"
	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/mirror"
	"github.com/gogpu/scanout/shadow"
)

// ScreenOption configures a Screen during creation.
// Use functional options to customize Screen behavior.
//
// Example:
//
//	// Probe everything from the kernel
//	scr := scanout.NewScreen(scanout.WithKernel(card))
//
//	// Force the shadow layer with double buffering
//	scr := scanout.NewScreen(
//		scanout.WithKernel(card),
//		scanout.WithShadow(true),
//		scanout.WithDoubleShadow(true),
//	)
type ScreenOption func(*screenOptions)

// screenOptions holds optional configuration for Screen creation.
type screenOptions struct {
	kernel     dispatch.Kernel
	driverName string

	// nil means use the probed default.
	shadowFB     *bool
	doubleShadow *bool
	tileSize     int

	method    accel.Method
	accelOpts []accel.Option

	gpuScreen      bool
	reverseOffload bool
	pageFlip       bool

	importer  mirror.Importer
	presenter mirror.Presenter
}

// defaultOptions returns the default screen options.
func defaultOptions() screenOptions {
	return screenOptions{
		tileSize: shadow.DefaultTileSize,
		method:   accel.None,
	}
}

// WithKernel sets the device the screen sends dirty rectangles to.
// If k also implements shadow.CapQuerier, mirror.Importer or
// DriverName() (string, error), those are used for the shadow policy,
// slave import and driver detection.
func WithKernel(k dispatch.Kernel) ScreenOption {
	return func(o *screenOptions) {
		o.kernel = k
	}
}

// WithDriverName overrides the kernel driver name used to pick the
// double-shadow default.
func WithDriverName(name string) ScreenOption {
	return func(o *screenOptions) {
		o.driverName = name
	}
}

// WithShadow forces the shadow layer on or off, overriding the kernel's
// preference. A 24 bpp front buffer needs the shadow regardless.
func WithShadow(on bool) ScreenOption {
	return func(o *screenOptions) {
		o.shadowFB = &on
	}
}

// WithDoubleShadow forces double-buffered shadow updates on or off.
func WithDoubleShadow(on bool) ScreenOption {
	return func(o *screenOptions) {
		o.doubleShadow = &on
	}
}

// WithTileSize sets the edge of the square tiles the shadow diff compares.
// Values below 1 keep the default of 16.
func WithTileSize(n int) ScreenOption {
	return func(o *screenOptions) {
		if n > 0 {
			o.tileSize = n
		}
	}
}

// WithAccel selects the acceleration method. Options are passed to
// accel.Select, typically accel.WithDeviceProvider for the GPU method.
func WithAccel(m accel.Method, opts ...accel.Option) ScreenOption {
	return func(o *screenOptions) {
		o.method = m
		o.accelOpts = append(o.accelOpts, opts...)
	}
}

// WithGPUScreen marks the screen as a secondary GPU screen whose output is
// displayed by another device.
func WithGPUScreen(on bool) ScreenOption {
	return func(o *screenOptions) {
		o.gpuScreen = on
	}
}

// WithReverseOffload enables reverse PRIME: rendering happens on another
// device and this screen only scans out.
func WithReverseOffload(on bool) ScreenOption {
	return func(o *screenOptions) {
		o.reverseOffload = on
	}
}

// WithPageFlip tells whether the display can page flip, a precondition for
// shared flipping.
func WithPageFlip(ok bool) ScreenOption {
	return func(o *screenOptions) {
		o.pageFlip = ok
	}
}

// WithImporter sets how shared buffers are attached to slaves when the
// kernel does not provide it.
func WithImporter(i mirror.Importer) ScreenOption {
	return func(o *screenOptions) {
		o.importer = i
	}
}

// WithPresenter sets the output side of shared flipping.
func WithPresenter(p mirror.Presenter) ScreenOption {
	return func(o *screenOptions) {
		o.presenter = p
	}
}
