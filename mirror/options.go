// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mirror

import (
	"github.com/gogpu/scanout/accel"
)

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	tracker        Tracker
	backend        *accel.Backend
	importer       Importer
	presenter      Presenter
	gpuScreen      bool
	pageFlip       bool
	reverseOffload bool
}

func defaultOptions() options {
	return options{
		tracker:   &DirtyList{},
		backend:   &accel.Backend{},
		importer:  nopImporter{},
		presenter: nopPresenter{},
	}
}

// WithTracker replaces the default DirtyList.
func WithTracker(t Tracker) Option {
	return func(o *options) {
		if t != nil {
			o.tracker = t
		}
	}
}

// WithBackend sets the acceleration backend used for the completion
// barrier and for buffer sharing in reverse offload mode.
func WithBackend(b *accel.Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithImporter sets how shared buffers are attached to slaves.
func WithImporter(i Importer) Option {
	return func(o *options) {
		if i != nil {
			o.importer = i
		}
	}
}

// WithPresenter sets the output side of shared flipping.
func WithPresenter(p Presenter) Option {
	return func(o *options) {
		if p != nil {
			o.presenter = p
		}
	}
}

// WithGPUScreen marks the screen as a rendering slave of another device.
// Such a screen never notifies, defers or waits on a barrier.
func WithGPUScreen(gpu bool) Option {
	return func(o *options) {
		o.gpuScreen = gpu
	}
}

// WithPageFlip records whether the display can page flip.
func WithPageFlip(ok bool) Option {
	return func(o *options) {
		o.pageFlip = ok
	}
}

// WithReverseOffload selects reverse offload: rendering on this device,
// results imported through the acceleration backend.
func WithReverseOffload(on bool) Option {
	return func(o *options) {
		o.reverseOffload = on
	}
}
