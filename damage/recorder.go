// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package damage accumulates the dirty area of a surface between the moment
// pixels change and the moment something consumes the change.
//
// A Recorder is a sink: the render path reports regions into it, and a
// consumer (the dispatch engine, the mirror coordinator) drains it once the
// change has been propagated. Reporting is idempotent because accumulation
// is a region union.
//
// Recorders are NOT safe for concurrent use. Producers and consumers run on
// the same event loop.
package damage

import (
	"errors"

	"github.com/gogpu/scanout/region"
)

// ErrDestroyed is returned when reporting into a destroyed recorder.
var ErrDestroyed = errors.New("damage: recorder destroyed")

// Recorder accumulates damage for one surface.
type Recorder struct {
	name      string
	acc       region.Region
	epoch     uint64
	destroyed bool
}

// NewRecorder creates an empty recorder. The name only appears in
// diagnostics.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

// Name returns the diagnostic name given at creation.
func (r *Recorder) Name() string {
	return r.name
}

// Report merges rgn into the accumulated damage.
// Reporting the same area twice has the same effect as reporting it once.
func (r *Recorder) Report(rgn *region.Region) error {
	if r.destroyed {
		return ErrDestroyed
	}
	r.acc.Union(rgn)
	return nil
}

// ReportBox merges a single box into the accumulated damage.
func (r *Recorder) ReportBox(b region.Box) error {
	if r.destroyed {
		return ErrDestroyed
	}
	r.acc.UnionBox(b)
	return nil
}

// Peek reports whether there is damage waiting, without consuming it.
func (r *Recorder) Peek() bool {
	return r.acc.NotEmpty()
}

// Region returns the accumulated damage. The returned region is owned by
// the recorder: callers may narrow it in place (the shadow diff engine
// does) but must not keep it past the current tick.
func (r *Recorder) Region() *region.Region {
	return &r.acc
}

// Drain returns the accumulated damage and leaves the recorder empty.
func (r *Recorder) Drain() *region.Region {
	out := r.acc.Clone()
	r.Empty()
	return out
}

// Empty discards the accumulated damage.
func (r *Recorder) Empty() {
	if r.acc.NotEmpty() {
		r.epoch++
	}
	r.acc.Clear()
}

// Epoch counts how many times non-empty damage has been consumed.
func (r *Recorder) Epoch() uint64 {
	return r.epoch
}

// Destroy discards the accumulated damage and makes the recorder reject
// further reports. Destroy is idempotent.
func (r *Recorder) Destroy() {
	r.acc.Clear()
	r.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (r *Recorder) Destroyed() bool {
	return r.destroyed
}
