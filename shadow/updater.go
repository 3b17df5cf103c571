// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"errors"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/surface"
)

// Updater pushes shadow damage into the front buffer once per tick.
//
// The render path reports damage on Bufs.Cur. Update narrows it with the
// diff engine when a previous frame is kept, runs the conversion pass and
// re-reports the result on Front, where the dispatch recorder picks it up.
type Updater struct {
	Engine Engine
	Bufs   *Buffers
	Front  *surface.Surface

	pass Pass
	rec  *damage.Recorder
}

// NewUpdater wires an updater between bufs.Cur and front. bufs must be
// allocated. pack24 selects the 32 to 24 bpp conversion instead of a
// byte-identical copy.
func NewUpdater(bufs *Buffers, front *surface.Surface, pack24 bool) *Updater {
	u := &Updater{
		Bufs:  bufs,
		Front: front,
		pass:  CopyPacked(bufs.Cur.CPP()),
		rec:   damage.NewRecorder("shadow"),
	}
	if pack24 {
		u.pass = Convert32to24
	}
	bufs.Cur.Register(u.rec)
	return u
}

// Recorder returns the recorder registered on the shadow surface.
func (u *Updater) Recorder() *damage.Recorder {
	return u.rec
}

// Update runs one update pass. It returns true when anything reached the
// front buffer.
func (u *Updater) Update() bool {
	if !u.rec.Peek() {
		return false
	}
	cur := u.Bufs.Cur
	dmg := u.rec.Region()

	if u.Bufs.Double() {
		_, err := u.Engine.Diff(u.Bufs.Prev, cur.Pix, cur.Stride, cur.CPP(), dmg)
		if err != nil {
			// Fall through with the damage as reported; the pass below
			// still pushes every reported pixel.
			if errors.Is(err, ErrAlloc) {
				slogger().Debug("shadow: diff skipped", "err", err)
			} else {
				slogger().Warn("shadow: diff skipped", "err", err)
			}
		}
	}

	dmg.IntersectBox(region.BoxFromRect(u.Front.Bounds()))
	if dmg.IsEmpty() {
		u.rec.Empty()
		return false
	}

	u.pass(FrontWindow(u.Front), cur.Pix, cur.Stride, dmg)
	u.Front.Damage(dmg)
	u.rec.Empty()
	return true
}

// Close unregisters the updater's recorder from the shadow surface.
func (u *Updater) Close() {
	if u.Bufs.Cur != nil {
		u.Bufs.Cur.Unregister(u.rec)
	}
	u.rec.Destroy()
}
