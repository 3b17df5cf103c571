// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/surface"
)

// Target owns kernel dirty-update dispatch for one surface.
//
// NewTarget registers a recorder on the surface; Tick sends whatever it has
// gathered to the surface's framebuffer. Once the kernel shows it does not
// support dirty updates the target disables itself and never calls the
// kernel again.
type Target struct {
	kernel  Kernel
	surf    *surface.Surface
	rec     *damage.Recorder
	enabled bool
}

// NewTarget creates an enabled target for s.
func NewTarget(k Kernel, s *surface.Surface) *Target {
	t := &Target{
		kernel:  k,
		surf:    s,
		rec:     damage.NewRecorder("dispatch"),
		enabled: true,
	}
	s.Register(t.rec)
	return t
}

// Enabled reports whether the target still dispatches.
func (t *Target) Enabled() bool {
	return t.enabled
}

// Recorder returns the target's recorder.
func (t *Target) Recorder() *damage.Recorder {
	return t.rec
}

// Surface returns the surface the target dispatches for.
func (t *Target) Surface() *surface.Surface {
	return t.surf
}

// Tick dispatches the accumulated damage.
//
// EINVAL or ENOSYS surviving the per-rectangle fallback disables the target
// and Tick returns nil. Any other error is returned unchanged and the target
// stays enabled. A disabled target does nothing.
func (t *Target) Tick() error {
	if !t.enabled {
		return nil
	}
	err := Dispatch(t.kernel, t.surf.FBID, t.rec)
	if Permanent(err) {
		slogger().Debug("dispatch: kernel refused dirty update", "fb", t.surf.FBID, "err", err)
		t.Disable()
		return nil
	}
	return err
}

// Disable stops dispatch for good: the recorder is unregistered from the
// surface and destroyed. Disable is idempotent.
func (t *Target) Disable() {
	if !t.enabled {
		return
	}
	t.enabled = false
	t.surf.Unregister(t.rec)
	t.rec.Destroy()
	slogger().Info("Disabling kernel dirty updates, not required", "fb", t.surf.FBID)
}

// Close releases the target without logging. Used when resources are torn
// down.
func (t *Target) Close() {
	t.enabled = false
	t.surf.Unregister(t.rec)
	t.rec.Destroy()
}
