// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mirror keeps slave surfaces in sync with the surface they mirror.
//
// A slave is a buffer owned by another output or another device (PRIME
// output offload, shared-pixmap flipping). The Coordinator walks the tracked
// slaves once per tick and copies the damaged part of each source into its
// slaves, honouring per-slave deferred update and notify-on-damage flags.
//
// All state hangs off the Coordinator; there are no package globals besides
// the logger. Like the rest of the module it is single-threaded.
package mirror

import (
	"errors"
	"time"

	"github.com/gogpu/scanout/accel"
	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/surface"
)

// OutputID identifies a display output (a CRTC).
type OutputID int

// Notifier receives the one-shot "shared surface has new damage" event.
// It is implemented by the screen owning the slave.
type Notifier interface {
	SharedPixmapNotifyDamage(slave *surface.Surface) bool
}

// Binding is the per-slave state.
type Binding struct {
	// Src is the surface the slave mirrors, nil when not tracking.
	Src *surface.Surface

	// Entry is the tracking relation, nil when not tracking.
	Entry *Entry

	// DeferUpdate suppresses per-tick propagation; the owner pulls updates
	// with Present.
	DeferUpdate bool

	// NotifyOnDamage makes the next damaged tick raise a notification
	// instead of propagating. Cleared when it fires.
	NotifyOnDamage bool

	// WaitForDamage arms SharedPixmapNotifyDamage. Cleared when it fires.
	WaitForDamage bool

	// Output is the output the slave is flipped on. The binding does not
	// own the output.
	Output OutputID

	// Notifier gets NotifyOnDamage events. Nil means the coordinator itself.
	Notifier Notifier
}

// Coordinator propagates damage from sources to slaves.
type Coordinator struct {
	opts     options
	tracker  Tracker
	bindings map[*surface.Surface]*Binding
	outputs  []*Output
	slaves   map[*surface.Surface]*slaveState
}

// NewCoordinator creates a coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Coordinator{
		opts:     o,
		tracker:  o.tracker,
		bindings: make(map[*surface.Surface]*Binding),
		slaves:   make(map[*surface.Surface]*slaveState),
	}
}

// Tracker returns the tracker in use.
func (c *Coordinator) Tracker() Tracker {
	return c.tracker
}

// Binding returns the binding for slave, or nil.
func (c *Coordinator) Binding(slave *surface.Surface) *Binding {
	return c.bindings[slave]
}

func (c *Coordinator) binding(slave *surface.Surface) *Binding {
	b := c.bindings[slave]
	if b == nil {
		b = &Binding{}
		c.bindings[slave] = b
	}
	return b
}

// StartTracking starts mirroring src into both slaves with the same
// geometry. Either both slaves end up tracking or neither does: if the
// second start fails the first is stopped again.
//
// On success both slaves take the slave role with src as their master and
// are put in deferred mode; their updates are pulled with Present.
func (c *Coordinator) StartTracking(src, slave1, slave2 *surface.Surface, g Geometry) error {
	if err := c.tracker.StartDirtyTracking(src, slave1, g); err != nil {
		return err
	}
	if err := c.tracker.StartDirtyTracking(src, slave2, g); err != nil {
		if serr := c.tracker.StopDirtyTracking(src, slave1); serr != nil {
			slogger().Warn("mirror: rollback of first slave failed", "err", serr)
		}
		return err
	}

	for _, s := range []*surface.Surface{slave1, slave2} {
		b := c.binding(s)
		b.Src = src
		b.Entry = c.tracker.Lookup(s)
		b.DeferUpdate = true
		s.Role = surface.RoleSlave
		s.Master = src
	}
	return nil
}

// StopTracking stops mirroring src into both slaves.
//
// Both stops are attempted. The bindings are cleared only when both
// succeed; after a partial failure they keep pointing at src so the caller
// can retry. Stop is not atomic: a slave whose stop succeeded stays stopped.
func (c *Coordinator) StopTracking(src, slave1, slave2 *surface.Surface) error {
	err1 := c.tracker.StopDirtyTracking(src, slave1)
	err2 := c.tracker.StopDirtyTracking(src, slave2)
	if err := errors.Join(err1, err2); err != nil {
		return err
	}

	for _, s := range []*surface.Surface{slave1, slave2} {
		if b := c.bindings[s]; b != nil {
			b.Src = nil
			b.Entry = nil
			b.DeferUpdate = false
		}
		c.detachMaster(s)
	}
	return nil
}

// Update runs one propagation pass over every tracked slave with damage.
//
// On a master-role screen a slave flagged NotifyOnDamage raises its
// notification, loses the flag and is left for a later tick; a slave
// flagged DeferUpdate is skipped. Every other damaged slave is redisplayed
// and its damage consumed. timeout may be nil.
func (c *Coordinator) Update(timeout *time.Duration) {
	for _, e := range c.tracker.Entries() {
		if !e.Damage.Peek() {
			continue
		}
		if !c.opts.gpuScreen {
			if b := c.bindings[e.Slave]; b != nil {
				if b.NotifyOnDamage {
					b.NotifyOnDamage = false
					c.notifier(b).SharedPixmapNotifyDamage(e.Slave)
					continue
				}
				if b.DeferUpdate {
					continue
				}
			}
		}
		c.redisplay(e, timeout)
		e.Damage.Empty()
	}
}

// Present pulls one update into a deferred slave. It reports whether there
// was anything to propagate. Unknown slaves are ignored.
func (c *Coordinator) Present(slave *surface.Surface) bool {
	b := c.bindings[slave]
	if b == nil || b.Entry == nil || !b.Entry.Damage.Peek() {
		return false
	}
	c.redisplay(b.Entry, nil)
	b.Entry.Damage.Empty()
	return true
}

// RequestNotifyOnDamage arms the one-shot damage notification for slave.
func (c *Coordinator) RequestNotifyOnDamage(slave *surface.Surface) {
	c.binding(slave).NotifyOnDamage = true
}

// WaitForDamage arms SharedPixmapNotifyDamage for slave.
func (c *Coordinator) WaitForDamage(slave *surface.Surface) {
	c.binding(slave).WaitForDamage = true
}

// SetNotifier routes slave's damage notifications to n.
func (c *Coordinator) SetNotifier(slave *surface.Surface, n Notifier) {
	c.binding(slave).Notifier = n
}

func (c *Coordinator) notifier(b *Binding) Notifier {
	if b.Notifier != nil {
		return b.Notifier
	}
	return c
}

// redisplay copies the damaged part of e.Src into e.Slave.
//
// The whole slave is queued as pending damage, the pixels are copied, and
// the slave's recorders see the damage only after any cross-device barrier
// has completed, so a consumer never reads a half-rendered frame.
func (c *Coordinator) redisplay(e *Entry, timeout *time.Duration) {
	slave := e.Slave
	slave.AppendDamageBox(region.BoxFromRect(slave.Bounds()))

	if e.Src.CPP() == slave.CPP() {
		e.Geometry.copyArea(e.Src, slave, e.Damage.Region())
	} else {
		slogger().Debug("mirror: pixel size mismatch, copy skipped",
			"src", e.Src.BitsPerPixel, "slave", slave.BitsPerPixel)
	}

	if !c.opts.gpuScreen && slave.Device != e.Src.Device {
		if c.backend().GPU() {
			if err := c.backend().Finish(); err != nil {
				slogger().Warn("mirror: cross-device barrier failed", "err", err)
			}
		}
		if timeout != nil {
			*timeout = 0
		}
	}

	slave.ProcessPending()
}

// Forget drops all state about s: its binding, its tracking as a slave and
// its slave dispatch recorder. Used when s is destroyed.
func (c *Coordinator) Forget(s *surface.Surface) {
	if e := c.tracker.Lookup(s); e != nil {
		if err := c.tracker.StopDirtyTracking(e.Src, s); err != nil {
			slogger().Debug("mirror: stop on forget", "err", err)
		}
	}
	delete(c.bindings, s)
	c.detachMaster(s)
	c.dropSlave(s)
}

// Close stops every tracking relation and drops all bindings.
func (c *Coordinator) Close() {
	for _, e := range c.tracker.Entries() {
		if err := c.tracker.StopDirtyTracking(e.Src, e.Slave); err != nil {
			slogger().Debug("mirror: stop on close", "err", err)
		}
		c.detachMaster(e.Slave)
	}
	for s := range c.slaves {
		c.dropSlave(s)
	}
	clear(c.bindings)
	c.outputs = nil
}

// detachMaster clears the master link of s. s keeps the slave role while
// it still has imported storage.
func (c *Coordinator) detachMaster(s *surface.Surface) {
	s.Master = nil
	if c.slaves[s] == nil && s.Role == surface.RoleSlave {
		s.Role = surface.RoleMaster
	}
}

// backend returns the acceleration backend, never nil.
func (c *Coordinator) backend() *accel.Backend {
	return c.opts.backend
}
