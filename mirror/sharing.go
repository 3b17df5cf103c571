// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mirror

import (
	"errors"
	"slices"
	"strings"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/surface"
)

// ErrSharingUnsupported is returned when a buffer cannot be shared.
var ErrSharingUnsupported = errors.New("mirror: buffer sharing unsupported")

// Output is a display output that can scan out shared slave surfaces.
type Output struct {
	ID OutputID

	// SysPath is the sysfs path of the device driving the output. Outputs
	// behind USB transports do not get reliable vblank events.
	SysPath string

	// Front and Back are the shared surfaces flipped between, nil unless
	// flipping is enabled.
	Front, Back *surface.Surface
}

// Flipping reports whether shared flipping is active on the output.
func (o *Output) Flipping() bool {
	return o.Front != nil && o.Back != nil
}

// Importer attaches shared buffers to slave surfaces through the kernel.
type Importer interface {
	// ImportSlave makes the buffer fd refers to the scanout storage of s
	// and sets s.FBID. An fd of -1 detaches the current storage.
	ImportSlave(s *surface.Surface, fd, pitch, size int) error
}

// Presenter is the output side of shared flipping.
type Presenter interface {
	EnableSharedFlipping(out *Output, front, back *surface.Surface) bool
	DisableSharedFlipping(out *Output)
	PresentOnVBlank(slave *surface.Surface, out *Output) bool
}

type nopImporter struct{}

func (nopImporter) ImportSlave(*surface.Surface, int, int, int) error {
	return ErrSharingUnsupported
}

type nopPresenter struct{}

func (nopPresenter) EnableSharedFlipping(*Output, *surface.Surface, *surface.Surface) bool {
	return false
}
func (nopPresenter) DisableSharedFlipping(*Output)                  {}
func (nopPresenter) PresentOnVBlank(*surface.Surface, *Output) bool { return false }

// slaveState is kept for every slave with imported storage.
type slaveState struct {
	rec *damage.Recorder
}

// AddOutput makes out known to the coordinator.
func (c *Coordinator) AddOutput(out *Output) {
	if c.Output(out.ID) == nil {
		c.outputs = append(c.outputs, out)
	}
}

// Output returns the output with the given id, or nil.
func (c *Coordinator) Output(id OutputID) *Output {
	for _, o := range c.outputs {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// EnableFlipping starts flipping between front and back on out.
// It is refused when the display cannot page flip, in reverse offload mode,
// and for USB transports (including EVDI), whose vblank events misbehave.
func (c *Coordinator) EnableFlipping(id OutputID, front, back *surface.Surface) bool {
	out := c.Output(id)
	switch {
	case out == nil:
		return false
	case !c.opts.pageFlip:
		return false
	case c.opts.reverseOffload:
		return false
	case strings.Contains(out.SysPath, "usb"), strings.Contains(out.SysPath, "evdi"):
		return false
	}

	if !c.opts.presenter.EnableSharedFlipping(out, front, back) {
		return false
	}
	out.Front, out.Back = front, back
	c.binding(front).Output = id
	c.binding(back).Output = id
	return true
}

// DisableFlipping stops shared flipping on out. Unknown outputs are ignored.
func (c *Coordinator) DisableFlipping(id OutputID) {
	out := c.Output(id)
	if out == nil {
		return
	}
	c.opts.presenter.DisableSharedFlipping(out)
	out.Front, out.Back = nil, nil
}

// SharedPixmapNotifyDamage handles the damage notification for a slave on
// this screen. It fires only once per WaitForDamage and schedules a vblank
// present on every output flipping shared surfaces.
func (c *Coordinator) SharedPixmapNotifyDamage(slave *surface.Surface) bool {
	b := c.bindings[slave]
	if b == nil || !b.WaitForDamage {
		return false
	}
	b.WaitForDamage = false

	presented := false
	for _, out := range c.outputs {
		if !out.Flipping() {
			continue
		}
		if c.opts.presenter.PresentOnVBlank(slave, out) {
			presented = true
		}
	}
	return presented
}

// SharePixmapBacking exports the storage of s for another device.
func (c *Coordinator) SharePixmapBacking(s *surface.Surface) (int, error) {
	if !c.backend().Shareable() {
		return -1, ErrSharingUnsupported
	}
	return c.backend().ShareableFD(s)
}

// SetSharedBacking attaches the buffer fd refers to as the storage of the
// slave s. An fd of -1 detaches it. An imported slave takes the slave role
// until it is detached.
//
// Normally the buffer is imported through the kernel and gets its own
// framebuffer. In reverse offload mode it is imported by the acceleration
// backend instead.
func (c *Coordinator) SetSharedBacking(s *surface.Surface, fd int) error {
	if c.opts.reverseOffload {
		return c.backend().BackFromFD(s, fd)
	}

	if fd == -1 {
		err := c.opts.importer.ImportSlave(s, -1, 0, 0)
		c.dropSlave(s)
		return err
	}

	if err := c.opts.importer.ImportSlave(s, fd, s.Stride, s.Stride*s.Height); err != nil {
		return err
	}
	if c.slaves[s] == nil {
		st := &slaveState{rec: damage.NewRecorder("slave")}
		s.Register(st.rec)
		c.slaves[s] = st
	}
	s.Role = surface.RoleSlave
	return nil
}

// SlaveRecorder returns the dispatch recorder of an imported slave, or nil.
func (c *Coordinator) SlaveRecorder(s *surface.Surface) *damage.Recorder {
	if st := c.slaves[s]; st != nil {
		return st.rec
	}
	return nil
}

// DispatchSlaveDirty sends the damage of every output's shared front and
// back surfaces to the kernel. Errors are logged; the slaves keep no
// enabled state of their own.
func (c *Coordinator) DispatchSlaveDirty(k dispatch.Kernel) {
	for _, out := range c.outputs {
		for _, s := range []*surface.Surface{out.Front, out.Back} {
			if s == nil {
				continue
			}
			st := c.slaves[s]
			if st == nil {
				continue
			}
			if err := dispatch.Dispatch(k, s.FBID, st.rec); err != nil {
				slogger().Debug("mirror: slave dirty dispatch", "output", out.ID, "fb", s.FBID, "err", err)
			}
		}
	}
}

func (c *Coordinator) dropSlave(s *surface.Surface) {
	st := c.slaves[s]
	if st == nil {
		return
	}
	s.Unregister(st.rec)
	st.rec.Destroy()
	delete(c.slaves, s)
	if s.Master == nil && s.Role == surface.RoleSlave {
		s.Role = surface.RoleMaster
	}
}

// Outputs returns the known outputs.
func (c *Coordinator) Outputs() []*Output {
	return slices.Clone(c.outputs)
}
