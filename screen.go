// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scanout

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout/accel"
	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/mirror"
	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/shadow"
	"github.com/gogpu/scanout/surface"
)

var (
	// ErrRootMapping is returned when the root surface has no usable pixels.
	// Screen setup cannot continue without them.
	ErrRootMapping = errors.New("scanout: cannot map root surface")

	// ErrResourcesCreated is returned by a second CreateResources call.
	ErrResourcesCreated = errors.New("scanout: resources already created")
)

// BlockHook runs at the start of every BlockHandler call.
type BlockHook func(timeout *time.Duration)

// driverNamer is implemented by kernels that can name their driver.
type driverNamer interface {
	DriverName() (string, error)
}

// Screen ties the damage pipeline of one display together: the root
// surface, the optional shadow layer, dirty-rectangle dispatch for the root
// framebuffer and the mirror coordinator for slave outputs.
//
// A Screen is driven from a single goroutine; none of its methods are safe
// for concurrent use.
type Screen struct {
	opts screenOptions

	root    *surface.Surface
	backend *accel.Backend
	shadow  shadow.Decision
	bufs    *shadow.Buffers
	updater *shadow.Updater
	target  *dispatch.Target
	coord   *mirror.Coordinator
	hooks   []BlockHook
}

// NewScreen creates a screen. Nothing is allocated until CreateResources.
func NewScreen(opts ...ScreenOption) *Screen {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Screen{opts: o}
}

// CreateResources sets up damage tracking for root, the surface scanned out
// by the display. It decides on the shadow layer, selects the acceleration
// backend and probes whether the kernel wants dirty rectangles at all.
func (s *Screen) CreateResources(root *surface.Surface) error {
	if s.root != nil {
		return ErrResourcesCreated
	}
	if root == nil || root.Stride <= 0 || len(root.Pix) < root.Len() {
		return ErrRootMapping
	}
	root.Role = surface.RoleMaster

	force24 := root.BitsPerPixel == 24
	s.backend = s.selectBackend(force24)

	caps, _ := s.opts.kernel.(shadow.CapQuerier)
	s.shadow = shadow.TryEnable(caps, force24, s.opts.shadowFB, s.driverName(), s.opts.doubleShadow)
	if s.shadow.Enabled {
		if err := s.createShadow(root, force24); err != nil {
			return err
		}
	}

	if s.opts.kernel != nil && dispatch.Probe(s.opts.kernel, root.FBID) {
		s.target = dispatch.NewTarget(s.opts.kernel, root)
	}

	importer := s.opts.importer
	if importer == nil {
		importer, _ = s.opts.kernel.(mirror.Importer)
	}
	s.coord = mirror.NewCoordinator(
		mirror.WithBackend(s.backend),
		mirror.WithImporter(importer),
		mirror.WithPresenter(s.opts.presenter),
		mirror.WithGPUScreen(s.opts.gpuScreen),
		mirror.WithPageFlip(s.opts.pageFlip),
		mirror.WithReverseOffload(s.opts.reverseOffload),
	)

	s.root = root
	Logger().Info("Damage tracking initialized",
		"root", root.String(), "shadow", s.shadow.Enabled, "double", s.shadow.Double,
		"dirty", s.target != nil, "accel", s.backend.Method())
	return nil
}

// selectBackend picks the configured acceleration method, falling back to
// CPU rendering when it cannot be used.
func (s *Screen) selectBackend(force24 bool) *accel.Backend {
	b, err := accel.Select(s.opts.method, force24, s.opts.accelOpts...)
	if err != nil {
		Logger().Warn("scanout: acceleration disabled", "method", s.opts.method, "err", err)
		return &accel.Backend{}
	}
	return b
}

func (s *Screen) driverName() string {
	if s.opts.driverName != "" {
		return s.opts.driverName
	}
	if n, ok := s.opts.kernel.(driverNamer); ok {
		name, err := n.DriverName()
		if err == nil {
			return name
		}
		Logger().Debug("scanout: driver name unavailable", "err", err)
	}
	return ""
}

func (s *Screen) createShadow(root *surface.Surface, force24 bool) error {
	bpp, format := root.BitsPerPixel, root.Format
	if force24 {
		bpp, format = 32, gputypes.TextureFormatBGRA8Unorm
	}
	bufs := &shadow.Buffers{
		DisplayWidth:  root.Width,
		VirtualHeight: root.Height,
		BitsPerPixel:  bpp,
		Format:        format,
	}
	if err := bufs.Alloc(); err != nil {
		return fmt.Errorf("scanout: shadow: %w", err)
	}
	if s.shadow.Double {
		if err := bufs.AllocDouble(); err != nil {
			Logger().Warn("scanout: double-buffered shadow disabled", "err", err)
			s.shadow.Double = false
		}
	}

	s.bufs = bufs
	s.updater = shadow.NewUpdater(bufs, root, force24)
	s.updater.Engine.TileSize = s.opts.tileSize
	return nil
}

// AddBlockHook appends a hook run before the screen's own work in
// BlockHandler. Hooks run in the order they were added.
func (s *Screen) AddBlockHook(h BlockHook) {
	s.hooks = append(s.hooks, h)
}

// BlockHandler is the per-tick driver, called once before the event loop
// blocks. The shadow is pushed to the front buffer first, then the front
// buffer's damage goes to the kernel and finally slave outputs are
// refreshed. timeout is the loop's sleep bound; it is zeroed when a slave
// on another device needs the next tick immediately.
func (s *Screen) BlockHandler(timeout *time.Duration) {
	for _, h := range s.hooks {
		h(timeout)
	}
	if s.root == nil {
		return
	}

	if s.updater != nil {
		s.updater.Update()
	}

	if s.opts.gpuScreen && !s.opts.reverseOffload {
		if s.opts.kernel != nil {
			s.coord.DispatchSlaveDirty(s.opts.kernel)
		}
	} else if s.target != nil && s.target.Enabled() {
		if err := s.target.Tick(); err != nil {
			Logger().Debug("scanout: dirty fb update failed", "fb", s.root.FBID, "err", err)
		}
	}

	s.coord.Update(timeout)
}

// DrawSurface returns the surface the render path draws into: the shadow
// when enabled, the root otherwise. Nil before CreateResources.
func (s *Screen) DrawSurface() *surface.Surface {
	if s.bufs != nil && s.bufs.Cur != nil {
		return s.bufs.Cur
	}
	return s.root
}

// Damage reports rgn as changed on the draw surface.
func (s *Screen) Damage(rgn *region.Region) {
	if d := s.DrawSurface(); d != nil {
		d.Damage(rgn)
	}
}

// DamageBox is Damage for a single box.
func (s *Screen) DamageBox(b region.Box) {
	s.Damage(region.New(b))
}

// Root returns the root surface, nil before CreateResources.
func (s *Screen) Root() *surface.Surface {
	return s.root
}

// Shadow returns the shadow decision made by CreateResources.
func (s *Screen) Shadow() shadow.Decision {
	return s.shadow
}

// Target returns the root framebuffer's dispatch target, or nil when the
// kernel did not need dirty rectangles.
func (s *Screen) Target() *dispatch.Target {
	return s.target
}

// Backend returns the selected acceleration backend.
func (s *Screen) Backend() *accel.Backend {
	return s.backend
}

// Coordinator returns the mirror coordinator, nil before CreateResources.
func (s *Screen) Coordinator() *mirror.Coordinator {
	return s.coord
}

// CloseResources releases everything CreateResources set up. The screen can
// be given a new root afterwards.
func (s *Screen) CloseResources() {
	if s.target != nil {
		s.target.Close()
		s.target = nil
	}
	if s.updater != nil {
		s.updater.Close()
		s.updater = nil
	}
	if s.bufs != nil {
		s.bufs.FreeDouble()
		s.bufs.Free()
		s.bufs = nil
	}
	if s.coord != nil {
		s.coord.Close()
		s.coord = nil
	}
	s.root = nil
	s.shadow = shadow.Decision{}
}
