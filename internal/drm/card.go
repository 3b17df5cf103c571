// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

// Package drm is the kernel side of the scanout core: a thin wrapper over
// the DRM/KMS ioctls the damage core issues. Structure layouts assume a
// 64-bit kernel ABI.
package drm

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/surface"
)

// DefaultPath is the card opened when neither a path nor KMSDEVICE is set.
const DefaultPath = "/dev/dri/card0"

// EnvDevice names the environment variable overriding the default card.
const EnvDevice = "KMSDEVICE"

// ErrClosed is returned by operations on a closed card.
var ErrClosed = errors.New("drm: card closed")

// Card is an open DRM device node.
type Card struct {
	f *os.File
}

// Open opens the DRM device at path. An empty path selects $KMSDEVICE and
// then DefaultPath.
func Open(path string) (*Card, error) {
	if path == "" {
		path = os.Getenv(EnvDevice)
	}
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("drm: open %s: %w", path, err)
	}
	return &Card{f: f}, nil
}

// Close closes the device node.
func (c *Card) Close() error {
	if c.f == nil {
		return ErrClosed
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// Fd returns the file descriptor of the device node.
func (c *Card) Fd() int {
	return int(c.f.Fd())
}

func (c *Card) ioctl(req uintptr, arg unsafe.Pointer) error {
	if c.f == nil {
		return ErrClosed
	}
	return ioctl(c.f.Fd(), req, arg)
}

// DirtyFB marks clips of framebuffer fbID as changed. Errors are bare
// unix.Errno values so callers can test them with errors.Is.
func (c *Card) DirtyFB(fbID uint32, clips []dispatch.Clip) error {
	cmd := drmModeFBDirtyCmd{
		fbID:     fbID,
		numClips: uint32(len(clips)),
	}
	if len(clips) > 0 {
		cmd.clipsPtr = uint64(uintptr(unsafe.Pointer(&clips[0])))
	}
	err := c.ioctl(ioctlModeDirtyFB, unsafe.Pointer(&cmd))
	runtime.KeepAlive(clips)
	return err
}

// GetCap returns the value of a DRM capability.
func (c *Card) GetCap(capability uint64) (uint64, error) {
	arg := drmGetCap{capability: capability}
	if err := c.ioctl(ioctlGetCap, unsafe.Pointer(&arg)); err != nil {
		return 0, err
	}
	return arg.value, nil
}

// DriverName returns the name of the kernel driver behind the card.
func (c *Card) DriverName() (string, error) {
	var v drmVersion
	if err := c.ioctl(ioctlVersion, unsafe.Pointer(&v)); err != nil {
		return "", fmt.Errorf("drm: version: %w", err)
	}
	if v.nameLen == 0 {
		return "", nil
	}
	name := make([]byte, v.nameLen)
	v = drmVersion{nameLen: uint64(len(name)), name: uintptr(unsafe.Pointer(&name[0]))}
	err := c.ioctl(ioctlVersion, unsafe.Pointer(&v))
	runtime.KeepAlive(name)
	if err != nil {
		return "", fmt.Errorf("drm: version: %w", err)
	}
	return string(name[:min(v.nameLen, uint64(len(name)))]), nil
}

// PrimeFDToHandle imports a dma-buf and returns its GEM handle.
func (c *Card) PrimeFDToHandle(fd int) (uint32, error) {
	arg := drmPrimeHandle{fd: int32(fd)}
	if err := c.ioctl(ioctlPrimeFDToHandle, unsafe.Pointer(&arg)); err != nil {
		return 0, fmt.Errorf("drm: prime fd to handle: %w", err)
	}
	return arg.handle, nil
}

// AddFB creates a framebuffer over a GEM buffer.
func (c *Card) AddFB(width, height, pitch, bpp, depth int, handle uint32) (uint32, error) {
	arg := drmModeFBCmd{
		width:  uint32(width),
		height: uint32(height),
		pitch:  uint32(pitch),
		bpp:    uint32(bpp),
		depth:  uint32(depth),
		handle: handle,
	}
	if err := c.ioctl(ioctlModeAddFB, unsafe.Pointer(&arg)); err != nil {
		return 0, fmt.Errorf("drm: add fb: %w", err)
	}
	return arg.fbID, nil
}

// RmFB removes a framebuffer.
func (c *Card) RmFB(fbID uint32) error {
	if err := c.ioctl(ioctlModeRmFB, unsafe.Pointer(&fbID)); err != nil {
		return fmt.Errorf("drm: rm fb: %w", err)
	}
	return nil
}

// Dumb is a kernel-allocated scanout buffer.
type Dumb struct {
	Handle uint32
	Pitch  int
	Size   int
}

// CreateDumb allocates a dumb buffer.
func (c *Card) CreateDumb(width, height, bpp int) (Dumb, error) {
	arg := drmModeCreateDumb{width: uint32(width), height: uint32(height), bpp: uint32(bpp)}
	if err := c.ioctl(ioctlModeCreateDumb, unsafe.Pointer(&arg)); err != nil {
		return Dumb{}, fmt.Errorf("drm: create dumb: %w", err)
	}
	return Dumb{Handle: arg.handle, Pitch: int(arg.pitch), Size: int(arg.size)}, nil
}

// MapDumb maps a dumb buffer into memory. Release with Unmap.
func (c *Card) MapDumb(d Dumb) ([]byte, error) {
	arg := drmModeMapDumb{handle: d.Handle}
	if err := c.ioctl(ioctlModeMapDumb, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("drm: map dumb: %w", err)
	}
	b, err := unix.Mmap(c.Fd(), int64(arg.offset), d.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("drm: mmap: %w", err)
	}
	return b, nil
}

// Unmap releases a mapping returned by MapDumb.
func (c *Card) Unmap(b []byte) error {
	return unix.Munmap(b)
}

// DestroyDumb frees a dumb buffer.
func (c *Card) DestroyDumb(d Dumb) error {
	arg := drmModeDestroyDumb{handle: d.Handle}
	if err := c.ioctl(ioctlModeDestroyDumb, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("drm: destroy dumb: %w", err)
	}
	return nil
}

// ImportSlave attaches the dma-buf fd to s as its scanout storage and gives
// it a framebuffer. fd -1 removes the current framebuffer.
func (c *Card) ImportSlave(s *surface.Surface, fd, pitch, size int) error {
	if fd == -1 {
		if s.FBID == 0 {
			return nil
		}
		err := c.RmFB(s.FBID)
		s.FBID = 0
		return err
	}
	if size < pitch*s.Height {
		return fmt.Errorf("drm: import: buffer of %d bytes too small for pitch %d: %w", size, pitch, unix.EINVAL)
	}

	handle, err := c.PrimeFDToHandle(fd)
	if err != nil {
		return err
	}
	depth := s.BitsPerPixel
	if depth == 32 {
		depth = 24
	}
	fb, err := c.AddFB(s.Width, s.Height, pitch, s.BitsPerPixel, depth, handle)
	if err != nil {
		return err
	}
	if s.FBID != 0 {
		if err := c.RmFB(s.FBID); err != nil {
			return err
		}
	}
	s.FBID = fb
	return nil
}
