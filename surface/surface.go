// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"deedles.dev/ximage/format"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/region"
)

// Common errors returned when creating surfaces.
var (
	// ErrInvalidDimensions is returned when width, height or stride is invalid.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrShortBuffer is returned when the pixel slice is smaller than
	// Stride*Height.
	ErrShortBuffer = errors.New("surface: pixel buffer too small")
)

// Role is the part a surface plays in damage propagation.
type Role uint8

const (
	// RoleMaster is the primary surface.
	RoleMaster Role = iota

	// RoleShadow is a CPU-side mirror of a device buffer.
	RoleShadow

	// RoleSlave is kept in sync with a master surface.
	RoleSlave
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleShadow:
		return "shadow"
	case RoleSlave:
		return "slave"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// DeviceID identifies the physical device that owns a buffer.
// Surfaces with different DeviceIDs cannot assume rendering on one is
// visible to the other without a completion barrier.
type DeviceID uint32

// Surface is a pixel buffer plus the bookkeeping the damage core needs.
type Surface struct {
	// Width and Height are in pixels.
	Width, Height int

	// Stride is the number of bytes between vertically adjacent pixels.
	Stride int

	// BitsPerPixel is 16, 24 or 32.
	BitsPerPixel int

	// Format is the channel order of 32 bpp buffers; zero for packed formats.
	Format gputypes.TextureFormat

	// Pix holds Stride*Height bytes, row-major.
	Pix []byte

	// FBID is the kernel framebuffer this surface is scanned out through,
	// or zero if it has none.
	FBID uint32

	// Device owns the memory behind Pix.
	Device DeviceID

	// Role is the surface's part in damage propagation.
	Role Role

	// Master is, for a slave, the surface on the master screen that shares
	// its backing storage. Nil otherwise.
	Master *Surface

	recorders []*damage.Recorder
	pending   region.Region
}

// New allocates a tightly packed surface.
func New(width, height, bitsPerPixel int, format gputypes.TextureFormat) (*Surface, error) {
	if width <= 0 || height <= 0 || bitsPerPixel <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d, bpp=%d", ErrInvalidDimensions, width, height, bitsPerPixel)
	}
	stride := width * bytesPerPixel(bitsPerPixel)
	return &Surface{
		Width:        width,
		Height:       height,
		Stride:       stride,
		BitsPerPixel: bitsPerPixel,
		Format:       format,
		Pix:          make([]byte, stride*height),
	}, nil
}

// NewFromPixels wraps existing memory, typically a mapped kernel buffer.
// The surface does not own pix; unmapping it is the caller's job.
func NewFromPixels(width, height, stride, bitsPerPixel int, format gputypes.TextureFormat, pix []byte) (*Surface, error) {
	if width <= 0 || height <= 0 || bitsPerPixel <= 0 || stride < width*bytesPerPixel(bitsPerPixel) {
		return nil, fmt.Errorf("%w: width=%d, height=%d, stride=%d, bpp=%d",
			ErrInvalidDimensions, width, height, stride, bitsPerPixel)
	}
	if len(pix) < stride*height {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(pix), stride*height)
	}
	return &Surface{
		Width:        width,
		Height:       height,
		Stride:       stride,
		BitsPerPixel: bitsPerPixel,
		Format:       format,
		Pix:          pix,
	}, nil
}

// CPP returns the number of bytes per pixel.
func (s *Surface) CPP() int {
	return bytesPerPixel(s.BitsPerPixel)
}

// Bounds returns the surface rectangle anchored at the origin.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (s *Surface) PixOffset(x, y int) int {
	return y*s.Stride + x*s.CPP()
}

// Row returns the bytes of scanline y covering the visible width.
func (s *Surface) Row(y int) []byte {
	off := y * s.Stride
	return s.Pix[off : off+s.Width*s.CPP()]
}

// Len returns Stride*Height.
func (s *Surface) Len() int {
	return s.Stride * s.Height
}

// Image returns a draw.Image view of the pixels for the render path.
// Only tightly packed 32 bpp BGRA surfaces (XRGB8888 in kernel terms)
// can be viewed; ok is false otherwise.
func (s *Surface) Image() (img draw.Image, ok bool) {
	if s.BitsPerPixel != 32 || s.Format != gputypes.TextureFormatBGRA8Unorm || s.Stride != s.Width*4 {
		return nil, false
	}
	return &format.Image{
		Format: format.XRGB8888,
		Rect:   s.Bounds(),
		Pix:    s.Pix[:s.Len()],
	}, true
}

func (s *Surface) String() string {
	return fmt.Sprintf("%s %dx%d@%d fb=%d dev=%d", s.Role, s.Width, s.Height, s.BitsPerPixel, s.FBID, s.Device)
}

func bytesPerPixel(bpp int) int {
	return (bpp + 7) >> 3
}
