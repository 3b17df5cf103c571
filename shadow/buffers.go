// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout/surface"
)

// Buffers is the shadow pair: Cur is what the render path draws into and
// Prev holds the last frame pushed to the device, used for diffing.
//
// Buffers are exclusively owned by one Updater; nothing else writes Prev.
type Buffers struct {
	// DisplayWidth is the line length in pixels, which may exceed the
	// visible width.
	DisplayWidth int

	// VirtualHeight is the number of lines.
	VirtualHeight int

	// BitsPerPixel of the shadow, not the device.
	BitsPerPixel int

	// Format tags Cur.
	Format gputypes.TextureFormat

	// Cur is the shadow surface, nil until Alloc.
	Cur *surface.Surface

	// Prev is the previous-frame copy, nil unless double buffering.
	Prev []byte
}

// Size returns DisplayWidth*VirtualHeight*cpp, the byte size of one buffer.
func (b *Buffers) Size() (int, error) {
	cpp := (b.BitsPerPixel + 7) >> 3
	if b.DisplayWidth <= 0 || b.VirtualHeight <= 0 || cpp <= 0 {
		return 0, fmt.Errorf("%w: %dx%d@%d", ErrAlloc, b.DisplayWidth, b.VirtualHeight, b.BitsPerPixel)
	}
	if b.DisplayWidth > math.MaxInt/cpp/b.VirtualHeight {
		return 0, fmt.Errorf("%w: %dx%d@%d overflows", ErrAlloc, b.DisplayWidth, b.VirtualHeight, b.BitsPerPixel)
	}
	return b.DisplayWidth * b.VirtualHeight * cpp, nil
}

// Alloc allocates the current shadow buffer, zero filled.
func (b *Buffers) Alloc() error {
	if _, err := b.Size(); err != nil {
		return err
	}
	s, err := surface.New(b.DisplayWidth, b.VirtualHeight, b.BitsPerPixel, b.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	s.Role = surface.RoleShadow
	b.Cur = s
	return nil
}

// AllocDouble allocates the previous-frame buffer, zero filled.
func (b *Buffers) AllocDouble() error {
	n, err := b.Size()
	if err != nil {
		return err
	}
	b.Prev = make([]byte, n)
	return nil
}

// Free releases the current shadow buffer.
func (b *Buffers) Free() {
	b.Cur = nil
}

// FreeDouble releases the previous-frame buffer.
func (b *Buffers) FreeDouble() {
	b.Prev = nil
}

// Double reports whether the previous-frame buffer is allocated.
func (b *Buffers) Double() bool {
	return b.Prev != nil
}
