// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/surface"
)

// Window maps a scanline of the device buffer. It returns the bytes of row
// starting at byte offset, running to the end of the row.
type Window func(row, offset int) []byte

// FrontWindow returns a Window over the pixels of front.
func FrontWindow(front *surface.Surface) Window {
	return func(row, offset int) []byte {
		start := row * front.Stride
		return front.Pix[start+offset : start+front.Stride]
	}
}

// Pass copies the damaged area of a shadow buffer into the device.
type Pass func(dst Window, src []byte, srcStride int, dmg *region.Region)

// CopyPacked copies damaged bytes unchanged. Shadow and device share a
// pixel format; cpp is taken from the shadow.
func CopyPacked(cpp int) Pass {
	return func(dst Window, src []byte, srcStride int, dmg *region.Region) {
		for _, b := range dmg.Boxes() {
			w := b.Dx() * cpp
			for y := b.Y1; y < b.Y2; y++ {
				off := y*srcStride + b.X1*cpp
				copy(dst(y, b.X1*cpp), src[off:off+w])
			}
		}
	}
}

// Convert32to24 packs 32 bpp little-endian XRGB shadow pixels into a 24 bpp
// device buffer, dropping the padding byte.
func Convert32to24(dst Window, src []byte, srcStride int, dmg *region.Region) {
	for _, b := range dmg.Boxes() {
		for y := b.Y1; y < b.Y2; y++ {
			d := dst(y, b.X1*3)
			s := src[y*srcStride+b.X1*4:]
			for x := range b.Dx() {
				copy(d[x*3:x*3+3], s[x*4:x*4+3])
			}
		}
	}
}
