// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mirror

import (
	"fmt"

	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/surface"
)

// Rotation is the counter-clockwise rotation applied when copying the
// source into a slave.
type Rotation uint8

// Supported rotations.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// String returns the rotation in degrees.
func (r Rotation) String() string {
	if r > Rotate270 {
		return fmt.Sprintf("Rotation(%d)", r)
	}
	return fmt.Sprintf("%d", int(r)*90)
}

// Geometry places a slave on its source: the area starting at (X, Y) on the
// source is copied to (DstX, DstY) on the slave, rotated by Rotation.
type Geometry struct {
	X, Y       int
	DstX, DstY int
	Rotation   Rotation
}

// swapped reports whether the rotation exchanges width and height.
func (g Geometry) swapped() bool {
	return g.Rotation == Rotate90 || g.Rotation == Rotate270
}

// SourceBox returns the area of the source mirrored into slave.
func (g Geometry) SourceBox(slave *surface.Surface) region.Box {
	w, h := slave.Width-g.DstX, slave.Height-g.DstY
	if g.swapped() {
		w, h = h, w
	}
	return region.BoxXYWH(g.X, g.Y, max(w, 0), max(h, 0))
}

// transform maps a source pixel to slave coordinates. aw and ah are the
// source area size.
func (g Geometry) transform(sx, sy, aw, ah int) (int, int) {
	u, v := sx-g.X, sy-g.Y
	switch g.Rotation {
	case Rotate90:
		u, v = v, aw-1-u
	case Rotate180:
		u, v = aw-1-u, ah-1-v
	case Rotate270:
		u, v = ah-1-v, u
	}
	return u + g.DstX, v + g.DstY
}

// copyArea copies the pixels of rgn, in source coordinates, from src to
// slave. Both surfaces must share a pixel size.
func (g Geometry) copyArea(src, slave *surface.Surface, rgn *region.Region) {
	area := g.SourceBox(slave)
	cpp := src.CPP()

	for _, b := range rgn.Boxes() {
		b = b.Intersect(area).Intersect(region.BoxFromRect(src.Bounds()))
		if b.Empty() {
			continue
		}
		if g.Rotation == Rotate0 {
			w := b.Dx() * cpp
			for y := b.Y1; y < b.Y2; y++ {
				dx, dy := g.transform(b.X1, y, area.Dx(), area.Dy())
				copy(slave.Pix[slave.PixOffset(dx, dy):][:w], src.Pix[src.PixOffset(b.X1, y):][:w])
			}
			continue
		}
		for y := b.Y1; y < b.Y2; y++ {
			for x := b.X1; x < b.X2; x++ {
				dx, dy := g.transform(x, y, area.Dx(), area.Dy())
				copy(slave.Pix[slave.PixOffset(dx, dy):][:cpp], src.Pix[src.PixOffset(x, y):][:cpp])
			}
		}
	}
}
