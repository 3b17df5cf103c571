// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package region

import (
	"fmt"
	"image"
)

// Box is a half-open axis-aligned rectangle: it covers pixels with
// X1 <= x < X2 and Y1 <= y < Y2.
type Box struct {
	X1, Y1, X2, Y2 int
}

// BoxXYWH returns the box with top-left corner (x, y) and the given size.
func BoxXYWH(x, y, w, h int) Box {
	return Box{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// BoxFromRect converts an image.Rectangle.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool {
	return b.X1 >= b.X2 || b.Y1 >= b.Y2
}

// Dx returns the width of the box.
func (b Box) Dx() int { return b.X2 - b.X1 }

// Dy returns the height of the box.
func (b Box) Dy() int { return b.Y2 - b.Y1 }

// Area returns the number of pixels covered by the box.
// Empty boxes have zero area.
func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.Dx() * b.Dy()
}

// Intersect returns the largest box contained by both b and o.
// The result is the zero Box if they do not overlap.
func (b Box) Intersect(o Box) Box {
	r := Box{
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
		X2: min(b.X2, o.X2),
		Y2: min(b.Y2, o.Y2),
	}
	if r.Empty() {
		return Box{}
	}
	return r
}

// Overlaps reports whether b and o share at least one pixel.
func (b Box) Overlaps(o Box) bool {
	return !b.Intersect(o).Empty()
}

// Contains reports whether o lies entirely inside b.
// An empty o is contained by every box.
func (b Box) Contains(o Box) bool {
	if o.Empty() {
		return true
	}
	return o.X1 >= b.X1 && o.Y1 >= b.Y1 && o.X2 <= b.X2 && o.Y2 <= b.Y2
}

// ContainsPoint reports whether the pixel (x, y) lies inside b.
func (b Box) ContainsPoint(x, y int) bool {
	return x >= b.X1 && x < b.X2 && y >= b.Y1 && y < b.Y2
}

// Union returns the smallest box containing both b and o.
// Empty boxes are ignored.
func (b Box) Union(o Box) Box {
	switch {
	case b.Empty():
		return o
	case o.Empty():
		return b
	}
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	return Box{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
}

// subtract returns the parts of a not covered by c as at most four
// non-overlapping boxes: a band above c, a band below c, and the left
// and right remainders of the middle band.
func subtract(a, c Box) []Box {
	in := a.Intersect(c)
	if in.Empty() {
		return []Box{a}
	}

	out := make([]Box, 0, 4)
	if a.Y1 < in.Y1 {
		out = append(out, Box{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: in.Y1})
	}
	if in.Y2 < a.Y2 {
		out = append(out, Box{X1: a.X1, Y1: in.Y2, X2: a.X2, Y2: a.Y2})
	}
	if a.X1 < in.X1 {
		out = append(out, Box{X1: a.X1, Y1: in.Y1, X2: in.X1, Y2: in.Y2})
	}
	if in.X2 < a.X2 {
		out = append(out, Box{X1: in.X2, Y1: in.Y1, X2: a.X2, Y2: in.Y2})
	}
	return out
}
