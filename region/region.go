// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package region implements set operations over collections of
// non-overlapping rectangles.
//
// A Region is the unit of damage bookkeeping for the rest of the module:
// the render path unions rectangles into it, the shadow diff engine
// intersects it with the tiles that really changed, and the dispatch engine
// turns its boxes into kernel clip rectangles.
//
// Invariants maintained by every operation:
//
//   - boxes never overlap each other
//   - no stored box is empty
//   - Extents bounds every box, and is the zero Box for an empty region
//
// Region is NOT safe for concurrent use.
package region

import (
	"image"
	"slices"
	"strings"
)

// Overlap classifies how a box relates to a region.
type Overlap uint8

const (
	// OverlapOut means the box shares no pixel with the region.
	OverlapOut Overlap = iota

	// OverlapIn means every pixel of the box is inside the region.
	OverlapIn

	// OverlapPartial means the box is partly inside the region.
	OverlapPartial
)

// String returns the overlap name.
func (o Overlap) String() string {
	switch o {
	case OverlapOut:
		return "out"
	case OverlapIn:
		return "in"
	case OverlapPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Region is a set of non-overlapping boxes.
// The zero value is an empty region ready to use.
type Region struct {
	boxes   []Box
	extents Box
}

// New returns a region covering the union of boxes.
// Boxes may overlap; overlapping areas are counted once.
func New(boxes ...Box) *Region {
	r := &Region{}
	for _, b := range boxes {
		r.UnionBox(b)
	}
	return r
}

// FromRects returns a region covering the union of rects.
func FromRects(rects []image.Rectangle) *Region {
	r := &Region{}
	for _, rect := range rects {
		r.UnionBox(BoxFromRect(rect))
	}
	return r
}

// FromDisjoint builds a region from boxes the caller guarantees do not
// overlap. It skips the pairwise subtraction done by New and is the fast
// path for tile lists.
func FromDisjoint(boxes []Box) *Region {
	r := &Region{boxes: make([]Box, 0, len(boxes))}
	for _, b := range boxes {
		if !b.Empty() {
			r.boxes = append(r.boxes, b)
		}
	}
	r.normalize()
	return r
}

// IsEmpty reports whether the region covers no pixels.
func (r *Region) IsEmpty() bool {
	return r == nil || len(r.boxes) == 0
}

// NotEmpty is the negation of IsEmpty.
func (r *Region) NotEmpty() bool {
	return !r.IsEmpty()
}

// NumBoxes returns the number of boxes in the region.
func (r *Region) NumBoxes() int {
	if r == nil {
		return 0
	}
	return len(r.boxes)
}

// Boxes returns a copy of the region's boxes.
func (r *Region) Boxes() []Box {
	if r == nil {
		return nil
	}
	return slices.Clone(r.boxes)
}

// Extents returns the bounding box of the region.
func (r *Region) Extents() Box {
	if r == nil {
		return Box{}
	}
	return r.extents
}

// Area returns the number of pixels covered by the region.
func (r *Region) Area() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, b := range r.boxes {
		n += b.Area()
	}
	return n
}

// Clone returns an independent copy of r.
func (r *Region) Clone() *Region {
	if r == nil {
		return &Region{}
	}
	return &Region{boxes: slices.Clone(r.boxes), extents: r.extents}
}

// Clear empties the region, keeping its storage.
func (r *Region) Clear() {
	r.boxes = r.boxes[:0]
	r.extents = Box{}
}

// Set replaces the contents of r with a copy of o.
func (r *Region) Set(o *Region) {
	r.boxes = append(r.boxes[:0], o.boxes...)
	r.extents = o.extents
}

// UnionBox adds b to the region.
func (r *Region) UnionBox(b Box) {
	if b.Empty() {
		return
	}
	if r.extents.Contains(b) && r.ContainsBox(b) == OverlapIn {
		return
	}
	pieces := r.uncovered(b, nil)
	if len(pieces) == 0 {
		return
	}
	r.boxes = append(r.boxes, pieces...)
	r.normalize()
}

// Union adds every box of o to the region. The boxes of o are disjoint,
// so each is clipped against r alone and r is normalized once.
func (r *Region) Union(o *Region) {
	if o.IsEmpty() || o == r {
		return
	}
	if r.IsEmpty() {
		r.Set(o)
		return
	}

	var added []Box
	for _, b := range o.boxes {
		added = r.uncovered(b, added)
	}
	if len(added) == 0 {
		return
	}
	r.boxes = append(r.boxes, added...)
	r.normalize()
}

// uncovered appends to dst the parts of b not covered by r.
// r.boxes are in band order, so the scan stops at the first box starting
// below b.
func (r *Region) uncovered(b Box, dst []Box) []Box {
	if !r.extents.Overlaps(b) {
		return append(dst, b)
	}
	pieces := []Box{b}
	for _, e := range r.boxes {
		if e.Y1 >= b.Y2 {
			break
		}
		if !e.Overlaps(b) {
			continue
		}
		next := pieces[:0:0]
		for _, p := range pieces {
			next = append(next, subtract(p, e)...)
		}
		pieces = next
		if len(pieces) == 0 {
			return dst
		}
	}
	return append(dst, pieces...)
}

// Intersect replaces r with the area covered by both r and o.
func (r *Region) Intersect(o *Region) {
	if r.IsEmpty() {
		return
	}
	if o.IsEmpty() || !r.extents.Overlaps(o.extents) {
		r.Clear()
		return
	}

	out := make([]Box, 0, len(r.boxes))
	for _, a := range r.boxes {
		if !a.Overlaps(o.extents) {
			continue
		}
		for _, b := range o.boxes {
			if in := a.Intersect(b); !in.Empty() {
				out = append(out, in)
			}
		}
	}
	r.boxes = out
	r.normalize()
}

// IntersectBox clips the region to b.
func (r *Region) IntersectBox(b Box) {
	r.Intersect(&Region{boxes: []Box{b}, extents: b})
}

// Subtract removes the area covered by o from r.
func (r *Region) Subtract(o *Region) {
	if r.IsEmpty() || o.IsEmpty() || !r.extents.Overlaps(o.extents) {
		return
	}

	out := slices.Clone(r.boxes)
	for _, c := range o.boxes {
		next := out[:0:0]
		for _, a := range out {
			next = append(next, subtract(a, c)...)
		}
		out = next
	}
	r.boxes = out
	r.normalize()
}

// Translate moves every box of the region by (dx, dy).
func (r *Region) Translate(dx, dy int) {
	for i := range r.boxes {
		r.boxes[i] = r.boxes[i].Translate(dx, dy)
	}
	if !r.IsEmpty() {
		r.extents = r.extents.Translate(dx, dy)
	}
}

// ContainsBox reports how b relates to the region.
// An empty b is always OverlapOut.
func (r *Region) ContainsBox(b Box) Overlap {
	if r.IsEmpty() || b.Empty() || !r.extents.Overlaps(b) {
		return OverlapOut
	}

	covered := 0
	for _, e := range r.boxes {
		covered += e.Intersect(b).Area()
	}
	switch {
	case covered == 0:
		return OverlapOut
	case covered == b.Area():
		return OverlapIn
	default:
		return OverlapPartial
	}
}

// ContainsPoint reports whether the pixel (x, y) is inside the region.
func (r *Region) ContainsPoint(x, y int) bool {
	if r.IsEmpty() || !r.extents.ContainsPoint(x, y) {
		return false
	}
	for _, b := range r.boxes {
		if b.ContainsPoint(x, y) {
			return true
		}
	}
	return false
}

// Equal reports whether r and o cover exactly the same pixels.
func (r *Region) Equal(o *Region) bool {
	if r.Area() != o.Area() || r.Extents() != o.Extents() {
		return false
	}
	d := r.Clone()
	d.Subtract(o)
	return d.IsEmpty()
}

func (r *Region) String() string {
	if r.IsEmpty() {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, b := range r.boxes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// normalize merges boxes that share a full edge and recomputes extents.
// Boxes are first merged along rows, then along columns; neither step can
// introduce overlap because the inputs are already disjoint.
func (r *Region) normalize() {
	if len(r.boxes) > 1 {
		slices.SortFunc(r.boxes, func(a, b Box) int {
			if a.Y1 != b.Y1 {
				return a.Y1 - b.Y1
			}
			if a.Y2 != b.Y2 {
				return a.Y2 - b.Y2
			}
			return a.X1 - b.X1
		})
		r.boxes = mergeRuns(r.boxes, func(prev, cur Box) bool {
			return prev.Y1 == cur.Y1 && prev.Y2 == cur.Y2 && prev.X2 == cur.X1
		}, func(prev, cur Box) Box {
			prev.X2 = cur.X2
			return prev
		})

		slices.SortFunc(r.boxes, func(a, b Box) int {
			if a.X1 != b.X1 {
				return a.X1 - b.X1
			}
			if a.X2 != b.X2 {
				return a.X2 - b.X2
			}
			return a.Y1 - b.Y1
		})
		r.boxes = mergeRuns(r.boxes, func(prev, cur Box) bool {
			return prev.X1 == cur.X1 && prev.X2 == cur.X2 && prev.Y2 == cur.Y1
		}, func(prev, cur Box) Box {
			prev.Y2 = cur.Y2
			return prev
		})

		// Band order (top to bottom, left to right) for callers that
		// hand the boxes to hardware.
		slices.SortFunc(r.boxes, func(a, b Box) int {
			if a.Y1 != b.Y1 {
				return a.Y1 - b.Y1
			}
			return a.X1 - b.X1
		})
	}

	r.extents = Box{}
	for _, b := range r.boxes {
		r.extents = r.extents.Union(b)
	}
}

func mergeRuns(boxes []Box, adjacent func(prev, cur Box) bool, merge func(prev, cur Box) Box) []Box {
	out := boxes[:0]
	for _, b := range boxes {
		if n := len(out); n > 0 && adjacent(out[n-1], b) {
			out[n-1] = merge(out[n-1], b)
			continue
		}
		out = append(out, b)
	}
	return out
}
