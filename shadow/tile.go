// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"iter"

	"github.com/gogpu/scanout/region"
)

// DefaultTileSize is the edge length, in pixels, of a diff tile.
const DefaultTileSize = 16

// TileGrid partitions a bounding box into square tiles.
//
// Tile coordinates are absolute: tile (tx, ty) covers pixels
// [tx*Size, (tx+1)*Size) x [ty*Size, (ty+1)*Size), clipped to Bounds.
// Edge tiles are therefore smaller than Size when Bounds is not aligned.
//
// A TileGrid is ephemeral: it exists for one diff pass and is never stored.
type TileGrid struct {
	// Bounds is the box being partitioned.
	Bounds region.Box

	// Size is the tile edge length in pixels.
	Size int

	tx1, ty1, tx2, ty2 int
}

// NewTileGrid creates a grid over bounds. A non-positive size selects
// DefaultTileSize.
func NewTileGrid(bounds region.Box, size int) TileGrid {
	if size <= 0 {
		size = DefaultTileSize
	}
	g := TileGrid{Bounds: bounds, Size: size}
	if bounds.Empty() {
		return g
	}
	g.tx1 = floorDiv(bounds.X1, size)
	g.ty1 = floorDiv(bounds.Y1, size)
	g.tx2 = floorDiv(bounds.X2+size-1, size)
	g.ty2 = floorDiv(bounds.Y2+size-1, size)
	return g
}

// TilesX returns the number of tile columns.
func (g TileGrid) TilesX() int { return g.tx2 - g.tx1 }

// TilesY returns the number of tile rows.
func (g TileGrid) TilesY() int { return g.ty2 - g.ty1 }

// Len returns the number of tiles in the grid.
func (g TileGrid) Len() int {
	return g.TilesX() * g.TilesY()
}

// Tile returns the pixel box of tile (tx, ty) clipped to Bounds.
func (g TileGrid) Tile(tx, ty int) region.Box {
	return region.Box{
		X1: max(tx*g.Size, g.Bounds.X1),
		Y1: max(ty*g.Size, g.Bounds.Y1),
		X2: min((tx+1)*g.Size, g.Bounds.X2),
		Y2: min((ty+1)*g.Size, g.Bounds.Y2),
	}
}

// Descending yields every tile, rows from highest to lowest and, within a
// row, columns from highest to lowest. The order is fixed so diff results
// are reproducible.
func (g TileGrid) Descending() iter.Seq[region.Box] {
	return func(yield func(region.Box) bool) {
		for ty := g.ty2 - 1; ty >= g.ty1; ty-- {
			for tx := g.tx2 - 1; tx >= g.tx1; tx-- {
				if !yield(g.Tile(tx, ty)) {
					return
				}
			}
		}
	}
}

// floorDiv divides rounding towards negative infinity so tiles stay
// aligned for boxes that start left of or above the origin.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
