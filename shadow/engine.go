// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gogpu/scanout/region"
)

// ErrAlloc is returned when a pass cannot get the memory it needs.
// The damage passed in is left untouched and stays recorded, so the next
// tick retries the same work.
var ErrAlloc = errors.New("shadow: allocation failed")

// Engine narrows reported damage down to the tiles whose bytes really
// changed between two frames.
//
// The zero value uses DefaultTileSize and never limits the rectangle list.
type Engine struct {
	// TileSize is the tile edge length in pixels.
	TileSize int

	// MaxTiles caps the temporary rectangle list. A pass whose grid has
	// more tiles fails with ErrAlloc. Zero means no cap.
	MaxTiles int
}

// Diff compares cur against old over the extents of dmg.
//
// Tiles entirely outside dmg are skipped. For each remaining tile every
// scanline is compared; changed scanlines are copied from cur into old and
// the tile is recorded as dirty. dmg is then intersected with the dirty
// tiles, so it never grows. Both buffers share stride and cpp.
//
// Diff returns the number of dirty tiles. Zero dirty tiles leave dmg empty,
// which callers treat as nothing to do.
func (e *Engine) Diff(old, cur []byte, stride, cpp int, dmg *region.Region) (int, error) {
	ext := dmg.Extents()
	if ext.Empty() {
		return 0, nil
	}
	if stride <= 0 || cpp <= 0 {
		return 0, fmt.Errorf("shadow: invalid layout stride=%d cpp=%d", stride, cpp)
	}

	rows := min(len(old), len(cur)) / stride
	ext = ext.Intersect(region.Box{X2: stride / cpp, Y2: rows})

	grid := NewTileGrid(ext, e.TileSize)
	if e.MaxTiles > 0 && grid.Len() > e.MaxTiles {
		return 0, fmt.Errorf("%w: %d tiles, limit %d", ErrAlloc, grid.Len(), e.MaxTiles)
	}

	dirty := make([]region.Box, 0, grid.Len())
	for box := range grid.Descending() {
		if dmg.ContainsBox(box) == region.OverlapOut {
			continue
		}
		if updateTile(old, cur, stride, cpp, box) {
			dirty = append(dirty, box)
		}
	}

	dmg.Intersect(region.FromDisjoint(dirty))

	slogger().Debug("shadow: diff", "extents", ext, "tiles", grid.Len(), "dirty", len(dirty))
	return len(dirty), nil
}

// updateTile copies the changed scanlines of box from cur to old and
// reports whether any differed.
func updateTile(old, cur []byte, stride, cpp int, box region.Box) bool {
	width := box.Dx() * cpp
	off := box.Y1*stride + box.X1*cpp
	dirty := false
	for range box.Dy() {
		o := old[off : off+width]
		n := cur[off : off+width]
		if !bytes.Equal(o, n) {
			copy(o, n)
			dirty = true
		}
		off += stride
	}
	return dirty
}
