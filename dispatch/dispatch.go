// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package dispatch pushes accumulated damage to the display controller as
// framebuffer dirty rectangles.
//
// The kernel may reject a batch it finds too large with EINVAL; the batch is
// then resubmitted one rectangle at a time. A kernel that does not implement
// dirty updates at all (ENOSYS, or EINVAL even for single rectangles) never
// will, so a Target switches itself off for good.
package dispatch

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/region"
)

// ErrNoMemory is returned when the clip batch cannot be built. The damage
// stays recorded and is sent on the next tick.
var ErrNoMemory = fmt.Errorf("dispatch: cannot allocate clip batch: %w", unix.ENOMEM)

// MaxClips bounds the number of rectangles in one batch.
const MaxClips = 1 << 16

// Clip is a framebuffer rectangle in kernel form: x1, y1 inclusive, x2, y2
// exclusive, 16 bits each.
type Clip struct {
	X1, Y1, X2, Y2 uint16
}

// Kernel accepts dirty rectangles for a framebuffer.
// A nil or empty clips slice asks the kernel whether it supports the call.
type Kernel interface {
	DirtyFB(fbID uint32, clips []Clip) error
}

// ClipFromBox converts b, clamping coordinates to the 16-bit range.
func ClipFromBox(b region.Box) Clip {
	return Clip{X1: clamp16(b.X1), Y1: clamp16(b.Y1), X2: clamp16(b.X2), Y2: clamp16(b.Y2)}
}

// Dispatch sends the damage accumulated in rec to framebuffer fbID.
//
// The damage is consumed once the kernel has been called, whatever it
// answered; it is kept only when the batch could not be built. Callers never
// drain rec themselves.
//
// If the batched call fails with EINVAL each rectangle is retried on its
// own, stopping at the first failure, whose error is returned.
func Dispatch(k Kernel, fbID uint32, rec *damage.Recorder) error {
	return dispatch(k, fbID, rec, MaxClips)
}

func dispatch(k Kernel, fbID uint32, rec *damage.Recorder, maxClips int) error {
	rgn := rec.Region()
	if rgn.IsEmpty() {
		return nil
	}

	clips, err := buildClips(rgn, maxClips)
	if err != nil {
		return err
	}

	err = k.DirtyFB(fbID, clips)
	if errors.Is(err, unix.EINVAL) {
		slogger().Debug("dispatch: batch rejected, sending clips one by one", "fb", fbID, "clips", len(clips))
		for i := range clips {
			if err = k.DirtyFB(fbID, clips[i:i+1]); err != nil {
				break
			}
		}
	}

	rec.Empty()
	return err
}

func buildClips(rgn *region.Region, maxClips int) ([]Clip, error) {
	n := rgn.NumBoxes()
	if n > maxClips {
		return nil, fmt.Errorf("%w (%d rectangles)", ErrNoMemory, n)
	}
	clips := make([]Clip, 0, n)
	for _, b := range rgn.Boxes() {
		clips = append(clips, ClipFromBox(b))
	}
	return clips, nil
}

// Permanent reports whether err means the kernel will never accept dirty
// updates for the framebuffer.
func Permanent(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS)
}

// Probe asks the kernel with an empty batch whether dirty updates are needed
// for fbID. Kernels that scan out directly answer EINVAL or ENOSYS.
func Probe(k Kernel, fbID uint32) bool {
	err := k.DirtyFB(fbID, nil)
	if Permanent(err) {
		slogger().Warn("dispatch: dirty fb probe failed", "fb", fbID, "err", err)
		return false
	}
	return true
}

func clamp16(v int) uint16 {
	return uint16(min(max(v, 0), 0xffff))
}
