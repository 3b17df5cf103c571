// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface describes the pixel buffers the damage core works on.
//
// A Surface is a raw byte buffer with a geometry (width, height, stride,
// bits per pixel) and a format tag. The same type models the three roles a
// buffer can play:
//
//   - RoleMaster: the primary buffer, scanned out or rendered into directly
//   - RoleShadow: a CPU-visible copy of a device buffer that cannot be
//     addressed in the needed format
//   - RoleSlave: a buffer owned by another output or device, kept in sync
//     with the master
//
// # Damage fan-out
//
// Every surface keeps an ordered list of damage recorders. Pixel changes
// are first appended to the surface's pending damage and then delivered to
// each registered recorder, in registration order, by ProcessPending:
//
//	s.AppendDamage(rgn)
//	s.ProcessPending()
//
// Damage is the shorthand for both calls. Unregistering a recorder cuts it
// off from all future reports; this is how dispatch is permanently disabled.
//
// # Format
//
// Format carries the channel order of 32 bpp buffers as a
// gputypes.TextureFormat so surfaces can be handed to GPU code without
// translation. Packed formats that WebGPU cannot express (24 bpp, 16 bpp)
// leave Format at its zero value; BitsPerPixel is always authoritative for
// byte arithmetic.
//
// # Thread Safety
//
// Surfaces are NOT safe for concurrent use.
package surface
