// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"slices"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/region"
)

// Register adds rec to the end of the surface's recorder list.
// Registering the same recorder twice is a no-op.
func (s *Surface) Register(rec *damage.Recorder) {
	if rec == nil || s.Registered(rec) {
		return
	}
	s.recorders = append(s.recorders, rec)
}

// Unregister removes rec from the recorder list. After this call no damage
// reported on the surface reaches rec.
func (s *Surface) Unregister(rec *damage.Recorder) {
	s.recorders = slices.DeleteFunc(s.recorders, func(r *damage.Recorder) bool {
		return r == rec
	})
}

// Registered reports whether rec is in the recorder list.
func (s *Surface) Registered(rec *damage.Recorder) bool {
	return slices.Contains(s.recorders, rec)
}

// Recorders returns the number of registered recorders.
func (s *Surface) Recorders() int {
	return len(s.recorders)
}

// AppendDamage adds rgn to the pending set. Pending damage is not visible
// to any recorder until ProcessPending runs.
func (s *Surface) AppendDamage(rgn *region.Region) {
	s.pending.Union(rgn)
}

// AppendDamageBox adds a single box to the pending set.
func (s *Surface) AppendDamageBox(b region.Box) {
	s.pending.UnionBox(b)
}

// Pending returns a copy of the damage not yet delivered to recorders.
func (s *Surface) Pending() *region.Region {
	return s.pending.Clone()
}

// ProcessPending delivers the pending damage to every registered recorder,
// in registration order, and clears the pending set. Destroyed recorders are
// skipped; callers unregister them.
func (s *Surface) ProcessPending() {
	if s.pending.IsEmpty() {
		return
	}
	for _, rec := range s.recorders {
		// Only ErrDestroyed is possible here.
		_ = rec.Report(&s.pending)
	}
	s.pending.Clear()
}

// Damage appends rgn to the pending set and delivers it immediately.
func (s *Surface) Damage(rgn *region.Region) {
	s.AppendDamage(rgn)
	s.ProcessPending()
}

// DamageBox is Damage for a single box.
func (s *Surface) DamageBox(b region.Box) {
	s.AppendDamageBox(b)
	s.ProcessPending()
}

// DamageAll reports the whole surface as damaged.
func (s *Surface) DamageAll() {
	s.DamageBox(region.BoxFromRect(s.Bounds()))
}
