// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mirror

import (
	"errors"
	"slices"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/surface"
)

var (
	// ErrAlreadyTracking is returned when a slave is already tracked.
	ErrAlreadyTracking = errors.New("mirror: slave already tracking a source")

	// ErrNotTracking is returned when stopping tracking that does not exist.
	ErrNotTracking = errors.New("mirror: slave not tracking this source")
)

// Entry is one source to slave tracking relation.
type Entry struct {
	Src      *surface.Surface
	Slave    *surface.Surface
	Geometry Geometry

	// Damage collects what changed on Src since the slave was last updated.
	// It is registered on Src.
	Damage *damage.Recorder
}

// Tracker maintains the list of tracked slaves.
type Tracker interface {
	// StartDirtyTracking begins mirroring src into slave.
	StartDirtyTracking(src, slave *surface.Surface, g Geometry) error

	// StopDirtyTracking ends mirroring src into slave.
	StopDirtyTracking(src, slave *surface.Surface) error

	// Entries returns a snapshot of the tracked relations.
	Entries() []*Entry

	// Lookup returns the entry for slave, or nil.
	Lookup(slave *surface.Surface) *Entry
}

// DirtyList is the default Tracker: an ordered list with at most one entry
// per slave.
type DirtyList struct {
	entries []*Entry
}

// StartDirtyTracking registers a recorder on src and seeds it with the whole
// mirrored area so the first update copies everything.
func (l *DirtyList) StartDirtyTracking(src, slave *surface.Surface, g Geometry) error {
	if l.Lookup(slave) != nil {
		return ErrAlreadyTracking
	}
	e := &Entry{
		Src:      src,
		Slave:    slave,
		Geometry: g,
		Damage:   damage.NewRecorder("mirror"),
	}
	src.Register(e.Damage)
	e.Damage.ReportBox(g.SourceBox(slave))
	l.entries = append(l.entries, e)
	return nil
}

// StopDirtyTracking unregisters and destroys the entry's recorder.
func (l *DirtyList) StopDirtyTracking(src, slave *surface.Surface) error {
	i := slices.IndexFunc(l.entries, func(e *Entry) bool {
		return e.Src == src && e.Slave == slave
	})
	if i < 0 {
		return ErrNotTracking
	}
	e := l.entries[i]
	e.Src.Unregister(e.Damage)
	e.Damage.Destroy()
	l.entries = slices.Delete(l.entries, i, i+1)
	return nil
}

// Entries returns a copy of the list.
func (l *DirtyList) Entries() []*Entry {
	return slices.Clone(l.entries)
}

// Lookup returns the entry whose slave is slave.
func (l *DirtyList) Lookup(slave *surface.Surface) *Entry {
	for _, e := range l.entries {
		if e.Slave == slave {
			return e
		}
	}
	return nil
}
