// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package damage

import (
	"errors"
	"testing"

	"github.com/gogpu/scanout/region"
)

func TestRecorder_Empty(t *testing.T) {
	r := NewRecorder("test")
	if r.Peek() {
		t.Error("new recorder should have no damage")
	}
	if d := r.Drain(); !d.IsEmpty() {
		t.Errorf("Drain() on empty recorder = %v, want empty", d)
	}
	if r.Epoch() != 0 {
		t.Errorf("Epoch() = %d after draining nothing, want 0", r.Epoch())
	}
}

func TestRecorder_ReportIdempotent(t *testing.T) {
	r := NewRecorder("test")
	b := region.BoxXYWH(10, 10, 100, 100)

	if err := r.ReportBox(b); err != nil {
		t.Fatalf("ReportBox() error = %v", err)
	}
	once := r.Region().Clone()

	if err := r.ReportBox(b); err != nil {
		t.Fatalf("ReportBox() error = %v", err)
	}
	if !r.Region().Equal(once) {
		t.Errorf("second report changed damage: %v, want %v", r.Region(), once)
	}
}

func TestRecorder_DrainClears(t *testing.T) {
	r := NewRecorder("test")
	r.ReportBox(region.BoxXYWH(0, 0, 8, 8))

	if !r.Peek() {
		t.Fatal("Peek() = false after report")
	}

	got := r.Drain()
	if got.Area() != 64 {
		t.Errorf("drained area = %d, want 64", got.Area())
	}
	if r.Peek() {
		t.Error("Peek() = true after Drain")
	}
	if r.Epoch() != 1 {
		t.Errorf("Epoch() = %d, want 1", r.Epoch())
	}

	// The drained region is independent of the recorder.
	r.ReportBox(region.BoxXYWH(100, 100, 1, 1))
	if got.Area() != 64 {
		t.Errorf("drained region changed after new report: area %d", got.Area())
	}
}

func TestRecorder_DrainUnion(t *testing.T) {
	r1 := region.New(region.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}, region.Box{X1: 50, Y1: 0, X2: 60, Y2: 10})
	r2 := region.New(region.Box{X1: 5, Y1: 40, X2: 25, Y2: 70})

	r := NewRecorder("test")
	r.Report(r1)
	r.Report(r2)

	got := r.Drain()

	wantExt := r1.Extents().Union(r2.Extents())
	if got.Extents() != wantExt {
		t.Errorf("Extents() = %v, want %v", got.Extents(), wantExt)
	}

	outside := got.Clone()
	outside.Subtract(r1)
	outside.Subtract(r2)
	if !outside.IsEmpty() {
		t.Errorf("drained region has area outside the reports: %v", outside)
	}
}

func TestRecorder_Destroy(t *testing.T) {
	r := NewRecorder("test")
	r.ReportBox(region.BoxXYWH(0, 0, 4, 4))
	r.Destroy()

	if r.Peek() {
		t.Error("destroyed recorder still has damage")
	}
	if !r.Destroyed() {
		t.Error("Destroyed() = false")
	}
	if err := r.ReportBox(region.BoxXYWH(0, 0, 4, 4)); !errors.Is(err, ErrDestroyed) {
		t.Errorf("ReportBox() after Destroy error = %v, want ErrDestroyed", err)
	}
	r.Destroy()
}
