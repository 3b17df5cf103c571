// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/region"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		w, h, bpp  int
		wantStride int
		wantErr    bool
	}{
		{"32bpp", 64, 32, 32, 256, false},
		{"24bpp", 10, 10, 24, 30, false},
		{"16bpp", 10, 10, 16, 20, false},
		{"zero width", 0, 10, 32, 0, true},
		{"negative height", 10, -1, 32, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.w, tt.h, tt.bpp, 0)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Fatalf("New() error = %v, want ErrInvalidDimensions", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if s.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", s.Stride, tt.wantStride)
			}
			if len(s.Pix) != tt.wantStride*tt.h {
				t.Errorf("len(Pix) = %d, want %d", len(s.Pix), tt.wantStride*tt.h)
			}
		})
	}
}

func TestNewFromPixels(t *testing.T) {
	pix := make([]byte, 128*10)

	s, err := NewFromPixels(30, 10, 128, 32, gputypes.TextureFormatBGRA8Unorm, pix)
	if err != nil {
		t.Fatalf("NewFromPixels() error = %v", err)
	}
	if s.PixOffset(2, 3) != 3*128+8 {
		t.Errorf("PixOffset(2,3) = %d, want %d", s.PixOffset(2, 3), 3*128+8)
	}
	if len(s.Row(1)) != 30*4 {
		t.Errorf("len(Row(1)) = %d, want 120", len(s.Row(1)))
	}

	if _, err := NewFromPixels(30, 10, 128, 32, 0, pix[:100]); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short buffer error = %v, want ErrShortBuffer", err)
	}
	if _, err := NewFromPixels(30, 10, 64, 32, 0, pix); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("narrow stride error = %v, want ErrInvalidDimensions", err)
	}
}

func TestSurface_Image(t *testing.T) {
	s, _ := New(8, 4, 32, gputypes.TextureFormatBGRA8Unorm)
	img, ok := s.Image()
	if !ok {
		t.Fatal("Image() ok = false for tightly packed BGRA surface")
	}
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}

	img.Set(1, 2, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
	off := 2*s.Stride + 4
	want := []byte{0x30, 0x20, 0x10, 0xFF}
	if got := s.Pix[off : off+4]; !bytes.Equal(got, want) {
		t.Errorf("pixel (1,2) bytes = % x, want % x", got, want)
	}
	if r, g, b, _ := img.At(1, 2).RGBA(); r>>8 != 0x10 || g>>8 != 0x20 || b>>8 != 0x30 {
		t.Errorf("At(1,2) = %x %x %x", r>>8, g>>8, b>>8)
	}

	packed, _ := New(8, 4, 24, 0)
	if _, ok := packed.Image(); ok {
		t.Error("Image() ok = true for 24bpp surface")
	}
}

func TestSurface_RegisterOrder(t *testing.T) {
	s, _ := New(100, 100, 32, 0)
	a := damage.NewRecorder("a")
	b := damage.NewRecorder("b")

	s.Register(a)
	s.Register(b)
	s.Register(a)
	if s.Recorders() != 2 {
		t.Fatalf("Recorders() = %d, want 2", s.Recorders())
	}

	s.DamageBox(region.BoxXYWH(0, 0, 10, 10))
	if !a.Peek() || !b.Peek() {
		t.Errorf("damage not delivered to every recorder: a=%v b=%v", a.Peek(), b.Peek())
	}
}

func TestSurface_PendingNotVisible(t *testing.T) {
	s, _ := New(100, 100, 32, 0)
	rec := damage.NewRecorder("r")
	s.Register(rec)

	s.AppendDamageBox(region.BoxXYWH(5, 5, 10, 10))
	if rec.Peek() {
		t.Error("pending damage reached the recorder before ProcessPending")
	}
	if s.Pending().Area() != 100 {
		t.Errorf("Pending().Area() = %d, want 100", s.Pending().Area())
	}

	s.ProcessPending()
	if !rec.Peek() {
		t.Error("ProcessPending did not deliver damage")
	}
	if !s.Pending().IsEmpty() {
		t.Error("pending set not cleared after ProcessPending")
	}
}

func TestSurface_Unregister(t *testing.T) {
	s, _ := New(100, 100, 32, 0)
	rec := damage.NewRecorder("r")
	s.Register(rec)
	s.Unregister(rec)

	if s.Registered(rec) {
		t.Fatal("Registered() = true after Unregister")
	}
	s.DamageAll()
	if rec.Peek() {
		t.Error("unregistered recorder received damage")
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleMaster, "master"},
		{RoleShadow, "shadow"},
		{RoleSlave, "slave"},
		{Role(9), "Role(9)"},
	}
	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}
