// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package drm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/mirror"
	"github.com/gogpu/scanout/shadow"
)

var (
	_ dispatch.Kernel   = (*Card)(nil)
	_ shadow.CapQuerier = (*Card)(nil)
	_ mirror.Importer   = (*Card)(nil)
)

// Request numbers as found in <drm/drm.h> on 64-bit targets.
func TestIoctlNumbers(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"VERSION", ioctlVersion, 0xc0406400},
		{"GET_CAP", ioctlGetCap, 0xc010640c},
		{"PRIME_FD_TO_HANDLE", ioctlPrimeFDToHandle, 0xc00c642e},
		{"MODE_ADDFB", ioctlModeAddFB, 0xc01c64ae},
		{"MODE_RMFB", ioctlModeRmFB, 0xc00464af},
		{"MODE_DIRTYFB", ioctlModeDirtyFB, 0xc01864b1},
		{"MODE_CREATE_DUMB", ioctlModeCreateDumb, 0xc02064b2},
		{"MODE_MAP_DUMB", ioctlModeMapDumb, 0xc01064b3},
		{"MODE_DESTROY_DUMB", ioctlModeDestroyDumb, 0xc00464b4},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#x, want %#x", tt.name, tt.got, tt.want)
		}
	}
}

func TestClipLayout(t *testing.T) {
	// dispatch.Clip is handed to the kernel as struct drm_clip_rect.
	if got := unsafe.Sizeof(dispatch.Clip{}); got != 8 {
		t.Errorf("sizeof(Clip) = %d, want 8", got)
	}
}

func TestOpen_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card9")
	if _, err := Open(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want not exist", err)
	}
}

func TestOpen_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake-card")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDevice, path)

	c, err := Open("")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if err := c.DirtyFB(1, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("DirtyFB() on closed card error = %v, want ErrClosed", err)
	}
}
