// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/accel"
	"github.com/gogpu/scanout/surface"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
device        = "/dev/dri/card1"
shadow_fb     = false
double_shadow = true
accel_method  = "EXA"
tile_size     = 32
page_flip     = false
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Device != "/dev/dri/card1" {
		t.Errorf("Device = %q", cfg.Device)
	}
	if cfg.ShadowFB == nil || *cfg.ShadowFB {
		t.Errorf("ShadowFB = %v, want false", cfg.ShadowFB)
	}
	if cfg.DoubleShadow == nil || !*cfg.DoubleShadow {
		t.Errorf("DoubleShadow = %v, want true", cfg.DoubleShadow)
	}
	if cfg.Method() != accel.Blit {
		t.Errorf("Method() = %v, want blit", cfg.Method())
	}
	if cfg.TileSize != 32 {
		t.Errorf("TileSize = %d", cfg.TileSize)
	}
	if cfg.PageFlip == nil || *cfg.PageFlip {
		t.Errorf("PageFlip = %v, want false", cfg.PageFlip)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.ShadowFB != nil || cfg.DoubleShadow != nil || cfg.PageFlip != nil {
		t.Error("unset keys must stay nil")
	}
	if cfg.Method() != accel.None {
		t.Errorf("Method() = %v, want none", cfg.Method())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"unknown key", `shadowfb = true`, true},
		{"bad method", `accel_method = "sna"`, true},
		{"negative tile", `tile_size = -1`, true},
		{"bad syntax", `shadow_fb = `, false},
		{"wrong type", `tile_size = "big"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() succeeded")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err = %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanout.toml")
	if err := os.WriteFile(path, []byte("tile_size = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TileSize != 8 {
		t.Errorf("TileSize = %d, want 8", cfg.TileSize)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg, err := Parse([]byte("shadow_fb = false\naccel_method = \"blit\""))
	if err != nil {
		t.Fatal(err)
	}

	scr := scanout.NewScreen(cfg.Options()...)
	root, err := surface.New(8, 8, 32, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	if err := scr.CreateResources(root); err != nil {
		t.Fatal(err)
	}
	defer scr.CloseResources()

	if scr.Shadow().Enabled {
		t.Error("shadow_fb = false not applied")
	}
	if scr.Backend().Method() != accel.Blit {
		t.Errorf("accel = %v, want blit", scr.Backend().Method())
	}
	if scr.DrawSurface() != root {
		t.Error("render path not drawing into the root without a shadow")
	}
}
