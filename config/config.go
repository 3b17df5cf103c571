// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the driver option file.
//
// The file is TOML:
//
//	device        = "/dev/dri/card1"
//	shadow_fb     = true
//	double_shadow = false
//	accel_method  = "glamor"
//	tile_size     = 16
//	page_flip     = true
//
// Every key is optional. An unset key keeps the value probed from the
// kernel or the built-in default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/accel"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid option")

// Config holds the driver options.
type Config struct {
	// Device is the DRM card node. Empty means $KMSDEVICE or the default card.
	Device string `toml:"device"`

	ShadowFB     *bool  `toml:"shadow_fb"`
	DoubleShadow *bool  `toml:"double_shadow"`
	AccelMethod  string `toml:"accel_method"`
	TileSize     int    `toml:"tile_size"`
	PageFlip     *bool  `toml:"page_flip"`

	method accel.Method
}

// Load reads and validates the option file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates an option file. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, missing.String())
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	m, err := accel.ParseMethod(c.AccelMethod)
	if err != nil {
		return fmt.Errorf("%w: accel_method: %w", ErrInvalid, err)
	}
	c.method = m
	if c.TileSize < 0 {
		return fmt.Errorf("%w: tile_size %d", ErrInvalid, c.TileSize)
	}
	return nil
}

// Method returns the parsed acceleration method.
func (c *Config) Method() accel.Method {
	return c.method
}

// Options converts the file into screen options. Extra options, such as
// the kernel or a GPU device provider, are appended after the file's.
func (c *Config) Options(extra ...scanout.ScreenOption) []scanout.ScreenOption {
	var opts []scanout.ScreenOption
	if c.ShadowFB != nil {
		opts = append(opts, scanout.WithShadow(*c.ShadowFB))
	}
	if c.DoubleShadow != nil {
		opts = append(opts, scanout.WithDoubleShadow(*c.DoubleShadow))
	}
	if c.TileSize > 0 {
		opts = append(opts, scanout.WithTileSize(c.TileSize))
	}
	pageFlip := true
	if c.PageFlip != nil {
		pageFlip = *c.PageFlip
	}
	opts = append(opts, scanout.WithPageFlip(pageFlip))
	if c.method != accel.None {
		opts = append(opts, scanout.WithAccel(c.method))
	}
	return append(opts, extra...)
}
