// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

// Command scanoutd drives the scanout damage pipeline on a DRM card.
//
// It allocates a dumb scanout buffer, animates a few rectangles into it
// and pushes the damage to the kernel once per frame. Options are read from
// a TOML file:
//
//	scanoutd -config /etc/scanout.toml
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/config"
	"github.com/gogpu/scanout/internal/drm"
	"github.com/gogpu/scanout/region"
	"github.com/gogpu/scanout/surface"
)

const (
	width     = 1024
	height    = 768
	frameTime = 16 * time.Millisecond
)

func main() {
	configPath := flag.String("config", "", "driver option file (TOML)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	scanout.SetLogger(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("scanoutd failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	card, err := drm.Open(cfg.Device)
	if err != nil {
		return err
	}
	defer card.Close()

	fb, err := newScanoutBuffer(card)
	if err != nil {
		return err
	}
	defer fb.release(card)

	scr := scanout.NewScreen(cfg.Options(scanout.WithKernel(card))...)
	if err := scr.CreateResources(fb.surf); err != nil {
		return fmt.Errorf("create resources: %w", err)
	}
	defer scr.CloseResources()

	img, ok := scr.DrawSurface().Image()
	if !ok {
		return fmt.Errorf("draw surface %s cannot be painted", scr.DrawSurface())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	a := newAnimation(img)
	frames := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("scanoutd stopped", "frames", frames)
			return nil
		case <-ticker.C:
		}

		scr.Damage(a.step())
		timeout := frameTime
		scr.BlockHandler(&timeout)
		frames++
	}
}

// scanoutBuffer is a mapped dumb buffer with a framebuffer on top.
type scanoutBuffer struct {
	dumb drm.Dumb
	pix  []byte
	surf *surface.Surface
}

func newScanoutBuffer(card *drm.Card) (*scanoutBuffer, error) {
	d, err := card.CreateDumb(width, height, 32)
	if err != nil {
		return nil, err
	}
	b := &scanoutBuffer{dumb: d}

	if b.pix, err = card.MapDumb(d); err != nil {
		b.release(card)
		return nil, err
	}
	b.surf, err = surface.NewFromPixels(width, height, d.Pitch, 32, gputypes.TextureFormatBGRA8Unorm, b.pix)
	if err != nil {
		b.release(card)
		return nil, err
	}
	if b.surf.FBID, err = card.AddFB(width, height, d.Pitch, 32, 24, d.Handle); err != nil {
		b.release(card)
		return nil, err
	}
	return b, nil
}

func (b *scanoutBuffer) release(card *drm.Card) {
	if b.surf != nil && b.surf.FBID != 0 {
		_ = card.RmFB(b.surf.FBID)
	}
	if b.pix != nil {
		_ = card.Unmap(b.pix)
	}
	_ = card.DestroyDumb(b.dumb)
}

// animation bounces a textured square across the screen.
type animation struct {
	dst    xdraw.Image
	sprite image.Image
	pos    image.Point
	vel    image.Point
	size   int
}

func newAnimation(dst xdraw.Image) *animation {
	sprite := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			c := color.RGBA{0x20, 0x60, 0xE0, 0xFF}
			if (x+y)%2 == 0 {
				c = color.RGBA{0xF0, 0xA0, 0x20, 0xFF}
			}
			sprite.SetRGBA(x, y, c)
		}
	}
	xdraw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, xdraw.Src)
	return &animation{dst: dst, sprite: sprite, vel: image.Pt(7, 5), size: 96}
}

// step moves the square and returns the damaged area: where it was and
// where it is now.
func (a *animation) step() *region.Region {
	old := image.Rectangle{Min: a.pos, Max: a.pos.Add(image.Pt(a.size, a.size))}
	xdraw.Draw(a.dst, old, image.Black, image.Point{}, xdraw.Src)

	b := a.dst.Bounds()
	a.pos = a.pos.Add(a.vel)
	if a.pos.X < b.Min.X || a.pos.X+a.size > b.Max.X {
		a.vel.X = -a.vel.X
		a.pos.X += 2 * a.vel.X
	}
	if a.pos.Y < b.Min.Y || a.pos.Y+a.size > b.Max.Y {
		a.vel.Y = -a.vel.Y
		a.pos.Y += 2 * a.vel.Y
	}

	cur := image.Rectangle{Min: a.pos, Max: a.pos.Add(image.Pt(a.size, a.size))}
	xdraw.NearestNeighbor.Scale(a.dst, cur, a.sprite, a.sprite.Bounds(), xdraw.Src, nil)

	return region.FromRects([]image.Rectangle{old, cur})
}
