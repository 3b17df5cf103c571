// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package accel selects the rendering backend that feeds pixels into the
// scanout buffers and exposes the two things the damage core needs from it:
// a completion barrier and buffer sharing across devices.
//
// The backend is chosen once, at screen setup, from a small fixed set of
// methods. Nothing is looked up by name afterwards; capabilities are checked
// through the Backend value.
package accel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/scanout/surface"
)

var (
	// ErrUnknownMethod is returned by ParseMethod for an unrecognised name.
	ErrUnknownMethod = errors.New("accel: unknown acceleration method")

	// ErrPacked24 is returned when GPU rendering is asked for on a screen
	// whose front buffer is 24 bpp packed.
	ErrPacked24 = errors.New("accel: GPU rendering cannot target a 24bpp packed front buffer")

	// ErrNoDevice is returned when the GPU method is selected without a
	// device provider.
	ErrNoDevice = errors.New("accel: GPU method needs a device provider")

	// ErrNotShareable is returned when the backend cannot export or import
	// buffers.
	ErrNotShareable = errors.New("accel: buffer sharing not supported")

	// ErrFinishTimeout is returned by Backend.Finish when the GPU queue
	// did not drain in time.
	ErrFinishTimeout = errors.New("accel: timed out waiting for the GPU")
)

// Method is the rendering path in use.
type Method uint8

const (
	// None renders on the CPU.
	None Method = iota

	// GPU renders through a GPU device.
	GPU

	// Blit uses a 2D blitter for copies and the CPU for the rest.
	Blit
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case GPU:
		return "gpu"
	case Blit:
		return "blit"
	default:
		return fmt.Sprintf("Method(%d)", m)
	}
}

// ParseMethod maps a configuration value to a Method. The X.Org names
// "glamor" and "exa" are accepted as aliases. Matching ignores case.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "shadow", "cpu":
		return None, nil
	case "gpu", "glamor":
		return GPU, nil
	case "blit", "exa":
		return Blit, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Exporter moves buffers between devices as dma-buf file descriptors.
// Backends that can share buffers provide one.
type Exporter interface {
	// ShareableFD exports the storage behind s.
	ShareableFD(s *surface.Surface) (int, error)

	// BackFromFD replaces the storage behind s with the buffer fd refers to.
	BackFromFD(s *surface.Surface, fd int) error
}
