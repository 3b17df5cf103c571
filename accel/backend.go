// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package accel

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scanout/surface"
)

// finishTimeout bounds how long Finish waits for the GPU queue to drain.
const finishTimeout = 5 * time.Second

// halProvider exposes the HAL objects behind a gpucontext.DeviceProvider.
// Implemented by the wgpu-backed providers of gogpu.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Backend is the selected rendering path.
//
// The zero value is a CPU backend with no sharing support.
type Backend struct {
	method   Method
	provider gpucontext.DeviceProvider
	device   hal.Device
	queue    hal.Queue
	exporter Exporter
}

// Option configures Select.
type Option func(*Backend)

// WithDeviceProvider supplies the GPU device for the GPU method.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(b *Backend) {
		b.provider = p
	}
}

// WithExporter supplies buffer sharing.
func WithExporter(e Exporter) Option {
	return func(b *Backend) {
		b.exporter = e
	}
}

// Select builds the backend for m. force24 is set when the front buffer is
// 24 bpp packed, which only the CPU and blit paths can feed through the
// shadow conversion.
func Select(m Method, force24 bool, opts ...Option) (*Backend, error) {
	b := &Backend{method: m}
	for _, opt := range opts {
		opt(b)
	}
	if m == GPU {
		if force24 {
			return nil, ErrPacked24
		}
		if b.provider == nil {
			return nil, ErrNoDevice
		}
		if err := b.resolveHAL(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Method returns the backend's method.
func (b *Backend) Method() Method {
	return b.method
}

// Accelerated reports whether rendering is offloaded from the CPU.
func (b *Backend) Accelerated() bool {
	return b.method != None
}

// GPU reports whether rendering runs on a GPU device.
func (b *Backend) GPU() bool {
	return b.method == GPU
}

// Provider returns the GPU device provider, or nil.
func (b *Backend) Provider() gpucontext.DeviceProvider {
	return b.provider
}

// resolveHAL pulls the HAL device and queue out of the provider.
func (b *Backend) resolveHAL() error {
	hp, ok := b.provider.(halProvider)
	if !ok {
		return fmt.Errorf("%w: provider does not expose HAL objects", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is not a hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is not a hal.Queue", ErrNoDevice)
	}
	b.device = device
	b.queue = queue
	return nil
}

// Finish blocks until all rendering already submitted has completed.
// It submits an empty batch signalling a fresh fence and waits on it.
// It is a no-op for backends without a GPU device.
func (b *Backend) Finish() error {
	if b.method != GPU || b.device == nil || b.queue == nil {
		return nil
	}
	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("accel: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("accel: submit fence: %w", err)
	}
	done, err := b.device.Wait(fence, 1, finishTimeout)
	if err != nil {
		return fmt.Errorf("accel: wait fence: %w", err)
	}
	if !done {
		return ErrFinishTimeout
	}
	return nil
}

// Shareable reports whether buffers can be exported and imported.
func (b *Backend) Shareable() bool {
	return b.exporter != nil
}

// ShareableFD exports the storage of s as a file descriptor.
func (b *Backend) ShareableFD(s *surface.Surface) (int, error) {
	if b.exporter == nil {
		return -1, ErrNotShareable
	}
	return b.exporter.ShareableFD(s)
}

// BackFromFD makes s use the buffer fd refers to.
func (b *Backend) BackFromFD(s *surface.Surface, fd int) error {
	if b.exporter == nil {
		return ErrNotShareable
	}
	return b.exporter.BackFromFD(s, fd)
}
