// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package accel

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scanout/surface"
)

// mockHALDevice is a test double for hal.Device. Only the fence methods
// used by Finish are implemented; anything else panics on the nil embed.
type mockHALDevice struct {
	hal.Device

	waitErr  error
	timedOut bool

	fences    int
	destroyed int
	waits     int
}

//nolint:nilnil // Mock: the fence handle is never inspected.
func (d *mockHALDevice) CreateFence() (hal.Fence, error) {
	d.fences++
	return nil, nil
}

func (d *mockHALDevice) DestroyFence(_ hal.Fence) { d.destroyed++ }

func (d *mockHALDevice) Wait(_ hal.Fence, value uint64, _ time.Duration) (bool, error) {
	d.waits++
	if d.waitErr != nil {
		return false, d.waitErr
	}
	return !d.timedOut && value == 1, nil
}

// mockHALQueue is a test double for hal.Queue that records fence submissions.
type mockHALQueue struct {
	hal.Queue

	submitErr error
	submits   []uint64
}

func (q *mockHALQueue) Submit(cmds []hal.CommandBuffer, _ hal.Fence, value uint64) error {
	if len(cmds) != 0 {
		return errors.New("unexpected command buffers")
	}
	q.submits = append(q.submits, value)
	return q.submitErr
}

type mockDevice struct{}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider and exposes HAL objects.
type mockProvider struct {
	device *mockHALDevice
	queue  *mockHALQueue
}

func newMockProvider() *mockProvider {
	return &mockProvider{device: &mockHALDevice{}, queue: &mockHALQueue{}}
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeDiscrete}
}
func (m *mockProvider) HalDevice() any { return m.device }
func (m *mockProvider) HalQueue() any  { return m.queue }

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

// plainProvider is a DeviceProvider without HAL access.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (plainProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (plainProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

type mockExporter struct {
	imported int
}

func (m *mockExporter) ShareableFD(*surface.Surface) (int, error) { return 9, nil }
func (m *mockExporter) BackFromFD(_ *surface.Surface, fd int) error {
	m.imported = fd
	return nil
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Shadow", None, false},
		{"glamor", GPU, false},
		{"GPU", GPU, false},
		{"exa", Blit, false},
		{" blit ", Blit, false},
		{"sna", None, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownMethod) {
				t.Errorf("error = %v, want ErrUnknownMethod", err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	p := newMockProvider()

	tests := []struct {
		name    string
		method  Method
		force24 bool
		opts    []Option
		wantErr error
	}{
		{"cpu", None, false, nil, nil},
		{"cpu packed", None, true, nil, nil},
		{"blit packed", Blit, true, nil, nil},
		{"gpu", GPU, false, []Option{WithDeviceProvider(p)}, nil},
		{"gpu packed", GPU, true, []Option{WithDeviceProvider(p)}, ErrPacked24},
		{"gpu without device", GPU, false, nil, ErrNoDevice},
		{"gpu without hal", GPU, false, []Option{WithDeviceProvider(plainProvider{})}, ErrNoDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Select(tt.method, tt.force24, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && b.Method() != tt.method {
				t.Errorf("Method() = %v, want %v", b.Method(), tt.method)
			}
		})
	}
}

func TestBackend_Finish(t *testing.T) {
	p := newMockProvider()
	b, err := Select(GPU, false, WithDeviceProvider(p))
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err := b.Finish(); err != nil {
			t.Fatalf("Finish() error = %v", err)
		}
	}
	if p.device.waits != 2 || len(p.queue.submits) != 2 {
		t.Errorf("waits = %d, submits = %d, want 2 each", p.device.waits, len(p.queue.submits))
	}
	if p.device.fences != p.device.destroyed {
		t.Errorf("fences created = %d, destroyed = %d", p.device.fences, p.device.destroyed)
	}

	cpu, _ := Select(None, false, WithDeviceProvider(p))
	if err := cpu.Finish(); err != nil {
		t.Fatalf("CPU Finish() error = %v", err)
	}
	if p.device.waits != 2 {
		t.Error("CPU backend waited on the device")
	}
}

func TestBackend_FinishErrors(t *testing.T) {
	errGPU := errors.New("device lost")

	tests := []struct {
		name    string
		setup   func(*mockProvider)
		wantErr error
	}{
		{"submit fails", func(p *mockProvider) { p.queue.submitErr = errGPU }, errGPU},
		{"wait fails", func(p *mockProvider) { p.device.waitErr = errGPU }, errGPU},
		{"timeout", func(p *mockProvider) { p.device.timedOut = true }, ErrFinishTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMockProvider()
			tt.setup(p)
			b, err := Select(GPU, false, WithDeviceProvider(p))
			if err != nil {
				t.Fatal(err)
			}
			if err := b.Finish(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Finish() error = %v, want %v", err, tt.wantErr)
			}
			if p.device.fences != p.device.destroyed {
				t.Errorf("fence leaked: created %d, destroyed %d", p.device.fences, p.device.destroyed)
			}
		})
	}
}

func TestBackend_Sharing(t *testing.T) {
	s, _ := surface.New(4, 4, 32, 0)

	var plain Backend
	if _, err := plain.ShareableFD(s); !errors.Is(err, ErrNotShareable) {
		t.Errorf("ShareableFD() error = %v, want ErrNotShareable", err)
	}
	if err := plain.BackFromFD(s, 3); !errors.Is(err, ErrNotShareable) {
		t.Errorf("BackFromFD() error = %v, want ErrNotShareable", err)
	}

	ex := &mockExporter{}
	b, _ := Select(Blit, false, WithExporter(ex))
	if fd, err := b.ShareableFD(s); err != nil || fd != 9 {
		t.Errorf("ShareableFD() = %d, %v", fd, err)
	}
	if err := b.BackFromFD(s, 5); err != nil || ex.imported != 5 {
		t.Errorf("BackFromFD() error = %v, imported = %d", err, ex.imported)
	}
}
