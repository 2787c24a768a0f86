// Copyright 2026 The duelgame Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/duelgame/shell"
)

// Name is the backend identifier in the device registry.
const Name = "wgpu"

func init() {
	shell.RegisterDevice(Name, 100, New, Available)
}

// Available reports whether the Vulkan HAL backend is compiled in.
// Driver presence is only known once New actually opens a device.
func Available() bool {
	_, ok := hal.GetBackend(gputypes.BackendVulkan)
	return ok
}

// RawWindow is the capability a window handle must offer for hardware surface
// creation. Desktop and Android drivers hand out handles implementing it when
// the platform exposes native handles.
type RawWindow interface {
	// DisplayHandle returns the native display handle (X11 Display,
	// ANativeWindow's JNIEnv, HINSTANCE).
	DisplayHandle() uintptr

	// WindowHandle returns the native window handle (X11 Window,
	// ANativeWindow, HWND).
	WindowHandle() uintptr
}

// device is the Vulkan-backed shell.Device.
type device struct {
	instance hal.Instance
	dev      hal.Device
	queue    hal.Queue
	format   gputypes.TextureFormat
	info     gputypes.AdapterInfo
}

// New opens the best available Vulkan adapter, preferring discrete GPUs.
func New() (shell.Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not compiled in", shell.ErrDeviceUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", shell.ErrDeviceUnavailable, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", shell.ErrDeviceUnavailable)
	}
	selected := pickAdapter(adapters)
	shell.Logger().Info("adapter selected",
		"name", selected.Info.Name, "type", selected.Info.DeviceType)

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", shell.ErrDeviceUnavailable, err)
	}

	return &device{
		instance: instance,
		dev:      openDev.Device,
		queue:    openDev.Queue,
		format:   gputypes.TextureFormatBGRA8Unorm,
		info:     selected.Info,
	}, nil
}

// pickAdapter prefers a discrete GPU, then an integrated one, then whatever
// is first.
func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			return &adapters[i]
		}
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

func (d *device) Name() string { return Name }

func (d *device) CreateSwapchain(win shell.WindowHandle, cfg shell.SurfaceConfig) (shell.Swapchain, error) {
	raw, ok := win.(RawWindow)
	if !ok {
		return nil, fmt.Errorf("%w: window handle %T does not expose native handles",
			shell.ErrSurfaceCreation, win)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", shell.ErrZeroSize, cfg.Width, cfg.Height)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = d.format
	}
	return newSwapchain(d, raw, cfg)
}

func (d *device) Provider() gpucontext.DeviceProvider {
	return &provider{dev: d}
}

func (d *device) Close() {
	if d.dev != nil {
		d.dev.Destroy()
		d.dev = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}

// provider shares the HAL device with rendering libraries. The gpucontext
// accessors return nil; consumers that can use a raw HAL device probe for
// HalDevice/HalQueue instead (gg's accelerators do).
type provider struct {
	dev *device
}

func (p *provider) Device() gpucontext.Device   { return nil }
func (p *provider) Queue() gpucontext.Queue     { return nil }
func (p *provider) Adapter() gpucontext.Adapter { return nil }
func (p *provider) SurfaceFormat() gputypes.TextureFormat {
	return p.dev.format
}
func (p *provider) AdapterInfo() gpucontext.AdapterInfo {
	var typ gpucontext.AdapterType
	switch p.dev.info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		typ = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		typ = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		typ = gpucontext.AdapterTypeSoftware
	default:
		typ = gpucontext.AdapterTypeUnknown
	}
	return gpucontext.AdapterInfo{
		Name: p.dev.info.Name,
		Type: typ,
	}
}

// HalDevice returns the underlying hal.Device for device sharing.
func (p *provider) HalDevice() any { return p.dev.dev }

// HalQueue returns the underlying hal.Queue for device sharing.
func (p *provider) HalQueue() any { return p.dev.queue }

var (
	_ gpucontext.DeviceProvider = (*provider)(nil)
	_ shell.Device              = (*device)(nil)
)
