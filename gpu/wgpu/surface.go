// Copyright 2026 The duelgame Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/duelgame/shell"
)

// swapchain binds a HAL surface to one native window. All HAL surface calls
// in this package live here; everything else goes through shell interfaces.
type swapchain struct {
	dev      *device
	surface  hal.Surface
	cfg      shell.SurfaceConfig
	released bool
}

func newSwapchain(d *device, raw RawWindow, cfg shell.SurfaceConfig) (*swapchain, error) {
	surface, err := d.instance.CreateSurface(raw.DisplayHandle(), raw.WindowHandle())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shell.ErrSurfaceCreation, err)
	}
	s := &swapchain{dev: d, surface: surface}
	if err := s.Configure(cfg); err != nil {
		s.Release()
		return nil, fmt.Errorf("%w: %w", shell.ErrSurfaceCreation, err)
	}
	return s, nil
}

func (s *swapchain) Configure(cfg shell.SurfaceConfig) error {
	if s.released {
		return shell.ErrSurfaceReleased
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", shell.ErrZeroSize, cfg.Width, cfg.Height)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = s.dev.format
	}
	err := s.surface.Configure(s.dev.dev, &hal.SurfaceConfiguration{
		Width:       uint32(cfg.Width),
		Height:      uint32(cfg.Height),
		Format:      cfg.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: presentMode(cfg.PresentMode),
	})
	if err != nil {
		// A failed configure means the surface no longer matches the
		// window; the manager re-creates it.
		return fmt.Errorf("%w: %w", shell.ErrSurfaceLost, err)
	}
	s.cfg = cfg
	return nil
}

// Acquire obtains the next surface texture. The HAL bounds the wait itself
// and reports hal.ErrTimeout; no fence is passed, matching an unsignaled
// acquire.
func (s *swapchain) Acquire(_ time.Duration) (shell.FrameTarget, error) {
	if s.released {
		return nil, shell.ErrSurfaceReleased
	}
	acquired, err := s.surface.AcquireTexture(nil)
	if err != nil {
		return nil, classifyAcquire(err)
	}
	if acquired.Suboptimal {
		// Present anyway; the caller reconfigures on the next tick.
		shell.Logger().Debug("suboptimal surface texture acquired")
	}
	return &frame{
		texture: acquired.Texture,
		width:   s.cfg.Width,
		height:  s.cfg.Height,
	}, nil
}

func (s *swapchain) Present(t shell.FrameTarget) error {
	if s.released {
		return shell.ErrSurfaceReleased
	}
	f, ok := t.(*frame)
	if !ok {
		return fmt.Errorf("%w: foreign frame target %T", shell.ErrSurfaceLost, t)
	}
	if f.done {
		return shell.ErrFramePresented
	}
	f.done = true
	if err := s.dev.queue.Present(s.surface, f.texture, nil); err != nil {
		return fmt.Errorf("%w: %w", shell.ErrSurfaceOutdated, err)
	}
	return nil
}

func (s *swapchain) Discard(t shell.FrameTarget) {
	f, ok := t.(*frame)
	if !ok || f.done {
		return
	}
	f.done = true
	s.surface.DiscardTexture(f.texture)
}

func (s *swapchain) Release() {
	if s.released {
		return
	}
	s.released = true
	s.surface.Unconfigure(s.dev.dev)
	s.surface.Destroy()
}

// classifyAcquire maps HAL acquire failures onto the shell taxonomy.
// A timeout drops the frame; everything else asks for reconfiguration.
func classifyAcquire(err error) error {
	if errors.Is(err, hal.ErrTimeout) {
		return fmt.Errorf("%w: %w", shell.ErrPresentTimeout, err)
	}
	return fmt.Errorf("%w: %w", shell.ErrSurfaceOutdated, err)
}

func presentMode(m shell.PresentMode) gputypes.PresentMode {
	switch m {
	case shell.PresentModeMailbox:
		return gputypes.PresentModeMailbox
	case shell.PresentModeImmediate:
		return gputypes.PresentModeImmediate
	default:
		return gputypes.PresentModeFifo
	}
}

// frame is one acquired surface texture.
type frame struct {
	texture hal.SurfaceTexture
	width   int
	height  int
	done    bool
}

func (f *frame) Size() (int, int) { return f.width, f.height }

// TextureView returns the acquired surface texture. It satisfies hal.Texture;
// renderers create whatever views they need through the device.
func (f *frame) TextureView() any { return f.texture }

var (
	_ shell.Swapchain     = (*swapchain)(nil)
	_ shell.TextureTarget = (*frame)(nil)
)
