package shell

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
)

// SurfaceManager owns the GPU device/queue/surface triple. The device is
// process-wide: it is created lazily on first use and reused across surface
// recreations. The swapchain is per-window and is recreated, never mutated in
// place, when the window changes.
//
// SurfaceManager is not safe for concurrent use; the lifecycle machine and
// frame loop drive it from a single goroutine.
type SurfaceManager struct {
	newDevice func() (Device, error)

	device    Device
	swapchain Swapchain

	handle     WindowHandle
	config     SurfaceConfig
	configured bool // swapchain matches config and is presentable

	reconfigures uint64 // swapchain (re)configurations actually performed
}

// NewSurfaceManager creates a manager starting from the given base surface
// configuration. If dev is nil the device is created lazily from the backend
// registry (DefaultDevice) on first surface creation.
func NewSurfaceManager(base SurfaceConfig, dev Device) *SurfaceManager {
	m := &SurfaceManager{
		newDevice: DefaultDevice,
		device:    dev,
		config:    base,
	}
	return m
}

// Create binds a surface to the given window, initializing the GPU device
// first if needed.
//
// A zero size is recorded and deferred with ErrZeroSize. A device that cannot
// be created yields ErrDeviceUnavailable, which is fatal for the session.
func (m *SurfaceManager) Create(handle WindowHandle, width, height int) error {
	if handle == nil {
		return fmt.Errorf("%w: nil window handle", ErrSurfaceCreation)
	}
	m.handle = handle
	if width <= 0 || height <= 0 {
		m.config = m.config.withSize(width, height)
		m.configured = false
		return fmt.Errorf("%w: %dx%d", ErrZeroSize, width, height)
	}

	if m.device == nil {
		dev, err := m.newDevice()
		if err != nil {
			if errors.Is(err, ErrDeviceUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		m.device = dev
		Logger().Info("gpu device initialized", "backend", dev.Name())
	}

	// The previous swapchain, if any, belongs to a window that no longer
	// exists. Drop it before binding the new one.
	if m.swapchain != nil {
		m.swapchain.Release()
		m.swapchain = nil
	}

	cfg := m.config.withSize(width, height)
	sc, err := m.device.CreateSwapchain(handle, cfg)
	if err != nil {
		m.configured = false
		if errors.Is(err, ErrDeviceUnavailable) || errors.Is(err, ErrSurfaceCreation) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSurfaceCreation, err)
	}
	m.swapchain = sc
	m.config = cfg
	m.configured = true
	m.reconfigures++
	Logger().Info("surface created", "width", width, "height", height)
	return nil
}

// Reconfigure applies a new size to the surface. Repeated calls with the
// current size are no-ops. A zero size is recorded and deferred with
// ErrZeroSize. If the surface was released or lost and a window handle is
// still known, Reconfigure performs a full re-creation.
func (m *SurfaceManager) Reconfigure(width, height int) error {
	if width <= 0 || height <= 0 {
		m.config = m.config.withSize(width, height)
		m.configured = false
		return fmt.Errorf("%w: %dx%d", ErrZeroSize, width, height)
	}

	if m.swapchain == nil {
		if m.handle == nil {
			return fmt.Errorf("%w: no window handle", ErrSurfaceCreation)
		}
		return m.Create(m.handle, width, height)
	}

	if m.configured && m.config.Width == width && m.config.Height == height {
		return nil
	}

	cfg := m.config.withSize(width, height)
	if err := m.swapchain.Configure(cfg); err != nil {
		m.configured = false
		if errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceReleased) {
			m.loseSurface()
		}
		return err
	}
	m.config = cfg
	m.configured = true
	m.reconfigures++
	Logger().Debug("surface reconfigured", "width", width, "height", height)
	return nil
}

// Release drops the surface. The native window may already be gone (Android
// destroys it at will), so nothing touches the surface after this call; any
// outstanding frame target is invalidated. Release is idempotent and keeps
// the window handle so a later resume can re-create the surface.
func (m *SurfaceManager) Release() {
	if m.swapchain != nil {
		m.swapchain.Release()
		m.swapchain = nil
		Logger().Info("surface released")
	}
	m.configured = false
}

// InvalidateWindow forgets the stored window handle in addition to releasing
// the surface. Used on platforms where suspend destroys the native window.
func (m *SurfaceManager) InvalidateWindow() {
	m.Release()
	m.handle = nil
}

// CanPresent reports whether a presentable, nonzero-sized surface exists.
func (m *SurfaceManager) CanPresent() bool {
	return m.swapchain != nil && m.configured &&
		m.config.Width > 0 && m.config.Height > 0
}

// Size returns the current surface configuration size.
func (m *SurfaceManager) Size() (width, height int) {
	return m.config.Width, m.config.Height
}

// Acquire obtains the next frame target with a bounded wait.
func (m *SurfaceManager) Acquire(timeout time.Duration) (FrameTarget, error) {
	if m.swapchain == nil || !m.configured {
		return nil, ErrSurfaceReleased
	}
	t, err := m.swapchain.Acquire(timeout)
	if err != nil {
		if errors.Is(err, ErrSurfaceLost) {
			m.loseSurface()
		}
		return nil, err
	}
	return t, nil
}

// Present displays an acquired frame target.
func (m *SurfaceManager) Present(t FrameTarget) error {
	if m.swapchain == nil {
		return ErrSurfaceReleased
	}
	err := m.swapchain.Present(t)
	if err != nil && errors.Is(err, ErrSurfaceLost) {
		m.loseSurface()
	}
	return err
}

// Discard abandons an acquired frame target without presenting it.
func (m *SurfaceManager) Discard(t FrameTarget) {
	if m.swapchain != nil && t != nil {
		m.swapchain.Discard(t)
	}
}

// loseSurface handles device loss: it is fatal to the current surface but not
// to the process. Both swapchain and device are dropped so the next resume or
// window-created event re-creates them from scratch.
func (m *SurfaceManager) loseSurface() {
	Logger().Warn("surface lost, dropping device for full re-creation")
	if m.swapchain != nil {
		m.swapchain.Release()
		m.swapchain = nil
	}
	m.configured = false
	if m.device != nil {
		m.device.Close()
		m.device = nil
	}
}

// Provider exposes the current device for sharing with rendering libraries,
// or nil when no device exists yet.
func (m *SurfaceManager) Provider() gpucontext.DeviceProvider {
	if m.device == nil {
		return nil
	}
	return m.device.Provider()
}

// Swapchain returns the current swapchain, or nil. Hosts use it to reach
// backend-specific accessors such as the software swapchain's Front.
func (m *SurfaceManager) Swapchain() Swapchain { return m.swapchain }

// Reconfigures returns how many swapchain configurations were actually
// performed (idempotent repeats excluded).
func (m *SurfaceManager) Reconfigures() uint64 { return m.reconfigures }

// Close releases the surface and the device.
func (m *SurfaceManager) Close() {
	m.Release()
	if m.device != nil {
		m.device.Close()
		m.device = nil
	}
}
