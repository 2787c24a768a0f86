package shell

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceSoftware is the identifier of the built-in software device backend.
const DeviceSoftware = "software"

func init() {
	RegisterDevice(DeviceSoftware, 10, func() (Device, error) {
		return &softwareDevice{}, nil
	}, nil)
}

// softwareDevice is the CPU fallback backend. Frames are plain RGBA buffers;
// Present keeps the most recent frame so hosts (and tests) can observe it.
// It is always available, mirroring the priority order hardware > software.
type softwareDevice struct{}

func (*softwareDevice) Name() string { return DeviceSoftware }

func (*softwareDevice) CreateSwapchain(win WindowHandle, cfg SurfaceConfig) (Swapchain, error) {
	if win == nil {
		return nil, fmt.Errorf("%w: nil window handle", ErrSurfaceCreation)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, cfg.Width, cfg.Height)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = gputypes.TextureFormatRGBA8Unorm
	}
	return &softwareSwapchain{cfg: cfg}, nil
}

func (*softwareDevice) Provider() gpucontext.DeviceProvider {
	return softwareProvider{}
}

func (*softwareDevice) Close() {}

// softwareProvider is a DeviceProvider with no GPU behind it, for renderers
// that probe for device sharing and fall back to CPU when there is none.
type softwareProvider struct{}

func (softwareProvider) Device() gpucontext.Device   { return nil }
func (softwareProvider) Queue() gpucontext.Queue     { return nil }
func (softwareProvider) Adapter() gpucontext.Adapter { return nil }
func (softwareProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}
func (softwareProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: DeviceSoftware, Type: gpucontext.AdapterTypeSoftware}
}

var _ gpucontext.DeviceProvider = softwareProvider{}

// softwareSwapchain is a CPU-backed swapchain. Like every Swapchain it is
// exclusively owned by the SurfaceManager and used from a single goroutine.
type softwareSwapchain struct {
	cfg      SurfaceConfig
	released bool
	front    *image.RGBA // most recently presented frame
}

func (s *softwareSwapchain) Configure(cfg SurfaceConfig) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroSize, cfg.Width, cfg.Height)
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = s.cfg.Format
	}
	s.cfg = cfg
	return nil
}

func (s *softwareSwapchain) Acquire(_ time.Duration) (FrameTarget, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	if s.cfg.Width <= 0 || s.cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroSize, s.cfg.Width, s.cfg.Height)
	}
	return &softwareFrame{
		img: image.NewRGBA(image.Rect(0, 0, s.cfg.Width, s.cfg.Height)),
	}, nil
}

func (s *softwareSwapchain) Present(t FrameTarget) error {
	if s.released {
		return ErrSurfaceReleased
	}
	f, ok := t.(*softwareFrame)
	if !ok {
		return fmt.Errorf("%w: foreign frame target %T", ErrSurfaceLost, t)
	}
	if f.done {
		return ErrFramePresented
	}
	f.done = true
	s.front = f.img
	return nil
}

func (s *softwareSwapchain) Discard(t FrameTarget) {
	if f, ok := t.(*softwareFrame); ok {
		f.done = true
	}
}

func (s *softwareSwapchain) Release() {
	s.released = true
	s.front = nil
}

// Front returns the most recently presented frame, or nil if none.
// The demo command uses it to snapshot output; tests use it to assert that
// presentation happened.
func (s *softwareSwapchain) Front() *image.RGBA { return s.front }

// softwareFrame is one CPU frame target.
type softwareFrame struct {
	img  *image.RGBA
	done bool
}

func (f *softwareFrame) Size() (int, int) {
	b := f.img.Bounds()
	return b.Dx(), b.Dy()
}

func (f *softwareFrame) RGBA() *image.RGBA { return f.img }

var (
	_ PixelTarget = (*softwareFrame)(nil)
	_ Swapchain   = (*softwareSwapchain)(nil)
	_ Device      = (*softwareDevice)(nil)
)
