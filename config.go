package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"
)

// PresentMode selects how presented frames are synchronized with the display.
type PresentMode int

const (
	// PresentModeFifo queues frames and waits for vertical blank (vsync).
	// Always supported; the default.
	PresentModeFifo PresentMode = iota

	// PresentModeMailbox replaces the queued frame with the newest one,
	// trading latency for possible skipped frames.
	PresentModeMailbox

	// PresentModeImmediate presents without display synchronization.
	PresentModeImmediate
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "fifo"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("present-mode(%d)", int(m))
	}
}

// UnmarshalYAML parses a present mode from its string form.
func (m *PresentMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "", "fifo":
		*m = PresentModeFifo
	case "mailbox":
		*m = PresentModeMailbox
	case "immediate":
		*m = PresentModeImmediate
	default:
		return fmt.Errorf("shell: unknown present mode %q", s)
	}
	return nil
}

// MarshalYAML emits the string form.
func (m PresentMode) MarshalYAML() (any, error) { return m.String(), nil }

// SurfaceConfig is the swapchain configuration for one window surface.
// Values are immutable once applied; a resize produces a new config rather
// than mutating the current one.
type SurfaceConfig struct {
	Format      gputypes.TextureFormat
	PresentMode PresentMode
	Width       int
	Height      int
}

// withSize returns a copy of c with the given dimensions.
func (c SurfaceConfig) withSize(width, height int) SurfaceConfig {
	c.Width = width
	c.Height = height
	return c
}

// Config holds the shell's startup parameters. Zero values fall back to the
// defaults from DefaultConfig, so partial YAML files are fine.
type Config struct {
	// Title is the window title on platforms that have one.
	Title string `yaml:"title"`

	// Width and Height are the initial window size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// FrameRate is the target frame rate of the active loop.
	FrameRate int `yaml:"frame_rate"`

	// PresentMode selects display synchronization for presented frames.
	PresentMode PresentMode `yaml:"present_mode"`

	// AcquireTimeout bounds the wait for a frame target. Exceeding it is a
	// recoverable ErrPresentTimeout, never a hang.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`

	// VolatileWindow marks platforms where the OS may destroy the native
	// window on suspend (Android). The state machine then treats the stored
	// window handle as invalid after a suspend and waits for a fresh
	// window-created event before going Active again.
	VolatileWindow bool `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Title:          "duel",
		Width:          1280,
		Height:         720,
		FrameRate:      60,
		PresentMode:    PresentModeFifo,
		AcquireTimeout: 100 * time.Millisecond,
	}
}

// WithTitle returns a copy of c with the window title set.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize returns a copy of c with the initial window size set.
func (c Config) WithSize(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// WithFrameRate returns a copy of c with the target frame rate set.
func (c Config) WithFrameRate(fps int) Config {
	c.FrameRate = fps
	return c
}

// WithPresentMode returns a copy of c with the present mode set.
func (c Config) WithPresentMode(m PresentMode) Config {
	c.PresentMode = m
	return c
}

// WithAcquireTimeout returns a copy of c with the frame acquire bound set.
func (c Config) WithAcquireTimeout(d time.Duration) Config {
	c.AcquireTimeout = d
	return c
}

// normalized fills zero fields from the defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.FrameRate <= 0 {
		c.FrameRate = def.FrameRate
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = def.AcquireTimeout
	}
	return c
}

// surfaceConfig derives the initial swapchain configuration.
func (c Config) surfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		PresentMode: c.PresentMode,
		Width:       c.Width,
		Height:      c.Height,
	}
}

// LoadConfig loads a Config from YAML.
// Search order: customPath -> ~/.duel/shell.yaml -> ./duel.yaml -> defaults.
// A missing file in the fallback locations is not an error; a customPath that
// cannot be read or parsed is.
func LoadConfig(customPath string) (Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("shell: read config %s: %w", customPath, err)
		}
		return parseConfig(data, customPath)
	}

	if p := userConfigPath(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			if cfg, err := parseConfig(data, p); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile("duel.yaml"); err == nil {
		if cfg, err := parseConfig(data, "duel.yaml"); err == nil {
			return cfg, nil
		}
	}

	return DefaultConfig(), nil
}

func parseConfig(data []byte, path string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("shell: parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".duel", "shell.yaml")
}
