// Package config loads render job descriptions from YAML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/camdev"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// MaxDimension bounds the target width and height.
const MaxDimension = 16384

// RendererConfig describes the renderer a job draws into.
type RendererConfig struct {
	Viewport   []float64 `yaml:"viewport"`   // xmin, ymin, xmax, ymax in [0, 1]
	Background string    `yaml:"background"` // "#rrggbb" or "#rrggbbaa"
	Erase      bool      `yaml:"erase"`
}

// CameraConfig describes the camera parameters.
type CameraConfig struct {
	Position      []float64 `yaml:"position"`
	FocalPoint    []float64 `yaml:"focal_point"`
	ViewUp        []float64 `yaml:"view_up"`
	ViewAngle     float64   `yaml:"view_angle"`     // degrees
	ClippingRange []float64 `yaml:"clipping_range"` // near, far
}

// Config is one render job.
type Config struct {
	Device   string         `yaml:"device"` // registry name; empty selects the default device
	Width    int            `yaml:"width"`
	Height   int            `yaml:"height"`
	Output   string         `yaml:"output"`
	LogLevel string         `yaml:"log_level"` // debug, info, warn or error
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`
	Annotate bool           `yaml:"annotate"`
}

// Default returns the configuration used for keys a job file omits.
func Default() *Config {
	return &Config{
		Width:    640,
		Height:   480,
		Output:   "frame.png",
		LogLevel: "info",
		Renderer: RendererConfig{
			Viewport:   []float64{0, 0, 1, 1},
			Background: "#000000",
			Erase:      true,
		},
		Camera: CameraConfig{
			Position:      []float64{0, 0, 1},
			FocalPoint:    []float64{0, 0, 0},
			ViewUp:        []float64{0, 1, 0},
			ViewAngle:     camdev.DefaultViewAngle,
			ClippingRange: []float64{camdev.DefaultNearPlane, camdev.DefaultFarPlane},
		},
	}
}

// Load reads a YAML file and returns the validated configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and the camera and renderer they describe.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: width and height must be > 0, got %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Width > MaxDimension || c.Height > MaxDimension {
		return fmt.Errorf("%w: width and height must be <= %d, got %dx%d", ErrInvalid, MaxDimension, c.Width, c.Height)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalid)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := c.Viewport(); err != nil {
		return err
	}
	if _, err := ParseColor(c.Renderer.Background); err != nil {
		return err
	}

	vectors := []struct {
		key string
		v   []float64
		n   int
	}{
		{"camera.position", c.Camera.Position, 3},
		{"camera.focal_point", c.Camera.FocalPoint, 3},
		{"camera.view_up", c.Camera.ViewUp, 3},
		{"camera.clipping_range", c.Camera.ClippingRange, 2},
	}
	for _, vec := range vectors {
		if len(vec.v) != vec.n {
			return fmt.Errorf("%w: %s needs %d values, got %d", ErrInvalid, vec.key, vec.n, len(vec.v))
		}
	}

	cam := camdev.NewCamera(c.CameraOptions()...)
	if err := cam.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Viewport returns the renderer viewport.
func (c *Config) Viewport() (camdev.Viewport, error) {
	v := c.Renderer.Viewport
	if len(v) != 4 {
		return camdev.Viewport{}, fmt.Errorf("%w: renderer.viewport needs 4 values, got %d", ErrInvalid, len(v))
	}
	vp := camdev.Viewport{XMin: v[0], YMin: v[1], XMax: v[2], YMax: v[3]}
	if err := vp.Validate(); err != nil {
		return camdev.Viewport{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return vp, nil
}

// CameraOptions converts the camera section to camdev options. The
// device selection is not included. Call it on a validated Config.
func (c *Config) CameraOptions() []camdev.CameraOption {
	cc := c.Camera
	return []camdev.CameraOption{
		camdev.WithPosition(cc.Position[0], cc.Position[1], cc.Position[2]),
		camdev.WithFocalPoint(cc.FocalPoint[0], cc.FocalPoint[1], cc.FocalPoint[2]),
		camdev.WithViewUp(cc.ViewUp[0], cc.ViewUp[1], cc.ViewUp[2]),
		camdev.WithViewAngle(cc.ViewAngle),
		camdev.WithClippingRange(cc.ClippingRange[0], cc.ClippingRange[1]),
	}
}

// RendererOptions converts the renderer section to camdev options.
func (c *Config) RendererOptions() ([]camdev.RendererOption, error) {
	vp, err := c.Viewport()
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(c.Renderer.Background)
	if err != nil {
		return nil, err
	}
	return []camdev.RendererOption{
		camdev.WithViewport(vp),
		camdev.WithBackground(bg),
		camdev.WithErase(c.Renderer.Erase),
	}, nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, s)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q must be #rrggbb or #rrggbbaa", ErrInvalid, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: color %q: %w", ErrInvalid, s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
