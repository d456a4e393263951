package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Title       string `toml:"title"`
	Width       uint32 `toml:"width"`
	Height      uint32 `toml:"height"`
	Transparent bool   `toml:"transparent"`
}

type ShaderPaths struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

type RendererConfig struct {
	// Validation enables the Vulkan validation layers and the debug report callback.
	Validation  bool        `toml:"validation"`
	PresentMode string      `toml:"present_mode"`
	HotReload   bool        `toml:"hot_reload"`
	Shaders     ShaderPaths `toml:"shaders"`
	Tint        [4]float32  `toml:"tint"`
	Background  [4]float32  `toml:"background"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:       "colour-uniform",
			Width:       1024,
			Height:      768,
			Transparent: true,
		},
		Renderer: RendererConfig{
			Validation:  false,
			PresentMode: "fifo",
			HotReload:   false,
			Shaders: ShaderPaths{
				Vertex:   "assets/shaders/quad.vert.wgsl",
				Fragment: "assets/shaders/quad.frag.wgsl",
			},
			Tint:       [4]float32{1.0, 1.0, 1.0, 1.0},
			Background: [4]float32{0.8, 0.8, 0.8, 1.0},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig decodes the TOML file at path on top of DefaultConfig. A missing
// file is not an error: the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogWarn("config file `%s` not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config `%s`: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case "fifo", "mailbox":
	default:
		return fmt.Errorf("unknown present mode `%s`", c.Renderer.PresentMode)
	}
	if c.Renderer.Shaders.Vertex == "" || c.Renderer.Shaders.Fragment == "" {
		return errors.New("both shader paths must be set")
	}
	return nil
}
