package engine

import "github.com/spaghettifunk/tinted/engine/core"

type ApplicationConfig struct {
	// The application name used in windowing and logs.
	Name string
	// Window creation parameters.
	Window core.WindowConfig
	// Renderer options: present mode, shader paths, initial colors.
	Renderer core.RendererConfig
}

// NewApplicationConfig takes the window and renderer sections of a loaded
// configuration. The window title doubles as the application name.
func NewApplicationConfig(cfg *core.Config) *ApplicationConfig {
	return &ApplicationConfig{
		Name:     cfg.Window.Title,
		Window:   cfg.Window,
		Renderer: cfg.Renderer,
	}
}
