//go:build headless

package engine

import (
	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/platform"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

// The headless backend still opens a window for input but renders in host
// memory, nothing reaches the screen.
func newInstance(cfg *ApplicationConfig, p *platform.Platform) (hal.Instance, error) {
	hc := headless.DefaultConfig()
	hc.Capabilities.CurrentExtent = hal.Extent2D{Width: cfg.Window.Width, Height: cfg.Window.Height}
	core.LogWarn("Running on the headless backend, nothing will be presented")
	return headless.NewInstance(hc), nil
}
