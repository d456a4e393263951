//go:build !headless

package engine

import (
	"github.com/spaghettifunk/tinted/engine/platform"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/vulkan"
)

func newInstance(cfg *ApplicationConfig, p *platform.Platform) (hal.Instance, error) {
	instance, err := vulkan.NewInstance(cfg.Name, cfg.Renderer.Validation, p.Window())
	if err != nil {
		return nil, err
	}
	return instance, nil
}
