package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/math"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// DefaultExtent is used when the surface lets the swapchain pick its size.
var DefaultExtent = hal.Extent2D{Width: 1024, Height: 768}

// Swapchain configures the surface and hands out frame slots in round robin.
type Swapchain struct {
	id          uuid.UUID
	ctx         *DeviceContext
	surface     hal.Surface
	format      hal.Format
	extent      hal.Extent2D
	imageCount  uint32
	presentMode hal.PresentMode
	frameIndex  uint64
}

func NewSwapchain(ctx *DeviceContext, surface hal.Surface, mode hal.PresentMode) (*Swapchain, error) {
	caps, err := surface.Capabilities(ctx.Adapter())
	if err != nil {
		return nil, fmt.Errorf("failed to query surface capabilities: %w", err)
	}
	formats, err := surface.Formats(ctx.Adapter())
	if err != nil {
		return nil, fmt.Errorf("failed to query surface formats: %w", err)
	}

	extent := ChooseExtent(caps)
	if extent.Width == 0 || extent.Height == 0 {
		// minimized, nothing to present to
		return nil, core.ErrSwapchainInvalid
	}

	sc := &Swapchain{
		ctx:         ctx,
		surface:     surface,
		format:      ChooseFormat(formats),
		extent:      extent,
		imageCount:  ChooseImageCount(caps),
		presentMode: ChoosePresentMode(caps, mode),
	}
	err = surface.Configure(ctx.Device(), hal.SwapchainConfig{
		Format:      sc.format,
		Extent:      sc.extent,
		ImageCount:  sc.imageCount,
		PresentMode: sc.presentMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure swapchain: %w", err)
	}
	sc.id = ctx.register("swapchain")

	core.LogInfo("Swapchain created: %dx%d %s, %d images", extent.Width, extent.Height, sc.format, sc.imageCount)
	return sc, nil
}

// ChooseFormat prefers the first sRGB format, then the first offered one.
func ChooseFormat(formats []hal.Format) hal.Format {
	for _, f := range formats {
		if f.IsSrgb() {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return hal.FormatRGBA8Srgb
}

// ChooseExtent uses the surface size when it is known and DefaultExtent
// otherwise, clamped to what the surface allows.
func ChooseExtent(caps hal.SurfaceCapabilities) hal.Extent2D {
	if caps.CurrentExtent.Width != hal.UndefinedExtent {
		return caps.CurrentExtent
	}
	return hal.Extent2D{
		Width:  math.Clamp(DefaultExtent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(DefaultExtent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum. A maximum of
// zero means unbounded.
func ChooseImageCount(caps hal.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChoosePresentMode returns mode when the surface supports it and FIFO,
// which is always available, otherwise.
func ChoosePresentMode(caps hal.SurfaceCapabilities, mode hal.PresentMode) hal.PresentMode {
	for _, m := range caps.PresentModes {
		if m == mode {
			return mode
		}
	}
	if mode != hal.PresentModeFifo {
		core.LogWarn("Present mode %d unsupported, falling back to FIFO", mode)
	}
	return hal.PresentModeFifo
}

func (sc *Swapchain) Extent() hal.Extent2D {
	return sc.extent
}

func (sc *Swapchain) Format() hal.Format {
	return sc.format
}

func (sc *Swapchain) FrameQueueSize() uint32 {
	return sc.imageCount
}

func (sc *Swapchain) Viewport() hal.Viewport {
	return hal.Viewport{
		Rect:     hal.Rect2D{Extent: sc.extent},
		MinDepth: 0,
		MaxDepth: 1,
	}
}

// NextSlot returns the frame slot for the next frame.
func (sc *Swapchain) NextSlot() uint32 {
	slot := uint32(sc.frameIndex % uint64(sc.imageCount))
	sc.frameIndex++
	return slot
}

func (sc *Swapchain) Destroy() {
	if sc.surface == nil {
		return
	}
	sc.surface.Unconfigure(sc.ctx.Device())
	sc.surface = nil
	sc.ctx.unregister(sc.id)
}
