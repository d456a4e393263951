package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// RenderPass clears a single swapchain-format color attachment and leaves it
// ready for presentation.
type RenderPass struct {
	id     uuid.UUID
	ctx    *DeviceContext
	handle hal.RenderPass
	format hal.Format
}

func NewRenderPass(ctx *DeviceContext, format hal.Format) (*RenderPass, error) {
	handle, err := ctx.Device().CreateRenderPass(hal.RenderPassDesc{
		Attachments: []hal.ColorAttachment{{
			Format:        format,
			Load:          hal.LoadOpClear,
			Store:         hal.StoreOpStore,
			InitialLayout: hal.ImageLayoutUndefined,
			FinalLayout:   hal.ImageLayoutPresentSrc,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pass: %w", err)
	}
	return &RenderPass{
		id:     ctx.register("render-pass"),
		ctx:    ctx,
		handle: handle,
		format: format,
	}, nil
}

// NewFramebuffer wraps a swapchain view for one frame.
func (rp *RenderPass) NewFramebuffer(view hal.ImageView, extent hal.Extent2D) (hal.Framebuffer, error) {
	fb, err := rp.ctx.Device().CreateFramebuffer(rp.handle, []hal.ImageView{view}, extent)
	if err != nil {
		return nil, fmt.Errorf("failed to create framebuffer: %w", err)
	}
	return fb, nil
}

func (rp *RenderPass) Handle() hal.RenderPass {
	return rp.handle
}

func (rp *RenderPass) Format() hal.Format {
	return rp.format
}

func (rp *RenderPass) Destroy() {
	if rp.handle == nil {
		return
	}
	rp.ctx.Device().DestroyRenderPass(rp.handle)
	rp.handle = nil
	rp.ctx.unregister(rp.id)
}
