package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type framebuffer struct {
	object
	handle vk.Framebuffer
}

func (d *Device) CreateFramebuffer(pass hal.RenderPass, views []hal.ImageView, extent hal.Extent2D) (hal.Framebuffer, error) {
	attachments := make([]vk.ImageView, len(views))
	for i, v := range views {
		attachments[i] = v.(*imageView).handle
	}
	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass.(*renderPass).handle,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(d.context.Device, &framebufferCreateInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateFramebuffer", res)
	}
	return &framebuffer{object: d.context.newObject("framebuffer"), handle: handle}, nil
}

func (d *Device) DestroyFramebuffer(fb hal.Framebuffer) {
	vk.DestroyFramebuffer(d.context.Device, fb.(*framebuffer).handle, d.context.Allocator)
}
