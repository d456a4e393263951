package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type renderPass struct {
	object
	handle vk.RenderPass
}

func (d *Device) CreateRenderPass(desc hal.RenderPassDesc) (hal.RenderPass, error) {
	attachmentDescriptions := make([]vk.AttachmentDescription, len(desc.Attachments))
	colorAttachmentReferences := make([]vk.AttachmentReference, len(desc.Attachments))
	for i, a := range desc.Attachments {
		attachmentDescriptions[i] = vk.AttachmentDescription{
			Format:         vkFormat(a.Format),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vkLoadOp(a.Load),
			StoreOp:        vkStoreOp(a.Store),
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vkImageLayout(a.InitialLayout),
			FinalLayout:    vkImageLayout(a.FinalLayout),
		}
		colorAttachmentReferences[i] = vk.AttachmentReference{
			Attachment: uint32(i),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentReferences)),
		PColorAttachments:    colorAttachmentReferences,
	}

	// The image acquired from the swapchain must be released before the
	// attachment is written.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(d.context.Device, &renderpassCreateInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateRenderPass", res)
	}
	return &renderPass{object: d.context.newObject("render-pass"), handle: handle}, nil
}

func (d *Device) DestroyRenderPass(pass hal.RenderPass) {
	vk.DestroyRenderPass(d.context.Device, pass.(*renderPass).handle, d.context.Allocator)
}
