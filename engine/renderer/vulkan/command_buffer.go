package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type commandPool struct {
	object
	context *VulkanContext
	handle  vk.CommandPool
}

type commandBuffer struct {
	object
	handle vk.CommandBuffer
}

func (d *Device) CreateCommandPool(family int, transient bool) (hal.CommandPool, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(family),
	}
	if transient {
		poolCreateInfo.Flags = vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit)
	}
	var handle vk.CommandPool
	if res := vk.CreateCommandPool(d.context.Device, &poolCreateInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateCommandPool", res)
	}
	return &commandPool{object: d.context.newObject("command-pool"), context: d.context, handle: handle}, nil
}

func (d *Device) DestroyCommandPool(pool hal.CommandPool) {
	vk.DestroyCommandPool(d.context.Device, pool.(*commandPool).handle, d.context.Allocator)
}

func (p *commandPool) Allocate() (hal.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.handle,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	handles := make([]vk.CommandBuffer, 1)
	err := p.context.locks.SafeCall(CommandPoolManagement, func() error {
		return resultError("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(p.context.Device, &allocateInfo, handles))
	})
	if err != nil {
		return nil, err
	}
	return &commandBuffer{object: p.context.newObject("command-buffer"), handle: handles[0]}, nil
}

func (p *commandPool) Reset() error {
	return p.context.locks.SafeCall(CommandPoolManagement, func() error {
		return resultError("vkResetCommandPool", vk.ResetCommandPool(p.context.Device, p.handle, 0))
	})
}

func (p *commandPool) Free(buffers []hal.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]vk.CommandBuffer, len(buffers))
	for i, b := range buffers {
		handles[i] = b.(*commandBuffer).handle
	}
	_ = p.context.locks.SafeCall(CommandPoolManagement, func() error {
		vk.FreeCommandBuffers(p.context.Device, p.handle, uint32(len(handles)), handles)
		return nil
	})
}

func (c *commandBuffer) Begin(oneTimeSubmit bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if oneTimeSubmit {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return resultError("vkBeginCommandBuffer", vk.BeginCommandBuffer(c.handle, &beginInfo))
}

func (c *commandBuffer) End() error {
	return resultError("vkEndCommandBuffer", vk.EndCommandBuffer(c.handle))
}

func (c *commandBuffer) PipelineBarrier(src, dst hal.PipelineStage, barriers []hal.ImageBarrier) {
	imageBarriers := make([]vk.ImageMemoryBarrier, len(barriers))
	for i, b := range barriers {
		imageBarriers[i] = vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vkAccess(b.SrcAccess),
			DstAccessMask:       vkAccess(b.DstAccess),
			OldLayout:           vkImageLayout(b.OldLayout),
			NewLayout:           vkImageLayout(b.NewLayout),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               b.Image.(*image).handle,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
	}
	vk.CmdPipelineBarrier(c.handle,
		vkPipelineStage(src), vkPipelineStage(dst), 0,
		0, nil,
		0, nil,
		uint32(len(imageBarriers)), imageBarriers)
}

func (c *commandBuffer) CopyBufferToImage(src hal.Buffer, dst hal.Image, layout hal.ImageLayout, regions []hal.BufferImageCopy) {
	copies := make([]vk.BufferImageCopy, len(regions))
	for i, r := range regions {
		copies[i] = vk.BufferImageCopy{
			BufferOffset:      vk.DeviceSize(r.BufferOffset),
			BufferRowLength:   r.BufferRowLength,
			BufferImageHeight: r.BufferImageHeight,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: r.Width, Height: r.Height, Depth: 1},
		}
	}
	vk.CmdCopyBufferToImage(c.handle, src.(*buffer).handle, dst.(*image).handle, vkImageLayout(layout), uint32(len(copies)), copies)
}

func (c *commandBuffer) SetViewport(viewport hal.Viewport) {
	vk.CmdSetViewport(c.handle, 0, 1, []vk.Viewport{{
		X:        float32(viewport.Rect.Offset.X),
		Y:        float32(viewport.Rect.Offset.Y),
		Width:    float32(viewport.Rect.Extent.Width),
		Height:   float32(viewport.Rect.Extent.Height),
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
}

func (c *commandBuffer) SetScissor(rect hal.Rect2D) {
	vk.CmdSetScissor(c.handle, 0, 1, []vk.Rect2D{vkRect(rect)})
}

func (c *commandBuffer) BeginRenderPass(pass hal.RenderPass, fb hal.Framebuffer, area hal.Rect2D, clear []hal.ClearColor) {
	clearValues := make([]vk.ClearValue, len(clear))
	for i, cv := range clear {
		clearValues[i].SetColor(cv[:])
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      pass.(*renderPass).handle,
		Framebuffer:     fb.(*framebuffer).handle,
		RenderArea:      vkRect(area),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.handle, &beginInfo, vk.SubpassContentsInline)
}

func (c *commandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(c.handle)
}

func (c *commandBuffer) BindGraphicsPipeline(pipeline hal.GraphicsPipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointGraphics, pipeline.(*graphicsPipeline).handle)
}

func (c *commandBuffer) BindVertexBuffer(binding uint32, b hal.Buffer, offset uint64) {
	vk.CmdBindVertexBuffers(c.handle, binding, 1, []vk.Buffer{b.(*buffer).handle}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (c *commandBuffer) BindDescriptorSets(layout hal.PipelineLayout, first uint32, sets []hal.DescriptorSet) {
	handles := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		handles[i] = s.(*descriptorSet).handle
	}
	vk.CmdBindDescriptorSets(c.handle, vk.PipelineBindPointGraphics, layout.(*pipelineLayout).handle,
		first, uint32(len(handles)), handles, 0, nil)
}

func (c *commandBuffer) PushConstants(layout hal.PipelineLayout, stages hal.ShaderStage, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.handle, layout.(*pipelineLayout).handle, vkShaderStage(stages), offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *commandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(c.handle, vertexCount, instanceCount, firstVertex, firstInstance)
}
