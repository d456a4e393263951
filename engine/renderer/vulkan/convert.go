package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type flagPair[H ~uint32] struct {
	hal H
	vk  uint32
}

func toVkFlags[H ~uint32](in H, pairs []flagPair[H]) uint32 {
	var out uint32
	for _, p := range pairs {
		if in&p.hal != 0 {
			out |= p.vk
		}
	}
	return out
}

func fromVkFlags[H ~uint32](in uint32, pairs []flagPair[H]) H {
	var out H
	for _, p := range pairs {
		if in&p.vk != 0 {
			out |= p.hal
		}
	}
	return out
}

var bufferUsages = []flagPair[hal.BufferUsage]{
	{hal.BufferUsageTransferSrc, uint32(vk.BufferUsageTransferSrcBit)},
	{hal.BufferUsageTransferDst, uint32(vk.BufferUsageTransferDstBit)},
	{hal.BufferUsageUniform, uint32(vk.BufferUsageUniformBufferBit)},
	{hal.BufferUsageVertex, uint32(vk.BufferUsageVertexBufferBit)},
	{hal.BufferUsageIndex, uint32(vk.BufferUsageIndexBufferBit)},
}

var imageUsages = []flagPair[hal.ImageUsage]{
	{hal.ImageUsageTransferSrc, uint32(vk.ImageUsageTransferSrcBit)},
	{hal.ImageUsageTransferDst, uint32(vk.ImageUsageTransferDstBit)},
	{hal.ImageUsageSampled, uint32(vk.ImageUsageSampledBit)},
	{hal.ImageUsageColorAttachment, uint32(vk.ImageUsageColorAttachmentBit)},
}

var memoryProperties = []flagPair[hal.MemoryProperty]{
	{hal.MemoryDeviceLocal, uint32(vk.MemoryPropertyDeviceLocalBit)},
	{hal.MemoryHostVisible, uint32(vk.MemoryPropertyHostVisibleBit)},
	{hal.MemoryHostCoherent, uint32(vk.MemoryPropertyHostCoherentBit)},
	{hal.MemoryHostCached, uint32(vk.MemoryPropertyHostCachedBit)},
	{hal.MemoryLazilyAllocated, uint32(vk.MemoryPropertyLazilyAllocatedBit)},
}

var accesses = []flagPair[hal.Access]{
	{hal.AccessTransferWrite, uint32(vk.AccessTransferWriteBit)},
	{hal.AccessShaderRead, uint32(vk.AccessShaderReadBit)},
	{hal.AccessColorAttachmentRead, uint32(vk.AccessColorAttachmentReadBit)},
	{hal.AccessColorAttachmentWrite, uint32(vk.AccessColorAttachmentWriteBit)},
}

var pipelineStages = []flagPair[hal.PipelineStage]{
	{hal.PipelineStageTopOfPipe, uint32(vk.PipelineStageTopOfPipeBit)},
	{hal.PipelineStageTransfer, uint32(vk.PipelineStageTransferBit)},
	{hal.PipelineStageVertexShader, uint32(vk.PipelineStageVertexShaderBit)},
	{hal.PipelineStageFragmentShader, uint32(vk.PipelineStageFragmentShaderBit)},
	{hal.PipelineStageColorAttachmentOutput, uint32(vk.PipelineStageColorAttachmentOutputBit)},
	{hal.PipelineStageBottomOfPipe, uint32(vk.PipelineStageBottomOfPipeBit)},
}

var shaderStages = []flagPair[hal.ShaderStage]{
	{hal.ShaderStageVertex, uint32(vk.ShaderStageVertexBit)},
	{hal.ShaderStageFragment, uint32(vk.ShaderStageFragmentBit)},
}

func vkBufferUsage(u hal.BufferUsage) vk.BufferUsageFlags {
	return vk.BufferUsageFlags(toVkFlags(u, bufferUsages))
}

func vkImageUsage(u hal.ImageUsage) vk.ImageUsageFlags {
	return vk.ImageUsageFlags(toVkFlags(u, imageUsages))
}

func halMemoryProperty(flags vk.MemoryPropertyFlags) hal.MemoryProperty {
	return fromVkFlags(uint32(flags), memoryProperties)
}

func vkAccess(a hal.Access) vk.AccessFlags {
	return vk.AccessFlags(toVkFlags(a, accesses))
}

func vkPipelineStage(s hal.PipelineStage) vk.PipelineStageFlags {
	return vk.PipelineStageFlags(toVkFlags(s, pipelineStages))
}

func vkShaderStage(s hal.ShaderStage) vk.ShaderStageFlags {
	return vk.ShaderStageFlags(toVkFlags(s, shaderStages))
}

func vkFormat(f hal.Format) vk.Format {
	switch f {
	case hal.FormatRGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case hal.FormatRGBA8Srgb:
		return vk.FormatR8g8b8a8Srgb
	case hal.FormatBGRA8Unorm:
		return vk.FormatB8g8r8a8Unorm
	case hal.FormatBGRA8Srgb:
		return vk.FormatB8g8r8a8Srgb
	case hal.FormatRG32Float:
		return vk.FormatR32g32Sfloat
	}
	return vk.FormatUndefined
}

func halFormat(f vk.Format) hal.Format {
	switch f {
	case vk.FormatR8g8b8a8Unorm:
		return hal.FormatRGBA8Unorm
	case vk.FormatR8g8b8a8Srgb:
		return hal.FormatRGBA8Srgb
	case vk.FormatB8g8r8a8Unorm:
		return hal.FormatBGRA8Unorm
	case vk.FormatB8g8r8a8Srgb:
		return hal.FormatBGRA8Srgb
	case vk.FormatR32g32Sfloat:
		return hal.FormatRG32Float
	}
	return hal.FormatUndefined
}

func vkImageLayout(l hal.ImageLayout) vk.ImageLayout {
	switch l {
	case hal.ImageLayoutTransferDst:
		return vk.ImageLayoutTransferDstOptimal
	case hal.ImageLayoutShaderReadOnly:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case hal.ImageLayoutColorAttachment:
		return vk.ImageLayoutColorAttachmentOptimal
	case hal.ImageLayoutPresentSrc:
		return vk.ImageLayoutPresentSrc
	}
	return vk.ImageLayoutUndefined
}

func vkPresentMode(m hal.PresentMode) vk.PresentMode {
	if m == hal.PresentModeMailbox {
		return vk.PresentModeMailbox
	}
	return vk.PresentModeFifo
}

// halPresentModes drops the modes the renderer never asks for.
func halPresentModes(modes []vk.PresentMode) []hal.PresentMode {
	var out []hal.PresentMode
	for _, m := range modes {
		switch m {
		case vk.PresentModeFifo:
			out = append(out, hal.PresentModeFifo)
		case vk.PresentModeMailbox:
			out = append(out, hal.PresentModeMailbox)
		}
	}
	return out
}

func halDeviceType(t vk.PhysicalDeviceType) hal.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return hal.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return hal.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return hal.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return hal.DeviceTypeCPU
	}
	return hal.DeviceTypeOther
}

func vkFilter(f hal.Filter) vk.Filter {
	if f == hal.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func vkAddressMode(m hal.AddressMode) vk.SamplerAddressMode {
	if m == hal.AddressModeRepeat {
		return vk.SamplerAddressModeRepeat
	}
	return vk.SamplerAddressModeClampToEdge
}

func vkDescriptorType(t hal.DescriptorType) vk.DescriptorType {
	switch t {
	case hal.DescriptorTypeSampler:
		return vk.DescriptorTypeSampler
	case hal.DescriptorTypeUniformBuffer:
		return vk.DescriptorTypeUniformBuffer
	}
	return vk.DescriptorTypeSampledImage
}

func vkLoadOp(op hal.LoadOp) vk.AttachmentLoadOp {
	switch op {
	case hal.LoadOpLoad:
		return vk.AttachmentLoadOpLoad
	case hal.LoadOpClear:
		return vk.AttachmentLoadOpClear
	}
	return vk.AttachmentLoadOpDontCare
}

func vkStoreOp(op hal.StoreOp) vk.AttachmentStoreOp {
	if op == hal.StoreOpStore {
		return vk.AttachmentStoreOpStore
	}
	return vk.AttachmentStoreOpDontCare
}

func vkVertexFormat(f hal.VertexFormat) vk.Format {
	if f == hal.VertexFormatFloat32x4 {
		return vk.FormatR32g32b32a32Sfloat
	}
	return vk.FormatR32g32Sfloat
}

func vkTopology(t hal.Topology) vk.PrimitiveTopology {
	switch t {
	case hal.TopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case hal.TopologyLineList:
		return vk.PrimitiveTopologyLineList
	}
	return vk.PrimitiveTopologyTriangleList
}

func vkPolygonMode(m hal.PolygonMode) vk.PolygonMode {
	if m == hal.PolygonModeLine {
		return vk.PolygonModeLine
	}
	return vk.PolygonModeFill
}

func vkCullMode(m hal.CullMode) vk.CullModeFlags {
	switch m {
	case hal.CullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	case hal.CullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

func vkExtent(e hal.Extent2D) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func halExtent(e vk.Extent2D) hal.Extent2D {
	return hal.Extent2D{Width: e.Width, Height: e.Height}
}

func vkRect(r hal.Rect2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.Offset.X, Y: r.Offset.Y},
		Extent: vkExtent(r.Extent),
	}
}
