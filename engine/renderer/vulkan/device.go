package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

var (
	_ hal.Instance      = (*Instance)(nil)
	_ hal.Adapter       = (*Adapter)(nil)
	_ hal.Surface       = (*Surface)(nil)
	_ hal.Device        = (*Device)(nil)
	_ hal.Queue         = (*Queue)(nil)
	_ hal.CommandPool   = (*commandPool)(nil)
	_ hal.CommandBuffer = (*commandBuffer)(nil)
)

type Device struct {
	context *VulkanContext
	adapter *Adapter
	queues  []*Queue
}

type buffer struct {
	object
	handle vk.Buffer
}

type deviceMemory struct {
	object
	handle vk.DeviceMemory
}

type image struct {
	object
	handle vk.Image
	format vk.Format
}

type imageView struct {
	object
	handle vk.ImageView
}

type sampler struct {
	object
	handle vk.Sampler
}

func (d *Device) Queue(index int) hal.Queue {
	return d.queues[index]
}

func (d *Device) WaitIdle() error {
	return resultError("vkDeviceWaitIdle", vk.DeviceWaitIdle(d.context.Device))
}

func (d *Device) Destroy() {
	if d.context.Device == nil {
		return
	}
	d.queues = nil
	core.LogInfo("Destroying logical device...")
	vk.DestroyDevice(d.context.Device, d.context.Allocator)
	d.context.Device = nil
	// Physical devices are not destroyed.
	d.context.PhysicalDevice = nil
}

func (d *Device) CreateBuffer(size uint64, usage hal.BufferUsage) (hal.Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vkBufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(d.context.Device, &bufferInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateBuffer", res)
	}
	return &buffer{object: d.context.newObject("buffer"), handle: handle}, nil
}

func (d *Device) BufferRequirements(b hal.Buffer) hal.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.context.Device, b.(*buffer).handle, &req)
	req.Deref()
	return hal.MemoryRequirements{
		Size:      uint64(req.Size),
		Alignment: uint64(req.Alignment),
		TypeMask:  req.MemoryTypeBits,
	}
}

func (d *Device) BindBufferMemory(b hal.Buffer, m hal.Memory, offset uint64) error {
	res := vk.BindBufferMemory(d.context.Device, b.(*buffer).handle, m.(*deviceMemory).handle, vk.DeviceSize(offset))
	return resultError("vkBindBufferMemory", res)
}

func (d *Device) DestroyBuffer(b hal.Buffer) {
	vk.DestroyBuffer(d.context.Device, b.(*buffer).handle, d.context.Allocator)
}

func (d *Device) AllocateMemory(memoryType hal.MemoryTypeID, size uint64) (hal.Memory, error) {
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: uint32(memoryType),
	}
	var handle vk.DeviceMemory
	if res := vk.AllocateMemory(d.context.Device, &allocateInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkAllocateMemory", res)
	}
	return &deviceMemory{object: d.context.newObject("memory"), handle: handle}, nil
}

func (d *Device) MapMemory(m hal.Memory, offset, size uint64) ([]byte, error) {
	var data unsafe.Pointer
	res := vk.MapMemory(d.context.Device, m.(*deviceMemory).handle, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &data)
	if res != vk.Success {
		return nil, resultError("vkMapMemory", res)
	}
	return unsafe.Slice((*byte)(data), size), nil
}

func (d *Device) UnmapMemory(m hal.Memory) {
	vk.UnmapMemory(d.context.Device, m.(*deviceMemory).handle)
}

func (d *Device) FreeMemory(m hal.Memory) {
	vk.FreeMemory(d.context.Device, m.(*deviceMemory).handle, d.context.Allocator)
}

func (d *Device) CreateImage(desc hal.ImageDesc) (hal.Image, error) {
	format := vkFormat(desc.Format)
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vkImageUsage(desc.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var handle vk.Image
	if res := vk.CreateImage(d.context.Device, &imageInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateImage", res)
	}
	return &image{object: d.context.newObject("image"), handle: handle, format: format}, nil
}

func (d *Device) ImageRequirements(img hal.Image) hal.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.context.Device, img.(*image).handle, &req)
	req.Deref()
	return hal.MemoryRequirements{
		Size:      uint64(req.Size),
		Alignment: uint64(req.Alignment),
		TypeMask:  req.MemoryTypeBits,
	}
}

func (d *Device) BindImageMemory(img hal.Image, m hal.Memory, offset uint64) error {
	res := vk.BindImageMemory(d.context.Device, img.(*image).handle, m.(*deviceMemory).handle, vk.DeviceSize(offset))
	return resultError("vkBindImageMemory", res)
}

func (d *Device) DestroyImage(img hal.Image) {
	vk.DestroyImage(d.context.Device, img.(*image).handle, d.context.Allocator)
}

func (d *Device) CreateImageView(img hal.Image, format hal.Format) (hal.ImageView, error) {
	handle, err := createImageView(d.context, img.(*image).handle, vkFormat(format))
	if err != nil {
		return nil, err
	}
	return &imageView{object: d.context.newObject("image-view"), handle: handle}, nil
}

func createImageView(context *VulkanContext, img vk.Image, format vk.Format) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(context.Device, &viewInfo, context.Allocator, &view); res != vk.Success {
		return vk.NullImageView, resultError("vkCreateImageView", res)
	}
	return view, nil
}

func (d *Device) DestroyImageView(view hal.ImageView) {
	vk.DestroyImageView(d.context.Device, view.(*imageView).handle, d.context.Allocator)
}

func (d *Device) CreateSampler(desc hal.SamplerDesc) (hal.Sampler, error) {
	filter := vkFilter(desc.Filter)
	address := vkAddressMode(desc.Address)
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		AddressModeU:            address,
		AddressModeV:            address,
		AddressModeW:            address,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var handle vk.Sampler
	if res := vk.CreateSampler(d.context.Device, &samplerInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateSampler", res)
	}
	return &sampler{object: d.context.newObject("sampler"), handle: handle}, nil
}

func (d *Device) DestroySampler(s hal.Sampler) {
	vk.DestroySampler(d.context.Device, s.(*sampler).handle, d.context.Allocator)
}
