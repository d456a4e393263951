package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type descriptorSetLayout struct {
	object
	handle vk.DescriptorSetLayout
}

type descriptorPool struct {
	object
	handle vk.DescriptorPool
}

type descriptorSet struct {
	object
	handle vk.DescriptorSet
}

func (d *Device) CreateDescriptorSetLayout(bindings []hal.DescriptorSetLayoutBinding) (hal.DescriptorSetLayout, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		layoutBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vkDescriptorType(b.Type),
			DescriptorCount: b.Count,
			StageFlags:      vkShaderStage(b.Stages),
		}
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layoutBindings)),
		PBindings:    layoutBindings,
	}
	var handle vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(d.context.Device, &layoutInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateDescriptorSetLayout", res)
	}
	return &descriptorSetLayout{object: d.context.newObject("descriptor-set-layout"), handle: handle}, nil
}

func (d *Device) DestroyDescriptorSetLayout(layout hal.DescriptorSetLayout) {
	vk.DestroyDescriptorSetLayout(d.context.Device, layout.(*descriptorSetLayout).handle, d.context.Allocator)
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []hal.DescriptorPoolSize) (hal.DescriptorPool, error) {
	poolSizes := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		poolSizes[i] = vk.DescriptorPoolSize{
			Type:            vkDescriptorType(s.Type),
			DescriptorCount: s.Count,
		}
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var handle vk.DescriptorPool
	if res := vk.CreateDescriptorPool(d.context.Device, &poolInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateDescriptorPool", res)
	}
	return &descriptorPool{object: d.context.newObject("descriptor-pool"), handle: handle}, nil
}

// DestroyDescriptorPool also frees every set allocated from pool.
func (d *Device) DestroyDescriptorPool(pool hal.DescriptorPool) {
	vk.DestroyDescriptorPool(d.context.Device, pool.(*descriptorPool).handle, d.context.Allocator)
}

func (d *Device) AllocateDescriptorSet(pool hal.DescriptorPool, layout hal.DescriptorSetLayout) (hal.DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool.(*descriptorPool).handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.(*descriptorSetLayout).handle},
	}
	var handle vk.DescriptorSet
	err := d.context.locks.SafeCall(DescriptorManagement, func() error {
		return resultError("vkAllocateDescriptorSets", vk.AllocateDescriptorSets(d.context.Device, &allocateInfo, &handle))
	})
	if err != nil {
		return nil, err
	}
	return &descriptorSet{object: d.context.newObject("descriptor-set"), handle: handle}, nil
}

func (d *Device) WriteDescriptorSets(writes []hal.DescriptorWrite) {
	descriptorWrites := make([]vk.WriteDescriptorSet, len(writes))
	for i, w := range writes {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          w.Set.(*descriptorSet).handle,
			DstBinding:      w.Binding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  vkDescriptorType(w.Type),
		}
		switch w.Type {
		case hal.DescriptorTypeUniformBuffer:
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: w.Buffer.(*buffer).handle,
				Offset: 0,
				Range:  vk.DeviceSize(w.BufferRange),
			}}
		case hal.DescriptorTypeSampledImage:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   w.View.(*imageView).handle,
				ImageLayout: vkImageLayout(w.Layout),
			}}
		case hal.DescriptorTypeSampler:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler: w.Sampler.(*sampler).handle,
			}}
		}
		descriptorWrites[i] = write
	}
	_ = d.context.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(d.context.Device, uint32(len(descriptorWrites)), descriptorWrites, 0, nil)
		return nil
	})
}
