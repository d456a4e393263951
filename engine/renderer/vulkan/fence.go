package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type fence struct {
	object
	handle vk.Fence
}

type semaphore struct {
	object
	handle vk.Semaphore
}

func (d *Device) CreateFence(signaled bool) (hal.Fence, error) {
	handle, err := createFence(d.context, signaled)
	if err != nil {
		return nil, err
	}
	return &fence{object: d.context.newObject("fence"), handle: handle}, nil
}

func createFence(context *VulkanContext, signaled bool) (vk.Fence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(context.Device, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		return vk.NullFence, resultError("vkCreateFence", res)
	}
	return handle, nil
}

func (d *Device) WaitForFence(f hal.Fence, timeout uint64) error {
	return waitForFence(d.context, f.(*fence).handle, timeout)
}

func waitForFence(context *VulkanContext, handle vk.Fence, timeout uint64) error {
	result := vk.WaitForFences(context.Device, 1, []vk.Fence{handle}, vk.True, timeout)
	switch result {
	case vk.Success:
		return nil
	case vk.Timeout:
		core.LogWarn("vk_fence_wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("vk_fence_wait - VK_ERROR_DEVICE_LOST.")
	case vk.ErrorOutOfHostMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_HOST_MEMORY.")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("vk_fence_wait - VK_ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("vk_fence_wait - An unknown error has occurred.")
	}
	return resultError("vkWaitForFences", result)
}

func (d *Device) ResetFence(f hal.Fence) error {
	return resultError("vkResetFences", vk.ResetFences(d.context.Device, 1, []vk.Fence{f.(*fence).handle}))
}

func (d *Device) FenceSignaled(f hal.Fence) (bool, error) {
	switch res := vk.GetFenceStatus(d.context.Device, f.(*fence).handle); res {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, resultError("vkGetFenceStatus", res)
	}
}

func (d *Device) DestroyFence(f hal.Fence) {
	vk.DestroyFence(d.context.Device, f.(*fence).handle, d.context.Allocator)
}

func (d *Device) CreateSemaphore() (hal.Semaphore, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var handle vk.Semaphore
	if res := vk.CreateSemaphore(d.context.Device, &semaphoreCreateInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateSemaphore", res)
	}
	return &semaphore{object: d.context.newObject("semaphore"), handle: handle}, nil
}

func (d *Device) DestroySemaphore(s hal.Semaphore) {
	vk.DestroySemaphore(d.context.Device, s.(*semaphore).handle, d.context.Allocator)
}

func semaphoreHandles(list []hal.Semaphore) []vk.Semaphore {
	out := make([]vk.Semaphore, 0, len(list))
	for _, s := range list {
		out = append(out, s.(*semaphore).handle)
	}
	return out
}
