package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type Queue struct {
	context *VulkanContext
	handle  vk.Queue
}

func (q *Queue) Submit(submission hal.Submission, f hal.Fence) error {
	buffers := make([]vk.CommandBuffer, len(submission.CommandBuffers))
	for i, b := range submission.CommandBuffers {
		buffers[i] = b.(*commandBuffer).handle
	}
	stages := make([]vk.PipelineStageFlags, len(submission.WaitStages))
	for i, s := range submission.WaitStages {
		stages[i] = vkPipelineStage(s)
	}
	waits := semaphoreHandles(submission.WaitSemaphores)
	signals := semaphoreHandles(submission.SignalSemaphores)

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waits)),
		PWaitSemaphores:      waits,
		PWaitDstStageMask:    stages,
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(signals)),
		PSignalSemaphores:    signals,
	}

	fenceHandle := vk.NullFence
	if f != nil {
		fenceHandle = f.(*fence).handle
	}
	return q.context.locks.SafeCall(QueueManagement, func() error {
		return resultError("vkQueueSubmit", vk.QueueSubmit(q.handle, 1, []vk.SubmitInfo{submitInfo}, fenceHandle))
	})
}

// Present returns img to the swapchain of surface once wait is signaled.
// A suboptimal swapchain is reported as hal.ErrSuboptimal after the image
// was queued.
func (q *Queue) Present(surface hal.Surface, img hal.SwapchainImage, wait hal.Semaphore) error {
	s := surface.(*Surface)
	var waits []vk.Semaphore
	if wait != nil {
		waits = []vk.Semaphore{wait.(*semaphore).handle}
	}
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(waits)),
		PWaitSemaphores:    waits,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain},
		PImageIndices:      []uint32{img.Index},
	}
	return q.context.locks.SafeCall(QueueManagement, func() error {
		return resultError("vkQueuePresentKHR", vk.QueuePresent(q.handle, &presentInfo))
	})
}
