package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

func TestResultErrorWrapsBackendConditions(t *testing.T) {
	assert.NoError(t, resultError("vkQueuePresentKHR", vk.Success))

	cases := map[vk.Result]error{
		vk.ErrorOutOfDate:   hal.ErrOutOfDate,
		vk.Suboptimal:       hal.ErrSuboptimal,
		vk.ErrorSurfaceLost: hal.ErrSurfaceLost,
		vk.ErrorDeviceLost:  hal.ErrDeviceLost,
		vk.Timeout:          hal.ErrTimeout,
		vk.NotReady:         hal.ErrTimeout,
	}
	for result, sentinel := range cases {
		err := resultError("vkAcquireNextImageKHR", result)
		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "vkAcquireNextImageKHR failed with")
	}

	err := resultError("vkCreateBuffer", vk.ErrorOutOfHostMemory)
	assert.EqualError(t, err, "vkCreateBuffer failed with "+VulkanResultString(vk.ErrorOutOfHostMemory, true))
}

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success, false))
	assert.Contains(t, VulkanResultString(vk.Timeout, true), "VK_TIMEOUT ")
	assert.Equal(t, "VkResult(12345)", VulkanResultString(vk.Result(12345), false))

	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "main\x00", VulkanSafeString("main"))
	assert.Equal(t, "main\x00", VulkanSafeString("main\x00"))

	in := []string{"VK_KHR_surface", "VK_KHR_swapchain\x00"}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_swapchain\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0])
}

func TestCString(t *testing.T) {
	assert.Equal(t, "llvmpipe", cString([]byte("llvmpipe\x00\x00garbage")))
	assert.Equal(t, "full", cString([]byte("full")))
	assert.Equal(t, 0, FindFirstZeroInByteArray([]byte{0, 1}))
	assert.Equal(t, 2, FindFirstZeroInByteArray([]byte{1, 2}))
}
