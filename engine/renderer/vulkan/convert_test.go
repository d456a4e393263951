package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

func TestFlagConversion(t *testing.T) {
	assert.Equal(t,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|vk.BufferUsageVertexBufferBit),
		vkBufferUsage(hal.BufferUsageTransferDst|hal.BufferUsageVertex))
	assert.Equal(t,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vkImageUsage(hal.ImageUsageTransferDst|hal.ImageUsageSampled))
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), vkShaderStage(hal.ShaderStageVertex))
	assert.Zero(t, vkAccess(0))

	props := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	assert.Equal(t, hal.MemoryHostVisible|hal.MemoryHostCoherent, halMemoryProperty(props))
}

func TestFormatRoundTrip(t *testing.T) {
	for _, f := range []hal.Format{hal.FormatRGBA8Unorm, hal.FormatRGBA8Srgb, hal.FormatBGRA8Unorm, hal.FormatBGRA8Srgb} {
		assert.Equal(t, f, halFormat(vkFormat(f)))
	}
	assert.Equal(t, vk.FormatR32g32Sfloat, vkVertexFormat(hal.VertexFormatFloat32x2))
}

func TestPresentModes(t *testing.T) {
	modes := halPresentModes([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox})
	assert.Equal(t, []hal.PresentMode{hal.PresentModeFifo, hal.PresentModeMailbox}, modes)
	assert.Equal(t, vk.PresentModeMailbox, vkPresentMode(hal.PresentModeMailbox))
}

func TestExtents(t *testing.T) {
	e := hal.Extent2D{Width: 1024, Height: 768}
	assert.Equal(t, e, halExtent(vkExtent(e)))
}
