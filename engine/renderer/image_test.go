package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

func newTestImage(t *testing.T, cfg headless.Config) (*headless.Instance, *DeviceContext, *Image, func()) {
	t.Helper()
	inst, ctx := newTestContext(t, cfg)
	layout, err := NewDescriptorSetLayout(ctx, ImageSetBindings)
	require.NoError(t, err)
	binding, err := NewDescriptorBinding(ctx, layout)
	require.NoError(t, err)
	pool, err := ctx.Device().CreateCommandPool(ctx.QueueFamily(), true)
	require.NoError(t, err)

	img, err := NewImage(ctx, binding, newTestLogo(5, 3), pool)
	require.NoError(t, err)
	assert.True(t, binding.Written())

	cleanup := func() {
		img.Destroy()
		ctx.Device().DestroyCommandPool(pool)
		binding.Destroy()
		layout.Destroy()
	}
	return inst, ctx, img, cleanup
}

func TestImageUpload(t *testing.T) {
	inst, ctx, img, cleanup := newTestImage(t, headless.DefaultConfig())

	require.NoError(t, img.WaitForTransferCompletion())
	assert.Equal(t, hal.Extent2D{Width: 5, Height: 3}, img.Extent())
	assert.Equal(t, hal.ImageLayoutShaderReadOnly, headless.Layout(img.Handle()))
	assert.Equal(t, newTestLogo(5, 3).Pix, headless.Pixels(img.Handle()))

	assert.Equal(t, []string{
		"CmdPipelineBarrier",
		"CmdCopyBufferToImage",
		"CmdPipelineBarrier",
		"QueueSubmit",
	}, ops(inst.Calls(), "CmdPipelineBarrier", "CmdCopyBufferToImage", "QueueSubmit"))

	cleanup()
	assert.Equal(t, 0, ctx.LiveResources())
	assert.Empty(t, inst.Violations())
}

func TestImageUploadUsesDeviceLocalMemory(t *testing.T) {
	inst, _, img, cleanup := newTestImage(t, headless.DefaultConfig())
	defer cleanup()
	require.NoError(t, img.WaitForTransferCompletion())

	// the staging buffer takes memory-1, the image memory-2 of type 0
	assert.Contains(t, inst.Calls(), "AllocateMemory memory-2 type=0 size=4096")
}

func TestImageDestroyWaitsForPendingUpload(t *testing.T) {
	cfg := headless.DefaultConfig()
	cfg.SubmitLatency = 50 * time.Millisecond
	inst, ctx, img, cleanup := newTestImage(t, cfg)

	inst.ResetCalls()
	start := time.Now()
	img.Destroy()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	assert.Equal(t, []string{
		"WaitForFence",
		"DestroyFence",
		"DestroySampler",
		"DestroyImageView",
		"DestroyImage",
		"FreeMemory",
		"DestroyBuffer",
		"FreeMemory",
	}, ops(inst.Calls(), "WaitForFence", "DestroyFence", "DestroySampler", "DestroyImageView", "DestroyImage", "FreeMemory", "DestroyBuffer"))
	assert.Empty(t, inst.Violations())

	cleanup()
	assert.Equal(t, 0, ctx.LiveResources())
}

func TestDescriptorBindingWritesOnce(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())
	layout, err := NewDescriptorSetLayout(ctx, UniformSetBindings)
	require.NoError(t, err)
	assert.Equal(t, []hal.DescriptorPoolSize{{Type: hal.DescriptorTypeUniformBuffer, Count: 1}}, layout.PoolSizes())

	binding, err := NewDescriptorBinding(ctx, layout)
	require.NoError(t, err)
	buf, err := NewBuffer(ctx, []float32{1, 1, 1, 1}, hal.BufferUsageUniform)
	require.NoError(t, err)

	write := hal.DescriptorWrite{Binding: 0, Type: hal.DescriptorTypeUniformBuffer, Buffer: buf.Handle(), BufferRange: buf.Size()}
	require.NoError(t, binding.Write(write))
	assert.ErrorIs(t, binding.Write(write), core.ErrDescriptorSetWritten)

	buf.Destroy()
	binding.Destroy()
	binding.Destroy()
	layout.Destroy()
	assert.Equal(t, 0, inst.Live("descriptor-set"))
	assert.Equal(t, 0, ctx.LiveResources())
	assert.Empty(t, inst.Violations())
}
