package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

func TestChooseFormat(t *testing.T) {
	assert.Equal(t, hal.FormatBGRA8Srgb, ChooseFormat([]hal.Format{hal.FormatBGRA8Unorm, hal.FormatBGRA8Srgb, hal.FormatRGBA8Srgb}))
	assert.Equal(t, hal.FormatBGRA8Unorm, ChooseFormat([]hal.Format{hal.FormatBGRA8Unorm, hal.FormatRGBA8Unorm}))
	assert.Equal(t, hal.FormatRGBA8Srgb, ChooseFormat(nil))
}

func TestChooseExtent(t *testing.T) {
	caps := headless.DefaultConfig().Capabilities
	caps.CurrentExtent = hal.Extent2D{Width: 640, Height: 480}
	assert.Equal(t, hal.Extent2D{Width: 640, Height: 480}, ChooseExtent(caps))

	caps.CurrentExtent = hal.Extent2D{Width: hal.UndefinedExtent, Height: hal.UndefinedExtent}
	assert.Equal(t, DefaultExtent, ChooseExtent(caps))

	caps.MaxImageExtent = hal.Extent2D{Width: 800, Height: 600}
	assert.Equal(t, hal.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), ChooseImageCount(hal.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(3), ChooseImageCount(hal.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3}))
	assert.Equal(t, uint32(5), ChooseImageCount(hal.SurfaceCapabilities{MinImageCount: 4, MaxImageCount: 0}))
}

func TestChoosePresentMode(t *testing.T) {
	caps := hal.SurfaceCapabilities{PresentModes: []hal.PresentMode{hal.PresentModeFifo}}
	assert.Equal(t, hal.PresentModeFifo, ChoosePresentMode(caps, hal.PresentModeMailbox))

	caps.PresentModes = append(caps.PresentModes, hal.PresentModeMailbox)
	assert.Equal(t, hal.PresentModeMailbox, ChoosePresentMode(caps, hal.PresentModeMailbox))
}

func TestSwapchainSlotsRoundRobin(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())

	sc, err := NewSwapchain(ctx, inst.Surface(), hal.PresentModeFifo)
	require.NoError(t, err)
	require.Equal(t, uint32(3), sc.FrameQueueSize())
	assert.Equal(t, hal.FormatBGRA8Srgb, sc.Format())
	assert.Equal(t, hal.Extent2D{Width: 1024, Height: 768}, sc.Extent())
	assert.Equal(t, hal.Viewport{Rect: hal.Rect2D{Extent: sc.Extent()}, MaxDepth: 1}, sc.Viewport())

	var slots []uint32
	for i := 0; i < 7; i++ {
		slots = append(slots, sc.NextSlot())
	}
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2, 0}, slots)

	sc.Destroy()
	sc, err = NewSwapchain(ctx, inst.Surface(), hal.PresentModeFifo)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), sc.NextSlot())
	assert.Equal(t, uint32(1), sc.NextSlot())

	sc.Destroy()
	sc.Destroy()
	assert.Equal(t, 0, inst.Live("swapchain-view"))
	assert.Equal(t, 0, ctx.LiveResources())
	assert.Empty(t, inst.Violations())
}

func TestSwapchainMinimized(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())
	inst.HeadlessSurface().Resize(0, 0)

	_, err := NewSwapchain(ctx, inst.Surface(), hal.PresentModeFifo)
	assert.ErrorIs(t, err, core.ErrSwapchainInvalid)
	assert.Equal(t, 0, ctx.LiveResources())
}

func TestFrameResourcesReuseCommandBuffers(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())
	frame, err := NewFrameResources(ctx)
	require.NoError(t, err)

	var first hal.CommandBuffer
	for i := 0; i < 3; i++ {
		cmd, err := frame.Begin()
		require.NoError(t, err)
		if first == nil {
			first = cmd
		}
		assert.Same(t, first, cmd)
		require.NoError(t, cmd.Begin(false))
		require.NoError(t, cmd.End())
		require.NoError(t, frame.Submit(ctx.Queue(), cmd))
		// nobody presents in this test, consume the signal by hand
		require.NoError(t, ctx.Queue().Submit(hal.Submission{WaitSemaphores: []hal.Semaphore{frame.PresentSemaphore()}}, nil))
	}
	assert.Len(t, inst.CallsWithPrefix("AllocateCommandBuffer"), 1)
	assert.Len(t, inst.CallsWithPrefix("ResetCommandPool"), 3)

	frame.Destroy()
	assert.Equal(t, 0, inst.Live("command-buffer"))
	assert.Equal(t, 0, inst.Live("fence"))
	assert.Equal(t, 0, ctx.LiveResources())
	assert.Empty(t, inst.Violations())
}
