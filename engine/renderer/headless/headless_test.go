package headless

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

func openDevice(t *testing.T, cfg Config) (*Instance, hal.Device) {
	t.Helper()
	inst := NewInstance(cfg)
	adapters, err := inst.Adapters()
	require.NoError(t, err)
	device, err := adapters[0].Open(0, 1)
	require.NoError(t, err)
	return inst, device
}

func TestFenceWaitTimeout(t *testing.T) {
	_, device := openDevice(t, DefaultConfig())

	f, err := device.CreateFence(false)
	require.NoError(t, err)
	assert.ErrorIs(t, device.WaitForFence(f, 0), hal.ErrTimeout)
	assert.ErrorIs(t, device.WaitForFence(f, uint64(time.Millisecond)), hal.ErrTimeout)

	signaled, err := device.CreateFence(true)
	require.NoError(t, err)
	assert.NoError(t, device.WaitForFence(signaled, hal.WaitForever))
	require.NoError(t, device.ResetFence(signaled))
	ok, err := device.FenceSignaled(signaled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShaderModuleRequiresSPIRV(t *testing.T) {
	inst, device := openDevice(t, DefaultConfig())

	_, err := device.CreateShaderModule([]uint32{1, 2, 3, 4, 5})
	assert.Error(t, err)
	_, err = device.CreateShaderModule([]uint32{spirvMagic})
	assert.Error(t, err)
	m, err := device.CreateShaderModule([]uint32{spirvMagic, 0x10000, 0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, inst.Live("shader-module"))
	device.DestroyShaderModule(m)
	assert.Equal(t, 0, inst.Live("shader-module"))
}

func TestDestroyingBusyBufferIsViolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubmitLatency = 20 * time.Millisecond
	inst, device := openDevice(t, cfg)

	buf, err := device.CreateBuffer(16, hal.BufferUsageTransferSrc)
	require.NoError(t, err)
	mem, err := device.AllocateMemory(1, 256)
	require.NoError(t, err)
	require.NoError(t, device.BindBufferMemory(buf, mem, 0))
	img, err := device.CreateImage(hal.ImageDesc{Width: 2, Height: 2, Format: hal.FormatRGBA8Srgb})
	require.NoError(t, err)

	pool, err := device.CreateCommandPool(0, true)
	require.NoError(t, err)
	cmd, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, cmd.Begin(true))
	cmd.PipelineBarrier(hal.PipelineStageTopOfPipe, hal.PipelineStageTransfer, []hal.ImageBarrier{{Image: img, NewLayout: hal.ImageLayoutTransferDst}})
	cmd.CopyBufferToImage(buf, img, hal.ImageLayoutTransferDst, []hal.BufferImageCopy{{Width: 2, Height: 2}})
	require.NoError(t, cmd.End())

	fence, err := device.CreateFence(false)
	require.NoError(t, err)
	require.NoError(t, device.Queue(0).Submit(hal.Submission{CommandBuffers: []hal.CommandBuffer{cmd}}, fence))

	device.DestroyBuffer(buf)
	require.Len(t, inst.Violations(), 1)
	assert.Contains(t, inst.Violations()[0], "still in use")

	require.NoError(t, device.WaitForFence(fence, hal.WaitForever))
	assert.Equal(t, hal.ImageLayoutTransferDst, Layout(img))
}

func TestCopyHonoursRowLength(t *testing.T) {
	inst, device := openDevice(t, DefaultConfig())

	buf, err := device.CreateBuffer(32, hal.BufferUsageTransferSrc)
	require.NoError(t, err)
	mem, err := device.AllocateMemory(1, 256)
	require.NoError(t, err)
	require.NoError(t, device.BindBufferMemory(buf, mem, 0))
	data, err := device.MapMemory(mem, 0, 32)
	require.NoError(t, err)
	for i := range data {
		data[i] = byte(i)
	}
	device.UnmapMemory(mem)

	img, err := device.CreateImage(hal.ImageDesc{Width: 2, Height: 2, Format: hal.FormatRGBA8Srgb})
	require.NoError(t, err)
	pool, err := device.CreateCommandPool(0, true)
	require.NoError(t, err)
	cmd, err := pool.Allocate()
	require.NoError(t, err)
	require.NoError(t, cmd.Begin(true))
	cmd.PipelineBarrier(hal.PipelineStageTopOfPipe, hal.PipelineStageTransfer, []hal.ImageBarrier{{Image: img, NewLayout: hal.ImageLayoutTransferDst}})
	// rows are 16 bytes apart in the buffer but 8 bytes in the image
	cmd.CopyBufferToImage(buf, img, hal.ImageLayoutTransferDst, []hal.BufferImageCopy{{BufferRowLength: 4, Width: 2, Height: 2}})
	require.NoError(t, cmd.End())
	require.NoError(t, device.Queue(0).Submit(hal.Submission{CommandBuffers: []hal.CommandBuffer{cmd}}, nil))

	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 16, 17, 18, 19, 20, 21, 22, 23}, Pixels(img))
	assert.Empty(t, inst.Violations())
}

func TestSurfaceAcquireAndPresent(t *testing.T) {
	inst, device := openDevice(t, DefaultConfig())
	s := inst.HeadlessSurface()

	_, err := s.AcquireImage(hal.WaitForever)
	assert.ErrorIs(t, err, hal.ErrOutOfDate)

	require.NoError(t, s.Configure(device, hal.SwapchainConfig{
		Format:      hal.FormatBGRA8Srgb,
		Extent:      hal.Extent2D{Width: 1024, Height: 768},
		ImageCount:  2,
		PresentMode: hal.PresentModeFifo,
	}))
	assert.Equal(t, 2, inst.Live("swapchain-view"))

	var indices []uint32
	for i := 0; i < 3; i++ {
		img, err := s.AcquireImage(hal.WaitForever)
		require.NoError(t, err)
		indices = append(indices, img.Index)
		require.NoError(t, device.Queue(0).Present(s, img, nil))
	}
	assert.Equal(t, []uint32{0, 1, 0}, indices)
	assert.Equal(t, 3, s.Presents())

	s.Resize(640, 480)
	_, err = s.AcquireImage(hal.WaitForever)
	assert.ErrorIs(t, err, hal.ErrOutOfDate)

	s.Unconfigure(device)
	assert.Equal(t, 0, inst.Live("swapchain-view"))
	s.Destroy()
	assert.Empty(t, inst.Violations())
}

func TestSurfaceInjectedErrorsAreOneShot(t *testing.T) {
	inst, device := openDevice(t, DefaultConfig())
	s := inst.HeadlessSurface()
	require.NoError(t, s.Configure(device, hal.SwapchainConfig{
		Format:      hal.FormatBGRA8Unorm,
		Extent:      hal.Extent2D{Width: 1024, Height: 768},
		ImageCount:  3,
		PresentMode: hal.PresentModeMailbox,
	}))

	s.InjectAcquireError(hal.ErrSurfaceLost)
	_, err := s.AcquireImage(hal.WaitForever)
	assert.ErrorIs(t, err, hal.ErrSurfaceLost)

	img, err := s.AcquireImage(hal.WaitForever)
	require.NoError(t, err)
	s.InjectPresentError(hal.ErrSuboptimal)
	assert.ErrorIs(t, device.Queue(0).Present(s, img, nil), hal.ErrSuboptimal)

	img, err = s.AcquireImage(hal.WaitForever)
	require.NoError(t, err)
	assert.NoError(t, device.Queue(0).Present(s, img, nil))
	s.Unconfigure(device)
	assert.Empty(t, inst.Violations())
}

func TestConfigureOutsideCapabilitiesIsViolation(t *testing.T) {
	inst, device := openDevice(t, DefaultConfig())
	s := inst.HeadlessSurface()

	require.NoError(t, s.Configure(device, hal.SwapchainConfig{
		Format:     hal.FormatRGBA8Unorm,
		Extent:     hal.Extent2D{Width: 8192, Height: 768},
		ImageCount: 1,
	}))
	assert.Len(t, inst.Violations(), 3)
	s.Unconfigure(device)
}
