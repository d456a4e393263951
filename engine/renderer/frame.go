package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// FrameResources is everything one frame slot records and submits with. The
// in-flight fence guards reuse: a slot is only reset once the GPU is done
// with the previous frame that used it. The fence is only reset right before
// a submit, so a frame that fails earlier leaves it signaled.
type FrameResources struct {
	id               uuid.UUID
	ctx              *DeviceContext
	pool             hal.CommandPool
	free             []hal.CommandBuffer
	used             []hal.CommandBuffer
	presentSemaphore hal.Semaphore
	inFlight         hal.Fence
	// pending is set while a submission signaling inFlight is outstanding
	pending bool
	// framebuffers retired by the last frame of this slot
	framebuffers []hal.Framebuffer
}

func NewFrameResources(ctx *DeviceContext) (*FrameResources, error) {
	device := ctx.Device()
	pool, err := device.CreateCommandPool(ctx.QueueFamily(), true)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame command pool: %w", err)
	}
	sem, err := device.CreateSemaphore()
	if err != nil {
		device.DestroyCommandPool(pool)
		return nil, fmt.Errorf("failed to create present semaphore: %w", err)
	}
	fence, err := device.CreateFence(true)
	if err != nil {
		device.DestroySemaphore(sem)
		device.DestroyCommandPool(pool)
		return nil, fmt.Errorf("failed to create in-flight fence: %w", err)
	}
	return &FrameResources{
		id:               ctx.register("frame-resources"),
		ctx:              ctx,
		pool:             pool,
		presentSemaphore: sem,
		inFlight:         fence,
	}, nil
}

// NewFrameSet creates one FrameResources per swapchain image.
func NewFrameSet(ctx *DeviceContext, count uint32) ([]*FrameResources, error) {
	frames := make([]*FrameResources, 0, count)
	for i := uint32(0); i < count; i++ {
		f, err := NewFrameResources(ctx)
		if err != nil {
			for _, f := range frames {
				f.Destroy()
			}
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// Begin waits until the slot's previous submission completed, recycles its
// command buffers and returns one in the initial state.
func (f *FrameResources) Begin() (hal.CommandBuffer, error) {
	if err := f.wait(); err != nil {
		return nil, err
	}
	f.releaseFramebuffers()
	if err := f.pool.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset frame command pool: %w", err)
	}
	f.free = append(f.free, f.used...)
	f.used = f.used[:0]

	var cmd hal.CommandBuffer
	if n := len(f.free); n > 0 {
		cmd, f.free = f.free[n-1], f.free[:n-1]
	} else {
		var err error
		if cmd, err = f.pool.Allocate(); err != nil {
			return nil, fmt.Errorf("failed to allocate frame command buffer: %w", err)
		}
	}
	f.used = append(f.used, cmd)
	return cmd, nil
}

func (f *FrameResources) wait() error {
	if !f.pending {
		return nil
	}
	if err := f.ctx.Device().WaitForFence(f.inFlight, hal.WaitForever); err != nil {
		return fmt.Errorf("failed to wait for frame fence: %w", err)
	}
	f.pending = false
	return nil
}

// Submit queues cmd, signaling the present semaphore and the in-flight fence.
func (f *FrameResources) Submit(queue hal.Queue, cmd hal.CommandBuffer) error {
	if err := f.ctx.Device().ResetFence(f.inFlight); err != nil {
		return fmt.Errorf("failed to reset frame fence: %w", err)
	}
	err := queue.Submit(hal.Submission{
		CommandBuffers:   []hal.CommandBuffer{cmd},
		SignalSemaphores: []hal.Semaphore{f.presentSemaphore},
	}, f.inFlight)
	if err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	f.pending = true
	return nil
}

// Retire hands over a framebuffer used by the frame just submitted. It is
// destroyed once the slot's fence signals.
func (f *FrameResources) Retire(fb hal.Framebuffer) {
	f.framebuffers = append(f.framebuffers, fb)
}

func (f *FrameResources) releaseFramebuffers() {
	for _, fb := range f.framebuffers {
		f.ctx.Device().DestroyFramebuffer(fb)
	}
	f.framebuffers = f.framebuffers[:0]
}

func (f *FrameResources) PresentSemaphore() hal.Semaphore {
	return f.presentSemaphore
}

func (f *FrameResources) Destroy() {
	if f.pool == nil {
		return
	}
	device := f.ctx.Device()
	if err := f.wait(); err != nil {
		core.LogWarn("Waiting for frame fence failed: %s", err)
	}
	f.releaseFramebuffers()
	buffers := append(f.free, f.used...)
	if len(buffers) > 0 {
		f.pool.Free(buffers)
	}
	f.free, f.used = nil, nil
	device.DestroySemaphore(f.presentSemaphore)
	device.DestroyFence(f.inFlight)
	device.DestroyCommandPool(f.pool)
	f.pool, f.presentSemaphore, f.inFlight = nil, nil, nil
	f.ctx.unregister(f.id)
}
