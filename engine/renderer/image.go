package renderer

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// Image is a sampled, device-local RGBA8 sRGB texture. Its upload runs
// asynchronously; the transfer fence tells when the texels are in place.
type Image struct {
	id      uuid.UUID
	ctx     *DeviceContext
	staging *StagingBuffer
	handle  hal.Image
	memory  hal.Memory
	view    hal.ImageView
	sampler hal.Sampler
	fence   hal.Fence
	pool    hal.CommandPool
	cmd     hal.CommandBuffer
	width   uint32
	height  uint32

	// submitted is set once the upload is queued
	submitted bool
}

// NewImage uploads img to a new texture, writes the view and the sampler to
// binding and submits the copy on a one-time command buffer from pool. It
// does not wait for the copy.
func NewImage(ctx *DeviceContext, binding *DescriptorBinding, img *image.RGBA, pool hal.CommandPool) (*Image, error) {
	staging, err := NewTextureStagingBuffer(ctx, img, hal.BufferUsageTransferSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to stage image: %w", err)
	}

	i := &Image{
		id:      ctx.register("image"),
		ctx:     ctx,
		staging: staging,
		pool:    pool,
		width:   staging.Width,
		height:  staging.Height,
	}
	if err := i.create(binding); err != nil {
		i.Destroy()
		return nil, err
	}
	return i, nil
}

func (i *Image) create(binding *DescriptorBinding) error {
	device := i.ctx.Device()

	var err error
	i.handle, err = device.CreateImage(hal.ImageDesc{
		Width:  i.width,
		Height: i.height,
		Format: hal.FormatRGBA8Srgb,
		Usage:  hal.ImageUsageTransferDst | hal.ImageUsageSampled,
	})
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}

	req := device.ImageRequirements(i.handle)
	typ, err := i.ctx.FindMemoryType(req.TypeMask, hal.MemoryDeviceLocal)
	if err != nil {
		return fmt.Errorf("failed to find memory for image: %w", err)
	}
	if i.memory, err = device.AllocateMemory(typ, req.Size); err != nil {
		return fmt.Errorf("failed to allocate image memory: %w", err)
	}
	if err := device.BindImageMemory(i.handle, i.memory, 0); err != nil {
		return fmt.Errorf("failed to bind image memory: %w", err)
	}

	if i.view, err = device.CreateImageView(i.handle, hal.FormatRGBA8Srgb); err != nil {
		return fmt.Errorf("failed to create image view: %w", err)
	}
	if i.sampler, err = device.CreateSampler(hal.SamplerDesc{Filter: hal.FilterLinear, Address: hal.AddressModeClampToEdge}); err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}

	err = binding.Write(
		hal.DescriptorWrite{Binding: 0, Type: hal.DescriptorTypeSampledImage, View: i.view, Layout: hal.ImageLayoutShaderReadOnly},
		hal.DescriptorWrite{Binding: 1, Type: hal.DescriptorTypeSampler, Sampler: i.sampler},
	)
	if err != nil {
		return fmt.Errorf("failed to bind image: %w", err)
	}

	if i.fence, err = device.CreateFence(false); err != nil {
		return fmt.Errorf("failed to create transfer fence: %w", err)
	}
	if i.cmd, err = i.pool.Allocate(); err != nil {
		return fmt.Errorf("failed to allocate transfer command buffer: %w", err)
	}
	return i.upload()
}

func (i *Image) upload() error {
	cmd := i.cmd
	if err := cmd.Begin(true); err != nil {
		return err
	}
	cmd.PipelineBarrier(hal.PipelineStageTopOfPipe, hal.PipelineStageTransfer, []hal.ImageBarrier{{
		Image:     i.handle,
		SrcAccess: hal.AccessNone,
		DstAccess: hal.AccessTransferWrite,
		OldLayout: hal.ImageLayoutUndefined,
		NewLayout: hal.ImageLayoutTransferDst,
	}})
	cmd.CopyBufferToImage(i.staging.Handle(), i.handle, hal.ImageLayoutTransferDst, []hal.BufferImageCopy{{
		BufferOffset:      0,
		BufferRowLength:   i.staging.RowPitch / i.staging.Stride,
		BufferImageHeight: i.height,
		Width:             i.width,
		Height:            i.height,
	}})
	cmd.PipelineBarrier(hal.PipelineStageTransfer, hal.PipelineStageFragmentShader, []hal.ImageBarrier{{
		Image:     i.handle,
		SrcAccess: hal.AccessTransferWrite,
		DstAccess: hal.AccessShaderRead,
		OldLayout: hal.ImageLayoutTransferDst,
		NewLayout: hal.ImageLayoutShaderReadOnly,
	}})
	if err := cmd.End(); err != nil {
		return err
	}

	if err := i.ctx.Queue().Submit(hal.Submission{CommandBuffers: []hal.CommandBuffer{cmd}}, i.fence); err != nil {
		return fmt.Errorf("failed to submit image upload: %w", err)
	}
	i.submitted = true
	core.LogDebug("Image upload of %dx%d submitted (row pitch %d)", i.width, i.height, i.staging.RowPitch)
	return nil
}

// WaitForTransferCompletion blocks until the upload finished.
func (i *Image) WaitForTransferCompletion() error {
	if i.fence == nil {
		return core.ErrResourceReleased
	}
	return i.ctx.Device().WaitForFence(i.fence, hal.WaitForever)
}

func (i *Image) Handle() hal.Image {
	return i.handle
}

func (i *Image) View() hal.ImageView {
	return i.view
}

func (i *Image) Extent() hal.Extent2D {
	return hal.Extent2D{Width: i.width, Height: i.height}
}

// Destroy waits for the upload, then releases the fence, sampler, view,
// image, memory and staging buffer in that order. It is safe to call twice.
func (i *Image) Destroy() {
	if i.staging == nil {
		return
	}
	device := i.ctx.Device()

	// the fence only ever signals once the upload was submitted
	if i.submitted {
		if err := device.WaitForFence(i.fence, hal.WaitForever); err != nil {
			core.LogWarn("Waiting for image upload failed: %s", err)
		}
	}
	if i.cmd != nil {
		i.pool.Free([]hal.CommandBuffer{i.cmd})
		i.cmd = nil
	}
	if i.fence != nil {
		device.DestroyFence(i.fence)
		i.fence = nil
	}
	if i.sampler != nil {
		device.DestroySampler(i.sampler)
		i.sampler = nil
	}
	if i.view != nil {
		device.DestroyImageView(i.view)
		i.view = nil
	}
	if i.handle != nil {
		device.DestroyImage(i.handle)
		i.handle = nil
	}
	if i.memory != nil {
		device.FreeMemory(i.memory)
		i.memory = nil
	}
	i.staging.Destroy()
	i.staging = nil
	i.ctx.unregister(i.id)
}
