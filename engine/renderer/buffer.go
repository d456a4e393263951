package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/math"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// Buffer is a host-visible, host-coherent GPU buffer with its own memory
// allocation.
type Buffer struct {
	id     uuid.UUID
	ctx    *DeviceContext
	handle hal.Buffer
	memory hal.Memory
	size   uint64
	usage  hal.BufferUsage
}

// StagingBuffer holds an image laid out for a buffer to image copy: row y of
// the texels starts at y*RowPitch.
type StagingBuffer struct {
	*Buffer
	Width    uint32
	Height   uint32
	RowPitch uint32
	Stride   uint32
}

// NewBuffer creates a buffer holding a copy of data.
func NewBuffer[T any](ctx *DeviceContext, data []T, usage hal.BufferUsage) (*Buffer, error) {
	raw := asBytes(data)
	b, err := allocateBuffer(ctx, uint64(len(raw)), usage)
	if err != nil {
		return nil, err
	}
	if err := b.write(0, func(dst []byte) { copy(dst, raw) }); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// RowPitch is the byte length of one staging row of an RGBA8 image of the
// given width, rounded up to alignment.
func RowPitch(width, alignment uint32) uint32 {
	return math.AlignUp(width*4, alignment)
}

// NewTextureStagingBuffer copies img into a new buffer with rows aligned to
// the adapter's optimal copy pitch.
func NewTextureStagingBuffer(ctx *DeviceContext, img *image.RGBA, usage hal.BufferUsage) (*StagingBuffer, error) {
	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	pitch := RowPitch(width, uint32(ctx.Limits().OptimalBufferCopyPitchAlignment))

	b, err := allocateBuffer(ctx, uint64(pitch)*uint64(height), usage)
	if err != nil {
		return nil, err
	}
	err = b.write(0, func(dst []byte) {
		for y := 0; y < int(height); y++ {
			row := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst[uint32(y)*pitch:], img.Pix[row:row+int(width)*4])
		}
	})
	if err != nil {
		b.Destroy()
		return nil, err
	}

	return &StagingBuffer{
		Buffer:   b,
		Width:    width,
		Height:   height,
		RowPitch: pitch,
		Stride:   4,
	}, nil
}

func allocateBuffer(ctx *DeviceContext, size uint64, usage hal.BufferUsage) (*Buffer, error) {
	if size == 0 {
		return nil, core.ErrEmptyBuffer
	}
	device := ctx.Device()
	handle, err := device.CreateBuffer(size, usage)
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer of %d bytes: %w", size, err)
	}

	req := device.BufferRequirements(handle)
	typ, err := ctx.FindMemoryType(req.TypeMask, hal.MemoryHostVisible|hal.MemoryHostCoherent)
	if err != nil {
		device.DestroyBuffer(handle)
		return nil, fmt.Errorf("failed to find memory for buffer: %w", err)
	}
	mem, err := device.AllocateMemory(typ, req.Size)
	if err != nil {
		device.DestroyBuffer(handle)
		return nil, fmt.Errorf("failed to allocate %d bytes of buffer memory: %w", req.Size, err)
	}
	if err := device.BindBufferMemory(handle, mem, 0); err != nil {
		device.DestroyBuffer(handle)
		device.FreeMemory(mem)
		return nil, fmt.Errorf("failed to bind buffer memory: %w", err)
	}

	return &Buffer{
		id:     ctx.register("buffer"),
		ctx:    ctx,
		handle: handle,
		memory: mem,
		size:   size,
		usage:  usage,
	}, nil
}

// write maps size bytes at offset, hands them to fill and unmaps.
func (b *Buffer) write(offset uint64, fill func(dst []byte)) error {
	return b.writeRange(offset, b.size-offset, fill)
}

func (b *Buffer) writeRange(offset, size uint64, fill func(dst []byte)) error {
	device := b.ctx.Device()
	dst, err := device.MapMemory(b.memory, offset, size)
	if err != nil {
		return fmt.Errorf("failed to map buffer memory: %w", err)
	}
	fill(dst)
	device.UnmapMemory(b.memory)
	return nil
}

// Update overwrites len(data) bytes starting at offset. Writing past the end
// of the buffer is a programming error and panics.
func (b *Buffer) Update(offset uint64, data []byte) {
	if b.handle == nil {
		panic(fmt.Errorf("update of a destroyed buffer: %w", core.ErrResourceReleased))
	}
	if offset > b.size || uint64(len(data)) > b.size-offset {
		panic(fmt.Errorf("%d bytes at offset %d into a %d byte buffer: %w", len(data), offset, b.size, core.ErrBufferOverflow))
	}
	if len(data) == 0 {
		return
	}
	if err := b.writeRange(offset, uint64(len(data)), func(dst []byte) { copy(dst, data) }); err != nil {
		core.LogError("Buffer update failed: %s", err)
	}
}

// UpdateBuffer is Update for typed slices.
func UpdateBuffer[T any](b *Buffer, offset uint64, data []T) {
	b.Update(offset, asBytes(data))
}

func (b *Buffer) Handle() hal.Buffer {
	return b.handle
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Usage() hal.BufferUsage {
	return b.usage
}

// Destroy releases the buffer, then its memory. It is safe to call twice.
func (b *Buffer) Destroy() {
	if b.handle == nil {
		return
	}
	device := b.ctx.Device()
	device.DestroyBuffer(b.handle)
	device.FreeMemory(b.memory)
	b.handle, b.memory = nil, nil
	b.ctx.unregister(b.id)
}

func asBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*int(unsafe.Sizeof(zero)))
}
