package renderer

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

func TestRowPitch(t *testing.T) {
	assert.Equal(t, uint32(4096), RowPitch(1024, 256))
	assert.Equal(t, uint32(256), RowPitch(3, 256))
	assert.Equal(t, uint32(512), RowPitch(65, 256))
	assert.Equal(t, uint32(12), RowPitch(3, 4))
}

func TestNewBufferCopiesData(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())

	b, err := NewBuffer(ctx, []uint32{1, 2, 3}, hal.BufferUsageUniform)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), b.Size())
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}, readBuffer(t, b))
	assert.Equal(t, 1, ctx.LiveResources())

	b.Destroy()
	b.Destroy()
	assert.Equal(t, 0, ctx.LiveResources())
	assert.Equal(t, 0, inst.Live("buffer"))
	assert.Equal(t, 0, inst.Live("memory"))
	assert.Empty(t, inst.Violations())
}

func TestNewBufferPicksHostVisibleMemory(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())

	_, err := NewBuffer(ctx, []float32{1}, hal.BufferUsageVertex)
	require.NoError(t, err)
	// type 0 is device local only, type 1 is the first host-visible coherent one
	assert.Contains(t, inst.Calls(), "AllocateMemory memory-1 type=1 size=256")
}

func TestNewBufferWithoutHostVisibleMemory(t *testing.T) {
	cfg := headless.DefaultConfig()
	cfg.MemoryTypes = []hal.MemoryType{{Properties: hal.MemoryDeviceLocal}}
	inst, ctx := newTestContext(t, cfg)

	_, err := NewBuffer(ctx, []float32{1, 2}, hal.BufferUsageVertex)
	assert.ErrorIs(t, err, core.ErrNoMemoryType)
	assert.Equal(t, 0, inst.Live("buffer"))
	assert.Equal(t, 0, ctx.LiveResources())
}

func TestNewBufferRejectsEmptyData(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())

	_, err := NewBuffer(ctx, []float32{}, hal.BufferUsageVertex)
	assert.ErrorIs(t, err, core.ErrEmptyBuffer)
	assert.Empty(t, inst.CallsWithPrefix("CreateBuffer"))
	assert.Equal(t, 0, ctx.LiveResources())
}

func TestBufferUpdateOverflowPanics(t *testing.T) {
	_, ctx := newTestContext(t, headless.DefaultConfig())
	b, err := NewBuffer(ctx, []byte{1, 2, 3, 4}, hal.BufferUsageUniform)
	require.NoError(t, err)

	assert.PanicsWithError(t, "3 bytes at offset 2 into a 4 byte buffer: "+core.ErrBufferOverflow.Error(), func() {
		b.Update(2, []byte{9, 9, 9})
	})
	assert.Equal(t, []byte{1, 2, 3, 4}, readBuffer(t, b))

	assert.PanicsWithError(t, "2 bytes at offset 18446744073709551615 into a 4 byte buffer: "+core.ErrBufferOverflow.Error(), func() {
		b.Update(gomath.MaxUint64, []byte{9, 9})
	})
	assert.PanicsWithError(t, "0 bytes at offset 5 into a 4 byte buffer: "+core.ErrBufferOverflow.Error(), func() {
		b.Update(5, nil)
	})
	assert.Equal(t, []byte{1, 2, 3, 4}, readBuffer(t, b))

	assert.NotPanics(t, func() { b.Update(2, []byte{7, 8}) })
	assert.Equal(t, []byte{1, 2, 7, 8}, readBuffer(t, b))
}

func TestUpdateBufferTyped(t *testing.T) {
	_, ctx := newTestContext(t, headless.DefaultConfig())
	b, err := NewBuffer(ctx, []float32{0, 0, 0, 0}, hal.BufferUsageUniform)
	require.NoError(t, err)

	UpdateBuffer(b, 4, []float32{1})
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x80, 0x3f}, readBuffer(t, b)[:8])
	assert.Panics(t, func() { UpdateBuffer(b, 0, []float32{1, 2, 3, 4, 5}) })
}

func TestTextureStagingBufferLayout(t *testing.T) {
	_, ctx := newTestContext(t, headless.DefaultConfig())
	logo := newTestLogo(3, 2)

	staging, err := NewTextureStagingBuffer(ctx, logo, hal.BufferUsageTransferSrc)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), staging.Width)
	assert.Equal(t, uint32(2), staging.Height)
	assert.Equal(t, uint32(256), staging.RowPitch)
	assert.Equal(t, uint32(4), staging.Stride)
	assert.Equal(t, uint64(512), staging.Size())

	data := readBuffer(t, staging.Buffer)
	for y := 0; y < 2; y++ {
		row := data[y*256 : y*256+12]
		assert.Equal(t, logo.Pix[y*logo.Stride:y*logo.Stride+12], row)
		// padding after the texels stays untouched
		assert.Equal(t, make([]byte, 256-12), data[y*256+12:(y+1)*256])
	}
}
