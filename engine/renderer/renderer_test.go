package renderer

import (
	"encoding/binary"
	gomath "math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
	"github.com/spaghettifunk/tinted/engine/renderer/headless"
)

// liveLongLived counts the objects that must not pile up across swapchain
// recreations. Framebuffers and command buffers vary with the slot history.
func liveLongLived(inst *headless.Instance) map[string]int {
	counts := make(map[string]int)
	for _, kind := range []string{"render-pass", "pipeline", "pipeline-layout", "shader-module", "swapchain-view",
		"command-pool", "semaphore", "fence", "buffer", "image", "memory", "descriptor-set"} {
		counts[kind] = inst.Live(kind)
	}
	return counts
}

func TestRendererDrawsFrames(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Draw())
	}
	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, 4, inst.HeadlessSurface().Presents())
	assert.Equal(t, uint64(4*6), inst.Draws())
	assert.Equal(t, hal.ClearColor{0.8, 0.8, 0.8, 1}, inst.HeadlessSurface().ClearColor(0))

	// three slots, so the fourth frame reuses the first slot's command buffer
	assert.Len(t, inst.CallsWithPrefix("AllocateCommandBuffer"), 1+3)
	assert.Equal(t, []string{
		"CmdSetViewport",
		"CmdSetScissor",
		"CmdBindPipeline",
		"CmdBindVertexBuffers",
		"CmdBindDescriptorSets",
		"CmdPushConstants",
		"CmdBeginRenderPass",
		"CmdDraw",
		"CmdEndRenderPass",
	}, ops(inst.Calls(), "CmdSetViewport", "CmdSetScissor", "CmdBindPipeline", "CmdBindVertexBuffers",
		"CmdBindDescriptorSets", "CmdPushConstants", "CmdBeginRenderPass", "CmdDraw", "CmdEndRenderPass")[:9])

	r.Destroy()
	require.NoError(t, ctx.Destroy())
	assert.Equal(t, 0, inst.Live(""))
	assert.Empty(t, inst.Violations())
}

func TestRendererRecreatesOnceAfterAcquireFailure(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	require.NoError(t, r.Draw())

	liveResources, liveObjects := ctx.LiveResources(), liveLongLived(inst)
	inst.HeadlessSurface().InjectAcquireError(hal.ErrOutOfDate)
	require.NoError(t, r.Draw())
	assert.Equal(t, StateSwapchainInvalid, r.State())
	assert.Equal(t, 1, inst.HeadlessSurface().Presents())

	inst.ResetCalls()
	require.NoError(t, r.Draw())
	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, []string{
		"WaitIdle",
		"ConfigureSurface",
		"CreateRenderPass",
		"CreateCommandPool",
		"CreateCommandPool",
		"CreateCommandPool",
		"CreateGraphicsPipeline",
		"CmdSetViewport",
	}, ops(inst.Calls(), "WaitIdle", "ConfigureSurface", "CreateRenderPass", "CreateCommandPool", "CreateGraphicsPipeline", "CmdSetViewport"))

	require.NoError(t, r.Draw())
	assert.Equal(t, 3, inst.HeadlessSurface().Presents())
	assert.Equal(t, liveResources, ctx.LiveResources())
	assert.Equal(t, liveObjects, liveLongLived(inst))
	assert.Empty(t, inst.Violations())

	r.Destroy()
	require.NoError(t, ctx.Destroy())
}

func TestRendererResize(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	require.NoError(t, r.Draw())

	inst.HeadlessSurface().Resize(800, 600)
	r.Resize(800, 600)
	assert.Equal(t, StateSwapchainInvalid, r.State())
	require.NoError(t, r.Draw())
	assert.Equal(t, hal.Extent2D{Width: 800, Height: 600}, r.Swapchain().Extent())
	assert.Equal(t, hal.Extent2D{Width: 800, Height: 600}, inst.HeadlessSurface().Config().Extent)
	viewports := inst.CallsWithPrefix("CmdSetViewport")
	assert.True(t, strings.HasSuffix(viewports[len(viewports)-1], " 800x600"))

	// minimized windows skip frames until they come back
	inst.HeadlessSurface().Resize(0, 0)
	r.Resize(0, 0)
	require.NoError(t, r.Draw())
	assert.Equal(t, StateSwapchainInvalid, r.State())
	presents := inst.HeadlessSurface().Presents()

	inst.HeadlessSurface().Resize(1024, 768)
	require.NoError(t, r.Draw())
	assert.Equal(t, StateRunning, r.State())
	assert.Equal(t, presents+1, inst.HeadlessSurface().Presents())

	r.Destroy()
	require.NoError(t, ctx.Destroy())
	assert.Empty(t, inst.Violations())
}

func TestRendererPresentFailureInvalidatesSwapchain(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())

	inst.HeadlessSurface().InjectPresentError(hal.ErrSuboptimal)
	require.NoError(t, r.Draw())
	assert.Equal(t, StateSwapchainInvalid, r.State())

	require.NoError(t, r.Draw())
	assert.Equal(t, StateRunning, r.State())
	assert.Len(t, inst.CallsWithPrefix("ConfigureSurface"), 2)

	r.Destroy()
	require.NoError(t, ctx.Destroy())
	assert.Empty(t, inst.Violations())
}

func TestRendererWithSubmitLatency(t *testing.T) {
	cfg := headless.DefaultConfig()
	cfg.SubmitLatency = 5 * time.Millisecond
	inst, ctx, r := newTestRenderer(t, cfg)

	for i := 0; i < 8; i++ {
		require.NoError(t, r.Draw())
	}
	inst.HeadlessSurface().InjectAcquireError(hal.ErrSurfaceLost)
	require.NoError(t, r.Draw())
	require.NoError(t, r.Draw())

	r.Destroy()
	require.NoError(t, ctx.Destroy())
	assert.Equal(t, uint64(9*6), inst.Draws())
	assert.Empty(t, inst.Violations())
}

type failingQueue struct {
	hal.Queue
}

func (q failingQueue) Submit(hal.Submission, hal.Fence) error {
	return hal.ErrDeviceLost
}

func TestRendererDestroyAfterFailedSubmit(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	require.NoError(t, r.Draw())

	queue := ctx.queue
	ctx.queue = failingQueue{Queue: queue}
	assert.ErrorIs(t, r.Draw(), hal.ErrDeviceLost)

	destroyed := make(chan struct{})
	go func() {
		r.Destroy()
		close(destroyed)
	}()
	select {
	case <-destroyed:
	case <-time.After(2 * time.Second):
		t.Fatal("Destroy blocked after a failed submit")
	}
	require.NoError(t, ctx.Destroy())
	assert.Equal(t, 0, inst.Live(""))
	assert.Empty(t, inst.Violations())
}

func TestRendererDrawsAgainAfterFailedSubmit(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	defer func() {
		r.Destroy()
		require.NoError(t, ctx.Destroy())
	}()

	queue := ctx.queue
	ctx.queue = failingQueue{Queue: queue}
	require.Error(t, r.Draw())
	ctx.queue = queue

	done := make(chan error)
	go func() { done <- r.Draw() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Draw blocked on the fence of a failed frame")
	}
	assert.Equal(t, 1, inst.HeadlessSurface().Presents())
}

func TestRendererInputUpdatesTint(t *testing.T) {
	_, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	defer func() {
		r.Destroy()
		require.NoError(t, ctx.Destroy())
	}()

	for _, k := range []core.KeyCode{core.KEY_G, core.KEY_5, core.KEY_1, core.KEY_ENTER} {
		r.Input(k)
	}
	data := readBuffer(t, r.uniform)
	require.Len(t, data, 16)
	tint := make([]float32, 4)
	for i := range tint {
		tint[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	assert.InDelta(t, 1.0, tint[0], 1e-6)
	assert.InDelta(t, 0.2, tint[1], 1e-6)
	assert.InDelta(t, 1.0, tint[3], 1e-6)

	r.Input(core.KEY_A)
	r.Input(core.KEY_0)
	r.Input(core.KEY_C)
	require.NoError(t, r.Draw())
	assert.Equal(t, [4]float32{0, 0, 0, 0}, r.Editor().Background())
}

func TestRendererReloadShaders(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())
	shaders := newTestShaders()
	r, err := New(ctx, inst.Surface(), shaders, newTestLogo(4, 4), core.DefaultConfig().Renderer, WithShaderCompiler(fakeCompile))
	require.NoError(t, err)
	require.NoError(t, r.Draw())
	old := r.pipeline

	shaders.fragment = "broken"
	r.ReloadShaders()
	require.NoError(t, r.Draw())
	assert.Same(t, old, r.pipeline)

	shaders.fragment = "fixed"
	r.ReloadShaders()
	require.NoError(t, r.Draw())
	assert.NotSame(t, old, r.pipeline)
	assert.Equal(t, 1, inst.Live("pipeline"))
	assert.Equal(t, 0, inst.Live("shader-module"))

	r.Destroy()
	require.NoError(t, ctx.Destroy())
	assert.Empty(t, inst.Violations())
}

func TestRendererInitialCompileFailureIsFatal(t *testing.T) {
	inst, ctx := newTestContext(t, headless.DefaultConfig())
	shaders := &testShaders{vertex: "broken", fragment: "fragment"}

	_, err := New(ctx, inst.Surface(), shaders, newTestLogo(4, 4), core.DefaultConfig().Renderer, WithShaderCompiler(fakeCompile))
	require.Error(t, err)
	assert.Equal(t, 0, ctx.LiveResources())
	require.NoError(t, ctx.Destroy())
	assert.Equal(t, 0, inst.Live(""))
}

func TestRendererTerminate(t *testing.T) {
	inst, ctx, r := newTestRenderer(t, headless.DefaultConfig())
	r.Terminate()
	r.Resize(10, 10)
	require.NoError(t, r.Draw())
	assert.Equal(t, StateTerminating, r.State())
	assert.Equal(t, 0, inst.HeadlessSurface().Presents())

	r.Destroy()
	require.NoError(t, ctx.Destroy())
}

func TestDeviceContextRefusesToDestroyWithLiveResources(t *testing.T) {
	_, ctx := newTestContext(t, headless.DefaultConfig())
	b, err := NewBuffer(ctx, []byte{1}, hal.BufferUsageUniform)
	require.NoError(t, err)

	assert.ErrorIs(t, ctx.Destroy(), core.ErrResourcesAlive)
	b.Destroy()
	assert.NoError(t, ctx.Destroy())
}

func TestFindMemoryType(t *testing.T) {
	_, ctx := newTestContext(t, headless.DefaultConfig())

	typ, err := ctx.FindMemoryType(0b111, hal.MemoryHostVisible)
	require.NoError(t, err)
	assert.Equal(t, hal.MemoryTypeID(1), typ)

	typ, err = ctx.FindMemoryType(0b101, hal.MemoryHostVisible)
	require.NoError(t, err)
	assert.Equal(t, hal.MemoryTypeID(2), typ)

	_, err = ctx.FindMemoryType(0b001, hal.MemoryHostVisible)
	assert.ErrorIs(t, err, core.ErrNoMemoryType)
}

func TestCompileWGSLQuadShaders(t *testing.T) {
	for _, path := range []string{"../../assets/shaders/quad.vert.wgsl", "../../assets/shaders/quad.frag.wgsl"} {
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		words, err := CompileWGSL(string(src))
		require.NoError(t, err, path)
		require.GreaterOrEqual(t, len(words), 5)
		assert.Equal(t, uint32(0x07230203), words[0])
	}

	_, err := CompileWGSL("fn main( {")
	assert.ErrorIs(t, err, core.ErrShaderCompile)
}
