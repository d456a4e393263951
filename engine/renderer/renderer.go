package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/math"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type State uint8

const (
	StateRunning State = iota
	StateSwapchainInvalid
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSwapchainInvalid:
		return "swapchain-invalid"
	case StateTerminating:
		return "terminating"
	}
	return "unknown"
}

type Option func(*Renderer)

// WithShaderCompiler replaces the naga compiler, mostly for tests.
func WithShaderCompiler(c ShaderCompiler) Option {
	return func(r *Renderer) {
		r.compile = c
	}
}

// Renderer draws the tinted logo quad every frame and recovers from
// swapchain invalidation.
type Renderer struct {
	ctx         *DeviceContext
	surface     hal.Surface
	shaders     ShaderSource
	compile     ShaderCompiler
	presentMode hal.PresentMode

	swapchain      *Swapchain
	renderPass     *RenderPass
	imageLayout    *DescriptorSetLayout
	uniformLayout  *DescriptorSetLayout
	imageBinding   *DescriptorBinding
	uniformBinding *DescriptorBinding
	uploadPool     hal.CommandPool
	logo           *Image
	vertices       *Buffer
	uniform        *Buffer
	pipeline       *Pipeline
	frames         []*FrameResources
	viewport       hal.Viewport

	editor       *ColorEditor
	offset       math.Vec2
	state        State
	reloadShader bool
}

// New builds every GPU object the quad needs and uploads logo. It returns
// once the texture is resident.
func New(ctx *DeviceContext, surface hal.Surface, shaders ShaderSource, logo *image.RGBA, cfg core.RendererConfig, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		ctx:         ctx,
		surface:     surface,
		shaders:     shaders,
		compile:     CompileWGSL,
		presentMode: hal.ParsePresentMode(cfg.PresentMode),
		editor:      NewColorEditor(cfg.Tint, cfg.Background),
		state:       StateRunning,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.build(logo); err != nil {
		r.Destroy()
		return nil, err
	}
	core.LogInfo("Renderer initialized")
	return r, nil
}

func (r *Renderer) build(logo *image.RGBA) error {
	var err error
	if r.swapchain, err = NewSwapchain(r.ctx, r.surface, r.presentMode); err != nil {
		return err
	}
	if r.renderPass, err = NewRenderPass(r.ctx, r.swapchain.Format()); err != nil {
		return err
	}

	if r.imageLayout, err = NewDescriptorSetLayout(r.ctx, ImageSetBindings); err != nil {
		return err
	}
	if r.uniformLayout, err = NewDescriptorSetLayout(r.ctx, UniformSetBindings); err != nil {
		return err
	}
	if r.imageBinding, err = NewDescriptorBinding(r.ctx, r.imageLayout); err != nil {
		return err
	}
	if r.uniformBinding, err = NewDescriptorBinding(r.ctx, r.uniformLayout); err != nil {
		return err
	}

	if r.uploadPool, err = r.ctx.Device().CreateCommandPool(r.ctx.QueueFamily(), true); err != nil {
		return fmt.Errorf("failed to create upload command pool: %w", err)
	}
	if r.logo, err = NewImage(r.ctx, r.imageBinding, logo, r.uploadPool); err != nil {
		return err
	}
	if err := r.logo.WaitForTransferCompletion(); err != nil {
		return fmt.Errorf("failed to wait for logo upload: %w", err)
	}

	if r.vertices, err = NewBuffer(r.ctx, QuadVertices, hal.BufferUsageVertex); err != nil {
		return err
	}
	tint := r.editor.Tint()
	if r.uniform, err = NewBuffer(r.ctx, tint[:], hal.BufferUsageUniform); err != nil {
		return err
	}
	err = r.uniformBinding.Write(hal.DescriptorWrite{
		Binding:     0,
		Type:        hal.DescriptorTypeUniformBuffer,
		Buffer:      r.uniform.Handle(),
		BufferRange: r.uniform.Size(),
	})
	if err != nil {
		return err
	}

	if r.pipeline, err = r.newPipeline(); err != nil {
		return err
	}
	if r.frames, err = NewFrameSet(r.ctx, r.swapchain.FrameQueueSize()); err != nil {
		return err
	}
	r.viewport = r.swapchain.Viewport()
	return nil
}

func (r *Renderer) newPipeline() (*Pipeline, error) {
	return NewPipeline(r.ctx, r.renderPass, []*DescriptorSetLayout{r.imageLayout, r.uniformLayout}, r.shaders, r.compile)
}

// Draw renders and presents one frame. Acquire and present failures are not
// errors: they invalidate the swapchain, which is rebuilt on the next call.
func (r *Renderer) Draw() error {
	switch r.state {
	case StateTerminating:
		return nil
	case StateSwapchainInvalid:
		if err := r.Recreate(); err != nil {
			if errors.Is(err, core.ErrSwapchainInvalid) {
				return nil
			}
			return err
		}
	}
	if r.reloadShader {
		r.reloadPipeline()
	}

	img, err := r.surface.AcquireImage(hal.WaitForever)
	if err != nil {
		core.LogDebug("Acquire failed, recreating swapchain: %s", err)
		r.state = StateSwapchainInvalid
		return nil
	}

	fb, err := r.renderPass.NewFramebuffer(img.View, r.swapchain.Extent())
	if err != nil {
		return err
	}
	frame := r.frames[r.swapchain.NextSlot()]
	cmd, err := frame.Begin()
	if err != nil {
		r.ctx.Device().DestroyFramebuffer(fb)
		return err
	}
	frame.Retire(fb)

	if err := r.record(cmd, fb); err != nil {
		return err
	}
	queue := r.ctx.Queue()
	if err := frame.Submit(queue, cmd); err != nil {
		return err
	}

	if err := queue.Present(r.surface, img, frame.PresentSemaphore()); err != nil {
		core.LogDebug("Present failed, recreating swapchain: %s", err)
		r.state = StateSwapchainInvalid
	}
	return nil
}

func (r *Renderer) record(cmd hal.CommandBuffer, fb hal.Framebuffer) error {
	if err := cmd.Begin(false); err != nil {
		return fmt.Errorf("failed to begin frame commands: %w", err)
	}
	cmd.SetViewport(r.viewport)
	cmd.SetScissor(r.viewport.Rect)
	cmd.BindGraphicsPipeline(r.pipeline.Handle())
	cmd.BindVertexBuffer(0, r.vertices.Handle(), 0)
	cmd.BindDescriptorSets(r.pipeline.Layout(), 0, []hal.DescriptorSet{r.imageBinding.Set(), r.uniformBinding.Set()})
	cmd.PushConstants(r.pipeline.Layout(), hal.ShaderStageVertex, 0, asBytes([]math.Vec2{r.offset}))

	cmd.BeginRenderPass(r.renderPass.Handle(), fb, r.viewport.Rect, []hal.ClearColor{hal.ClearColor(r.editor.Background())})
	cmd.Draw(uint32(len(QuadVertices)), 1, 0, 0)
	cmd.EndRenderPass()

	if err := cmd.End(); err != nil {
		return fmt.Errorf("failed to end frame commands: %w", err)
	}
	return nil
}

// Recreate rebuilds everything that depends on the swapchain: swapchain,
// render pass, frame resources, pipeline and viewport, in that order.
func (r *Renderer) Recreate() error {
	device := r.ctx.Device()
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("failed to wait for device idle: %w", err)
	}
	for _, f := range r.frames {
		f.releaseFramebuffers()
	}

	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
	swapchain, err := NewSwapchain(r.ctx, r.surface, r.presentMode)
	if err != nil {
		r.state = StateSwapchainInvalid
		return err
	}
	r.swapchain = swapchain

	pass, err := NewRenderPass(r.ctx, r.swapchain.Format())
	if err != nil {
		return err
	}
	r.renderPass.Destroy()
	r.renderPass = pass

	for _, f := range r.frames {
		f.Destroy()
	}
	if r.frames, err = NewFrameSet(r.ctx, r.swapchain.FrameQueueSize()); err != nil {
		return err
	}

	pipeline, err := r.newPipeline()
	if err != nil {
		return err
	}
	r.pipeline.Destroy()
	r.pipeline = pipeline

	r.viewport = r.swapchain.Viewport()
	r.state = StateRunning
	core.LogDebug("Swapchain recreated at %dx%d", r.viewport.Rect.Extent.Width, r.viewport.Rect.Extent.Height)
	return nil
}

// reloadPipeline rebuilds the pipeline from fresh shader source. A shader
// that fails to compile keeps the previous pipeline in use.
func (r *Renderer) reloadPipeline() {
	r.reloadShader = false
	if err := r.ctx.Device().WaitIdle(); err != nil {
		core.LogError("Shader reload skipped: %s", err)
		return
	}
	pipeline, err := r.newPipeline()
	if err != nil {
		core.LogError("Shader reload failed, keeping the previous pipeline: %s", err)
		return
	}
	r.pipeline.Destroy()
	r.pipeline = pipeline
	core.LogInfo("Shaders reloaded")
}

// Resize marks the swapchain for recreation on the next draw.
func (r *Renderer) Resize(width, height uint32) {
	if r.state == StateTerminating {
		return
	}
	core.LogDebug("Resize to %dx%d requested", width, height)
	r.state = StateSwapchainInvalid
}

// Input feeds a key to the color editor and uploads the tint when it changed.
func (r *Renderer) Input(key core.KeyCode) Edit {
	edit := r.editor.Input(key)
	if edit.Committed == TargetTint {
		tint := r.editor.Tint()
		UpdateBuffer(r.uniform, 0, tint[:])
	}
	return edit
}

// ReloadShaders rebuilds the pipeline before the next frame.
func (r *Renderer) ReloadShaders() {
	r.reloadShader = true
}

func (r *Renderer) Terminate() {
	r.state = StateTerminating
}

func (r *Renderer) State() State {
	return r.state
}

func (r *Renderer) Editor() *ColorEditor {
	return r.editor
}

func (r *Renderer) Swapchain() *Swapchain {
	return r.swapchain
}

// Destroy waits for the GPU and releases everything in reverse creation
// order. The DeviceContext is left to the caller.
func (r *Renderer) Destroy() {
	r.state = StateTerminating
	if err := r.ctx.Device().WaitIdle(); err != nil {
		core.LogWarn("WaitIdle before renderer destruction failed: %s", err)
	}
	for _, f := range r.frames {
		f.Destroy()
	}
	r.frames = nil
	if r.pipeline != nil {
		r.pipeline.Destroy()
	}
	if r.uniform != nil {
		r.uniform.Destroy()
	}
	if r.vertices != nil {
		r.vertices.Destroy()
	}
	if r.logo != nil {
		r.logo.Destroy()
	}
	if r.uploadPool != nil {
		r.ctx.Device().DestroyCommandPool(r.uploadPool)
		r.uploadPool = nil
	}
	for _, b := range []*DescriptorBinding{r.uniformBinding, r.imageBinding} {
		if b != nil {
			b.Destroy()
		}
	}
	for _, l := range []*DescriptorSetLayout{r.uniformLayout, r.imageLayout} {
		if l != nil {
			l.Destroy()
		}
	}
	if r.renderPass != nil {
		r.renderPass.Destroy()
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
	}
	core.LogDebug("Renderer destroyed")
}
