// Package hal is the capability set every graphics backend implements:
// instance, adapters, surface, device, queue and command recording. Exactly
// one backend is linked into a binary, chosen with build tags.
package hal

import "errors"

var (
	// ErrOutOfDate is returned by acquire and present when the surface
	// changed and the swapchain must be reconfigured.
	ErrOutOfDate = errors.New("swapchain out of date")
	// ErrSuboptimal is returned by present when the swapchain still works but
	// no longer matches the surface.
	ErrSuboptimal  = errors.New("swapchain suboptimal")
	ErrSurfaceLost = errors.New("surface lost")
	ErrDeviceLost  = errors.New("device lost")
	ErrTimeout     = errors.New("wait timed out")
)

// WaitForever is the timeout used for unbounded waits.
const WaitForever = ^uint64(0)

// Resource is implemented by every backend object. The label is assigned by
// the backend and is only used for logging.
type Resource interface {
	Label() string
}

type (
	Buffer              interface{ Resource }
	Memory              interface{ Resource }
	Image               interface{ Resource }
	ImageView           interface{ Resource }
	Sampler             interface{ Resource }
	Fence               interface{ Resource }
	Semaphore           interface{ Resource }
	DescriptorSetLayout interface{ Resource }
	DescriptorPool      interface{ Resource }
	DescriptorSet       interface{ Resource }
	RenderPass          interface{ Resource }
	Framebuffer         interface{ Resource }
	ShaderModule        interface{ Resource }
	PipelineLayout      interface{ Resource }
	GraphicsPipeline    interface{ Resource }
)

// Instance is the entry point of a backend.
type Instance interface {
	Name() string
	Adapters() ([]Adapter, error)
	Surface() Surface
	Destroy()
}

type AdapterInfo struct {
	Name     string
	Type     DeviceType
	Driver   string
	Discrete bool
}

type QueueFamily struct {
	Index    int
	Graphics bool
	Transfer bool
	Count    uint32
}

type Adapter interface {
	Info() AdapterInfo
	QueueFamilies() []QueueFamily
	MemoryTypes() []MemoryType
	Limits() Limits
	SupportsSurface(family int, surface Surface) bool
	// Open creates the logical device with queueCount queues from family.
	Open(family int, queueCount uint32) (Device, error)
}

// Surface is the presentation target. Configure creates (or replaces) the
// swapchain; AcquireImage returns once the image is ready to be rendered to.
type Surface interface {
	Capabilities(adapter Adapter) (SurfaceCapabilities, error)
	Formats(adapter Adapter) ([]Format, error)
	Configure(device Device, config SwapchainConfig) error
	Unconfigure(device Device)
	AcquireImage(timeout uint64) (SwapchainImage, error)
	Destroy()
}

type SwapchainImage struct {
	Index uint32
	View  ImageView
}

type Queue interface {
	Submit(submission Submission, fence Fence) error
	Present(surface Surface, image SwapchainImage, wait Semaphore) error
}

type Submission struct {
	CommandBuffers   []CommandBuffer
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStage
	SignalSemaphores []Semaphore
}

type Device interface {
	Queue(index int) Queue
	WaitIdle() error
	Destroy()

	CreateBuffer(size uint64, usage BufferUsage) (Buffer, error)
	BufferRequirements(buffer Buffer) MemoryRequirements
	BindBufferMemory(buffer Buffer, memory Memory, offset uint64) error
	DestroyBuffer(buffer Buffer)

	AllocateMemory(memoryType MemoryTypeID, size uint64) (Memory, error)
	// MapMemory maps size bytes at offset and returns them as a slice valid
	// until UnmapMemory.
	MapMemory(memory Memory, offset, size uint64) ([]byte, error)
	UnmapMemory(memory Memory)
	FreeMemory(memory Memory)

	CreateImage(desc ImageDesc) (Image, error)
	ImageRequirements(image Image) MemoryRequirements
	BindImageMemory(image Image, memory Memory, offset uint64) error
	DestroyImage(image Image)
	CreateImageView(image Image, format Format) (ImageView, error)
	DestroyImageView(view ImageView)
	CreateSampler(desc SamplerDesc) (Sampler, error)
	DestroySampler(sampler Sampler)

	CreateFence(signaled bool) (Fence, error)
	WaitForFence(fence Fence, timeout uint64) error
	ResetFence(fence Fence) error
	FenceSignaled(fence Fence) (bool, error)
	DestroyFence(fence Fence)
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(semaphore Semaphore)

	CreateCommandPool(family int, transient bool) (CommandPool, error)
	DestroyCommandPool(pool CommandPool)

	CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout DescriptorSetLayout)
	CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	DestroyDescriptorPool(pool DescriptorPool)
	AllocateDescriptorSet(pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error)
	WriteDescriptorSets(writes []DescriptorWrite)

	CreateRenderPass(desc RenderPassDesc) (RenderPass, error)
	DestroyRenderPass(pass RenderPass)
	CreateFramebuffer(pass RenderPass, views []ImageView, extent Extent2D) (Framebuffer, error)
	DestroyFramebuffer(framebuffer Framebuffer)

	CreateShaderModule(spirv []uint32) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)
	CreatePipelineLayout(sets []DescriptorSetLayout, pushConstants []PushConstantRange) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)
	CreateGraphicsPipeline(desc GraphicsPipelineDesc) (GraphicsPipeline, error)
	DestroyGraphicsPipeline(pipeline GraphicsPipeline)
}

type CommandPool interface {
	Resource
	Allocate() (CommandBuffer, error)
	// Reset returns every buffer allocated from the pool to the initial state.
	Reset() error
	Free(buffers []CommandBuffer)
}

type CommandBuffer interface {
	Resource
	Begin(oneTimeSubmit bool) error
	End() error

	PipelineBarrier(src, dst PipelineStage, barriers []ImageBarrier)
	CopyBufferToImage(src Buffer, dst Image, layout ImageLayout, regions []BufferImageCopy)

	SetViewport(viewport Viewport)
	SetScissor(rect Rect2D)
	BeginRenderPass(pass RenderPass, framebuffer Framebuffer, area Rect2D, clear []ClearColor)
	EndRenderPass()
	BindGraphicsPipeline(pipeline GraphicsPipeline)
	BindVertexBuffer(binding uint32, buffer Buffer, offset uint64)
	BindDescriptorSets(layout PipelineLayout, first uint32, sets []DescriptorSet)
	PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}
