package hal

import "math"

type DeviceType uint8

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated"
	case DeviceTypeDiscreteGPU:
		return "Discrete"
	case DeviceTypeVirtualGPU:
		return "Virtual"
	case DeviceTypeCPU:
		return "CPU"
	}
	return "Unknown"
}

type MemoryProperty uint32

const (
	MemoryDeviceLocal MemoryProperty = 1 << iota
	MemoryHostVisible
	MemoryHostCoherent
	MemoryHostCached
	MemoryLazilyAllocated
)

// Contains reports whether every flag of other is set in p.
func (p MemoryProperty) Contains(other MemoryProperty) bool {
	return p&other == other
}

// MemoryTypeID is an index into the adapter's memory type table.
type MemoryTypeID uint32

type MemoryType struct {
	Properties MemoryProperty
	HeapIndex  uint32
}

type MemoryRequirements struct {
	Size      uint64
	Alignment uint64
	// TypeMask has bit i set when memory type i can back the resource.
	TypeMask uint32
}

type Limits struct {
	// OptimalBufferCopyPitchAlignment is the row-start alignment, in bytes,
	// preferred for buffer to image copies.
	OptimalBufferCopyPitchAlignment uint64
	NonCoherentAtomSize             uint64
	MaxPushConstantsSize            uint32
}

type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageUniform
	BufferUsageVertex
	BufferUsageIndex
)

type ImageUsage uint32

const (
	ImageUsageTransferSrc ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageSampled
	ImageUsageColorAttachment
)

type Format uint32

const (
	FormatUndefined Format = iota
	FormatRGBA8Unorm
	FormatRGBA8Srgb
	FormatBGRA8Unorm
	FormatBGRA8Srgb
	FormatRG32Float
)

func (f Format) IsSrgb() bool {
	return f == FormatRGBA8Srgb || f == FormatBGRA8Srgb
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "RGBA8Unorm"
	case FormatRGBA8Srgb:
		return "RGBA8Srgb"
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	case FormatBGRA8Srgb:
		return "BGRA8Srgb"
	case FormatRG32Float:
		return "RG32Float"
	}
	return "Undefined"
}

type ImageLayout uint32

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutTransferDst
	ImageLayoutShaderReadOnly
	ImageLayoutColorAttachment
	ImageLayoutPresentSrc
)

type Access uint32

const (
	AccessNone          Access = 0
	AccessTransferWrite Access = 1 << iota
	AccessShaderRead
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
)

type PipelineStage uint32

const (
	PipelineStageTopOfPipe PipelineStage = 1 << iota
	PipelineStageTransfer
	PipelineStageVertexShader
	PipelineStageFragmentShader
	PipelineStageColorAttachmentOutput
	PipelineStageBottomOfPipe
)

type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

type AddressMode uint8

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
)

type PresentMode uint8

const (
	PresentModeFifo PresentMode = iota
	PresentModeMailbox
)

func ParsePresentMode(name string) PresentMode {
	if name == "mailbox" {
		return PresentModeMailbox
	}
	return PresentModeFifo
}

type Extent2D struct {
	Width, Height uint32
}

type Offset2D struct {
	X, Y int32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	Rect     Rect2D
	MinDepth float32
	MaxDepth float32
}

type ClearColor [4]float32

// UndefinedExtent marks a surface whose size is set by the swapchain.
const UndefinedExtent = math.MaxUint32

type SurfaceCapabilities struct {
	MinImageCount uint32
	// MaxImageCount is zero when there is no upper bound.
	MaxImageCount  uint32
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
	PresentModes   []PresentMode
}

type SwapchainConfig struct {
	Format      Format
	Extent      Extent2D
	ImageCount  uint32
	PresentMode PresentMode
}

type ImageDesc struct {
	Width, Height uint32
	Format        Format
	Usage         ImageUsage
}

type SamplerDesc struct {
	Filter  Filter
	Address AddressMode
}

type ImageBarrier struct {
	Image     Image
	SrcAccess Access
	DstAccess Access
	OldLayout ImageLayout
	NewLayout ImageLayout
}

// BufferImageCopy copies a width by height texel region. BufferRowLength is
// in texels and may exceed Width when rows are padded.
type BufferImageCopy struct {
	BufferOffset      uint64
	BufferRowLength   uint32
	BufferImageHeight uint32
	Width, Height     uint32
}

type DescriptorType uint8

const (
	DescriptorTypeSampledImage DescriptorType = iota
	DescriptorTypeSampler
	DescriptorTypeUniformBuffer
)

type DescriptorSetLayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStage
}

type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorWrite fills one binding of a set. Which of the resource fields
// is read depends on Type.
type DescriptorWrite struct {
	Set     DescriptorSet
	Binding uint32
	Type    DescriptorType

	Buffer      Buffer
	BufferRange uint64
	View        ImageView
	Layout      ImageLayout
	Sampler     Sampler
}

type LoadOp uint8

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
	LoadOpDontCare
)

type StoreOp uint8

const (
	StoreOpStore StoreOp = iota
	StoreOpDontCare
)

type ColorAttachment struct {
	Format        Format
	Load          LoadOp
	Store         StoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
}

// RenderPassDesc describes a single-subpass pass writing every attachment.
type RenderPassDesc struct {
	Attachments []ColorAttachment
}

type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

type VertexFormat uint8

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x4
)

type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint32
}

type Topology uint8

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
)

type PolygonMode uint8

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
)

type CullMode uint8

const (
	CullModeNone CullMode = iota
	CullModeBack
	CullModeFront
)

type BlendState struct {
	Enabled bool
}

// AlphaBlend is straight (non-premultiplied) alpha blending.
var AlphaBlend = BlendState{Enabled: true}

type GraphicsPipelineDesc struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	// EntryPoint names the entry function of both shader modules.
	EntryPoint   string
	VertexStride uint32
	Attributes   []VertexAttribute
	Topology     Topology
	PolygonMode  PolygonMode
	CullMode     CullMode
	Blend        BlendState
	Layout       PipelineLayout
	RenderPass   RenderPass
	Subpass      uint32
}
