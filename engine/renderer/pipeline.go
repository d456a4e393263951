package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

const (
	// VertexStride is the size of math.Vertex2D.
	VertexStride = 16
	// PushConstantSize is the vertex-stage push constant block: a vec2 offset.
	PushConstantSize = 8
	shaderEntryPoint = "main"
)

// VertexAttributes describes the Vertex2D layout: position then texcoord.
var VertexAttributes = []hal.VertexAttribute{
	{Location: 0, Format: hal.VertexFormatFloat32x2, Offset: 0},
	{Location: 1, Format: hal.VertexFormatFloat32x2, Offset: 8},
}

// Pipeline is the quad's graphics pipeline and its layout. It is tied to the
// render pass it was built for.
type Pipeline struct {
	id     uuid.UUID
	ctx    *DeviceContext
	layout hal.PipelineLayout
	handle hal.GraphicsPipeline
	pass   *RenderPass
}

// NewPipeline compiles the shaders and builds the pipeline against pass. The
// descriptor set layouts are bound in the order given.
func NewPipeline(ctx *DeviceContext, pass *RenderPass, sets []*DescriptorSetLayout, shaders ShaderSource, compile ShaderCompiler) (*Pipeline, error) {
	if compile == nil {
		compile = CompileWGSL
	}
	device := ctx.Device()

	vertex, err := loadShaderModule(ctx, shaders.VertexSource, compile)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer device.DestroyShaderModule(vertex)
	fragment, err := loadShaderModule(ctx, shaders.FragmentSource, compile)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer device.DestroyShaderModule(fragment)

	handles := make([]hal.DescriptorSetLayout, 0, len(sets))
	for _, s := range sets {
		handles = append(handles, s.Handle())
	}
	layout, err := device.CreatePipelineLayout(handles, []hal.PushConstantRange{{
		Stages: hal.ShaderStageVertex,
		Offset: 0,
		Size:   PushConstantSize,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	handle, err := device.CreateGraphicsPipeline(hal.GraphicsPipelineDesc{
		VertexShader:   vertex,
		FragmentShader: fragment,
		EntryPoint:     shaderEntryPoint,
		VertexStride:   VertexStride,
		Attributes:     VertexAttributes,
		Topology:       hal.TopologyTriangleList,
		PolygonMode:    hal.PolygonModeFill,
		CullMode:       hal.CullModeNone,
		Blend:          hal.AlphaBlend,
		Layout:         layout,
		RenderPass:     pass.Handle(),
		Subpass:        0,
	})
	if err != nil {
		device.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("failed to create graphics pipeline: %w", err)
	}

	return &Pipeline{
		id:     ctx.register("pipeline"),
		ctx:    ctx,
		layout: layout,
		handle: handle,
		pass:   pass,
	}, nil
}

func loadShaderModule(ctx *DeviceContext, source func() (string, error), compile ShaderCompiler) (hal.ShaderModule, error) {
	text, err := source()
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source: %w", err)
	}
	words, err := compile(text)
	if err != nil {
		return nil, err
	}
	module, err := ctx.Device().CreateShaderModule(words)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrShaderCompile, err)
	}
	return module, nil
}

func (p *Pipeline) Handle() hal.GraphicsPipeline {
	return p.handle
}

func (p *Pipeline) Layout() hal.PipelineLayout {
	return p.layout
}

func (p *Pipeline) RenderPass() *RenderPass {
	return p.pass
}

func (p *Pipeline) Destroy() {
	if p.handle == nil {
		return
	}
	device := p.ctx.Device()
	device.DestroyGraphicsPipeline(p.handle)
	device.DestroyPipelineLayout(p.layout)
	p.handle, p.layout = nil, nil
	p.ctx.unregister(p.id)
}
