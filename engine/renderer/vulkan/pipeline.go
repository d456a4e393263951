package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type shaderModule struct {
	object
	handle vk.ShaderModule
}

type pipelineLayout struct {
	object
	handle vk.PipelineLayout
}

type graphicsPipeline struct {
	object
	handle vk.Pipeline
}

func (d *Device) CreateShaderModule(spirv []uint32) (hal.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType: vk.StructureTypeShaderModuleCreateInfo,
		// CodeSize is in bytes.
		CodeSize: uint(len(spirv) * 4),
		PCode:    spirv,
	}
	var handle vk.ShaderModule
	if res := vk.CreateShaderModule(d.context.Device, &createInfo, d.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateShaderModule", res)
	}
	return &shaderModule{object: d.context.newObject("shader-module"), handle: handle}, nil
}

func (d *Device) DestroyShaderModule(module hal.ShaderModule) {
	vk.DestroyShaderModule(d.context.Device, module.(*shaderModule).handle, d.context.Allocator)
}

func (d *Device) CreatePipelineLayout(sets []hal.DescriptorSetLayout, pushConstants []hal.PushConstantRange) (hal.PipelineLayout, error) {
	// NOTE: 32 is the max number of ranges we can ever have, since the API only guarantees 128 bytes with 4-byte alignment.
	if len(pushConstants) > 32 {
		return nil, fmt.Errorf("cannot have more than 32 push constant ranges, got %d", len(pushConstants))
	}
	layouts := make([]vk.DescriptorSetLayout, len(sets))
	for i, s := range sets {
		layouts[i] = s.(*descriptorSetLayout).handle
	}
	ranges := make([]vk.PushConstantRange, len(pushConstants))
	for i, r := range pushConstants {
		ranges[i] = vk.PushConstantRange{
			StageFlags: vkShaderStage(r.Stages),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(layouts)),
		PSetLayouts:            layouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}

	var handle vk.PipelineLayout
	err := d.context.locks.SafeCall(PipelineManagement, func() error {
		result := vk.CreatePipelineLayout(d.context.Device, &pipelineLayoutCreateInfo, d.context.Allocator, &handle)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(result, true))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pipelineLayout{object: d.context.newObject("pipeline-layout"), handle: handle}, nil
}

func (d *Device) DestroyPipelineLayout(layout hal.PipelineLayout) {
	_ = d.context.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(d.context.Device, layout.(*pipelineLayout).handle, d.context.Allocator)
		return nil
	})
}

// CreateGraphicsPipeline builds a pipeline with one vertex binding, no depth
// testing and dynamic viewport and scissor.
func (d *Device) CreateGraphicsPipeline(desc hal.GraphicsPipelineDesc) (hal.GraphicsPipeline, error) {
	entryPoint := VulkanSafeString(desc.EntryPoint)
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: desc.VertexShader.(*shaderModule).handle,
			PName:  entryPoint,
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: desc.FragmentShader.(*shaderModule).handle,
			PName:  entryPoint,
		},
	}

	// Viewport and scissor are dynamic, only the counts are fixed.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vkPolygonMode(desc.PolygonMode),
		LineWidth:               1.0,
		CullMode:                vkCullMode(desc.CullMode),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:   vk.False,
		DepthWriteEnable:  vk.False,
		StencilTestEnable: vk.False,
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	if desc.Blend.Enabled {
		colorBlendAttachmentState.BlendEnable = vk.True
		colorBlendAttachmentState.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		colorBlendAttachmentState.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		colorBlendAttachmentState.ColorBlendOp = vk.BlendOpAdd
		colorBlendAttachmentState.SrcAlphaBlendFactor = vk.BlendFactorSrcAlpha
		colorBlendAttachmentState.DstAlphaBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		colorBlendAttachmentState.AlphaBlendOp = vk.BlendOpAdd
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    desc.VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(desc.Attributes))
	for i, a := range desc.Attributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vkVertexFormat(a.Format),
			Offset:   a.Offset,
		}
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vkTopology(desc.Topology),
		PrimitiveRestartEnable: vk.False,
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		PTessellationState:  nil,
		Layout:              desc.Layout.(*pipelineLayout).handle,
		RenderPass:          desc.RenderPass.(*renderPass).handle,
		Subpass:             desc.Subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	err := d.context.locks.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(d.context.Device, vk.NullPipelineCache, 1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, d.context.Allocator, pipelines)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	core.LogDebug("Graphics pipeline created!")
	return &graphicsPipeline{object: d.context.newObject("pipeline"), handle: pipelines[0]}, nil
}

func (d *Device) DestroyGraphicsPipeline(pipeline hal.GraphicsPipeline) {
	_ = d.context.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(d.context.Device, pipeline.(*graphicsPipeline).handle, d.context.Allocator)
		return nil
	})
}
