package vks

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type ComputePipeline struct {
	Device                          *Device
	Layout                          *PipelineLayout
	VKPipeline                      vk.Pipeline
	VKPipelineShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

func (c *ComputePipeline) SetPipelineLayout(layout *PipelineLayout) {
	c.Layout = layout
}

func (c *ComputePipeline) SetShaderStage(entryPoint string, shaderModule *ShaderModule) {
	c.VKPipelineShaderStageCreateInfo = shaderModule.VKPipelineShaderStageCreateInfo(vk.ShaderStageComputeBit, entryPoint)
}

func (c *ComputePipeline) Destroy() {
	vk.DestroyPipeline(c.Device.VKDevice, c.VKPipeline, nil)
}

// CreateComputePipelines creates the native pipelines for a batch in one
// call. Each pipeline must have a shader stage and layout set.
func (d *Device) CreateComputePipelines(pc *PipelineCache, cp ...*ComputePipeline) error {
	pipelines := make([]vk.Pipeline, len(cp))
	ci := make([]vk.ComputePipelineCreateInfo, len(cp))

	for i, p := range cp {
		if p.Layout == nil {
			return errors.Newf("compute pipeline %d has no layout", i)
		}
		ci[i] = vk.ComputePipelineCreateInfo{
			SType:  vk.StructureTypeComputePipelineCreateInfo,
			Stage:  p.VKPipelineShaderStageCreateInfo,
			Layout: p.Layout.VKPipelineLayout,
		}
	}

	var cache vk.PipelineCache
	if pc != nil {
		cache = pc.VKPipelineCache
	}
	err := vk.Error(vk.CreateComputePipelines(
		d.VKDevice, cache,
		uint32(len(ci)), ci,
		nil, pipelines))
	if err != nil {
		return err
	}

	for i := range pipelines {
		cp[i].Device = d
		cp[i].VKPipeline = pipelines[i]
	}
	return nil
}

// CreateComputePipeline builds a compute pipeline for one entry point,
// generating the pipeline layout from the shader's reflected interface.
func (d *Device) CreateComputePipeline(pc *PipelineCache, sm *ShaderModule, entryPoint string) (*ComputePipeline, error) {
	if sm.Info.EntryPoint(entryPoint) == nil {
		return nil, errors.Newf("shader module has no entry point %q", entryPoint)
	}

	layout, err := sm.CreatePipelineLayout()
	if err != nil {
		return nil, err
	}

	cp := &ComputePipeline{}
	cp.SetPipelineLayout(layout)
	cp.SetShaderStage(entryPoint, sm)
	if err := d.CreateComputePipelines(pc, cp); err != nil {
		layout.Destroy()
		return nil, err
	}
	return cp, nil
}

// GraphicsPipeline is a created graphics pipeline together with the state
// the recorder validates draws against.
type GraphicsPipeline struct {
	Device     *Device
	Layout     *PipelineLayout
	VKPipeline vk.Pipeline

	// VertexBindings lists the vertex buffer bindings the pipeline reads.
	// A draw is refused while any of them has no buffer bound.
	VertexBindings []int
}

func (g *GraphicsPipeline) Destroy() {
	vk.DestroyPipeline(g.Device.VKDevice, g.VKPipeline, nil)
}
