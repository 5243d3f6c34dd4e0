package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineLayout wraps a vulkan pipeline layout and remembers the set
// layouts it was created from so that bound descriptor sets can be checked
// against it at record time.
type PipelineLayout struct {
	Device             *Device
	VKPipelineLayout   vk.PipelineLayout
	SetLayouts         []*DescriptorSetLayout
	PushConstantRanges []vk.PushConstantRange
}

func (d *Device) CreatePipelineLayout(descriptorSetLayouts ...*DescriptorSetLayout) (*PipelineLayout, error) {
	return d.CreatePipelineLayoutWithPushConstants(descriptorSetLayouts, nil)
}

func (d *Device) CreatePipelineLayoutWithPushConstants(descriptorSetLayouts []*DescriptorSetLayout, pushConstants []vk.PushConstantRange) (*PipelineLayout, error) {
	l := make([]vk.DescriptorSetLayout, len(descriptorSetLayouts))
	for i, dsl := range descriptorSetLayouts {
		l[i] = dsl.VKDescriptorSetLayout
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(descriptorSetLayouts)),
		PSetLayouts:            l,
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	var pipelineLayout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &createInfo, nil, &pipelineLayout))
	if err != nil {
		return nil, err
	}

	return &PipelineLayout{
		Device:             d,
		VKPipelineLayout:   pipelineLayout,
		SetLayouts:         descriptorSetLayouts,
		PushConstantRanges: pushConstants,
	}, nil
}

func (p *PipelineLayout) Destroy() {
	vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
}
