package vks

import (
	"os"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type ShaderModule struct {
	Device         *Device
	Description    string
	Info           *ShaderInfo
	VKShaderModule vk.ShaderModule
}

// CreateShaderModule creates a shader module from a SPIR-V binary. The
// binary is reflected first so the module carries its binding interface.
func (d *Device) CreateShaderModule(data []byte) (*ShaderModule, error) {
	info, err := ParseSPIRV(data)
	if err != nil {
		return nil, err
	}

	var module vk.ShaderModule
	err = vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module))
	if err != nil {
		return nil, err
	}

	return &ShaderModule{Device: d, Info: info, VKShaderModule: module}, nil
}

func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading shader %s", file)
	}
	sm, err := d.CreateShaderModule(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", file)
	}
	sm.Description = file
	return sm, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

// CreateDescriptorSetLayouts builds one descriptor set layout per set the
// module declares, in set order. Sets the module skips come back as empty
// layouts so indices line up with set numbers.
func (s *ShaderModule) CreateDescriptorSetLayouts() ([]*DescriptorSetLayout, error) {
	maxSet := s.Info.MaxSet()
	if maxSet < 0 {
		return nil, nil
	}

	layouts := make([]*DescriptorSetLayout, 0, maxSet+1)
	for set := 0; set <= maxSet; set++ {
		dsl := &DescriptorSetLayout{}
		for _, b := range s.Info.DescriptorSetLayoutBindings(set) {
			dsl.AddBinding(b)
		}
		created, err := s.Device.CreateDescriptorSetLayout(dsl)
		if err != nil {
			for _, l := range layouts {
				l.Destroy()
			}
			return nil, errors.Wrapf(err, "layout for set %d", set)
		}
		layouts = append(layouts, created)
	}
	return layouts, nil
}

// CreatePipelineLayout builds a full pipeline layout straight from the
// module's reflected interface. Push constant blocks the module declares
// must still be sized by the caller.
func (s *ShaderModule) CreatePipelineLayout(pushConstants ...vk.PushConstantRange) (*PipelineLayout, error) {
	setLayouts, err := s.CreateDescriptorSetLayouts()
	if err != nil {
		return nil, err
	}
	pl, err := s.Device.CreatePipelineLayoutWithPushConstants(setLayouts, pushConstants)
	if err != nil {
		for _, l := range setLayouts {
			l.Destroy()
		}
		return nil, err
	}
	return pl, nil
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}
