package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorBinding describes one binding of a descriptor set layout. The
// description is kept on the layout so that compatibility between layouts
// and pipeline layouts can be checked without talking to the device.
type DescriptorBinding struct {
	Binding int
	Type    vk.DescriptorType
	Count   int
	Stages  vk.ShaderStageFlags
}

// DescriptorSetLayout describes the layout of a descriptor set.
type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout
	Bindings              []DescriptorBinding
}

func (d *Device) NewDescriptorSetLayout() *DescriptorSetLayout {
	return &DescriptorSetLayout{Device: d}
}

// AddBinding adds a binding to the descriptor set layout.
func (l *DescriptorSetLayout) AddBinding(binding DescriptorBinding) {
	if binding.Count == 0 {
		binding.Count = 1
	}
	l.Bindings = append(l.Bindings, binding)
}

// Binding returns the description of the given binding number, or nil.
func (l *DescriptorSetLayout) Binding(binding int) *DescriptorBinding {
	for i := range l.Bindings {
		if l.Bindings[i].Binding == binding {
			return &l.Bindings[i]
		}
	}
	return nil
}

// Compatible reports whether two layouts describe the same bindings: same
// binding numbers with the same descriptor type and count. Shader stages do
// not affect set compatibility.
func (l *DescriptorSetLayout) Compatible(other *DescriptorSetLayout) bool {
	if l == other {
		return true
	}
	if other == nil || len(l.Bindings) != len(other.Bindings) {
		return false
	}
	for i := range l.Bindings {
		o := other.Binding(l.Bindings[i].Binding)
		if o == nil || o.Type != l.Bindings[i].Type || o.Count != l.Bindings[i].Count {
			return false
		}
	}
	return true
}

func (l *DescriptorSetLayout) vkBindings() []vk.DescriptorSetLayoutBinding {
	ret := make([]vk.DescriptorSetLayoutBinding, len(l.Bindings))
	for i, b := range l.Bindings {
		ret[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(b.Binding),
			DescriptorType:  b.Type,
			DescriptorCount: uint32(b.Count),
			StageFlags:      b.Stages,
		}
	}
	return ret
}

// CreateDescriptorSetLayout creates the native object for a layout built up
// with AddBinding.
func (d *Device) CreateDescriptorSetLayout(layout *DescriptorSetLayout) (*DescriptorSetLayout, error) {
	bindings := layout.vkBindings()

	createInfo := &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	err := vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, createInfo, nil, &descriptorSetLayout))
	if err != nil {
		return nil, err
	}

	layout.Device = d
	layout.VKDescriptorSetLayout = descriptorSetLayout

	return layout, nil
}

// Destroy destroys this descriptor set layout.
func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
}
