package vks

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestDescriptorSetLayoutCompatible(t *testing.T) {
	a := &DescriptorSetLayout{}
	a.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)})
	a.AddBinding(DescriptorBinding{Binding: 1, Type: vk.DescriptorTypeCombinedImageSampler})

	// Same bindings, different stages and declaration order; still
	// compatible.
	b := &DescriptorSetLayout{}
	b.AddBinding(DescriptorBinding{Binding: 1, Type: vk.DescriptorTypeCombinedImageSampler})
	b.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)})

	if !a.Compatible(b) || !b.Compatible(a) {
		t.Error("layouts with matching bindings should be compatible")
	}

	c := &DescriptorSetLayout{}
	c.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeStorageBuffer})
	c.AddBinding(DescriptorBinding{Binding: 1, Type: vk.DescriptorTypeCombinedImageSampler})

	if a.Compatible(c) {
		t.Error("layouts with different descriptor types should not be compatible")
	}

	d := &DescriptorSetLayout{}
	d.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeUniformBuffer})

	if a.Compatible(d) {
		t.Error("layouts with different binding counts should not be compatible")
	}
}

func TestDescriptorSetLayoutBindingDefaults(t *testing.T) {
	l := &DescriptorSetLayout{}
	l.AddBinding(DescriptorBinding{Binding: 2, Type: vk.DescriptorTypeStorageImage})

	b := l.Binding(2)
	if b == nil {
		t.Fatal("binding 2 not found")
	}
	if b.Count != 1 {
		t.Errorf("count should default to 1, got %d", b.Count)
	}

	if l.Binding(0) != nil {
		t.Error("missing binding should be nil")
	}
}
