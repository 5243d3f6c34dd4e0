package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// boundDescriptor remembers a resource written into a descriptor set so the
// recorder can declare accesses for it when the set is used by a draw or
// dispatch.
type boundDescriptor struct {
	resource Resource
	writable bool
	isImage  bool
	layout   vk.ImageLayout
}

// DescriptorSet is a binding of resources to descriptors, per a specific
// DescriptorSetLayout.
type DescriptorSet struct {
	Device                *Device
	DescriptorPool        *DescriptorPool
	Layout                *DescriptorSetLayout
	VKDescriptorSet       vk.DescriptorSet
	VKWriteDescriptorSets []vk.WriteDescriptorSet

	resources []boundDescriptor
}

func (d *Device) NewDescriptorSet() *DescriptorSet {
	return &DescriptorSet{Device: d}
}

// AddBuffer adds a buffer to this descriptor set at the given binding.
// Storage buffers are tracked as shader writable.
func (du *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	writeDescriptorSet := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{b.DSInfo(offset)},
	}
	du.VKWriteDescriptorSets = append(du.VKWriteDescriptorSets, writeDescriptorSet)

	writable := dtype == vk.DescriptorTypeStorageBuffer || dtype == vk.DescriptorTypeStorageBufferDynamic
	du.resources = append(du.resources, boundDescriptor{resource: b, writable: writable})
}

// AddStorageImage adds a writable storage image to this descriptor set.
func (du *DescriptorSet) AddStorageImage(dstBinding int, img *Image, imageView *ImageView) {
	descriptorImageInfo := vk.DescriptorImageInfo{
		ImageView:   imageView.VKImageView,
		ImageLayout: vk.ImageLayoutGeneral,
	}

	writeDescriptorSet := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeStorageImage,
		PImageInfo:      []vk.DescriptorImageInfo{descriptorImageInfo},
	}
	du.VKWriteDescriptorSets = append(du.VKWriteDescriptorSets, writeDescriptorSet)

	du.resources = append(du.resources, boundDescriptor{
		resource: img, writable: true, isImage: true, layout: vk.ImageLayoutGeneral,
	})
}

// AddCombinedImageSampler adds an image view and sampler to support
// sampling a texture.
func (du *DescriptorSet) AddCombinedImageSampler(dstBinding int, img *Image, imageView *ImageView, sampler *Sampler) {
	descriptorImageInfo := vk.DescriptorImageInfo{
		ImageView:   imageView.VKImageView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		Sampler:     sampler.VKSampler,
	}

	writeDescriptorSet := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{descriptorImageInfo},
	}
	du.VKWriteDescriptorSets = append(du.VKWriteDescriptorSets, writeDescriptorSet)

	du.resources = append(du.resources, boundDescriptor{
		resource: img, isImage: true, layout: vk.ImageLayoutShaderReadOnlyOptimal,
	})
}

// Write applies the accumulated descriptor writes to the device.
func (du *DescriptorSet) Write() {
	for i := range du.VKWriteDescriptorSets {
		du.VKWriteDescriptorSets[i].DstSet = du.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(du.Device.VKDevice, uint32(len(du.VKWriteDescriptorSets)), du.VKWriteDescriptorSets, 0, nil)
}
