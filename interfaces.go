package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// Destroyable is anything owning a native object that must be torn down.
type Destroyable interface {
	Destroy()
}

// BufferObject is anything that can supply its contents as bytes for
// uploading into a buffer.
type BufferObject interface {
	Bytes() []byte
}

// IndexSource is a BufferObject holding index data.
type IndexSource interface {
	BufferObject
	IndexType() vk.IndexType
}

// VertexSource is a BufferObject holding vertex data, together with the
// input descriptions a graphics pipeline needs to consume it.
type VertexSource interface {
	BufferObject
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

// UBO is a BufferObject destined for a uniform buffer.
type UBO interface {
	BufferObject
	Descriptor() *Descriptor
}

// Descriptor describes where a UBO wants to be bound.
type Descriptor struct {
	Type        vk.DescriptorType
	ShaderStage vk.ShaderStageFlags
	Set         int
	Binding     int
}

// usageForBufferObject derives buffer usage bits from the interfaces a
// buffer object implements.
func usageForBufferObject(bo BufferObject) vk.BufferUsageFlags {
	var usage vk.BufferUsageFlags
	if _, ok := bo.(VertexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	}
	if _, ok := bo.(IndexSource); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	if _, ok := bo.(UBO); ok {
		usage |= vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	return usage
}
