package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

type CommandPool struct {
	Device        *Device
	QueueFamily   *QueueFamily
	VKCommandPool vk.CommandPool
}

// CreateCommandPool creates a command pool for the given queue family whose
// buffers may be individually reset.
func (d *Device) CreateCommandPool(qf *QueueFamily) (*CommandPool, error) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(qf.Index),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var pool vk.CommandPool
	err := vk.Error(vk.CreateCommandPool(d.VKDevice, &createInfo, nil, &pool))
	if err != nil {
		return nil, err
	}

	return &CommandPool{Device: d, QueueFamily: qf, VKCommandPool: pool}, nil
}

func (c *CommandPool) Destroy() {
	vk.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool, nil)
}

// AllocateBuffers allocates count primary command buffers from the pool.
func (c *CommandPool) AllocateBuffers(count int) ([]*CommandBuffer, error) {
	return c.allocate(count, vk.CommandBufferLevelPrimary)
}

// AllocateBuffer allocates a single primary command buffer.
func (c *CommandPool) AllocateBuffer() (*CommandBuffer, error) {
	ret, err := c.allocate(1, vk.CommandBufferLevelPrimary)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}

// AllocateSecondaryBuffers allocates count secondary command buffers, which
// can be recorded concurrently and executed from a primary buffer.
func (c *CommandPool) AllocateSecondaryBuffers(count int) ([]*CommandBuffer, error) {
	return c.allocate(count, vk.CommandBufferLevelSecondary)
}

func (c *CommandPool) allocate(count int, level vk.CommandBufferLevel) ([]*CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              level,
		CommandBufferCount: uint32(count),
	}

	cmdBuffers := make([]vk.CommandBuffer, count)
	err := vk.Error(vk.AllocateCommandBuffers(c.Device.VKDevice, &allocateInfo, cmdBuffers))
	if err != nil {
		return nil, err
	}

	ret := make([]*CommandBuffer, count)
	for i := range ret {
		ret[i] = &CommandBuffer{VKCommandBuffer: cmdBuffers[i]}
	}

	return ret, nil
}

func (c *CommandPool) FreeBuffers(bs []*CommandBuffer) {
	b := make([]vk.CommandBuffer, len(bs))
	for i := range bs {
		b[i] = bs[i].VKCommandBuffer
	}
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, uint32(len(bs)), b)
}

func (c *CommandPool) FreeBuffer(b *CommandBuffer) {
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, 1, []vk.CommandBuffer{b.VKCommandBuffer})
}
