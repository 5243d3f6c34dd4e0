package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer describes a sequence of commands that will be executed upon
// being sent to a device queue. This is the thin wrapper; recording through a
// Recorder adds state tracking, validation and automatic barriers on top.
// Not every vulkan command is wrapped, the calling application may always
// record against VK() directly.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
}

// VK is a utility function for accessing the native vulkan command buffer.
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Reset this command buffer.
func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// ResetAndRelease resets this command buffer and releases the associated
// resources back to its pool.
func (c *CommandBuffer) ResetAndRelease() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}

// Begin capturing work for this command buffer.
func (c *CommandBuffer) Begin() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// BeginOneTime begins capturing work with the stipulation that the buffer
// will only be submitted once.
func (c *CommandBuffer) BeginOneTime() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// BeginContinueRenderPass begins a secondary command buffer that executes
// entirely within the given render pass.
func (c *CommandBuffer) BeginContinueRenderPass(renderPass *RenderPass, framebuffer *Framebuffer) error {
	inheritInfo := vk.CommandBufferInheritanceInfo{
		SType:       vk.StructureTypeCommandBufferInheritanceInfo,
		RenderPass:  renderPass.VKRenderPass,
		Framebuffer: framebuffer.VKFramebuffer,
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit),
		PInheritanceInfo: []vk.CommandBufferInheritanceInfo{inheritInfo},
	}

	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// End describing work for this command buffer.
func (c *CommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer))
}

func (c *CommandBuffer) CmdBindComputePipeline(p *ComputePipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointCompute, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(pipeline vk.Pipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, pipeline)
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...*DescriptorSet) {
	sets := make([]vk.DescriptorSet, len(descriptorSets))
	for i := range descriptorSets {
		sets[i] = descriptorSets[i].VKDescriptorSet
	}

	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.VKPipelineLayout, uint32(firstSet), uint32(len(descriptorSets)), sets, 0, nil)
}

func (c *CommandBuffer) CmdBindVertexBuffer(binding int, buffer *Buffer, offset uint64) {
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, uint32(binding), 1,
		[]vk.Buffer{buffer.VKBuffer}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (c *CommandBuffer) CmdBindIndexBuffer(buffer *Buffer, offset uint64, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(c.VKCommandBuffer, buffer.VKBuffer, vk.DeviceSize(offset), indexType)
}

func (c *CommandBuffer) CmdPushConstants(layout *PipelineLayout, stages vk.ShaderStageFlags, offset int, data []byte) {
	vk.CmdPushConstants(c.VKCommandBuffer, layout.VKPipelineLayout, stages,
		uint32(offset), uint32(len(data)), unsafeBytes(data))
}

func (c *CommandBuffer) CmdDispatch(x, y, z int) {
	vk.CmdDispatch(c.VKCommandBuffer, uint32(x), uint32(y), uint32(z))
}

func (c *CommandBuffer) CmdDraw(vertexCount, instanceCount, firstVertex, firstInstance int) {
	vk.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), uint32(instanceCount), uint32(firstVertex), uint32(firstInstance))
}

func (c *CommandBuffer) CmdDrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) {
	vk.CmdDrawIndexed(c.VKCommandBuffer, uint32(indexCount), uint32(instanceCount), uint32(firstIndex), int32(vertexOffset), uint32(firstInstance))
}

func (c *CommandBuffer) CmdCopyBuffer(src, dst *Buffer, regions ...vk.BufferCopy) {
	if len(regions) == 0 {
		regions = []vk.BufferCopy{{Size: vk.DeviceSize(src.Size)}}
	}
	vk.CmdCopyBuffer(c.VKCommandBuffer, src.VKBuffer, dst.VKBuffer, uint32(len(regions)), regions)
}

func (c *CommandBuffer) CmdCopyBufferToImage(src *Buffer, dst *Image, layout vk.ImageLayout) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  dst.Extent.Width,
			Height: dst.Extent.Height,
			Depth:  1,
		},
	}
	vk.CmdCopyBufferToImage(c.VKCommandBuffer, src.VKBuffer, dst.VKImage, layout, 1, []vk.BufferImageCopy{region})
}

func (c *CommandBuffer) CmdCopyImageToBuffer(src *Image, layout vk.ImageLayout, dst *Buffer) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  src.Extent.Width,
			Height: src.Extent.Height,
			Depth:  1,
		},
	}
	vk.CmdCopyImageToBuffer(c.VKCommandBuffer, src.VKImage, layout, dst.VKBuffer, 1, []vk.BufferImageCopy{region})
}

func (c *CommandBuffer) CmdBeginRenderPass(renderPass *RenderPass, framebuffer *Framebuffer, clearValues []vk.ClearValue, contents vk.SubpassContents) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass.VKRenderPass,
		Framebuffer: framebuffer.VKFramebuffer,
		RenderArea: vk.Rect2D{
			Extent: framebuffer.Extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &beginInfo, contents)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

// CmdPipelineBarrier emits a raw pipeline barrier. Recorders call this with
// the barriers they batch up; applications recording manually may use it
// directly.
func (c *CommandBuffer) CmdPipelineBarrier(srcStages, dstStages vk.PipelineStageFlags, bufferBarriers []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier) {
	vk.CmdPipelineBarrier(c.VKCommandBuffer, srcStages, dstStages, 0,
		0, nil,
		uint32(len(bufferBarriers)), bufferBarriers,
		uint32(len(imageBarriers)), imageBarriers)
}

// CmdExecuteCommands executes the given secondary command buffers.
func (c *CommandBuffer) CmdExecuteCommands(secondary ...*CommandBuffer) {
	bufs := make([]vk.CommandBuffer, len(secondary))
	for i := range secondary {
		bufs[i] = secondary[i].VKCommandBuffer
	}
	vk.CmdExecuteCommands(c.VKCommandBuffer, uint32(len(bufs)), bufs)
}
