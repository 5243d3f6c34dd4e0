package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// PipelineStages is a set of pipeline stages. The bit values match the
// native vulkan values so conversion is a cast.
type PipelineStages uint32

const (
	StageTopOfPipe             PipelineStages = 0x00000001
	StageDrawIndirect          PipelineStages = 0x00000002
	StageVertexInput           PipelineStages = 0x00000004
	StageVertexShader          PipelineStages = 0x00000008
	StageFragmentShader        PipelineStages = 0x00000080
	StageEarlyFragmentTests    PipelineStages = 0x00000100
	StageLateFragmentTests     PipelineStages = 0x00000200
	StageColorAttachmentOutput PipelineStages = 0x00000400
	StageComputeShader         PipelineStages = 0x00000800
	StageTransfer              PipelineStages = 0x00001000
	StageBottomOfPipe          PipelineStages = 0x00002000
	StageHost                  PipelineStages = 0x00004000
	StageAllCommands           PipelineStages = 0x00010000
)

// VK returns the native vulkan representation of the stage set.
func (s PipelineStages) VK() vk.PipelineStageFlags {
	return vk.PipelineStageFlags(s)
}

// AccessFlags is a set of memory access types. The bit values match the
// native vulkan values.
type AccessFlags uint32

const (
	AccessIndirectCommandRead  AccessFlags = 0x00000001
	AccessIndexRead            AccessFlags = 0x00000002
	AccessVertexAttributeRead  AccessFlags = 0x00000004
	AccessUniformRead          AccessFlags = 0x00000008
	AccessShaderRead           AccessFlags = 0x00000020
	AccessShaderWrite          AccessFlags = 0x00000040
	AccessColorAttachmentRead  AccessFlags = 0x00000080
	AccessColorAttachmentWrite AccessFlags = 0x00000100
	AccessDepthStencilRead     AccessFlags = 0x00000200
	AccessDepthStencilWrite    AccessFlags = 0x00000400
	AccessTransferRead         AccessFlags = 0x00000800
	AccessTransferWrite        AccessFlags = 0x00001000
	AccessHostRead             AccessFlags = 0x00002000
	AccessHostWrite            AccessFlags = 0x00004000
	AccessMemoryRead           AccessFlags = 0x00008000
	AccessMemoryWrite          AccessFlags = 0x00010000
)

const accessAllWrites = AccessShaderWrite | AccessColorAttachmentWrite |
	AccessDepthStencilWrite | AccessTransferWrite | AccessHostWrite | AccessMemoryWrite

// VK returns the native vulkan representation of the access set.
func (a AccessFlags) VK() vk.AccessFlags {
	return vk.AccessFlags(a)
}

// HasWrite reports whether the access set contains any write access.
func (a AccessFlags) HasWrite() bool {
	return a&accessAllWrites != 0
}

// MemoryAccess describes how a command touches a resource: in which pipeline
// stages, with which access types, and whether the access is exclusive
// (a write).
type MemoryAccess struct {
	Stages    PipelineStages
	Access    AccessFlags
	Exclusive bool
}

// Conflicts reports whether two accesses to the same resource require
// ordering. Two reads never conflict; everything else does.
func (m MemoryAccess) Conflicts(other MemoryAccess) bool {
	return m.Exclusive || other.Exclusive
}

// Common access patterns used by the recorder's built in commands.
var (
	accessTransferRead = MemoryAccess{
		Stages: StageTransfer, Access: AccessTransferRead,
	}
	accessTransferWrite = MemoryAccess{
		Stages: StageTransfer, Access: AccessTransferWrite, Exclusive: true,
	}
	accessVertexRead = MemoryAccess{
		Stages: StageVertexInput, Access: AccessVertexAttributeRead,
	}
	accessIndexRead = MemoryAccess{
		Stages: StageVertexInput, Access: AccessIndexRead,
	}
)

// shaderAccess builds the access for a descriptor resource used by a
// pipeline at the given bind point.
func shaderAccess(bindPoint BindPoint, writable bool) MemoryAccess {
	stages := StageComputeShader
	if bindPoint == BindGraphics {
		stages = StageVertexShader | StageFragmentShader
	}
	if writable {
		return MemoryAccess{Stages: stages, Access: AccessShaderRead | AccessShaderWrite, Exclusive: true}
	}
	return MemoryAccess{Stages: stages, Access: AccessShaderRead}
}
