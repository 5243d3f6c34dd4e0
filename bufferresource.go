package vks

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BufferResource is a buffer which has been sub-allocated from a
// BufferResourcePool: a vertex buffer, index buffer, UBO or storage buffer
// living inside the pool's device memory.
type BufferResource struct {
	*Buffer
	ResourcePool    *BufferResourcePool
	Allocation      *Allocation
	StagingResource *BufferResource
}

// VKMappedMemoryRange is provided so that the buffer implements
// MappedMemoryRanger and can be handed to Device.FlushMappedRanges.
func (r *BufferResource) VKMappedMemoryRange() vk.MappedMemoryRange {
	return vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: r.ResourcePool.Memory.VKDeviceMemory,
		Offset: vk.DeviceSize(r.Allocation.Offset),
		Size:   vk.DeviceSize(r.Allocation.Size),
	}
}

// RequiresStaging indicates that this resource lives in device local memory
// and must be staged before it can be populated from the host.
func (r *BufferResource) RequiresStaging() bool {
	return r.ResourcePool.NeedsStaging
}

// AllocateStagingResource allocates a transfer source buffer for this
// resource out of the pool named "staging". Once allocated it must be
// explicitly freed.
func (r *BufferResource) AllocateStagingResource() error {
	if !r.ResourcePool.NeedsStaging {
		return errors.New("resource does not require staging")
	}

	stagingPool := r.ResourcePool.ResourceManager.GetStagingPool()
	if stagingPool == nil {
		return errors.Newf("no %q pool exists to stage resources from", StagingPoolName)
	}

	var err error
	r.StagingResource, err = stagingPool.AllocateBuffer(r.Buffer.Size, vk.BufferUsageTransferSrcBit)
	return err
}

// FreeStagingResource frees the staging resource associated with this
// resource.
func (r *BufferResource) FreeStagingResource() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
}

// Bytes returns a byte slice onto the resource's region of the pool's mapped
// memory, or nil when the pool is not host visible or not mapped.
func (r *BufferResource) Bytes() []byte {
	if r.RequiresStaging() {
		return nil
	}
	if r.ResourcePool.Memory.Ptr == nil {
		return nil
	}

	const m = 0x7fffffff
	s := r.Allocation.Offset
	e := r.Allocation.Offset + r.Allocation.Size
	return (*[m]byte)(r.ResourcePool.Memory.Ptr)[s:e]
}

func (r *BufferResource) Destroy() {
	r.Free()
}

// Free this resource and its associated staging resource.
func (r *BufferResource) Free() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
	if r.Allocation != nil {
		r.Allocation.Object = nil
		r.ResourcePool.Allocator.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Buffer.VKBuffer != vk.NullBuffer {
		r.Buffer.Destroy()
		r.Buffer.VKBuffer = vk.NullBuffer
	}
}
