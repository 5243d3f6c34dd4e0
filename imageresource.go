package vks

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ImageResource is an image sub-allocated from an ImageResourcePool.
type ImageResource struct {
	*Image
	ResourcePool    *ImageResourcePool
	Allocation      *Allocation
	StagingResource *BufferResource
}

// RequiresStaging indicates that this image lives in device local memory and
// must be staged before it can be populated from the host.
func (r *ImageResource) RequiresStaging() bool {
	return r.ResourcePool.NeedsStaging
}

// AllocateStagingResource allocates a transfer source buffer big enough to
// hold the image's pixels from the pool named "staging".
func (r *ImageResource) AllocateStagingResource() error {
	stagingPool := r.ResourcePool.ResourceManager.GetStagingPool()
	if stagingPool == nil {
		return errors.Newf("no %q pool exists to stage resources from", StagingPoolName)
	}

	mr := r.VKMemoryRequirements()
	mr.Deref()

	var err error
	r.StagingResource, err = stagingPool.AllocateBuffer(uint64(mr.Size), vk.BufferUsageTransferSrcBit)
	return err
}

// FreeStagingResource frees the staging buffer associated with this image.
func (r *ImageResource) FreeStagingResource() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
}

func (r *ImageResource) Destroy() {
	r.Free()
}

// Free this image and its associated staging resource.
func (r *ImageResource) Free() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
	if r.Allocation != nil {
		r.Allocation.Object = nil
		r.ResourcePool.Allocator.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Image.VKImage != vk.NullImage {
		r.Image.Destroy()
		r.Image.VKImage = vk.NullImage
	}
}
