package vks

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Image wraps a vulkan image. The layout the image was last left in by
// completed work is tracked on its access state and consulted by the
// recorder to insert layout transitions.
type Image struct {
	tracked
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent2D
	Usage    vk.ImageUsageFlags
}

func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	if extent.Width == 0 || extent.Height == 0 {
		return nil, errors.Wrapf(ErrZeroExtent, "%dx%d", extent.Width, extent.Height)
	}

	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var image vk.Image
	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create image")
	}

	ret := &Image{
		Device:   d,
		VKImage:  image,
		VKFormat: format,
		Extent:   extent,
		Usage:    usage,
	}
	ret.SetLabel(fmt.Sprintf("image(%dx%d)", extent.Width, extent.Height))
	ret.state.layout = vk.ImageLayoutUndefined

	return ret, nil
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	return memRequirements
}

func (i *Image) AllocationRequirements() *AllocationRequirements {
	mr := i.VKMemoryRequirements()
	mr.Deref()

	return &AllocationRequirements{
		Size:           int(mr.Size),
		Alignment:      uint64(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

// HasUsage reports whether the image was created with the given usage bit.
func (i *Image) HasUsage(usage vk.ImageUsageFlagBits) bool {
	return i.Usage&vk.ImageUsageFlags(usage) != 0
}

// Layout returns the layout tracking believes the image is in.
func (i *Image) Layout() vk.ImageLayout {
	return i.state.currentLayout()
}

// Bind binds the image to device memory at the given offset.
func (i *Image) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindImageMemory(i.Device.VKDevice, i.VKImage, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (i *Image) String() string {
	return i.ResourceLabel()
}

func (i *Image) Destroy() {
	vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
}
