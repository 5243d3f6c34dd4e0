package vks

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer wraps a vulkan buffer along with the usage it was created with and
// the access state used by submission tracking.
type Buffer struct {
	tracked
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlags
}

// CreateBuffer creates a storage buffer of the given size.
func (d *Device) CreateBuffer(sizeInBytes uint64) (*Buffer, error) {
	return d.CreateBufferWithOptions(sizeInBytes, vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit), vk.SharingModeExclusive)
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlags, sharing vk.SharingMode) (*Buffer, error) {
	if sizeInBytes == 0 {
		return nil, errors.New("buffer size must be non zero")
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create buffer")
	}

	ret := &Buffer{
		Device:   d,
		VKBuffer: buffer,
		Size:     sizeInBytes,
		Usage:    usage,
	}
	ret.SetLabel(fmt.Sprintf("buffer(%d bytes)", sizeInBytes))

	return ret, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

func (b *Buffer) AllocationRequirements() *AllocationRequirements {
	mr := b.VKMemoryRequirements()
	mr.Deref()

	return &AllocationRequirements{
		Size:           int(mr.Size),
		Alignment:      uint64(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

// HasUsage reports whether the buffer was created with the given usage bit.
// The recorder uses this to reject commands against buffers which were never
// meant for them.
func (b *Buffer) HasUsage(usage vk.BufferUsageFlagBits) bool {
	return b.Usage&vk.BufferUsageFlags(usage) != 0
}

// DSInfo builds a descriptor buffer info covering the buffer from offset to
// its end.
func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size),
	}
}

// Bind binds the buffer to device memory at the given offset.
func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) vkBuffer() vk.Buffer {
	return b.VKBuffer
}

func (b *Buffer) String() string {
	return b.ResourceLabel()
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}
