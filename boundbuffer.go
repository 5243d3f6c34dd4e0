package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// HostBoundBuffer pairs a buffer object with a host visible buffer it can
// be copied into.
type HostBoundBuffer struct {
	HostBuffer       *Buffer
	HostMemory       *DeviceMemory
	HostMemoryOffset uint64
	BufferObject     BufferObject
}

// StagedBoundBuffer additionally holds a device local buffer the host copy
// gets transferred to.
type StagedBoundBuffer struct {
	HostBoundBuffer

	DeviceBuffer       *Buffer
	DeviceMemory       *DeviceMemory
	DeviceMemoryOffset uint64
}

// CreateAndBindBufferAndMemory creates a buffer, allocates memory matching
// its requirements and binds the two.
func (d *Device) CreateAndBindBufferAndMemory(size uint64, offset uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags, sharing vk.SharingMode) (*Buffer, *DeviceMemory, error) {
	buffer, err := d.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, nil, err
	}
	if err := buffer.Bind(memory, offset); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, nil, err
	}
	return buffer, memory, nil
}

// CreateHostBoundBuffer creates a host visible buffer sized for the buffer
// object, with usage derived from the interfaces the object implements.
func (d *Device) CreateHostBoundBuffer(bo BufferObject) (*HostBoundBuffer, error) {
	usage := usageForBufferObject(bo)

	buffer, memory, err := d.CreateAndBindBufferAndMemory(uint64(len(bo.Bytes())), 0,
		usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	return &HostBoundBuffer{
		HostBuffer:   buffer,
		HostMemory:   memory,
		BufferObject: bo,
	}, nil
}

// CreateStagedBoundBuffer creates a host visible staging buffer plus a
// device local buffer for the buffer object.
func (d *Device) CreateStagedBoundBuffer(bo BufferObject) (*StagedBoundBuffer, error) {
	size := uint64(len(bo.Bytes()))

	hostBuffer, hostMemory, err := d.CreateAndBindBufferAndMemory(size, 0,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	usage := usageForBufferObject(bo) | vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)

	deviceBuffer, deviceMemory, err := d.CreateAndBindBufferAndMemory(size, 0,
		usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.SharingModeExclusive)
	if err != nil {
		hostMemory.Destroy()
		hostBuffer.Destroy()
		return nil, err
	}

	s := &StagedBoundBuffer{
		HostBoundBuffer: HostBoundBuffer{
			HostBuffer:   hostBuffer,
			HostMemory:   hostMemory,
			BufferObject: bo,
		},
		DeviceBuffer: deviceBuffer,
		DeviceMemory: deviceMemory,
	}
	return s, nil
}

// Map copies the buffer object's current bytes into the host buffer.
func (h *HostBoundBuffer) Map() error {
	data := h.BufferObject.Bytes()

	pm, err := h.HostMemory.MapWithSize(len(data))
	if err != nil {
		return err
	}

	copy(ToBytes(pm, len(data)), data)
	h.HostMemory.Unmap()
	return nil
}

// RecordCopy records the host to device transfer on a tracking recorder.
func (s *StagedBoundBuffer) RecordCopy(r *Recorder) error {
	return r.CopyBuffer(s.HostBuffer, s.DeviceBuffer)
}

func (h *HostBoundBuffer) Destroy() {
	if h.HostMemory != nil {
		h.HostMemory.Destroy()
	}
	if h.HostBuffer != nil {
		h.HostBuffer.Destroy()
	}
}

func (s *StagedBoundBuffer) Destroy() {
	s.HostBoundBuffer.Destroy()
	if s.DeviceMemory != nil {
		s.DeviceMemory.Destroy()
	}
	if s.DeviceBuffer != nil {
		s.DeviceBuffer.Destroy()
	}
}
