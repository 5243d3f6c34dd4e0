package vks

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint16(1)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint32(1)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint32) IndexType() vk.IndexType {
	return vk.IndexTypeUint32
}

type FloatSlice []float32

func (f FloatSlice) Bytes() []byte {
	size := len(f) * int(unsafe.Sizeof(float32(1)))
	return ToBytes(unsafe.Pointer(&f[0]), size)
}

// VertexPosColor is a position plus color vertex, laid out the way most of
// the simple pipelines want it.
type VertexPosColor struct {
	Pos   mgl32.Vec3
	Color mgl32.Vec3
}

type VertexPosColorSlice []VertexPosColor

func (v VertexPosColorSlice) Bytes() []byte {
	size := len(v) * int(unsafe.Sizeof(VertexPosColor{}))
	return ToBytes(unsafe.Pointer(&v[0]), size)
}

func (v VertexPosColorSlice) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(VertexPosColor{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexPosColorSlice) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(VertexPosColor{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(VertexPosColor{}.Color)),
		},
	}
}

// VertexPosUV is a position plus texture coordinate vertex.
type VertexPosUV struct {
	Pos mgl32.Vec3
	UV  mgl32.Vec2
}

type VertexPosUVSlice []VertexPosUV

func (v VertexPosUVSlice) Bytes() []byte {
	size := len(v) * int(unsafe.Sizeof(VertexPosUV{}))
	return ToBytes(unsafe.Pointer(&v[0]), size)
}

func (v VertexPosUVSlice) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(VertexPosUV{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexPosUVSlice) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(VertexPosUV{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(VertexPosUV{}.UV)),
		},
	}
}

// TransformUBO is the usual model, view, projection block.
type TransformUBO struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

func (t *TransformUBO) Bytes() []byte {
	return ToBytes(unsafe.Pointer(t), int(unsafe.Sizeof(*t)))
}

func (t *TransformUBO) Descriptor() *Descriptor {
	return &Descriptor{
		Type:        vk.DescriptorTypeUniformBuffer,
		ShaderStage: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Set:         0,
		Binding:     0,
	}
}
