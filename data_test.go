package vks

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

func TestIndexSliceTypesAndBytes(t *testing.T) {
	i16 := IndexSliceUint16{0, 1, 2}
	if i16.IndexType() != vk.IndexTypeUint16 {
		t.Error("wrong index type for uint16 slice")
	}
	if len(i16.Bytes()) != 6 {
		t.Errorf("expected 6 bytes, got %d", len(i16.Bytes()))
	}

	i32 := IndexSliceUint32{0, 1, 2}
	if i32.IndexType() != vk.IndexTypeUint32 {
		t.Error("wrong index type for uint32 slice")
	}
	if len(i32.Bytes()) != 12 {
		t.Errorf("expected 12 bytes, got %d", len(i32.Bytes()))
	}
}

func TestVertexPosColorLayout(t *testing.T) {
	verts := VertexPosColorSlice{
		{Pos: mgl32.Vec3{0, 0, 0}, Color: mgl32.Vec3{1, 0, 0}},
		{Pos: mgl32.Vec3{1, 0, 0}, Color: mgl32.Vec3{0, 1, 0}},
	}

	bd := verts.GetBindingDescription()
	if bd.Stride != uint32(unsafe.Sizeof(VertexPosColor{})) {
		t.Errorf("stride %d does not match struct size", bd.Stride)
	}

	attrs := verts.GetAttributeDescriptions()
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Offset != 0 {
		t.Error("position should sit at offset 0")
	}
	if attrs[1].Offset != 12 {
		t.Errorf("color offset %d, want 12", attrs[1].Offset)
	}

	if len(verts.Bytes()) != 2*int(unsafe.Sizeof(VertexPosColor{})) {
		t.Error("bytes length does not cover both vertices")
	}
}

func TestUsageForBufferObject(t *testing.T) {
	if u := usageForBufferObject(VertexPosColorSlice{}); u != vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit) {
		t.Errorf("vertex slice usage %v", u)
	}
	if u := usageForBufferObject(IndexSliceUint16{}); u != vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit) {
		t.Errorf("index slice usage %v", u)
	}
	if u := usageForBufferObject(&TransformUBO{}); u != vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit) {
		t.Errorf("ubo usage %v", u)
	}
	if u := usageForBufferObject(FloatSlice{1}); u != 0 {
		t.Errorf("plain float slice should derive no usage, got %v", u)
	}
}

func TestTransformUBOBytes(t *testing.T) {
	ubo := TransformUBO{Model: mgl32.Ident4(), View: mgl32.Ident4(), Proj: mgl32.Ident4()}
	if len(ubo.Bytes()) != 3*64 {
		t.Errorf("expected 192 bytes of matrices, got %d", len(ubo.Bytes()))
	}
	d := ubo.Descriptor()
	if d.Type != vk.DescriptorTypeUniformBuffer || d.Binding != 0 {
		t.Errorf("unexpected descriptor %+v", d)
	}
}
