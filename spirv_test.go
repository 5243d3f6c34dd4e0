package vks

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// spirvBuilder assembles tiny SPIR-V binaries for parser tests.
type spirvBuilder struct {
	words []uint32
}

func newSpirvBuilder() *spirvBuilder {
	// magic, version 1.0, generator, bound, schema
	return &spirvBuilder{words: []uint32{spirvMagic, 0x00010000, 0, 100, 0}}
}

func (b *spirvBuilder) op(opcode uint32, operands ...uint32) *spirvBuilder {
	b.words = append(b.words, uint32(len(operands)+1)<<16|opcode)
	b.words = append(b.words, operands...)
	return b
}

func stringWords(s string) []uint32 {
	data := append([]byte(s), 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

func (b *spirvBuilder) bytes() []byte {
	out := make([]byte, len(b.words)*4)
	for i, w := range b.words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestParseSPIRVRejectsGarbage(t *testing.T) {
	if _, err := ParseSPIRV([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidSPIRV) {
		t.Errorf("short input: %v", err)
	}

	junk := make([]byte, 24)
	if _, err := ParseSPIRV(junk); !errors.Is(err, ErrInvalidSPIRV) {
		t.Errorf("bad magic: %v", err)
	}

	// Valid header followed by an instruction claiming more words than
	// the binary holds.
	b := newSpirvBuilder()
	b.words = append(b.words, 99<<16|1)
	if _, err := ParseSPIRV(b.bytes()); !errors.Is(err, ErrInvalidSPIRV) {
		t.Errorf("truncated instruction: %v", err)
	}
}

func TestParseSPIRVEntryPoints(t *testing.T) {
	b := newSpirvBuilder()
	b.op(opEntryPoint, append([]uint32{executionModelCompute, 1}, stringWords("main")...)...)

	info, err := ParseSPIRV(b.bytes())
	if err != nil {
		t.Fatal(err)
	}

	if len(info.EntryPoints) != 1 {
		t.Fatalf("expected 1 entry point, got %d", len(info.EntryPoints))
	}
	ep := info.EntryPoint("main")
	if ep == nil {
		t.Fatal("entry point main not found")
	}
	if ep.Stage != vk.ShaderStageComputeBit {
		t.Errorf("unexpected stage %x", ep.Stage)
	}
	if info.Stages() != vk.ShaderStageFlags(vk.ShaderStageComputeBit) {
		t.Errorf("unexpected stage union %x", info.Stages())
	}
}

func TestParseSPIRVStorageBufferBinding(t *testing.T) {
	b := newSpirvBuilder()
	b.op(opEntryPoint, append([]uint32{executionModelCompute, 1}, stringWords("main")...)...)
	// %2 = struct decorated as buffer block, bound at set 0 binding 1.
	b.op(opDecorate, 2, decorationBufferBlock)
	b.op(opDecorate, 4, decorationDescriptorSet, 0)
	b.op(opDecorate, 4, decorationBinding, 1)
	b.op(opTypeStruct, 2)
	b.op(opTypePointer, 3, storageClassUniform, 2)
	b.op(opVariable, 3, 4, storageClassUniform)

	info, err := ParseSPIRV(b.bytes())
	if err != nil {
		t.Fatal(err)
	}

	if len(info.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %v", info.Bindings)
	}
	got := info.Bindings[0]
	if got.Set != 0 || got.Binding != 1 {
		t.Errorf("unexpected location set=%d binding=%d", got.Set, got.Binding)
	}
	if got.Type != vk.DescriptorTypeStorageBuffer {
		t.Errorf("buffer block in uniform storage should reflect as storage buffer, got %d", got.Type)
	}
	if !got.Writable {
		t.Error("storage buffer should be writable")
	}
}

func TestParseSPIRVUniformAndImageBindings(t *testing.T) {
	b := newSpirvBuilder()
	b.op(opEntryPoint, append([]uint32{executionModelFragment, 1}, stringWords("main")...)...)

	// Uniform block at set 0 binding 0.
	b.op(opDecorate, 2, decorationBlock)
	b.op(opDecorate, 4, decorationDescriptorSet, 0)
	b.op(opDecorate, 4, decorationBinding, 0)
	b.op(opTypeStruct, 2)
	b.op(opTypePointer, 3, storageClassUniform, 2)
	b.op(opVariable, 3, 4, storageClassUniform)

	// Combined image sampler at set 1 binding 2.
	b.op(opDecorate, 7, decorationDescriptorSet, 1)
	b.op(opDecorate, 7, decorationBinding, 2)
	b.op(opTypeSampledImage, 5)
	b.op(opTypePointer, 6, storageClassUniformConstant, 5)
	b.op(opVariable, 6, 7, storageClassUniformConstant)

	// Storage image at set 1 binding 3. OpTypeImage operands: result,
	// sampled type, dim, depth, arrayed, ms, sampled, format.
	b.op(opDecorate, 10, decorationDescriptorSet, 1)
	b.op(opDecorate, 10, decorationBinding, 3)
	b.op(opTypeImage, 8, 0, 1, 0, 0, 0, 2, 0)
	b.op(opTypePointer, 9, storageClassUniformConstant, 8)
	b.op(opVariable, 9, 10, storageClassUniformConstant)

	info, err := ParseSPIRV(b.bytes())
	if err != nil {
		t.Fatal(err)
	}

	if len(info.Bindings) != 3 {
		t.Fatalf("expected 3 bindings, got %v", info.Bindings)
	}

	byLocation := map[[2]int]ShaderBinding{}
	for _, bind := range info.Bindings {
		byLocation[[2]int{bind.Set, bind.Binding}] = bind
	}

	if got := byLocation[[2]int{0, 0}]; got.Type != vk.DescriptorTypeUniformBuffer {
		t.Errorf("set 0 binding 0: got type %d, want uniform buffer", got.Type)
	}
	if got := byLocation[[2]int{1, 2}]; got.Type != vk.DescriptorTypeCombinedImageSampler {
		t.Errorf("set 1 binding 2: got type %d, want combined image sampler", got.Type)
	}
	if got := byLocation[[2]int{1, 3}]; got.Type != vk.DescriptorTypeStorageImage || !got.Writable {
		t.Errorf("set 1 binding 3: got %+v, want writable storage image", got)
	}

	if info.MaxSet() != 1 {
		t.Errorf("expected max set 1, got %d", info.MaxSet())
	}

	set1 := info.DescriptorSetLayoutBindings(1)
	if len(set1) != 2 {
		t.Errorf("expected 2 bindings in set 1, got %v", set1)
	}
	for _, db := range set1 {
		if db.Stages != vk.ShaderStageFlags(vk.ShaderStageFragmentBit) {
			t.Errorf("layout binding should carry the module's stages, got %x", db.Stages)
		}
	}
}

func TestParseSPIRVPushConstants(t *testing.T) {
	b := newSpirvBuilder()
	b.op(opEntryPoint, append([]uint32{executionModelVertex, 1}, stringWords("main")...)...)
	b.op(opTypeStruct, 2)
	b.op(opTypePointer, 3, storageClassPushConstant, 2)
	b.op(opVariable, 3, 4, storageClassPushConstant)

	info, err := ParseSPIRV(b.bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !info.HasPushConstants {
		t.Error("push constant block not detected")
	}
	if len(info.Bindings) != 0 {
		t.Errorf("push constants are not descriptor bindings, got %v", info.Bindings)
	}
}

func TestParseSPIRVBigEndian(t *testing.T) {
	b := newSpirvBuilder()
	b.op(opEntryPoint, append([]uint32{executionModelCompute, 1}, stringWords("main")...)...)

	// Re-encode the same module with swapped byte order.
	le := b.bytes()
	be := make([]byte, len(le))
	for i := 0; i < len(le); i += 4 {
		binary.BigEndian.PutUint32(be[i:], binary.LittleEndian.Uint32(le[i:]))
	}

	info, err := ParseSPIRV(be)
	if err != nil {
		t.Fatal(err)
	}
	if info.EntryPoint("main") == nil {
		t.Error("entry point lost in byte swapped module")
	}
}
