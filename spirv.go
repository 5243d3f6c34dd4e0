package vks

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// A small SPIR-V reader. It walks the instruction stream looking for just
// enough to reflect a module's binding interface: entry points, descriptor
// bindings and push constant blocks. It does not validate the module; the
// driver does that when the pipeline is created.

const spirvMagic = 0x07230203

// Opcodes and enum values from the SPIR-V specification.
const (
	opEntryPoint       = 15
	opTypeImage        = 25
	opTypeSampler      = 26
	opTypeSampledImage = 27
	opTypeStruct       = 30
	opTypePointer      = 32
	opVariable         = 59
	opDecorate         = 71
)

const (
	storageClassUniformConstant = 0
	storageClassUniform         = 2
	storageClassPushConstant    = 9
	storageClassStorageBuffer   = 12
)

const (
	decorationBlock         = 2
	decorationBufferBlock   = 3
	decorationBinding       = 33
	decorationDescriptorSet = 34
	decorationNonWritable   = 24
)

const (
	executionModelVertex   = 0
	executionModelFragment = 4
	executionModelCompute  = 5
)

// EntryPoint is an entry point declared by a shader module.
type EntryPoint struct {
	Name  string
	Stage vk.ShaderStageFlagBits
}

// ShaderBinding is one descriptor binding a shader module declares.
type ShaderBinding struct {
	Set      int
	Binding  int
	Type     vk.DescriptorType
	Writable bool
}

// ShaderInfo is the reflected binding interface of a shader module.
type ShaderInfo struct {
	EntryPoints      []EntryPoint
	Bindings         []ShaderBinding
	HasPushConstants bool
}

// Stages returns the union of all entry point stages.
func (si *ShaderInfo) Stages() vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	for _, ep := range si.EntryPoints {
		flags |= vk.ShaderStageFlags(ep.Stage)
	}
	return flags
}

// EntryPoint returns the entry point with the given name, or nil.
func (si *ShaderInfo) EntryPoint(name string) *EntryPoint {
	for i := range si.EntryPoints {
		if si.EntryPoints[i].Name == name {
			return &si.EntryPoints[i]
		}
	}
	return nil
}

// MaxSet returns the highest descriptor set number any binding uses, or -1
// when the module binds nothing.
func (si *ShaderInfo) MaxSet() int {
	max := -1
	for _, b := range si.Bindings {
		if b.Set > max {
			max = b.Set
		}
	}
	return max
}

// DescriptorSetLayoutBindings returns the bindings of one set as
// DescriptorBinding values ready to feed a DescriptorSetLayout.
func (si *ShaderInfo) DescriptorSetLayoutBindings(set int) []DescriptorBinding {
	var out []DescriptorBinding
	for _, b := range si.Bindings {
		if b.Set != set {
			continue
		}
		out = append(out, DescriptorBinding{
			Binding: b.Binding,
			Type:    b.Type,
			Count:   1,
			Stages:  si.Stages(),
		})
	}
	return out
}

// spirvID tracks what the parser has learned about one result id.
type spirvID struct {
	// OpTypePointer
	isPointer    bool
	storageClass uint32
	pointee      uint32

	// type kind
	isStruct       bool
	isSampler      bool
	isSampledImage bool
	isImage        bool
	imageSampled   uint32 // OpTypeImage "Sampled" operand

	// decorations
	hasSet      bool
	set         uint32
	hasBinding  bool
	binding     uint32
	block       bool
	bufferBlock bool
	nonWritable bool

	// OpVariable
	isVariable bool
	varType    uint32
	varStorage uint32
}

// ParseSPIRV reflects the binding interface out of a SPIR-V binary.
func ParseSPIRV(data []byte) (*ShaderInfo, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "%d bytes", len(data))
	}

	order := binary.ByteOrder(binary.LittleEndian)
	switch binary.LittleEndian.Uint32(data) {
	case spirvMagic:
	default:
		if binary.BigEndian.Uint32(data) != spirvMagic {
			return nil, errors.Wrap(ErrInvalidSPIRV, "bad magic number")
		}
		order = binary.BigEndian
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}

	ids := map[uint32]*spirvID{}
	id := func(n uint32) *spirvID {
		if ids[n] == nil {
			ids[n] = &spirvID{}
		}
		return ids[n]
	}

	info := &ShaderInfo{}

	// Words 0..4 are the header.
	for pos := 5; pos < len(words); {
		wordCount := int(words[pos] >> 16)
		opcode := words[pos] & 0xffff
		if wordCount == 0 || pos+wordCount > len(words) {
			return nil, errors.Wrapf(ErrInvalidSPIRV, "truncated instruction at word %d", pos)
		}
		op := words[pos : pos+wordCount]

		switch opcode {
		case opEntryPoint:
			if wordCount < 4 {
				return nil, errors.Wrap(ErrInvalidSPIRV, "malformed OpEntryPoint")
			}
			info.EntryPoints = append(info.EntryPoints, EntryPoint{
				Name:  spirvString(op[3:]),
				Stage: executionModelStage(op[1]),
			})

		case opDecorate:
			if wordCount < 3 {
				break
			}
			t := id(op[1])
			switch op[2] {
			case decorationDescriptorSet:
				if wordCount >= 4 {
					t.hasSet, t.set = true, op[3]
				}
			case decorationBinding:
				if wordCount >= 4 {
					t.hasBinding, t.binding = true, op[3]
				}
			case decorationBlock:
				t.block = true
			case decorationBufferBlock:
				t.bufferBlock = true
			case decorationNonWritable:
				t.nonWritable = true
			}

		case opTypePointer:
			if wordCount >= 4 {
				t := id(op[1])
				t.isPointer = true
				t.storageClass = op[2]
				t.pointee = op[3]
			}

		case opTypeStruct:
			id(op[1]).isStruct = true

		case opTypeSampler:
			id(op[1]).isSampler = true

		case opTypeSampledImage:
			id(op[1]).isSampledImage = true

		case opTypeImage:
			if wordCount >= 8 {
				t := id(op[1])
				t.isImage = true
				t.imageSampled = op[7]
			}

		case opVariable:
			if wordCount >= 4 {
				t := id(op[2])
				t.isVariable = true
				t.varType = op[1]
				t.varStorage = op[3]
			}
		}

		pos += wordCount
	}

	for _, t := range ids {
		if !t.isVariable {
			continue
		}
		if t.varStorage == storageClassPushConstant {
			info.HasPushConstants = true
			continue
		}
		if !t.hasBinding && !t.hasSet {
			continue
		}
		dtype, ok := descriptorType(t, ids)
		if !ok {
			continue
		}
		info.Bindings = append(info.Bindings, ShaderBinding{
			Set:      int(t.set),
			Binding:  int(t.binding),
			Type:     dtype,
			Writable: writable(t, dtype),
		})
	}

	return info, nil
}

// descriptorType maps a decorated variable to the descriptor type a layout
// needs for it.
func descriptorType(v *spirvID, ids map[uint32]*spirvID) (vk.DescriptorType, bool) {
	pointee := resolvePointee(v, ids)

	switch v.varStorage {
	case storageClassStorageBuffer:
		return vk.DescriptorTypeStorageBuffer, true
	case storageClassUniform:
		if pointee != nil && pointee.bufferBlock {
			return vk.DescriptorTypeStorageBuffer, true
		}
		return vk.DescriptorTypeUniformBuffer, true
	case storageClassUniformConstant:
		switch {
		case pointee == nil:
			return 0, false
		case pointee.isSampledImage:
			return vk.DescriptorTypeCombinedImageSampler, true
		case pointee.isSampler:
			return vk.DescriptorTypeSampler, true
		case pointee.isImage && pointee.imageSampled == 2:
			return vk.DescriptorTypeStorageImage, true
		case pointee.isImage:
			return vk.DescriptorTypeSampledImage, true
		}
	}
	return 0, false
}

func resolvePointee(v *spirvID, ids map[uint32]*spirvID) *spirvID {
	t := ids[v.varType]
	if t != nil && t.isPointer {
		return ids[t.pointee]
	}
	return t
}

func writable(v *spirvID, dtype vk.DescriptorType) bool {
	switch dtype {
	case vk.DescriptorTypeStorageBuffer, vk.DescriptorTypeStorageImage:
		return !v.nonWritable
	}
	return false
}

func executionModelStage(model uint32) vk.ShaderStageFlagBits {
	switch model {
	case executionModelVertex:
		return vk.ShaderStageVertexBit
	case executionModelFragment:
		return vk.ShaderStageFragmentBit
	case executionModelCompute:
		return vk.ShaderStageComputeBit
	}
	return vk.ShaderStageAll
}

// spirvString decodes a SPIR-V string literal: little endian bytes packed
// four to a word, NUL terminated.
func spirvString(words []uint32) string {
	var out []byte
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(out)
			}
			out = append(out, c)
		}
	}
	return string(out)
}
