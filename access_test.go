package vks

import (
	"testing"
)

func TestConflicts(t *testing.T) {
	read := MemoryAccess{Stages: StageTransfer, Access: AccessTransferRead}
	write := MemoryAccess{Stages: StageTransfer, Access: AccessTransferWrite, Exclusive: true}

	if read.Conflicts(read) {
		t.Error("two reads should not conflict")
	}
	if !read.Conflicts(write) {
		t.Error("read then write should conflict")
	}
	if !write.Conflicts(read) {
		t.Error("write then read should conflict")
	}
	if !write.Conflicts(write) {
		t.Error("two writes should conflict")
	}
}

func TestHasWrite(t *testing.T) {
	if AccessTransferRead.HasWrite() {
		t.Error("transfer read is not a write")
	}
	if !AccessTransferWrite.HasWrite() {
		t.Error("transfer write is a write")
	}
	if !(AccessShaderRead | AccessShaderWrite).HasWrite() {
		t.Error("mixed access with a write bit is a write")
	}
}

func TestShaderAccess(t *testing.T) {
	a := shaderAccess(BindCompute, false)
	if a.Exclusive {
		t.Error("read only shader access should not be exclusive")
	}
	if a.Stages != StageComputeShader {
		t.Errorf("compute access in wrong stage: %x", a.Stages)
	}

	a = shaderAccess(BindCompute, true)
	if !a.Exclusive {
		t.Error("writable shader access should be exclusive")
	}

	a = shaderAccess(BindGraphics, false)
	if a.Stages&StageVertexShader == 0 || a.Stages&StageFragmentShader == 0 {
		t.Errorf("graphics access should cover vertex and fragment stages: %x", a.Stages)
	}
}

func TestStageAndAccessFlagValuesMatchNative(t *testing.T) {
	// The wrapper flag types cast straight into the native ones, so their
	// bit values have to line up.
	if uint32(StageTransfer.VK()) != 0x00001000 {
		t.Error("transfer stage bit mismatch")
	}
	if uint32(AccessTransferWrite.VK()) != 0x00001000 {
		t.Error("transfer write access bit mismatch")
	}
	if uint32(StageColorAttachmentOutput.VK()) != 0x00000400 {
		t.Error("color attachment output stage bit mismatch")
	}
}
