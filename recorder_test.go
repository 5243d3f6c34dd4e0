package vks

import (
	"testing"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Recorder tests run against a nil command buffer, so only the tracking and
// validation logic runs and no device is needed.

func namedBuffer(name string) *Buffer {
	b := &Buffer{Size: 1024}
	b.SetLabel(name)
	return b
}

func TestRecorderNoBarrierBetweenIndependentCopies(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c, d := namedBuffer("a"), namedBuffer("b"), namedBuffer("c"), namedBuffer("d")

	r.CopyBuffer(a, b)
	r.CopyBuffer(c, d)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(scb.Barriers()) != 0 {
		t.Errorf("independent copies need no barrier, got %v", scb.Barriers())
	}
	if len(scb.Commands()) != 2 {
		t.Errorf("expected 2 commands, got %v", scb.Commands())
	}
}

func TestRecorderReadsStack(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c := namedBuffer("a"), namedBuffer("b"), namedBuffer("c")

	// Both commands read a; no ordering needed.
	r.CopyBuffer(a, b)
	r.CopyBuffer(a, c)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(scb.Barriers()) != 0 {
		t.Errorf("two reads of the same buffer need no barrier, got %v", scb.Barriers())
	}
}

func TestRecorderBarrierOnWriteThenRead(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c := namedBuffer("a"), namedBuffer("b"), namedBuffer("c")

	r.CopyBuffer(a, b)
	r.CopyBuffer(b, c)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(scb.Barriers()) != 1 || scb.Barriers()[0] != 1 {
		t.Errorf("expected one barrier before command 1, got %v", scb.Barriers())
	}
}

func TestRecorderBarrierOnReadThenWrite(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c, d := namedBuffer("a"), namedBuffer("b"), namedBuffer("c"), namedBuffer("d")

	r.CopyBuffer(a, b)
	r.CopyBuffer(a, c)
	r.CopyBuffer(d, a)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(scb.Barriers()) != 1 || scb.Barriers()[0] != 2 {
		t.Errorf("expected one barrier before command 2, got %v", scb.Barriers())
	}
}

func TestRecorderMergesIntoPendingBarrier(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c, d := namedBuffer("a"), namedBuffer("b"), namedBuffer("c"), namedBuffer("d")

	r.CopyBuffer(a, b)
	// Conflicts on b; flushes command 0 and opens a barrier.
	r.CopyBuffer(b, c)
	// Conflicts on a, but a was last used by the already flushed command
	// 0, so the dependency merges into the open barrier.
	r.CopyBuffer(d, a)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	if len(scb.Barriers()) != 1 || scb.Barriers()[0] != 1 {
		t.Errorf("expected a single merged barrier before command 1, got %v", scb.Barriers())
	}
}

func TestRecorderFlushesWhenConflictIsQueued(t *testing.T) {
	r := NewRecorder(nil)

	a, b, c, d := namedBuffer("a"), namedBuffer("b"), namedBuffer("c"), namedBuffer("d")

	r.CopyBuffer(a, b)
	r.CopyBuffer(b, c)
	// Conflicts on c, which the still queued command 1 writes. The open
	// barrier cannot also order against command 1, so a second barrier is
	// needed.
	r.CopyBuffer(c, d)

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2}
	got := scb.Barriers()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected barriers %v, got %v", want, got)
	}
}

func TestRecorderImageLayoutTransitions(t *testing.T) {
	r := NewRecorder(nil)

	src := namedBuffer("staging")
	img := &Image{Extent: vk.Extent2D{Width: 16, Height: 16}}
	img.SetLabel("texture")

	if err := r.CopyBufferToImage(src, img); err != nil {
		t.Fatal(err)
	}

	if r.ImageLayout(img) != vk.ImageLayoutTransferDstOptimal {
		t.Errorf("tracking should hold transfer dst layout, got %d", r.ImageLayout(img))
	}

	r.TransitionImageLayout(img, vk.ImageLayoutShaderReadOnlyOptimal)
	if r.ImageLayout(img) != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("tracking should hold shader read layout, got %d", r.ImageLayout(img))
	}

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}

	// One barrier transitions undefined to transfer dst ahead of the copy,
	// another transitions to shader read for the explicit request.
	if len(scb.Barriers()) != 2 {
		t.Errorf("expected 2 barriers, got %v", scb.Barriers())
	}

	// The image itself only changes layout once the work completes.
	if img.Layout() != vk.ImageLayoutUndefined {
		t.Error("image layout changed before submission completed")
	}
	if err := scb.lockResources(); err != nil {
		t.Fatal(err)
	}
	scb.unlockResources()
	if img.Layout() != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("image layout not settled after completion, got %d", img.Layout())
	}
}

func TestReleaseLocksKeepsImageLayout(t *testing.T) {
	src := namedBuffer("staging")
	img := &Image{Extent: vk.Extent2D{Width: 16, Height: 16}}
	img.SetLabel("texture")

	r := NewRecorder(nil)
	if err := r.CopyBufferToImage(src, img); err != nil {
		t.Fatal(err)
	}
	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}

	// A submission that never reached the GPU releases its locks without
	// settling layouts; the image never actually transitioned.
	if err := scb.lockResources(); err != nil {
		t.Fatal(err)
	}
	scb.releaseLocks()
	if img.Layout() != vk.ImageLayoutUndefined {
		t.Errorf("layout settled on a failed submission, got %d", img.Layout())
	}

	// The locks really are gone: the same recording locks and completes.
	if err := scb.lockResources(); err != nil {
		t.Fatalf("lock after release refused: %v", err)
	}
	scb.unlockResources()
	if img.Layout() != vk.ImageLayoutTransferDstOptimal {
		t.Errorf("layout not settled after completion, got %d", img.Layout())
	}
}

func TestRecorderDispatchValidation(t *testing.T) {
	r := NewRecorder(nil)

	if err := r.Dispatch(1, 1, 1); !errors.Is(err, ErrNoPipelineBound) {
		t.Errorf("dispatch without pipeline: %v", err)
	}

	dsl := &DescriptorSetLayout{}
	dsl.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeStorageBuffer})
	layout := &PipelineLayout{SetLayouts: []*DescriptorSetLayout{dsl}}

	cp := &ComputePipeline{Layout: layout}
	r.BindComputePipeline(cp)

	if err := r.Dispatch(1, 1, 1); err == nil {
		t.Error("dispatch without required descriptor set should fail")
	}

	ds := &DescriptorSet{Layout: dsl}
	ds.AddBuffer(0, vk.DescriptorTypeStorageBuffer, namedBuffer("ssbo"), 0)
	if err := r.BindDescriptorSets(BindCompute, layout, 0, ds); err != nil {
		t.Fatal(err)
	}

	if err := r.Dispatch(1, 1, 1); err != nil {
		t.Errorf("valid dispatch refused: %v", err)
	}
}

func TestRecorderDispatchConflictGetsBarrier(t *testing.T) {
	r := NewRecorder(nil)

	dsl := &DescriptorSetLayout{}
	dsl.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeStorageBuffer})
	layout := &PipelineLayout{SetLayouts: []*DescriptorSetLayout{dsl}}

	ds := &DescriptorSet{Layout: dsl}
	ds.AddBuffer(0, vk.DescriptorTypeStorageBuffer, namedBuffer("ssbo"), 0)

	cp := &ComputePipeline{Layout: layout}
	r.BindComputePipeline(cp)
	if err := r.BindDescriptorSets(BindCompute, layout, 0, ds); err != nil {
		t.Fatal(err)
	}

	if err := r.Dispatch(64, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Dispatch(64, 1, 1); err != nil {
		t.Fatal(err)
	}

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}

	// Commands 0 and 1 are the binds; the dispatches are 2 and 3 and both
	// write the storage buffer, so a barrier lands before command 3.
	if len(scb.Barriers()) != 1 || scb.Barriers()[0] != 3 {
		t.Errorf("expected one barrier before command 3, got %v", scb.Barriers())
	}
}

func TestRecorderIncompatibleDescriptorSet(t *testing.T) {
	r := NewRecorder(nil)

	dslStorage := &DescriptorSetLayout{}
	dslStorage.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeStorageBuffer})

	dslUniform := &DescriptorSetLayout{}
	dslUniform.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeUniformBuffer})

	layout := &PipelineLayout{SetLayouts: []*DescriptorSetLayout{dslStorage}}

	ds := &DescriptorSet{Layout: dslUniform}
	ds.AddBuffer(0, vk.DescriptorTypeUniformBuffer, namedBuffer("ubo"), 0)

	if err := r.BindDescriptorSets(BindCompute, layout, 0, ds); err == nil {
		t.Error("binding an incompatible descriptor set should fail")
	}
}

func TestRecorderDrawValidation(t *testing.T) {
	r := NewRecorder(nil)

	if err := r.Draw(3, 1, 0, 0); !errors.Is(err, ErrNoPipelineBound) {
		t.Errorf("draw without pipeline: %v", err)
	}

	gp := &GraphicsPipeline{VertexBindings: []int{0}}
	r.BindGraphicsPipeline(gp)

	if err := r.Draw(3, 1, 0, 0); !errors.Is(err, ErrNoVertexBufferBound) {
		t.Errorf("draw without vertex buffer: %v", err)
	}

	r.BindVertexBuffer(0, namedBuffer("vertices"), 0)
	if err := r.Draw(3, 1, 0, 0); err != nil {
		t.Errorf("valid draw refused: %v", err)
	}

	if err := r.DrawIndexed(3, 1, 0, 0, 0); !errors.Is(err, ErrNoIndexBufferBound) {
		t.Errorf("indexed draw without index buffer: %v", err)
	}

	r.BindIndexBuffer(namedBuffer("indices"), 0, vk.IndexTypeUint16)
	if err := r.DrawIndexed(3, 1, 0, 0, 0); err != nil {
		t.Errorf("valid indexed draw refused: %v", err)
	}
}

func TestSyncCommandBufferLocking(t *testing.T) {
	shared := namedBuffer("shared")

	record := func() *SyncCommandBuffer {
		r := NewRecorder(nil)
		r.CopyBuffer(namedBuffer("src"), shared)
		scb, err := r.End()
		if err != nil {
			t.Fatal(err)
		}
		return scb
	}

	first := record()
	second := record()

	if err := first.lockResources(); err != nil {
		t.Fatal(err)
	}

	err := second.lockResources()
	if err == nil {
		t.Fatal("conflicting lock should be refused")
	}
	if !IsAccessDenied(err) {
		t.Errorf("expected an access error, got %v", err)
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		if ae.Resource != "shared" {
			t.Errorf("access error names %q, want shared", ae.Resource)
		}
		if !ae.Exclusive {
			t.Error("denied access was a write")
		}
	}

	first.unlockResources()

	if err := second.lockResources(); err != nil {
		t.Errorf("lock after release refused: %v", err)
	}
	second.unlockResources()
}

func TestSubmitTrackedDryRun(t *testing.T) {
	// Dry run recordings have no native command buffer, so SubmitTracked
	// only exercises the locking.
	q := &Queue{}
	shared := namedBuffer("shared")

	record := func() *SyncCommandBuffer {
		r := NewRecorder(nil)
		r.CopyBuffer(namedBuffer("src"), shared)
		scb, err := r.End()
		if err != nil {
			t.Fatal(err)
		}
		return scb
	}

	sub, err := q.SubmitTracked(nil, record())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := q.SubmitTracked(nil, record()); !IsAccessDenied(err) {
		t.Errorf("expected access denied for overlapping submission, got %v", err)
	}

	if err := sub.Wait(); err != nil {
		t.Fatal(err)
	}

	sub2, err := q.SubmitTracked(nil, record())
	if err != nil {
		t.Errorf("submission after wait refused: %v", err)
	}
	if sub2 != nil {
		sub2.Wait()
	}
}

func TestRecorderExecuteCommandsPropagatesUses(t *testing.T) {
	shared := namedBuffer("shared")

	sec := NewRecorder(nil)
	sec.CopyBuffer(namedBuffer("src"), shared)
	secondary, err := sec.End()
	if err != nil {
		t.Fatal(err)
	}

	prim := NewRecorder(nil)
	if err := prim.ExecuteCommands(secondary); err != nil {
		t.Fatal(err)
	}
	primary, err := prim.End()
	if err != nil {
		t.Fatal(err)
	}

	if !primary.Exclusive(shared) {
		t.Error("primary should carry the secondary's write of shared")
	}
}

func TestRecorderCopyBufferChecksUsage(t *testing.T) {
	r := NewRecorder(nil)

	uniform := &Buffer{Size: 256, Usage: vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)}
	uniform.SetLabel("uniform")

	if err := r.CopyBuffer(uniform, namedBuffer("dst")); !errors.Is(err, ErrMissingUsage) {
		t.Errorf("expected missing usage for copy source, got %v", err)
	}
	if err := r.CopyBuffer(namedBuffer("src"), uniform); !errors.Is(err, ErrMissingUsage) {
		t.Errorf("expected missing usage for copy destination, got %v", err)
	}

	// Zero usage means the buffer was created elsewhere and is not checked.
	if err := r.CopyBuffer(namedBuffer("src"), namedBuffer("dst")); err != nil {
		t.Errorf("unchecked buffers refused: %v", err)
	}
}

func TestRecorderPushConstantsRequireDeclaredRange(t *testing.T) {
	r := NewRecorder(nil)

	layout := &PipelineLayout{
		PushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
			Offset:     0,
			Size:       16,
		}},
	}

	data := make([]byte, 16)
	if err := r.PushConstants(layout, vk.ShaderStageFlags(vk.ShaderStageComputeBit), 0, data); err != nil {
		t.Errorf("covered push constant write refused: %v", err)
	}

	if err := r.PushConstants(layout, vk.ShaderStageFlags(vk.ShaderStageComputeBit), 8, data); err == nil {
		t.Error("expected error for write past the declared range")
	}

	if err := r.PushConstants(layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, data); err == nil {
		t.Error("expected error for stages the layout does not declare")
	}
}

func TestRecorderBarrierLandsBeforeRenderPass(t *testing.T) {
	r := NewRecorder(nil)

	vtx := namedBuffer("vertices")
	target := &Image{}
	target.SetLabel("target")

	pipeline := &GraphicsPipeline{Layout: &PipelineLayout{}, VertexBindings: []int{0}}

	// Upload then draw from the same buffer. The draw needs a barrier
	// against the copy, and it must sit before the render pass begin.
	r.CopyBuffer(namedBuffer("staging"), vtx)
	r.BeginRenderPass(nil, nil, nil,
		AttachmentUse{Image: target, FinalLayout: vk.ImageLayoutTransferSrcOptimal})
	r.BindGraphicsPipeline(pipeline)
	r.BindVertexBuffer(0, vtx, 0)
	if err := r.Draw(3, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	r.EndRenderPass()

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}

	barriers := scb.Barriers()
	if len(barriers) != 1 || barriers[0] != 1 {
		t.Errorf("expected one barrier before the render pass begin (command 1), got %v", barriers)
	}
}

func TestRecorderSuppressesBarrierInsideRenderPass(t *testing.T) {
	r := NewRecorder(nil)

	dsl := &DescriptorSetLayout{}
	dsl.AddBinding(DescriptorBinding{Binding: 0, Type: vk.DescriptorTypeStorageBuffer})
	layout := &PipelineLayout{SetLayouts: []*DescriptorSetLayout{dsl}}

	ds := &DescriptorSet{Layout: dsl}
	ds.AddBuffer(0, vk.DescriptorTypeStorageBuffer, namedBuffer("ssbo"), 0)

	pipeline := &GraphicsPipeline{Layout: layout}

	target := &Image{}
	target.SetLabel("target")

	r.BeginRenderPass(nil, nil, nil,
		AttachmentUse{Image: target, FinalLayout: vk.ImageLayoutColorAttachmentOptimal})
	r.BindGraphicsPipeline(pipeline)
	if err := r.BindDescriptorSets(BindGraphics, layout, 0, ds); err != nil {
		t.Fatal(err)
	}

	// Both draws write the same storage buffer, but a pipeline barrier may
	// not appear inside the pass. Ordering there is left to the render
	// pass's subpass dependencies; tracking just widens the access.
	if err := r.Draw(3, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw(3, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	r.EndRenderPass()

	scb, err := r.End()
	if err != nil {
		t.Fatal(err)
	}

	if len(scb.Barriers()) != 0 {
		t.Errorf("barrier emitted inside a render pass, positions %v", scb.Barriers())
	}
	want := []string{"begin_render_pass", "bind_graphics_pipeline", "bind_descriptor_sets", "draw", "draw", "end_render_pass"}
	got := scb.Commands()
	if len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("commands = %v, want %v", got, want)
		}
	}
}
