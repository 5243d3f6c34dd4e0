package vks

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BindPoint selects the pipeline type state is bound for.
type BindPoint int

const (
	BindGraphics BindPoint = iota
	BindCompute
)

func (b BindPoint) VK() vk.PipelineBindPoint {
	if b == BindCompute {
		return vk.PipelineBindPointCompute
	}
	return vk.PipelineBindPointGraphics
}

// resourceUse declares how one recorded command touches one resource.
type resourceUse struct {
	resource Resource
	access   MemoryAccess

	// Images only: the layout the command requires the image to be in,
	// and the layout it leaves it in. Zero (undefined) means the command
	// doesn't care.
	isImage        bool
	requiredLayout vk.ImageLayout
	finalLayout    vk.ImageLayout
}

// command is one recorded command waiting in the queue behind the current
// barrier prototype.
type command struct {
	name string
	fire func(cb *CommandBuffer)
}

// useState is the accumulated access state for one resource across the
// whole recording.
type useState struct {
	// Access merged since the last barrier affecting this resource.
	epoch MemoryAccess

	// Union over the whole recording, reported in the final summary.
	allStages PipelineStages
	allAccess AccessFlags
	exclusive bool

	// Index of the last command that used the resource.
	lastUse int

	// Name of the first command to use the resource, for error messages.
	firstCommand string

	isImage bool
	// Layout the image must be in when the command buffer starts
	// executing; undefined when the first use doesn't care.
	initialLayout vk.ImageLayout
	// Layout tracking says the image is in at the current record position.
	currentLayout vk.ImageLayout
}

// Recorder records commands into a CommandBuffer while tracking bound state
// and resource accesses. Conflicting accesses get pipeline barriers inserted
// between them; adjacent barriers are batched into one. Commands are queued
// and only written to the underlying buffer when a barrier forces a flush or
// the recording ends.
//
// A Recorder created over a nil CommandBuffer performs all tracking and
// validation but records nothing, which is how you exercise recording logic
// without a device.
type Recorder struct {
	out *CommandBuffer

	state CommandState

	pending []command
	proto   barrierProto

	uses     map[Resource]*useState
	names    []string
	fired    int
	barriers []int

	// Render pass scope. Barriers may not be emitted inside a render pass,
	// so a forced flush stops short of a still pending pass begin.
	inPass    bool
	passBegin int
}

// barrierProto is the prototype pipeline barrier that will be emitted ahead
// of the pending commands, accumulating merged dependencies.
type barrierProto struct {
	srcStages PipelineStages
	dstStages PipelineStages

	bufferBarriers []vk.BufferMemoryBarrier
	imageBarriers  []vk.ImageMemoryBarrier
}

func (b *barrierProto) empty() bool {
	return b.srcStages == 0 && b.dstStages == 0
}

func (b *barrierProto) reset() {
	*b = barrierProto{}
}

// CommandState is the bound state of a recording as the driver would see
// it: pipelines, descriptor sets, vertex buffers and the index buffer.
type CommandState struct {
	computePipeline  *ComputePipeline
	graphicsPipeline *GraphicsPipeline

	descriptorSets map[BindPoint]map[int]*DescriptorSet

	vertexBuffers map[int]*Buffer
	indexBuffer   *Buffer
	indexType     vk.IndexType
}

// DescriptorSet returns the set bound at the given point and index, or nil.
func (s *CommandState) DescriptorSet(bindPoint BindPoint, set int) *DescriptorSet {
	return s.descriptorSets[bindPoint][set]
}

// VertexBuffer returns the buffer bound at the given vertex binding, or nil.
func (s *CommandState) VertexBuffer(binding int) *Buffer {
	return s.vertexBuffers[binding]
}

// IndexBuffer returns the bound index buffer, or nil.
func (s *CommandState) IndexBuffer() *Buffer {
	return s.indexBuffer
}

// ComputePipeline returns the bound compute pipeline, or nil.
func (s *CommandState) ComputePipeline() *ComputePipeline {
	return s.computePipeline
}

// GraphicsPipeline returns the bound graphics pipeline, or nil.
func (s *CommandState) GraphicsPipeline() *GraphicsPipeline {
	return s.graphicsPipeline
}

func (s *CommandState) bindDescriptorSet(bindPoint BindPoint, set int, ds *DescriptorSet) {
	if s.descriptorSets == nil {
		s.descriptorSets = make(map[BindPoint]map[int]*DescriptorSet)
	}
	if s.descriptorSets[bindPoint] == nil {
		s.descriptorSets[bindPoint] = make(map[int]*DescriptorSet)
	}
	s.descriptorSets[bindPoint][set] = ds
}

// NewRecorder creates a Recorder over the given command buffer. A nil
// buffer creates a dry run recorder.
func NewRecorder(cb *CommandBuffer) *Recorder {
	return &Recorder{
		out:  cb,
		uses: make(map[Resource]*useState),
	}
}

// State exposes the tracked bound state.
func (r *Recorder) State() *CommandState {
	return &r.state
}

// Begin begins the underlying command buffer.
func (r *Recorder) Begin() error {
	if r.out == nil {
		return nil
	}
	return r.out.Begin()
}

// BeginOneTime begins the underlying command buffer for a single submission.
func (r *Recorder) BeginOneTime() error {
	if r.out == nil {
		return nil
	}
	return r.out.BeginOneTime()
}

// BeginContinueRenderPass begins the underlying buffer as a secondary that
// executes entirely within the given render pass.
func (r *Recorder) BeginContinueRenderPass(renderPass *RenderPass, framebuffer *Framebuffer) error {
	if r.out == nil {
		return nil
	}
	return r.out.BeginContinueRenderPass(renderPass, framebuffer)
}

// record queues a command after resolving its resource dependencies,
// inserting or merging barriers as needed.
func (r *Recorder) record(name string, uses []resourceUse, fire func(cb *CommandBuffer)) {
	index := r.fired + len(r.pending)

	for _, use := range uses {
		r.resolve(index, name, use)
	}

	r.pending = append(r.pending, command{name: name, fire: fire})
	r.names = append(r.names, name)
}

// resolve merges one resource use into the tracked state, deciding whether
// a barrier is needed ahead of the command and whether that barrier can
// join the current prototype or requires a flush first.
func (r *Recorder) resolve(index int, name string, use resourceUse) {
	st, seen := r.uses[use.resource]
	if !seen {
		st = &useState{
			epoch:        use.access,
			allStages:    use.access.Stages,
			allAccess:    use.access.Access,
			exclusive:    use.access.Exclusive,
			lastUse:      index,
			firstCommand: name,
			isImage:      use.isImage,
		}
		r.uses[use.resource] = st

		if use.isImage {
			st.currentLayout = use.finalLayout
			if st.currentLayout == vk.ImageLayoutUndefined {
				st.currentLayout = use.requiredLayout
			}
			st.initialLayout = use.requiredLayout

			// If tracking says the image sits in some other layout, the
			// first use needs a transition ahead of it.
			if img, ok := use.resource.(*Image); ok &&
				use.requiredLayout != vk.ImageLayoutUndefined &&
				img.Layout() != use.requiredLayout {
				st.initialLayout = img.Layout()
				r.proto.srcStages |= StageTopOfPipe
				r.proto.dstStages |= use.access.Stages
				r.proto.imageBarriers = append(r.proto.imageBarriers, vk.ImageMemoryBarrier{
					SType:               vk.StructureTypeImageMemoryBarrier,
					DstAccessMask:       use.access.Access.VK(),
					OldLayout:           img.Layout(),
					NewLayout:           use.requiredLayout,
					SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
					DstQueueFamilyIndex: vk.QueueFamilyIgnored,
					Image:               img.VKImage,
					SubresourceRange: vk.ImageSubresourceRange{
						AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
						LevelCount: 1,
						LayerCount: 1,
					},
				})
			}
		}
		return
	}

	layoutMismatch := use.isImage &&
		use.requiredLayout != vk.ImageLayoutUndefined &&
		st.currentLayout != use.requiredLayout

	if !layoutMismatch && !st.epoch.Conflicts(use.access) {
		// Reads stack: no ordering needed, just widen the epoch.
		st.epoch.Stages |= use.access.Stages
		st.epoch.Access |= use.access.Access
		r.finishUse(st, index, use)
		return
	}

	// A conflict arising wholly inside an open render pass cannot get a
	// pipeline barrier at all; ordering there belongs to the pass's subpass
	// dependencies. Tracking widens the epoch and moves on.
	if r.inPass && st.lastUse >= r.passBegin {
		st.epoch.Stages |= use.access.Stages
		st.epoch.Access |= use.access.Access
		st.epoch.Exclusive = st.epoch.Exclusive || use.access.Exclusive
		r.finishUse(st, index, use)
		return
	}

	// A barrier is required between the prior use and this command. It can
	// merge into the prototype only when the prior use has already been
	// flushed; otherwise the barrier would incorrectly order ahead of the
	// queued command it must follow. Inside a render pass the flush stops
	// short of the pass begin, keeping the barrier outside the pass.
	if st.lastUse >= r.fired {
		if r.inPass && r.passBegin >= r.fired && st.lastUse < r.passBegin {
			r.flushFirst(r.passBegin - r.fired)
		} else {
			r.flush()
		}
	}

	r.proto.srcStages |= st.epoch.Stages
	r.proto.dstStages |= use.access.Stages

	if use.isImage {
		img, _ := use.resource.(*Image)
		oldLayout := st.currentLayout
		newLayout := use.requiredLayout
		if newLayout == vk.ImageLayoutUndefined {
			newLayout = oldLayout
		}
		barrier := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       st.epoch.Access.VK(),
			DstAccessMask:       use.access.Access.VK(),
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if img != nil {
			barrier.Image = img.VKImage
		}
		r.proto.imageBarriers = append(r.proto.imageBarriers, barrier)
	} else {
		buf, _ := use.resource.(interface{ vkBuffer() vk.Buffer })
		barrier := vk.BufferMemoryBarrier{
			SType:               vk.StructureTypeBufferMemoryBarrier,
			SrcAccessMask:       st.epoch.Access.VK(),
			DstAccessMask:       use.access.Access.VK(),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Size:                vk.DeviceSize(vk.WholeSize),
		}
		if buf != nil {
			barrier.Buffer = buf.vkBuffer()
		}
		r.proto.bufferBarriers = append(r.proto.bufferBarriers, barrier)
	}

	// The barrier starts a fresh epoch for the resource.
	st.epoch = use.access
	r.finishUse(st, index, use)
}

func (r *Recorder) finishUse(st *useState, index int, use resourceUse) {
	st.allStages |= use.access.Stages
	st.allAccess |= use.access.Access
	st.exclusive = st.exclusive || use.access.Exclusive
	st.lastUse = index
	if use.isImage && use.finalLayout != vk.ImageLayoutUndefined {
		st.currentLayout = use.finalLayout
	} else if use.isImage && use.requiredLayout != vk.ImageLayoutUndefined {
		st.currentLayout = use.requiredLayout
	}
}

// flush emits the prototype barrier (if any) followed by the queued
// commands.
func (r *Recorder) flush() {
	r.flushFirst(len(r.pending))
}

// flushFirst emits the prototype barrier (if any) followed by the first n
// queued commands, leaving the rest queued behind a fresh prototype.
func (r *Recorder) flushFirst(n int) {
	if !r.proto.empty() {
		r.barriers = append(r.barriers, r.fired)
		if r.out != nil {
			r.out.CmdPipelineBarrier(r.proto.srcStages.VK(), r.proto.dstStages.VK(),
				r.proto.bufferBarriers, r.proto.imageBarriers)
		}
		r.proto.reset()
	}

	for _, cmd := range r.pending[:n] {
		if r.out != nil {
			cmd.fire(r.out)
		}
		r.fired++
	}
	r.pending = r.pending[:copy(r.pending, r.pending[n:])]
}

// BindComputePipeline binds a compute pipeline.
func (r *Recorder) BindComputePipeline(p *ComputePipeline) {
	r.state.computePipeline = p
	r.record("bind_compute_pipeline", nil, func(cb *CommandBuffer) {
		cb.CmdBindComputePipeline(p)
	})
}

// BindGraphicsPipeline binds a graphics pipeline.
func (r *Recorder) BindGraphicsPipeline(p *GraphicsPipeline) {
	r.state.graphicsPipeline = p
	r.record("bind_graphics_pipeline", nil, func(cb *CommandBuffer) {
		cb.CmdBindGraphicsPipeline(p.VKPipeline)
	})
}

// BindDescriptorSets binds descriptor sets starting at firstSet. The sets
// must be layout compatible with the pipeline layout at their index.
func (r *Recorder) BindDescriptorSets(bindPoint BindPoint, layout *PipelineLayout, firstSet int, sets ...*DescriptorSet) error {
	for i, ds := range sets {
		setIndex := firstSet + i
		if setIndex < len(layout.SetLayouts) && ds.Layout != nil {
			if !ds.Layout.Compatible(layout.SetLayouts[setIndex]) {
				return errors.Newf("descriptor set %d is not compatible with the pipeline layout", setIndex)
			}
		}
		r.state.bindDescriptorSet(bindPoint, setIndex, ds)
	}

	bound := make([]*DescriptorSet, len(sets))
	copy(bound, sets)
	r.record("bind_descriptor_sets", nil, func(cb *CommandBuffer) {
		cb.CmdBindDescriptorSets(bindPoint.VK(), layout, firstSet, bound...)
	})
	return nil
}

// BindVertexBuffer binds a vertex buffer to the given binding.
func (r *Recorder) BindVertexBuffer(binding int, buffer *Buffer, offset uint64) {
	if r.state.vertexBuffers == nil {
		r.state.vertexBuffers = make(map[int]*Buffer)
	}
	r.state.vertexBuffers[binding] = buffer
	r.record("bind_vertex_buffer", nil, func(cb *CommandBuffer) {
		cb.CmdBindVertexBuffer(binding, buffer, offset)
	})
}

// BindIndexBuffer binds the index buffer.
func (r *Recorder) BindIndexBuffer(buffer *Buffer, offset uint64, indexType vk.IndexType) {
	r.state.indexBuffer = buffer
	r.state.indexType = indexType
	r.record("bind_index_buffer", nil, func(cb *CommandBuffer) {
		cb.CmdBindIndexBuffer(buffer, offset, indexType)
	})
}

// PushConstants records a push constant update. The written bytes must fall
// inside a range the pipeline layout declares for the given stages.
func (r *Recorder) PushConstants(layout *PipelineLayout, stages vk.ShaderStageFlags, offset int, data []byte) error {
	covered := false
	for _, pcr := range layout.PushConstantRanges {
		if pcr.StageFlags&stages == stages &&
			offset >= int(pcr.Offset) &&
			offset+len(data) <= int(pcr.Offset)+int(pcr.Size) {
			covered = true
			break
		}
	}
	if !covered {
		return errors.Newf("push constant write [%d, %d) is not covered by the pipeline layout", offset, offset+len(data))
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	r.record("push_constants", nil, func(cb *CommandBuffer) {
		cb.CmdPushConstants(layout, stages, offset, buf)
	})
	return nil
}

// descriptorUses declares accesses for all resources reachable through the
// descriptor sets bound for the bind point.
func (r *Recorder) descriptorUses(bindPoint BindPoint) []resourceUse {
	var uses []resourceUse
	for _, ds := range r.state.descriptorSets[bindPoint] {
		for _, bd := range ds.resources {
			use := resourceUse{
				resource: bd.resource,
				access:   shaderAccess(bindPoint, bd.writable),
			}
			if bd.isImage {
				use.isImage = true
				use.requiredLayout = bd.layout
				use.finalLayout = bd.layout
			}
			uses = append(uses, use)
		}
	}
	return uses
}

// checkDescriptorSets verifies that every set the pipeline layout names is
// bound and compatible.
func (r *Recorder) checkDescriptorSets(bindPoint BindPoint, layout *PipelineLayout) error {
	if layout == nil {
		return nil
	}
	for i, setLayout := range layout.SetLayouts {
		ds := r.state.DescriptorSet(bindPoint, i)
		if ds == nil {
			return errors.Newf("pipeline layout requires descriptor set %d but none is bound", i)
		}
		if ds.Layout != nil && !ds.Layout.Compatible(setLayout) {
			return errors.Newf("descriptor set %d is not compatible with the pipeline layout", i)
		}
	}
	return nil
}

// Dispatch records a compute dispatch. A compute pipeline must be bound and
// its descriptor sets satisfied.
func (r *Recorder) Dispatch(x, y, z int) error {
	p := r.state.computePipeline
	if p == nil {
		return errors.Wrap(ErrNoPipelineBound, "dispatch")
	}
	if err := r.checkDescriptorSets(BindCompute, p.Layout); err != nil {
		return err
	}

	r.record("dispatch", r.descriptorUses(BindCompute), func(cb *CommandBuffer) {
		cb.CmdDispatch(x, y, z)
	})
	return nil
}

// Draw records a draw. A graphics pipeline must be bound, its descriptor
// sets satisfied, and a vertex buffer bound for every binding it consumes.
func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance int) error {
	uses, err := r.drawUses()
	if err != nil {
		return err
	}

	r.record("draw", uses, func(cb *CommandBuffer) {
		cb.CmdDraw(vertexCount, instanceCount, firstVertex, firstInstance)
	})
	return nil
}

// DrawIndexed records an indexed draw, which additionally requires a bound
// index buffer.
func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance int) error {
	uses, err := r.drawUses()
	if err != nil {
		return err
	}
	if r.state.indexBuffer == nil {
		return errors.Wrap(ErrNoIndexBufferBound, "draw_indexed")
	}
	uses = append(uses, resourceUse{resource: r.state.indexBuffer, access: accessIndexRead})

	r.record("draw_indexed", uses, func(cb *CommandBuffer) {
		cb.CmdDrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
	})
	return nil
}

func (r *Recorder) drawUses() ([]resourceUse, error) {
	p := r.state.graphicsPipeline
	if p == nil {
		return nil, errors.Wrap(ErrNoPipelineBound, "draw")
	}
	if err := r.checkDescriptorSets(BindGraphics, p.Layout); err != nil {
		return nil, err
	}
	for _, binding := range p.VertexBindings {
		if r.state.VertexBuffer(binding) == nil {
			return nil, errors.Wrapf(ErrNoVertexBufferBound, "binding %d", binding)
		}
	}

	uses := r.descriptorUses(BindGraphics)
	for _, buffer := range r.state.vertexBuffers {
		uses = append(uses, resourceUse{resource: buffer, access: accessVertexRead})
	}
	return uses, nil
}

// AttachmentUse names one framebuffer attachment of a render pass and the
// layout the pass leaves it in.
type AttachmentUse struct {
	Image       *Image
	FinalLayout vk.ImageLayout
}

// BeginRenderPass records a render pass begin. Each attachment is tracked
// as an exclusive attachment write; the render pass itself performs the
// layout transitions its description declares, so tracking just notes the
// final layouts.
func (r *Recorder) BeginRenderPass(renderPass *RenderPass, framebuffer *Framebuffer, clearValues []vk.ClearValue, attachments ...AttachmentUse) {
	var uses []resourceUse
	for _, a := range attachments {
		uses = append(uses, resourceUse{
			resource: a.Image,
			access: MemoryAccess{
				Stages:    StageColorAttachmentOutput,
				Access:    AccessColorAttachmentRead | AccessColorAttachmentWrite,
				Exclusive: true,
			},
			isImage:     true,
			finalLayout: a.FinalLayout,
		})
	}
	r.inPass = true
	r.passBegin = r.fired + len(r.pending)
	r.record("begin_render_pass", uses, func(cb *CommandBuffer) {
		cb.CmdBeginRenderPass(renderPass, framebuffer, clearValues, vk.SubpassContentsInline)
	})
}

// EndRenderPass records the render pass end.
func (r *Recorder) EndRenderPass() {
	r.inPass = false
	r.record("end_render_pass", nil, func(cb *CommandBuffer) {
		cb.CmdEndRenderPass()
	})
}

// ExecuteCommands records execution of secondary command buffers, merging
// their tracked resource uses into this recording.
func (r *Recorder) ExecuteCommands(secondary ...*SyncCommandBuffer) error {
	var uses []resourceUse
	inner := make([]*CommandBuffer, 0, len(secondary))
	for _, scb := range secondary {
		if scb.Inner != nil {
			inner = append(inner, scb.Inner)
		}
		for res, use := range scb.uses {
			uses = append(uses, resourceUse{
				resource: res,
				access: MemoryAccess{
					Stages:    use.stages,
					Access:    use.access,
					Exclusive: use.exclusive,
				},
				isImage:        use.isImage,
				requiredLayout: use.initialLayout,
				finalLayout:    use.finalLayout,
			})
		}
	}

	r.record("execute_commands", uses, func(cb *CommandBuffer) {
		cb.CmdExecuteCommands(inner...)
	})
	return nil
}

// checkBufferUsage rejects buffers created without the usage bit a command
// requires. A zero usage means the buffer was created outside this package
// and is not checked.
func checkBufferUsage(b *Buffer, usage vk.BufferUsageFlagBits) error {
	if b.Usage != 0 && !b.HasUsage(usage) {
		return errors.Wrap(ErrMissingUsage, b.ResourceLabel())
	}
	return nil
}

// CopyBuffer records a buffer to buffer copy.
func (r *Recorder) CopyBuffer(src, dst *Buffer, regions ...vk.BufferCopy) error {
	if err := checkBufferUsage(src, vk.BufferUsageTransferSrcBit); err != nil {
		return err
	}
	if err := checkBufferUsage(dst, vk.BufferUsageTransferDstBit); err != nil {
		return err
	}

	uses := []resourceUse{
		{resource: src, access: accessTransferRead},
		{resource: dst, access: accessTransferWrite},
	}
	r.record("copy_buffer", uses, func(cb *CommandBuffer) {
		cb.CmdCopyBuffer(src, dst, regions...)
	})
	return nil
}

// CopyBufferToImage records a buffer to image copy. The image is
// transitioned to transfer destination layout if it isn't there already.
func (r *Recorder) CopyBufferToImage(src *Buffer, dst *Image) error {
	if err := checkBufferUsage(src, vk.BufferUsageTransferSrcBit); err != nil {
		return err
	}
	if dst.Usage != 0 && !dst.HasUsage(vk.ImageUsageTransferDstBit) {
		return errors.Wrap(ErrMissingUsage, dst.ResourceLabel())
	}

	uses := []resourceUse{
		{resource: src, access: accessTransferRead},
		{
			resource:       dst,
			access:         accessTransferWrite,
			isImage:        true,
			requiredLayout: vk.ImageLayoutTransferDstOptimal,
			finalLayout:    vk.ImageLayoutTransferDstOptimal,
		},
	}
	r.record("copy_buffer_to_image", uses, func(cb *CommandBuffer) {
		cb.CmdCopyBufferToImage(src, dst, vk.ImageLayoutTransferDstOptimal)
	})
	return nil
}

// CopyImageToBuffer records an image to buffer copy, the readback direction.
// The image is transitioned to transfer source layout if needed.
func (r *Recorder) CopyImageToBuffer(src *Image, dst *Buffer) error {
	if src.Usage != 0 && !src.HasUsage(vk.ImageUsageTransferSrcBit) {
		return errors.Wrap(ErrMissingUsage, src.ResourceLabel())
	}
	if err := checkBufferUsage(dst, vk.BufferUsageTransferDstBit); err != nil {
		return err
	}

	uses := []resourceUse{
		{
			resource:       src,
			access:         accessTransferRead,
			isImage:        true,
			requiredLayout: vk.ImageLayoutTransferSrcOptimal,
			finalLayout:    vk.ImageLayoutTransferSrcOptimal,
		},
		{resource: dst, access: accessTransferWrite},
	}
	r.record("copy_image_to_buffer", uses, func(cb *CommandBuffer) {
		cb.CmdCopyImageToBuffer(src, vk.ImageLayoutTransferSrcOptimal, dst)
	})
	return nil
}

// TransitionImageLayout records an explicit layout transition, for layouts
// the recorder's built in commands don't reach (present, depth attachment).
func (r *Recorder) TransitionImageLayout(img *Image, newLayout vk.ImageLayout) {
	use := resourceUse{
		resource: img,
		access: MemoryAccess{
			Stages:    StageAllCommands,
			Access:    AccessMemoryRead | AccessMemoryWrite,
			Exclusive: true,
		},
		isImage:        true,
		requiredLayout: newLayout,
		finalLayout:    newLayout,
	}
	r.record("transition_image_layout", []resourceUse{use}, func(cb *CommandBuffer) {
		// The transition itself is carried by the batched barrier.
	})
}

// ImageLayout returns the layout tracking says the image will be in at the
// current record position.
func (r *Recorder) ImageLayout(img *Image) vk.ImageLayout {
	if st, ok := r.uses[Resource(img)]; ok {
		return st.currentLayout
	}
	return img.Layout()
}

// Barriers returns the positions (in fired commands) where barriers have
// been emitted so far. Mostly useful for debugging and tests.
func (r *Recorder) Barriers() []int {
	return r.barriers
}

// End flushes all queued commands and ends the underlying buffer, returning
// a SyncCommandBuffer carrying the final access summary for submission
// tracking.
func (r *Recorder) End() (*SyncCommandBuffer, error) {
	r.flush()

	if r.out != nil {
		if err := r.out.End(); err != nil {
			return nil, err
		}
	}

	sync := &SyncCommandBuffer{
		Inner:    r.out,
		commands: r.names,
		barriers: r.barriers,
		uses:     make(map[Resource]finalUse, len(r.uses)),
	}
	for res, st := range r.uses {
		sync.uses[res] = finalUse{
			stages:        st.allStages,
			access:        st.allAccess,
			exclusive:     st.exclusive,
			firstCommand:  st.firstCommand,
			isImage:       st.isImage,
			initialLayout: st.initialLayout,
			finalLayout:   st.currentLayout,
		}
	}
	return sync, nil
}
