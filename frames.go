package vks

import (
	"log"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// FrameLag is how many frames may be in flight at once.
const FrameLag = 2

// FrameCoordinator runs the acquire, record, submit, present loop over a
// swapchain. It owns the per frame semaphores and fences and routes each
// frame's recording through a tracking Recorder so resource conflicts
// across frames surface as AccessErrors instead of hangs.
type FrameCoordinator struct {
	Device        *Device
	Swapchain     *Swapchain
	GraphicsQueue *Queue
	PresentQueue  *Queue

	// RecordFrame records one frame targeting the given swapchain image
	// index. Called every frame after the image is acquired.
	RecordFrame func(r *Recorder, imageIndex int) error

	// OutOfDate is called when the swapchain needs recreating. The
	// coordinator stops drawing until SetSwapchain is called.
	OutOfDate func()

	commandPool    *CommandPool
	commandBuffers []*CommandBuffer

	imageAvailable []*Semaphore
	renderComplete []*Semaphore
	inFlight       []*Fence
	submissions    []*Submission

	frameIndex int
	stale      bool

	Timer *FrameTimer
}

// CreateFrameCoordinator builds the per frame objects. One command buffer,
// two semaphores and a fence per in flight frame.
func (d *Device) CreateFrameCoordinator(swapchain *Swapchain, graphicsQueue, presentQueue *Queue) (*FrameCoordinator, error) {
	pool, err := d.CreateCommandPool(graphicsQueue.QueueFamily)
	if err != nil {
		return nil, err
	}

	buffers, err := pool.AllocateBuffers(FrameLag)
	if err != nil {
		pool.Destroy()
		return nil, err
	}

	fc := &FrameCoordinator{
		Device:         d,
		Swapchain:      swapchain,
		GraphicsQueue:  graphicsQueue,
		PresentQueue:   presentQueue,
		commandPool:    pool,
		commandBuffers: buffers,
		submissions:    make([]*Submission, FrameLag),
		Timer:          NewFrameTimer(),
	}

	for i := 0; i < FrameLag; i++ {
		ia, err := d.CreateSemaphore()
		if err != nil {
			fc.Destroy()
			return nil, err
		}
		fc.imageAvailable = append(fc.imageAvailable, ia)

		rc, err := d.CreateSemaphore()
		if err != nil {
			fc.Destroy()
			return nil, err
		}
		fc.renderComplete = append(fc.renderComplete, rc)

		fence, err := d.CreateFence()
		if err != nil {
			fc.Destroy()
			return nil, err
		}
		fc.inFlight = append(fc.inFlight, fence)
	}

	return fc, nil
}

// SetSwapchain swaps in a recreated swapchain after an out of date result.
func (fc *FrameCoordinator) SetSwapchain(swapchain *Swapchain) {
	fc.Swapchain = swapchain
	fc.stale = false
}

// DrawFrame runs one frame: wait for the slot's previous submission,
// acquire an image, record through a tracking recorder, submit and present.
func (fc *FrameCoordinator) DrawFrame() error {
	if fc.stale {
		return nil
	}
	if fc.RecordFrame == nil {
		return errors.New("frame coordinator has no RecordFrame callback")
	}

	fc.Timer.BeginFrame()
	defer fc.Timer.EndFrame()

	slot := fc.frameIndex

	// Settle the submission that last used this slot so its resources
	// unlock before we record over them.
	if sub := fc.submissions[slot]; sub != nil {
		if err := sub.Wait(); err != nil {
			return err
		}
		fc.submissions[slot] = nil
		if err := fc.inFlight[slot].Reset(); err != nil {
			return err
		}
	}

	imageIndex, res := fc.Swapchain.VKAcquireNextImage(vk.MaxUint64, fc.imageAvailable[slot])
	if res == vk.ErrorOutOfDate {
		fc.markStale()
		return nil
	}
	if err := vk.Error(res); err != nil {
		return err
	}

	cb := fc.commandBuffers[slot]
	if err := cb.Reset(); err != nil {
		return err
	}

	recorder := NewRecorder(cb)
	if err := recorder.BeginOneTime(); err != nil {
		return err
	}
	if err := fc.RecordFrame(recorder, imageIndex); err != nil {
		return err
	}
	scb, err := recorder.End()
	if err != nil {
		return err
	}

	sub, err := fc.submitFrame(slot, scb)
	if err != nil {
		return err
	}
	fc.submissions[slot] = sub

	if err := fc.present(slot, imageIndex); err != nil {
		return err
	}

	fc.frameIndex = (fc.frameIndex + 1) % FrameLag
	return nil
}

// submitFrame submits the tracked recording, waiting on image acquisition
// and signalling render completion for the presentation engine.
func (fc *FrameCoordinator) submitFrame(slot int, scb *SyncCommandBuffer) (*Submission, error) {
	if err := scb.lockResources(); err != nil {
		return nil, err
	}

	submitInfo := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{fc.imageAvailable[slot].VKSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{fc.renderComplete[slot].VKSemaphore},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{scb.Inner.VKCommandBuffer},
	}}

	err := vk.Error(vk.QueueSubmit(fc.GraphicsQueue.VKQueue, 1, submitInfo, fc.inFlight[slot].VKFence))
	if err != nil {
		scb.releaseLocks()
		return nil, err
	}

	return &Submission{Fence: fc.inFlight[slot], buffers: []*SyncCommandBuffer{scb}}, nil
}

func (fc *FrameCoordinator) present(slot, imageIndex int) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{fc.Swapchain.VKSwapchain},
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{fc.renderComplete[slot].VKSemaphore},
		PImageIndices:      []uint32{uint32(imageIndex)},
	}

	res := vk.QueuePresent(fc.PresentQueue.VKQueue, &presentInfo)
	if res == vk.ErrorOutOfDate || res == vk.Suboptimal {
		fc.markStale()
		return nil
	}
	return vk.Error(res)
}

func (fc *FrameCoordinator) markStale() {
	fc.stale = true
	if fc.OutOfDate != nil {
		fc.OutOfDate()
	} else {
		log.Printf("swapchain out of date, waiting for SetSwapchain")
	}
}

// WaitIdle settles all in flight submissions.
func (fc *FrameCoordinator) WaitIdle() error {
	for i, sub := range fc.submissions {
		if sub == nil {
			continue
		}
		if err := sub.Wait(); err != nil {
			return err
		}
		fc.submissions[i] = nil
	}
	fc.Device.WaitIdle()
	return nil
}

func (fc *FrameCoordinator) Destroy() {
	if err := fc.WaitIdle(); err != nil {
		log.Printf("wait idle during teardown: %v", err)
	}
	for _, s := range fc.imageAvailable {
		s.Destroy()
	}
	for _, s := range fc.renderComplete {
		s.Destroy()
	}
	for _, f := range fc.inFlight {
		f.Destroy()
	}
	if fc.commandPool != nil {
		fc.commandPool.Destroy()
	}
}
