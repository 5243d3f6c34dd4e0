package vks

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return vk.Error(vk.QueueWaitIdle(q.VKQueue))
}

// SubmitWaitIdle submits the buffers and blocks until the queue drains.
// Handy for one shot uploads where tracking would be overkill.
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	if err := q.submit(nil, buffers...); err != nil {
		return err
	}
	vk.QueueWaitIdle(q.VKQueue)
	return nil
}

// SubmitWithFence submits the buffers, signalling the fence on completion.
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	return q.submit(fence, buffers...)
}

func (q *Queue) submit(fence *Fence, buffers ...*CommandBuffer) error {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(buffers)),
		PCommandBuffers:    b,
	}

	var f vk.Fence
	if fence != nil {
		f = fence.VKFence
	}
	return vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo}, f))
}

// Submission is an in flight tracked submission. The resources it uses stay
// locked until Wait is called.
type Submission struct {
	Fence   *Fence
	buffers []*SyncCommandBuffer
	done    bool
}

// Wait blocks until the GPU finishes the submission, then releases the
// resource locks and settles image layouts. Safe to call more than once.
func (s *Submission) Wait() error {
	if s.done {
		return nil
	}
	if s.Fence != nil {
		if err := s.Fence.Wait(); err != nil {
			return err
		}
	}
	for _, scb := range s.buffers {
		scb.unlockResources()
	}
	s.done = true
	return nil
}

// SubmitTracked submits tracked recordings. Every resource the recordings
// touch is locked first; if any resource is already held in a conflicting
// way, nothing is locked or submitted and an AccessError describing the
// refusing resource is returned. The fence is signalled on completion and
// the returned Submission's Wait releases the locks.
func (q *Queue) SubmitTracked(fence *Fence, buffers ...*SyncCommandBuffer) (*Submission, error) {
	locked := make([]*SyncCommandBuffer, 0, len(buffers))
	for _, scb := range buffers {
		if err := scb.lockResources(); err != nil {
			for _, l := range locked {
				l.releaseLocks()
			}
			return nil, err
		}
		locked = append(locked, scb)
	}

	inner := make([]*CommandBuffer, 0, len(buffers))
	for _, scb := range buffers {
		if scb.Inner != nil {
			inner = append(inner, scb.Inner)
		}
	}

	if len(inner) > 0 {
		if err := q.submit(fence, inner...); err != nil {
			for _, l := range locked {
				l.releaseLocks()
			}
			return nil, err
		}
	}

	return &Submission{Fence: fence, buffers: locked}, nil
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}
