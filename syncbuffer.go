package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// finalUse is the summarized access a finished recording makes of one
// resource.
type finalUse struct {
	stages    PipelineStages
	access    AccessFlags
	exclusive bool

	firstCommand string

	isImage       bool
	initialLayout vk.ImageLayout
	finalLayout   vk.ImageLayout
}

// SyncCommandBuffer is a finished recording together with everything the
// queue needs to guard it: which resources it touches, how, and what image
// layouts it expects and leaves behind. Produced by Recorder.End.
type SyncCommandBuffer struct {
	// Inner is the recorded command buffer. Nil for dry run recordings.
	Inner *CommandBuffer

	commands []string
	barriers []int

	uses map[Resource]finalUse
}

// Commands returns the names of the recorded commands in order.
func (s *SyncCommandBuffer) Commands() []string {
	return s.commands
}

// Barriers returns, for each emitted barrier, the index of the command it
// precedes.
func (s *SyncCommandBuffer) Barriers() []int {
	return s.barriers
}

// Resources returns every resource the recording touches.
func (s *SyncCommandBuffer) Resources() []Resource {
	out := make([]Resource, 0, len(s.uses))
	for res := range s.uses {
		out = append(out, res)
	}
	return out
}

// Exclusive reports whether the recording writes the given resource.
func (s *SyncCommandBuffer) Exclusive(res Resource) bool {
	return s.uses[res].exclusive
}

// lockResources takes the runtime lock on every touched resource, or locks
// none of them and reports which resource refused. Writers need the
// resource idle; readers stack.
func (s *SyncCommandBuffer) lockResources() error {
	locked := make([]Resource, 0, len(s.uses))
	for res, use := range s.uses {
		if reason := res.resourceState().tryLock(use.exclusive); reason != "" {
			for _, l := range locked {
				l.resourceState().unlock(s.uses[l].exclusive)
			}
			return &AccessError{
				Resource:  res.ResourceLabel(),
				Command:   use.firstCommand,
				Exclusive: use.exclusive,
				Reason:    reason,
			}
		}
		locked = append(locked, res)
	}
	return nil
}

// unlockResources releases the runtime locks and settles tracked image
// layouts to what the recording left them as. Only for recordings the GPU
// actually executed; a submission that failed must releaseLocks instead so
// tracking keeps the layouts the images really are in.
func (s *SyncCommandBuffer) unlockResources() {
	for res, use := range s.uses {
		if use.isImage && use.finalLayout != vk.ImageLayoutUndefined {
			res.resourceState().setLayout(use.finalLayout)
		}
		res.resourceState().unlock(use.exclusive)
	}
}

// releaseLocks releases the runtime locks without settling image layouts.
func (s *SyncCommandBuffer) releaseLocks() {
	for res, use := range s.uses {
		res.resourceState().unlock(use.exclusive)
	}
}
