package vks

import (
	"sync"

	vk "github.com/vulkan-go/vulkan"
)

// Resource is implemented by objects whose GPU access is tracked across
// command buffer submissions: buffers, images and the pooled resources
// allocated by the ResourceManager.
type Resource interface {
	// ResourceLabel names the resource for error reporting.
	ResourceLabel() string

	resourceState() *resourceState
}

// resourceState is the CPU side bookkeeping for one resource. Reads stack,
// a write excludes everything else. Images additionally track the layout
// the image will be in once all in flight work completes.
//
// The state is guarded by its own small mutex rather than any lock shared
// between resources, so locking two different resources never contends.
type resourceState struct {
	mu      sync.Mutex
	readers int
	writer  bool
	layout  vk.ImageLayout
}

// tryLock attempts to acquire the resource for GPU use. It either acquires
// and returns an empty string, or leaves the state untouched and returns the
// reason the access was denied.
func (s *resourceState) tryLock(exclusive bool) (reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer {
		return "resource is locked for writing by an earlier submission"
	}
	if exclusive {
		if s.readers > 0 {
			return "resource is locked for reading by an earlier submission"
		}
		s.writer = true
		return ""
	}
	s.readers++
	return ""
}

func (s *resourceState) unlock(exclusive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exclusive {
		s.writer = false
	} else if s.readers > 0 {
		s.readers--
	}
}

func (s *resourceState) currentLayout() vk.ImageLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

func (s *resourceState) setLayout(layout vk.ImageLayout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = layout
}

// tracked is embedded by every wrapper object that participates in access
// tracking.
type tracked struct {
	label string
	state resourceState
}

func (t *tracked) ResourceLabel() string {
	if t.label == "" {
		return "unnamed resource"
	}
	return t.label
}

func (t *tracked) resourceState() *resourceState { return &t.state }

// SetLabel names the resource. Labels show up in AccessError messages and
// are purely informational.
func (t *tracked) SetLabel(label string) { t.label = label }
