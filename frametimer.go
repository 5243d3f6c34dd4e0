package vks

import (
	"fmt"
	"time"

	"github.com/loov/hrtime"
)

const frameTimerWindow = 120

// FrameTimer measures frame times with a high resolution clock and keeps a
// rolling window of the most recent frames.
type FrameTimer struct {
	frameStart time.Duration
	samples    [frameTimerWindow]time.Duration
	count      int
	next       int
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{}
}

func (t *FrameTimer) BeginFrame() {
	t.frameStart = hrtime.Now()
}

func (t *FrameTimer) EndFrame() {
	t.samples[t.next] = hrtime.Now() - t.frameStart
	t.next = (t.next + 1) % frameTimerWindow
	if t.count < frameTimerWindow {
		t.count++
	}
}

// Average returns the mean frame time over the window.
func (t *FrameTimer) Average() time.Duration {
	if t.count == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < t.count; i++ {
		total += t.samples[i]
	}
	return total / time.Duration(t.count)
}

// Max returns the worst frame time in the window.
func (t *FrameTimer) Max() time.Duration {
	var max time.Duration
	for i := 0; i < t.count; i++ {
		if t.samples[i] > max {
			max = t.samples[i]
		}
	}
	return max
}

// FPS returns frames per second derived from the average frame time.
func (t *FrameTimer) FPS() float64 {
	avg := t.Average()
	if avg == 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

func (t *FrameTimer) String() string {
	return fmt.Sprintf("avg %.2fms max %.2fms (%.1f fps)",
		float64(t.Average())/float64(time.Millisecond),
		float64(t.Max())/float64(time.Millisecond),
		t.FPS())
}
