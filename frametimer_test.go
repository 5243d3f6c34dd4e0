package vks

import (
	"testing"
	"time"
)

func TestFrameTimer(t *testing.T) {
	ft := NewFrameTimer()

	if ft.Average() != 0 || ft.FPS() != 0 {
		t.Error("empty timer should report zeros")
	}

	for i := 0; i < 5; i++ {
		ft.BeginFrame()
		time.Sleep(time.Millisecond)
		ft.EndFrame()
	}

	if ft.Average() <= 0 {
		t.Error("average should be positive after frames")
	}
	if ft.Max() < ft.Average() {
		t.Error("max frame time below average")
	}
	if ft.FPS() <= 0 {
		t.Error("fps should be positive")
	}
}

func TestFrameTimerWindowWraps(t *testing.T) {
	ft := NewFrameTimer()

	for i := 0; i < frameTimerWindow+10; i++ {
		ft.BeginFrame()
		ft.EndFrame()
	}

	if ft.count != frameTimerWindow {
		t.Errorf("window should cap at %d samples, got %d", frameTimerWindow, ft.count)
	}
}
