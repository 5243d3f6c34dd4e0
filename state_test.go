package vks

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestResourceStateReadersStack(t *testing.T) {
	var s resourceState

	if reason := s.tryLock(false); reason != "" {
		t.Fatalf("first read refused: %s", reason)
	}
	if reason := s.tryLock(false); reason != "" {
		t.Fatalf("second read refused: %s", reason)
	}

	if reason := s.tryLock(true); reason == "" {
		t.Fatal("write while reads outstanding should be refused")
	}

	s.unlock(false)
	s.unlock(false)

	if reason := s.tryLock(true); reason != "" {
		t.Fatalf("write after reads drained refused: %s", reason)
	}
}

func TestResourceStateWriterExcludes(t *testing.T) {
	var s resourceState

	if reason := s.tryLock(true); reason != "" {
		t.Fatalf("write refused: %s", reason)
	}

	if reason := s.tryLock(false); reason == "" {
		t.Fatal("read during write should be refused")
	}
	if reason := s.tryLock(true); reason == "" {
		t.Fatal("second write should be refused")
	}

	s.unlock(true)

	if reason := s.tryLock(false); reason != "" {
		t.Fatalf("read after write released refused: %s", reason)
	}
}

func TestResourceStateFailedLockLeavesStateUntouched(t *testing.T) {
	var s resourceState

	s.tryLock(false)
	s.tryLock(true) // refused

	s.unlock(false)
	if reason := s.tryLock(true); reason != "" {
		t.Fatalf("state corrupted by refused lock: %s", reason)
	}
}

func TestTrackedLabels(t *testing.T) {
	var b Buffer
	if b.ResourceLabel() != "unnamed resource" {
		t.Errorf("unexpected default label %q", b.ResourceLabel())
	}

	b.SetLabel("vertices")
	if b.ResourceLabel() != "vertices" {
		t.Errorf("unexpected label %q", b.ResourceLabel())
	}
}

func TestImageLayoutTracking(t *testing.T) {
	var img Image
	if img.Layout() != vk.ImageLayoutUndefined {
		t.Error("fresh image should be in undefined layout")
	}

	img.state.setLayout(vk.ImageLayoutGeneral)
	if img.Layout() != vk.ImageLayoutGeneral {
		t.Error("layout update not visible")
	}
}
