package vks

import (
	"testing"

	"github.com/google/uuid"
)

func TestPhysicalDeviceCacheUUID(t *testing.T) {
	want := uuid.MustParse("7f3c9d2a-5b1e-4c8f-9a6d-0e2b4f718c35")

	var p PhysicalDevice
	copy(p.VKPhysicalDeviceProperties.PipelineCacheUUID[:], want[:])

	if got := p.CacheUUID(); got != want {
		t.Errorf("CacheUUID() = %s, want %s", got, want)
	}
}
