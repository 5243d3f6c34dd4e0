package vks

import "testing"

// Pool resources wrap the underlying buffer or image by pointer, so the
// recorder and the queue see the same tracking state whichever handle a
// caller passes around.
func TestPoolResourcesShareTrackingState(t *testing.T) {
	buf := namedBuffer("pooled buffer")
	res := &BufferResource{Buffer: buf}
	if res.resourceState() != buf.resourceState() {
		t.Error("buffer resource does not share the wrapped buffer's state")
	}
	if res.ResourceLabel() != "pooled buffer" {
		t.Errorf("label = %q", res.ResourceLabel())
	}

	img := &Image{}
	img.SetLabel("pooled image")
	ires := &ImageResource{Image: img}
	if ires.resourceState() != img.resourceState() {
		t.Error("image resource does not share the wrapped image's state")
	}
}
