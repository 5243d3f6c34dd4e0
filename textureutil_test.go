package vks

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(3, 1, color.NRGBA{B: 255, A: 255})

	path := filepath.Join(t.TempDir(), "texture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	m, err := loadRGBA(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := m.Bounds(); got.Dx() != 4 || got.Dy() != 2 {
		t.Fatalf("bounds = %v, want 4x2", got)
	}
	if len(m.Pix) != 4*2*4 {
		t.Errorf("pixel data is %d bytes, want %d", len(m.Pix), 4*2*4)
	}
	if c := m.RGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("pixel (0,0) = %v, want opaque red", c)
	}
	if c := m.RGBAAt(3, 1); c.B != 255 || c.A != 255 {
		t.Errorf("pixel (3,1) = %v, want opaque blue", c)
	}

	if _, err := loadRGBA(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
