package vks

import "testing"

func TestSliceUint32(t *testing.T) {
	data := []byte{0x03, 0x02, 0x23, 0x07, 0x01, 0x00, 0x00, 0x00}

	words := sliceUint32(data)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("word 0 = %#x, want 0x07230203", words[0])
	}
	if words[1] != 1 {
		t.Errorf("word 1 = %#x, want 1", words[1])
	}

	if sliceUint32(nil) != nil {
		t.Error("expected nil for empty input")
	}
	if sliceUint32([]byte{1, 2}) != nil {
		t.Error("expected nil for input shorter than a word")
	}
}

func TestSafeString(t *testing.T) {
	if s := safeString("VK_LAYER_KHRONOS_validation"); s[len(s)-1] != '\x00' {
		t.Error("safeString must NUL terminate")
	}
	if s := safeString("already\x00"); s != "already\x00" {
		t.Errorf("already terminated string changed: %q", s)
	}
	if s := safeString(""); s != "\x00" {
		t.Errorf("empty string should become a lone NUL, got %q", s)
	}
}
