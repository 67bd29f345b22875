package system

import (
	"image"
	"testing"
)

func TestGetImageSize(t *testing.T) {
	rect := image.Rect(0, 0, 64, 48)
	img := GetImage(rect)
	if img.Rect != rect {
		t.Fatalf("GetImage returned %v, want %v", img.Rect, rect)
	}
	PutImage(img)
}

func TestReusedBufferIsCleared(t *testing.T) {
	rect := image.Rect(0, 0, 16, 16)

	img := GetImage(rect)
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	PutImage(img)

	// The pool may or may not hand the same buffer back; either way the
	// pixels must be zero.
	img = GetImage(rect)
	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("pixel byte %d not cleared: %#x", i, b)
		}
	}
	PutImage(img)
}

func TestPutNil(t *testing.T) {
	PutImage(nil) // must not panic
}
