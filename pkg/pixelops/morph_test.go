package pixelops

import "testing"

func TestMorphOpenThenClose_RemovesSpeckle(t *testing.T) {
	w, h := 7, 7
	mask := make([]byte, w*h)
	// A single isolated foreground pixel should be removed by the open.
	mask[3*w+3] = 255
	scratch := make([]byte, w*h)
	MorphOpenThenClose(mask, w, h, scratch)
	if mask[3*w+3] != 0 {
		t.Errorf("expected isolated speckle to be removed, got %d", mask[3*w+3])
	}
}

func TestMorphOpenThenClose_KeepsSolidBlock(t *testing.T) {
	w, h := 9, 9
	mask := make([]byte, w*h)
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			mask[y*w+x] = 255
		}
	}
	scratch := make([]byte, w*h)
	MorphOpenThenClose(mask, w, h, scratch)
	if mask[4*w+4] != 255 {
		t.Errorf("expected center of solid block to remain foreground")
	}
}

func TestMorphOpenThenClose_BoundaryUntouched(t *testing.T) {
	w, h := 5, 5
	mask := make([]byte, w*h)
	for i := range mask {
		mask[i] = 255
	}
	orig := make([]byte, w*h)
	copy(orig, mask)
	scratch := make([]byte, w*h)
	MorphOpenThenClose(mask, w, h, scratch)

	for x := 0; x < w; x++ {
		if mask[x] != orig[x] || mask[(h-1)*w+x] != orig[(h-1)*w+x] {
			t.Fatalf("boundary row modified")
		}
	}
	for y := 0; y < h; y++ {
		if mask[y*w] != orig[y*w] || mask[y*w+w-1] != orig[y*w+w-1] {
			t.Fatalf("boundary column modified")
		}
	}
}
