package pixelops

import "testing"

func TestRGBToHSV_Gray(t *testing.T) {
	rgb := []byte{128, 128, 128}
	hsv := make([]byte, 3)
	RGBToHSV(rgb, hsv, 1)
	if hsv[0] != 0 {
		t.Errorf("expected H=0 for zero-chroma pixel, got %d", hsv[0])
	}
	if hsv[1] != 0 {
		t.Errorf("expected S=0 for gray pixel, got %d", hsv[1])
	}
	if hsv[2] != 128 {
		t.Errorf("expected V=128, got %d", hsv[2])
	}
}

func TestRGBToHSV_Red(t *testing.T) {
	rgb := []byte{255, 0, 0}
	hsv := make([]byte, 3)
	RGBToHSV(rgb, hsv, 1)
	if hsv[0] != 0 {
		t.Errorf("expected H=0 for pure red, got %d", hsv[0])
	}
	if hsv[1] != 255 {
		t.Errorf("expected S=255, got %d", hsv[1])
	}
	if hsv[2] != 255 {
		t.Errorf("expected V=255, got %d", hsv[2])
	}
}

func TestRGBToHSV_MatchesVectorized(t *testing.T) {
	n := 137 // not a multiple of laneWidth, exercises the remainder path
	rgb := make([]byte, n*3)
	for i := range rgb {
		rgb[i] = byte((i * 37) % 256)
	}
	scalar := make([]byte, n*3)
	vector := make([]byte, n*3)
	RGBToHSV(rgb, scalar, n)
	RGBToHSVVectorized(rgb, vector, n)
	for i := range scalar {
		if scalar[i] != vector[i] {
			t.Fatalf("scalar/vectorized mismatch at %d: %d vs %d", i, scalar[i], vector[i])
		}
	}
}

func TestYUV420ToRGB888_NeutralIsNearGray(t *testing.T) {
	w, h := 4, 2
	yuv := make([]byte, w*h*3/2)
	for i := range yuv {
		yuv[i] = 128
	}
	rgb := make([]byte, 3*w*h)
	YUV420ToRGB888(yuv, rgb, w, h)
	for _, v := range rgb {
		if v < 120 || v > 136 {
			t.Fatalf("expected near-gray output from neutral YUV, got %d", v)
		}
	}
}

func TestRGBToGray(t *testing.T) {
	rgb := []byte{255, 255, 255, 0, 0, 0}
	gray := make([]byte, 2)
	RGBToGray(rgb, gray, 2, 1)
	if gray[0] != 255 {
		t.Errorf("expected white -> 255, got %d", gray[0])
	}
	if gray[1] != 0 {
		t.Errorf("expected black -> 0, got %d", gray[1])
	}
}
