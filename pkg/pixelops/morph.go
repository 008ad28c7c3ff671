package pixelops

// MorphOpenThenClose applies a 3×3-box morphological open (erode then
// dilate) followed by a close (dilate then erode) to a binary mask in
// place, using scratch as temporary storage. Boundary pixels (the outer
// ring) are left untouched.
//
// Requires len(mask) == w*h and len(scratch) == w*h.
func MorphOpenThenClose(mask []byte, w, h int, scratch []byte) {
	erode3x3(mask, scratch, w, h)
	dilate3x3(scratch, mask, w, h)
	dilate3x3(mask, scratch, w, h)
	erode3x3(scratch, mask, w, h)
}

func erode3x3(src, dst []byte, w, h int) {
	copy(dst, src)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			idx := y*w + x
			v := byte(255)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if src[(y+dy)*w+(x+dx)] == 0 {
						v = 0
					}
				}
			}
			dst[idx] = v
		}
	}
}

func dilate3x3(src, dst []byte, w, h int) {
	copy(dst, src)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			idx := y*w + x
			v := byte(0)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if src[(y+dy)*w+(x+dx)] != 0 {
						v = 255
					}
				}
			}
			dst[idx] = v
		}
	}
}
