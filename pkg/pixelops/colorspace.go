// Package pixelops implements pixel-count-indexed colorspace conversion,
// resizing, filtering, and skin-color masking over flat byte buffers. Every
// operation here takes pre-sized destination buffers; none allocates beyond
// an optional scratch argument.
package pixelops

// YUV420ToRGB888 converts a planar YUV420 buffer to packed RGB888 using the
// BT.601 coefficients, clamping each channel to [0,255].
//
// Requires len(yuv) == w*h*3/2 and len(rgb) == 3*w*h.
func YUV420ToRGB888(yuv, rgb []byte, w, h int) {
	ySize := w * h
	uSize := ySize / 4
	yPlane := yuv[:ySize]
	uPlane := yuv[ySize : ySize+uSize]
	vPlane := yuv[ySize+uSize : ySize+2*uSize]

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			yIdx := row*w + col
			uvRow := row / 2
			uvCol := col / 2
			uvIdx := uvRow*(w/2) + uvCol

			Y := int(yPlane[yIdx]) - 16
			U := int(uPlane[uvIdx]) - 128
			V := int(vPlane[uvIdx]) - 128

			r := (298*Y + 409*V + 128) >> 8
			g := (298*Y - 100*U - 208*V + 128) >> 8
			b := (298*Y + 516*U + 128) >> 8

			off := yIdx * 3
			rgb[off+0] = clampByte(r)
			rgb[off+1] = clampByte(g)
			rgb[off+2] = clampByte(b)
		}
	}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// RGBToHSV converts packed RGB888 to packed HSV using the OpenCV convention:
// H in [0,179] (degrees/2), S and V in [0,255]. A zero-chroma pixel (pure
// gray) emits H=0.
//
// Requires len(rgb) == 3*n and len(hsv) == 3*n.
func RGBToHSV(rgb, hsv []byte, n int) {
	for i := 0; i < n; i++ {
		off := i * 3
		r, g, b := rgb[off], rgb[off+1], rgb[off+2]
		h, s, v := rgbToHSVPixel(r, g, b)
		hsv[off+0] = h
		hsv[off+1] = s
		hsv[off+2] = v
	}
}

func rgbToHSVPixel(r, g, b byte) (h, s, v byte) {
	maxc := max3(r, g, b)
	minc := min3(r, g, b)
	chroma := int(maxc) - int(minc)

	v = maxc
	if maxc == 0 {
		return 0, 0, 0
	}
	s = byte((chroma * 255) / int(maxc))
	if chroma == 0 {
		return 0, s, v
	}

	var hf float64
	rf, gf, bf := float64(r), float64(g), float64(b)
	cf := float64(chroma)
	switch maxc {
	case r:
		hf = 60 * modf((gf-bf)/cf, 6)
	case g:
		hf = 60 * ((bf-rf)/cf + 2)
	default:
		hf = 60 * ((rf-gf)/cf + 4)
	}
	if hf < 0 {
		hf += 360
	}
	// OpenCV convention: H in [0,179] (degrees halved).
	hv := int(hf/2.0 + 0.5)
	if hv > 179 {
		hv = 179
	}
	if hv < 0 {
		hv = 0
	}
	h = byte(hv)
	return h, s, v
}

func modf(x float64, m float64) float64 {
	r := x
	for r < 0 {
		r += m
	}
	for r >= m {
		r -= m
	}
	return r
}

func max3(a, b, c byte) byte {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c byte) byte {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// RGBToGray converts packed RGB888 to single-channel gray using the
// ITU-R BT.601 luma coefficients.
//
// Requires len(rgb) == 3*w*h and len(gray) == w*h.
func RGBToGray(rgb, gray []byte, w, h int) {
	n := w * h
	for i := 0; i < n; i++ {
		off := i * 3
		r, g, b := float64(rgb[off]), float64(rgb[off+1]), float64(rgb[off+2])
		gray[i] = clampByte(int(0.299*r+0.587*g+0.114*b + 0.5))
	}
}
