package pixelops

// ResizeNearest resizes a packed multi-channel image by nearest-neighbor
// sampling. Requires len(src) == sw*sh*channels and len(dst) == dw*dh*channels.
func ResizeNearest(src, dst []byte, sw, sh, dw, dh, channels int) {
	for y := 0; y < dh; y++ {
		srcY := y * sh / dh
		if srcY >= sh {
			srcY = sh - 1
		}
		for x := 0; x < dw; x++ {
			srcX := x * sw / dw
			if srcX >= sw {
				srcX = sw - 1
			}
			srcOff := (srcY*sw + srcX) * channels
			dstOff := (y*dw + x) * channels
			copy(dst[dstOff:dstOff+channels], src[srcOff:srcOff+channels])
		}
	}
}

// ResizeBilinear resizes a packed multi-channel image using bilinear
// interpolation with half-pixel-center sampling, matching
// original_source's preprocess-stage resize formula.
func ResizeBilinear(src, dst []byte, sw, sh, dw, dh, channels int) {
	for y := 0; y < dh; y++ {
		srcYF := (float64(y)+0.5)*float64(sh)/float64(dh) - 0.5
		y0 := int(floor(srcYF))
		y1 := y0 + 1
		if y1 > sh-1 {
			y1 = sh - 1
		}
		wy := srcYF - float64(y0)
		if y0 < 0 {
			y0 = 0
		}
		for x := 0; x < dw; x++ {
			srcXF := (float64(x)+0.5)*float64(sw)/float64(dw) - 0.5
			x0 := int(floor(srcXF))
			x1 := x0 + 1
			if x1 > sw-1 {
				x1 = sw - 1
			}
			wx := srcXF - float64(x0)
			if x0 < 0 {
				x0 = 0
			}

			for c := 0; c < channels; c++ {
				v00 := float64(src[(y0*sw+x0)*channels+c])
				v01 := float64(src[(y0*sw+x1)*channels+c])
				v10 := float64(src[(y1*sw+x0)*channels+c])
				v11 := float64(src[(y1*sw+x1)*channels+c])
				v0 := v00*(1-wx) + v01*wx
				v1 := v10*(1-wx) + v11*wx
				dst[(y*dw+x)*channels+c] = clampByte(int(v0*(1-wy) + v1*wy))
			}
		}
	}
}

func floor(x float64) float64 {
	i := float64(int64(x))
	if x < 0 && i != x {
		return i - 1
	}
	return i
}
