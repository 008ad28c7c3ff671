package pixelops

// Gaussian3x3 applies the 1/16·[[1,2,1],[2,4,2],[1,2,1]] kernel to a packed
// multi-channel image. Only interior pixels are written; the outer ring of
// dst is left as-is.
//
// Requires len(src) == len(dst) == w*h*channels.
func Gaussian3x3(src, dst []byte, w, h, channels int) {
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < channels; c++ {
				sum := 4*int(src[(y*w+x)*channels+c]) +
					2*int(src[(y*w+x-1)*channels+c]) +
					2*int(src[(y*w+x+1)*channels+c]) +
					2*int(src[((y-1)*w+x)*channels+c]) +
					2*int(src[((y+1)*w+x)*channels+c]) +
					int(src[((y-1)*w+x-1)*channels+c]) +
					int(src[((y-1)*w+x+1)*channels+c]) +
					int(src[((y+1)*w+x-1)*channels+c]) +
					int(src[((y+1)*w+x+1)*channels+c])
				dst[(y*w+x)*channels+c] = byte(sum / 16)
			}
		}
	}
}
