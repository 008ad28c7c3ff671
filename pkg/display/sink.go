// Package display implements the external display-sink contract and a
// gocv-backed debug preview window.
package display

import "fmt"

// Sink is the display contract: blit an RGB buffer of size W×H. The pixel
// format is 32bpp XRGB (0x00RRGGBB) or 16bpp RGB565, selected by the
// caller based on stride/width.
type Sink interface {
	Render(buf []byte, stride, width, height int) error
}

// PackXRGB8888 packs an RGB888 pixel into a little-endian 0x00RRGGBB word
// and writes it at buf[offset:offset+4].
func PackXRGB8888(buf []byte, offset int, r, g, b byte) {
	buf[offset+0] = b
	buf[offset+1] = g
	buf[offset+2] = r
	buf[offset+3] = 0
}

// PackRGB565 packs an RGB888 pixel into a little-endian RGB565 word and
// writes it at buf[offset:offset+2].
func PackRGB565(buf []byte, offset int, r, g, b byte) {
	v := (uint16(r&0xF8) << 8) | (uint16(g&0xFC) << 3) | uint16(b>>3)
	buf[offset+0] = byte(v)
	buf[offset+1] = byte(v >> 8)
}

// BytesPerPixel reports 4 for 32bpp XRGB or 2 for 16bpp RGB565, derived
// from stride/width; it returns an error for any other ratio.
func BytesPerPixel(stride, width int) (int, error) {
	if width <= 0 {
		return 0, fmt.Errorf("display: invalid width %d", width)
	}
	switch stride / width {
	case 4:
		return 4, nil
	case 2:
		return 2, nil
	default:
		return 0, fmt.Errorf("display: unsupported stride/width ratio %d", stride/width)
	}
}
