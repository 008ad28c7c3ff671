package handdetector

import (
	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/pixelops"
)

// CalibrateSkin samples the HSV statistics of a region of interest (e.g. the
// user's palm held in a marked box on first run) and retunes the detector's
// skin thresholds to the observed range plus a fixed tolerance margin. It
// returns false if no pixel in the ROI could be sampled.
func (d *Detector) CalibrateSkin(frame *camera.Frame, roiX, roiY, roiW, roiH int) bool {
	if frame == nil || frame.Format != camera.FormatRGB888 {
		return false
	}

	hMin, hMax := 180, 0
	sMin, sMax := 255, 0
	vMin, vMax := 255, 0
	sampled := 0

	var hsv [3]byte
	var rgb [3]byte

	maxY := roiY + roiH
	if maxY > frame.Height {
		maxY = frame.Height
	}
	maxX := roiX + roiW
	if maxX > frame.Width {
		maxX = frame.Width
	}

	for y := roiY; y < maxY; y++ {
		if y < 0 {
			continue
		}
		for x := roiX; x < maxX; x++ {
			if x < 0 {
				continue
			}
			idx := y*frame.Stride + x*3
			if idx+2 >= len(frame.Pixels) {
				continue
			}
			rgb[0], rgb[1], rgb[2] = frame.Pixels[idx], frame.Pixels[idx+1], frame.Pixels[idx+2]
			pixelops.RGBToHSV(rgb[:], hsv[:], 1)

			h, s, v := int(hsv[0]), int(hsv[1]), int(hsv[2])
			if h < hMin {
				hMin = h
			}
			if h > hMax {
				hMax = h
			}
			if s < sMin {
				sMin = s
			}
			if s > sMax {
				sMax = s
			}
			if v < vMin {
				vMin = v
			}
			if v > vMax {
				vMax = v
			}
			sampled++
		}
	}

	if sampled == 0 {
		return false
	}

	d.cfg.HueMin = clampU8(hMin - 10)
	d.cfg.HueMax = clampU8Max(hMax+10, 179)
	d.cfg.SatMin = clampU8(sMin - 30)
	d.cfg.SatMax = clampU8Max(sMax+30, 255)
	d.cfg.ValMin = clampU8(vMin - 30)
	d.cfg.ValMax = clampU8Max(vMax+30, 255)
	return true
}

func clampU8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func clampU8Max(v, max int) byte {
	if v < 0 {
		return 0
	}
	if v > max {
		return byte(max)
	}
	return byte(v)
}
