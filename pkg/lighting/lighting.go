// Package lighting adapts skin-detection HSV thresholds to ambient
// brightness and saturation via stratified frame sampling and an
// exponential moving average.
package lighting

import "github.com/jarvis-sketch/jarvis/pkg/camera"

const (
	targetBrightness = 128.0
	regionGrid       = 3
	sampleHalfWindow = 5
	sampleStep       = 2
)

// Baseline holds the unadjusted HSV thresholds that every retune computes
// from, so repeated adaptation never compounds on its own prior output.
type Baseline struct {
	ValMin, SatMin, SatMax byte
	HueMax                 byte
}

// Config tunes the adaptation rate.
type Config struct {
	// AdaptationRate is the EMA smoothing factor applied to brightness.
	AdaptationRate float64
}

// Default returns the lighting configuration matching the reference
// implementation's built-in default.
func Default() Config {
	return Config{AdaptationRate: 0.05}
}

// Adjustment is the set of threshold overrides computed by a retune tick.
// A zero Adjustment (all fields unset) means "no change"; callers should
// start from Baseline and apply only the fields the tick actually touched.
type Adjustment struct {
	ValMin, SatMin, SatMax byte
	HueMax                 byte

	ValMinSet, SatMinSet, SatMaxSet, ValMaxSet, HueMaxSet bool
	ValMax                                                byte
}

// AdaptiveLighting tracks an EMA of observed frame brightness and produces
// periodic threshold Adjustments.
type AdaptiveLighting struct {
	cfg          Config
	base         Baseline
	brightnessEMA float64
	initialized  bool
}

// New constructs an AdaptiveLighting tracker against a fixed baseline.
func New(cfg Config, base Baseline) *AdaptiveLighting {
	return &AdaptiveLighting{cfg: cfg, base: base}
}

// BrightnessEMA returns the current brightness EMA (0-255 luma scale).
func (a *AdaptiveLighting) BrightnessEMA() float64 { return a.brightnessEMA }

// sample is one pixel's derived luma/saturation.
type sample struct {
	luma       float64
	saturation float64
}

func sampleAt(frame *camera.Frame, x, y int) sample {
	if x < 0 {
		x = 0
	}
	if x > frame.Width-1 {
		x = frame.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y > frame.Height-1 {
		y = frame.Height - 1
	}
	idx := y*frame.Stride + x*3
	if idx+2 >= len(frame.Pixels) {
		return sample{}
	}
	r := float64(frame.Pixels[idx])
	g := float64(frame.Pixels[idx+1])
	b := float64(frame.Pixels[idx+2])

	luma := 0.2126*r + 0.7152*g + 0.0722*b

	maxRGB := r
	if g > maxRGB {
		maxRGB = g
	}
	if b > maxRGB {
		maxRGB = b
	}
	minRGB := r
	if g < minRGB {
		minRGB = g
	}
	if b < minRGB {
		minRGB = b
	}
	sat := 0.0
	if maxRGB != 0 {
		sat = (maxRGB - minRGB) / maxRGB * 255.0
	}
	return sample{luma: luma, saturation: sat}
}

// Tick samples frame via a 3×3 stratified grid (an 11×11 window stepped by
// 2 around each region's center), updates the brightness EMA, and returns
// the threshold Adjustment implied by the current brightness band and
// observed saturation. Returns false if frame is not RGB888 or no pixel
// could be sampled.
func (a *AdaptiveLighting) Tick(frame *camera.Frame) (Adjustment, bool) {
	if frame == nil || frame.Format != camera.FormatRGB888 {
		return Adjustment{}, false
	}

	regionW := frame.Width / regionGrid
	regionH := frame.Height / regionGrid

	var brightnessSum, saturationSum float64
	count := 0

	for ry := 0; ry < regionGrid; ry++ {
		for rx := 0; rx < regionGrid; rx++ {
			cx := rx*regionW + regionW/2
			cy := ry*regionH + regionH/2

			for dy := -sampleHalfWindow; dy <= sampleHalfWindow; dy += sampleStep {
				for dx := -sampleHalfWindow; dx <= sampleHalfWindow; dx += sampleStep {
					s := sampleAt(frame, cx+dx, cy+dy)
					brightnessSum += s.luma
					saturationSum += s.saturation
					count++
				}
			}
		}
	}

	if count == 0 {
		return Adjustment{}, false
	}

	currentBrightness := brightnessSum / float64(count)
	currentSaturation := saturationSum / float64(count)

	alpha := a.cfg.AdaptationRate
	if !a.initialized {
		a.brightnessEMA = currentBrightness
		a.initialized = true
	} else {
		a.brightnessEMA = a.brightnessEMA*(1-alpha) + currentBrightness*alpha
	}

	ratio := a.brightnessEMA / targetBrightness

	adj := Adjustment{}
	switch {
	case ratio < 0.50:
		adj.ValMin = clampMin(int(float64(a.base.ValMin)*0.5), 15)
		adj.ValMinSet = true
		adj.SatMin = clampMin(int(float64(a.base.SatMin)*0.65), 10)
		adj.SatMinSet = true
		adj.ValMax = 255
		adj.ValMaxSet = true
	case ratio < 0.75:
		adj.ValMin = clampMin(int(float64(a.base.ValMin)*0.75), 25)
		adj.ValMinSet = true
		adj.SatMin = clampMin(int(float64(a.base.SatMin)*0.85), 15)
		adj.SatMinSet = true
	case ratio > 1.50:
		adj.ValMin = clampMax(int(float64(a.base.ValMin)*1.5), 90)
		adj.ValMinSet = true
		adj.SatMax = clampMax(int(float64(a.base.SatMax)*1.15), 255)
		adj.SatMaxSet = true
		adj.SatMin = clampMin(int(float64(a.base.SatMin)*1.1), 15)
		adj.SatMinSet = true
	case ratio > 1.20:
		adj.ValMin = clampMax(int(float64(a.base.ValMin)*1.2), 70)
		adj.ValMinSet = true
		adj.SatMax = clampMax(int(float64(a.base.SatMax)*1.08), 255)
		adj.SatMaxSet = true
	}

	if currentSaturation < 30.0 {
		widened := int(a.base.HueMax) + 5
		if widened > 35 {
			widened = 35
		}
		adj.HueMax = byte(widened)
		adj.HueMaxSet = true
	}

	return adj, true
}

// clampMin returns max(v, floor) as a byte, the "at least" clamp used by
// the dark-brightness bands.
func clampMin(v, floor int) byte {
	if v < floor {
		v = floor
	}
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return byte(v)
}

// clampMax returns min(v, ceil) as a byte, the "at most" clamp used by the
// bright-brightness bands.
func clampMax(v, ceil int) byte {
	if v > ceil {
		v = ceil
	}
	if v < 0 {
		v = 0
	}
	return byte(v)
}
