package sketchpad

import (
	"math"

	"github.com/jarvis-sketch/jarvis/pkg/display"
)

const (
	startIndicatorRadius    = 6
	endIndicatorRadius      = 4
	dotIndicatorRadius      = 4
	measurementMarkerRadius = 3
)

var (
	colorWhite       = rgb{255, 255, 255}
	colorStartGreen  = rgb{0, 220, 0}
	colorMeasureMark = rgb{255, 255, 0}
)

type rgb struct{ r, g, b byte }

// Render draws the grid (if enabled), every persisted line, and the current
// preview line into buf, in layering order: grid, then persisted strokes
// (Bresenham, with endpoint dots and optional measurement markers), then the
// live preview (anti-aliased when configured, else Bresenham), with a green
// start indicator and a pulsing end indicator while WaitingForEnd.
func (sp *SketchPad) Render(buf []byte, stride, width, height int) error {
	bpp, err := display.BytesPerPixel(stride, width)
	if err != nil {
		return err
	}

	sp.mu.Lock()
	grid := sp.sketch.Grid
	lines := append([]Line(nil), sp.sketch.Lines...)
	state := sp.state
	startPoint := sp.startPoint
	previewEnd := sp.lastSmoothed
	havePreview := sp.state == WaitingForEnd && sp.haveSmoothed
	confirmFrames, required := sp.confirmFrames, sp.cfg.RequiredConfirmationFrames
	aa := sp.cfg.AntiAliasing && sp.cfg.SubpixelRendering
	sp.mu.Unlock()

	if grid.Enabled {
		renderGrid(buf, stride, width, height, bpp, grid)
	}

	for _, l := range lines {
		x0, y0 := l.Start.ToPixels(width, height)
		x1, y1 := l.End.ToPixels(width, height)
		c := unpackColor(l.Color)
		drawBresenhamLine(buf, stride, width, height, bpp, int(x0), int(y0), int(x1), int(y1), c, l.Thickness)
		drawDot(buf, stride, width, height, bpp, x0, y0, dotIndicatorRadius, colorWhite)
		drawDot(buf, stride, width, height, bpp, x1, y1, dotIndicatorRadius, colorWhite)
		if grid.ShowMeasurements {
			mx, my := l.Start.Midpoint(l.End).ToPixels(width, height)
			drawSquareMarker(buf, stride, width, height, bpp, mx, my, measurementMarkerRadius, colorMeasureMark)
		}
	}

	if !havePreview {
		return nil
	}

	sx, sy := startPoint.ToPixels(width, height)
	ex, ey := previewEnd.ToPixels(width, height)
	previewColor := unpackColor(sp.defaultColorSnapshot())

	if aa {
		drawAALine(buf, stride, width, height, bpp, sx, sy, ex, ey, previewColor, sp.defaultThicknessSnapshot())
	} else {
		drawBresenhamLine(buf, stride, width, height, bpp, int(sx), int(sy), int(ex), int(ey), previewColor, sp.defaultThicknessSnapshot())
	}

	drawDot(buf, stride, width, height, bpp, sx, sy, startIndicatorRadius, colorStartGreen)

	if state == WaitingForEnd && required > 0 {
		intensity := byte(128 + 127*confirmFrames/required)
		if intensity > 255 {
			intensity = 255
		}
		drawDot(buf, stride, width, height, bpp, ex, ey, endIndicatorRadius, rgb{intensity, intensity, 255})
	}
	return nil
}

func (sp *SketchPad) defaultColorSnapshot() uint32 {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.cfg.DefaultColor
}

func (sp *SketchPad) defaultThicknessSnapshot() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.cfg.DefaultThickness
}

func unpackColor(c uint32) rgb {
	return rgb{byte(c >> 16), byte(c >> 8), byte(c)}
}

func renderGrid(buf []byte, stride, width, height, bpp int, g GridConfig) {
	if g.SpacingPercent <= 0 {
		return
	}
	c := unpackColor(g.Color)
	for pct := 0.0; pct <= 100.0; pct += g.SpacingPercent {
		x := int(pct / 100 * float64(width))
		for y := 0; y < height; y++ {
			writePixel(buf, stride, width, height, bpp, x, y, c)
		}
		y := int(pct / 100 * float64(height))
		for x := 0; x < width; x++ {
			writePixel(buf, stride, width, height, bpp, x, y, c)
		}
	}
}

func drawDot(buf []byte, stride, width, height, bpp int, cx, cy float64, radius int, c rgb) {
	x0, y0 := int(cx), int(cy)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				writePixel(buf, stride, width, height, bpp, x0+dx, y0+dy, c)
			}
		}
	}
}

// drawSquareMarker fills a (2*radius+1)^2 square, unlike drawDot's circular
// mask — it marks a measured line's midpoint, the way a grid's measurement
// overlay calls out a labeled distance.
func drawSquareMarker(buf []byte, stride, width, height, bpp int, cx, cy float64, radius int, c rgb) {
	x0, y0 := int(cx), int(cy)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			writePixel(buf, stride, width, height, bpp, x0+dx, y0+dy, c)
		}
	}
}

// drawBresenhamLine plots an integer line, extended to the requested
// thickness by offsetting copies of the 1px line perpendicular to its
// direction — used for all persisted lines (robust, not antialiased) and as
// the preview-line fallback when antialiasing is disabled.
func drawBresenhamLine(buf []byte, stride, width, height, bpp int, x0, y0, x1, y1 int, c rgb, thickness int) {
	dx := x1 - x0
	dy := y1 - y0
	length := math.Hypot(float64(dx), float64(dy))
	var perpX, perpY float64
	if length > 0 {
		perpX = -float64(dy) / length
		perpY = float64(dx) / length
	}

	plot := func(x, y int) {
		if thickness <= 1 {
			writePixel(buf, stride, width, height, bpp, x, y, c)
			return
		}
		half := thickness / 2
		for t := -half; t <= half; t++ {
			px := x + int(math.Round(perpX*float64(t)))
			py := y + int(math.Round(perpY*float64(t)))
			writePixel(buf, stride, width, height, bpp, px, py, c)
		}
	}

	absDx, absDy := abs(dx), abs(dy)
	steep := absDy > absDx
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	dx = x1 - x0
	dy = y1 - y0
	yStep := 1
	if dy < 0 {
		yStep = -1
		dy = -dy
	}
	errAcc := dx / 2
	y := y0
	for x := x0; x <= x1; x++ {
		if steep {
			plot(y, x)
		} else {
			plot(x, y)
		}
		errAcc -= dy
		if errAcc < 0 {
			y += yStep
			errAcc += dx
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawAALine is Xiaolin Wu's antialiased line algorithm with a thickness
// extension.
func drawAALine(buf []byte, stride, width, height, bpp int, x0, y0, x1, y1 float64, c rgb, thickness int) {
	ipart := func(v float64) float64 { return math.Floor(v) }
	fpart := func(v float64) float64 { return v - math.Floor(v) }
	rfpart := func(v float64) float64 { return 1 - fpart(v) }

	steep := math.Abs(y1-y0) > math.Abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	dy := y1 - y0
	var gradient float64
	if dx == 0 {
		gradient = 1
	} else {
		gradient = dy / dx
	}

	half := float64(thickness) / 2

	plotAA := func(x, y float64, alpha float64) {
		if steep {
			plotThick(buf, stride, width, height, bpp, y, x, c, alpha, half)
		} else {
			plotThick(buf, stride, width, height, bpp, x, y, c, alpha, half)
		}
	}

	xEnd := math.Round(x0)
	yEnd := y0 + gradient*(xEnd-x0)
	xGap := rfpart(x0 + 0.5)
	xpxl1 := xEnd
	ypxl1 := ipart(yEnd)
	plotAA(xpxl1, ypxl1, rfpart(yEnd)*xGap)
	plotAA(xpxl1, ypxl1+1, fpart(yEnd)*xGap)
	interY := yEnd + gradient

	xEnd = math.Round(x1)
	yEnd = y1 + gradient*(xEnd-x1)
	xGap = fpart(x1 + 0.5)
	xpxl2 := xEnd
	ypxl2 := ipart(yEnd)
	plotAA(xpxl2, ypxl2, rfpart(yEnd)*xGap)
	plotAA(xpxl2, ypxl2+1, fpart(yEnd)*xGap)

	for x := xpxl1 + 1; x <= xpxl2-1; x++ {
		plotAA(x, ipart(interY), rfpart(interY))
		plotAA(x, ipart(interY)+1, fpart(interY))
		interY += gradient
	}
}

// plotThick blends c into the pixel at (x,y) with the given alpha, and
// replicates the blend across a perpendicular band [-half,half] to realize
// line thickness.
func plotThick(buf []byte, stride, width, height, bpp int, x, y float64, c rgb, alpha, half float64) {
	if half <= 0.5 {
		blendPixel(buf, stride, width, height, bpp, int(x), int(y), c, alpha)
		return
	}
	for t := -half; t <= half; t++ {
		blendPixel(buf, stride, width, height, bpp, int(x), int(y+t), c, alpha)
	}
}

func blendPixel(buf []byte, stride, width, height, bpp int, x, y int, c rgb, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	bg, ok := readPixel(buf, stride, width, height, bpp, x, y)
	if !ok {
		return
	}
	blended := rgb{
		r: blendChannel(bg.r, c.r, alpha),
		g: blendChannel(bg.g, c.g, alpha),
		b: blendChannel(bg.b, c.b, alpha),
	}
	writePixel(buf, stride, width, height, bpp, x, y, blended)
}

func blendChannel(bg, fg byte, alpha float64) byte {
	v := float64(bg)*(1-alpha) + float64(fg)*alpha
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

func offset(stride, bpp, x, y int) int { return y*stride + x*bpp }

func inBounds(width, height, x, y int) bool {
	return x >= 0 && y >= 0 && x < width && y < height
}

func writePixel(buf []byte, stride, width, height, bpp, x, y int, c rgb) {
	if !inBounds(width, height, x, y) {
		return
	}
	off := offset(stride, bpp, x, y)
	if off+bpp > len(buf) {
		return
	}
	switch bpp {
	case 4:
		display.PackXRGB8888(buf, off, c.r, c.g, c.b)
	case 2:
		display.PackRGB565(buf, off, c.r, c.g, c.b)
	default:
		buf[off] = grayscale(c)
	}
}

func readPixel(buf []byte, stride, width, height, bpp, x, y int) (rgb, bool) {
	if !inBounds(width, height, x, y) {
		return rgb{}, false
	}
	off := offset(stride, bpp, x, y)
	if off+bpp > len(buf) {
		return rgb{}, false
	}
	switch bpp {
	case 4:
		return rgb{r: buf[off+2], g: buf[off+1], b: buf[off+0]}, true
	case 2:
		v := uint16(buf[off]) | uint16(buf[off+1])<<8
		r := byte((v >> 8) & 0xF8)
		g := byte((v >> 3) & 0xFC)
		b := byte((v << 3) & 0xF8)
		return rgb{r: r, g: g, b: b}, true
	default:
		v := buf[off]
		return rgb{v, v, v}, true
	}
}

func grayscale(c rgb) byte {
	return byte((int(c.r) + int(c.g) + int(c.b)) / 3)
}
