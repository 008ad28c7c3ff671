// Package sketchpad implements the gesture-driven drawing surface: a
// percent-coordinate canvas, a confirmation-based state machine that turns
// stabilized hand detections into line segments, anti-aliased rendering,
// and signed, atomically-persisted sketch files.
package sketchpad

import "math"

// Point is a canvas-space coordinate in percent, each axis in [0,100].
// Pixel coordinates never cross the persistence boundary — only Point
// values are stored in a Sketch.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two canvas points, in
// percentage units.
func (p Point) Distance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// FromPixels converts a pixel coordinate to canvas percent given the
// capture-time canvas resolution.
func FromPixels(px, py float64, width, height int) Point {
	return Point{X: px / float64(width) * 100, Y: py / float64(height) * 100}
}

// ToPixels converts a canvas percent coordinate back to pixel space.
func (p Point) ToPixels(width, height int) (float64, float64) {
	return p.X / 100 * float64(width), p.Y / 100 * float64(height)
}

// Midpoint returns the canvas-percent point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return Point{X: (p.X + o.X) / 2, Y: (p.Y + o.Y) / 2}
}

// Line is a persisted stroke: two canvas-percent endpoints, an ARGB color,
// integer thickness, and a creation timestamp.
type Line struct {
	Start, End  Point
	Color       uint32
	Thickness   int
	TimestampMS int64
}

// RealLength converts the line's percent-space length to the grid's
// real-world units, using grid_spacing_percent as the ruler unit.
func (l Line) RealLength(grid GridConfig) float64 {
	if grid.SpacingPercent <= 0 {
		return 0
	}
	return l.Start.Distance(l.End) / grid.SpacingPercent * grid.RealWorldSpacingCM
}

// GridConfig controls the optional reference grid overlay and snap-to-grid
// behavior.
type GridConfig struct {
	SpacingPercent      float64
	RealWorldSpacingCM  float64
	SnapToGrid          bool
	ShowMeasurements    bool
	Enabled             bool
	Color               uint32
}

// DefaultGrid returns a disabled 10%-spacing grid.
func DefaultGrid() GridConfig {
	return GridConfig{
		SpacingPercent:     10,
		RealWorldSpacingCM: 30,
		SnapToGrid:         false,
		ShowMeasurements:   false,
		Enabled:            false,
		Color:              0x00404040,
	}
}

// SnapToGridPoint rounds p to the nearest grid intersection when the grid is
// enabled and snapping is requested, clamped to [0,100].
func (g GridConfig) SnapToGridPoint(p Point) Point {
	if !g.Enabled || !g.SnapToGrid || g.SpacingPercent <= 0 {
		return p
	}
	snap := func(v float64) float64 {
		v = math.Round(v/g.SpacingPercent) * g.SpacingPercent
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		return v
	}
	return Point{X: snap(p.X), Y: snap(p.Y)}
}

// Sketch is a complete drawing: metadata, the persisted line list, and its
// grid configuration.
type Sketch struct {
	Name               string
	Width, Height      int
	CreatedTimestampMS int64
	Lines              []Line
	Grid               GridConfig
}

// DrawingState is the four-state gesture-confirmation state machine.
type DrawingState int

const (
	WaitingForStart DrawingState = iota
	StartConfirmed
	WaitingForEnd
	EndConfirmed
)

func (s DrawingState) String() string {
	switch s {
	case WaitingForStart:
		return "waiting_for_start"
	case StartConfirmed:
		return "start_confirmed"
	case WaitingForEnd:
		return "waiting_for_end"
	case EndConfirmed:
		return "end_confirmed"
	default:
		return "unknown"
	}
}
