package sketchpad

// ProjectorCalibration maps camera-space canvas points onto a projected
// surface via a 4-corner correspondence. It is a supplemented feature: the
// core drawing state machine works in canvas percent regardless of whether
// a projector is calibrated, but when it is and
// Config.EnableProjectorCalibration is set, Update applies this transform to
// the smoothed canvas position; Render does not apply it.
//
// computeHomography here mirrors the original's own implementation: it is
// a deliberate placeholder, not a full direct-linear-transform solver. Four
// correspondences are recorded and calibrated flips true, but the transform
// applied is the bilinear interpolation across the recorded quad below
// rather than a true projective homography.
type ProjectorCalibration struct {
	points     [4]Point
	numPoints  int
	calibrated bool
}

// AddCalibrationPoint records one of the four corner correspondences, in
// order: top-left, top-right, bottom-right, bottom-left.
func (c *ProjectorCalibration) AddCalibrationPoint(p Point) bool {
	if c.numPoints >= 4 {
		return false
	}
	c.points[c.numPoints] = p
	c.numPoints++
	if c.numPoints == 4 {
		c.computeHomography()
	}
	return true
}

// Reset clears any recorded calibration points.
func (c *ProjectorCalibration) Reset() {
	c.numPoints = 0
	c.calibrated = false
}

// Calibrated reports whether four correspondence points have been recorded.
func (c *ProjectorCalibration) Calibrated() bool { return c.calibrated }

// computeHomography marks the calibration complete. A true perspective
// solve is not implemented; Transform falls back to bilinear interpolation
// across the recorded quad instead.
func (c *ProjectorCalibration) computeHomography() {
	c.calibrated = true
}

// Transform maps a canvas-percent point through the calibrated quad via
// bilinear interpolation across the four corners. Points are returned
// unchanged when no calibration is present.
func (c *ProjectorCalibration) Transform(p Point) Point {
	if !c.calibrated {
		return p
	}
	u := p.X / 100
	v := p.Y / 100

	tl, tr, br, bl := c.points[0], c.points[1], c.points[2], c.points[3]
	top := Point{X: lerp(tl.X, tr.X, u), Y: lerp(tl.Y, tr.Y, u)}
	bottom := Point{X: lerp(bl.X, br.X, u), Y: lerp(bl.Y, br.Y, u)}
	return Point{X: lerp(top.X, bottom.X, v), Y: lerp(top.Y, bottom.Y, v)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
