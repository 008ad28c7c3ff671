package sketchpad

import "sync"

// axisFilter is a scalar Kalman filter, one instance per canvas axis: same
// constant-velocity-free measurement model (process noise q, measurement
// noise r derived from a single smoothing factor) used for 2D canvas-percent
// position smoothing instead of 3D landmark space.
type axisFilter struct {
	mu          sync.Mutex
	x, p, q, r  float64
	initialized bool
}

func newAxisFilter(smoothingFactor float64) *axisFilter {
	if smoothingFactor < 0 {
		smoothingFactor = 0
	}
	if smoothingFactor > 1 {
		smoothingFactor = 1
	}
	return &axisFilter{
		p: 1.0,
		q: 0.1,
		r: 1.0 - smoothingFactor*0.9 + 0.1,
	}
}

func (f *axisFilter) update(measurement float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		f.x = measurement
		f.initialized = true
		return measurement
	}

	pPred := f.p + f.q
	k := pPred / (pPred + f.r)
	f.x = f.x + k*(measurement-f.x)
	f.p = (1 - k) * pPred
	return f.x
}

func (f *axisFilter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.p = 1.0
	f.initialized = false
}

// positionFilter smooths a 2D canvas point, one axisFilter per axis. It
// backs the "predictive" position-smoothing mode as an alternative to the
// EWMA+velocity-extrapolation formula in smoothing.go.
type positionFilter struct {
	x, y *axisFilter
}

func newPositionFilter(smoothingFactor float64) *positionFilter {
	return &positionFilter{
		x: newAxisFilter(smoothingFactor),
		y: newAxisFilter(smoothingFactor),
	}
}

func (f *positionFilter) update(p Point) Point {
	return Point{X: f.x.update(p.X), Y: f.y.update(p.Y)}
}

func (f *positionFilter) reset() {
	f.x.reset()
	f.y.reset()
}
