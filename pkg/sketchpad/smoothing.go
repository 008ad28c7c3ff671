package sketchpad

import "math"

// ewmaSmooth weights history[i] by exp(i/n) — later samples count more, but
// this is not a normalized 0-1 decay.
func ewmaSmooth(history []Point) Point {
	if len(history) == 0 {
		return Point{}
	}
	n := float64(len(history))
	var sumW, sumX, sumY float64
	for i, p := range history {
		w := math.Exp(float64(i) / n)
		sumW += w
		sumX += w * p.X
		sumY += w * p.Y
	}
	if sumW == 0 {
		return history[len(history)-1]
	}
	return Point{X: sumX / sumW, Y: sumY / sumW}
}

// velocity returns the average first-difference over the last min(n,3)
// samples in history.
func velocity(history []Point) Point {
	n := len(history)
	if n < 2 {
		return Point{}
	}
	window := n
	if window > 3 {
		window = 3
	}
	start := n - window
	var sumX, sumY float64
	count := 0
	for i := start + 1; i < n; i++ {
		sumX += history[i].X - history[i-1].X
		sumY += history[i].Y - history[i-1].Y
		count++
	}
	if count == 0 {
		return Point{}
	}
	return Point{X: sumX / float64(count), Y: sumY / float64(count)}
}

// predictiveSmoothDamping is the velocity-extrapolation term's damping
// factor, matching get_predictive_smoothed_position.
const predictiveSmoothDamping = 0.3

// predictiveSmooth extrapolates the EWMA-smoothed position forward by a
// damped estimate of recent velocity.
func predictiveSmooth(history []Point) Point {
	base := ewmaSmooth(history)
	v := velocity(history)
	return Point{
		X: base.X + v.X*predictiveSmoothDamping,
		Y: base.Y + v.Y*predictiveSmoothDamping,
	}
}

// applyJitterFilter rejects sub-threshold movement, returning last instead
// of new when the two are closer than threshold percent apart. It runs on
// every smoothed-position update once a prior smoothed point exists.
func applyJitterFilter(newP, lastP Point, threshold float64) Point {
	if newP.Distance(lastP) < threshold {
		return lastP
	}
	return newP
}
