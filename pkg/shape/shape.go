// Package shape derives geometric descriptors — bounding boxes, centroids,
// convex hulls, and fingertip candidates — from a contour's point set.
package shape

import (
	"math"
	"sort"

	"github.com/jarvis-sketch/jarvis/pkg/contour"
)

// Point is an integer pixel coordinate.
type Point = contour.Point

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// BoundingBox returns the axis-aligned min/max box enclosing pts.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	box := Box{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < box.MinX {
			box.MinX = p.X
		}
		if p.X > box.MaxX {
			box.MaxX = p.X
		}
		if p.Y < box.MinY {
			box.MinY = p.Y
		}
		if p.Y > box.MaxY {
			box.MaxY = p.Y
		}
	}
	return box
}

// Centroid returns the integer-truncated arithmetic mean of pts.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sumX, sumY int
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
	}
	return Point{X: sumX / len(pts), Y: sumY / len(pts)}
}

func cross(o, a, b Point) int64 {
	dx1 := int64(a.X - o.X)
	dy1 := int64(a.Y - o.Y)
	dx2 := int64(b.X - o.X)
	dy2 := int64(b.Y - o.Y)
	return dx1*dy2 - dy1*dx2
}

// ConvexHull computes the monotone-chain (Andrew's) convex hull of pts.
// Input is deduplicated and lexicographically sorted; the output is CCW and
// omits the duplicate closing vertex. Collinear points are removed via a
// strict cross <= 0 pop condition.
func ConvexHull(pts []Point) []Point {
	if len(pts) < 3 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X == sorted[j].X {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	dedup := sorted[:0:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			dedup = append(dedup, p)
		}
	}
	sorted = dedup
	if len(sorted) < 3 {
		return sorted
	}

	lower := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	lower = lower[:len(lower)-1]
	upper = upper[:len(upper)-1]
	return append(lower, upper...)
}

func dist(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// interiorAngleDeg returns the interior angle in degrees at hull vertex i.
func interiorAngleDeg(hull []Point, i int) float64 {
	n := len(hull)
	prev := hull[(i+n-1)%n]
	next := hull[(i+1)%n]
	cur := hull[i]

	ax, ay := float64(prev.X-cur.X), float64(prev.Y-cur.Y)
	bx, by := float64(next.X-cur.X), float64(next.Y-cur.Y)
	dot := ax*bx + ay*by
	magA := math.Sqrt(ax*ax + ay*ay)
	magB := math.Sqrt(bx*bx + by*by)
	if magA < 1e-3 || magB < 1e-3 {
		return 180.0
	}
	cosang := dot / (magA * magB)
	if cosang > 1 {
		cosang = 1
	} else if cosang < -1 {
		cosang = -1
	}
	return math.Acos(cosang) * 180.0 / math.Pi
}

// fingertipCandidates returns hull vertices that protrude far enough from
// center and have a sufficiently sharp interior angle, sorted by distance
// from center descending, with non-maximum suppression applied and capped
// at 5 results. It also returns maxd and avg for heuristic refinement.
func fingertipCandidates(hull []Point, center Point) (tips []Point, maxd, avg float64) {
	n := len(hull)
	dists := make([]float64, n)
	var sum float64
	for i, p := range hull {
		d := dist(p, center)
		dists[i] = d
		sum += d
		if d > maxd {
			maxd = d
		}
	}
	avg = sum / float64(n)

	threshold := avg + (maxd-avg)*0.35

	type candidate struct {
		p Point
		d float64
	}
	var candidates []candidate
	for i, p := range hull {
		if dists[i] < threshold {
			continue
		}
		if interiorAngleDeg(hull, i) > 85.0 {
			continue
		}
		candidates = append(candidates, candidate{p: p, d: dists[i]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].d > candidates[j].d
	})

	minSep := math.Max(10.0, maxd*0.14)
	for _, c := range candidates {
		close := false
		for _, t := range tips {
			if dist(c.p, t) < minSep {
				close = true
				break
			}
		}
		if !close {
			tips = append(tips, c.p)
		}
		if len(tips) >= 5 {
			break
		}
	}

	return tips, maxd, avg
}

// FingerCount runs the convex hull of contour and applies the spread-ratio
// heuristic refinement to estimate the number of extended fingers.
func FingerCount(pts []Point, center Point) int {
	if len(pts) < 15 {
		return 0
	}
	hull := ConvexHull(pts)
	if len(hull) < 5 {
		return 0
	}

	tips, maxd, avg := fingertipCandidates(hull, center)
	count := len(tips)

	spreadRatio := maxd / math.Max(1.0, avg)
	switch {
	case count <= 2 && spreadRatio > 1.45:
		count = min(5, count+2)
	case count == 3 && spreadRatio > 1.55:
		count = min(5, count+1)
	case count == 4 && spreadRatio > 1.65:
		count = 5
	case count == 0 && spreadRatio < 1.2:
		count = 0
	case count == 1 && spreadRatio > 1.4:
		count = min(5, count+1)
	}

	if count < 0 {
		count = 0
	}
	if count > 5 {
		count = 5
	}
	return count
}


// Fingertips returns the same candidate set as FingerCount, as Points,
// without the count heuristic refinement.
func Fingertips(pts []Point, center Point) []Point {
	if len(pts) < 15 {
		return nil
	}
	hull := ConvexHull(pts)
	if len(hull) < 5 {
		return nil
	}
	tips, _, _ := fingertipCandidates(hull, center)
	return tips
}
