// Package contour extracts 8-connected foreground regions from a binary mask.
package contour

import "sort"

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// minPoints is the smallest region size kept; smaller regions are treated as
// noise and discarded before they reach shape analysis.
const minPoints = 30

// Find runs an 8-connected BFS flood-fill over mask (w×h, values 0 or
// nonzero) and returns one Point slice per connected region, each in BFS
// visitation order. Regions smaller than minPoints are dropped. The result
// is sorted by point count, descending.
func Find(mask []byte, w, h int) [][]Point {
	visited := make([]bool, w*h)
	var regions [][]Point

	queue := make([]Point, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] == 0 || visited[idx] {
				continue
			}

			queue = queue[:0]
			queue = append(queue, Point{X: x, Y: y})
			visited[idx] = true

			region := make([]Point, 0, minPoints)
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				region = append(region, p)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						nidx := ny*w + nx
						if mask[nidx] != 0 && !visited[nidx] {
							visited[nidx] = true
							queue = append(queue, Point{X: nx, Y: ny})
						}
					}
				}
			}

			if len(region) >= minPoints {
				regions = append(regions, region)
			}
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return len(regions[i]) > len(regions[j])
	})

	return regions
}
