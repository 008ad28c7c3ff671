// Package production wraps the classical hand detector with temporal
// tracking, adaptive lighting, confidence boosting, and ROI hinting to
// produce a stabilized per-frame detection stream.
package production

import (
	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/lighting"
	"github.com/jarvis-sketch/jarvis/pkg/tracker"
)

// Config tunes the production wrapper's confidence filtering and ROI
// hinting behavior.
type Config struct {
	EnableTracking       bool
	AdaptiveLighting     bool
	EnableROITracking    bool
	FilterLowConfidence  bool
	MinDetectionQuality  float64
	ROIExpansionPixels   int
}

// Default returns the production configuration matching the reference
// implementation's built-in defaults.
func Default() Config {
	return Config{
		EnableTracking:      true,
		AdaptiveLighting:    true,
		EnableROITracking:   true,
		FilterLowConfidence: true,
		MinDetectionQuality: 0.4,
		ROIExpansionPixels:  60,
	}
}

// ROI is a search hint for the next frame's processing region.
type ROI struct {
	X, Y, Width, Height int
	Valid               bool
}

// Detector composes handdetector.Detector, tracker.Tracker, and
// lighting.AdaptiveLighting into a stabilized, confidence-boosted
// production pipeline.
type Detector struct {
	cfg     Config
	base    *handdetector.Detector
	track   *tracker.Tracker
	light   *lighting.AdaptiveLighting
	roi     ROI
	frameNo uint64
}

// New constructs a Detector from its three collaborators. light carries
// the HSV baseline that adaptive retuning always computes from.
func New(cfg Config, base *handdetector.Detector, track *tracker.Tracker, light *lighting.AdaptiveLighting) *Detector {
	return &Detector{cfg: cfg, base: base, track: track, light: light}
}

// ROIHint returns the current search region hint for the next frame.
func (d *Detector) ROIHint() ROI { return d.roi }

func iou(a, b handdetector.BoundingBox) float64 {
	ax1, ay1, ax2, ay2 := a.X, a.Y, a.X+a.Width, a.Y+a.Height
	bx1, by1, bx2, by2 := b.X, b.Y, b.X+b.Width, b.Y+b.Height

	ix1, iy1 := maxInt(ax1, bx1), maxInt(ay1, by1)
	ix2, iy2 := minInt(ax2, bx2), minInt(ay2, by2)
	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := float64(iw * ih)
	union := float64(a.Area()+b.Area()) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Detect runs one production cycle: optional adaptive retune, base
// detection, confidence boosting against live tracks, tracker update,
// gesture/position stabilization, quality filtering, and ROI hint update.
func (d *Detector) Detect(frame *camera.Frame) []handdetector.HandDetection {
	if d.cfg.AdaptiveLighting && d.light != nil && d.frameNo%30 == 0 {
		d.retune(frame)
	}

	detections := d.base.Detect(frame)

	if d.cfg.EnableTracking {
		d.boostConfidence(detections)
	}

	var tracks []*tracker.Track
	if d.cfg.EnableTracking {
		tracks = d.track.Update(detections)
		d.applyStabilization(detections, tracks)
	}

	if d.cfg.FilterLowConfidence {
		detections = d.filterQuality(detections, tracks)
	}

	if frame != nil {
		d.updateROI(detections, frame)
	}

	d.frameNo++
	return detections
}

func (d *Detector) retune(frame *camera.Frame) {
	adj, ok := d.light.Tick(frame)
	if !ok {
		return
	}
	cfg := d.base.Config()
	if adj.ValMinSet {
		cfg.ValMin = adj.ValMin
	}
	if adj.ValMaxSet {
		cfg.ValMax = adj.ValMax
	}
	if adj.SatMinSet {
		cfg.SatMin = adj.SatMin
	}
	if adj.SatMaxSet {
		cfg.SatMax = adj.SatMax
	}
	if adj.HueMaxSet {
		cfg.HueMax = adj.HueMax
	}
	_ = cfg.Validate()
	d.base.SetConfig(cfg)
}

func (d *Detector) boostConfidence(detections []handdetector.HandDetection) {
	tracks := d.track.Tracks()
	if len(tracks) == 0 {
		return
	}
	for i := range detections {
		for _, tr := range tracks {
			if iou(detections[i].BBox, tr.LastDetection.BBox) > 0.3 {
				boost := 1.0 + float64(tr.FramesAlive)*0.02
				if boost > 1.2 {
					boost = 1.2
				}
				conf := detections[i].BBox.Confidence * boost
				if conf > 1 {
					conf = 1
				}
				detections[i].BBox.Confidence = conf
			}
		}
	}
}

func (d *Detector) applyStabilization(detections []handdetector.HandDetection, tracks []*tracker.Track) {
	for i := range detections {
		tr := tracks[i]
		if tr.FramesAlive < 5 || len(tr.GestureHistory) < 3 {
			continue
		}

		stabilized := d.track.StabilizeGesture(tr)
		if stabilized != gesture.Unknown {
			detections[i].Gesture = stabilized

			matches := 0
			for _, g := range tr.GestureHistory {
				if g == stabilized {
					matches++
				}
			}
			stability := float64(matches) / float64(len(tr.GestureHistory))
			detections[i].GestureConfidence = stability * tr.Confidence
		}

		if len(tr.PositionHistory) >= 3 {
			count := len(tr.PositionHistory)
			if count > 5 {
				count = 5
			}
			var sumX, sumY int
			for _, p := range tr.PositionHistory[len(tr.PositionHistory)-count:] {
				sumX += p.X
				sumY += p.Y
			}
			detections[i].Center = handdetector.Point{X: sumX / count, Y: sumY / count}
		}
	}
}

func (d *Detector) filterQuality(detections []handdetector.HandDetection, tracks []*tracker.Track) []handdetector.HandDetection {
	out := detections[:0]
	for i, det := range detections {
		threshold := d.cfg.MinDetectionQuality
		if d.cfg.EnableTracking && i < len(tracks) && tracks[i].FramesAlive > 5 {
			threshold *= 0.7
		}
		if det.BBox.Confidence >= threshold {
			out = append(out, det)
		}
	}
	return out
}

func (d *Detector) updateROI(detections []handdetector.HandDetection, frame *camera.Frame) {
	if d.cfg.EnableROITracking && len(detections) > 0 {
		minX, minY := detections[0].BBox.X, detections[0].BBox.Y
		maxX := detections[0].BBox.X + detections[0].BBox.Width
		maxY := detections[0].BBox.Y + detections[0].BBox.Height
		for _, det := range detections[1:] {
			minX = minInt(minX, det.BBox.X)
			minY = minInt(minY, det.BBox.Y)
			maxX = maxInt(maxX, det.BBox.X+det.BBox.Width)
			maxY = maxInt(maxY, det.BBox.Y+det.BBox.Height)
		}

		exp := d.cfg.ROIExpansionPixels
		for _, tr := range d.track.Tracks() {
			if len(tr.PositionHistory) >= 2 {
				curr := tr.PositionHistory[len(tr.PositionHistory)-1]
				prev := tr.PositionHistory[len(tr.PositionHistory)-2]
				motion := absInt(curr.X-prev.X) + absInt(curr.Y-prev.Y)
				candidate := exp + motion/2
				if candidate > 120 {
					candidate = 120
				}
				exp = maxInt(exp, candidate)
			}
		}

		d.roi.X = maxInt(0, minX-exp)
		d.roi.Y = maxInt(0, minY-exp)
		d.roi.Width = minInt(frame.Width-d.roi.X, maxX-minX+2*exp)
		d.roi.Height = minInt(frame.Height-d.roi.Y, maxY-minY+2*exp)
		d.roi.Valid = true
	} else if len(detections) == 0 && d.roi.Valid {
		exp := 20
		d.roi.X = maxInt(0, d.roi.X-exp)
		d.roi.Y = maxInt(0, d.roi.Y-exp)
		d.roi.Width = minInt(frame.Width-d.roi.X, d.roi.Width+2*exp)
		d.roi.Height = minInt(frame.Height-d.roi.Y, d.roi.Height+2*exp)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
