// Package tracker associates per-frame hand detections into persistent
// tracks across frames via greedy IoU matching, and stabilizes each track's
// gesture using weighted-recency voting.
package tracker

import (
	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
)

// Config tunes track association, history windows, and pruning.
type Config struct {
	IoUThreshold float64

	// MaxFramesLost is the frames_lost count beyond which a track is pruned.
	MaxFramesLost int

	// GestureWindow bounds the gesture-history ring per track.
	GestureWindow int
	// PositionWindow bounds the center-history ring per track.
	PositionWindow int

	// StabilizationThreshold is the minimum score/total ratio required to
	// emit a stabilized gesture instead of Unknown.
	StabilizationThreshold float64
}

// Default returns the tracker configuration matching the reference
// implementation's built-in defaults.
func Default() Config {
	return Config{
		IoUThreshold:           0.3,
		MaxFramesLost:          30,
		GestureWindow:          7,
		PositionWindow:         5,
		StabilizationThreshold: 0.6,
	}
}

// Track is one persistently-identified hand across frames.
type Track struct {
	ID int

	LastDetection handdetector.HandDetection
	LastPosition  handdetector.Point
	Velocity      handdetector.Point

	FramesAlive int
	FramesLost  int

	GestureHistory  []gesture.Gesture
	PositionHistory []handdetector.Point

	Confidence float64
}

// Tracker maintains the set of live tracks and assigns monotonically
// increasing ids; ids are never reused within a Tracker's lifetime.
type Tracker struct {
	cfg Config

	tracks    []*Track
	nextID    int
}

// New constructs a Tracker with the given configuration.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// Tracks returns the current set of live tracks, most-recently-updated
// order not guaranteed.
func (t *Tracker) Tracks() []*Track {
	out := make([]*Track, len(t.tracks))
	copy(out, t.tracks)
	return out
}

// iou computes the intersection-over-union of two pixel-space bounding
// boxes. IoU(a,a) = 1; IoU of disjoint boxes = 0.
func iou(a, b handdetector.BoundingBox) float64 {
	ax1, ay1 := a.X, a.Y
	ax2, ay2 := a.X+a.Width, a.Y+a.Height
	bx1, by1 := b.X, b.Y
	bx2, by2 := b.X+b.Width, b.Y+b.Height

	ix1, iy1 := max(ax1, bx1), max(ay1, by1)
	ix2, iy2 := min(ax2, bx2), min(ay2, by2)

	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	interArea := float64(iw * ih)
	unionArea := float64(a.Area()+b.Area()) - interArea
	if unionArea <= 0 {
		return 0
	}
	return interArea / unionArea
}

// Update runs one association cycle: every track is marked unseen, then
// matched greedily against the highest-IoU detection above threshold (no
// track matched twice), updated on match, and tracks left unmatched are
// aged. Unmatched detections spawn fresh tracks. Lost tracks beyond
// MaxFramesLost are pruned. The returned slice mirrors detections,
// association order, one Track pointer per detection.
func (t *Tracker) Update(detections []handdetector.HandDetection) []*Track {
	for _, tr := range t.tracks {
		tr.FramesLost++
	}

	trackMatched := make([]bool, len(t.tracks))
	matchedTrack := make([]*Track, len(detections))

	for i, det := range detections {
		bestIoU := 0.0
		bestIdx := -1
		for j, tr := range t.tracks {
			if trackMatched[j] {
				continue
			}
			v := iou(det.BBox, tr.LastDetection.BBox)
			if v > t.cfg.IoUThreshold && v > bestIoU {
				bestIoU = v
				bestIdx = j
			}
		}

		if bestIdx >= 0 {
			tr := t.tracks[bestIdx]
			t.applyMatch(tr, det)
			trackMatched[bestIdx] = true
			matchedTrack[i] = tr
		} else {
			tr := t.newTrack(det)
			t.tracks = append(t.tracks, tr)
			matchedTrack[i] = tr
		}
	}

	t.prune()
	return matchedTrack
}

func (t *Tracker) applyMatch(tr *Track, det handdetector.HandDetection) {
	prevPos := tr.LastPosition
	tr.LastDetection = det
	tr.LastPosition = det.Center
	tr.Velocity = handdetector.Point{X: det.Center.X - prevPos.X, Y: det.Center.Y - prevPos.Y}
	tr.FramesAlive++
	tr.FramesLost = 0

	tr.GestureHistory = append(tr.GestureHistory, det.Gesture)
	if len(tr.GestureHistory) > t.cfg.GestureWindow {
		tr.GestureHistory = tr.GestureHistory[1:]
	}
	tr.PositionHistory = append(tr.PositionHistory, det.Center)
	if len(tr.PositionHistory) > t.cfg.PositionWindow {
		tr.PositionHistory = tr.PositionHistory[1:]
	}

	tr.Confidence = 0.9*tr.Confidence + 0.1*det.BBox.Confidence
	if tr.Confidence > 1 {
		tr.Confidence = 1
	}
}

func (t *Tracker) newTrack(det handdetector.HandDetection) *Track {
	id := t.nextID
	t.nextID++
	return &Track{
		ID:              id,
		LastDetection:   det,
		LastPosition:    det.Center,
		FramesAlive:     1,
		GestureHistory:  []gesture.Gesture{det.Gesture},
		PositionHistory: []handdetector.Point{det.Center},
		Confidence:      det.BBox.Confidence,
	}
}

func (t *Tracker) prune() {
	kept := t.tracks[:0]
	for _, tr := range t.tracks {
		if tr.FramesLost <= t.cfg.MaxFramesLost {
			kept = append(kept, tr)
		}
	}
	t.tracks = kept
}

// canonicalGesture maps an extended-finger count to the gesture it
// unambiguously implies, or gesture.Unknown if the count is ambiguous.
func canonicalGesture(numFingers int) gesture.Gesture {
	switch numFingers {
	case 0:
		return gesture.Fist
	case 1:
		return gesture.Pointing
	case 2:
		return gesture.Peace
	case 5:
		return gesture.OpenPalm
	default:
		return gesture.Unknown
	}
}

// StabilizeGesture implements weighted-recency voting: history index i gets
// weight 0.5+0.5*(i/len), the modal gesture by summed weight wins ties by
// tag order, a lowered threshold
// applies to {Pointing, Fist, OpenPalm}, and a finger-count-implied
// canonical gesture can override a near-miss via hysteresis.
func (t *Tracker) StabilizeGesture(tr *Track) gesture.Gesture {
	hist := tr.GestureHistory
	if len(hist) == 0 {
		return gesture.Unknown
	}

	var scores [8]float64
	var total float64
	n := len(hist)
	for i, g := range hist {
		recency := float64(i) / float64(n)
		weight := 0.5 + recency*0.5
		scores[int(g)] += weight
		total += weight
	}

	best := gesture.Unknown
	bestScore := 0.0
	for i, s := range scores {
		if s > bestScore {
			bestScore = s
			best = gesture.Gesture(i)
		}
	}

	confidence := bestScore / total
	threshold := t.cfg.StabilizationThreshold
	if best == gesture.Pointing || best == gesture.Fist || best == gesture.OpenPalm {
		threshold *= 0.85
	}

	if confidence < threshold {
		return gesture.Unknown
	}

	expected := canonicalGesture(tr.LastDetection.NumFingers)
	if expected != gesture.Unknown && best != expected {
		if confidence > threshold*0.75 {
			best = expected
		}
	}

	return best
}
