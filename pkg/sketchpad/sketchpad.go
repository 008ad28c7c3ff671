package sketchpad

import (
	"sync"
	"time"

	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
)

const (
	finalizeMinDistancePercent    = 1.0
	addLineMinDistancePercent     = 0.1
	gestureChangeConfidenceFloor  = 0.6
	startMovedAwayDistancePercent = 5.0
)

// SketchPad owns the canvas state: the confirmation-based drawing state
// machine, the persisted line list, and the grid/calibration config. It is
// meant to be driven by exactly one goroutine (the pipeline's draw stage);
// its mutex exists only to let accessor methods be called safely from a
// renderer or HTTP handler on a different goroutine via a snapshot
// interface.
type SketchPad struct {
	mu sync.Mutex

	cfg   Config
	sketch Sketch

	width, height int // detect-stage pixel resolution, for Center conversion

	state         DrawingState
	history       []Point
	lastSmoothed  Point
	haveSmoothed  bool
	confirmFrames int
	confirmAnchor Point

	startPoint Point
	manualStart bool

	gestureChangedSinceStart bool

	positionFilter *positionFilter

	calibration ProjectorCalibration

	lastPersistErr error
}

// New constructs a SketchPad for a canvas of the given detect-stage pixel
// dimensions. name becomes the Sketch's persisted filename stem.
func New(cfg Config, name string, width, height int) *SketchPad {
	return &SketchPad{
		cfg: cfg,
		sketch: Sketch{
			Name:               name,
			Width:              width,
			Height:             height,
			CreatedTimestampMS: time.Now().UnixMilli(),
			Grid:               DefaultGrid(),
		},
		width:          width,
		height:         height,
		state:          WaitingForStart,
		positionFilter: newPositionFilter(cfg.KalmanSmoothFactor),
	}
}

// isDrawingGesture reports whether g should be treated as "drawing active".
// Both Pointing and Peace count, deliberately broader than a
// pointing-only check.
func isDrawingGesture(g gesture.Gesture) bool {
	return g == gesture.Pointing || g == gesture.Peace
}

// primaryHand picks the highest-confidence detection, if any.
func primaryHand(detections []handdetector.HandDetection) (handdetector.HandDetection, bool) {
	best := -1.0
	idx := -1
	for i, h := range detections {
		if h.BBox.Confidence > best {
			best = h.BBox.Confidence
			idx = i
		}
	}
	if idx < 0 {
		return handdetector.HandDetection{}, false
	}
	return detections[idx], true
}

// Update advances the drawing state machine by one frame of detections. It
// returns true if a line was finalized on this call.
func (sp *SketchPad) Update(detections []handdetector.HandDetection) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	// EndConfirmed resolves to its successor immediately, before this frame's
	// work runs, so callers observing State() immediately after the
	// confirming frame still see the transient value for exactly one Update
	// call. StartConfirmed is a genuine held state (see below): it waits for
	// a gesture change, hand loss, or the pointing hand moving away from the
	// start point before advancing.
	switch sp.state {
	case EndConfirmed:
		sp.state = WaitingForStart
	}

	hand, hasHand := primaryHand(detections)
	drawing := hasHand && isDrawingGesture(hand.Gesture)

	var smoothed Point
	if hasHand {
		raw := FromPixels(float64(hand.Center.X), float64(hand.Center.Y), sp.width, sp.height)
		sp.history = append(sp.history, raw)
		if len(sp.history) > sp.cfg.SmoothingWindow {
			sp.history = sp.history[1:]
		}

		if sp.cfg.KalmanSmoothing {
			smoothed = sp.positionFilter.update(raw)
		} else if sp.cfg.PredictiveSmoothing {
			smoothed = predictiveSmooth(sp.history)
		} else {
			smoothed = ewmaSmooth(sp.history)
		}

		if sp.haveSmoothed {
			smoothed = applyJitterFilter(smoothed, sp.lastSmoothed, sp.cfg.JitterThreshold)
		}
		if sp.cfg.EnableProjectorCalibration {
			smoothed = sp.calibration.Transform(smoothed)
		}
		sp.lastSmoothed = smoothed
		sp.haveSmoothed = true
	}

	finalized := false

	switch sp.state {
	case WaitingForStart:
		if sp.manualStart {
			break
		}
		if drawing {
			sp.advanceConfirmation(smoothed)
			if sp.confirmFrames >= sp.cfg.RequiredConfirmationFrames {
				sp.startPoint = sp.confirmAnchor
				sp.state = StartConfirmed
				sp.gestureChangedSinceStart = false
				sp.resetConfirmation()
			}
		} else {
			sp.resetConfirmation()
		}

	case StartConfirmed:
		hasOtherGesture := hasHand && !isDrawingGesture(hand.Gesture) &&
			hand.Gesture != gesture.Unknown && hand.BBox.Confidence > gestureChangeConfidenceFloor
		switch {
		case hasOtherGesture:
			sp.gestureChangedSinceStart = true
			sp.state = WaitingForEnd
			sp.resetConfirmation()
		case drawing:
			if sp.startPoint.Distance(smoothed) > startMovedAwayDistancePercent {
				sp.gestureChangedSinceStart = true
				sp.state = WaitingForEnd
			}
		default:
			if !sp.gestureChangedSinceStart {
				sp.gestureChangedSinceStart = true
				sp.state = WaitingForEnd
				sp.resetConfirmation()
			}
		}

	case WaitingForEnd:
		if !hasHand {
			break
		}
		if drawing {
			sp.advanceConfirmation(smoothed)
			if sp.confirmFrames >= sp.cfg.RequiredConfirmationFrames {
				end := sp.confirmAnchor
				finalized = sp.finalizeLine(sp.startPoint, end)
				sp.state = EndConfirmed
				sp.resetConfirmation()
				sp.manualStart = false
			}
		} else {
			sp.resetConfirmation()
		}
	}

	return finalized
}

func (sp *SketchPad) advanceConfirmation(p Point) {
	if sp.confirmFrames == 0 {
		sp.confirmAnchor = p
		sp.confirmFrames = 1
		return
	}
	if p.Distance(sp.confirmAnchor) <= sp.cfg.PositionTolerancePercent {
		sp.confirmFrames++
		return
	}
	sp.confirmAnchor = p
	sp.confirmFrames = 1
}

func (sp *SketchPad) resetConfirmation() {
	sp.confirmFrames = 0
}

// finalizeLine appends start->end as a Line and auto-persists the sketch,
// discarding (and reporting false for) sub-threshold movement.
func (sp *SketchPad) finalizeLine(start, end Point) bool {
	if start.Distance(end) < finalizeMinDistancePercent {
		return false
	}
	start = sp.sketch.Grid.SnapToGridPoint(start)
	end = sp.sketch.Grid.SnapToGridPoint(end)
	sp.sketch.Lines = append(sp.sketch.Lines, Line{
		Start:       start,
		End:         end,
		Color:       sp.cfg.DefaultColor,
		Thickness:   sp.cfg.DefaultThickness,
		TimestampMS: time.Now().UnixMilli(),
	})
	sp.lastPersistErr = sp.save()
	return true
}

// AddLine appends a manual line directly, bypassing the gesture state
// machine, and auto-persists it. It returns false if the endpoints are too
// close together to form a meaningful stroke.
func (sp *SketchPad) AddLine(start, end Point) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	start = sp.sketch.Grid.SnapToGridPoint(start)
	end = sp.sketch.Grid.SnapToGridPoint(end)
	if start.Distance(end) < addLineMinDistancePercent {
		return false
	}
	sp.sketch.Lines = append(sp.sketch.Lines, Line{
		Start:       start,
		End:         end,
		Color:       sp.cfg.DefaultColor,
		Thickness:   sp.cfg.DefaultThickness,
		TimestampMS: time.Now().UnixMilli(),
	})
	sp.lastPersistErr = sp.save()
	return true
}

// SetManualStart overrides the gesture-confirmed start point with an
// explicit one, skipping straight to WaitingForEnd.
func (sp *SketchPad) SetManualStart(p Point) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.startPoint = sp.sketch.Grid.SnapToGridPoint(p)
	sp.manualStart = true
	sp.state = WaitingForEnd
	sp.resetConfirmation()
}

// ClearManualStart cancels a manual-start override and returns to
// WaitingForStart.
func (sp *SketchPad) ClearManualStart() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.manualStart = false
	sp.state = WaitingForStart
	sp.resetConfirmation()
}

// Clear removes all persisted lines and resets the state machine, without
// touching any file already saved to disk.
func (sp *SketchPad) Clear() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.sketch.Lines = nil
	sp.state = WaitingForStart
	sp.manualStart = false
	sp.gestureChangedSinceStart = false
	sp.resetConfirmation()
	sp.haveSmoothed = false
	sp.history = nil
	sp.positionFilter.reset()
}

// State returns the current drawing state.
func (sp *SketchPad) State() DrawingState {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.state
}

// HasPreview reports whether a preview line (confirmed start, not yet
// finalized) should be rendered.
func (sp *SketchPad) HasPreview() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.state == WaitingForEnd && sp.haveSmoothed
}

// PreviewEndpoints returns the current preview line's start/end, the second
// value false when there is no preview to render.
func (sp *SketchPad) PreviewEndpoints() (start, end Point, ok bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.state != WaitingForEnd || !sp.haveSmoothed {
		return Point{}, Point{}, false
	}
	return sp.startPoint, sp.lastSmoothed, true
}

// ConfirmationProgress returns the current confirmation frame count and the
// required total, for a pulsing end-point indicator.
func (sp *SketchPad) ConfirmationProgress() (current, required int) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.confirmFrames, sp.cfg.RequiredConfirmationFrames
}

// StrokeCount returns the number of finalized lines.
func (sp *SketchPad) StrokeCount() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.sketch.Lines)
}

// TotalPoints returns the number of line endpoints stored (2 per line).
func (sp *SketchPad) TotalPoints() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.sketch.Lines) * 2
}

// Snapshot returns a copy of the current sketch, safe to read concurrently
// with Update.
func (sp *SketchPad) Snapshot() Sketch {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	out := sp.sketch
	out.Lines = append([]Line(nil), sp.sketch.Lines...)
	return out
}

// SetGrid replaces the grid configuration.
func (sp *SketchPad) SetGrid(g GridConfig) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.sketch.Grid = g
}

// Calibration exposes the projector calibration for AddCalibrationPoint/Reset.
func (sp *SketchPad) Calibration() *ProjectorCalibration {
	return &sp.calibration
}

// LastPersistError returns the error from the most recent auto-save
// triggered by finalizing or adding a line, if any.
func (sp *SketchPad) LastPersistError() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.lastPersistErr
}
