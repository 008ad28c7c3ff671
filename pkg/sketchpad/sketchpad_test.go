package sketchpad

import (
	"testing"

	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
)

func hand(x, y int, g gesture.Gesture, conf float64) handdetector.HandDetection {
	return handdetector.HandDetection{
		BBox:              handdetector.BoundingBox{X: x - 5, Y: y - 5, Width: 10, Height: 10, Confidence: conf},
		Center:            handdetector.Point{X: x, Y: y},
		Gesture:           g,
		GestureConfidence: conf,
	}
}

func newTestPad(t *testing.T) *SketchPad {
	t.Helper()
	cfg := Default()
	cfg.PersistDir = t.TempDir()
	return New(cfg, "test-sketch", 200, 200)
}

func TestIsDrawingGesture_AcceptsPointingAndPeace(t *testing.T) {
	if !isDrawingGesture(gesture.Pointing) {
		t.Errorf("expected Pointing to count as a drawing gesture")
	}
	if !isDrawingGesture(gesture.Peace) {
		t.Errorf("expected Peace to count as a drawing gesture")
	}
	if isDrawingGesture(gesture.Unknown) {
		t.Errorf("expected Unknown to not count as a drawing gesture")
	}
}

func TestStateMachine_ConfirmsStartAfterStableFrames(t *testing.T) {
	sp := newTestPad(t)
	if sp.State() != WaitingForStart {
		t.Fatalf("expected initial state WaitingForStart, got %v", sp.State())
	}

	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	if sp.State() != WaitingForStart {
		t.Fatalf("expected still WaitingForStart after 1 frame, got %v", sp.State())
	}

	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	if sp.State() != StartConfirmed {
		t.Fatalf("expected StartConfirmed after 2 stable frames, got %v", sp.State())
	}
}

func TestStateMachine_FullStrokeFinalizes(t *testing.T) {
	sp := newTestPad(t)

	for i := 0; i < 2; i++ {
		sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	}
	if sp.State() != StartConfirmed {
		t.Fatalf("setup: expected StartConfirmed, got %v", sp.State())
	}

	// Moving more than 5% of the canvas away from the start point is one of
	// StartConfirmed's three exit conditions into WaitingForEnd.
	sp.Update([]handdetector.HandDetection{hand(150, 150, gesture.Pointing, 0.9)})
	if sp.State() != WaitingForEnd {
		t.Fatalf("expected WaitingForEnd after moving away from start, got %v", sp.State())
	}

	sp.Update([]handdetector.HandDetection{hand(150, 150, gesture.Pointing, 0.9)})
	if !sp.HasPreview() {
		t.Fatalf("expected a preview line while WaitingForEnd")
	}

	finalized := sp.Update([]handdetector.HandDetection{hand(150, 150, gesture.Pointing, 0.9)})
	if !finalized {
		t.Fatalf("expected Update to report a finalized line")
	}
	if got := sp.StrokeCount(); got != 1 {
		t.Fatalf("expected 1 finalized line, got %d", got)
	}
}

func TestStateMachine_StartConfirmedExitsOnOtherGesture(t *testing.T) {
	sp := newTestPad(t)
	for i := 0; i < 2; i++ {
		sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	}
	if sp.State() != StartConfirmed {
		t.Fatalf("setup: expected StartConfirmed, got %v", sp.State())
	}

	// A confident non-drawing gesture exits StartConfirmed immediately, even
	// though the hand hasn't moved.
	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.OpenPalm, 0.9)})
	if sp.State() != WaitingForEnd {
		t.Fatalf("expected WaitingForEnd after a confident non-drawing gesture, got %v", sp.State())
	}
}

func TestStateMachine_StartConfirmedExitsOnHandLoss(t *testing.T) {
	sp := newTestPad(t)
	for i := 0; i < 2; i++ {
		sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	}
	sp.Update(nil)
	if sp.State() != WaitingForEnd {
		t.Fatalf("expected WaitingForEnd after losing the hand, got %v", sp.State())
	}
}

func TestStateMachine_StartConfirmedHoldsWhileStillPointingNearby(t *testing.T) {
	sp := newTestPad(t)
	for i := 0; i < 2; i++ {
		sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	}
	// Still pointing, barely moved: none of the three exit conditions fire.
	sp.Update([]handdetector.HandDetection{hand(21, 20, gesture.Pointing, 0.9)})
	if sp.State() != StartConfirmed {
		t.Fatalf("expected to remain StartConfirmed while pointing stayed near start, got %v", sp.State())
	}
}

func TestStateMachine_LosingGestureResetsConfirmationNotState(t *testing.T) {
	sp := newTestPad(t)
	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	// drop the gesture (open hand / no hand) before the 2nd confirming frame
	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.OpenPalm, 0.9)})
	if sp.State() != WaitingForStart {
		t.Fatalf("expected to remain WaitingForStart, got %v", sp.State())
	}
	sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	if sp.State() != WaitingForStart {
		t.Fatalf("expected confirmation to have restarted, not jumped ahead, got %v", sp.State())
	}
}

func TestStateMachine_TooShortLineIsDiscarded(t *testing.T) {
	sp := newTestPad(t)
	for i := 0; i < 2; i++ {
		sp.Update([]handdetector.HandDetection{hand(20, 20, gesture.Pointing, 0.9)})
	}
	// Losing the hand exits StartConfirmed into WaitingForEnd without moving.
	sp.Update(nil)
	if sp.State() != WaitingForEnd {
		t.Fatalf("setup: expected WaitingForEnd, got %v", sp.State())
	}
	// point again at (almost) the same spot as the start
	sp.Update([]handdetector.HandDetection{hand(21, 20, gesture.Pointing, 0.9)})
	finalized := sp.Update([]handdetector.HandDetection{hand(21, 20, gesture.Pointing, 0.9)})
	if finalized {
		t.Fatalf("expected a sub-threshold-distance stroke to be discarded, not finalized")
	}
	if got := sp.StrokeCount(); got != 0 {
		t.Fatalf("expected 0 finalized lines, got %d", got)
	}
}

func TestAddLine_ManualOverrideBypassesStateMachine(t *testing.T) {
	sp := newTestPad(t)
	ok := sp.AddLine(Point{X: 10, Y: 10}, Point{X: 90, Y: 90})
	if !ok {
		t.Fatalf("expected AddLine to succeed")
	}
	if got := sp.StrokeCount(); got != 1 {
		t.Fatalf("expected 1 line, got %d", got)
	}
}

func TestAddLine_RejectsTooShortLine(t *testing.T) {
	sp := newTestPad(t)
	ok := sp.AddLine(Point{X: 10, Y: 10}, Point{X: 10.05, Y: 10})
	if ok {
		t.Fatalf("expected AddLine to reject a sub-0.1%% line")
	}
}

func TestManualStart_SkipsToWaitingForEnd(t *testing.T) {
	sp := newTestPad(t)
	sp.SetManualStart(Point{X: 30, Y: 30})
	if sp.State() != WaitingForEnd {
		t.Fatalf("expected WaitingForEnd after manual start, got %v", sp.State())
	}
	sp.ClearManualStart()
	if sp.State() != WaitingForStart {
		t.Fatalf("expected WaitingForStart after clearing manual start, got %v", sp.State())
	}
}

func TestClear_ResetsLinesAndState(t *testing.T) {
	sp := newTestPad(t)
	sp.AddLine(Point{X: 0, Y: 0}, Point{X: 50, Y: 50})
	sp.Clear()
	if got := sp.StrokeCount(); got != 0 {
		t.Fatalf("expected 0 lines after Clear, got %d", got)
	}
	if sp.State() != WaitingForStart {
		t.Fatalf("expected WaitingForStart after Clear, got %v", sp.State())
	}
}

func TestGridSnap_ClampsAndRounds(t *testing.T) {
	g := GridConfig{SpacingPercent: 10, Enabled: true, SnapToGrid: true}
	got := g.SnapToGridPoint(Point{X: 104, Y: -3})
	if got.X != 100 {
		t.Errorf("expected X clamped to 100, got %v", got.X)
	}
	if got.Y != 0 {
		t.Errorf("expected Y clamped to 0, got %v", got.Y)
	}
	got2 := g.SnapToGridPoint(Point{X: 23, Y: 27})
	if got2.X != 20 || got2.Y != 30 {
		t.Errorf("expected rounding to nearest 10, got %v", got2)
	}
}

func TestUpdate_AppliesProjectorCalibrationWhenEnabled(t *testing.T) {
	cfg := Default()
	cfg.PersistDir = t.TempDir()
	cfg.EnableProjectorCalibration = true
	sp := New(cfg, "test-sketch", 200, 200)

	// A calibration that maps the whole canvas into its right half.
	cal := sp.Calibration()
	for _, p := range []Point{{X: 50, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 50, Y: 100}} {
		cal.AddCalibrationPoint(p)
	}

	sp.Update([]handdetector.HandDetection{hand(0, 0, gesture.Pointing, 0.9)})
	_, _, ok := sp.PreviewEndpoints()
	if ok {
		t.Fatalf("did not expect a preview yet")
	}
	if sp.lastSmoothed.X < 50 {
		t.Errorf("expected the smoothed position to be transformed into the calibrated right half, got %v", sp.lastSmoothed)
	}
}

func TestSnapshot_IsIndependentOfInternalState(t *testing.T) {
	sp := newTestPad(t)
	sp.AddLine(Point{X: 0, Y: 0}, Point{X: 50, Y: 50})
	snap := sp.Snapshot()
	snap.Lines[0].Color = 0xFF0000
	if sp.Snapshot().Lines[0].Color == 0xFF0000 {
		t.Errorf("expected Snapshot to return an independent copy of Lines")
	}
}
