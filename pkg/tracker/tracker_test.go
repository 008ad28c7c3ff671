package tracker

import (
	"testing"

	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
)

func detAt(x, y, w, h int, conf float64) handdetector.HandDetection {
	return handdetector.HandDetection{
		BBox:   handdetector.BoundingBox{X: x, Y: y, Width: w, Height: h, Confidence: conf},
		Center: handdetector.Point{X: x + w/2, Y: y + h/2},
	}
}

func TestIoU_SelfIsOne(t *testing.T) {
	a := handdetector.BoundingBox{X: 10, Y: 10, Width: 20, Height: 20}
	if v := iou(a, a); v != 1 {
		t.Errorf("expected IoU(a,a)=1, got %f", v)
	}
}

func TestIoU_DisjointIsZero(t *testing.T) {
	a := handdetector.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	b := handdetector.BoundingBox{X: 100, Y: 100, Width: 10, Height: 10}
	if v := iou(a, b); v != 0 {
		t.Errorf("expected IoU=0 for disjoint boxes, got %f", v)
	}
}

func TestIoU_InRange(t *testing.T) {
	a := handdetector.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	b := handdetector.BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}
	v := iou(a, b)
	if v < 0 || v > 1 {
		t.Fatalf("IoU out of [0,1]: %f", v)
	}
}

func TestUpdate_TrackIDContinuity(t *testing.T) {
	tr := New(Default())

	a := detAt(0, 0, 100, 100, 0.8)
	tracks1 := tr.Update([]handdetector.HandDetection{a})
	if tracks1[0].ID != 0 {
		t.Fatalf("expected first track id 0, got %d", tracks1[0].ID)
	}

	// A' is A shifted by (10,10): IoU = 8100/11900, about 0.68.
	aPrime := detAt(10, 10, 100, 100, 0.8)
	disjoint := detAt(500, 500, 50, 50, 0.8)

	tracks2 := tr.Update([]handdetector.HandDetection{aPrime, disjoint})
	if tracks2[0].ID != 0 {
		t.Errorf("expected matched track to keep id 0, got %d", tracks2[0].ID)
	}
	if tracks2[1].ID != 1 {
		t.Errorf("expected new disjoint track to get id 1, got %d", tracks2[1].ID)
	}
}

func TestUpdate_PruneAfterMaxFramesLost(t *testing.T) {
	cfg := Default()
	cfg.MaxFramesLost = 2
	tr := New(cfg)

	tr.Update([]handdetector.HandDetection{detAt(0, 0, 50, 50, 0.9)})
	if len(tr.Tracks()) != 1 {
		t.Fatalf("expected 1 track after first update")
	}

	// Feed empty detections repeatedly; track should be pruned once frames_lost > 2.
	tr.Update(nil)
	tr.Update(nil)
	if len(tr.Tracks()) != 1 {
		t.Fatalf("expected track to survive frames_lost<=2")
	}
	tr.Update(nil)
	if len(tr.Tracks()) != 0 {
		t.Fatalf("expected track pruned once frames_lost > 2, got %d tracks", len(tr.Tracks()))
	}
}

func TestStabilizeGesture_EmptyHistoryIsUnknown(t *testing.T) {
	tr := New(Default())
	track := &Track{}
	if g := tr.StabilizeGesture(track); g != gesture.Unknown {
		t.Errorf("expected Unknown for empty history, got %s", g)
	}
}

func TestStabilizeGesture_RecentMajorityWins(t *testing.T) {
	tr := New(Default())
	track := &Track{
		GestureHistory: []gesture.Gesture{gesture.Peace, gesture.Peace, gesture.Peace, gesture.Peace, gesture.Peace},
		LastDetection:  handdetector.HandDetection{NumFingers: 2},
	}
	g := tr.StabilizeGesture(track)
	if g != gesture.Peace {
		t.Errorf("expected Peace to dominate unanimous history, got %s", g)
	}
}

func TestStabilizeGesture_LowConfidenceIsUnknown(t *testing.T) {
	tr := New(Default())
	// A maximally mixed history with no clear majority should fail confidence.
	track := &Track{
		GestureHistory: []gesture.Gesture{
			gesture.OpenPalm, gesture.Fist, gesture.Pointing, gesture.ThumbsUp,
			gesture.Peace, gesture.OkSign, gesture.Custom,
		},
		LastDetection: handdetector.HandDetection{NumFingers: 3},
	}
	g := tr.StabilizeGesture(track)
	if g != gesture.Unknown {
		t.Errorf("expected Unknown for maximally split history, got %s", g)
	}
}

func TestStabilizeGesture_CanonicalOverride(t *testing.T) {
	tr := New(Default())
	// History leans OpenPalm but finger count of 0 implies Fist; the
	// OpenPalm vote ratio (about 0.58) exceeds 0.75 of its threshold, so
	// expect an override to Fist.
	track := &Track{
		GestureHistory: []gesture.Gesture{gesture.OpenPalm, gesture.OpenPalm, gesture.Fist},
		LastDetection:  handdetector.HandDetection{NumFingers: 0},
	}
	g := tr.StabilizeGesture(track)
	if g != gesture.Fist {
		t.Fatalf("expected canonical override to Fist, got %s", g)
	}
}
