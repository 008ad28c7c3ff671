package production

import (
	"testing"

	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/lighting"
	"github.com/jarvis-sketch/jarvis/pkg/tracker"
)

func skinFrame(w, h int) *camera.Frame {
	pixels := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		pixels[i*3] = 220
		pixels[i*3+1] = 180
		pixels[i*3+2] = 140
	}
	return &camera.Frame{Pixels: pixels, Width: w, Height: h, Stride: w * 3, Format: camera.FormatRGB888}
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	dcfg := handdetector.Default()
	dcfg.MinHandArea = 1000
	base, err := handdetector.New(dcfg)
	if err != nil {
		t.Fatalf("handdetector.New: %v", err)
	}
	tr := tracker.New(tracker.Default())
	light := lighting.New(lighting.Default(), lighting.Baseline{
		ValMin: dcfg.ValMin, SatMin: dcfg.SatMin, SatMax: dcfg.SatMax, HueMax: dcfg.HueMax,
	})
	return New(Default(), base, tr, light)
}

func TestDetect_RunsFullCycleWithoutPanicking(t *testing.T) {
	d := newTestDetector(t)
	frame := skinFrame(320, 240)
	for i := 0; i < 5; i++ {
		_ = d.Detect(frame)
	}
}

func TestDetect_EmptyFrameRelaxesROIOverTime(t *testing.T) {
	d := newTestDetector(t)
	d.roi = ROI{X: 50, Y: 50, Width: 20, Height: 20, Valid: true}
	empty := &camera.Frame{Pixels: make([]byte, 320*240*3), Width: 320, Height: 240, Stride: 320 * 3, Format: camera.FormatRGB888}

	_ = d.Detect(empty)
	got := d.ROIHint()
	if got.Width <= 20 || got.Height <= 20 {
		t.Errorf("expected ROI to relax on empty detections, got %+v", got)
	}
}

func TestIoU_BoundaryProperties(t *testing.T) {
	a := handdetector.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	if v := iou(a, a); v != 1 {
		t.Errorf("expected self-IoU=1, got %f", v)
	}
	b := handdetector.BoundingBox{X: 100, Y: 100, Width: 10, Height: 10}
	if v := iou(a, b); v != 0 {
		t.Errorf("expected disjoint IoU=0, got %f", v)
	}
}

func TestFilterQuality_DropsLowConfidenceNewDetections(t *testing.T) {
	d := newTestDetector(t)
	dets := []handdetector.HandDetection{
		{BBox: handdetector.BoundingBox{Confidence: 0.1}},
		{BBox: handdetector.BoundingBox{Confidence: 0.9}},
	}
	out := d.filterQuality(dets, nil)
	if len(out) != 1 || out[0].BBox.Confidence != 0.9 {
		t.Fatalf("expected only high-confidence detection to survive, got %+v", out)
	}
}
