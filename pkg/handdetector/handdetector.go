// Package handdetector implements the classical-CV, one-frame hand
// detection pipeline: downscale, HSV conversion, skin masking, morphology,
// contour extraction, shape analysis, confidence scoring, and gesture
// classification with history-based stabilization.
package handdetector

import (
	"math"
	"time"

	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/contour"
	"github.com/jarvis-sketch/jarvis/pkg/gesture"
	"github.com/jarvis-sketch/jarvis/pkg/pixelops"
	"github.com/jarvis-sketch/jarvis/pkg/shape"
)

// maxContoursToAnalyze bounds per-frame work to the top candidates; smaller
// blobs are almost always noise.
const maxContoursToAnalyze = 3

// BoundingBox is an axis-aligned pixel-space box with a detection
// confidence.
type BoundingBox struct {
	X, Y, Width, Height int
	Confidence          float64
}

// Area returns Width*Height.
func (b BoundingBox) Area() int { return b.Width * b.Height }

// Point is an integer pixel coordinate.
type Point = shape.Point

// HandDetection is one candidate hand found in a single frame.
type HandDetection struct {
	BBox              BoundingBox
	Center            Point
	Gesture           gesture.Gesture
	GestureConfidence float64
	NumFingers        int
	ContourArea       float64
	Contour           []Point
	Fingertips        []Point
}

// DetectionStats accumulates per-stage timing and running counters across
// the lifetime of a Detector.
type DetectionStats struct {
	FramesProcessed        uint64
	HandsDetected          uint64
	LastDetectionTimestamp uint64
	AvgProcessTimeMS       float64

	ConversionMS float64
	MaskingMS    float64
	MorphologyMS float64
	ContoursMS   float64
	AnalysisMS   float64
}

// Detector runs the per-frame classical-CV detection pipeline: downscale,
// HSV skin segmentation, morphology, contour extraction, and gesture
// classification. It is not safe for concurrent use by multiple goroutines; callers
// that need concurrency should use one Detector per goroutine.
type Detector struct {
	cfg Config

	hsvBuf   []byte
	maskBuf  []byte
	scratch  []byte
	tempBuf  []byte

	gestureHistory []gesture.Gesture

	stats DetectionStats
}

// New constructs a Detector with the given configuration.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Config returns the detector's current configuration.
func (d *Detector) Config() Config { return d.cfg }

// SetConfig replaces the detector's configuration without resetting
// buffers or history, used by adaptive retuning between frames.
func (d *Detector) SetConfig(cfg Config) { d.cfg = cfg }

// Stats returns a snapshot of the running detection statistics.
func (d *Detector) Stats() DetectionStats { return d.stats }

// ResetStats clears running statistics and gesture history.
func (d *Detector) ResetStats() {
	d.stats = DetectionStats{}
	d.gestureHistory = d.gestureHistory[:0]
}

func (d *Detector) ensureBuffers(pixelCount int) {
	if len(d.hsvBuf) < pixelCount*3 {
		d.hsvBuf = make([]byte, pixelCount*3)
		d.maskBuf = make([]byte, pixelCount)
		d.scratch = make([]byte, pixelCount)
		d.tempBuf = make([]byte, pixelCount*3)
	}
}

// Detect runs the full pipeline against one frame. Only FormatRGB888 frames
// are accepted; any other format yields an empty, error-free result.
func (d *Detector) Detect(frame *camera.Frame) []HandDetection {
	start := time.Now()

	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return nil
	}
	if frame.Format != camera.FormatRGB888 {
		return nil
	}

	k := d.cfg.DownscaleFactor
	workW := frame.Width / k
	workH := frame.Height / k
	pixelCount := workW * workH
	if pixelCount <= 0 {
		return nil
	}
	d.ensureBuffers(pixelCount)

	stageStart := time.Now()
	var rgbSrc []byte
	if k > 1 {
		pixelops.ResizeNearest(frame.Pixels, d.tempBuf, frame.Width, frame.Height, workW, workH, 3)
		rgbSrc = d.tempBuf
	} else {
		rgbSrc = frame.Pixels
	}
	pixelops.RGBToHSV(rgbSrc, d.hsvBuf, pixelCount)
	d.stats.ConversionMS = time.Since(stageStart).Seconds() * 1000

	stageStart = time.Now()
	pixelops.SkinMask(d.hsvBuf, d.maskBuf, pixelCount,
		d.cfg.HueMin, d.cfg.HueMax, d.cfg.SatMin, d.cfg.SatMax, d.cfg.ValMin, d.cfg.ValMax)
	d.stats.MaskingMS = time.Since(stageStart).Seconds() * 1000

	skinPixels := pixelops.CountNonZero(d.maskBuf)
	if skinPixels < d.cfg.MinHandArea/3 {
		d.stats.FramesProcessed++
		d.stats.LastDetectionTimestamp = frame.TimestampNS
		return nil
	}

	if d.cfg.EnableMorphology {
		stageStart = time.Now()
		pixelops.MorphOpenThenClose(d.maskBuf, workW, workH, d.scratch)
		d.stats.MorphologyMS = time.Since(stageStart).Seconds() * 1000
	}

	stageStart = time.Now()
	contours := contour.Find(d.maskBuf, workW, workH)
	d.stats.ContoursMS = time.Since(stageStart).Seconds() * 1000

	stageStart = time.Now()
	var detections []HandDetection

	n := len(contours)
	if n > maxContoursToAnalyze {
		n = maxContoursToAnalyze
	}
	for c := 0; c < n; c++ {
		pts := contours[c]

		area := shoelaceArea(pts)
		if area < float64(d.cfg.MinHandArea) || area > float64(d.cfg.MaxHandArea) {
			continue
		}

		hand := analyzeContour(pts)

		bboxArea := float64(hand.BBox.Area())
		solidity := 0.0
		if bboxArea > 0 {
			solidity = area / bboxArea
		}
		if solidity < 0.30 || solidity > 0.98 {
			continue
		}
		hand.ContourArea = area

		hand.BBox.Confidence = scoreConfidence(hand, workW, workH)
		hand.GestureConfidence = hand.BBox.Confidence

		if k > 1 {
			scaleDetection(&hand, k)
		}

		if d.cfg.EnableGesture && hand.BBox.Confidence >= d.cfg.MinConfidence {
			aspect := float64(hand.BBox.Width) / math.Max(1, float64(hand.BBox.Height))
			center := gesture.Point{X: float64(hand.Center.X), Y: float64(hand.Center.Y)}
			tips := make([]gesture.Point, len(hand.Fingertips))
			for i, p := range hand.Fingertips {
				tips[i] = gesture.Point{X: float64(p.X), Y: float64(p.Y)}
			}
			g := gesture.Classify(hand.NumFingers, aspect, solidity, tips, center,
				float64(hand.BBox.Width), float64(hand.BBox.Height))
			hand.Gesture = d.stabilizeGesture(g)
		}

		if hand.BBox.Confidence >= d.cfg.MinConfidence {
			detections = append(detections, hand)
		}
	}
	d.stats.AnalysisMS = time.Since(stageStart).Seconds() * 1000

	d.stats.FramesProcessed++
	d.stats.HandsDetected += uint64(len(detections))
	d.stats.LastDetectionTimestamp = frame.TimestampNS

	elapsed := time.Since(start).Seconds() * 1000
	if d.stats.FramesProcessed == 1 {
		d.stats.AvgProcessTimeMS = elapsed
	} else {
		fp := float64(d.stats.FramesProcessed)
		d.stats.AvgProcessTimeMS = (d.stats.AvgProcessTimeMS*(fp-1) + elapsed) / fp
	}

	return detections
}

func shoelaceArea(pts []Point) float64 {
	var area int64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += int64(pts[i].X)*int64(pts[j].Y) - int64(pts[j].X)*int64(pts[i].Y)
	}
	if area < 0 {
		area = -area
	}
	return float64(area) / 2.0
}

func analyzeContour(pts []Point) HandDetection {
	bbox := shape.BoundingBox(pts)
	center := shape.Centroid(pts)

	numFingers := shape.FingerCount(pts, center)
	fingertips := shape.Fingertips(pts, center)

	step := len(pts) / 50
	if step < 1 {
		step = 1
	}
	downsampled := make([]Point, 0, len(pts)/step+1)
	for i := 0; i < len(pts); i += step {
		downsampled = append(downsampled, pts[i])
	}

	return HandDetection{
		BBox: BoundingBox{
			X:      bbox.MinX,
			Y:      bbox.MinY,
			Width:  bbox.MaxX - bbox.MinX,
			Height: bbox.MaxY - bbox.MinY,
		},
		Center:     center,
		NumFingers: numFingers,
		Fingertips: fingertips,
		Contour:    downsampled,
	}
}

func scaleDetection(h *HandDetection, k int) {
	h.BBox.X *= k
	h.BBox.Y *= k
	h.BBox.Width *= k
	h.BBox.Height *= k
	h.Center.X *= k
	h.Center.Y *= k
	for i := range h.Contour {
		h.Contour[i].X *= k
		h.Contour[i].Y *= k
	}
	for i := range h.Fingertips {
		h.Fingertips[i].X *= k
		h.Fingertips[i].Y *= k
	}
}

// scoreConfidence implements the base-0.55, additive/multiplicative bump
// formula, operating on the (possibly downscaled) work-resolution frame
// dimensions.
func scoreConfidence(h HandDetection, frameW, frameH int) float64 {
	areaRatio := float64(h.BBox.Area()) / float64(frameW*frameH)
	aspectRatio := float64(h.BBox.Width) / math.Max(1, float64(h.BBox.Height))

	conf := 0.55

	switch {
	case areaRatio >= 0.005 && areaRatio <= 0.6:
		conf += 0.20
	case areaRatio < 0.003 || areaRatio > 0.8:
		conf *= 0.35
	default:
		conf *= 0.65
	}

	switch {
	case aspectRatio >= 0.4 && aspectRatio <= 2.5:
		conf += 0.15
	case aspectRatio < 0.3 || aspectRatio > 3.0:
		conf *= 0.5
	default:
		conf *= 0.7
	}

	if h.NumFingers >= 0 && h.NumFingers <= 6 {
		conf += 0.05
	} else if h.NumFingers > 8 {
		conf *= 0.6
	}

	if len(h.Fingertips) > 0 && len(h.Fingertips) <= 7 {
		conf += 0.05
	}

	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

// stabilizeGesture pushes current onto the bounded history ring and returns
// the modal gesture, ties resolved by tag order (lowest Gesture value wins).
func (d *Detector) stabilizeGesture(current gesture.Gesture) gesture.Gesture {
	d.gestureHistory = append(d.gestureHistory, current)
	if len(d.gestureHistory) > d.cfg.GestureHistory {
		d.gestureHistory = d.gestureHistory[1:]
	}

	var counts [8]int
	for _, g := range d.gestureHistory {
		counts[int(g)]++
	}

	maxCount := 0
	mostCommon := gesture.Unknown
	for i, c := range counts {
		if c > maxCount {
			maxCount = c
			mostCommon = gesture.Gesture(i)
		}
	}
	return mostCommon
}
