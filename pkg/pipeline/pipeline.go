// Package pipeline wires capture, preprocess, detect, and draw into four
// long-running worker goroutines connected by bounded FIFO queues: independent
// stages sharing no mutable state but the queues and a cooperative shutdown
// flag.
package pipeline

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/pixelops"
	"github.com/jarvis-sketch/jarvis/pkg/production"
)

// Canvas is the draw stage's sole collaborator: it is owned by the draw
// goroutine, and the only way anything outside the pipeline may observe
// its state is through whatever snapshot method the concrete type exposes.
type Canvas interface {
	Update(detections []handdetector.HandDetection)
}

// Pipeline runs the four-stage worker pipeline over a camera.Source,
// pushing stabilized detections into a Canvas at a paced frame rate.
type Pipeline struct {
	cfg      Config
	source   camera.Source
	detector *production.Detector
	canvas   Canvas
	log      zerolog.Logger

	yuvQ *Queue[*camera.Frame]
	rgbQ *Queue[*camera.Frame]
	detQ *Queue[[]handdetector.HandDetection]

	running atomic.Bool
	wg      sync.WaitGroup
}

// New constructs a Pipeline. The source, detector, and canvas are not
// opened/started by New; Start assumes the source is already Open.
func New(cfg Config, source camera.Source, detector *production.Detector, canvas Canvas, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		detector: detector,
		canvas:   canvas,
		log:      log,
		yuvQ:     NewQueue[*camera.Frame](cfg.QueueCapacity),
		rgbQ:     NewQueue[*camera.Frame](cfg.QueueCapacity),
		detQ:     NewQueue[[]handdetector.HandDetection](cfg.QueueCapacity),
	}, nil
}

// IsRunning reports whether the four worker goroutines are active.
func (p *Pipeline) IsRunning() bool { return p.running.Load() }

// Start launches the capture, preprocess, detect, and draw goroutines.
// Calling Start on an already-running Pipeline is a no-op.
func (p *Pipeline) Start() {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	p.wg.Add(4)
	go p.captureLoop()
	go p.preprocessLoop()
	go p.detectLoop()
	go p.drawLoop()
}

// Stop clears the running flag, wakes every queue waiter, and joins all
// four worker goroutines. No work is pushed to any queue once Stop has
// begun.
func (p *Pipeline) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.yuvQ.Close()
	p.rgbQ.Close()
	p.detQ.Close()
	p.wg.Wait()
}

func (p *Pipeline) captureLoop() {
	defer p.wg.Done()
	for p.running.Load() {
		frame, err := p.source.Read()
		if err != nil {
			p.log.Warn().Err(err).Msg("pipeline: capture error, dropping frame")
			continue
		}
		if frame == nil {
			continue
		}
		p.yuvQ.Push(frame)
	}
}

func (p *Pipeline) preprocessLoop() {
	defer p.wg.Done()
	rgbBuf := make([]byte, p.cfg.CameraWidth*p.cfg.CameraHeight*3)
	detectBuf := make([]byte, p.cfg.DetectWidth*p.cfg.DetectHeight*3)

	for {
		frame, ok := p.yuvQ.Pop()
		if !ok {
			return
		}

		if !convertToRGB(frame, rgbBuf, p.cfg) {
			p.log.Warn().Str("format", frame.Format.String()).Msg("pipeline: unsupported capture format, dropping frame")
			continue
		}
		gammaCorrect(rgbBuf, p.cfg.Gamma)
		pixelops.ResizeBilinear(rgbBuf, detectBuf, p.cfg.CameraWidth, p.cfg.CameraHeight, p.cfg.DetectWidth, p.cfg.DetectHeight, 3)

		out := &camera.Frame{
			Pixels:      append([]byte(nil), detectBuf...),
			Width:       p.cfg.DetectWidth,
			Height:      p.cfg.DetectHeight,
			Stride:      p.cfg.DetectWidth * 3,
			Format:      camera.FormatRGB888,
			TimestampNS: frame.TimestampNS,
		}
		p.rgbQ.Push(out)
	}
}

// convertToRGB fills buf with the RGB888 bytes for frame, returning false
// for a format the preprocess stage cannot handle.
func convertToRGB(frame *camera.Frame, buf []byte, cfg Config) bool {
	switch frame.Format {
	case camera.FormatYUV420:
		pixelops.YUV420ToRGB888(frame.Pixels, buf, cfg.CameraWidth, cfg.CameraHeight)
		return true
	case camera.FormatRGB888:
		copy(buf, frame.Pixels)
		return true
	default:
		return false
	}
}

// gammaCorrect applies out = (in/255)^(1/gamma) * 255 in place. For
// gamma < 1 the exponent exceeds 1, so midtones are darkened (0.8 maps a
// mid-gray of 128 to 107).
func gammaCorrect(buf []byte, gamma float64) {
	invGamma := 1.0 / gamma
	for i, v := range buf {
		norm := float64(v) / 255.0
		buf[i] = byte(math.Pow(norm, invGamma) * 255.0)
	}
}

func (p *Pipeline) detectLoop() {
	defer p.wg.Done()

	var window [][]handdetector.HandDetection
	var lastValid []handdetector.HandDetection
	holdLast := 0

	for {
		frame, ok := p.rgbQ.Pop()
		if !ok {
			return
		}

		detections := p.detector.Detect(frame)
		if len(detections) > 0 {
			lastValid = detections
			holdLast = 0
		} else if len(lastValid) > 0 && holdLast < p.cfg.HoldLastMax {
			detections = lastValid
			holdLast++
		}

		window = append(window, detections)
		if len(window) > p.cfg.SmoothWindow {
			window = window[1:]
		}
		p.detQ.Push(window[len(window)-1])
	}
}

func (p *Pipeline) drawLoop() {
	defer p.wg.Done()

	period := time.Second / time.Duration(p.cfg.TargetFPS)
	next := time.Now().Add(period)

	for p.running.Load() {
		detections, ok := p.detQ.PopWait(period)
		if !p.running.Load() {
			return
		}
		if ok {
			p.canvas.Update(detections)
		}

		next = next.Add(period)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		} else {
			next = time.Now()
		}
	}
}
