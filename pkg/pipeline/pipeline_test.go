package pipeline

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jarvis-sketch/jarvis/pkg/camera"
	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/lighting"
	"github.com/jarvis-sketch/jarvis/pkg/production"
	"github.com/jarvis-sketch/jarvis/pkg/tracker"
)

// fakeSource yields skin-colored RGB888 frames, optionally erroring every
// Nth read to exercise capture-error handling.
type fakeSource struct {
	mu       sync.Mutex
	w, h     int
	seq      uint64
	errEvery int
}

func (f *fakeSource) Open(deviceID, width, height, fps int) error { return nil }

func (f *fakeSource) Read() (*camera.Frame, error) {
	f.mu.Lock()
	f.seq++
	n := f.seq
	f.mu.Unlock()

	if f.errEvery > 0 && n%uint64(f.errEvery) == 0 {
		return nil, errors.New("fake capture failure")
	}

	pixels := make([]byte, f.w*f.h*3)
	for i := 0; i < f.w*f.h; i++ {
		pixels[i*3] = 220
		pixels[i*3+1] = 180
		pixels[i*3+2] = 140
	}
	return &camera.Frame{
		Pixels: pixels, Width: f.w, Height: f.h, Stride: f.w * 3,
		Format: camera.FormatRGB888, TimestampNS: n,
	}, nil
}

func (f *fakeSource) Close() error { return nil }

type fakeCanvas struct {
	mu      sync.Mutex
	updates int
}

func (c *fakeCanvas) Update(detections []handdetector.HandDetection) {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
}

func (c *fakeCanvas) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

func newTestPipeline(t *testing.T, cfg Config, src camera.Source) (*Pipeline, *fakeCanvas) {
	t.Helper()
	dcfg := handdetector.Default()
	dcfg.MinHandArea = 500
	base, err := handdetector.New(dcfg)
	if err != nil {
		t.Fatalf("handdetector.New: %v", err)
	}
	tr := tracker.New(tracker.Default())
	light := lighting.New(lighting.Default(), lighting.Baseline{
		ValMin: dcfg.ValMin, SatMin: dcfg.SatMin, SatMax: dcfg.SatMax, HueMax: dcfg.HueMax,
	})
	detector := production.New(production.Default(), base, tr, light)

	canvas := &fakeCanvas{}
	p, err := New(cfg, src, detector, canvas, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, canvas
}

func TestPipeline_RunsAndDeliversUpdates(t *testing.T) {
	cfg := Default()
	cfg.CameraWidth, cfg.CameraHeight = 64, 48
	cfg.DetectWidth, cfg.DetectHeight = 32, 24
	cfg.TargetFPS = 100

	src := &fakeSource{w: cfg.CameraWidth, h: cfg.CameraHeight}
	p, canvas := newTestPipeline(t, cfg, src)

	p.Start()
	time.Sleep(150 * time.Millisecond)
	p.Stop()

	if canvas.count() == 0 {
		t.Errorf("expected at least one canvas update")
	}
	if p.IsRunning() {
		t.Errorf("expected pipeline to report stopped after Stop")
	}
}

func TestPipeline_SurvivesCaptureErrors(t *testing.T) {
	cfg := Default()
	cfg.CameraWidth, cfg.CameraHeight = 64, 48
	cfg.DetectWidth, cfg.DetectHeight = 32, 24
	cfg.TargetFPS = 100

	src := &fakeSource{w: cfg.CameraWidth, h: cfg.CameraHeight, errEvery: 2}
	p, canvas := newTestPipeline(t, cfg, src)

	p.Start()
	time.Sleep(150 * time.Millisecond)
	p.Stop()

	if canvas.count() == 0 {
		t.Errorf("expected the pipeline to keep delivering updates despite capture errors")
	}
}

func TestPipeline_StartIsIdempotent(t *testing.T) {
	cfg := Default()
	cfg.CameraWidth, cfg.CameraHeight = 32, 24
	cfg.DetectWidth, cfg.DetectHeight = 16, 12

	src := &fakeSource{w: cfg.CameraWidth, h: cfg.CameraHeight}
	p, _ := newTestPipeline(t, cfg, src)

	p.Start()
	p.Start() // second call must be a no-op, not a second set of goroutines
	p.Stop()
	p.Stop() // likewise idempotent
}

func TestConfig_ValidateRejectsZeroFields(t *testing.T) {
	cfg := Default()
	cfg.TargetFPS = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation error for zero TargetFPS")
	}
}

func TestGammaCorrect_IdentityAtGammaOne(t *testing.T) {
	buf := []byte{0, 64, 128, 255}
	want := append([]byte(nil), buf...)
	gammaCorrect(buf, 1.0)
	for i := range buf {
		if diff := int(buf[i]) - int(want[i]); diff < -1 || diff > 1 {
			t.Errorf("byte %d: expected ~%d, got %d", i, want[i], buf[i])
		}
	}
}

func TestConvertToRGB_RejectsUnsupportedFormat(t *testing.T) {
	frame := &camera.Frame{Format: camera.FormatRGBA8888, Width: 2, Height: 2, Pixels: make([]byte, 16)}
	buf := make([]byte, 12)
	if convertToRGB(frame, buf, Default()) {
		t.Errorf("expected RGBA8888 to be rejected by convertToRGB")
	}
}
