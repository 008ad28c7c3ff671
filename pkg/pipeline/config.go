package pipeline

import "errors"

// ErrInvalidConfig is returned by Config.Validate for out-of-range fields.
var ErrInvalidConfig = errors.New("pipeline: invalid configuration")

// Config tunes the four-stage worker pipeline.
type Config struct {
	CameraWidth  int
	CameraHeight int
	CameraFPS    int

	DetectWidth  int
	DetectHeight int

	// Gamma is the preprocess-stage gamma-correction parameter; pixels are
	// raised to the power 1/Gamma, so values below 1 darken midtones.
	Gamma float64

	// QueueCapacity bounds each inter-stage queue.
	QueueCapacity int

	// TargetFPS paces the draw stage via absolute-deadline scheduling.
	TargetFPS int

	// HoldLastMax is the number of consecutive empty detect results the
	// detect stage covers by re-emitting the last non-empty result.
	HoldLastMax int

	// SmoothWindow bounds the detect stage's rolling result history.
	SmoothWindow int
}

// Default returns the configuration matching the reference implementation's
// built-in constants: 640x480@30 capture, 224x224 detection input, gamma
// 0.8, 3-frame hold-last, 5-frame smoothing window, ~30 FPS draw pacing.
func Default() Config {
	return Config{
		CameraWidth:   640,
		CameraHeight:  480,
		CameraFPS:     30,
		DetectWidth:   224,
		DetectHeight:  224,
		Gamma:         0.8,
		QueueCapacity: 4,
		TargetFPS:     30,
		HoldLastMax:   3,
		SmoothWindow:  5,
	}
}

// Validate checks that every field is in a usable range.
func (c Config) Validate() error {
	if c.CameraWidth <= 0 || c.CameraHeight <= 0 || c.CameraFPS <= 0 {
		return ErrInvalidConfig
	}
	if c.DetectWidth <= 0 || c.DetectHeight <= 0 {
		return ErrInvalidConfig
	}
	if c.Gamma <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueCapacity <= 0 {
		return ErrInvalidConfig
	}
	if c.TargetFPS <= 0 {
		return ErrInvalidConfig
	}
	if c.HoldLastMax < 0 {
		return ErrInvalidConfig
	}
	if c.SmoothWindow <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
