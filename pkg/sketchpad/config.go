package sketchpad

import "errors"

// ErrInvalidConfig is returned by Config.Validate for out-of-range fields.
var ErrInvalidConfig = errors.New("sketchpad: invalid config")

// Config tunes the drawing state machine and renderer.
type Config struct {
	// RequiredConfirmationFrames is how many consecutive drawing-gesture
	// frames, within PositionTolerancePercent of each other, are needed to
	// confirm a start or end point.
	RequiredConfirmationFrames int
	PositionTolerancePercent   float64

	// SmoothingWindow bounds the position-history ring used by both the
	// EWMA and predictive smoothing modes.
	SmoothingWindow int

	// JitterThreshold discards position updates that move less than this
	// many percent from the last smoothed position.
	JitterThreshold float64

	// PredictiveSmoothing selects EWMA+velocity-extrapolation smoothing
	// (true) over plain EWMA (false).
	PredictiveSmoothing bool

	// KalmanSmoothing, when true, feeds the raw position through
	// positionFilter instead of either the EWMA or the predictive formula;
	// it takes precedence over PredictiveSmoothing.
	KalmanSmoothing  bool
	KalmanSmoothFactor float64

	AntiAliasing      bool
	SubpixelRendering bool

	// EnableProjectorCalibration routes the smoothed canvas position through
	// SketchPad.Calibration()'s Transform once four correspondence points
	// have been recorded. Off by default: an uncalibrated Transform is an
	// identity anyway, but this flag lets a caller disable it outright.
	EnableProjectorCalibration bool

	DefaultColor     uint32
	DefaultThickness int

	// PersistDir is the directory persisted sketches are written under when
	// a bare name (no path separator) is given to Save/Load.
	PersistDir string
}

// Default returns the tuning the original sketch pad ships with.
func Default() Config {
	return Config{
		RequiredConfirmationFrames: 2,
		PositionTolerancePercent:   3.0,
		SmoothingWindow:            9,
		JitterThreshold:            1.5,
		PredictiveSmoothing:        true,
		KalmanSmoothing:            false,
		KalmanSmoothFactor:         0.5,
		AntiAliasing:               true,
		SubpixelRendering:          true,
		EnableProjectorCalibration: false,
		DefaultColor:               0x00FFFFFF,
		DefaultThickness:           3,
		PersistDir:                 "blueprints",
	}
}

// Validate rejects out-of-range tuning values.
func (c Config) Validate() error {
	if c.RequiredConfirmationFrames <= 0 {
		return ErrInvalidConfig
	}
	if c.PositionTolerancePercent <= 0 {
		return ErrInvalidConfig
	}
	if c.SmoothingWindow <= 0 {
		return ErrInvalidConfig
	}
	if c.JitterThreshold < 0 {
		return ErrInvalidConfig
	}
	if c.DefaultThickness <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
