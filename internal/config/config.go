// Package config provides TOML configuration loading for the sketching
// engine.
//
// The configuration file supports the following structure:
//
//	[camera]
//	device_id = 0
//	width = 640
//	height = 480
//	fps = 30
//
//	[detector]
//	hue_min = 0
//	hue_max = 25
//	sat_min = 20
//	sat_max = 200
//	val_min = 40
//	val_max = 255
//	min_hand_area = 3000
//	max_hand_area = 150000
//	min_confidence = 0.35
//	downscale_factor = 1
//	enable_morphology = true
//	enable_gesture = true
//	gesture_history = 7
//
//	[tracker]
//	iou_threshold = 0.3
//	max_frames_lost = 30
//	gesture_window = 7
//	position_window = 5
//	stabilization_threshold = 0.6
//
//	[lighting]
//	adaptation_rate = 0.05
//
//	[production]
//	enable_tracking = true
//	adaptive_lighting = true
//	enable_roi_tracking = true
//	filter_low_confidence = true
//	min_detection_quality = 0.4
//	roi_expansion_pixels = 60
//
//	[pipeline]
//	detect_width = 224
//	detect_height = 224
//	gamma = 0.8
//	queue_capacity = 4
//	target_fps = 30
//	hold_last_max = 3
//	smooth_window = 5
//
//	[sketch]
//	required_confirmation_frames = 2
//	position_tolerance_percent = 3.0
//	smoothing_window = 9
//	jitter_threshold = 1.5
//	predictive_smoothing = true
//	anti_aliasing = true
//	subpixel_rendering = true
//	default_thickness = 3
//	persist_dir = "blueprints"
//
// Example usage:
//
//	cfg, err := config.Load("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Camera device: %d\n", cfg.Camera.DeviceID)
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jarvis-sketch/jarvis/pkg/handdetector"
	"github.com/jarvis-sketch/jarvis/pkg/lighting"
	"github.com/jarvis-sketch/jarvis/pkg/pipeline"
	"github.com/jarvis-sketch/jarvis/pkg/production"
	"github.com/jarvis-sketch/jarvis/pkg/sketchpad"
	"github.com/jarvis-sketch/jarvis/pkg/tracker"
)

// Config is the complete configuration for the sketching engine, one
// section per pipeline component.
type Config struct {
	Camera     CameraConfig     `toml:"camera"`
	Detector   DetectorConfig   `toml:"detector"`
	Tracker    TrackerConfig    `toml:"tracker"`
	Lighting   LightingConfig   `toml:"lighting"`
	Production ProductionConfig `toml:"production"`
	Pipeline   PipelineConfig   `toml:"pipeline"`
	Sketch     SketchConfig     `toml:"sketch"`
}

// CameraConfig holds capture-device settings.
type CameraConfig struct {
	DeviceID int `toml:"device_id"`
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	FPS      int `toml:"fps"`
}

// DetectorConfig mirrors pkg/handdetector.Config.
type DetectorConfig struct {
	HueMin byte `toml:"hue_min"`
	HueMax byte `toml:"hue_max"`
	SatMin byte `toml:"sat_min"`
	SatMax byte `toml:"sat_max"`
	ValMin byte `toml:"val_min"`
	ValMax byte `toml:"val_max"`

	MinHandArea   int     `toml:"min_hand_area"`
	MaxHandArea   int     `toml:"max_hand_area"`
	MinConfidence float64 `toml:"min_confidence"`

	DownscaleFactor  int  `toml:"downscale_factor"`
	EnableMorphology bool `toml:"enable_morphology"`

	EnableGesture  bool `toml:"enable_gesture"`
	GestureHistory int  `toml:"gesture_history"`
}

// ToHandDetectorConfig converts to pkg/handdetector.Config.
func (d DetectorConfig) ToHandDetectorConfig() handdetector.Config {
	return handdetector.Config{
		HueMin: d.HueMin, HueMax: d.HueMax,
		SatMin: d.SatMin, SatMax: d.SatMax,
		ValMin: d.ValMin, ValMax: d.ValMax,
		MinHandArea:      d.MinHandArea,
		MaxHandArea:      d.MaxHandArea,
		MinConfidence:    d.MinConfidence,
		DownscaleFactor:  d.DownscaleFactor,
		EnableMorphology: d.EnableMorphology,
		EnableGesture:    d.EnableGesture,
		GestureHistory:   d.GestureHistory,
	}
}

// TrackerConfig mirrors pkg/tracker.Config.
type TrackerConfig struct {
	IoUThreshold           float64 `toml:"iou_threshold"`
	MaxFramesLost          int     `toml:"max_frames_lost"`
	GestureWindow          int     `toml:"gesture_window"`
	PositionWindow         int     `toml:"position_window"`
	StabilizationThreshold float64 `toml:"stabilization_threshold"`
}

// ToTrackerConfig converts to pkg/tracker.Config.
func (c TrackerConfig) ToTrackerConfig() tracker.Config {
	return tracker.Config{
		IoUThreshold:           c.IoUThreshold,
		MaxFramesLost:          c.MaxFramesLost,
		GestureWindow:          c.GestureWindow,
		PositionWindow:         c.PositionWindow,
		StabilizationThreshold: c.StabilizationThreshold,
	}
}

// LightingConfig mirrors pkg/lighting.Config.
type LightingConfig struct {
	AdaptationRate float64 `toml:"adaptation_rate"`
}

// ToLightingConfig converts to pkg/lighting.Config.
func (c LightingConfig) ToLightingConfig() lighting.Config {
	return lighting.Config{AdaptationRate: c.AdaptationRate}
}

// ProductionConfig mirrors pkg/production.Config.
type ProductionConfig struct {
	EnableTracking      bool    `toml:"enable_tracking"`
	AdaptiveLighting    bool    `toml:"adaptive_lighting"`
	EnableROITracking   bool    `toml:"enable_roi_tracking"`
	FilterLowConfidence bool    `toml:"filter_low_confidence"`
	MinDetectionQuality float64 `toml:"min_detection_quality"`
	ROIExpansionPixels  int     `toml:"roi_expansion_pixels"`
}

// ToProductionConfig converts to pkg/production.Config.
func (c ProductionConfig) ToProductionConfig() production.Config {
	return production.Config{
		EnableTracking:      c.EnableTracking,
		AdaptiveLighting:    c.AdaptiveLighting,
		EnableROITracking:   c.EnableROITracking,
		FilterLowConfidence: c.FilterLowConfidence,
		MinDetectionQuality: c.MinDetectionQuality,
		ROIExpansionPixels:  c.ROIExpansionPixels,
	}
}

// PipelineConfig mirrors pkg/pipeline.Config, omitting CameraWidth/Height
// and CameraFPS, which come from [camera] instead.
type PipelineConfig struct {
	DetectWidth   int     `toml:"detect_width"`
	DetectHeight  int     `toml:"detect_height"`
	Gamma         float64 `toml:"gamma"`
	QueueCapacity int     `toml:"queue_capacity"`
	TargetFPS     int     `toml:"target_fps"`
	HoldLastMax   int     `toml:"hold_last_max"`
	SmoothWindow  int     `toml:"smooth_window"`
}

// ToPipelineConfig converts to pkg/pipeline.Config, folding in the camera
// section's capture resolution/rate.
func (c PipelineConfig) ToPipelineConfig(cam CameraConfig) pipeline.Config {
	return pipeline.Config{
		CameraWidth:   cam.Width,
		CameraHeight:  cam.Height,
		CameraFPS:     cam.FPS,
		DetectWidth:   c.DetectWidth,
		DetectHeight:  c.DetectHeight,
		Gamma:         c.Gamma,
		QueueCapacity: c.QueueCapacity,
		TargetFPS:     c.TargetFPS,
		HoldLastMax:   c.HoldLastMax,
		SmoothWindow:  c.SmoothWindow,
	}
}

// SketchConfig mirrors pkg/sketchpad.Config.
type SketchConfig struct {
	RequiredConfirmationFrames int     `toml:"required_confirmation_frames"`
	PositionTolerancePercent   float64 `toml:"position_tolerance_percent"`
	SmoothingWindow            int     `toml:"smoothing_window"`
	JitterThreshold            float64 `toml:"jitter_threshold"`
	PredictiveSmoothing        bool    `toml:"predictive_smoothing"`
	KalmanSmoothing            bool    `toml:"kalman_smoothing"`
	KalmanSmoothFactor         float64 `toml:"kalman_smooth_factor"`
	AntiAliasing               bool    `toml:"anti_aliasing"`
	SubpixelRendering          bool    `toml:"subpixel_rendering"`
	EnableProjectorCalibration bool    `toml:"enable_projector_calibration"`
	DefaultColor               uint32  `toml:"default_color"`
	DefaultThickness           int     `toml:"default_thickness"`
	PersistDir                 string  `toml:"persist_dir"`
}

// ToSketchpadConfig converts to pkg/sketchpad.Config.
func (c SketchConfig) ToSketchpadConfig() sketchpad.Config {
	return sketchpad.Config{
		RequiredConfirmationFrames: c.RequiredConfirmationFrames,
		PositionTolerancePercent:   c.PositionTolerancePercent,
		SmoothingWindow:            c.SmoothingWindow,
		JitterThreshold:            c.JitterThreshold,
		PredictiveSmoothing:        c.PredictiveSmoothing,
		KalmanSmoothing:            c.KalmanSmoothing,
		KalmanSmoothFactor:         c.KalmanSmoothFactor,
		AntiAliasing:               c.AntiAliasing,
		SubpixelRendering:          c.SubpixelRendering,
		EnableProjectorCalibration: c.EnableProjectorCalibration,
		DefaultColor:               c.DefaultColor,
		DefaultThickness:           c.DefaultThickness,
		PersistDir:                 c.PersistDir,
	}
}

// Default returns the default configuration, matching each component
// package's own Default().
func Default() *Config {
	hd := handdetector.Default()
	tr := tracker.Default()
	lt := lighting.Default()
	pr := production.Default()
	pl := pipeline.Default()
	sk := sketchpad.Default()

	return &Config{
		Camera: CameraConfig{
			DeviceID: 0,
			Width:    pl.CameraWidth,
			Height:   pl.CameraHeight,
			FPS:      pl.CameraFPS,
		},
		Detector: DetectorConfig{
			HueMin: hd.HueMin, HueMax: hd.HueMax,
			SatMin: hd.SatMin, SatMax: hd.SatMax,
			ValMin: hd.ValMin, ValMax: hd.ValMax,
			MinHandArea: hd.MinHandArea, MaxHandArea: hd.MaxHandArea,
			MinConfidence:    hd.MinConfidence,
			DownscaleFactor:  hd.DownscaleFactor,
			EnableMorphology: hd.EnableMorphology,
			EnableGesture:    hd.EnableGesture,
			GestureHistory:   hd.GestureHistory,
		},
		Tracker: TrackerConfig{
			IoUThreshold:           tr.IoUThreshold,
			MaxFramesLost:          tr.MaxFramesLost,
			GestureWindow:          tr.GestureWindow,
			PositionWindow:         tr.PositionWindow,
			StabilizationThreshold: tr.StabilizationThreshold,
		},
		Lighting: LightingConfig{AdaptationRate: lt.AdaptationRate},
		Production: ProductionConfig{
			EnableTracking:      pr.EnableTracking,
			AdaptiveLighting:    pr.AdaptiveLighting,
			EnableROITracking:   pr.EnableROITracking,
			FilterLowConfidence: pr.FilterLowConfidence,
			MinDetectionQuality: pr.MinDetectionQuality,
			ROIExpansionPixels:  pr.ROIExpansionPixels,
		},
		Pipeline: PipelineConfig{
			DetectWidth: pl.DetectWidth, DetectHeight: pl.DetectHeight,
			Gamma: pl.Gamma, QueueCapacity: pl.QueueCapacity,
			TargetFPS: pl.TargetFPS, HoldLastMax: pl.HoldLastMax,
			SmoothWindow: pl.SmoothWindow,
		},
		Sketch: SketchConfig{
			RequiredConfirmationFrames: sk.RequiredConfirmationFrames,
			PositionTolerancePercent:   sk.PositionTolerancePercent,
			SmoothingWindow:            sk.SmoothingWindow,
			JitterThreshold:            sk.JitterThreshold,
			PredictiveSmoothing:        sk.PredictiveSmoothing,
			KalmanSmoothing:            sk.KalmanSmoothing,
			KalmanSmoothFactor:         sk.KalmanSmoothFactor,
			AntiAliasing:               sk.AntiAliasing,
			SubpixelRendering:          sk.SubpixelRendering,
			EnableProjectorCalibration: sk.EnableProjectorCalibration,
			DefaultColor:               sk.DefaultColor,
			DefaultThickness:           sk.DefaultThickness,
			PersistDir:                 sk.PersistDir,
		},
	}
}

// Load reads and parses a TOML configuration file. If the file does not
// exist, it returns the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 {
		return fmt.Errorf("camera width must be positive, got %d", c.Camera.Width)
	}
	if c.Camera.Height <= 0 {
		return fmt.Errorf("camera height must be positive, got %d", c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera FPS must be positive, got %d", c.Camera.FPS)
	}
	if err := c.Detector.ToHandDetectorConfig().Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if err := c.Pipeline.ToPipelineConfig(c.Camera).Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Sketch.ToSketchpadConfig().Validate(); err != nil {
		return fmt.Errorf("sketch: %w", err)
	}
	return nil
}
