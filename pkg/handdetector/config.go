package handdetector

import "errors"

// ErrInvalidConfig is returned by Config.Validate when a field is out of
// its accepted range.
var ErrInvalidConfig = errors.New("handdetector: invalid configuration")

// Config tunes the per-frame detection pipeline.
type Config struct {
	HueMin, HueMax byte
	SatMin, SatMax byte
	ValMin, ValMax byte

	MinHandArea int
	MaxHandArea int
	MinConfidence float64

	DownscaleFactor int
	EnableMorphology bool

	EnableGesture  bool
	GestureHistory int
}

// Default returns the detector configuration matching the reference
// implementation's built-in defaults.
func Default() Config {
	return Config{
		HueMin: 0, HueMax: 25,
		SatMin: 20, SatMax: 200,
		ValMin: 40, ValMax: 255,
		MinHandArea:      3000,
		MaxHandArea:      150000,
		MinConfidence:    0.35,
		DownscaleFactor:  1,
		EnableMorphology: true,
		EnableGesture:    true,
		GestureHistory:   7,
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.HueMin > c.HueMax {
		return ErrInvalidConfig
	}
	if c.SatMin > c.SatMax || c.ValMin > c.ValMax {
		return ErrInvalidConfig
	}
	if c.MinHandArea <= 0 || c.MaxHandArea <= c.MinHandArea {
		return ErrInvalidConfig
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidConfig
	}
	if c.DownscaleFactor < 1 {
		return ErrInvalidConfig
	}
	if c.GestureHistory < 1 {
		return ErrInvalidConfig
	}
	return nil
}
