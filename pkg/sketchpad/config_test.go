package sketchpad

import "testing"

func TestConfig_ValidateRejectsZeroConfirmationFrames(t *testing.T) {
	cfg := Default()
	cfg.RequiredConfirmationFrames = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected ErrInvalidConfig for zero confirmation frames")
	}
}

func TestConfig_ValidateRejectsNegativeJitterThreshold(t *testing.T) {
	cfg := Default()
	cfg.JitterThreshold = -1
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected ErrInvalidConfig for negative jitter threshold")
	}
}

func TestConfig_DefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("expected Default() to be valid, got %v", err)
	}
}
