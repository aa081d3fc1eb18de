package flocking

import (
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Config tunes the flocking update.
type Config struct {
	// VisionRadius is the radius of the neighbor query around each agent.
	VisionRadius float64 `json:"vision_radius"`
	// HalfExtent is the half size of the cube indexed for each agent. It is a constant, not derived from the
	// agent's geometry.
	HalfExtent     float64 `json:"half_extent"`
	SeparationGain float64 `json:"separation_gain"`
	AlignmentGain  float64 `json:"alignment_gain"`
	CohesionGain   float64 `json:"cohesion_gain"`
}

// DefaultConfig returns the tuning the simulation ships with.
func DefaultConfig() Config {
	return Config{
		VisionRadius:   2.0,
		HalfExtent:     0.125,
		SeparationGain: 0.1,
		AlignmentGain:  0.1,
		CohesionGain:   0.1,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.VisionRadius == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "vision_radius")
	}
	if cfg.HalfExtent == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "half_extent")
	}
	if cfg.VisionRadius < 0 || math.IsInf(cfg.VisionRadius, 0) || math.IsNaN(cfg.VisionRadius) {
		return goutils.NewConfigValidationError(path, errors.Errorf("vision_radius must be positive and finite, got %v", cfg.VisionRadius))
	}
	if cfg.HalfExtent < 0 || math.IsInf(cfg.HalfExtent, 0) || math.IsNaN(cfg.HalfExtent) {
		return goutils.NewConfigValidationError(path, errors.Errorf("half_extent must be positive and finite, got %v", cfg.HalfExtent))
	}
	gains := []struct {
		name string
		val  float64
	}{
		{"separation_gain", cfg.SeparationGain},
		{"alignment_gain", cfg.AlignmentGain},
		{"cohesion_gain", cfg.CohesionGain},
	}
	for _, gain := range gains {
		if gain.val < 0 || math.IsInf(gain.val, 0) || math.IsNaN(gain.val) {
			return goutils.NewConfigValidationError(path, errors.Errorf("%s must be non-negative and finite, got %v", gain.name, gain.val))
		}
	}
	return nil
}
