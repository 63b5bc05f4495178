package engine

import (
	"fmt"

	"github.com/tempokey/tempokey/beat"
	"github.com/tempokey/tempokey/key"
)

// Config is the full tuning surface of a session. The defaults were
// hand-tuned against live capture at ~43 feature frames per second;
// deployments with a different upstream cadence must set TickRate.
type Config struct {
	// TickRate is the assumed frame cadence in Hz.
	TickRate float64
	// FrameHistory and OnsetHistory cap the two FIFO buffers.
	FrameHistory int
	OnsetHistory int
	// MinOnsetSamples gates cold-start exit for the beat tracker.
	MinOnsetSamples int
	// PeakFloor is the minimum salience for onset peaks.
	PeakFloor float64
	// KeyThreshold is the raw score needed to publish a key estimate.
	KeyThreshold float64
	// RelaxedKeyHistory and RelaxedKeyMultiplier define the relaxed
	// acceptance gate once enough frames have accumulated.
	RelaxedKeyHistory    int
	RelaxedKeyMultiplier float64
	// TonicBonus weights chroma energy on the candidate root.
	TonicBonus float64
	// KeyWindow caps the recency window for key accumulation.
	KeyWindow int
	// InitialBPM seeds the sticky estimate before any adoption.
	InitialBPM float64
}

func DefaultConfig() Config {
	return Config{
		TickRate:             43.0,
		FrameHistory:         100,
		OnsetHistory:         50,
		MinOnsetSamples:      3,
		PeakFloor:            0.1,
		KeyThreshold:         0.05,
		RelaxedKeyHistory:    15,
		RelaxedKeyMultiplier: 0.5,
		TonicBonus:           0.2,
		KeyWindow:            20,
		InitialBPM:           120.0,
	}
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %v", c.TickRate)
	}
	if c.FrameHistory < 1 || c.OnsetHistory < 1 {
		return fmt.Errorf("history capacities must be at least 1")
	}
	if c.MinOnsetSamples < 1 {
		return fmt.Errorf("min onset samples must be at least 1")
	}
	if c.PeakFloor < 0 {
		return fmt.Errorf("peak floor must be non-negative, got %v", c.PeakFloor)
	}
	if c.KeyThreshold <= 0 {
		return fmt.Errorf("key threshold must be positive, got %v", c.KeyThreshold)
	}
	if c.RelaxedKeyMultiplier <= 0 || c.RelaxedKeyMultiplier > 1 {
		return fmt.Errorf("relaxed key multiplier must be in (0,1], got %v", c.RelaxedKeyMultiplier)
	}
	if c.KeyWindow < 1 {
		return fmt.Errorf("key window must be at least 1")
	}
	if c.InitialBPM < beat.MinBPM || c.InitialBPM > beat.MaxBPM {
		return fmt.Errorf("initial bpm must be in [%v,%v], got %v", beat.MinBPM, beat.MaxBPM, c.InitialBPM)
	}
	return nil
}

func (c Config) beatConfig() beat.Config {
	return beat.Config{
		TickRate:   c.TickRate,
		MinSamples: c.MinOnsetSamples,
		PeakFloor:  c.PeakFloor,
	}
}

func (c Config) keyConfig() key.Config {
	cfg := key.DefaultConfig()
	cfg.Threshold = c.KeyThreshold
	cfg.RelaxedMinHistory = c.RelaxedKeyHistory
	cfg.RelaxedMultiplier = c.RelaxedKeyMultiplier
	cfg.TonicBonus = c.TonicBonus
	cfg.Window = c.KeyWindow
	return cfg
}
