// Package beat estimates tempo from the onset-strength history by
// picking salient peaks and averaging their spacing. Track is pure:
// the sticky-estimate merge and adoption policy belong to the engine.
package beat

import (
	"math"

	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/util"
)

// Published BPM must stay inside this range; computations outside it
// are discarded rather than adopted.
const (
	MinBPM = 60.0
	MaxBPM = 200.0
)

type Config struct {
	// TickRate is the assumed cadence of incoming frames in Hz. It is
	// a configuration constant, never inferred from timestamps.
	TickRate float64
	// MinSamples is the onset-history length below which the tracker
	// holds the previous estimate (cold start).
	MinSamples int
	// PeakFloor is the minimum onset strength for a local maximum to
	// count as a peak. Discards noise-level flux.
	PeakFloor float64
}

func DefaultConfig() Config {
	return Config{
		TickRate:   43.0,
		MinSamples: 3,
		PeakFloor:  0.1,
	}
}

// Peaks returns the indices i (0 < i < len-1) where onsets[i] exceeds
// both neighbors and the salience floor.
func Peaks(onsets []float64, floor float64) []int {
	var peaks []int
	for i := 1; i < len(onsets)-1; i++ {
		if onsets[i] > onsets[i-1] && onsets[i] > onsets[i+1] && onsets[i] > floor {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// hold is the estimate shape for every tick that cannot produce a
// qualifying computation. Absence of peaks is a normal outcome.
func hold(holdBPM float64) model.BeatEstimate {
	return model.BeatEstimate{
		BPM:             holdBPM,
		Confidence:      0.1,
		BeatPosition:    0,
		MeasurePosition: 1,
	}
}

// Track estimates tempo from the onset history. now is the current
// frame timestamp in seconds, holdBPM the caller's sticky estimate.
// The second return value reports whether a new computation qualified;
// when false the returned estimate re-publishes holdBPM unchanged.
func Track(cfg Config, onsets []float64, now float64, holdBPM float64) (model.BeatEstimate, bool) {
	if len(onsets) < cfg.MinSamples {
		return hold(holdBPM), false
	}

	peaks := Peaks(onsets, cfg.PeakFloor)
	if len(peaks) < 2 {
		return hold(holdBPM), false
	}

	var gaps float64
	for i := 1; i < len(peaks); i++ {
		gaps += float64(peaks[i] - peaks[i-1])
	}
	avgInterval := gaps / float64(len(peaks)-1)
	bpm := 60.0 * cfg.TickRate / avgInterval
	if bpm < MinBPM || bpm > MaxBPM {
		return hold(holdBPM), false
	}

	return model.BeatEstimate{
		BPM:             bpm,
		Confidence:      util.Clamp(float64(len(peaks))/10.0, 0, 1),
		BeatPosition:    math.Mod(now, 1.0),
		MeasurePosition: int(math.Floor(now))%4 + 1,
	}, true
}
