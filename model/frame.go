package model

import (
	"fmt"
	"math"
)

// PitchClasses is the number of chroma bins (C..B, octave-independent).
const PitchClasses = 12

var NoteNames = [PitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FeatureFrame is one tick of upstream feature extraction. Chroma is a
// 12-bin pitch-class energy distribution that sums to 1 when non-silent;
// Magnitude holds sub-band energies whose length is fixed for a session.
type FeatureFrame struct {
	Chroma    []float64 `json:"chroma"`
	Magnitude []float64 `json:"magnitude"`
	Timestamp float64   `json:"timestamp"`
}

// Validate rejects frames that must never reach the accumulators:
// wrong chroma length, NaN or negative energies.
func (f FeatureFrame) Validate() error {
	if len(f.Chroma) != PitchClasses {
		return fmt.Errorf("chroma must have %v bins, got %v", PitchClasses, len(f.Chroma))
	}
	for i, v := range f.Chroma {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("chroma bin %v is invalid: %v", i, v)
		}
	}
	for i, v := range f.Magnitude {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("magnitude bin %v is invalid: %v", i, v)
		}
	}
	return nil
}
