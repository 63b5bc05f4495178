package model

import "fmt"

type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// MarshalJSON emits the mode as its display name rather than an int.
func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"major"`:
		*m = ModeMajor
	case `"minor"`:
		*m = ModeMinor
	default:
		return fmt.Errorf("unknown mode %s", data)
	}
	return nil
}

// BeatEstimate is published on every tick. BPM stays inside [60,200]
// once any adoption has happened; MeasurePosition assumes 4/4.
type BeatEstimate struct {
	BPM             float64 `json:"bpm"`
	Confidence      float64 `json:"confidence"`
	BeatPosition    float64 `json:"beat_position"`
	MeasurePosition int     `json:"measure_position"`
}

// KeyEstimate is published only when the acceptance gate passes.
type KeyEstimate struct {
	Root       int     `json:"root"`
	Mode       Mode    `json:"mode"`
	Confidence float64 `json:"confidence"`
}

// Name returns the display name, e.g. "C major" or "A# minor".
func (k KeyEstimate) Name() string {
	return NoteNames[k.Root%PitchClasses] + " " + k.Mode.String()
}

// KeyHypothesis is one of the 24 scored candidates. Transient: rebuilt
// on every evaluation, never stored.
type KeyHypothesis struct {
	Root  int
	Mode  Mode
	Score float64
}
