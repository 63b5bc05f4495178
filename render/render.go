// Package render exports analysis results as standard MIDI files so a
// detected tempo can be auditioned against the source material in a DAW.
package render

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerBeat = 960
	clickChannel = 9 // percussion channel
	strongKey    = 76 // high wood block
	weakKey      = 77 // low wood block
	clickLen     = ticksPerBeat / 4
)

// ClickTrack builds a 4/4 metronome SMF at the given tempo: a strong
// click on beat one of each measure, weak clicks elsewhere.
func ClickTrack(bpm float64, measures int) (*smf.SMF, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("bpm must be positive, got %v", bpm)
	}
	if measures < 1 {
		return nil, fmt.Errorf("measures must be at least 1, got %v", measures)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("tempokey click"))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(bpm))

	for beatNum := 0; beatNum < measures*4; beatNum++ {
		delta := uint32(0)
		if beatNum > 0 {
			delta = ticksPerBeat - clickLen
		}
		key := uint8(weakKey)
		velocity := uint8(90)
		if beatNum%4 == 0 {
			key = strongKey
			velocity = 120
		}
		tr.Add(delta, midi.NoteOn(clickChannel, key, velocity))
		tr.Add(clickLen, midi.NoteOff(clickChannel, key))
	}
	tr.Close(0)
	s.Add(tr)
	return s, nil
}

// WriteClickTrack writes the click-track SMF to w.
func WriteClickTrack(w io.Writer, bpm float64, measures int) error {
	s, err := ClickTrack(bpm, measures)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write click track: %w", err)
	}
	return nil
}
