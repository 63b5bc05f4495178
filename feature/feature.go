// Package feature turns raw audio samples into the FeatureFrame stream
// the analysis engine consumes: a Hann-windowed STFT per hop, folded
// into a normalized 12-bin chroma plus a sub-band magnitude vector.
package feature

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/util"
)

// Pitch range folded into chroma: A0 through C8.
const (
	minPitchHz = 27.5
	maxPitchHz = 4186.0
	refFreqHz  = 440.0 // A4
	refPitch   = 9     // pitch class of A
)

type Config struct {
	// SampleRate of the incoming audio in Hz.
	SampleRate int
	// WindowSize is the FFT window length in samples (power of two).
	WindowSize int
	// HopSize is the number of samples between successive frames.
	// 512 at 22050 Hz gives the ~43 frames/s the engine defaults assume.
	HopSize int
	// Bands is the length of the magnitude vector (low spectrum bins).
	Bands int
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		WindowSize: 1024,
		HopSize:    512,
		Bands:      128,
	}
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %v", c.SampleRate)
	}
	if c.WindowSize < 2 || c.WindowSize&(c.WindowSize-1) != 0 {
		return fmt.Errorf("window size must be a power of two, got %v", c.WindowSize)
	}
	if c.HopSize < 1 || c.HopSize > c.WindowSize {
		return fmt.Errorf("hop size must be in [1,%v], got %v", c.WindowSize, c.HopSize)
	}
	if c.Bands < 1 || c.Bands > c.WindowSize/2 {
		return fmt.Errorf("bands must be in [1,%v], got %v", c.WindowSize/2, c.Bands)
	}
	return nil
}

// TickRate is the frame cadence this config produces, in Hz.
func (c Config) TickRate() float64 {
	return float64(c.SampleRate) / float64(c.HopSize)
}

type Extractor struct {
	cfg Config
	win []float64
	// binPitch maps each FFT bin to its pitch class, or -1 when the
	// bin frequency falls outside the folded range.
	binPitch []int
}

func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	x := &Extractor{
		cfg:      cfg,
		win:      window.Hann(cfg.WindowSize),
		binPitch: make([]int, cfg.WindowSize/2),
	}
	for bin := range x.binPitch {
		x.binPitch[bin] = pitchClass(float64(bin) * float64(cfg.SampleRate) / float64(cfg.WindowSize))
	}
	return x, nil
}

func pitchClass(freq float64) int {
	if freq < minPitchHz || freq > maxPitchHz {
		return -1
	}
	semitones := int(math.Round(12 * math.Log2(freq/refFreqHz)))
	return ((semitones+refPitch)%model.PitchClasses + model.PitchClasses) % model.PitchClasses
}

// Frames extracts one FeatureFrame per hop. Trailing samples shorter
// than a full window are dropped.
func (x *Extractor) Frames(samples []float64) []model.FeatureFrame {
	if len(samples) < x.cfg.WindowSize {
		return nil
	}
	numFrames := (len(samples)-x.cfg.WindowSize)/x.cfg.HopSize + 1
	frames := make([]model.FeatureFrame, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * x.cfg.HopSize
		timestamp := float64(start) / float64(x.cfg.SampleRate)
		frames = append(frames, x.Extract(samples[start:start+x.cfg.WindowSize], timestamp))
	}
	return frames
}

// Extract computes the feature frame for one windowed block.
func (x *Extractor) Extract(block []float64, timestamp float64) model.FeatureFrame {
	windowed := make([]float64, x.cfg.WindowSize)
	for i := range windowed {
		windowed[i] = block[i] * x.win[i]
	}
	spectrum := fft.FFTReal(windowed)

	frame := model.FeatureFrame{
		Chroma:    make([]float64, model.PitchClasses),
		Magnitude: make([]float64, x.cfg.Bands),
		Timestamp: timestamp,
	}
	for bin := 1; bin < x.cfg.WindowSize/2; bin++ {
		mag := cmplx.Abs(spectrum[bin])
		if bin < x.cfg.Bands {
			frame.Magnitude[bin] = mag
		}
		if pc := x.binPitch[bin]; pc >= 0 {
			frame.Chroma[pc] += mag
		}
	}
	if sum := util.Sum(frame.Chroma); sum > 0 {
		for p := range frame.Chroma {
			frame.Chroma[p] /= sum
		}
	}
	return frame
}
