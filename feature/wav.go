package feature

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadWavFile decodes a WAV file into mono float samples in [-1,1]
// and returns them with the file's sample rate.
func ReadWavFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("could not open wav file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("could not decode wav file: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("wav file has no channel format")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	numSamples := len(buf.Data) / channels
	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		var mix float64
		for ch := 0; ch < channels; ch++ {
			mix += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = mix / float64(channels)
	}
	return samples, buf.Format.SampleRate, nil
}
