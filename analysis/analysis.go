// Package analysis replays a file's feature frames tick-by-tick
// through one engine session and reports the final estimates. There is
// no separate batch estimator; offline analysis is just replay of the
// incremental path.
package analysis

import (
	"fmt"
	"time"

	"github.com/tempokey/tempokey/engine"
	"github.com/tempokey/tempokey/feature"
	"github.com/tempokey/tempokey/model"
)

type Options struct {
	Engine  engine.Config
	Feature feature.Config
	// Progress, when set, receives a percentage in [0,100] as frames
	// are ingested.
	Progress func(percent int)
}

func DefaultOptions() Options {
	return Options{
		Engine:  engine.DefaultConfig(),
		Feature: feature.DefaultConfig(),
	}
}

// File analyzes a WAV file on disk.
func File(path string, opts Options) (*model.AnalysisResult, error) {
	samples, sampleRate, err := feature.ReadWavFile(path)
	if err != nil {
		return nil, err
	}
	return Samples(samples, sampleRate, opts)
}

// Samples analyzes raw mono samples. The feature config is re-anchored
// to the actual sample rate so the engine's tick rate matches the real
// frame cadence.
func Samples(samples []float64, sampleRate int, opts Options) (*model.AnalysisResult, error) {
	featCfg := opts.Feature
	featCfg.SampleRate = sampleRate
	extractor, err := feature.NewExtractor(featCfg)
	if err != nil {
		return nil, err
	}

	engCfg := opts.Engine
	engCfg.TickRate = featCfg.TickRate()
	eng, err := engine.New(engCfg)
	if err != nil {
		return nil, err
	}

	frames := extractor.Frames(samples)
	if len(frames) == 0 {
		return nil, fmt.Errorf("audio too short: need at least %v samples, got %v", featCfg.WindowSize, len(samples))
	}
	for i, frame := range frames {
		if _, _, err := eng.Ingest(frame); err != nil {
			return nil, fmt.Errorf("frame %v: %w", i, err)
		}
		if opts.Progress != nil {
			opts.Progress((i + 1) * 100 / len(frames))
		}
	}

	result := &model.AnalysisResult{
		Duration:   float64(len(samples)) / float64(sampleRate),
		SampleRate: sampleRate,
		Frames:     len(frames),
		Beat:       eng.CurrentBeat(),
		Key:        eng.CurrentKey(),
		AnalyzedAt: time.Now().UTC(),
	}
	if result.Key != nil {
		result.KeyName = result.Key.Name()
	}
	return result, nil
}
