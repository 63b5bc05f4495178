// Package engine coordinates one analysis session: it owns the frame
// and onset histories, runs the beat tracker and key estimator on each
// ingested frame, and publishes immutable snapshots for readers.
package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/tempokey/tempokey/beat"
	"github.com/tempokey/tempokey/history"
	"github.com/tempokey/tempokey/key"
	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/onset"
)

// Snapshot is the pair published after each tick. Key is nil while the
// estimate is undetermined. Snapshots are never mutated after publish.
type Snapshot struct {
	Beat model.BeatEstimate
	Key  *model.KeyEstimate
	Tick uint64
}

// Engine is exclusively owned by its producer: Ingest must be called
// from one goroutine. Readers on other goroutines use CurrentBeat and
// CurrentKey, which load the latest snapshot through a single atomic
// pointer and can never observe a partially updated pair.
type Engine struct {
	cfg    Config
	frames *history.Buffer[model.FeatureFrame]
	onsets *history.Buffer[float64]

	holdBPM float64
	magLen  int
	ticks   uint64

	published atomic.Pointer[Snapshot]
	onUpdate  func(Snapshot)
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	e := &Engine{
		cfg:     cfg,
		frames:  history.New[model.FeatureFrame](cfg.FrameHistory),
		onsets:  history.New[float64](cfg.OnsetHistory),
		holdBPM: cfg.InitialBPM,
		magLen:  -1,
	}
	e.published.Store(&Snapshot{Beat: beatHold(cfg.InitialBPM)})
	return e, nil
}

func beatHold(bpm float64) model.BeatEstimate {
	return model.BeatEstimate{BPM: bpm, Confidence: 0.1, BeatPosition: 0, MeasurePosition: 1}
}

// OnUpdate registers a callback invoked after every successful Ingest
// with the snapshot just published. Must be set before ingestion starts.
func (e *Engine) OnUpdate(fn func(Snapshot)) {
	e.onUpdate = fn
}

// Ingest runs one tick. A validation error rejects the frame before
// any state is touched; the previous estimates stay published.
func (e *Engine) Ingest(frame model.FeatureFrame) (model.BeatEstimate, *model.KeyEstimate, error) {
	if err := frame.Validate(); err != nil {
		return model.BeatEstimate{}, nil, fmt.Errorf("rejecting frame: %w", err)
	}
	if e.magLen >= 0 && len(frame.Magnitude) != e.magLen {
		return model.BeatEstimate{}, nil, fmt.Errorf(
			"rejecting frame: magnitude length changed from %v to %v", e.magLen, len(frame.Magnitude))
	}
	if e.magLen < 0 {
		e.magLen = len(frame.Magnitude)
	}

	var prev *model.FeatureFrame
	if last, ok := e.frames.Last(); ok {
		prev = &last
	}
	strength := onset.Strength(prev, frame)
	e.frames.Push(frame)
	e.onsets.Push(strength)
	e.ticks++

	beatEst, computed := beat.Track(e.cfg.beatConfig(), e.onsets.Snapshot(), frame.Timestamp, e.holdBPM)
	if computed {
		e.adopt(beatEst)
	}

	var keyEst *model.KeyEstimate
	if est, ok := key.Estimate(e.cfg.keyConfig(), e.frames.Snapshot()); ok {
		keyEst = &est
	}

	snap := &Snapshot{Beat: beatEst, Key: keyEst, Tick: e.ticks}
	e.published.Store(snap)
	if e.onUpdate != nil {
		e.onUpdate(*snap)
	}
	return beatEst, keyEst, nil
}

// adopt applies the sticky-BPM policy to a qualifying computation. The
// bar is intentionally low: a single valid peak pair already adopts,
// trading stability for responsiveness. A relaxed rule adopts borderline
// computations once enough onset data has accumulated.
func (e *Engine) adopt(est model.BeatEstimate) {
	if est.BPM <= 0 {
		return
	}
	if est.Confidence > 0.01 || e.onsets.Len() > 10 {
		e.holdBPM = est.BPM
	}
}

// CurrentBeat returns the most recently published beat estimate.
func (e *Engine) CurrentBeat() model.BeatEstimate {
	return e.published.Load().Beat
}

// CurrentKey returns the most recently published key estimate, or nil
// while the key is undetermined.
func (e *Engine) CurrentKey() *model.KeyEstimate {
	if k := e.published.Load().Key; k != nil {
		copied := *k
		return &copied
	}
	return nil
}

// Ticks reports how many frames have been ingested.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// Config returns the session configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
