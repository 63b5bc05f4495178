package key

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/util"
)

// profileFrames returns n frames whose chroma is the normalized major
// profile, the synthetic signal the estimator must label C major.
func profileFrames(n int) []model.FeatureFrame {
	sum := util.Sum(MajorProfile[:])
	chroma := make([]float64, model.PitchClasses)
	for p := range chroma {
		chroma[p] = MajorProfile[p] / sum
	}
	frames := make([]model.FeatureFrame, n)
	for i := range frames {
		frames[i] = model.FeatureFrame{Chroma: chroma, Timestamp: float64(i)}
	}
	return frames
}

// flatFrames returns n frames with every chroma bin set to level.
func flatFrames(n int, level float64) []model.FeatureFrame {
	chroma := make([]float64, model.PitchClasses)
	for p := range chroma {
		chroma[p] = level
	}
	frames := make([]model.FeatureFrame, n)
	for i := range frames {
		frames[i] = model.FeatureFrame{Chroma: chroma}
	}
	return frames
}

func TestEmptyHistoryIsUndetermined(t *testing.T) {
	_, ok := Estimate(DefaultConfig(), nil)
	assert.False(t, ok)
}

func TestExactMajorProfileDetectsCMajor(t *testing.T) {
	est, ok := Estimate(DefaultConfig(), profileFrames(20))

	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(0, est.Root)
	assert.Equal(model.ModeMajor, est.Mode)
	assert.GreaterOrEqual(est.Confidence, 0.05)
	assert.LessOrEqual(est.Confidence, 1.0)
}

func TestSilenceIsUndetermined(t *testing.T) {
	_, ok := Estimate(DefaultConfig(), flatFrames(20, 0))
	assert.False(t, ok)
}

func TestRelaxedGateNeedsEnoughHistory(t *testing.T) {
	// flat chroma at 0.025 scores 1.2*0.025 = 0.03: below the 0.05
	// threshold, above the relaxed bar of 0.025
	cfg := DefaultConfig()

	_, ok := Estimate(cfg, flatFrames(10, 0.025))
	assert.False(t, ok, "subthreshold score must stay undetermined on short history")

	est, ok := Estimate(cfg, flatFrames(16, 0.025))
	assert.True(t, ok, "relaxed gate should accept with >15 frames")
	assert.InDelta(t, 0.03*0.8, est.Confidence, 1e-9, "relaxed acceptance dampens confidence")
}

func TestBelowRelaxedBarStaysUndetermined(t *testing.T) {
	// flat chroma at 0.01 scores 0.012 < 0.025
	_, ok := Estimate(DefaultConfig(), flatFrames(30, 0.01))
	assert.False(t, ok)
}

func TestConfidenceIsClamped(t *testing.T) {
	// chroma mass well above normalized levels can push the raw score
	// past 1; the published confidence must not follow it
	est, ok := Estimate(DefaultConfig(), flatFrames(20, 5.0))
	assert.True(t, ok)
	assert.Equal(t, 1.0, est.Confidence)
}

func TestWeightedChromaFavorsRecency(t *testing.T) {
	old := model.FeatureFrame{Chroma: oneHot(0)}
	recent := model.FeatureFrame{Chroma: oneHot(7)}
	chroma := WeightedChroma([]model.FeatureFrame{old, recent}, 20)

	// weights 0.5 and 1.0, normalized by 1.5
	assert.InDelta(t, 1.0/3.0, chroma[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, chroma[7], 1e-12)
}

func TestWeightedChromaWindowCapsHistory(t *testing.T) {
	frames := append(flatFrames(30, 1.0), profileFrames(20)...)
	capped := WeightedChroma(frames, 20)
	windowOnly := WeightedChroma(profileFrames(20), 20)

	for p := range capped {
		assert.InDelta(t, windowOnly[p], capped[p], 1e-12)
	}
}

func TestScoreOfSilenceIsZero(t *testing.T) {
	var silence [model.PitchClasses]float64
	score := Score(silence, 0, model.ModeMajor, 0.2)
	assert.False(t, math.IsNaN(score))
	assert.Equal(t, 0.0, score)
}

func TestHypothesesSortedBestFirst(t *testing.T) {
	chroma := WeightedChroma(profileFrames(5), 20)
	hypotheses := Hypotheses(chroma, 0.2)

	assert := assert.New(t)
	assert.Len(hypotheses, 24)
	for i := 1; i < len(hypotheses); i++ {
		assert.GreaterOrEqual(hypotheses[i-1].Score, hypotheses[i].Score)
	}
	assert.Equal(0, hypotheses[0].Root)
	assert.Equal(model.ModeMajor, hypotheses[0].Mode)
}

func oneHot(p int) []float64 {
	chroma := make([]float64, model.PitchClasses)
	chroma[p] = 1.0
	return chroma
}
