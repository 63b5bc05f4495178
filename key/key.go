// Package key scores 24 tonal hypotheses (12 roots x major/minor) by
// correlating a recency-weighted chroma average against fixed key
// profiles, then gates publication on an adaptive confidence policy.
package key

import (
	"golang.org/x/exp/slices"

	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/util"
)

// Krumhansl-style key profiles. Read-only, shared by every session.
var (
	MajorProfile = [model.PitchClasses]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	MinorProfile = [model.PitchClasses]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

type Config struct {
	// Threshold is the raw score a best hypothesis needs to publish.
	Threshold float64
	// RelaxedMinHistory is the frame-history length above which the
	// relaxed gate applies: enough accumulated evidence to commit
	// despite a subthreshold score.
	RelaxedMinHistory int
	// RelaxedMultiplier scales Threshold for the relaxed gate.
	RelaxedMultiplier float64
	// RelaxedDampening scales the published confidence when only the
	// relaxed gate passed.
	RelaxedDampening float64
	// TonicBonus rewards chroma energy exactly on the candidate root.
	TonicBonus float64
	// Window caps how many recent frames feed the weighted average.
	Window int
}

func DefaultConfig() Config {
	return Config{
		Threshold:         0.05,
		RelaxedMinHistory: 15,
		RelaxedMultiplier: 0.5,
		RelaxedDampening:  0.8,
		TonicBonus:        0.2,
		Window:            20,
	}
}

// WeightedChroma averages the chroma of the most recent frames with
// linearly increasing weight toward recency, normalized by the total
// weight. All-zero input stays all-zero; no division by zero.
func WeightedChroma(frames []model.FeatureFrame, window int) [model.PitchClasses]float64 {
	var acc [model.PitchClasses]float64
	n := util.Min(window, len(frames))
	if n == 0 {
		return acc
	}
	recent := frames[len(frames)-n:]

	var totalWeight float64
	for i, frame := range recent {
		weight := float64(i+1) / float64(n)
		for p := 0; p < model.PitchClasses; p++ {
			acc[p] += frame.Chroma[p] * weight
		}
		totalWeight += weight
	}
	if totalWeight == 0 {
		return acc
	}
	for p := range acc {
		acc[p] /= totalWeight
	}
	return acc
}

// Score correlates chroma against the profile rotated to root, plus
// the tonic bonus. A zero-sum profile short-circuits to bonus only.
func Score(chroma [model.PitchClasses]float64, root int, mode model.Mode, tonicBonus float64) float64 {
	profile := MajorProfile
	if mode == model.ModeMinor {
		profile = MinorProfile
	}

	var correlation, profileSum float64
	for p := 0; p < model.PitchClasses; p++ {
		correlation += chroma[p] * profile[(p+root)%model.PitchClasses]
		profileSum += profile[p]
	}
	normalized := 0.0
	if profileSum > 0 {
		normalized = correlation / profileSum
	}
	return normalized + chroma[root]*tonicBonus
}

// Hypotheses scores all 24 candidates, best first.
func Hypotheses(chroma [model.PitchClasses]float64, tonicBonus float64) []model.KeyHypothesis {
	hypotheses := make([]model.KeyHypothesis, 0, 2*model.PitchClasses)
	for root := 0; root < model.PitchClasses; root++ {
		for _, mode := range []model.Mode{model.ModeMajor, model.ModeMinor} {
			hypotheses = append(hypotheses, model.KeyHypothesis{
				Root:  root,
				Mode:  mode,
				Score: Score(chroma, root, mode, tonicBonus),
			})
		}
	}
	slices.SortFunc(hypotheses, func(a, b model.KeyHypothesis) bool {
		return a.Score > b.Score
	})
	return hypotheses
}

// Estimate evaluates the frame history and returns a key estimate when
// the acceptance policy passes. A false return means "undetermined",
// the expected steady state during cold start. Previous estimates are
// never silently re-published here.
func Estimate(cfg Config, frames []model.FeatureFrame) (model.KeyEstimate, bool) {
	if len(frames) == 0 {
		return model.KeyEstimate{}, false
	}

	chroma := WeightedChroma(frames, cfg.Window)
	best := Hypotheses(chroma, cfg.TonicBonus)[0]

	switch {
	case best.Score >= cfg.Threshold:
		return model.KeyEstimate{
			Root:       best.Root,
			Mode:       best.Mode,
			Confidence: util.Clamp(best.Score, 0, 1),
		}, true
	case len(frames) > cfg.RelaxedMinHistory && best.Score >= cfg.Threshold*cfg.RelaxedMultiplier:
		return model.KeyEstimate{
			Root:       best.Root,
			Mode:       best.Mode,
			Confidence: util.Clamp(best.Score*cfg.RelaxedDampening, 0, 1),
		}, true
	default:
		return model.KeyEstimate{}, false
	}
}
