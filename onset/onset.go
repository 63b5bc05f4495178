// Package onset converts consecutive feature frames into a scalar
// onset strength using positive spectral flux.
package onset

import (
	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/util"
)

// Strength sums the positive per-bin magnitude increases from previous
// to current. Bins beyond the shorter vector are ignored. The first
// frame of a session has no previous frame and scores 0.
func Strength(previous *model.FeatureFrame, current model.FeatureFrame) float64 {
	if previous == nil {
		return 0
	}
	var flux float64
	n := util.Min(len(current.Magnitude), len(previous.Magnitude))
	for i := 0; i < n; i++ {
		if diff := current.Magnitude[i] - previous.Magnitude[i]; diff > 0 {
			flux += diff
		}
	}
	return flux
}
