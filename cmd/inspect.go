package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempokey/tempokey/beat"
	"github.com/tempokey/tempokey/feature"
	"github.com/tempokey/tempokey/model"
	"github.com/tempokey/tempokey/onset"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.wav>",
	Short: "Prints feature statistics for a WAV file",
	Long:  `Prints the extracted feature statistics (frames, onset strengths, chroma mass) used by the estimators. Useful when tuning thresholds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, sampleRate, err := feature.ReadWavFile(args[0])
		if err != nil {
			return err
		}

		featCfg := feature.DefaultConfig()
		featCfg.SampleRate = sampleRate
		extractor, err := feature.NewExtractor(featCfg)
		if err != nil {
			return err
		}
		frames := extractor.Frames(samples)
		if len(frames) == 0 {
			return fmt.Errorf("audio too short to extract any frames")
		}

		onsets := make([]float64, len(frames))
		var prev *model.FeatureFrame
		var maxOnset, sumOnset float64
		for i := range frames {
			onsets[i] = onset.Strength(prev, frames[i])
			sumOnset += onsets[i]
			if onsets[i] > maxOnset {
				maxOnset = onsets[i]
			}
			prev = &frames[i]
		}
		peaks := beat.Peaks(onsets, beat.DefaultConfig().PeakFloor)

		chromaMass := make([]float64, model.PitchClasses)
		for _, frame := range frames {
			for p, v := range frame.Chroma {
				chromaMass[p] += v
			}
		}

		fmt.Printf("file:        %v\n", args[0])
		fmt.Printf("sample rate: %v Hz\n", sampleRate)
		fmt.Printf("duration:    %.2fs\n", float64(len(samples))/float64(sampleRate))
		fmt.Printf("frames:      %v (%.1f/s)\n", len(frames), featCfg.TickRate())
		fmt.Printf("onsets:      mean %.3f, max %.3f, %v salient peaks\n",
			sumOnset/float64(len(frames)), maxOnset, len(peaks))
		fmt.Println("chroma mass by pitch class:")
		for p, mass := range chromaMass {
			fmt.Printf("  %-2v %8.3f\n", model.NoteNames[p], mass/float64(len(frames)))
		}
		return nil
	},
}
