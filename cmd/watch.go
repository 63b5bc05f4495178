package cmd

import (
	"fmt"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"

	"github.com/tempokey/tempokey/engine"
	"github.com/tempokey/tempokey/feature"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <file.wav>",
	Short: "Replays a WAV file in real time, printing estimates as they stabilize",
	Long:  `Replays a WAV file at the live frame cadence and prints beat and key updates as the engine converges, the way a live capture session would.`,
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

		engCfg := engine.DefaultConfig()
		engCfg.TickRate = featCfg.TickRate()
		eng, err := engine.New(engCfg)
		if err != nil {
			return err
		}

		// Key announcements are debounced: the gate already suppresses
		// most flicker, the debounce collapses what remains during the
		// first seconds of convergence.
		announce := debounce.New(500 * time.Millisecond)
		lastKey := ""
		eng.OnUpdate(func(snap engine.Snapshot) {
			if snap.Key == nil {
				return
			}
			name := snap.Key.Name()
			confidence := snap.Key.Confidence
			if name == lastKey {
				return
			}
			lastKey = name
			announce(func() {
				fmt.Printf("key:  %v (confidence %.3f)\n", name, confidence)
			})
		})

		frames := extractor.Frames(samples)
		tickEvery := time.Duration(float64(time.Second) / engCfg.TickRate)
		ticker := time.NewTicker(tickEvery)
		defer ticker.Stop()

		reportEvery := int(engCfg.TickRate)
		for i, frame := range frames {
			<-ticker.C
			if _, _, err := eng.Ingest(frame); err != nil {
				return err
			}
			if reportEvery > 0 && i%reportEvery == 0 {
				b := eng.CurrentBeat()
				fmt.Printf("%6.1fs  bpm: %5.1f (confidence %.2f)\n", frame.Timestamp, b.BPM, b.Confidence)
			}
		}

		b := eng.CurrentBeat()
		fmt.Printf("final bpm: %.1f (confidence %.2f)\n", b.BPM, b.Confidence)
		if k := eng.CurrentKey(); k != nil {
			fmt.Printf("final key: %v (confidence %.3f)\n", k.Name(), k.Confidence)
		} else {
			fmt.Println("final key: undetermined")
		}
		return nil
	},
}
